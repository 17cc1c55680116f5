package engine

import (
	"fmt"

	"github.com/ayusman/beyondbrush/internal/canvas"
)

// KeyKind is a decoded keyboard event type.
type KeyKind int

const (
	KeyChar KeyKind = iota
	KeyBackspace
	KeyCommit
	KeyCancel
)

// KeyEvent is one pre-decoded keyboard event. Char is only used by KeyChar.
type KeyEvent struct {
	Kind KeyKind `json:"kind"`
	Char rune    `json:"char,omitempty"`
}

// CharTyped returns a KeyChar event.
func CharTyped(r rune) KeyEvent { return KeyEvent{Kind: KeyChar, Char: r} }

// HandleKey applies a key event to the typing session. Commit records an undo
// entry before appending the text. It reports whether anything changed.
func (d *Dispatcher) HandleKey(ev KeyEvent) bool {
	switch ev.Kind {
	case KeyCancel:
		if !d.texts.Typing() {
			return false
		}
		d.texts.CancelTyping()
		return true
	case KeyCommit:
		if !d.texts.Typing() || d.texts.Buffer() == "" {
			return false
		}
		d.commit()
		return d.texts.CommitTyping()
	case KeyBackspace:
		return d.texts.Backspace()
	case KeyChar:
		return d.texts.Type(ev.Char)
	}
	return false
}

// CommandKind names a command issued from outside the gesture loop.
type CommandKind string

const (
	CmdSetTool     CommandKind = "set_tool"
	CmdToggleGuide CommandKind = "toggle_guide"
	CmdUndo        CommandKind = "undo"
	CmdRedo        CommandKind = "redo"
	CmdAdjustSize  CommandKind = "adjust_size"
	CmdGuidePage   CommandKind = "guide_page"
	CmdClear       CommandKind = "clear"
)

// Command is a UI request. Tool is used by CmdSetTool, Steps by CmdAdjustSize
// and Page by CmdGuidePage.
type Command struct {
	Kind  CommandKind `json:"kind"`
	Tool  canvas.Tool `json:"-"`
	Steps int         `json:"steps,omitempty"`
	Page  int         `json:"page,omitempty"`
}

// Apply runs a command. Empty undo/redo is not an error.
func (d *Dispatcher) Apply(cmd Command) error {
	switch cmd.Kind {
	case CmdSetTool:
		d.SetTool(cmd.Tool)
	case CmdToggleGuide:
		d.ToggleGuide()
	case CmdUndo:
		_, err := d.Undo()
		return err
	case CmdRedo:
		_, err := d.Redo()
		return err
	case CmdAdjustSize:
		d.AdjustSize(cmd.Steps)
	case CmdGuidePage:
		d.guide.SetIndex(cmd.Page)
	case CmdClear:
		d.Clear()
	default:
		return fmt.Errorf("unknown command %q", cmd.Kind)
	}
	return nil
}
