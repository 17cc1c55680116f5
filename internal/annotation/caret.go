package annotation

import "image"

// Caret defaults.
const (
	DefaultBlinkInterval = 0.5
	MinPrintable         = 32
	MaxPrintable         = 126
)

// DefaultCaretHome is where a fresh typing session starts.
var DefaultCaretHome = image.Pt(640, 360)

// caretState is the in-progress typing buffer. It is separate from committed
// objects and never takes part in hit-tests other than a drag grab.
type caretState struct {
	active        bool
	text          string
	pos           image.Point
	home          image.Point
	visible       bool
	timer         float64
	blinkInterval float64
}

// CaretView is a read-only copy of the caret for rendering.
type CaretView struct {
	Active   bool
	Text     string
	Position image.Point
	Visible  bool
}

func newCaret() caretState {
	return caretState{
		home:          DefaultCaretHome,
		visible:       true,
		blinkInterval: DefaultBlinkInterval,
	}
}

// BeginTyping opens a typing session with an empty buffer at the caret home.
// Calling it while a session is open restarts the buffer.
func (s *Store) BeginTyping() {
	s.caret.active = true
	s.caret.text = ""
	s.caret.pos = s.caret.home
	s.caret.visible = true
	s.caret.timer = 0
}

// Typing reports whether a typing session is open.
func (s *Store) Typing() bool {
	return s.caret.active
}

// Type appends r to the buffer. Only printable ASCII is accepted.
func (s *Store) Type(r rune) bool {
	if !s.caret.active || r < MinPrintable || r > MaxPrintable {
		return false
	}
	s.caret.text += string(r)
	return true
}

// Backspace removes the last buffered character.
func (s *Store) Backspace() bool {
	if !s.caret.active || s.caret.text == "" {
		return false
	}
	s.caret.text = s.caret.text[:len(s.caret.text)-1]
	return true
}

// Buffer returns the uncommitted text.
func (s *Store) Buffer() string {
	return s.caret.text
}

// CommitTyping appends the buffer as a new object at the caret position with
// the default style. The session stays open with an empty buffer at the same
// position. It reports false when there was nothing to commit.
func (s *Store) CommitTyping() bool {
	if !s.caret.active || s.caret.text == "" {
		return false
	}
	s.Add(TextObject{
		Text:      s.caret.text,
		Position:  s.caret.pos,
		Color:     s.style.Color,
		Scale:     s.style.Scale,
		Thickness: s.style.Thickness,
	})
	s.caret.text = ""
	return true
}

// CancelTyping discards the buffer and closes the session without touching committed objects.
func (s *Store) CancelTyping() {
	s.caret.active = false
	s.caret.text = ""
	if s.drag.target == DragCaret {
		s.drag = dragState{}
	}
}

// Caret returns a snapshot of the caret for rendering.
func (s *Store) Caret() CaretView {
	return CaretView{
		Active:   s.caret.active,
		Text:     s.caret.text,
		Position: s.caret.pos,
		Visible:  s.caret.visible,
	}
}

// Tick advances the blink timer by dt seconds.
func (s *Store) Tick(dt float64) {
	if !s.caret.active || dt <= 0 {
		return
	}
	s.caret.timer += dt
	for s.caret.timer >= s.caret.blinkInterval {
		s.caret.timer -= s.caret.blinkInterval
		s.caret.visible = !s.caret.visible
	}
}
