package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ayusman/beyondbrush/internal/app"
	"github.com/ayusman/beyondbrush/internal/canvas"
	"github.com/ayusman/beyondbrush/internal/chrome"
	"github.com/ayusman/beyondbrush/internal/engine"
	"github.com/ayusman/beyondbrush/internal/store"
)

// Controller is the part of the running app the API drives.
type Controller interface {
	Command(ctx context.Context, cmd engine.Command) error
	Key(ctx context.Context, ev engine.KeyEvent) (bool, error)
	Save(ctx context.Context) (*store.Painting, error)
	Telemetry() app.Telemetry
	SetEnabled(enabled bool)
}

// Command kinds handled here rather than by the engine.
const (
	KindSave   = "save"
	KindPause  = "pause"
	KindResume = "resume"
)

// CommandHandler handles POST /api/commands.
type CommandHandler struct {
	ctrl Controller
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(ctrl Controller) *CommandHandler {
	return &CommandHandler{ctrl: ctrl}
}

type commandRequest struct {
	Kind  string `json:"kind"`
	Tool  string `json:"tool"`
	Color string `json:"color"`
	Size  int    `json:"size"`
	Steps int    `json:"steps"`
	Page  int    `json:"page"`
}

// toCommand maps a request onto an engine command.
func (req commandRequest) toCommand() (engine.Command, error) {
	cmd := engine.Command{Kind: engine.CommandKind(req.Kind), Steps: req.Steps, Page: req.Page}
	if cmd.Kind != engine.CmdSetTool {
		return cmd, nil
	}
	switch req.Tool {
	case "eraser":
		cmd.Tool = canvas.NewEraser(req.Size)
	case "brush", "":
		if req.Color == "" {
			return cmd, errors.New("color is required for the brush")
		}
		c, err := chrome.ParseHex(req.Color)
		if err != nil {
			return cmd, err
		}
		cmd.Tool = canvas.NewBrush(c, req.Size)
	default:
		return cmd, fmt.Errorf("unknown tool %q", req.Tool)
	}
	return cmd, nil
}

// ServeHTTP applies one command and answers with the latest telemetry,
// or with the painting record for a save.
func (h *CommandHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Kind == "" {
		writeError(w, http.StatusBadRequest, "Kind is required")
		return
	}

	switch req.Kind {
	case KindSave:
		p, err := h.ctrl.Save(r.Context())
		if err != nil {
			writeControllerError(w, err, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, toPaintingResponse(p))
		return
	case KindPause, KindResume:
		h.ctrl.SetEnabled(req.Kind == KindResume)
		writeJSON(w, http.StatusOK, h.ctrl.Telemetry())
		return
	}

	cmd, err := req.toCommand()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.ctrl.Command(r.Context(), cmd); err != nil {
		writeControllerError(w, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, h.ctrl.Telemetry())
}

// KeysHandler handles POST /api/keys.
type KeysHandler struct {
	ctrl Controller
}

// NewKeysHandler creates a new KeysHandler.
func NewKeysHandler(ctrl Controller) *KeysHandler {
	return &KeysHandler{ctrl: ctrl}
}

// keysRequest types Text character by character, then applies Key
// ("enter", "escape" or "backspace") if set.
type keysRequest struct {
	Text string `json:"text"`
	Key  string `json:"key"`
}

type keysResponse struct {
	Applied int  `json:"applied"`
	Typing  bool `json:"typing"`
}

var namedKeys = map[string]engine.KeyKind{
	"enter":     engine.KeyCommit,
	"escape":    engine.KeyCancel,
	"backspace": engine.KeyBackspace,
}

// ServeHTTP applies the requested key events in order.
func (h *KeysHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req keysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var events []engine.KeyEvent
	for _, c := range req.Text {
		if c < 32 || c > 126 {
			writeError(w, http.StatusBadRequest, "Text must be printable ASCII")
			return
		}
		events = append(events, engine.CharTyped(c))
	}
	if req.Key != "" {
		kind, ok := namedKeys[strings.ToLower(req.Key)]
		if !ok {
			writeError(w, http.StatusBadRequest, "Unknown key")
			return
		}
		events = append(events, engine.KeyEvent{Kind: kind})
	}
	if len(events) == 0 {
		writeError(w, http.StatusBadRequest, "Text or key is required")
		return
	}

	applied := 0
	for _, ev := range events {
		changed, err := h.ctrl.Key(r.Context(), ev)
		if err != nil {
			writeControllerError(w, err, http.StatusInternalServerError)
			return
		}
		if changed {
			applied++
		}
	}
	writeJSON(w, http.StatusOK, keysResponse{Applied: applied, Typing: h.ctrl.Telemetry().Typing})
}

// writeControllerError maps app errors to statuses; anything else gets fallback.
func writeControllerError(w http.ResponseWriter, err error, fallback int) {
	switch {
	case errors.Is(err, app.ErrNotRunning):
		writeError(w, http.StatusServiceUnavailable, "Painter is not running")
	case errors.Is(err, app.ErrExportDisabled):
		writeError(w, http.StatusConflict, "Export is not configured")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "Request cancelled")
	default:
		writeError(w, fallback, err.Error())
	}
}
