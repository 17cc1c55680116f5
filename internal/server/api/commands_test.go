package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ayusman/beyondbrush/internal/app"
	"github.com/ayusman/beyondbrush/internal/canvas"
	"github.com/ayusman/beyondbrush/internal/engine"
	"github.com/ayusman/beyondbrush/internal/store"
)

type fakeController struct {
	commands []engine.Command
	keys     []engine.KeyEvent
	saves    int
	enabled  bool
	typing   bool

	commandErr error
	saveErr    error
	keyErr     error
}

func (f *fakeController) Command(_ context.Context, cmd engine.Command) error {
	if f.commandErr != nil {
		return f.commandErr
	}
	f.commands = append(f.commands, cmd)
	return nil
}

func (f *fakeController) Key(_ context.Context, ev engine.KeyEvent) (bool, error) {
	if f.keyErr != nil {
		return false, f.keyErr
	}
	f.keys = append(f.keys, ev)
	if ev.Kind == engine.KeyCancel {
		f.typing = false
		return false, nil
	}
	return true, nil
}

func (f *fakeController) Save(context.Context) (*store.Painting, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.saves++
	return &store.Painting{ID: "p1", Path: "/tmp/p1.png", Format: "png", Width: 1280, Height: 720, CreatedAt: time.Now()}, nil
}

func (f *fakeController) Telemetry() app.Telemetry {
	return app.Telemetry{Paused: !f.enabled, Typing: f.typing, Mode: "reset"}
}

func (f *fakeController) SetEnabled(enabled bool) { f.enabled = enabled }

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCommandHandler_EngineCommands(t *testing.T) {
	tests := []struct {
		name string
		body string
		want engine.Command
	}{
		{
			name: "undo",
			body: `{"kind": "undo"}`,
			want: engine.Command{Kind: engine.CmdUndo},
		},
		{
			name: "adjust size",
			body: `{"kind": "adjust_size", "steps": -2}`,
			want: engine.Command{Kind: engine.CmdAdjustSize, Steps: -2},
		},
		{
			name: "guide page",
			body: `{"kind": "guide_page", "page": 3}`,
			want: engine.Command{Kind: engine.CmdGuidePage, Page: 3},
		},
		{
			name: "brush",
			body: `{"kind": "set_tool", "tool": "brush", "color": "#00ff00", "size": 12}`,
			want: engine.Command{Kind: engine.CmdSetTool, Tool: canvas.NewBrush(color.RGBA{G: 255, A: 255}, 12)},
		},
		{
			name: "eraser",
			body: `{"kind": "set_tool", "tool": "eraser"}`,
			want: engine.Command{Kind: engine.CmdSetTool, Tool: canvas.NewEraser(0)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := &fakeController{enabled: true}
			rec := post(t, NewCommandHandler(ctrl), "/api/commands", tt.body)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
			}
			if len(ctrl.commands) != 1 || ctrl.commands[0] != tt.want {
				t.Errorf("commands = %+v, want %+v", ctrl.commands, tt.want)
			}
			var tel app.Telemetry
			if err := json.NewDecoder(rec.Body).Decode(&tel); err != nil {
				t.Fatalf("failed to decode telemetry: %v", err)
			}
			if tel.Mode != "reset" {
				t.Errorf("telemetry mode = %q", tel.Mode)
			}
		})
	}
}

func TestCommandHandler_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: `{"kind":`},
		{name: "missing kind", body: `{}`},
		{name: "brush without color", body: `{"kind": "set_tool", "tool": "brush"}`},
		{name: "bad color", body: `{"kind": "set_tool", "color": "green"}`},
		{name: "unknown tool", body: `{"kind": "set_tool", "tool": "spray"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := &fakeController{}
			rec := post(t, NewCommandHandler(ctrl), "/api/commands", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
			if len(ctrl.commands) != 0 {
				t.Errorf("no command should be applied, got %+v", ctrl.commands)
			}
		})
	}
}

func TestCommandHandler_Save(t *testing.T) {
	ctrl := &fakeController{}
	rec := post(t, NewCommandHandler(ctrl), "/api/commands", `{"kind": "save"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, rec.Code)
	}
	var p paintingResponse
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("failed to decode painting: %v", err)
	}
	if p.ID != "p1" || ctrl.saves != 1 {
		t.Errorf("painting = %+v, saves = %d", p, ctrl.saves)
	}
}

func TestCommandHandler_PauseResume(t *testing.T) {
	ctrl := &fakeController{enabled: true}
	h := NewCommandHandler(ctrl)

	post(t, h, "/api/commands", `{"kind": "pause"}`)
	if ctrl.enabled {
		t.Error("pause should disable tracking")
	}
	rec := post(t, h, "/api/commands", `{"kind": "resume"}`)
	if !ctrl.enabled {
		t.Error("resume should enable tracking")
	}
	var tel app.Telemetry
	if err := json.NewDecoder(rec.Body).Decode(&tel); err != nil {
		t.Fatalf("failed to decode telemetry: %v", err)
	}
	if tel.Paused {
		t.Error("telemetry should not report paused after resume")
	}
}

func TestCommandHandler_ControllerErrors(t *testing.T) {
	tests := []struct {
		name   string
		ctrl   *fakeController
		body   string
		status int
	}{
		{
			name:   "not running",
			ctrl:   &fakeController{commandErr: app.ErrNotRunning},
			body:   `{"kind": "undo"}`,
			status: http.StatusServiceUnavailable,
		},
		{
			name:   "unknown engine command",
			ctrl:   &fakeController{commandErr: errors.New(`unknown command "spin"`)},
			body:   `{"kind": "spin"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "export disabled",
			ctrl:   &fakeController{saveErr: app.ErrExportDisabled},
			body:   `{"kind": "save"}`,
			status: http.StatusConflict,
		},
		{
			name:   "save failure",
			ctrl:   &fakeController{saveErr: errors.New("disk full")},
			body:   `{"kind": "save"}`,
			status: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, NewCommandHandler(tt.ctrl), "/api/commands", tt.body)
			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestCommandHandler_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	NewCommandHandler(&fakeController{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/commands", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestKeysHandler(t *testing.T) {
	t.Run("types text then commits", func(t *testing.T) {
		ctrl := &fakeController{typing: true}
		rec := post(t, NewKeysHandler(ctrl), "/api/keys", `{"text": "Hi!", "key": "Enter"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		want := []engine.KeyEvent{
			engine.CharTyped('H'), engine.CharTyped('i'), engine.CharTyped('!'),
			{Kind: engine.KeyCommit},
		}
		if len(ctrl.keys) != len(want) {
			t.Fatalf("keys = %+v, want %+v", ctrl.keys, want)
		}
		for i := range want {
			if ctrl.keys[i] != want[i] {
				t.Errorf("key %d = %+v, want %+v", i, ctrl.keys[i], want[i])
			}
		}
		var resp keysResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Applied != 4 || !resp.Typing {
			t.Errorf("response = %+v", resp)
		}
	})

	t.Run("escape ends typing", func(t *testing.T) {
		ctrl := &fakeController{typing: true}
		rec := post(t, NewKeysHandler(ctrl), "/api/keys", `{"key": "escape"}`)

		var resp keysResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Applied != 0 || resp.Typing {
			t.Errorf("response = %+v", resp)
		}
	})

	bad := []struct {
		name string
		body string
	}{
		{name: "empty", body: `{}`},
		{name: "unknown key", body: `{"key": "tab"}`},
		{name: "non ascii", body: `{"text": "héllo"}`},
		{name: "control char", body: `{"text": "a\tb"}`},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := &fakeController{}
			rec := post(t, NewKeysHandler(ctrl), "/api/keys", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
			if len(ctrl.keys) != 0 {
				t.Errorf("no key should be applied, got %+v", ctrl.keys)
			}
		})
	}

	t.Run("not running", func(t *testing.T) {
		ctrl := &fakeController{keyErr: app.ErrNotRunning}
		rec := post(t, NewKeysHandler(ctrl), "/api/keys", `{"text": "a"}`)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
		}
	})
}
