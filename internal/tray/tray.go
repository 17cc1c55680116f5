// Package tray provides a system tray interface for the beyondbrush painter.
package tray

import (
	"fmt"
	"sync"
	"time"

	"github.com/ayusman/beyondbrush/internal/app"
	"github.com/getlantern/systray"
	"gocv.io/x/gocv"
)

// statusInterval limits how often the status line and tooltip are redrawn.
const statusInterval = 500 * time.Millisecond

// Tray is the system tray menu: pause/resume, save painting, quit.
// It is also an app.Sink so the status line follows the pipeline.
type Tray struct {
	onToggle func(enabled bool)
	onSave   func() (string, error)
	onQuit   func()
	enabled  bool
	mu       sync.RWMutex

	lastStatus time.Time

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuStatus *systray.MenuItem
	menuSaved  *systray.MenuItem
}

// New creates a new Tray instance with tracking enabled.
func New() *Tray {
	return &Tray{
		enabled: true,
	}
}

// OnToggle sets the callback for pausing and resuming hand tracking.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSave sets the callback for the save menu item. It returns the saved path.
func (t *Tray) OnSave(fn func() (string, error)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSave = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called and must run on the main thread.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray from outside the menu.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
func (t *Tray) onReady() {
	systray.SetTitle("Beyond The Brush")
	systray.SetTooltip("Beyond The Brush virtual painter")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Pause or resume hand tracking")
	systray.AddSeparator()

	t.menuStatus = systray.AddMenuItem("Starting...", "Pipeline status")
	t.menuStatus.Disable()
	t.menuSaved = systray.AddMenuItem("Last save: none", "Last saved painting")
	t.menuSaved.Disable()
	systray.AddSeparator()
	t.mu.Unlock()

	menuSave := systray.AddMenuItem("Save Painting", "Save the canvas and text to the export directory")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Beyond The Brush")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuSave.ClickedCh:
				t.handleSave()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// handleSave runs the save callback and shows the result in the menu.
func (t *Tray) handleSave() {
	t.mu.RLock()
	callback := t.onSave
	t.mu.RUnlock()
	if callback == nil {
		return
	}

	title := "Last save: "
	path, err := callback()
	if err != nil {
		title += "failed (" + err.Error() + ")"
	} else {
		title += path
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.menuSaved != nil {
		t.menuSaved.SetTitle(title)
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// Publish implements app.Sink. Only the telemetry is used.
func (t *Tray) Publish(_ *gocv.Mat, tel app.Telemetry) {
	now := time.Now()

	t.mu.Lock()
	if now.Sub(t.lastStatus) < statusInterval || t.menuStatus == nil {
		t.mu.Unlock()
		return
	}
	t.lastStatus = now
	item := t.menuStatus
	t.mu.Unlock()

	status := Status(tel)
	item.SetTitle(status)
	systray.SetTooltip("Beyond The Brush: " + status)
}

// SetEnabled syncs the toggle item with a state change made elsewhere.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Status formats telemetry as a one-line status.
func Status(tel app.Telemetry) string {
	if tel.Paused {
		return fmt.Sprintf("Paused | %.0f fps", tel.FPS)
	}
	s := fmt.Sprintf("%.0f fps | hands %d | %s | %s %d", tel.FPS, tel.Hands, tel.Mode, tel.Tool, tel.Size)
	if tel.Typing {
		s += " | typing"
	}
	if tel.Guide {
		s += fmt.Sprintf(" | guide %d/%d", tel.GuidePage+1, tel.GuidePages)
	}
	return s
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Tracking"
	}
	return "○ Paused"
}
