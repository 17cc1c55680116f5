// Package chrome describes the header band: its hit zones and the images drawn for it.
package chrome

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
)

// Action is what a zone does when a selection gesture lands on it.
type Action string

const (
	ActionSave     Action = "save"
	ActionColor    Action = "color"
	ActionEraser   Action = "eraser"
	ActionUndo     Action = "undo"
	ActionRedo     Action = "redo"
	ActionGuide    Action = "guide"
	ActionKeyboard Action = "keyboard"
	ActionShrink   Action = "shrink"
	ActionGrow     Action = "grow"
)

// OneShot reports whether the action fires once per hover rather than holding state.
func (a Action) OneShot() bool {
	switch a {
	case ActionSave, ActionUndo, ActionRedo, ActionShrink, ActionGrow:
		return true
	}
	return false
}

func (a Action) valid() bool {
	switch a {
	case ActionSave, ActionColor, ActionEraser, ActionUndo, ActionRedo,
		ActionGuide, ActionKeyboard, ActionShrink, ActionGrow:
		return true
	}
	return false
}

// Zone is a half-open rectangle [MinX,MaxX) x [MinY,MaxY) bound to an action.
type Zone struct {
	Name   string `mapstructure:"name" yaml:"name"`
	Action Action `mapstructure:"action" yaml:"action"`
	MinX   int    `mapstructure:"min_x" yaml:"min_x"`
	MinY   int    `mapstructure:"min_y" yaml:"min_y"`
	MaxX   int    `mapstructure:"max_x" yaml:"max_x"`
	MaxY   int    `mapstructure:"max_y" yaml:"max_y"`
	Color  string `mapstructure:"color,omitempty" yaml:"color,omitempty"`
}

// Rect returns the zone rectangle.
func (z Zone) Rect() image.Rectangle {
	return image.Rect(z.MinX, z.MinY, z.MaxX, z.MaxY)
}

// Contains reports whether p lies in the zone.
func (z Zone) Contains(p image.Point) bool {
	return p.In(z.Rect())
}

// RGBA parses the zone color. Zones without a color return false.
func (z Zone) RGBA() (color.RGBA, bool) {
	c, err := ParseHex(z.Color)
	if err != nil {
		return color.RGBA{}, false
	}
	return c, true
}

// Layout is the frame geometry and the ordered zone table. The first
// matching zone wins, so overlapping zones are resolved by order.
type Layout struct {
	Width        int    `mapstructure:"width" yaml:"width"`
	Height       int    `mapstructure:"height" yaml:"height"`
	HeaderHeight int    `mapstructure:"header_height" yaml:"header_height"`
	Zones        []Zone `mapstructure:"zones" yaml:"zones"`
}

// DefaultLayout returns the 1280x720 layout with a 125px header.
// The size zones come first so they take precedence over the keyboard
// zone where their x ranges overlap.
func DefaultLayout() Layout {
	return Layout{
		Width:        1280,
		Height:       720,
		HeaderHeight: 125,
		Zones: []Zone{
			{Name: "shrink", Action: ActionShrink, MinX: 1155, MinY: 651, MaxX: 1200, MaxY: 720},
			{Name: "grow", Action: ActionGrow, MinX: 1200, MinY: 651, MaxX: 1280, MaxY: 720},
			{Name: "save", Action: ActionSave, MinX: 0, MinY: 0, MaxX: 128, MaxY: 125},
			{Name: "pink", Action: ActionColor, MinX: 128, MinY: 0, MaxX: 256, MaxY: 125, Color: "#ff00ff"},
			{Name: "blue", Action: ActionColor, MinX: 256, MinY: 0, MaxX: 384, MaxY: 125, Color: "#0000ff"},
			{Name: "green", Action: ActionColor, MinX: 384, MinY: 0, MaxX: 512, MaxY: 125, Color: "#00ff00"},
			{Name: "yellow", Action: ActionColor, MinX: 512, MinY: 0, MaxX: 640, MaxY: 125, Color: "#ffff00"},
			{Name: "eraser", Action: ActionEraser, MinX: 640, MinY: 0, MaxX: 768, MaxY: 125},
			{Name: "undo", Action: ActionUndo, MinX: 768, MinY: 0, MaxX: 896, MaxY: 125},
			{Name: "redo", Action: ActionRedo, MinX: 896, MinY: 0, MaxX: 1024, MaxY: 125},
			{Name: "guide", Action: ActionGuide, MinX: 1024, MinY: 0, MaxX: 1152, MaxY: 125},
			{Name: "keyboard", Action: ActionKeyboard, MinX: 1155, MinY: 0, MaxX: 1280, MaxY: 125},
		},
	}
}

// Hit returns the first zone containing p.
func (l Layout) Hit(p image.Point) (Zone, bool) {
	for _, z := range l.Zones {
		if z.Contains(p) {
			return z, true
		}
	}
	return Zone{}, false
}

// InHeader reports whether y lies in the header band.
func (l Layout) InHeader(y int) bool {
	return y >= 0 && y < l.HeaderHeight
}

// Zone looks a zone up by name.
func (l Layout) Zone(name string) (Zone, bool) {
	for _, z := range l.Zones {
		if z.Name == name {
			return z, true
		}
	}
	return Zone{}, false
}

// FirstColor returns the first color zone, used as the initial brush.
func (l Layout) FirstColor() (Zone, bool) {
	for _, z := range l.Zones {
		if z.Action == ActionColor {
			return z, true
		}
	}
	return Zone{}, false
}

// Validate checks the geometry and every zone.
func (l Layout) Validate() error {
	var errs []error
	if l.Width <= 0 || l.Height <= 0 {
		errs = append(errs, fmt.Errorf("invalid frame size %dx%d", l.Width, l.Height))
	}
	if l.HeaderHeight < 0 || l.HeaderHeight >= l.Height {
		errs = append(errs, fmt.Errorf("header height %d out of range", l.HeaderHeight))
	}
	seen := make(map[string]bool, len(l.Zones))
	for i, z := range l.Zones {
		if z.Name == "" {
			errs = append(errs, fmt.Errorf("zone %d: missing name", i))
		} else if seen[z.Name] {
			errs = append(errs, fmt.Errorf("zone %q: duplicate name", z.Name))
		}
		seen[z.Name] = true
		if !z.Action.valid() {
			errs = append(errs, fmt.Errorf("zone %q: unknown action %q", z.Name, z.Action))
		}
		if z.Rect().Empty() {
			errs = append(errs, fmt.Errorf("zone %q: empty rectangle", z.Name))
		}
		if z.Action == ActionColor {
			if _, err := ParseHex(z.Color); err != nil {
				errs = append(errs, fmt.Errorf("zone %q: %w", z.Name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// ParseHex parses "#rrggbb" (the leading # is optional).
func ParseHex(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
