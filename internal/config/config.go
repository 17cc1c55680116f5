// Package config loads the beyondbrush configuration file.
package config

import (
	"os"
	"path/filepath"

	"github.com/ayusman/beyondbrush/internal/chrome"
	"github.com/ayusman/beyondbrush/internal/engine"
)

// CurrentConfigVersion is the supported config schema version.
const CurrentConfigVersion = 1

// Config is the root configuration.
type Config struct {
	ConfigVersion int            `mapstructure:"config_version" yaml:"config_version"`
	Camera        CameraConfig   `mapstructure:"camera" yaml:"camera"`
	Detector      DetectorConfig `mapstructure:"detector" yaml:"detector"`
	Canvas        CanvasConfig   `mapstructure:"canvas" yaml:"canvas"`
	Text          TextConfig     `mapstructure:"text" yaml:"text"`
	History       HistoryConfig  `mapstructure:"history" yaml:"history"`
	Guide         GuideConfig    `mapstructure:"guide" yaml:"guide"`
	Chrome        ChromeConfig   `mapstructure:"chrome" yaml:"chrome"`
	Server        ServerConfig   `mapstructure:"server" yaml:"server"`
	Export        ExportConfig   `mapstructure:"export" yaml:"export"`
	Store         StoreConfig    `mapstructure:"store" yaml:"store"`
}

// CameraConfig configures video capture.
type CameraConfig struct {
	Device int  `mapstructure:"device" yaml:"device"`
	Width  int  `mapstructure:"width" yaml:"width"`
	Height int  `mapstructure:"height" yaml:"height"`
	Mirror bool `mapstructure:"mirror" yaml:"mirror"`
	// ActiveFPS is used while motion is seen, IdleFPS otherwise.
	ActiveFPS int `mapstructure:"active_fps" yaml:"active_fps"`
	IdleFPS   int `mapstructure:"idle_fps" yaml:"idle_fps"`
	// MotionThreshold is the percentage of changed pixels that counts as motion.
	MotionThreshold float64 `mapstructure:"motion_threshold" yaml:"motion_threshold"`
	// Buffer is the number of frames the grabber may hold before dropping the oldest.
	Buffer int `mapstructure:"buffer" yaml:"buffer"`
}

// DetectorConfig configures the hand landmark detector.
type DetectorConfig struct {
	// Backend is "mediapipe" or "mock".
	Backend         string  `mapstructure:"backend" yaml:"backend"`
	MaxHands        int     `mapstructure:"max_hands" yaml:"max_hands"`
	MinConfidence   float64 `mapstructure:"min_confidence" yaml:"min_confidence"`
	MinTrackingConf float64 `mapstructure:"min_tracking_confidence" yaml:"min_tracking_confidence"`
	// MinScore drops hands reported below this score.
	MinScore float64 `mapstructure:"min_score" yaml:"min_score"`
	Script   string  `mapstructure:"script" yaml:"script"`
	Python   string  `mapstructure:"python" yaml:"python"`
}

// CanvasConfig configures the drawing tools.
type CanvasConfig struct {
	BrushSize    int               `mapstructure:"brush_size" yaml:"brush_size"`
	EraserSize   int               `mapstructure:"eraser_size" yaml:"eraser_size"`
	Subdivisions int               `mapstructure:"subdivisions" yaml:"subdivisions"`
	Limits       engine.SizeLimits `mapstructure:"limits" yaml:"limits"`
	PersistSizes bool              `mapstructure:"persist_sizes" yaml:"persist_sizes"`
}

// TextConfig configures text annotations and the typing caret.
type TextConfig struct {
	Capacity     int     `mapstructure:"capacity" yaml:"capacity"`
	FontScale    float64 `mapstructure:"font_scale" yaml:"font_scale"`
	Thickness    int     `mapstructure:"thickness" yaml:"thickness"`
	Color        string  `mapstructure:"color" yaml:"color"`
	CaretX       int     `mapstructure:"caret_x" yaml:"caret_x"`
	CaretY       int     `mapstructure:"caret_y" yaml:"caret_y"`
	BlinkSeconds float64 `mapstructure:"blink_seconds" yaml:"blink_seconds"`
}

// HistoryConfig configures undo/redo.
type HistoryConfig struct {
	Capacity    int    `mapstructure:"capacity" yaml:"capacity"`
	Granularity string `mapstructure:"granularity" yaml:"granularity"`
}

// GuideConfig configures the reference guide overlay.
type GuideConfig struct {
	Dir            string  `mapstructure:"dir" yaml:"dir"`
	SwipeThreshold int     `mapstructure:"swipe_threshold" yaml:"swipe_threshold"`
	Opacity        float64 `mapstructure:"opacity" yaml:"opacity"`
	Underlay       float64 `mapstructure:"underlay" yaml:"underlay"`
	LabelInset     int     `mapstructure:"label_inset" yaml:"label_inset"`
}

// ChromeConfig configures the header band and control zones.
type ChromeConfig struct {
	HeaderDir string        `mapstructure:"header_dir" yaml:"header_dir"`
	ShowHint  bool          `mapstructure:"show_hint" yaml:"show_hint"`
	Layout    chrome.Layout `mapstructure:"layout" yaml:"layout"`
}

// ServerConfig configures the HTTP display sink.
type ServerConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr      string `mapstructure:"addr" yaml:"addr"`
	StaticDir string `mapstructure:"static_dir" yaml:"static_dir"`
	// Advertise publishes the stream over mDNS.
	Advertise   bool   `mapstructure:"advertise" yaml:"advertise"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	JPEGQuality int    `mapstructure:"jpeg_quality" yaml:"jpeg_quality"`
}

// ExportConfig configures saved paintings.
type ExportConfig struct {
	Dir    string `mapstructure:"dir" yaml:"dir"`
	Format string `mapstructure:"format" yaml:"format"`
}

// StoreConfig configures the SQLite database.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	layout := chrome.DefaultLayout()
	return Config{
		ConfigVersion: CurrentConfigVersion,
		Camera: CameraConfig{
			Device:          0,
			Width:           layout.Width,
			Height:          layout.Height,
			Mirror:          true,
			ActiveFPS:       30,
			IdleFPS:         5,
			MotionThreshold: 1.0,
			Buffer:          2,
		},
		Detector: DetectorConfig{
			Backend:         "mediapipe",
			MaxHands:        1,
			MinConfidence:   0.85,
			MinTrackingConf: 0.5,
			MinScore:        0.5,
			Script:          filepath.Join(home, ".beyondbrush", "scripts", "hand_service.py"),
			Python:          "",
		},
		Canvas: CanvasConfig{
			BrushSize:    10,
			EraserSize:   100,
			Subdivisions: 10,
			Limits:       engine.DefaultSizeLimits(),
			PersistSizes: true,
		},
		Text: TextConfig{
			Capacity:     20,
			FontScale:    1.0,
			Thickness:    2,
			Color:        "#ffffff",
			CaretX:       640,
			CaretY:       360,
			BlinkSeconds: 0.5,
		},
		History: HistoryConfig{
			Capacity:    20,
			Granularity: string(engine.GranularityGesture),
		},
		Guide: GuideConfig{
			Dir:            filepath.Join(home, ".beyondbrush", "guide"),
			SwipeThreshold: 50,
			Opacity:        0.3,
			Underlay:       0.3,
			LabelInset:     180,
		},
		Chrome: ChromeConfig{
			HeaderDir: filepath.Join(home, ".beyondbrush", "header"),
			ShowHint:  true,
			Layout:    layout,
		},
		Server: ServerConfig{
			Enabled:     true,
			Addr:        ":8080",
			StaticDir:   "",
			Advertise:   false,
			ServiceName: "beyondbrush",
			JPEGQuality: 80,
		},
		Export: ExportConfig{
			Dir:    filepath.Join(home, "Pictures"),
			Format: "png",
		},
		Store: StoreConfig{
			Path: filepath.Join(home, ".beyondbrush", "beyondbrush.db"),
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".beyondbrush", "config.yaml"), nil
}
