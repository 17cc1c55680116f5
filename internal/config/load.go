package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ayusman/beyondbrush/internal/chrome"
	"github.com/ayusman/beyondbrush/internal/engine"
)

// Load reads configuration from the provided path. If path is empty, uses DefaultConfigPath.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("camera.device", cfg.Camera.Device)
	v.SetDefault("camera.width", cfg.Camera.Width)
	v.SetDefault("camera.height", cfg.Camera.Height)
	v.SetDefault("camera.mirror", cfg.Camera.Mirror)
	v.SetDefault("camera.active_fps", cfg.Camera.ActiveFPS)
	v.SetDefault("camera.idle_fps", cfg.Camera.IdleFPS)
	v.SetDefault("camera.motion_threshold", cfg.Camera.MotionThreshold)
	v.SetDefault("camera.buffer", cfg.Camera.Buffer)
	v.SetDefault("detector.backend", cfg.Detector.Backend)
	v.SetDefault("detector.max_hands", cfg.Detector.MaxHands)
	v.SetDefault("detector.min_confidence", cfg.Detector.MinConfidence)
	v.SetDefault("detector.min_tracking_confidence", cfg.Detector.MinTrackingConf)
	v.SetDefault("detector.min_score", cfg.Detector.MinScore)
	v.SetDefault("detector.script", cfg.Detector.Script)
	v.SetDefault("detector.python", cfg.Detector.Python)
	v.SetDefault("canvas.brush_size", cfg.Canvas.BrushSize)
	v.SetDefault("canvas.eraser_size", cfg.Canvas.EraserSize)
	v.SetDefault("canvas.subdivisions", cfg.Canvas.Subdivisions)
	v.SetDefault("canvas.limits.brush_min", cfg.Canvas.Limits.BrushMin)
	v.SetDefault("canvas.limits.brush_max", cfg.Canvas.Limits.BrushMax)
	v.SetDefault("canvas.limits.brush_step", cfg.Canvas.Limits.BrushStep)
	v.SetDefault("canvas.limits.eraser_min", cfg.Canvas.Limits.EraserMin)
	v.SetDefault("canvas.limits.eraser_max", cfg.Canvas.Limits.EraserMax)
	v.SetDefault("canvas.limits.eraser_step", cfg.Canvas.Limits.EraserStep)
	v.SetDefault("canvas.persist_sizes", cfg.Canvas.PersistSizes)
	v.SetDefault("text.capacity", cfg.Text.Capacity)
	v.SetDefault("text.font_scale", cfg.Text.FontScale)
	v.SetDefault("text.thickness", cfg.Text.Thickness)
	v.SetDefault("text.color", cfg.Text.Color)
	v.SetDefault("text.caret_x", cfg.Text.CaretX)
	v.SetDefault("text.caret_y", cfg.Text.CaretY)
	v.SetDefault("text.blink_seconds", cfg.Text.BlinkSeconds)
	v.SetDefault("history.capacity", cfg.History.Capacity)
	v.SetDefault("history.granularity", cfg.History.Granularity)
	v.SetDefault("guide.dir", cfg.Guide.Dir)
	v.SetDefault("guide.swipe_threshold", cfg.Guide.SwipeThreshold)
	v.SetDefault("guide.opacity", cfg.Guide.Opacity)
	v.SetDefault("guide.underlay", cfg.Guide.Underlay)
	v.SetDefault("guide.label_inset", cfg.Guide.LabelInset)
	v.SetDefault("chrome.header_dir", cfg.Chrome.HeaderDir)
	v.SetDefault("chrome.show_hint", cfg.Chrome.ShowHint)
	v.SetDefault("chrome.layout.width", cfg.Chrome.Layout.Width)
	v.SetDefault("chrome.layout.height", cfg.Chrome.Layout.Height)
	v.SetDefault("chrome.layout.header_height", cfg.Chrome.Layout.HeaderHeight)
	v.SetDefault("chrome.layout.zones", cfg.Chrome.Layout.Zones)
	v.SetDefault("server.enabled", cfg.Server.Enabled)
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.static_dir", cfg.Server.StaticDir)
	v.SetDefault("server.advertise", cfg.Server.Advertise)
	v.SetDefault("server.service_name", cfg.Server.ServiceName)
	v.SetDefault("server.jpeg_quality", cfg.Server.JPEGQuality)
	v.SetDefault("export.dir", cfg.Export.Dir)
	v.SetDefault("export.format", cfg.Export.Format)
	v.SetDefault("store.path", cfg.Store.Path)

	configLoaded := false
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	} else {
		configLoaded = true
	}

	if configLoaded {
		if !v.InConfig("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	expandConfigEnv(&cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that defaults cannot repair.
func Validate(cfg Config) error {
	var errs []error
	if cfg.Camera.Width <= 0 || cfg.Camera.Height <= 0 {
		errs = append(errs, fmt.Errorf("camera.width and camera.height must be positive"))
	}
	if cfg.Camera.Width != cfg.Chrome.Layout.Width || cfg.Camera.Height != cfg.Chrome.Layout.Height {
		errs = append(errs, fmt.Errorf("chrome.layout size %dx%d must match camera size %dx%d",
			cfg.Chrome.Layout.Width, cfg.Chrome.Layout.Height, cfg.Camera.Width, cfg.Camera.Height))
	}
	switch cfg.Detector.Backend {
	case "mediapipe", "mock":
	default:
		errs = append(errs, fmt.Errorf("unsupported detector.backend %q", cfg.Detector.Backend))
	}
	switch engine.Granularity(cfg.History.Granularity) {
	case engine.GranularityGesture, engine.GranularityFrame:
	default:
		errs = append(errs, fmt.Errorf("unsupported history.granularity %q", cfg.History.Granularity))
	}
	if cfg.History.Capacity < 1 {
		errs = append(errs, fmt.Errorf("history.capacity must be at least 1"))
	}
	if cfg.Text.Capacity < 1 {
		errs = append(errs, fmt.Errorf("text.capacity must be at least 1"))
	}
	if _, err := chrome.ParseHex(cfg.Text.Color); err != nil {
		errs = append(errs, fmt.Errorf("text.color: %w", err))
	}
	l := cfg.Canvas.Limits
	if l.BrushMin < 1 || l.BrushMin > l.BrushMax || l.EraserMin < 1 || l.EraserMin > l.EraserMax {
		errs = append(errs, fmt.Errorf("canvas.limits must satisfy 1 <= min <= max"))
	}
	switch cfg.Export.Format {
	case "png", "pdf":
	default:
		errs = append(errs, fmt.Errorf("unsupported export.format %q", cfg.Export.Format))
	}
	if err := cfg.Chrome.Layout.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("chrome.layout: %w", err))
	}
	return errors.Join(errs...)
}

func expandConfigEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.Detector.Script = expandEnv(cfg.Detector.Script)
	cfg.Detector.Python = expandEnv(cfg.Detector.Python)
	cfg.Guide.Dir = expandEnv(cfg.Guide.Dir)
	cfg.Chrome.HeaderDir = expandEnv(cfg.Chrome.HeaderDir)
	cfg.Server.StaticDir = expandEnv(cfg.Server.StaticDir)
	cfg.Export.Dir = expandEnv(cfg.Export.Dir)
	cfg.Store.Path = expandEnv(cfg.Store.Path)
}

func expandEnv(value string) string {
	if value == "" {
		return value
	}
	return os.Expand(value, func(key string) string {
		if key == "" {
			return ""
		}
		if val, ok := lookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
}

func lookupEnv(key string) (string, bool) {
	if val, ok := os.LookupEnv(key); ok {
		return val, true
	}
	switch key {
	case "UID":
		return fmt.Sprintf("%d", os.Getuid()), true
	case "GID":
		return fmt.Sprintf("%d", os.Getgid()), true
	}
	return "", false
}

// WriteDefault writes the default config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
