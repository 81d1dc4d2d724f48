// Package config loads the mudra YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete application configuration.
type Config struct {
	Mode        string            `yaml:"mode"` // screen, table
	Detection   DetectionConfig   `yaml:"detection"`
	Gestures    GesturesConfig    `yaml:"gestures"`
	Actions     ActionsConfig     `yaml:"actions"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Camera      CameraConfig      `yaml:"camera"`
	Surface     SurfaceConfig     `yaml:"surface"`
	Server      ServerConfig      `yaml:"server"`
}

// DetectionConfig is forwarded to the hand detector.
type DetectionConfig struct {
	MinDetectionConfidence float64 `yaml:"min_detection_confidence"`
	MinTrackingConfidence  float64 `yaml:"min_tracking_confidence"`
	MaxHands               int     `yaml:"max_hands"`
}

// GesturesConfig holds the classifier thresholds.
type GesturesConfig struct {
	PinchThreshold    float64       `yaml:"pinch_threshold"` // pixels
	ZoomInFactor      float64       `yaml:"zoom_in_factor"`
	ZoomOutFactor     float64       `yaml:"zoom_out_factor"`
	SmoothingWindow   int           `yaml:"smoothing_window"`
	DoubleClickWindow time.Duration `yaml:"double_click_window"`
	ScreenMargin      float64       `yaml:"screen_margin"` // camera pixels mapped to the screen edge
}

// ActionsConfig holds pointer action settings.
type ActionsConfig struct {
	ScrollStep   int           `yaml:"scroll_step"`
	ZoomCooldown time.Duration `yaml:"zoom_cooldown"`
	FailSafe     *bool         `yaml:"failsafe,omitempty"`
}

// CalibrationConfig holds the table-mode calibration settings.
type CalibrationConfig struct {
	Dwell       time.Duration `yaml:"dwell"`
	Tolerance   float64       `yaml:"tolerance"`    // camera pixels
	MarkerInset float64       `yaml:"marker_inset"` // camera pixels
	MatrixPath  string        `yaml:"matrix_path"`
}

// CameraConfig holds capture settings.
type CameraConfig struct {
	Device int   `yaml:"device"`
	Width  int   `yaml:"width"`
	Height int   `yaml:"height"`
	FPS    int   `yaml:"fps"`
	Mirror *bool `yaml:"mirror,omitempty"`

	// MotionThreshold is the percentage of changed pixels needed to run
	// detection while no hand is in view. Zero detects on every frame.
	MotionThreshold float64 `yaml:"motion_threshold"`
}

// SurfaceConfig is the pointer target size. Zero means the primary screen.
type SurfaceConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// ServerConfig holds the HTTP control surface settings.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
}

// Modes accepted in Config.Mode.
const (
	ModeScreen = "screen"
	ModeTable  = "table"
)

// Dir returns the per-user data directory, ~/.mudra.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mudra"
	}
	return filepath.Join(home, ".mudra")
}

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and validates the YAML file at path. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate fills unset fields with defaults and rejects invalid values.
func Validate(cfg *Config) error {
	cfg.applyDefaults()

	switch cfg.Mode {
	case ModeScreen, ModeTable:
	default:
		return fmt.Errorf("mode must be %q or %q, got %q", ModeScreen, ModeTable, cfg.Mode)
	}

	d := cfg.Detection
	if d.MinDetectionConfidence < 0 || d.MinDetectionConfidence > 1 {
		return fmt.Errorf("detection.min_detection_confidence must be in [0,1], got %v", d.MinDetectionConfidence)
	}
	if d.MinTrackingConfidence < 0 || d.MinTrackingConfidence > 1 {
		return fmt.Errorf("detection.min_tracking_confidence must be in [0,1], got %v", d.MinTrackingConfidence)
	}
	if d.MaxHands < 1 || d.MaxHands > 2 {
		return fmt.Errorf("detection.max_hands must be 1 or 2, got %d", d.MaxHands)
	}

	g := cfg.Gestures
	if g.PinchThreshold < 0 {
		return fmt.Errorf("gestures.pinch_threshold must be positive, got %v", g.PinchThreshold)
	}
	if g.ZoomOutFactor >= g.ZoomInFactor {
		return fmt.Errorf("gestures.zoom_out_factor (%v) must be below zoom_in_factor (%v)", g.ZoomOutFactor, g.ZoomInFactor)
	}
	if g.SmoothingWindow < 0 {
		return fmt.Errorf("gestures.smoothing_window must be positive, got %d", g.SmoothingWindow)
	}
	if g.DoubleClickWindow < 0 {
		return fmt.Errorf("gestures.double_click_window must be positive, got %v", g.DoubleClickWindow)
	}

	if cfg.Actions.ZoomCooldown < 0 {
		return fmt.Errorf("actions.zoom_cooldown must be positive, got %v", cfg.Actions.ZoomCooldown)
	}

	c := cfg.Calibration
	if c.Dwell < 0 {
		return fmt.Errorf("calibration.dwell must be positive, got %v", c.Dwell)
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("calibration.tolerance must be positive, got %v", c.Tolerance)
	}

	if cfg.Camera.MotionThreshold < 0 || cfg.Camera.MotionThreshold > 100 {
		return fmt.Errorf("camera.motion_threshold must be in [0,100], got %v", cfg.Camera.MotionThreshold)
	}

	if cfg.Surface.Width < 0 || cfg.Surface.Height < 0 {
		return fmt.Errorf("surface size must not be negative, got %dx%d", cfg.Surface.Width, cfg.Surface.Height)
	}
	if (cfg.Surface.Width == 0) != (cfg.Surface.Height == 0) {
		return fmt.Errorf("surface width and height must both be set or both be zero")
	}

	return nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Mode == "" {
		cfg.Mode = ModeScreen
	}

	if cfg.Detection.MinDetectionConfidence == 0 {
		cfg.Detection.MinDetectionConfidence = 0.7
	}
	if cfg.Detection.MinTrackingConfidence == 0 {
		cfg.Detection.MinTrackingConfidence = 0.5
	}
	if cfg.Detection.MaxHands == 0 {
		cfg.Detection.MaxHands = 2
	}

	if cfg.Gestures.PinchThreshold == 0 {
		cfg.Gestures.PinchThreshold = 40
	}
	if cfg.Gestures.ZoomInFactor == 0 {
		cfg.Gestures.ZoomInFactor = 1.5
	}
	if cfg.Gestures.ZoomOutFactor == 0 {
		cfg.Gestures.ZoomOutFactor = 0.7
	}
	if cfg.Gestures.SmoothingWindow == 0 {
		cfg.Gestures.SmoothingWindow = 5
	}
	if cfg.Gestures.DoubleClickWindow == 0 {
		cfg.Gestures.DoubleClickWindow = 500 * time.Millisecond
	}
	if cfg.Gestures.ScreenMargin == 0 {
		cfg.Gestures.ScreenMargin = 100
	}

	if cfg.Actions.ScrollStep == 0 {
		cfg.Actions.ScrollStep = 10
	}
	if cfg.Actions.ZoomCooldown == 0 {
		cfg.Actions.ZoomCooldown = 100 * time.Millisecond
	}
	if cfg.Actions.FailSafe == nil {
		cfg.Actions.FailSafe = boolPtr(true)
	}

	if cfg.Calibration.Dwell == 0 {
		cfg.Calibration.Dwell = 3 * time.Second
	}
	if cfg.Calibration.Tolerance == 0 {
		cfg.Calibration.Tolerance = 50
	}
	if cfg.Calibration.MarkerInset == 0 {
		cfg.Calibration.MarkerInset = 50
	}
	if cfg.Calibration.MatrixPath == "" {
		cfg.Calibration.MatrixPath = filepath.Join(Dir(), "calibration.json")
	}

	if cfg.Camera.Width == 0 {
		cfg.Camera.Width = 640
	}
	if cfg.Camera.Height == 0 {
		cfg.Camera.Height = 480
	}
	if cfg.Camera.FPS == 0 {
		cfg.Camera.FPS = 30
	}
	if cfg.Camera.Mirror == nil {
		cfg.Camera.Mirror = boolPtr(true)
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
}

func boolPtr(b bool) *bool {
	return &b
}
