package main

import (
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"runtime"
	"strconv"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/calibration"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/pointer"
	"github.com/ayusman/mudra/internal/store"
)

func newLogger(w io.Writer, json, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// surfaceSize returns the configured surface, or the primary screen.
func surfaceSize(c *config.Config) hand.Size {
	if c.Surface.Width > 0 && c.Surface.Height > 0 {
		return hand.Size{W: float64(c.Surface.Width), H: float64(c.Surface.Height)}
	}
	w, h := pointer.ScreenSize()
	return hand.Size{W: float64(w), H: float64(h)}
}

func controlConfig(c *config.Config, surface hand.Size) control.Config {
	return control.Config{
		Gesture: gesture.Config{
			PinchThreshold:    c.Gestures.PinchThreshold,
			ZoomInFactor:      c.Gestures.ZoomInFactor,
			ZoomOutFactor:     c.Gestures.ZoomOutFactor,
			DoubleClickWindow: c.Gestures.DoubleClickWindow,
		},
		SmoothingWindow: c.Gestures.SmoothingWindow,
		ScreenMargin:    c.Gestures.ScreenMargin,
		Action: action.Config{
			Surface:      surface,
			ScrollStep:   c.Actions.ScrollStep,
			ZoomCooldown: c.Actions.ZoomCooldown,
		},
		Calibration: calibration.Config{
			Dwell:       c.Calibration.Dwell,
			Tolerance:   c.Calibration.Tolerance,
			MarkerInset: c.Calibration.MarkerInset,
		},
	}
}

func detectorConfig(c *config.Config) detector.Config {
	d := detector.DefaultConfig()
	d.MaxHands = c.Detection.MaxHands
	d.MinConfidence = c.Detection.MinDetectionConfidence
	d.MinTrackingConf = c.Detection.MinTrackingConfidence
	return d
}

func cameraConfig(c *config.Config) capture.Config {
	return capture.Config{
		Device: c.Camera.Device,
		Width:  c.Camera.Width,
		Height: c.Camera.Height,
		FPS:    c.Camera.FPS,
		Mirror: c.Camera.Mirror == nil || *c.Camera.Mirror,
	}
}

// startupMode picks the mode from the flag, then the last saved mode, then
// the configuration.
func startupMode(flag string, c *config.Config, s *store.Store) (control.Mode, error) {
	if flag != "" {
		return control.ParseMode(flag)
	}
	if s != nil {
		saved, err := s.Settings().GetOr(store.SettingMode, "")
		if err != nil {
			return "", err
		}
		if saved != "" {
			if m, err := control.ParseMode(saved); err == nil {
				return m, nil
			}
		}
	}
	return control.ParseMode(c.Mode)
}

// startupEnabled returns the last saved enabled state, defaulting to true.
func startupEnabled(s *store.Store) bool {
	if s == nil {
		return true
	}
	v, err := s.Settings().GetOr(store.SettingEnabled, "true")
	if err != nil {
		return true
	}
	enabled, err := strconv.ParseBool(v)
	if err != nil {
		return true
	}
	return enabled
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}
