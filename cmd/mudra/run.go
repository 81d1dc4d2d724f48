package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/calibration"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/pointer"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/tray"
)

var (
	runMode   string
	runCamera int
	runAddr   string
	runNoTray bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the camera loop, control panel and tray menu",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		a.SetEnabled(startupEnabled(db))

		if err := a.Start(ctx); err != nil {
			return err
		}
		defer a.Stop()

		addr := cfg.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr = runAddr
		}
		srv := server.New(server.Config{
			StaticDir: findWebDir(cfg.Server.StaticDir),
			Runtime:   a,
			Hub:       a.Hub(),
		})
		srvErr := make(chan error, 1)
		go func() { srvErr <- srv.ListenAndServe(ctx, addr) }()

		if runNoTray {
			select {
			case <-ctx.Done():
				return nil
			case err := <-srvErr:
				return serveResult(err)
			}
		}

		t := tray.New(a.IsEnabled(), a.Mode())
		t.OnToggle(a.SetEnabled)
		t.OnMode(func(m control.Mode) {
			if err := a.SetMode(m); err != nil {
				slog.Error("tray: mode change failed", "mode", m, "err", err)
			}
		})
		t.OnRecalibrate(func() {
			if err := a.StartCalibration(); err != nil {
				slog.Error("tray: calibration failed to start", "err", err)
			}
		})
		t.OnSettings(func() {
			if err := openBrowser(panelURL(addr)); err != nil {
				slog.Warn("tray: cannot open control panel", "err", err)
			}
		})
		t.OnQuit(cancel)

		if err := followGestures(ctx, a.Hub(), t); err != nil {
			slog.Warn("tray: gesture updates unavailable", "err", err)
		}

		go func() {
			select {
			case <-ctx.Done():
			case err := <-srvErr:
				if err := serveResult(err); err != nil {
					slog.Error("server: stopped", "err", err)
				}
				cancel()
			}
			t.Quit()
		}()

		// The tray owns the main goroutine until Quit.
		t.Run()
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runMode, "mode", "", "Start in this mode (screen or table)")
	runCmd.Flags().IntVar(&runCamera, "camera", 0, "Camera device index")
	runCmd.Flags().StringVar(&runAddr, "addr", ":8080", "Control panel listen address")
	runCmd.Flags().BoolVar(&runNoTray, "no-tray", false, "Run without the tray menu")
	rootCmd.AddCommand(runCmd)
}

// newApp builds the application from the loaded configuration and flags.
func newApp(cmd *cobra.Command) (*app.App, error) {
	mode, err := startupMode(runMode, cfg, db)
	if err != nil {
		return nil, err
	}

	surface := surfaceSize(cfg)
	if surface.Empty() {
		return nil, errors.New("cannot determine the screen size, set surface.width and surface.height")
	}

	cam := cameraConfig(cfg)
	if cmd.Flags().Changed("camera") {
		cam.Device = runCamera
	}

	return app.New(app.Config{
		Store:            db,
		CalibrationStore: calibration.NewFileStore(cfg.Calibration.MatrixPath),
		Camera:           capture.NewCamera(cam),
		DetectorConfig:   detectorConfig(cfg),
		Injector:         pointer.NewRobot(*cfg.Actions.FailSafe),
		Control:          controlConfig(cfg, surface),
		Mode:             mode,
		MotionThreshold:  cfg.Camera.MotionThreshold,
		Logger:           slog.Default(),
	})
}

// followGestures shows the latest non-idle gesture in the tray.
func followGestures(ctx context.Context, hub *app.Hub, t *tray.Tray) error {
	id, events, err := hub.Subscribe(app.DefaultSubscriberBuffer)
	if err != nil {
		return err
	}
	go func() {
		defer hub.Unsubscribe(id)
		last := gesture.None
		for {
			select {
			case <-ctx.Done():
				return
			case res, ok := <-events:
				if !ok {
					return
				}
				k := res.Event.Kind
				if k == gesture.None || k == gesture.Cursor || k == last {
					continue
				}
				last = k
				t.SetLastGesture(k.String())
			}
		}
	}()
	return nil
}

func serveResult(err error) error {
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("server: %w", err)
}

func panelURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

// findWebDir returns dir when set, else the first web directory found next
// to the working directory or under the data directory.
func findWebDir(dir string) string {
	candidates := []string{"web", "../web", "../../web", filepath.Join(config.Dir(), "web")}
	if dir != "" {
		candidates = []string{dir}
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}
