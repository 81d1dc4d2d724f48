package app

import (
	"context"
	"errors"
	"time"

	"github.com/ayusman/mudra/internal/calibration"
)

// run is the frame loop. Every tick reads one frame and processes it; a
// frame that cannot be read is skipped.
func (a *App) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	fps := a.camera.FPS()
	if fps <= 0 {
		fps = 30
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.camera.ReadFrame()
			if err != nil {
				a.logger.Debug("app: read frame", "err", err)
				continue
			}

			_, err = a.ProcessFrame(frame, now)
			frame.Close()
			if err != nil {
				if errors.Is(err, calibration.ErrDegenerate) {
					a.logger.Warn("app: calibration points were degenerate, start again", "err", err)
				} else {
					a.logger.Error("app: process frame", "err", err)
				}
			}
		}
	}
}
