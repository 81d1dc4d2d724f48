package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/calibration"
	"github.com/ayusman/mudra/internal/control"
)

var calibrateTimeout time.Duration

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Capture the four table corners without the control panel",
	Long: `Calibrate runs the table-mode corner capture from the terminal. Hold
the index fingertip on each marker, in order top-left, top-right,
bottom-right, bottom-left, until its bar fills.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if calibrateTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, calibrateTimeout)
			defer cancel()
		}

		runMode = string(control.Table)
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		a.SetEnabled(true)
		if err := a.StartCalibration(); err != nil {
			return err
		}

		id, events, err := a.Hub().Subscribe(app.DefaultSubscriberBuffer)
		if err != nil {
			return err
		}
		defer a.Hub().Unsubscribe(id)

		if err := a.Start(ctx); err != nil {
			return err
		}
		defer a.Stop()

		m, err := followCalibration(ctx, events, a)
		if err != nil {
			return err
		}

		fmt.Println("Calibration saved to", cfg.Calibration.MatrixPath)
		printMatrix(os.Stdout, m)
		return nil
	},
}

func init() {
	calibrateCmd.Flags().DurationVar(&calibrateTimeout, "timeout", 2*time.Minute, "Give up after this long (0 waits forever)")
	rootCmd.AddCommand(calibrateCmd)
}

// calibrationSource reports the outcome of a capture whose final result may
// have been dropped by the hub.
type calibrationSource interface {
	Status() app.Status
	Calibration() (calibration.Matrix, bool)
}

// followCalibration draws one bar per corner until the capture completes.
func followCalibration(ctx context.Context, events <-chan control.Result, src calibrationSource) (calibration.Matrix, error) {
	var bar *progressbar.ProgressBar
	corner := -1

	finish := func() {
		if bar != nil {
			bar.Finish()
			fmt.Fprintln(os.Stderr)
		}
	}

	for {
		select {
		case <-ctx.Done():
			finish()
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return calibration.Matrix{}, errors.New("calibration timed out")
			}
			return calibration.Matrix{}, ctx.Err()

		case res, ok := <-events:
			if !ok {
				finish()
				return calibration.Matrix{}, errors.New("calibration interrupted")
			}

			switch {
			case res.Calibrated:
				finish()
				if res.Progress.Matrix == nil {
					return calibration.Matrix{}, errors.New("calibration finished without a matrix")
				}
				return *res.Progress.Matrix, nil

			case !res.Calibrating:
				finish()
				if src.Status().Calibration == calibration.Calibrated {
					if m, ok := src.Calibration(); ok {
						return m, nil
					}
				}
				return calibration.Matrix{}, errors.New("calibration failed: the captured corners were degenerate, try again")
			}

			p := res.Progress
			if p.Corner != corner {
				finish()
				corner = p.Corner
				bar = progressbar.NewOptions(100,
					progressbar.OptionSetDescription(fmt.Sprintf("%d/%d %s (%.0f, %.0f)",
						corner+1, calibration.NumCorners, calibration.CornerName(corner), p.Marker.X, p.Marker.Y)),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionShowCount(),
				)
			}
			bar.Set(int(p.Dwell * 100))
		}
	}
}
