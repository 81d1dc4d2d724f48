package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/calibration"
	"github.com/ayusman/mudra/internal/store"
)

var (
	historyLimit int
	resetYes     bool
)

var calibrationCmd = &cobra.Command{
	Use:   "calibration",
	Short: "Inspect or clear the table calibration",
}

var calibrationShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active matrix and recent calibrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showCalibration(os.Stdout, calibration.NewFileStore(cfg.Calibration.MatrixPath), db, historyLimit)
	},
}

var calibrationResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the saved matrix and the calibration history",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes && !confirm(bufio.NewReader(os.Stdin), os.Stdout, "Delete the saved calibration and its history?") {
			fmt.Println("Aborted.")
			return nil
		}
		n, err := resetCalibration(calibration.NewFileStore(cfg.Calibration.MatrixPath), db)
		if err != nil {
			return err
		}
		fmt.Printf("Calibration cleared, %d history entries removed.\n", n)
		return nil
	},
}

func init() {
	calibrationShowCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "History entries to list")
	calibrationResetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Do not ask for confirmation")
	calibrationCmd.AddCommand(calibrationShowCmd, calibrationResetCmd)
	rootCmd.AddCommand(calibrationCmd)
}

func showCalibration(w io.Writer, fs calibration.Store, s *store.Store, limit int) error {
	m, err := fs.Load()
	switch {
	case errors.Is(err, calibration.ErrNoCalibration):
		fmt.Fprintln(w, "Not calibrated.")
	case err != nil:
		return err
	default:
		fmt.Fprintln(w, "Active matrix:")
		printMatrix(w, m)
	}

	if s == nil {
		return nil
	}
	history, err := s.Calibrations().List(limit)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "ID\tSURFACE\tCORNERS\tCREATED")
	fmt.Fprintln(tw, "--\t-------\t-------\t-------")
	for _, c := range history {
		corners := make([]string, len(c.Points))
		for i, p := range c.Points {
			corners[i] = fmt.Sprintf("(%.0f,%.0f)", p.X, p.Y)
		}
		fmt.Fprintf(tw, "%s\t%.0fx%.0f\t%s\t%s\n",
			c.ID, c.Surface.W, c.Surface.H, strings.Join(corners, " "), c.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

// resetCalibration removes the saved matrix and returns how many history
// entries were deleted.
func resetCalibration(fs calibration.Store, s *store.Store) (int64, error) {
	if err := fs.Delete(); err != nil {
		return 0, err
	}
	if s == nil {
		return 0, nil
	}
	return s.Calibrations().DeleteAll()
}

func printMatrix(w io.Writer, m calibration.Matrix) {
	for _, row := range m {
		fmt.Fprintf(w, "  [% 12.6f % 12.6f % 12.6f]\n", row[0], row[1], row[2])
	}
}

func confirm(r *bufio.Reader, w io.Writer, prompt string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", prompt)
	res, _ := r.ReadString('\n')
	res = strings.TrimSpace(strings.ToLower(res))
	return res == "y" || res == "yes"
}
