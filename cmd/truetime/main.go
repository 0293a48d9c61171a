//go:build linux

package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ptpclock/truetime/pkg/shmframe"
	"github.com/ptpclock/truetime/pkg/truetime"
)

type gettimeOpts struct {
	shmPath string
	ptpPath string
	follow  bool
	utc     bool
	version int
}

func main() {
	var o gettimeOpts

	root := &cobra.Command{
		Use:   "truetime",
		Short: "Read a TrueTime interval from a PTP synchronization daemon",
		Long: `truetime reads synchronization metadata published by a PTP daemon from
shared memory, samples the PTP hardware clock, and prints the resulting
[earliest, latest] TrueTime interval in nanoseconds.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGettime(cmd, o)
		},
	}

	root.Flags().StringVar(&o.shmPath, "shm-path", "", "shared-memory file path (default depends on -V)")
	root.Flags().StringVar(&o.ptpPath, "ptp-path", "/dev/fbclock/ptp", "PHC device path")
	root.Flags().BoolVarP(&o.follow, "follow", "f", false, "loop once per second instead of reading once")
	root.Flags().BoolVarP(&o.utc, "utc", "u", false, "return UTC instead of TAI")
	root.Flags().IntVarP(&o.version, "shm-version", "V", 1, "shared-memory layout version (1 or 2)")

	root.AddCommand(newSimulateCmd())

	if err := root.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func runGettime(cmd *cobra.Command, o gettimeOpts) error {
	if o.version != 1 && o.version != 2 {
		return fmt.Errorf("invalid -V %d: must be 1 or 2", o.version)
	}

	shmPath := o.shmPath
	if shmPath == "" {
		shmPath = defaultShmPath(o.version)
	}

	h, err := truetime.Open(shmPath, truetime.WithPTPPath(o.ptpPath))
	if err != nil {
		return fmt.Errorf("%s: %s", shmPath, truetime.StrError(err))
	}
	defer func() {
		if cerr := h.Close(); cerr != nil {
			slog.Warn("close handle", "err", cerr)
		}
	}()

	if o.version == 1 {
		slog.Debug("checksum dispatch", "method", shmframe.CRCMethod(), "sample-method", h.Method())
	}

	for {
		tt, err := read(h, o.utc)
		if err != nil {
			return fmt.Errorf("gettime: %s", truetime.StrError(err))
		}
		printTrueTime(cmd, tt)

		if !o.follow {
			return nil
		}
		time.Sleep(time.Second)
	}
}

func read(h *truetime.Handle, utc bool) (truetime.TrueTime, error) {
	if utc {
		return h.GetTimeUTC()
	}
	return h.GetTime()
}

func printTrueTime(cmd *cobra.Command, tt truetime.TrueTime) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Earliest: %d\n", tt.EarliestNS)
	fmt.Fprintf(out, "Latest: %d\n", tt.LatestNS)
	fmt.Fprintf(out, "WOU=%d\n", tt.LatestNS-tt.EarliestNS)
}

func defaultShmPath(version int) string {
	if version == 2 {
		return "/dev/shm/fbclock_data_v2"
	}
	return "/dev/shm/fbclock_data_v1"
}
