//go:build linux

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/ptpclock/truetime/pkg/shmframe"
)

// simulateOpts mirrors the knobs the original library's C++ test harness
// (fbclock/test/test.cpp, fbclock/cpp_test/test.cpp) needs to publish
// synthetic ClockData without a live PTP daemon.
type simulateOpts struct {
	shmPath             string
	version             int
	ingressTimeNS       int64
	errorBoundNS        uint32
	holdoverMultiplier  uint32
	smearStartS         uint64
	smearEndS           uint64
	utcOffsetPreS       int32
	utcOffsetPostS      int32
	once                bool
	interval            time.Duration
}

func newSimulateCmd() *cobra.Command {
	var o simulateOpts

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Publish synthetic ClockData to a shared-memory file for local testing",
		Long: `simulate opens (creating if needed) the shared-memory file and repeatedly
publishes synthetic ClockData using the same v1/v2 wire protocol a real
daemon would use. It exists so the full truetime stack can be exercised
without PTP hardware; it is not part of the library's public API.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(o)
		},
	}

	cmd.Flags().StringVar(&o.shmPath, "shm-path", "", "shared-memory file path (default depends on -V)")
	cmd.Flags().IntVarP(&o.version, "shm-version", "V", 1, "shared-memory layout version (1 or 2)")
	cmd.Flags().Int64Var(&o.ingressTimeNS, "ingress-time", time.Now().UnixNano(), "ingress_time_ns to publish")
	cmd.Flags().Uint32Var(&o.errorBoundNS, "error-bound", 172, "error_bound_ns to publish")
	cmd.Flags().Uint32Var(&o.holdoverMultiplier, "holdover-multiplier", 3311288, "holdover_multiplier_ns to publish")
	cmd.Flags().Uint64Var(&o.smearStartS, "smear-start", 0, "clock_smearing_start_s to publish")
	cmd.Flags().Uint64Var(&o.smearEndS, "smear-end", 0, "clock_smearing_end_s to publish (v1 only)")
	cmd.Flags().Int32Var(&o.utcOffsetPreS, "utc-offset-pre", 0, "utc_offset_pre_s to publish")
	cmd.Flags().Int32Var(&o.utcOffsetPostS, "utc-offset-post", 0, "utc_offset_post_s to publish")
	cmd.Flags().BoolVar(&o.once, "once", true, "publish a single snapshot and exit")
	cmd.Flags().DurationVar(&o.interval, "interval", time.Second, "republish interval when --once=false")

	return cmd
}

func runSimulate(o simulateOpts) error {
	if o.version != 1 && o.version != 2 {
		return fmt.Errorf("invalid -V %d: must be 1 or 2", o.version)
	}
	shmPath := o.shmPath
	if shmPath == "" {
		shmPath = defaultShmPath(o.version)
	}

	size := shmframe.FrameSize
	if o.version == 2 {
		size = shmframe.FrameV2Size
	}

	fd, err := unix.Open(shmPath, unix.O_RDWR|unix.O_CREAT, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %w", shmPath, err)
	}
	defer unix.Close(fd)

	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		return fmt.Errorf("ftruncate %s: %w", shmPath, err)
	}

	mapped, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("mmap %s: %w", shmPath, err)
	}
	defer unix.Munmap(mapped)

	publish := func() error {
		if o.version == 2 {
			frame, err := shmframe.NewFrameV2(mapped)
			if err != nil {
				return err
			}
			frame.Store(&shmframe.ClockDataV2{
				IngressTimeNS:        o.ingressTimeNS,
				ErrorBoundNS:         o.errorBoundNS,
				HoldoverMultiplierNS: o.holdoverMultiplier,
				ClockSmearingStartS:  o.smearStartS,
				UTCOffsetPreS:        int16(o.utcOffsetPreS),
				UTCOffsetPostS:       int16(o.utcOffsetPostS),
				ClockID:              unix.CLOCK_MONOTONIC,
				PHCTimeNS:            time.Now().UnixNano(),
				SysclockTimeNS:       time.Now().UnixNano(),
				CoefPPB:              0,
			})
			return nil
		}
		frame, err := shmframe.NewFrame(mapped)
		if err != nil {
			return err
		}
		frame.Store(&shmframe.ClockData{
			IngressTimeNS:        o.ingressTimeNS,
			ErrorBoundNS:         o.errorBoundNS,
			HoldoverMultiplierNS: o.holdoverMultiplier,
			ClockSmearingStartS:  o.smearStartS,
			ClockSmearingEndS:    o.smearEndS,
			UTCOffsetPreS:        o.utcOffsetPreS,
			UTCOffsetPostS:       o.utcOffsetPostS,
		})
		return nil
	}

	if err := publish(); err != nil {
		return err
	}
	fmt.Printf("published synthetic ClockData (v%d) to %s\n", o.version, shmPath)
	if o.once {
		return nil
	}

	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()
	for range ticker.C {
		o.ingressTimeNS = time.Now().UnixNano()
		if err := publish(); err != nil {
			return err
		}
	}
	return nil
}
