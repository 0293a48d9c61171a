//go:build linux

package truetime

import (
	"strings"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/ptpclock/truetime/pkg/phcsample"
	"github.com/ptpclock/truetime/pkg/shmframe"
	"github.com/ptpclock/truetime/pkg/smear"
	"github.com/ptpclock/truetime/pkg/wou"
)

// TimeStandard selects whether GetTime returns TAI or UTC nanoseconds.
type TimeStandard int

const (
	TAI TimeStandard = iota
	UTC
)

// TrueTime is re-exported so callers don't need to import pkg/wou
// directly.
type TrueTime = wou.TrueTime

// Handle owns the shared-memory mapping, the PHC file descriptor, and
// the running minimum observed PHC sampling delay for one open session.
// It is safe for concurrent use by multiple goroutines.
type Handle struct {
	cfg config

	shmFD  int
	ptpFD  int
	mapped []byte

	isV2    bool
	frame   *shmframe.Frame
	frameV2 *shmframe.FrameV2

	sampler phcsample.Sampler

	minPHCDelay atomic.Int64
}

// Open opens the shared-memory file at shmPath read-only, maps it,
// opens the PHC device, and probes for the best available sampling
// method. The v1/v2 wire layout is selected by whether shmPath ends in
// "_v2", exactly as the original daemon's init routine does.
func Open(shmPath string, opts ...Option) (*Handle, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	h := &Handle{cfg: cfg, shmFD: -1, ptpFD: -1}
	h.minPHCDelay.Store(1<<63 - 1)

	sfd, err := unix.Open(shmPath, unix.O_RDONLY, 0)
	if err != nil {
		return nil, ErrShmemOpen
	}
	h.shmFD = sfd

	pfd, err := unix.Open(cfg.ptpPath, unix.O_RDONLY, 0)
	if err != nil {
		_ = unix.Close(sfd)
		return nil, ErrPTPOpen
	}
	h.ptpFD = pfd

	phcsample.NSamples = cfg.samplesPerProbe
	h.sampler = phcsample.Open(pfd)

	h.isV2 = strings.HasSuffix(shmPath, "_v2")
	size := shmframe.FrameSize
	if h.isV2 {
		size = shmframe.FrameV2Size
	}
	mapped, err := unix.Mmap(sfd, 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		_ = unix.Close(pfd)
		_ = unix.Close(sfd)
		return nil, ErrShmemMapFailed
	}
	h.mapped = mapped

	if h.isV2 {
		h.frameV2, err = shmframe.NewFrameV2(mapped)
	} else {
		h.frame, err = shmframe.NewFrame(mapped)
	}
	if err != nil {
		_ = unix.Munmap(mapped)
		_ = unix.Close(pfd)
		_ = unix.Close(sfd)
		return nil, ErrShmemMapFailed
	}
	return h, nil
}

// Close unmaps the shared-memory region and closes both file
// descriptors. It never unlinks the backing file: the daemon and other
// readers may still be using it.
func (h *Handle) Close() error {
	var firstErr error
	if h.mapped != nil {
		if err := unix.Munmap(h.mapped); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if h.ptpFD >= 0 {
		if err := unix.Close(h.ptpFD); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if h.shmFD >= 0 {
		if err := unix.Close(h.shmFD); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// GetTime returns the current TrueTime interval in TAI nanoseconds.
func (h *Handle) GetTime() (TrueTime, error) {
	return h.getTime(TAI)
}

// GetTimeUTC returns the current TrueTime interval in UTC nanoseconds,
// applying the published leap-second smear.
func (h *Handle) GetTimeUTC() (TrueTime, error) {
	return h.getTime(UTC)
}

func (h *Handle) getTime(standard TimeStandard) (TrueTime, error) {
	if h.isV2 {
		return h.getTimeV2(standard)
	}
	return h.getTimeV1(standard)
}

func (h *Handle) getTimeV1(standard TimeStandard) (TrueTime, error) {
	var data shmframe.ClockData
	if err := h.frame.Load(&data, h.cfg.acceptLegacyCRC, h.cfg.tolerateCRCMismatch); err != nil {
		return TrueTime{}, ErrCRCMismatch
	}

	if data.ErrorBoundNS == 0 || data.IngressTimeNS == 0 {
		return TrueTime{}, ErrNoData
	}
	if data.ErrorBoundNS == ^uint32(0) || data.HoldoverMultiplierNS == ^uint32(0) {
		return TrueTime{}, ErrWOUTooBig
	}

	sample, err := h.sampler.Sample(h.ptpFD)
	if err != nil {
		return TrueTime{}, ErrPTPReadOffset
	}
	h.observeDelay(sample.Delay)

	if data.IngressTimeNS > sample.TS {
		return TrueTime{}, ErrPHCInThePast
	}

	seconds := float64(sample.TS-data.IngressTimeNS) / wou.NanosecondsPerSecond
	errorBound := uint64(data.ErrorBoundNS) + uint64(h.minPHCDelay.Load())
	hValue := float64(data.HoldoverMultiplierNS) / float64(1<<16)
	wouNS := wou.WindowOfUncertainty(seconds, errorBound, hValue)

	center := sample.TS
	if standard == UTC {
		center = int64(applyUTCOffsetV1(&data, center))
	}
	return wou.Assemble(uint64(center), wouNS), nil
}

func (h *Handle) getTimeV2(standard TimeStandard) (TrueTime, error) {
	var data shmframe.ClockDataV2
	if err := h.frameV2.Load(&data); err != nil {
		return TrueTime{}, ErrCRCMismatch
	}

	if data.ErrorBoundNS == 0 || data.IngressTimeNS == 0 {
		return TrueTime{}, ErrNoData
	}
	if data.PHCTimeNS == 0 || data.SysclockTimeNS == 0 {
		return TrueTime{}, ErrNoData
	}
	if data.ErrorBoundNS == ^uint32(0) || data.HoldoverMultiplierNS == ^uint32(0) {
		return TrueTime{}, ErrWOUTooBig
	}

	if data.IngressTimeNS > data.PHCTimeNS {
		return TrueTime{}, ErrPHCInThePast
	}

	var ts unix.Timespec
	if err := unix.ClockGettime(int32(data.ClockID), &ts); err != nil {
		return TrueTime{}, ErrPTPReadOffset
	}
	sysclockNowNS := ts.Sec*wou.NanosecondsPerSecond + int64(ts.Nsec)

	seconds := float64(data.PHCTimeNS-data.IngressTimeNS) / wou.NanosecondsPerSecond
	errorBound := uint64(data.ErrorBoundNS)
	hValue := float64(data.HoldoverMultiplierNS) / float64(1<<16)
	wouNS := wou.WindowOfUncertainty(seconds, errorBound, hValue)

	d := sysclockNowNS - data.SysclockTimeNS
	center := data.PHCTimeNS + d + int64(float64(d)*data.CoefPPB/wou.NanosecondsPerSecond)
	if standard == UTC {
		center = int64(applyUTCOffsetV2(&data, center))
	}
	return wou.Assemble(uint64(center), wouNS), nil
}

// observeDelay keeps the running minimum observed PHC sampling delay.
// The compare-and-swap loop retries when another goroutine updated the
// minimum first, so concurrent calls never lose a smaller delay.
func (h *Handle) observeDelay(delay int64) {
	for {
		cur := h.minPHCDelay.Load()
		if delay >= cur {
			return
		}
		if h.minPHCDelay.CompareAndSwap(cur, delay) {
			return
		}
	}
}

func applyUTCOffsetV1(data *shmframe.ClockData, phcTimeNS int64) uint64 {
	if data.UTCOffsetPreS == 0 && data.UTCOffsetPostS == 0 {
		return smear.ApplyDefault(phcTimeNS)
	}
	multiplier := int64(data.UTCOffsetPostS) - int64(data.UTCOffsetPreS)
	return smear.Apply(
		uint64(phcTimeNS),
		uint64(data.UTCOffsetPreS)*wou.NanosecondsPerSecond,
		uint64(data.UTCOffsetPostS)*wou.NanosecondsPerSecond,
		data.ClockSmearingStartS*wou.NanosecondsPerSecond,
		data.ClockSmearingEndS*wou.NanosecondsPerSecond,
		multiplier,
	)
}

func applyUTCOffsetV2(data *shmframe.ClockDataV2, phcTimeNS int64) uint64 {
	if data.UTCOffsetPreS == 0 && data.UTCOffsetPostS == 0 {
		return smear.ApplyDefault(phcTimeNS)
	}
	multiplier := int64(data.UTCOffsetPostS) - int64(data.UTCOffsetPreS)
	smearEndS := data.ClockSmearingStartS + shmframe.V2SmearDurationS
	return smear.Apply(
		uint64(phcTimeNS),
		uint64(data.UTCOffsetPreS)*wou.NanosecondsPerSecond,
		uint64(data.UTCOffsetPostS)*wou.NanosecondsPerSecond,
		data.ClockSmearingStartS*wou.NanosecondsPerSecond,
		smearEndS*wou.NanosecondsPerSecond,
		multiplier,
	)
}

// Method reports which PHC ioctl this handle latched at Open, for
// diagnostics (mirrors the CLI's -V flag reporting the shm layout).
func (h *Handle) Method() string {
	if h.sampler == nil {
		return ""
	}
	return h.sampler.Method()
}
