//go:build linux

package phcsample

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// NSamples is the number of samples requested per ioctl call. The spec
// allows 1 at steady state; older revisions of this protocol used 5.
var NSamples uint32 = 1

// ioctl is a var so tests can substitute a fixture in place of the real
// syscall.
var ioctl = func(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

type extendedSampler struct{}

func (extendedSampler) Method() string { return "PTP_SYS_OFFSET_EXTENDED" }

func (extendedSampler) Sample(fd int) (Sample, error) {
	req := ptpSysOffsetExtended{NSamples: NSamples}
	if err := ioctl(fd, ptpSysOffsetExtendedIoctl, unsafe.Pointer(&req)); err != nil {
		return Sample{}, err
	}
	minDelay := int64(1<<63 - 1)
	var last int64
	for i := uint32(0); i < req.NSamples; i++ {
		before := req.TS[i][0].nanoseconds()
		phc := req.TS[i][1].nanoseconds()
		after := req.TS[i][2].nanoseconds()
		delay := after - before
		if delay < minDelay {
			minDelay = delay
		}
		last = phc
	}
	if minDelay < 0 {
		return Sample{}, ErrNegativeDelay
	}
	return Sample{TS: last, Delay: minDelay}, nil
}

type basicSampler struct{}

func (basicSampler) Method() string { return "PTP_SYS_OFFSET" }

func (basicSampler) Sample(fd int) (Sample, error) {
	req := ptpSysOffset{NSamples: NSamples}
	if err := ioctl(fd, ptpSysOffsetIoctl, unsafe.Pointer(&req)); err != nil {
		return Sample{}, err
	}
	minDelay := int64(1<<63 - 1)
	var last int64
	for i := uint32(0); i < req.NSamples; i++ {
		sysBefore := req.TS[2*i].nanoseconds()
		phc := req.TS[2*i+1].nanoseconds()
		sysAfter := req.TS[2*i+2].nanoseconds()
		delay := sysAfter - sysBefore
		if delay < minDelay {
			minDelay = delay
		}
		last = phc
	}
	if minDelay < 0 {
		return Sample{}, ErrNegativeDelay
	}
	return Sample{TS: last, Delay: minDelay}, nil
}

// Open probes fd for extended-offset support with a single-sample
// request; success latches the extended sampler for the lifetime of the
// caller's handle, failure latches the basic sampler. This mirrors the
// original daemon's fbclock_init probe exactly.
func Open(fd int) Sampler {
	probe := ptpSysOffsetExtended{NSamples: 1}
	if err := ioctl(fd, ptpSysOffsetExtendedIoctl, unsafe.Pointer(&probe)); err == nil {
		return extendedSampler{}
	}
	return basicSampler{}
}
