//go:build linux

package phcsample

import "unsafe"

// ptpClockTime mirrors struct ptp_clock_time from linux/ptp_clock.h.
type ptpClockTime struct {
	Sec      int64
	Nsec     uint32
	Reserved uint32
}

func (t ptpClockTime) nanoseconds() int64 {
	return t.Sec*nanosecondsPerSecond + int64(t.Nsec)
}

// ptpMaxSamples mirrors PTP_MAX_SAMPLES.
const ptpMaxSamples = 25

// ptpSysOffset mirrors struct ptp_sys_offset: the basic, interleaved
// (sys, phc, sys, phc, ..., sys) sampling request.
type ptpSysOffset struct {
	NSamples uint32
	rsv      [3]uint32
	TS       [2*ptpMaxSamples + 1]ptpClockTime
}

// ptpSysOffsetExtended mirrors struct ptp_sys_offset_extended: the
// extended request that returns (sys_before, phc, sys_after) tuples.
type ptpSysOffsetExtended struct {
	NSamples uint32
	rsv      [3]uint32
	TS       [ptpMaxSamples][3]ptpClockTime
}

// Linux ioctl encoding, mirrored from <asm-generic/ioctl.h> since
// golang.org/x/sys/unix does not expose PTP-specific ioctl numbers.
const (
	iocNRBits    = 8
	iocTypeBits  = 8
	iocSizeBits  = 14
	iocDirBits   = 2
	iocNRShift   = 0
	iocTypeShift = iocNRShift + iocNRBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits

	iocWrite    = 1
	iocRead     = 2
	ptpClkMagic = 0x3D // '='
)

func ioc(dir, typ, nr, size uintptr) uintptr {
	return (dir << iocDirShift) | (typ << iocTypeShift) | (nr << iocNRShift) | (size << iocSizeShift)
}

var (
	ptpSysOffsetIoctl         = ioc(iocWrite, ptpClkMagic, 5, unsafe.Sizeof(ptpSysOffset{}))
	ptpSysOffsetExtendedIoctl = ioc(iocRead|iocWrite, ptpClkMagic, 9, unsafe.Sizeof(ptpSysOffsetExtended{}))
)
