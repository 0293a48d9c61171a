package shmframe

import "unsafe"

// wordPointer returns a pointer to the first 8 bytes of buf, suitable
// for atomic.LoadUint64/StoreUint64. Callers (Frame/FrameV2) guarantee
// buf is at least 8 bytes and 8-byte aligned: both mmap'd pages and
// Go-allocated byte slices used in tests satisfy that on every platform
// this module supports.
func wordPointer(buf []byte) unsafe.Pointer {
	return unsafe.Pointer(&buf[0])
}
