// Package truetime is the library's public API: Open, Close, GetTime,
// GetTimeUTC, and the stable error taxonomy callers match against.
package truetime

import "errors"

// Sentinel errors, one per spec error kind. Callers should match with
// errors.Is, never by comparing StrError's string.
var (
	ErrShmemOpen      = errors.New("shmem open error")
	ErrShmemMapFailed = errors.New("shmem map error")
	ErrPTPOpen        = errors.New("PTP device open error")
	ErrPTPReadOffset  = errors.New("PTP PTP_SYS_OFFSET_EXTENDED ioctl error")
	ErrNoData         = errors.New("no data from daemon error")
	ErrWOUTooBig      = errors.New("WOU is too big")
	ErrPHCInThePast   = errors.New("PHC jumped back in time")
	ErrCRCMismatch    = errors.New("CRC check failed all tries")
)

// StrError returns the stable, human-readable label for err, matching
// the original library's fbclock_strerror table. Unrecognized errors
// yield "unknown error".
func StrError(err error) string {
	switch {
	case err == nil:
		return "no error"
	case errors.Is(err, ErrShmemMapFailed):
		return "shmem map error"
	case errors.Is(err, ErrShmemOpen):
		return "shmem open error"
	case errors.Is(err, ErrPTPReadOffset):
		return "PTP PTP_SYS_OFFSET_EXTENDED ioctl error"
	case errors.Is(err, ErrPTPOpen):
		return "PTP device open error"
	case errors.Is(err, ErrNoData):
		return "no data from daemon error"
	case errors.Is(err, ErrWOUTooBig):
		return "WOU is too big"
	case errors.Is(err, ErrPHCInThePast):
		return "PHC jumped back in time"
	case errors.Is(err, ErrCRCMismatch):
		return "CRC check failed all tries"
	default:
		return "unknown error"
	}
}
