package shmframe

import "hash/crc32"

// castagnoli is the table hash/crc32 uses to dispatch to the hardware
// CRC32 instruction (SSE4.2 on amd64, the CRC extension on arm64) when
// the host supports it, and falls back to a software table otherwise.
// This mirrors the daemon's own platform-intrinsic-or-XOR-fallback
// strategy without needing architecture-specific assembly in this repo.
var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// legacySeed and canonicalSeed/canonicalXOR are the two CRC folding
// conventions a reader must tolerate: the canonical one this library
// writes, and a legacy one kept for interop with older daemon builds.
const (
	canonicalSeed = 0xFFFFFFFF
	canonicalXOR  = 0xFFFFFFFF
	legacySeed    = 0x04C11DB7
)

func foldUint64(crc uint32, v uint64) uint32 {
	var buf [8]byte
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
	buf[2] = byte(v >> 16)
	buf[3] = byte(v >> 24)
	buf[4] = byte(v >> 32)
	buf[5] = byte(v >> 40)
	buf[6] = byte(v >> 48)
	buf[7] = byte(v >> 56)
	return crc32.Update(crc, castagnoli, buf[:])
}

// checksum64 folds the three fields that determine a v1 snapshot's
// validity, in spec order: ingress time, error bound, holdover
// multiplier. seed and finalXOR select between the canonical and legacy
// conventions.
func checksum64(data *ClockData, seed uint32, finalXOR uint32) uint64 {
	crc := seed
	crc = foldUint64(crc, uint64(data.IngressTimeNS))
	crc = foldUint64(crc, uint64(data.ErrorBoundNS))
	crc = foldUint64(crc, uint64(data.HoldoverMultiplierNS))
	return uint64(crc ^ finalXOR)
}

func canonicalChecksum(data *ClockData) uint64 {
	return checksum64(data, canonicalSeed, canonicalXOR)
}

func legacyChecksum(data *ClockData) uint64 {
	return checksum64(data, legacySeed, 0)
}
