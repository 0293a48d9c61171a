package shmframe

import "golang.org/x/sys/cpu"

// CRCMethod reports whether the host has a hardware CRC32C instruction
// that hash/crc32 will dispatch to for the checksum computation above.
// It is informational only (surfaced by the CLI's -V 1 path for
// diagnostics) — checksum correctness never depends on which path ran,
// only that writer and reader agree on the folding function, which they
// always do since both call the same checksum64 helper.
func CRCMethod() string {
	if cpu.X86.HasSSE42 || cpu.ARM64.HasCRC32 {
		return "hardware-crc32c"
	}
	return "software-crc32c"
}
