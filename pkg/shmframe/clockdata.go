package shmframe

import (
	"encoding/binary"
	"math"
)

// ClockData is the v1 payload published by the daemon. Field order and
// widths are part of the wire contract and must not change.
type ClockData struct {
	IngressTimeNS        int64
	ErrorBoundNS         uint32
	HoldoverMultiplierNS uint32
	ClockSmearingStartS  uint64
	ClockSmearingEndS    uint64
	UTCOffsetPreS        int32
	UTCOffsetPostS       int32
}

// ClockDataSize is the encoded size of ClockData in bytes.
const ClockDataSize = 8 + 4 + 4 + 8 + 8 + 4 + 4

// ClockDataV2 extends ClockData with the fields needed to extrapolate PHC
// time from a system clock reading, avoiding a PHC ioctl on the fast path.
type ClockDataV2 struct {
	IngressTimeNS        int64
	ErrorBoundNS         uint32
	HoldoverMultiplierNS uint32
	ClockSmearingStartS  uint64
	UTCOffsetPreS        int16
	UTCOffsetPostS       int16
	ClockID              int32
	PHCTimeNS            int64
	SysclockTimeNS       int64
	CoefPPB              float64
}

// ClockDataV2Size is the encoded size of ClockDataV2 in bytes.
const ClockDataV2Size = 8 + 4 + 4 + 8 + 2 + 2 + 4 + 8 + 8 + 8

// V2SmearDurationS is the implicit smear window length for v2 payloads;
// v1 carries an explicit end instead.
const V2SmearDurationS = 62_500

func (c *ClockData) encode(b []byte) {
	_ = b[ClockDataSize-1]
	binary.LittleEndian.PutUint64(b[0:8], uint64(c.IngressTimeNS))
	binary.LittleEndian.PutUint32(b[8:12], c.ErrorBoundNS)
	binary.LittleEndian.PutUint32(b[12:16], c.HoldoverMultiplierNS)
	binary.LittleEndian.PutUint64(b[16:24], c.ClockSmearingStartS)
	binary.LittleEndian.PutUint64(b[24:32], c.ClockSmearingEndS)
	binary.LittleEndian.PutUint32(b[32:36], uint32(c.UTCOffsetPreS))
	binary.LittleEndian.PutUint32(b[36:40], uint32(c.UTCOffsetPostS))
}

func (c *ClockData) decode(b []byte) {
	_ = b[ClockDataSize-1]
	c.IngressTimeNS = int64(binary.LittleEndian.Uint64(b[0:8]))
	c.ErrorBoundNS = binary.LittleEndian.Uint32(b[8:12])
	c.HoldoverMultiplierNS = binary.LittleEndian.Uint32(b[12:16])
	c.ClockSmearingStartS = binary.LittleEndian.Uint64(b[16:24])
	c.ClockSmearingEndS = binary.LittleEndian.Uint64(b[24:32])
	c.UTCOffsetPreS = int32(binary.LittleEndian.Uint32(b[32:36]))
	c.UTCOffsetPostS = int32(binary.LittleEndian.Uint32(b[36:40]))
}

func (c *ClockDataV2) encode(b []byte) {
	_ = b[ClockDataV2Size-1]
	binary.LittleEndian.PutUint64(b[0:8], uint64(c.IngressTimeNS))
	binary.LittleEndian.PutUint32(b[8:12], c.ErrorBoundNS)
	binary.LittleEndian.PutUint32(b[12:16], c.HoldoverMultiplierNS)
	binary.LittleEndian.PutUint64(b[16:24], c.ClockSmearingStartS)
	binary.LittleEndian.PutUint16(b[24:26], uint16(c.UTCOffsetPreS))
	binary.LittleEndian.PutUint16(b[26:28], uint16(c.UTCOffsetPostS))
	binary.LittleEndian.PutUint32(b[28:32], uint32(c.ClockID))
	binary.LittleEndian.PutUint64(b[32:40], uint64(c.PHCTimeNS))
	binary.LittleEndian.PutUint64(b[40:48], uint64(c.SysclockTimeNS))
	binary.LittleEndian.PutUint64(b[48:56], math.Float64bits(c.CoefPPB))
}

func (c *ClockDataV2) decode(b []byte) {
	_ = b[ClockDataV2Size-1]
	c.IngressTimeNS = int64(binary.LittleEndian.Uint64(b[0:8]))
	c.ErrorBoundNS = binary.LittleEndian.Uint32(b[8:12])
	c.HoldoverMultiplierNS = binary.LittleEndian.Uint32(b[12:16])
	c.ClockSmearingStartS = binary.LittleEndian.Uint64(b[16:24])
	c.UTCOffsetPreS = int16(binary.LittleEndian.Uint16(b[24:26]))
	c.UTCOffsetPostS = int16(binary.LittleEndian.Uint16(b[26:28]))
	c.ClockID = int32(binary.LittleEndian.Uint32(b[28:32]))
	c.PHCTimeNS = int64(binary.LittleEndian.Uint64(b[32:40]))
	c.SysclockTimeNS = int64(binary.LittleEndian.Uint64(b[40:48]))
	c.CoefPPB = math.Float64frombits(binary.LittleEndian.Uint64(b[48:56]))
}
