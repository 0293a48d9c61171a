package shmframe

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame_RoundTrip(t *testing.T) {
	buf := make([]byte, FrameSize)
	f, err := NewFrame(buf)
	require.NoError(t, err)

	want := &ClockData{
		IngressTimeNS:        1647269082943150996,
		ErrorBoundNS:         172,
		HoldoverMultiplierNS: 3311288,
		ClockSmearingStartS:  1483228836,
		ClockSmearingEndS:    1483293836,
		UTCOffsetPreS:        36,
		UTCOffsetPostS:       37,
	}
	f.Store(want)

	var got ClockData
	require.NoError(t, f.Load(&got, false, false))
	assert.Equal(t, *want, got)
}

func TestFrame_TornReadRejected(t *testing.T) {
	buf := make([]byte, FrameSize)
	f, err := NewFrame(buf)
	require.NoError(t, err)

	// Corrupt the payload without updating the CRC: a reader must never
	// accept this snapshot.
	data := &ClockData{IngressTimeNS: 10, ErrorBoundNS: 20, HoldoverMultiplierNS: 30}
	f.Store(data)
	buf[8] ^= 0xFF // flip a byte inside IngressTimeNS

	var got ClockData
	err = f.Load(&got, false, false)
	require.ErrorIs(t, err, ErrCRCMismatch)

	// Historical behavior: tolerateMismatch returns the torn payload with
	// no error instead.
	err = f.Load(&got, false, true)
	require.NoError(t, err)
}

func TestFrame_LegacyChecksumAccepted(t *testing.T) {
	buf := make([]byte, FrameSize)
	f, err := NewFrame(buf)
	require.NoError(t, err)

	data := &ClockData{IngressTimeNS: 99, ErrorBoundNS: 198, HoldoverMultiplierNS: 297}
	data.encode(buf[8:FrameSize])
	atomic.StoreUint64(f.crcWord(), legacyChecksum(data))

	var got ClockData
	require.Error(t, f.Load(&got, false, false))
	require.NoError(t, f.Load(&got, true, false))
	assert.Equal(t, *data, got)
}

// TestFrame_ConcurrentReadersWriter exercises invariant #2 from the
// spec: while a single writer maintains error_bound = 2*ingress_time and
// holdover_multiplier = 3*ingress_time, every successful reader snapshot
// must satisfy those relations. A torn read must never be accepted.
func TestFrame_ConcurrentReadersWriter(t *testing.T) {
	buf := make([]byte, FrameSize)
	f, err := NewFrame(buf)
	require.NoError(t, err)

	const writes = 2000
	done := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := int64(1); i <= writes; i++ {
			f.Store(&ClockData{
				IngressTimeNS:        i,
				ErrorBoundNS:         uint32(2 * i),
				HoldoverMultiplierNS: uint32(3 * i),
			})
		}
		close(done)
	}()

	var readers sync.WaitGroup
	var mismatches int64
	for r := 0; r < 4; r++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			var data ClockData
			for {
				select {
				case <-done:
					return
				default:
				}
				if err := f.Load(&data, false, false); err != nil {
					atomic.AddInt64(&mismatches, 1)
					continue
				}
				if data.IngressTimeNS == 0 {
					continue
				}
				assert.Equal(t, uint32(2*data.IngressTimeNS), data.ErrorBoundNS)
				assert.Equal(t, uint32(3*data.IngressTimeNS), data.HoldoverMultiplierNS)
			}
		}()
	}

	wg.Wait()
	readers.Wait()
	t.Logf("CRC mismatches observed (retried/cleared): %d", mismatches)
}

func TestFrameV2_RoundTrip(t *testing.T) {
	buf := make([]byte, FrameV2Size)
	f, err := NewFrameV2(buf)
	require.NoError(t, err)

	want := &ClockDataV2{
		IngressTimeNS:        1647269082943150996,
		ErrorBoundNS:         172,
		HoldoverMultiplierNS: 3311288,
		ClockSmearingStartS:  1483228836,
		UTCOffsetPreS:        36,
		UTCOffsetPostS:       37,
		ClockID:              1,
		PHCTimeNS:            1647269091803102957,
		SysclockTimeNS:       1647269091803102957,
		CoefPPB:              12.5,
	}
	f.Store(want)

	var got ClockDataV2
	require.NoError(t, f.Load(&got))
	assert.Equal(t, *want, got)
}

func TestFrameV2_ZeroSequenceMeansUninitialized(t *testing.T) {
	buf := make([]byte, FrameV2Size)
	f, err := NewFrameV2(buf)
	require.NoError(t, err)

	var got ClockDataV2
	errc := make(chan error, 1)
	go func() {
		errc <- f.Load(&got)
	}()

	time.Sleep(2 * time.Millisecond)
	f.Store(&ClockDataV2{IngressTimeNS: 42, ErrorBoundNS: 1})

	require.NoError(t, <-errc)
	assert.EqualValues(t, 42, got.IngressTimeNS)
}

func TestFrameV2_OddSequenceRetried(t *testing.T) {
	buf := make([]byte, FrameV2Size)
	f, err := NewFrameV2(buf)
	require.NoError(t, err)

	f.Store(&ClockDataV2{IngressTimeNS: 7})
	// Force the sequence odd, simulating a publish-in-progress writer: the
	// reader retries it for the whole budget and never accepts the payload.
	odd := atomic.LoadUint64(f.seqWord()) | 1
	atomic.StoreUint64(f.seqWord(), odd)

	var got ClockDataV2
	require.ErrorIs(t, f.Load(&got), ErrCRCMismatch)

	// The writer completes its publish: payload copied, sequence even again.
	(&ClockDataV2{IngressTimeNS: 9}).encode(buf[8:FrameV2Size])
	atomic.StoreUint64(f.seqWord(), odd+1)

	require.NoError(t, f.Load(&got))
	assert.EqualValues(t, 9, got.IngressTimeNS)
}

func TestFrameV2_ConcurrentReadersWriter(t *testing.T) {
	buf := make([]byte, FrameV2Size)
	f, err := NewFrameV2(buf)
	require.NoError(t, err)

	const writes = 2000
	done := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := int64(1); i <= writes; i++ {
			f.Store(&ClockDataV2{
				IngressTimeNS:        i,
				ErrorBoundNS:         uint32(2 * i),
				HoldoverMultiplierNS: uint32(3 * i),
			})
		}
		close(done)
	}()

	var readers sync.WaitGroup
	for r := 0; r < 4; r++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			var data ClockDataV2
			for {
				select {
				case <-done:
					return
				default:
				}
				if err := f.Load(&data); err != nil {
					continue
				}
				if data.IngressTimeNS == 0 {
					continue
				}
				assert.Equal(t, uint32(2*data.IngressTimeNS), data.ErrorBoundNS)
				assert.Equal(t, uint32(3*data.IngressTimeNS), data.HoldoverMultiplierNS)
			}
		}()
	}

	wg.Wait()
	readers.Wait()
}
