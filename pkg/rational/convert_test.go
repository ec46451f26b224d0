package rational

import (
	"math"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/flowsync/pkg/timing"
)

func TestTimestampToIndex(t *testing.T) {
	tests := []struct {
		name string
		rate Rate
		ts   timing.Timepoint
		want uint64
	}{
		{"25fps one second", Rate25, 1_000_000_000, 25},
		{"48kHz one second", Rate48kHz, 1_000_000_000, 48000},
		{"epoch", Rate25, 0, 0},
		{"just below half grain", Rate25, 19_999_999, 0},
		{"half grain rounds up", Rate25, 20_000_000, 1},
		{"29.97 first grain", Rate2997, 33_366_667, 1},
		{"29.97 1001 seconds", Rate2997, 1001 * 1_000_000_000, 30000},
		{"negative timestamp saturates to zero", Rate25, -5_000_000_000, 0},
		{"max timestamp 25fps", Rate25, math.MaxInt64, 230584300921},
		{"max timestamp huge denominator", Rate{Numerator: 1, Denominator: math.MaxUint64}, math.MaxInt64, 0},
		{"overflowing result saturates below sentinel", Rate{Numerator: math.MaxUint64, Denominator: 1}, math.MaxInt64, UndefinedIndex - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TimestampToIndex(tt.rate, tt.ts))
		})
	}
}

func TestIndexToTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		rate  Rate
		index uint64
		want  timing.Timepoint
	}{
		{"25fps 25 grains", Rate25, 25, 1_000_000_000},
		{"48kHz 48000 samples", Rate48kHz, 48000, 1_000_000_000},
		{"zero index", Rate2997, 0, 0},
		{"29.97 first grain rounds half up", Rate2997, 1, 33_366_667},
		{"29.97 30000 grains", Rate2997, 30000, 1001 * 1_000_000_000},
		{"saturates on overflow", Rate25, math.MaxUint64, math.MaxInt64},
		{"huge rate stays exact", Rate{Numerator: math.MaxUint64, Denominator: math.MaxUint64}, 7, 7_000_000_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IndexToTimestamp(tt.rate, tt.index))
		})
	}
}

func TestConversions_WideIntermediates(t *testing.T) {
	// Products here exceed 64 bits and go through the 128-bit division paths.
	tera := Rate{Numerator: 1 << 40, Denominator: 1}
	assert.Equal(t, uint64(1<<40), TimestampToIndex(tera, 1_000_000_000))
	assert.Equal(t, timing.Timepoint(1_000_000_000), IndexToTimestamp(tera, 1<<40))

	huge := Rate{Numerator: 1 << 62, Denominator: 1}
	assert.Equal(t, uint64(1<<61), TimestampToIndex(huge, 500_000_000))
	assert.Equal(t, timing.Timepoint(500_000_000), IndexToTimestamp(huge, 1<<61))
}

func TestUndefinedRate(t *testing.T) {
	for _, rate := range []Rate{{0, 1}, {1, 0}, {0, 0}} {
		assert.False(t, rate.IsValid(), rate.String())
		assert.Equal(t, UndefinedIndex, TimestampToIndex(rate, 1_000_000_000), rate.String())
		assert.Equal(t, timing.Timepoint(0), IndexToTimestamp(rate, 25), rate.String())
		assert.Equal(t, time.Duration(0), GrainDuration(rate), rate.String())
	}
}

func TestConversions_Monotonic(t *testing.T) {
	rates := []Rate{
		Rate25, Rate50, Rate2997, Rate5994, Rate48kHz, Rate441kHz,
		{Numerator: 1, Denominator: 7},
		{Numerator: 1_000_000_007, Denominator: 3},
		{Numerator: math.MaxUint64, Denominator: 1},
		{Numerator: 1, Denominator: math.MaxUint64},
	}
	rng := rand.New(rand.NewSource(42))

	for _, rate := range rates {
		t.Run(rate.String(), func(t *testing.T) {
			stamps := make([]int64, 0, 512)
			indices := make([]uint64, 0, 512)
			for i := 0; i < 500; i++ {
				stamps = append(stamps, rng.Int63())
				indices = append(indices, rng.Uint64())
			}
			stamps = append(stamps, 0, 1, math.MaxInt64, math.MaxInt64-1)
			indices = append(indices, 0, 1, math.MaxUint64, math.MaxUint64-1)
			sort.Slice(stamps, func(i, j int) bool { return stamps[i] < stamps[j] })
			sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

			prevIdx := uint64(0)
			for _, ts := range stamps {
				idx := TimestampToIndex(rate, timing.Timepoint(ts))
				require.GreaterOrEqual(t, idx, prevIdx, "timestamp %d", ts)
				require.NotEqual(t, UndefinedIndex, idx)
				prevIdx = idx
			}

			prevTS := timing.Timepoint(0)
			for _, idx := range indices {
				ts := IndexToTimestamp(rate, idx)
				require.GreaterOrEqual(t, ts, prevTS, "index %d", idx)
				prevTS = ts
			}
		})
	}
}

func TestConversions_RoundTrip(t *testing.T) {
	// Grain-aligned timestamps survive index -> timestamp -> index exactly.
	for _, rate := range []Rate{Rate25, Rate2997, Rate5994, Rate48kHz} {
		for _, idx := range []uint64{0, 1, 2, 999, 1_234_567, 54_000_000_000} {
			ts := IndexToTimestamp(rate, idx)
			assert.Equal(t, idx, TimestampToIndex(rate, ts), "rate %s index %d", rate, idx)
		}
	}
}

func TestGrainDuration(t *testing.T) {
	assert.Equal(t, 40*time.Millisecond, GrainDuration(Rate25))
	assert.Equal(t, 33_366_667*time.Nanosecond, GrainDuration(Rate2997))
	assert.Equal(t, 20_833*time.Nanosecond, GrainDuration(Rate48kHz))
}

type fixedSource timing.Timepoint

func (f fixedSource) Now() timing.Timepoint { return timing.Timepoint(f) }

func TestCurrentIndex(t *testing.T) {
	assert.Equal(t, uint64(250), CurrentIndex(Rate25, fixedSource(10_000_000_000)))
}
