package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClock_String(t *testing.T) {
	tests := []struct {
		clock Clock
		want  string
	}{
		{TAI, "TAI"},
		{Realtime, "Realtime"},
		{Clock(9), "Clock(9)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.clock.String())
	}
}

func TestTimepoint_Arithmetic(t *testing.T) {
	tp := Timepoint(1_000_000_000)

	assert.Equal(t, Timepoint(1_040_000_000), tp.Add(40*time.Millisecond))
	assert.Equal(t, 40*time.Millisecond, tp.Add(40*time.Millisecond).Sub(tp))
	assert.True(t, tp.Before(tp+1))
	assert.True(t, (tp + 1).After(tp))
	assert.False(t, tp.IsZero())
	assert.True(t, Timepoint(0).IsZero())
}

func TestTimepoint_String(t *testing.T) {
	assert.Equal(t, "1.500000000", Timepoint(1_500_000_000).String())
	assert.Equal(t, "-2.500000000", Timepoint(-1_500_000_000).String())
}

func TestFromTime_RoundTrip(t *testing.T) {
	utc := time.Date(2025, 6, 1, 12, 0, 0, 123, time.UTC)
	tp := FromTime(utc)

	assert.Equal(t, utc.UnixNano()+int64(TAIOffset), tp.Nanoseconds())
	assert.True(t, utc.Equal(tp.Time()))
}

func TestNow_TAIAheadOfRealtime(t *testing.T) {
	wall := Now(Realtime)
	tai := Now(TAI)

	// TAI is ahead by the leap-second offset; allow generous scheduling slack.
	diff := tai.Sub(wall)
	assert.GreaterOrEqual(t, diff, TAIOffset)
	assert.Less(t, diff, TAIOffset+time.Second)
}

func TestUntil(t *testing.T) {
	src := SystemSource{Clock: TAI}
	deadline := src.Now().Add(time.Hour)

	assert.Greater(t, Until(src, deadline), 59*time.Minute)
	assert.Less(t, Until(src, src.Now().Add(-time.Second)), time.Duration(0))
}
