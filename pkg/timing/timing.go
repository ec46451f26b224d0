package timing

import (
	"fmt"
	"time"
)

// Clock identifies a clock domain.
type Clock uint8

const (
	// TAI is International Atomic Time, counted from 1970-01-01T00:00:00 TAI.
	TAI Clock = iota

	// Realtime is the system wall clock (UTC, subject to leap seconds and steps).
	Realtime
)

// TAIOffset is the current difference between TAI and UTC.
const TAIOffset = 37 * time.Second

// String returns the clock domain name.
func (c Clock) String() string {
	switch c {
	case TAI:
		return "TAI"
	case Realtime:
		return "Realtime"
	default:
		return fmt.Sprintf("Clock(%d)", uint8(c))
	}
}

// Timepoint is a signed number of nanoseconds since the epoch of a clock domain.
// The zero value is the epoch itself and doubles as the "undefined" timepoint.
type Timepoint int64

// Add returns t shifted by d.
func (t Timepoint) Add(d time.Duration) Timepoint {
	return t + Timepoint(d)
}

// Sub returns the duration t-u.
func (t Timepoint) Sub(u Timepoint) time.Duration {
	return time.Duration(t - u)
}

// Before reports whether t is earlier than u.
func (t Timepoint) Before(u Timepoint) bool { return t < u }

// After reports whether t is later than u.
func (t Timepoint) After(u Timepoint) bool { return t > u }

// IsZero reports whether t is the zero timepoint.
func (t Timepoint) IsZero() bool { return t == 0 }

// Nanoseconds returns the raw nanosecond count.
func (t Timepoint) Nanoseconds() int64 { return int64(t) }

// Time converts a TAI timepoint to a UTC time.Time.
func (t Timepoint) Time() time.Time {
	return time.Unix(0, int64(t)).Add(-TAIOffset).UTC()
}

// String formats the timepoint as seconds.nanoseconds.
func (t Timepoint) String() string {
	sec := int64(t) / int64(time.Second)
	nsec := int64(t) % int64(time.Second)
	if nsec < 0 {
		sec--
		nsec += int64(time.Second)
	}
	return fmt.Sprintf("%d.%09d", sec, nsec)
}

// FromTime converts a wall-clock time into a TAI timepoint.
func FromTime(t time.Time) Timepoint {
	return Timepoint(t.UnixNano()) + Timepoint(TAIOffset)
}

// Now reads the current time in the given clock domain.
func Now(clock Clock) Timepoint {
	now := time.Now()
	if clock == TAI {
		return FromTime(now)
	}
	return Timepoint(now.UnixNano())
}

// Source supplies the current time of a fixed clock domain.
type Source interface {
	Now() Timepoint
}

// SystemSource reads the operating system clock in its domain.
type SystemSource struct {
	Clock Clock
}

// Now returns the current time in s.Clock.
func (s SystemSource) Now() Timepoint {
	return Now(s.Clock)
}

// DefaultSource is the system TAI clock.
var DefaultSource Source = SystemSource{Clock: TAI}

// Until returns the wall-clock duration from now (read from src) until the
// deadline. The result is negative once the deadline has passed.
func Until(src Source, deadline Timepoint) time.Duration {
	return deadline.Sub(src.Now())
}
