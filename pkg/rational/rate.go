package rational

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidRate is returned when a rate string cannot be parsed.
var ErrInvalidRate = errors.New("rational: invalid rate")

// Rate is the nominal rate of a stream in grains or samples per second.
type Rate struct {
	Numerator   uint64 `json:"numerator" yaml:"numerator" toml:"numerator"`
	Denominator uint64 `json:"denominator" yaml:"denominator" toml:"denominator"`
}

// Common rates.
var (
	Rate25     = Rate{Numerator: 25, Denominator: 1}
	Rate50     = Rate{Numerator: 50, Denominator: 1}
	Rate2997   = Rate{Numerator: 30000, Denominator: 1001}
	Rate5994   = Rate{Numerator: 60000, Denominator: 1001}
	Rate48kHz  = Rate{Numerator: 48000, Denominator: 1}
	Rate441kHz = Rate{Numerator: 44100, Denominator: 1}
)

// IsValid reports whether both numerator and denominator are non-zero.
func (r Rate) IsValid() bool {
	return r.Numerator != 0 && r.Denominator != 0
}

// String formats the rate as "numerator/denominator".
func (r Rate) String() string {
	return strconv.FormatUint(r.Numerator, 10) + "/" + strconv.FormatUint(r.Denominator, 10)
}

// ParseRate parses "25", "25/1" or "30000/1001". A bare number implies a
// denominator of 1. Zero components are accepted and yield an undefined rate.
func ParseRate(s string) (Rate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Rate{}, fmt.Errorf("%w: empty", ErrInvalidRate)
	}

	numStr, denStr, hasDen := strings.Cut(s, "/")
	num, err := strconv.ParseUint(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return Rate{}, fmt.Errorf("%w %q: %v", ErrInvalidRate, s, err)
	}
	if !hasDen {
		return Rate{Numerator: num, Denominator: 1}, nil
	}
	den, err := strconv.ParseUint(strings.TrimSpace(denStr), 10, 64)
	if err != nil {
		return Rate{}, fmt.Errorf("%w %q: %v", ErrInvalidRate, s, err)
	}
	return Rate{Numerator: num, Denominator: den}, nil
}

// MarshalText implements encoding.TextMarshaler.
func (r Rate) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so configuration files
// can carry rates as "30000/1001".
func (r *Rate) UnmarshalText(text []byte) error {
	parsed, err := ParseRate(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
