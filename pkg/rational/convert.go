package rational

import (
	"math"
	"time"

	"lukechampine.com/uint128"

	"github.com/bft-labs/flowsync/pkg/timing"
)

// UndefinedIndex marks an index that cannot be computed or is not yet known.
const UndefinedIndex uint64 = math.MaxUint64

const (
	nanosPerSecond = 1_000_000_000
	maxWholeSecs   = math.MaxInt64 / nanosPerSecond
)

// TimestampToIndex returns the index nearest to ts for the given rate,
// rounding halves up.
//
// Timepoints before the epoch map to index 0. Results too large for an index
// saturate at UndefinedIndex-1, so the sentinel is only ever produced for an
// undefined rate.
func TimestampToIndex(rate Rate, ts timing.Timepoint) uint64 {
	if !rate.IsValid() {
		return UndefinedIndex
	}
	if ts < 0 {
		return 0
	}

	// (ts*num + den*1e9/2) / (den*1e9); ts*num < 2^127 and den*1e9 < 2^94.
	scaled := uint128.From64(uint64(ts)).Mul64(rate.Numerator)
	den := uint128.From64(rate.Denominator)
	q := scaled.Add(den.Mul64(nanosPerSecond / 2)).Div(den.Mul64(nanosPerSecond))

	if q.Hi != 0 || q.Lo == UndefinedIndex {
		return UndefinedIndex - 1
	}
	return q.Lo
}

// IndexToTimestamp returns the timepoint at which index is expected for the
// given rate, rounding halves up. Undefined rates yield the zero timepoint
// and results beyond the representable range saturate.
func IndexToTimestamp(rate Rate, index uint64) timing.Timepoint {
	if !rate.IsValid() {
		return 0
	}

	// index*den*1e9 may need more than 128 bits, so split index*den into
	// whole and fractional parts of num first:
	//   index*den = q*num + r  =>  result = q*1e9 + (r*1e9 + num/2) / num
	q, r := uint128.From64(index).Mul64(rate.Denominator).QuoRem64(rate.Numerator)
	if q.Hi != 0 || q.Lo > maxWholeSecs {
		return timing.Timepoint(math.MaxInt64)
	}

	frac := uint128.From64(r).Mul64(nanosPerSecond).Add64(rate.Numerator / 2).Div64(rate.Numerator)
	total := q.Lo*nanosPerSecond + frac.Lo
	if total > math.MaxInt64 {
		return timing.Timepoint(math.MaxInt64)
	}
	return timing.Timepoint(total)
}

// GrainDuration returns the nominal duration of a single index, rounded to
// the nearest nanosecond. Undefined rates return 0.
func GrainDuration(rate Rate) time.Duration {
	return time.Duration(IndexToTimestamp(rate, 1))
}

// CurrentIndex returns the index for the current time of src.
func CurrentIndex(rate Rate, src timing.Source) uint64 {
	return TimestampToIndex(rate, src.Now())
}
