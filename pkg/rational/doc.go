// Package rational converts between timepoints and media indices for
// streams with a rational edit rate.
//
// A grain rate of 30000/1001 means 30000 grains every 1001 seconds. Index n
// of such a flow is expected at n*1001/30000 seconds after the TAI epoch,
// and a timepoint t maps to the nearest index (half rounding up).
//
// All intermediate products are computed in 128-bit integer arithmetic, so
// the full signed 64-bit timepoint range converts without overflow for any
// 64-bit numerator and denominator. Rates with a zero numerator or
// denominator are undefined: [TimestampToIndex] returns [UndefinedIndex] and
// [IndexToTimestamp] returns the zero timepoint.
//
// Both conversions are monotonic for a fixed rate but are not exact inverses.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package rational
