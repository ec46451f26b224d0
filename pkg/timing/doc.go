// Package timing provides the timepoint type and clock accessors shared by
// flow readers, writers and synchronization groups.
//
// A [Timepoint] is a signed count of nanoseconds since the epoch of a clock
// domain. Flows are indexed against the TAI domain, which is continuous and
// free of leap-second jumps. Timepoints from different domains must not be
// compared or subtracted.
//
// # Usage
//
//	now := timing.Now(timing.TAI)
//	deadline := now.Add(40 * time.Millisecond)
//
// Components that need the current time accept a [Source] so tests can
// substitute a manual clock.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package timing
