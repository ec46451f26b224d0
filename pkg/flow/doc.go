// Package flow defines the reader capability consumed by flow
// synchronization groups.
//
// Flows come in two variants:
//
//   - Discrete flows carry grains (typically video frames). A grain is made of
//     slices and becomes usable once at least a caller-chosen number of slices
//     has been committed. See [DiscreteReader].
//   - Continuous flows carry samples (typically audio) with no sub-unit
//     concept. See [ContinuousReader].
//
// Both variants expose their configuration, a cheap non-blocking head index
// and a blocking wait bounded by an absolute TAI deadline.
//
// # Status Mapping
//
// Blocking waits return nil when the data is ready, [ErrTimeout] when the
// deadline expired first, and any other error for storage or transport
// failures. Callers test with errors.Is.
//
// # Ownership
//
// Consumers such as synchronization groups hold readers without owning them:
// they never close a reader or otherwise manage its lifetime. Whoever opened a
// reader must keep it usable while it is registered anywhere.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package flow
