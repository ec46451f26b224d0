// Package domain contains the entities shared by the flowsync runtime.
//
// This package has no dependencies on infrastructure concerns (file system,
// logging, CLI) and holds only value types and their validation rules.
//
// # Entities
//
//   - [FlowSpec]: Declaration of one flow the runtime creates and reads
//   - [Report]: Outcome of a consumer session (cycle counts, final scan order)
//   - [CycleStats]: Running counters of ready, timed out and failed cycles
package domain
