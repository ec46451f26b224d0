// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// Ports are the boundaries between the application core and the outside
// world. They define what the application needs from external systems
// without specifying how those needs are fulfilled.
//
// # Port Interfaces
//
//   - [GrainWriter]: Publishes slices of a grain into a discrete flow
//   - [SampleWriter]: Publishes batches of samples into a continuous flow
//   - [ReportRepository]: Persists the session report
//   - [Logger]: Structured logging abstraction
//   - [Clock]: TAI time source
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with concrete
// implementations (in-memory flows, file system, zerolog).
package ports
