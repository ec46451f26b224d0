// Package log provides the logging abstraction used across flowsync.
//
// Components accept a [Logger] and never reach for a global logger. A
// zerolog-backed implementation is provided for applications and a no-op
// logger for tests and for embedding without output.
//
// # Usage
//
//	logger := log.NewZerologAdapter(os.Stderr, "debug")
//	group := syncgroup.New(syncgroup.WithLogger(logger.With(log.String("component", "sync"))))
//
// # Version
//
// Current version: 1.1.0
// Minimum compatible version: 1.0.0
package log
