// Package syncgroup waits for data across several media flows at one
// presentation instant.
//
// A [Group] holds references to flow readers of both variants. Each call to
// [Group.WaitForDataAt] converts the origin time into the expected index of
// every flow, skips flows whose head index already covers it and blocks on
// the others until the data arrives or the deadline passes.
//
// # Usage
//
//	group := syncgroup.New(syncgroup.WithLogger(logger))
//	group.AddDiscreteReader(video, 1)
//	group.AddContinuousReader(audio)
//
//	for {
//	    now := timing.Now(timing.TAI)
//	    err := group.WaitForDataAt(now.Add(-latency), now.Add(timeout))
//	    if errors.Is(err, flow.ErrTimeout) {
//	        // a flow is late; skip or repeat this instant
//	    }
//	    ...
//	}
//
// # Adaptive Scan Order
//
// The group remembers, per flow, the worst delay between a grain's nominal
// time and the moment the group saw it arrive. Flows that turn out later than
// the flow at the front of the scan are moved to the front, so a persistently
// late flow is waited on first and a failing cycle fails early instead of
// after polling every prompt flow. The front entry always holds the largest
// recorded delay.
//
// # Concurrency
//
// A Group performs no locking and starts no goroutines. Callers serialize
// AddDiscreteReader, AddContinuousReader and RemoveReader with respect to
// WaitForDataAt. Distinct groups are independent.
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package syncgroup
