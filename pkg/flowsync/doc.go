// Package flowsync provides an embeddable flow synchronization runtime.
//
// A runtime creates in-process flows from a [Config], publishes them in real
// time with simulated source delay and jitter, and runs a consumer session
// that synchronizes all flows at a presentation instant every cycle through a
// [syncgroup.Group]. It can be used through the flowsync CLI or embedded as
// a library.
//
// # Basic Usage
//
//	cfg := flowsync.Config{
//	    Flows: []flowsync.FlowConfig{
//	        {Name: "video", Kind: flow.KindDiscrete, Rate: rational.Rate50, Slices: 1},
//	        {Name: "audio", Kind: flow.KindContinuous, Rate: rational.Rate48kHz, Batch: 480},
//	    },
//	    PresentationLatency: 60 * time.Millisecond,
//	}
//
//	r, err := flowsync.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := r.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	// ... run until shutdown signal ...
//
//	if err := r.Stop(); err != nil {
//	    log.Printf("shutdown error: %v", err)
//	}
//	fmt.Println(r.Report().Stats)
//
// # Event Handling
//
// Implement [EventHandler] (embed [BaseEventHandler] for no-op defaults) and
// pass it via [WithEventHandler]. Events are called synchronously from the
// runtime goroutines and should return quickly.
//
// # Lifecycle States
//
// A Runner can be in one of five states: [StateStopped], [StateStarting],
// [StateRunning], [StateStopping], or [StateCrashed]. A runner configured
// with a cycle count returns to [StateStopped] on its own when the session
// completes; [Runner.Done] is closed at that point.
//
// # Plugins
//
// Plugins are initialized on Start in registration order and shut down in
// reverse order. They receive a [ThresholdUpdater] to change the readiness
// threshold of grain flows while the session runs:
//
//	import "github.com/bft-labs/flowsync/plugins/configwatcher"
//
//	r, err := flowsync.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.DefaultConfig()),
//	)
//
// # Version
//
// Current version: 1.0.0
// Minimum compatible version: 1.0.0
package flowsync
