package memflow

import (
	"time"

	"github.com/bft-labs/flowsync/pkg/flow"
	"github.com/bft-labs/flowsync/pkg/timing"
)

// waitUntil polls ready under the caller's lock discipline and sleeps on the
// change channel between polls. ready returns (done, err); changed returns the
// channel closed on the next commit. The deadline is TAI and is converted to
// a wall-clock timer once.
func waitUntil(clock timing.Source, deadline timing.Timepoint, ready func() (bool, error), changed func() <-chan struct{}) error {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		// Grab the channel before polling so a commit between the poll and
		// the select still wakes us.
		ch := changed()
		done, err := ready()
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		remaining := timing.Until(clock, deadline)
		if remaining <= 0 {
			return flow.ErrTimeout
		}
		if timer == nil {
			timer = time.NewTimer(remaining)
		}

		select {
		case <-ch:
		case <-timer.C:
			// One last look: the data may have landed right at the deadline.
			if done, err := ready(); err != nil || done {
				return err
			}
			return flow.ErrTimeout
		}
	}
}
