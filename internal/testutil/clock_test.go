package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bft-labs/flowsync/pkg/timing"
)

func TestManualClock(t *testing.T) {
	c := NewManualClock(100)
	assert.Equal(t, timing.Timepoint(100), c.Now())

	c.Advance(time.Microsecond)
	assert.Equal(t, timing.Timepoint(1100), c.Now())

	c.Set(5)
	assert.Equal(t, timing.Timepoint(5), c.Now())
}

func TestManualClock_Concurrent(t *testing.T) {
	c := NewManualClock(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Advance(time.Nanosecond)
		}()
	}
	wg.Wait()
	assert.Equal(t, timing.Timepoint(50), c.Now())
}
