package flowsync

import (
	"time"

	"github.com/bft-labs/flowsync/internal/app"
	"github.com/bft-labs/flowsync/pkg/syncgroup"
)

// State is the lifecycle state of a Runner.
type State = app.State

// Lifecycle states.
const (
	StateStopped  = app.StateStopped
	StateStarting = app.StateStarting
	StateRunning  = app.StateRunning
	StateStopping = app.StateStopping
	StateCrashed  = app.StateCrashed
)

// StateChangeEvent is emitted on every lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// PromoteEvent is emitted when a late flow moved to the front of the scan order.
type PromoteEvent struct {
	Flow           string
	MaxSourceDelay time.Duration
}

// WaitFailedEvent is emitted when a cycle failed on a flow.
type WaitFailedEvent struct {
	Flow  string
	Index uint64
	Error error
}

// EventHandler receives runtime events.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnPromote(event PromoteEvent)
	OnWaitFailed(event WaitFailedEvent)
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to handle
// only some events.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent) {}
func (BaseEventHandler) OnPromote(PromoteEvent)         {}
func (BaseEventHandler) OnWaitFailed(WaitFailedEvent)   {}

// eventBridge adapts EventHandler to the lifecycle emitter and the group observer.
type eventBridge struct {
	handler EventHandler
}

func (e eventBridge) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{Previous: previous, Current: current, Reason: reason})
}

func (e eventBridge) OnPromote(info syncgroup.EntryInfo) {
	if e.handler == nil {
		return
	}
	e.handler.OnPromote(PromoteEvent{Flow: info.Name, MaxSourceDelay: info.MaxSourceDelay})
}

func (e eventBridge) OnWaitFailed(info syncgroup.EntryInfo, index uint64, err error) {
	if e.handler == nil {
		return
	}
	e.handler.OnWaitFailed(WaitFailedEvent{Flow: info.Name, Index: index, Error: err})
}
