package syncgroup

import (
	"reflect"

	"github.com/bft-labs/flowsync/pkg/flow"
	"github.com/bft-labs/flowsync/pkg/log"
	"github.com/bft-labs/flowsync/pkg/rational"
	"github.com/bft-labs/flowsync/pkg/timing"
)

// Group checks data availability on a set of flows at a common instant.
//
// The group holds readers without owning them; a reader must remain usable
// for as long as it is registered. Group is not safe for concurrent use:
// registration changes must not race with WaitForDataAt on the same group.
type Group struct {
	entries  list
	clock    timing.Source
	logger   log.Logger
	observer Observer
}

// New creates an empty group.
func New(opts ...Option) *Group {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Group{
		entries:  newList(),
		clock:    o.clock,
		logger:   o.logger,
		observer: o.observer,
	}
}

// AddDiscreteReader registers a grain-oriented reader that is considered ready
// once minValidSlices slices of the expected grain are committed. Adding a
// reader that is already registered only updates its slice threshold; its
// scan position, cached rate and delay history are kept.
func (g *Group) AddDiscreteReader(r flow.DiscreteReader, minValidSlices uint16) {
	if !g.acceptable(r) {
		return
	}
	if i, _ := g.lookup(r); i != nilSlot {
		if d, ok := g.entries.at(i).member.(*discreteMember); ok {
			d.minValidSlices = minValidSlices
			g.logger.Debug("reader threshold updated",
				log.String("flow", g.entries.at(i).name),
				log.Uint16("min_valid_slices", minValidSlices),
			)
		}
		return
	}

	e := newEntry(&discreteMember{r: r, minValidSlices: minValidSlices}, flow.KindDiscrete)
	g.entries.pushBack(e)
	g.logger.Debug("reader added",
		log.String("flow", e.name),
		log.String("kind", e.kind.String()),
		log.Stringer("rate", e.rate),
		log.Uint16("min_valid_slices", minValidSlices),
	)
}

// AddContinuousReader registers a sample-oriented reader. Adding a reader that
// is already registered is a no-op.
func (g *Group) AddContinuousReader(r flow.ContinuousReader) {
	if !g.acceptable(r) {
		return
	}
	if i, _ := g.lookup(r); i != nilSlot {
		return
	}

	e := newEntry(&continuousMember{r: r}, flow.KindContinuous)
	g.entries.pushBack(e)
	g.logger.Debug("reader added",
		log.String("flow", e.name),
		log.String("kind", e.kind.String()),
		log.Stringer("rate", e.rate),
	)
}

// RemoveReader unregisters r. Removing an unknown reader is a no-op.
func (g *Group) RemoveReader(r flow.Reader) {
	if r == nil {
		return
	}
	i, prev := g.lookup(r)
	if i == nilSlot {
		return
	}

	name := g.entries.at(i).name
	wasFront := prev == nilSlot
	g.entries.remove(i, prev)
	g.logger.Debug("reader removed", log.String("flow", name))

	if wasFront {
		g.restoreFrontMax()
	}
}

// Len returns the number of registered readers.
func (g *Group) Len() int {
	return g.entries.len()
}

// Snapshot returns the registered readers in current scan order.
func (g *Group) Snapshot() []EntryInfo {
	out := make([]EntryInfo, 0, g.entries.len())
	for i := g.entries.head; i != nilSlot; i = g.entries.next(i) {
		out = append(out, g.entries.at(i).info())
	}
	return out
}

// WaitForDataAt blocks until every registered flow has data for originTime or
// until one of them fails. Each reader wait is bounded by the same absolute
// deadline, so the total blocking time can exceed deadline-now when several
// flows are late.
//
// The first failing reader's error (flow.ErrTimeout or a reader error) is
// returned unchanged and no further flows are checked. An empty group
// succeeds immediately.
//
// Flows that had to be waited for are timed against their nominal arrival.
// A flow whose worst observed delay exceeds that of the current front entry
// is moved to the front so future calls check it first.
func (g *Group) WaitForDataAt(originTime, deadline timing.Timepoint) error {
	l := &g.entries
	prev := nilSlot
	for cur := l.head; cur != nilSlot; {
		next := l.next(cur)
		e := l.at(cur)

		expected := rational.TimestampToIndex(e.rate, originTime)
		head := e.member.headIndex()
		if isAvailable(expected, head) {
			prev, cur = cur, next
			continue
		}

		if err := e.member.waitReady(expected, deadline); err != nil {
			g.logger.Debug("flow not ready",
				log.String("flow", e.name),
				log.Uint64("expected_index", expected),
				log.Uint64("head_index", head),
				log.Err(err),
			)
			if g.observer != nil {
				g.observer.OnWaitFailed(e.info(), expected, err)
			}
			return err
		}

		if g.recordDelay(e, expected) && prev != nilSlot && e.maxDelay > l.at(l.head).maxDelay {
			// prev stays put: it is now directly followed by next.
			l.moveToFront(cur, prev)
			g.logger.Debug("flow promoted",
				log.String("flow", e.name),
				log.Duration("max_source_delay", e.maxDelay),
			)
			if g.observer != nil {
				g.observer.OnPromote(e.info())
			}
		} else {
			prev = cur
		}
		cur = next
	}
	return nil
}

// isAvailable reports whether head covers expected. The undefined sentinel
// never counts as available on either side.
func isAvailable(expected, head uint64) bool {
	return expected != rational.UndefinedIndex &&
		head != rational.UndefinedIndex &&
		expected <= head
}

// recordDelay measures how late the data for index arrived and raises the
// entry's maximum. It reports whether the maximum grew.
func (g *Group) recordDelay(e *entry, index uint64) bool {
	expectedArrival := rational.IndexToTimestamp(e.rate, index)
	now := g.clock.Now()
	if !now.After(expectedArrival) {
		return false
	}
	delay := now.Sub(expectedArrival)
	if delay <= e.maxDelay {
		return false
	}
	e.maxDelay = delay
	return true
}

// restoreFrontMax moves the entry with the largest recorded delay to the
// front. Promotion only compares against the front entry, so the front must
// hold the group-wide maximum after the previous front is removed.
func (g *Group) restoreFrontMax() {
	l := &g.entries
	best, bestPrev := l.head, nilSlot
	if best == nilSlot {
		return
	}
	prev := l.head
	for i := l.next(l.head); i != nilSlot; i = l.next(i) {
		if l.at(i).maxDelay > l.at(best).maxDelay {
			best, bestPrev = i, prev
		}
		prev = i
	}
	l.moveToFront(best, bestPrev)
}

// acceptable reports whether r can be registered. Readers are keyed by
// interface equality, so values that cannot be compared are rejected.
func (g *Group) acceptable(r flow.Reader) bool {
	if r == nil {
		return false
	}
	if !isComparable(r) {
		g.logger.Warn("reader rejected: not comparable",
			log.String("type", reflect.TypeOf(r).String()),
		)
		return false
	}
	return true
}

func isComparable(r flow.Reader) bool {
	return reflect.ValueOf(r).Comparable()
}

func (g *Group) lookup(r flow.Reader) (i, prev int) {
	if !isComparable(r) {
		return nilSlot, nilSlot
	}
	return g.entries.find(func(e *entry) bool {
		return e.member.reader() == r
	})
}
