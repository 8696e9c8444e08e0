package crdt

import (
	"golang.org/x/exp/maps"
)

// ─────────────────────────────────────────────────────────────
// Vector Clock
// ─────────────────────────────────────────────────────────────

// Ordering is the result of comparing two vector clocks.
type Ordering int

const (
	// Equal means the two clocks carry identical counters for every key.
	Equal Ordering = iota
	// Before means the left clock happened-before the right one.
	Before
	// After means the left clock happened-after the right one.
	After
	// Concurrent means neither clock happened-before the other.
	Concurrent
)

func (o Ordering) String() string {
	switch o {
	case Equal:
		return "Equal"
	case Before:
		return "Before"
	case After:
		return "After"
	case Concurrent:
		return "Concurrent"
	default:
		return "Unknown"
	}
}

// VectorClockState is the immutable snapshot of a vector clock: a mapping
// from ReplicaID to a non-negative counter, plus the replica that owns this
// copy. Absent keys read as 0. Callers must not mutate the Counters map;
// treat every VectorClockState as a value.
type VectorClockState struct {
	Owner    ReplicaID
	Counters map[ReplicaID]uint64
}

// Get returns the counter for r, or 0 if r has never been observed.
func (s VectorClockState) Get(r ReplicaID) uint64 {
	return s.Counters[r]
}

// clone returns a deep, independent copy of s.
func (s VectorClockState) clone() VectorClockState {
	return VectorClockState{Owner: s.Owner, Counters: maps.Clone(s.Counters)}
}

// incrementClock returns a clone of vc with r's slot incremented by one and
// Owner set to r. register.go uses this to timestamp a write on the
// register's own clock; lwwmap.go applies it to the shared Clock's cell
// state inside a Transact rather than calling Clock.Increment.
func incrementClock(vc VectorClockState, r ReplicaID) VectorClockState {
	next := vc.clone()
	if next.Counters == nil {
		next.Counters = map[ReplicaID]uint64{}
	}
	next.Counters[r]++
	next.Owner = r
	return next
}

// Compare computes the causal ordering of a and b over the union of their
// replica keys. Absent keys read as 0. It exits early once both a "less"
// and a "greater" component have been observed, since the result is then
// fixed at Concurrent regardless of any remaining keys.
func Compare(a, b VectorClockState) Ordering {
	keys := make(map[ReplicaID]struct{}, len(a.Counters)+len(b.Counters))
	for k := range a.Counters {
		keys[k] = struct{}{}
	}
	for k := range b.Counters {
		keys[k] = struct{}{}
	}

	var less, greater bool
	for k := range keys {
		av, bv := a.Counters[k], b.Counters[k]
		switch {
		case av < bv:
			less = true
		case av > bv:
			greater = true
		}
		if less && greater {
			return Concurrent
		}
	}

	switch {
	case less:
		return Before
	case greater:
		return After
	default:
		return Equal
	}
}

// HappenedBefore reports whether a strictly happened-before b.
func HappenedBefore(a, b VectorClockState) bool { return Compare(a, b) == Before }

// HappenedAfter reports whether a strictly happened-after b.
func HappenedAfter(a, b VectorClockState) bool { return Compare(a, b) == After }

// ConcurrentClocks reports whether a and b are causally concurrent.
func ConcurrentClocks(a, b VectorClockState) bool { return Compare(a, b) == Concurrent }

// EqualClocks reports whether a and b carry identical counters.
func EqualClocks(a, b VectorClockState) bool { return Compare(a, b) == Equal }

// mergeClockCounters returns the component-wise maximum of a and b over the
// union of their keys, using the merge_maps primitive from merge.go.
func mergeClockCounters(a, b map[ReplicaID]uint64) map[ReplicaID]uint64 {
	return mergeMaps(a, b, func(x, y uint64) uint64 {
		if x > y {
			return x
		}
		return y
	})
}

// ─────────────────────────────────────────────────────────────
// Clock — the mutable, per-replica vector clock service
// ─────────────────────────────────────────────────────────────

// Clock is a mutable vector clock owned by exactly one replica. Its state
// lives in a Cell, so a caller composing a clock increment atomically with
// other replica state (LWWMap does exactly this) can list the clock's
// underlying cell alongside the other cell in a single Transact call
// instead of relying on Clock's own locking.
type Clock struct {
	owner ReplicaID
	cell  *Cell[VectorClockState]
}

// NewClock creates a zeroed vector clock owned by owner.
func NewClock(owner ReplicaID) *Clock {
	return &Clock{
		owner: owner,
		cell:  NewCell(VectorClockState{Owner: owner, Counters: map[ReplicaID]uint64{}}),
	}
}

// NewClockFromState rehydrates a Clock from a previously persisted snapshot.
func NewClockFromState(owner ReplicaID, state VectorClockState) *Clock {
	s := state.clone()
	s.Owner = owner
	return &Clock{owner: owner, cell: NewCell(s)}
}

// Cell exposes the clock's underlying transactional cell so it can be
// composed into a multi-cell Transact alongside other replica state.
func (c *Clock) Cell() *Cell[VectorClockState] { return c.cell }

// Increment bumps the owner's own counter by one and returns the new
// snapshot.
func (c *Clock) Increment() VectorClockState {
	var result VectorClockState
	_ = c.cell.Update(func(s VectorClockState) (VectorClockState, error) {
		next := s.clone()
		next.Counters[c.owner]++
		result = next.clone()
		return next, nil
	})
	return result
}

// Get returns the counter for r.
func (c *Clock) Get(r ReplicaID) uint64 {
	return c.cell.Get().Get(r)
}

// Query returns an immutable snapshot of the current clock.
func (c *Clock) Query() VectorClockState {
	return c.cell.Get().clone()
}

// Merge folds a peer's snapshot into this clock, taking the component-wise
// maximum. Merge is commutative, associative and idempotent.
func (c *Clock) Merge(other VectorClockState) {
	_ = c.cell.Update(func(s VectorClockState) (VectorClockState, error) {
		return VectorClockState{
			Owner:    c.owner,
			Counters: mergeClockCounters(s.Counters, other.Counters),
		}, nil
	})
}
