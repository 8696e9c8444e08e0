package crdt

import "golang.org/x/exp/maps"

// CounterKind distinguishes a grow-only counter from a signed one. A
// G-Counter never populates Negatives; a PN-Counter always does.
type CounterKind int

const (
	// KindG is a grow-only counter: Decrement is not supported.
	KindG CounterKind = iota
	// KindPN is a positive-negative counter: both Increment and Decrement
	// are supported.
	KindPN
)

func (k CounterKind) String() string {
	if k == KindPN {
		return "PN"
	}
	return "G"
}

// CounterState is the immutable snapshot of a G-Counter or PN-Counter:
// per-replica positive (and, for PN, negative) contribution maps. Value is
// the sum of Positives minus the sum of Negatives (zero for G-Counter,
// whose Negatives is always empty).
type CounterState struct {
	Kind      CounterKind
	Owner     ReplicaID
	Positives map[ReplicaID]uint64
	Negatives map[ReplicaID]uint64
}

// Value returns the sum of Positives minus the sum of Negatives.
func (s CounterState) Value() int64 {
	var total int64
	for _, v := range s.Positives {
		total += int64(v)
	}
	for _, v := range s.Negatives {
		total -= int64(v)
	}
	return total
}

func (s CounterState) clone() CounterState {
	return CounterState{
		Kind:      s.Kind,
		Owner:     s.Owner,
		Positives: maps.Clone(s.Positives),
		Negatives: maps.Clone(s.Negatives),
	}
}

func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

// ─────────────────────────────────────────────────────────────
// GCounter
// ─────────────────────────────────────────────────────────────

// GCounter is a grow-only numeric counter CRDT: a sum of per-replica
// non-negative contributions that can only increase.
type GCounter struct {
	owner ReplicaID
	cell  *Cell[CounterState]
}

// NewGCounter creates a zeroed G-Counter owned by owner.
func NewGCounter(owner ReplicaID) *GCounter {
	return &GCounter{
		owner: owner,
		cell: NewCell(CounterState{
			Kind:      KindG,
			Owner:     owner,
			Positives: map[ReplicaID]uint64{},
		}),
	}
}

// NewGCounterFromState rehydrates a G-Counter from a persisted snapshot.
func NewGCounterFromState(owner ReplicaID, state CounterState) *GCounter {
	s := state.clone()
	s.Kind, s.Owner, s.Negatives = KindG, owner, nil
	return &GCounter{owner: owner, cell: NewCell(s)}
}

// Increment adds n to this replica's contribution. n must be non-negative;
// a negative n fails fatally with *InvalidArgumentError and leaves the
// counter unchanged.
func (c *GCounter) Increment(n int64) error {
	return c.cell.Update(func(s CounterState) (CounterState, error) {
		if n < 0 {
			invalidArgument("GCounter.Increment", "n must be >= 0")
		}
		next := s.clone()
		next.Positives[c.owner] += uint64(n)
		return next, nil
	})
}

// Decrement always fails: a G-Counter is grow-only.
func (c *GCounter) Decrement(int64) error {
	return c.cell.Update(func(s CounterState) (CounterState, error) {
		notSupported("Decrement", "GCounter")
		return s, nil
	})
}

// Value returns the sum of all replicas' contributions.
func (c *GCounter) Value() int64 {
	return c.cell.Get().Value()
}

// Query returns an immutable snapshot.
func (c *GCounter) Query() CounterState {
	return c.cell.Get().clone()
}

// Merge folds a peer's snapshot in, taking the component-wise maximum of
// Positives. Merge is commutative, associative and idempotent, so Value is
// monotone non-decreasing under merge.
func (c *GCounter) Merge(other CounterState) {
	_ = c.cell.Update(func(s CounterState) (CounterState, error) {
		return CounterState{
			Kind:      KindG,
			Owner:     c.owner,
			Positives: mergeMaps(s.Positives, other.Positives, maxU64),
		}, nil
	})
}

// ─────────────────────────────────────────────────────────────
// PNCounter
// ─────────────────────────────────────────────────────────────

// PNCounter is a signed counter CRDT built from two G-Counters: one for
// increments, one for decrements.
type PNCounter struct {
	owner ReplicaID
	cell  *Cell[CounterState]
}

// NewPNCounter creates a zeroed PN-Counter owned by owner.
func NewPNCounter(owner ReplicaID) *PNCounter {
	return &PNCounter{
		owner: owner,
		cell: NewCell(CounterState{
			Kind:      KindPN,
			Owner:     owner,
			Positives: map[ReplicaID]uint64{},
			Negatives: map[ReplicaID]uint64{},
		}),
	}
}

// NewPNCounterFromState rehydrates a PN-Counter from a persisted snapshot.
func NewPNCounterFromState(owner ReplicaID, state CounterState) *PNCounter {
	s := state.clone()
	s.Kind, s.Owner = KindPN, owner
	if s.Negatives == nil {
		s.Negatives = map[ReplicaID]uint64{}
	}
	return &PNCounter{owner: owner, cell: NewCell(s)}
}

// Increment adds n (n >= 0) to this replica's positive contribution. A
// negative n fails fatally with *InvalidArgumentError.
func (c *PNCounter) Increment(n int64) error {
	return c.cell.Update(func(s CounterState) (CounterState, error) {
		if n < 0 {
			invalidArgument("PNCounter.Increment", "n must be >= 0")
		}
		next := s.clone()
		next.Positives[c.owner] += uint64(n)
		return next, nil
	})
}

// Decrement adds n (n >= 0) to this replica's negative contribution. A
// negative n fails fatally with *InvalidArgumentError.
func (c *PNCounter) Decrement(n int64) error {
	return c.cell.Update(func(s CounterState) (CounterState, error) {
		if n < 0 {
			invalidArgument("PNCounter.Decrement", "n must be >= 0")
		}
		next := s.clone()
		next.Negatives[c.owner] += uint64(n)
		return next, nil
	})
}

// Value returns the sum of Positives minus the sum of Negatives.
func (c *PNCounter) Value() int64 {
	return c.cell.Get().Value()
}

// Query returns an immutable snapshot.
func (c *PNCounter) Query() CounterState {
	return c.cell.Get().clone()
}

// Merge folds a peer's snapshot in, taking the component-wise maximum of
// Positives and Negatives independently.
func (c *PNCounter) Merge(other CounterState) {
	_ = c.cell.Update(func(s CounterState) (CounterState, error) {
		return CounterState{
			Kind:      KindPN,
			Owner:     c.owner,
			Positives: mergeMaps(s.Positives, other.Positives, maxU64),
			Negatives: mergeMaps(s.Negatives, other.Negatives, maxU64),
		}, nil
	})
}
