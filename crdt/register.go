package crdt

// LWWRegisterState is the immutable snapshot of an LWW-Register: a single
// optional value, the vector clock of the write that produced it, and the
// replica that wrote it (used to break ties between concurrent writes).
type LWWRegisterState[T any] struct {
	Value  Optional[T]
	Clock  VectorClockState
	Writer ReplicaID
}

// lwwWins reports whether the incoming write (otherClock, otherWriter)
// should replace the current one (selfClock, selfWriter): either it
// strictly happened after, or the two are concurrent and the incoming
// writer sorts after the current one in ReplicaID's total order. This is
// the single tie-break rule LWWRegister.Merge and LWWMap.Merge both use.
func lwwWins(selfClock, otherClock VectorClockState, selfWriter, otherWriter ReplicaID) bool {
	switch Compare(selfClock, otherClock) {
	case Before:
		return true
	case Concurrent:
		return selfWriter.Less(otherWriter)
	default: // After, Equal
		return false
	}
}

// LWWRegister is a last-write-wins register CRDT: a single value that
// converges to whichever write is causally latest, with ties between
// concurrent writes broken by comparing writer ReplicaIDs.
type LWWRegister[T any] struct {
	owner ReplicaID
	cell  *Cell[LWWRegisterState[T]]
}

// NewLWWRegister creates an empty LWW-Register owned by owner.
func NewLWWRegister[T any](owner ReplicaID) *LWWRegister[T] {
	return &LWWRegister[T]{
		owner: owner,
		cell: NewCell(LWWRegisterState[T]{
			Clock:  VectorClockState{Owner: owner, Counters: map[ReplicaID]uint64{}},
			Writer: owner,
		}),
	}
}

// NewLWWRegisterWithInitial creates an LWW-Register pre-populated with
// initial, attributed to owner as of owner's first tick.
func NewLWWRegisterWithInitial[T any](owner ReplicaID, initial T) *LWWRegister[T] {
	r := NewLWWRegister[T](owner)
	r.Set(initial)
	return r
}

// NewLWWRegisterFromState rehydrates an LWW-Register from a persisted
// snapshot.
func NewLWWRegisterFromState[T any](owner ReplicaID, state LWWRegisterState[T]) *LWWRegister[T] {
	return &LWWRegister[T]{owner: owner, cell: NewCell(state)}
}

// Set writes v, attributing it to this replica as of its next clock tick.
func (r *LWWRegister[T]) Set(v T) {
	_ = r.cell.Update(func(s LWWRegisterState[T]) (LWWRegisterState[T], error) {
		return LWWRegisterState[T]{
			Value:  Some(v),
			Clock:  incrementClock(s.Clock, r.owner),
			Writer: r.owner,
		}, nil
	})
}

// Clear writes an absent value, attributed to this replica as of its next
// clock tick.
func (r *LWWRegister[T]) Clear() {
	_ = r.cell.Update(func(s LWWRegisterState[T]) (LWWRegisterState[T], error) {
		return LWWRegisterState[T]{
			Value:  None[T](),
			Clock:  incrementClock(s.Clock, r.owner),
			Writer: r.owner,
		}, nil
	})
}

// Get returns the current value and whether it is present.
func (r *LWWRegister[T]) Get() (T, bool) {
	return r.cell.Get().Value.Get()
}

// Query returns an immutable snapshot.
func (r *LWWRegister[T]) Query() LWWRegisterState[T] {
	s := r.cell.Get()
	s.Clock = s.Clock.clone()
	return s
}

// Merge folds a peer's snapshot in: keep self if self
// happened after or the clocks tie; adopt other if self happened before,
// or the two are concurrent and other's writer wins the tie-break. Either
// way, self's clock absorbs the peer's clock, so a subsequent local write
// is causally after everything this merge observed.
func (r *LWWRegister[T]) Merge(other LWWRegisterState[T]) {
	_ = r.cell.Update(func(s LWWRegisterState[T]) (LWWRegisterState[T], error) {
		mergedClock := VectorClockState{
			Owner:    r.owner,
			Counters: mergeClockCounters(s.Clock.Counters, other.Clock.Counters),
		}
		if lwwWins(s.Clock, other.Clock, s.Writer, other.Writer) {
			return LWWRegisterState[T]{Value: other.Value, Clock: mergedClock, Writer: other.Writer}, nil
		}
		return LWWRegisterState[T]{Value: s.Value, Clock: mergedClock, Writer: s.Writer}, nil
	})
}
