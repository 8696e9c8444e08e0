package crdt

// mvEntry pairs a concurrently-visible value with the clock of the write
// that produced it.
type mvEntry[E comparable] struct {
	Value E
	Clock VectorClockState
}

func (e mvEntry[E]) equal(other mvEntry[E]) bool {
	return e.Value == other.Value && EqualClocks(e.Clock, other.Clock)
}

// MVRegisterState is the immutable snapshot of a multi-value register: the
// set of values written concurrently, none of which causally dominates
// another. A dominated entry is pruned as soon as its dominator is known.
type MVRegisterState[E comparable] struct {
	Owner   ReplicaID
	Entries []mvEntry[E]
}

func (s MVRegisterState[E]) clone() MVRegisterState[E] {
	entries := make([]mvEntry[E], len(s.Entries))
	for i, e := range s.Entries {
		entries[i] = mvEntry[E]{Value: e.Value, Clock: e.Clock.clone()}
	}
	return MVRegisterState[E]{Owner: s.Owner, Entries: entries}
}

// prune removes every entry whose clock happened-before some other entry's
// clock, leaving only the causally-maximal, pairwise-concurrent entries.
func prune[E comparable](entries []mvEntry[E]) []mvEntry[E] {
	out := make([]mvEntry[E], 0, len(entries))
	for i, e := range entries {
		dominated := false
		for j, other := range entries {
			if i == j {
				continue
			}
			if HappenedBefore(e.Clock, other.Clock) {
				dominated = true
				break
			}
		}
		if !dominated {
			out = append(out, e)
		}
	}
	return out
}

// dedupEntries drops exact (value, clock) duplicates, keeping the first
// occurrence. Merge relies on this before pruning.
func dedupEntries[E comparable](entries []mvEntry[E]) []mvEntry[E] {
	out := make([]mvEntry[E], 0, len(entries))
	for _, e := range entries {
		seen := false
		for _, kept := range out {
			if kept.equal(e) {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, e)
		}
	}
	return out
}

// MVRegister is a multi-value register CRDT: concurrent writes are all
// retained until a later write (or merge) observes and supersedes them.
// Readers see every causally-maximal value and choose how to reconcile.
type MVRegister[E comparable] struct {
	owner ReplicaID
	cell  *Cell[MVRegisterState[E]]
}

// NewMVRegister creates an empty MV-Register owned by owner.
func NewMVRegister[E comparable](owner ReplicaID) *MVRegister[E] {
	return &MVRegister[E]{owner: owner, cell: NewCell(MVRegisterState[E]{Owner: owner})}
}

// NewMVRegisterWithInitial creates an MV-Register pre-populated with a
// single value written by owner.
func NewMVRegisterWithInitial[E comparable](owner ReplicaID, initial E) *MVRegister[E] {
	r := NewMVRegister[E](owner)
	r.Set(initial)
	return r
}

// NewMVRegisterFromState rehydrates an MV-Register from a persisted
// snapshot.
func NewMVRegisterFromState[E comparable](owner ReplicaID, state MVRegisterState[E]) *MVRegister[E] {
	s := state.clone()
	s.Owner = owner
	return &MVRegister[E]{owner: owner, cell: NewCell(s)}
}

// Set writes v: the new clock is the merge of every currently-visible
// entry's clock, incremented at this replica, so it causally dominates
// everything this replica has observed. The new entry is then added and
// the entry set is pruned, which drops every value Set just observed and
// superseded.
func (r *MVRegister[E]) Set(v E) {
	_ = r.cell.Update(func(s MVRegisterState[E]) (MVRegisterState[E], error) {
		counters := map[ReplicaID]uint64{}
		for _, e := range s.Entries {
			counters = mergeClockCounters(counters, e.Clock.Counters)
		}
		newClock := VectorClockState{Owner: r.owner, Counters: counters}
		newClock.Counters[r.owner]++

		entries := append(append([]mvEntry[E]{}, s.Entries...), mvEntry[E]{Value: v, Clock: newClock})
		return MVRegisterState[E]{Owner: r.owner, Entries: prune(entries)}, nil
	})
}

// Get returns every currently concurrent value.
func (r *MVRegister[E]) Get() []E {
	entries := r.cell.Get().Entries
	out := make([]E, len(entries))
	for i, e := range entries {
		out[i] = e.Value
	}
	return out
}

// Query returns an immutable snapshot.
func (r *MVRegister[E]) Query() MVRegisterState[E] {
	return r.cell.Get().clone()
}

// Merge folds a peer's snapshot in: union the entry sets (deduplicating by
// value+clock equality), then prune dominated entries.
func (r *MVRegister[E]) Merge(other MVRegisterState[E]) {
	_ = r.cell.Update(func(s MVRegisterState[E]) (MVRegisterState[E], error) {
		union := append(append([]mvEntry[E]{}, s.Entries...), other.Entries...)
		return MVRegisterState[E]{Owner: r.owner, Entries: prune(dedupEntries(union))}, nil
	})
}
