package crdt

import "golang.org/x/exp/maps"

// TwoPSetState is the immutable snapshot of a 2P-Set: a grow-only added
// set and a grow-only removed (tombstone) set. An element is visible iff
// it is in Added but not Removed; once tombstoned, it is gone for good —
// re-adding it does not make it visible again.
type TwoPSetState[E comparable] struct {
	Owner   ReplicaID
	Added   map[E]struct{}
	Removed map[E]struct{}
}

func (s TwoPSetState[E]) clone() TwoPSetState[E] {
	return TwoPSetState[E]{Owner: s.Owner, Added: maps.Clone(s.Added), Removed: maps.Clone(s.Removed)}
}

// visible reports whether e is in Added and not in Removed.
func (s TwoPSetState[E]) visible(e E) bool {
	if _, removed := s.Removed[e]; removed {
		return false
	}
	_, added := s.Added[e]
	return added
}

// TwoPSet is an add-once, remove-once set CRDT: the union of a grow-only
// add-set and a grow-only tombstone-set.
type TwoPSet[E comparable] struct {
	owner ReplicaID
	cell  *Cell[TwoPSetState[E]]
}

// NewTwoPSet creates an empty 2P-Set owned by owner.
func NewTwoPSet[E comparable](owner ReplicaID) *TwoPSet[E] {
	return &TwoPSet[E]{
		owner: owner,
		cell: NewCell(TwoPSetState[E]{
			Owner:   owner,
			Added:   map[E]struct{}{},
			Removed: map[E]struct{}{},
		}),
	}
}

// NewTwoPSetFromState rehydrates a 2P-Set from a persisted snapshot.
func NewTwoPSetFromState[E comparable](owner ReplicaID, state TwoPSetState[E]) *TwoPSet[E] {
	s := state.clone()
	s.Owner = owner
	return &TwoPSet[E]{owner: owner, cell: NewCell(s)}
}

// Add inserts e into the add-set. If e has already been tombstoned (here
// or at a replica whose state this one has merged), it remains invisible:
// pre-tombstoning is legal and permanent.
func (s *TwoPSet[E]) Add(e E) {
	_ = s.cell.Update(func(st TwoPSetState[E]) (TwoPSetState[E], error) {
		next := st.clone()
		next.Added[e] = struct{}{}
		return next, nil
	})
}

// Remove tombstones e. e need not already be in the add-set.
func (s *TwoPSet[E]) Remove(e E) {
	_ = s.cell.Update(func(st TwoPSetState[E]) (TwoPSetState[E], error) {
		next := st.clone()
		next.Removed[e] = struct{}{}
		return next, nil
	})
}

// Has reports whether e is currently visible (added and not removed).
func (s *TwoPSet[E]) Has(e E) bool {
	return s.cell.Get().visible(e)
}

// Values returns every currently visible element.
func (s *TwoPSet[E]) Values() []E {
	st := s.cell.Get()
	out := make([]E, 0, len(st.Added))
	for e := range st.Added {
		if st.visible(e) {
			out = append(out, e)
		}
	}
	return out
}

// Size returns the number of currently visible elements.
func (s *TwoPSet[E]) Size() int {
	return len(s.Values())
}

// Query returns an immutable snapshot.
func (s *TwoPSet[E]) Query() TwoPSetState[E] {
	return s.cell.Get().clone()
}

// Merge folds a peer's snapshot in by unioning Added and Removed
// independently.
func (s *TwoPSet[E]) Merge(other TwoPSetState[E]) {
	_ = s.cell.Update(func(st TwoPSetState[E]) (TwoPSetState[E], error) {
		return TwoPSetState[E]{
			Owner:   s.owner,
			Added:   unionSets(st.Added, other.Added),
			Removed: unionSets(st.Removed, other.Removed),
		}, nil
	})
}
