package crdt

import "golang.org/x/exp/maps"

// GSetState is the immutable snapshot of a G-Set: a grow-only set that
// never loses an element once added.
type GSetState[E comparable] struct {
	Owner ReplicaID
	Added map[E]struct{}
}

func (s GSetState[E]) clone() GSetState[E] {
	return GSetState[E]{Owner: s.Owner, Added: maps.Clone(s.Added)}
}

// GSet is a grow-only set CRDT.
type GSet[E comparable] struct {
	owner ReplicaID
	cell  *Cell[GSetState[E]]
}

// NewGSet creates an empty G-Set owned by owner.
func NewGSet[E comparable](owner ReplicaID) *GSet[E] {
	return &GSet[E]{owner: owner, cell: NewCell(GSetState[E]{Owner: owner, Added: map[E]struct{}{}})}
}

// NewGSetFromState rehydrates a G-Set from a persisted snapshot.
func NewGSetFromState[E comparable](owner ReplicaID, state GSetState[E]) *GSet[E] {
	s := state.clone()
	s.Owner = owner
	return &GSet[E]{owner: owner, cell: NewCell(s)}
}

// Add inserts e into the set. Once added, e is never removed.
func (s *GSet[E]) Add(e E) {
	_ = s.cell.Update(func(st GSetState[E]) (GSetState[E], error) {
		next := st.clone()
		next.Added[e] = struct{}{}
		return next, nil
	})
}

// Has reports whether e is in the set.
func (s *GSet[E]) Has(e E) bool {
	_, ok := s.cell.Get().Added[e]
	return ok
}

// Values returns every element currently in the set, in no particular
// order.
func (s *GSet[E]) Values() []E {
	added := s.cell.Get().Added
	out := make([]E, 0, len(added))
	for e := range added {
		out = append(out, e)
	}
	return out
}

// Size returns the number of elements in the set.
func (s *GSet[E]) Size() int {
	return len(s.cell.Get().Added)
}

// Query returns an immutable snapshot.
func (s *GSet[E]) Query() GSetState[E] {
	return s.cell.Get().clone()
}

// Merge folds a peer's snapshot in by set union.
func (s *GSet[E]) Merge(other GSetState[E]) {
	_ = s.cell.Update(func(st GSetState[E]) (GSetState[E], error) {
		return GSetState[E]{Owner: s.owner, Added: unionSets(st.Added, other.Added)}, nil
	})
}
