package crdt

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/maps"
)

// Tag uniquely identifies one Add call, globally and across restarts. Its
// string form combines the owning replica, a per-replica monotonic
// counter, the wall-clock time the tag was minted, and a random UUIDv4
// entropy segment, closing the restart-safety gap a counter alone leaves
// open: even if the in-process counter resets to zero on restart, the
// random segment keeps two tags from colliding.
type Tag string

func newTag(owner ReplicaID, counter uint64) Tag {
	return Tag(fmt.Sprintf("%s:%d:%d:%s", owner, counter, time.Now().UnixNano(), uuid.NewString()))
}

// ORSetState is the immutable snapshot of an OR-Set: every observed
// element mapped to the set of add-Tags currently associated with it. An
// element is visible iff its tag set is non-empty.
type ORSetState[E comparable] struct {
	Owner    ReplicaID
	Elements map[E]map[Tag]struct{}
}

func (s ORSetState[E]) clone() ORSetState[E] {
	out := make(map[E]map[Tag]struct{}, len(s.Elements))
	for e, tags := range s.Elements {
		out[e] = maps.Clone(tags)
	}
	return ORSetState[E]{Owner: s.Owner, Elements: out}
}

func (s ORSetState[E]) visible(e E) bool {
	return len(s.Elements[e]) > 0
}

// ORSet is an observed-remove set CRDT: concurrent adds survive a
// concurrent remove of the same element, because Remove only drops the
// add-Tags this replica has actually observed. Remove keeps no tombstones,
// so merging a snapshot that still carries any of the dropped tags makes
// the element visible again.
type ORSet[E comparable] struct {
	owner   ReplicaID
	counter atomic.Uint64
	cell    *Cell[ORSetState[E]]
}

// NewORSet creates an empty OR-Set owned by owner.
func NewORSet[E comparable](owner ReplicaID) *ORSet[E] {
	return &ORSet[E]{
		owner: owner,
		cell:  NewCell(ORSetState[E]{Owner: owner, Elements: map[E]map[Tag]struct{}{}}),
	}
}

// NewORSetFromState rehydrates an OR-Set from a persisted snapshot. The
// local tag counter starts at zero; uniqueness across the restart is
// preserved by the random entropy segment embedded in every new Tag (see
// Tag's doc comment).
func NewORSetFromState[E comparable](owner ReplicaID, state ORSetState[E]) *ORSet[E] {
	s := state.clone()
	s.Owner = owner
	return &ORSet[E]{owner: owner, cell: NewCell(s)}
}

// Add inserts value into the set with a fresh, globally unique tag, and
// returns that tag so callers can gossip it out-of-band if they need
// operation-level visibility (the CRDT's own convergence only needs the
// snapshot returned by Query).
func (s *ORSet[E]) Add(value E) Tag {
	tag := newTag(s.owner, s.counter.Add(1))
	_ = s.cell.Update(func(st ORSetState[E]) (ORSetState[E], error) {
		next := st.clone()
		tags, ok := next.Elements[value]
		if !ok {
			tags = map[Tag]struct{}{}
		} else {
			tags = maps.Clone(tags)
		}
		tags[tag] = struct{}{}
		next.Elements[value] = tags
		return next, nil
	})
	return tag
}

// Remove deletes every tag currently associated with value at this
// replica. A concurrent Add of value at another replica, whose tag this
// replica has not yet observed, survives: add-wins over concurrent remove.
func (s *ORSet[E]) Remove(value E) {
	_ = s.cell.Update(func(st ORSetState[E]) (ORSetState[E], error) {
		next := st.clone()
		delete(next.Elements, value)
		return next, nil
	})
}

// Has reports whether value currently has at least one live tag.
func (s *ORSet[E]) Has(value E) bool {
	return s.cell.Get().visible(value)
}

// Values returns every currently visible element.
func (s *ORSet[E]) Values() []E {
	elements := s.cell.Get().Elements
	out := make([]E, 0, len(elements))
	for e, tags := range elements {
		if len(tags) > 0 {
			out = append(out, e)
		}
	}
	return out
}

// Size returns the number of currently visible elements.
func (s *ORSet[E]) Size() int {
	return len(s.Values())
}

// Query returns an immutable snapshot.
func (s *ORSet[E]) Query() ORSetState[E] {
	return s.cell.Get().clone()
}

// Merge folds a peer's snapshot in: the tag set for each element becomes
// the union of both replicas' tag sets. An element this replica had
// removed is resurrected if the peer's snapshot carries any tag for it,
// including tags this replica observed before removing them.
func (s *ORSet[E]) Merge(other ORSetState[E]) {
	_ = s.cell.Update(func(st ORSetState[E]) (ORSetState[E], error) {
		merged := make(map[E]map[Tag]struct{}, len(st.Elements)+len(other.Elements))
		for e, tags := range st.Elements {
			merged[e] = maps.Clone(tags)
		}
		for e, tags := range other.Elements {
			merged[e] = unionSets(merged[e], tags)
		}
		return ORSetState[E]{Owner: s.owner, Elements: merged}, nil
	})
}
