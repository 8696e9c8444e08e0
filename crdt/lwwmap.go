package crdt

import "golang.org/x/exp/maps"

// LWWEntry is one slot of an LWW-Map: an optional value (absent means
// tombstoned — delete never shrinks the key set, it only clears the
// value), the clock of the write that produced it, and the writer that
// produced it, used for the same concurrent-write tie-break LWWRegister
// uses.
type LWWEntry[V any] struct {
	Value  Optional[V]
	Clock  VectorClockState
	Writer ReplicaID
}

func (e LWWEntry[V]) clone() LWWEntry[V] {
	e.Clock = e.Clock.clone()
	return e
}

// LWWMapState is the immutable snapshot of an LWW-Map.
type LWWMapState[K comparable, V any] struct {
	Owner   ReplicaID
	Entries map[K]LWWEntry[V]
}

func (s LWWMapState[K, V]) clone() LWWMapState[K, V] {
	out := make(map[K]LWWEntry[V], len(s.Entries))
	for k, e := range s.Entries {
		out[k] = e.clone()
	}
	return LWWMapState[K, V]{Owner: s.Owner, Entries: out}
}

// LWWMap is a map of LWW-Registers keyed by K: each key's value
// independently converges by the same last-write-wins rule LWWRegister
// uses, and a deleted key's entry is retained as a tombstone rather than
// removed, so a concurrent set on another replica is never lost to a
// delete that simply hasn't been observed yet.
//
// LWWMap is constructed with a shared *Clock, injected rather than owned
// outright: Set and Delete advance that clock and write the map's entry
// in one Transact call, so a caller juggling several LWWMaps that share
// one *Clock never observes a half-applied write even under concurrent
// calls from other goroutines.
type LWWMap[K comparable, V any] struct {
	owner ReplicaID
	clock *Clock
	cell  *Cell[LWWMapState[K, V]]
}

// NewLWWMap creates an empty LWW-Map owned by owner, advancing clock on
// every Set and Delete.
func NewLWWMap[K comparable, V any](owner ReplicaID, clock *Clock) *LWWMap[K, V] {
	return &LWWMap[K, V]{
		owner: owner,
		clock: clock,
		cell:  NewCell(LWWMapState[K, V]{Owner: owner, Entries: map[K]LWWEntry[V]{}}),
	}
}

// NewLWWMapFromState rehydrates an LWW-Map from a persisted snapshot.
func NewLWWMapFromState[K comparable, V any](owner ReplicaID, clock *Clock, state LWWMapState[K, V]) *LWWMap[K, V] {
	s := state.clone()
	s.Owner = owner
	return &LWWMap[K, V]{owner: owner, clock: clock, cell: NewCell(s)}
}

// Set writes key=value, timestamped with the shared clock's next tick.
func (m *LWWMap[K, V]) Set(key K, value V) error {
	return m.write(key, Some(value))
}

// Delete tombstones key: the key remains present in Keys' internal
// bookkeeping but Get reports it absent and Has reports false, matching
// the semantics LWWMap.Merge needs to resolve a concurrent set-vs-delete
// the same way LWWRegister resolves a concurrent set-vs-set.
func (m *LWWMap[K, V]) Delete(key K) error {
	return m.write(key, None[V]())
}

func (m *LWWMap[K, V]) write(key K, value Optional[V]) error {
	return Transact([]any{Participant(m.clock.Cell()), Participant(m.cell)}, func(values []any) ([]any, error) {
		clockState := values[0].(VectorClockState)
		mapState := values[1].(LWWMapState[K, V])

		nextClock := incrementClock(clockState, m.owner)

		entries := maps.Clone(mapState.Entries)
		entries[key] = LWWEntry[V]{Value: value, Clock: nextClock, Writer: m.owner}

		return []any{nextClock, LWWMapState[K, V]{Owner: m.owner, Entries: entries}}, nil
	})
}

// Get returns the value at key and whether it is present (false both when
// the key was never set and when it is tombstoned).
func (m *LWWMap[K, V]) Get(key K) (V, bool) {
	entry, ok := m.cell.Get().Entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	return entry.Value.Get()
}

// Has reports whether key currently holds a live (non-tombstoned) value.
func (m *LWWMap[K, V]) Has(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// Keys returns every key with a currently live value. Tombstoned keys are
// excluded, matching Get/Has.
func (m *LWWMap[K, V]) Keys() []K {
	entries := m.cell.Get().Entries
	out := make([]K, 0, len(entries))
	for k, e := range entries {
		if e.Value.Present {
			out = append(out, k)
		}
	}
	return out
}

// Size returns the number of keys with a currently live value.
func (m *LWWMap[K, V]) Size() int {
	return len(m.Keys())
}

// Query returns an immutable snapshot.
func (m *LWWMap[K, V]) Query() LWWMapState[K, V] {
	return m.cell.Get().clone()
}

// Merge folds a peer's snapshot in key by key, applying the same
// happened-before / concurrent-tie-break rule LWWRegister.Merge uses to
// each key independently, and advances the shared clock to the
// component-wise maximum of both sides.
func (m *LWWMap[K, V]) Merge(other LWWMapState[K, V]) {
	_ = Transact([]any{Participant(m.clock.Cell()), Participant(m.cell)}, func(values []any) ([]any, error) {
		clockState := values[0].(VectorClockState)
		mapState := values[1].(LWWMapState[K, V])

		merged := maps.Clone(mapState.Entries)
		for k, incoming := range other.Entries {
			current, ok := merged[k]
			if !ok || lwwWins(current.Clock, incoming.Clock, current.Writer, incoming.Writer) {
				merged[k] = incoming
			}
		}

		nextClockCounters := mergeClockCounters(clockState.Counters, other.mergedEntryCounters())
		nextClock := VectorClockState{Owner: m.owner, Counters: nextClockCounters}

		return []any{nextClock, LWWMapState[K, V]{Owner: m.owner, Entries: merged}}, nil
	})
}

// mergedEntryCounters folds every entry's clock into one counters map, so
// LWWMap.Merge can advance the shared clock past everything the incoming
// snapshot observed without needing its own separate clock field.
func (s LWWMapState[K, V]) mergedEntryCounters() map[ReplicaID]uint64 {
	counters := map[ReplicaID]uint64{}
	for _, e := range s.Entries {
		counters = mergeClockCounters(counters, e.Clock.Counters)
	}
	return counters
}
