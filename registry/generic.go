package registry

import (
	"context"

	"github.com/Polqt/crdtkit/crdt"
	"github.com/Polqt/crdtkit/store"
)

// Go methods cannot introduce their own type parameters, so the
// persistence-attached factories for every generic CRDT variant are
// package-level functions that take *Registry as their first argument
// rather than Registry methods — ORSet[string](reg, owner, "tags"),
// not reg.ORSet[string](...).

// GSet returns a plain, unpersisted G-Set.
func GSet[E comparable](owner crdt.ReplicaID) *crdt.GSet[E] {
	return crdt.NewGSet[E](owner)
}

// WithGSet hydrates a G-Set named name from r's backend and arranges for
// it to be saved on CloseAll.
func WithGSet[E comparable](ctx context.Context, r *Registry, owner crdt.ReplicaID, name string) (*crdt.GSet[E], error) {
	key := replicaKey("gset", name, owner)
	ts := store.NewTypedStore[crdt.GSetState[E]](r.backend, jsonSchema[crdt.GSetState[E]]{})

	state, ok, err := ts.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	var s *crdt.GSet[E]
	if ok {
		s = crdt.NewGSetFromState(owner, state)
	} else {
		s = crdt.NewGSet[E](owner)
	}
	r.track(func(ctx context.Context) error { return ts.Save(ctx, key, s.Query()) })
	return s, nil
}

// TwoPSet returns a plain, unpersisted 2P-Set.
func TwoPSet[E comparable](owner crdt.ReplicaID) *crdt.TwoPSet[E] {
	return crdt.NewTwoPSet[E](owner)
}

// WithTwoPSet hydrates a 2P-Set named name from r's backend.
func WithTwoPSet[E comparable](ctx context.Context, r *Registry, owner crdt.ReplicaID, name string) (*crdt.TwoPSet[E], error) {
	key := replicaKey("twopset", name, owner)
	ts := store.NewTypedStore[crdt.TwoPSetState[E]](r.backend, jsonSchema[crdt.TwoPSetState[E]]{})

	state, ok, err := ts.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	var s *crdt.TwoPSet[E]
	if ok {
		s = crdt.NewTwoPSetFromState(owner, state)
	} else {
		s = crdt.NewTwoPSet[E](owner)
	}
	r.track(func(ctx context.Context) error { return ts.Save(ctx, key, s.Query()) })
	return s, nil
}

// ORSet returns a plain, unpersisted OR-Set.
func ORSet[E comparable](owner crdt.ReplicaID) *crdt.ORSet[E] {
	return crdt.NewORSet[E](owner)
}

// WithORSet hydrates an OR-Set named name from r's backend.
func WithORSet[E comparable](ctx context.Context, r *Registry, owner crdt.ReplicaID, name string) (*crdt.ORSet[E], error) {
	key := replicaKey("orset", name, owner)
	ts := store.NewTypedStore[crdt.ORSetState[E]](r.backend, jsonSchema[crdt.ORSetState[E]]{})

	state, ok, err := ts.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	var s *crdt.ORSet[E]
	if ok {
		s = crdt.NewORSetFromState(owner, state)
	} else {
		s = crdt.NewORSet[E](owner)
	}
	r.track(func(ctx context.Context) error { return ts.Save(ctx, key, s.Query()) })
	return s, nil
}

// LWWRegister returns a plain, unpersisted LWW-Register.
func LWWRegister[T any](owner crdt.ReplicaID) *crdt.LWWRegister[T] {
	return crdt.NewLWWRegister[T](owner)
}

// WithLWWRegister hydrates an LWW-Register named name from r's backend.
func WithLWWRegister[T any](ctx context.Context, r *Registry, owner crdt.ReplicaID, name string) (*crdt.LWWRegister[T], error) {
	key := replicaKey("lwwregister", name, owner)
	ts := store.NewTypedStore[crdt.LWWRegisterState[T]](r.backend, jsonSchema[crdt.LWWRegisterState[T]]{})

	state, ok, err := ts.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	var reg *crdt.LWWRegister[T]
	if ok {
		reg = crdt.NewLWWRegisterFromState(owner, state)
	} else {
		reg = crdt.NewLWWRegister[T](owner)
	}
	r.track(func(ctx context.Context) error { return ts.Save(ctx, key, reg.Query()) })
	return reg, nil
}

// MVRegister returns a plain, unpersisted MV-Register.
func MVRegister[E comparable](owner crdt.ReplicaID) *crdt.MVRegister[E] {
	return crdt.NewMVRegister[E](owner)
}

// WithMVRegister hydrates an MV-Register named name from r's backend.
func WithMVRegister[E comparable](ctx context.Context, r *Registry, owner crdt.ReplicaID, name string) (*crdt.MVRegister[E], error) {
	key := replicaKey("mvregister", name, owner)
	ts := store.NewTypedStore[crdt.MVRegisterState[E]](r.backend, jsonSchema[crdt.MVRegisterState[E]]{})

	state, ok, err := ts.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	var reg *crdt.MVRegister[E]
	if ok {
		reg = crdt.NewMVRegisterFromState(owner, state)
	} else {
		reg = crdt.NewMVRegister[E](owner)
	}
	r.track(func(ctx context.Context) error { return ts.Save(ctx, key, reg.Query()) })
	return reg, nil
}

// lwwMapPersisted bundles an LWW-Map together with the *crdt.Clock it
// shares, since both need to be hydrated and saved together: the map's
// entries reference clock ticks the shared clock must also reflect.
type lwwMapPersisted[K comparable, V any] struct {
	Clock crdt.VectorClockState
	Map   crdt.LWWMapState[K, V]
}

// LWWMap returns a plain, unpersisted LWW-Map sharing clock.
func LWWMap[K comparable, V any](owner crdt.ReplicaID, clock *crdt.Clock) *crdt.LWWMap[K, V] {
	return crdt.NewLWWMap[K, V](owner, clock)
}

// WithLWWMap hydrates an LWW-Map (and its shared clock) named name from
// r's backend.
func WithLWWMap[K comparable, V any](ctx context.Context, r *Registry, owner crdt.ReplicaID, name string) (*crdt.LWWMap[K, V], *crdt.Clock, error) {
	key := replicaKey("lwwmap", name, owner)
	ts := store.NewTypedStore[lwwMapPersisted[K, V]](r.backend, jsonSchema[lwwMapPersisted[K, V]]{})

	persisted, ok, err := ts.Load(ctx, key)
	if err != nil {
		return nil, nil, err
	}

	var clock *crdt.Clock
	var m *crdt.LWWMap[K, V]
	if ok {
		clock = crdt.NewClockFromState(owner, persisted.Clock)
		m = crdt.NewLWWMapFromState(owner, clock, persisted.Map)
	} else {
		clock = crdt.NewClock(owner)
		m = crdt.NewLWWMap[K, V](owner, clock)
	}

	r.track(func(ctx context.Context) error {
		return ts.Save(ctx, key, lwwMapPersisted[K, V]{Clock: clock.Query(), Map: m.Query()})
	})
	return m, clock, nil
}
