// Package registry wires CRDT replicas to a persistence backend: for
// each variant in package crdt it offers a plain constructor and a
// persistence-attached factory that hydrates from storage on creation
// and flushes back to storage on teardown.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Polqt/crdtkit/crdt"
	"github.com/Polqt/crdtkit/store"
	"golang.org/x/sync/errgroup"
)

func replicaKey(kind, name string, owner crdt.ReplicaID) string {
	return fmt.Sprintf("%s/%s/%s", kind, name, owner)
}

// Registry is a scope: every component it creates with persistence
// attached is tracked, so a single CloseAll call tears the whole scope
// down per the registry's lifecycle contract.
type Registry struct {
	backend store.Backend
	logger  *slog.Logger

	mu      sync.Mutex
	closers []func(context.Context) error
}

// NewRegistry creates a registry backed by backend, logging teardown
// failures (and nothing else) through logger.
func NewRegistry(backend store.Backend, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{backend: backend, logger: logger}
}

func (r *Registry) track(closer func(context.Context) error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closers = append(r.closers, closer)
}

// CloseAll saves the current state of every component this registry
// created, concurrently. A save failure during teardown is logged and
// swallowed rather than returned, so one misbehaving backend write
// cannot mask the others or the caller's primary exit path. CloseAll
// therefore always returns nil.
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	closers := append([]func(context.Context) error{}, r.closers...)
	r.closers = nil
	r.mu.Unlock()

	ctx := context.Background()
	g, gctx := errgroup.WithContext(ctx)
	for _, close := range closers {
		close := close
		g.Go(func() error {
			if err := close(gctx); err != nil {
				r.logger.Error("flush replica state on close", "err", err)
			}
			return nil
		})
	}
	return g.Wait()
}

// GCounter returns a plain, unpersisted G-Counter. name scopes it within
// this registry (two calls with the same owner and name before
// persistence is involved are independent instances; name only matters
// once WithGCounter attaches storage).
func (r *Registry) GCounter(owner crdt.ReplicaID) *crdt.GCounter {
	return crdt.NewGCounter(owner)
}

// PNCounter returns a plain, unpersisted PN-Counter.
func (r *Registry) PNCounter(owner crdt.ReplicaID) *crdt.PNCounter {
	return crdt.NewPNCounter(owner)
}

// WithGCounter hydrates a G-Counter named name from backend (an empty
// counter if nothing was persisted yet), and arranges for its state to be
// saved back on CloseAll.
func (r *Registry) WithGCounter(ctx context.Context, owner crdt.ReplicaID, name string) (*crdt.GCounter, error) {
	key := replicaKey("gcounter", name, owner)
	ts := store.NewTypedStore[crdt.CounterState](r.backend, jsonSchema[crdt.CounterState]{})

	state, ok, err := ts.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	var c *crdt.GCounter
	if ok {
		c = crdt.NewGCounterFromState(owner, state)
	} else {
		c = crdt.NewGCounter(owner)
	}

	r.track(func(ctx context.Context) error { return ts.Save(ctx, key, c.Query()) })
	return c, nil
}

// WithPNCounter hydrates a PN-Counter named name from backend and
// arranges for it to be saved on CloseAll.
func (r *Registry) WithPNCounter(ctx context.Context, owner crdt.ReplicaID, name string) (*crdt.PNCounter, error) {
	key := replicaKey("pncounter", name, owner)
	ts := store.NewTypedStore[crdt.CounterState](r.backend, jsonSchema[crdt.CounterState]{})

	state, ok, err := ts.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	var c *crdt.PNCounter
	if ok {
		c = crdt.NewPNCounterFromState(owner, state)
	} else {
		c = crdt.NewPNCounter(owner)
	}

	r.track(func(ctx context.Context) error { return ts.Save(ctx, key, c.Query()) })
	return c, nil
}
