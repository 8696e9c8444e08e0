// Package store implements the persistence adapter: a backend-agnostic
// byte store, a typed view over it derived from a schema, and the
// in-memory backend every deployment of this library can rely on.
package store

import (
	"context"

	"github.com/pkg/errors"
)

// LoadError wraps a backend failure encountered while loading a replica's
// state.
type LoadError struct {
	ReplicaID string
	Cause     error
}

func (e *LoadError) Error() string {
	return errors.Wrapf(e.Cause, "load state for replica %q", e.ReplicaID).Error()
}

func (e *LoadError) Unwrap() error { return e.Cause }

// SaveError wraps a backend failure encountered while saving a replica's
// state.
type SaveError struct {
	ReplicaID string
	Cause     error
}

func (e *SaveError) Error() string {
	return errors.Wrapf(e.Cause, "save state for replica %q", e.ReplicaID).Error()
}

func (e *SaveError) Unwrap() error { return e.Cause }

// DeleteError wraps a backend failure encountered while deleting a
// replica's state.
type DeleteError struct {
	ReplicaID string
	Cause     error
}

func (e *DeleteError) Error() string {
	return errors.Wrapf(e.Cause, "delete state for replica %q", e.ReplicaID).Error()
}

func (e *DeleteError) Unwrap() error { return e.Cause }

// SchemaError wraps a Schema encode/decode failure. It is returned to the
// caller as an ordinary error, the same as LoadError/SaveError/DeleteError,
// since a state that cannot be (de)serialized cannot be used either way.
type SchemaError struct {
	ReplicaID string
	Cause     error
}

func (e *SchemaError) Error() string {
	return errors.Wrapf(e.Cause, "encode/decode state for replica %q", e.ReplicaID).Error()
}

func (e *SchemaError) Unwrap() error { return e.Cause }

// Backend is the backend-agnostic base store: every persistence backend
// exposes only opaque bytes keyed by a replica id. Typed access is layered
// on top by TypedStore.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Schema encodes and decodes a specific CRDT state type to and from the
// bytes a Backend stores. Package registry supplies one generic JSON
// schema (schema.go) and instantiates it for each CRDT state type it
// persists.
type Schema[S any] interface {
	Encode(state S) ([]byte, error)
	Decode(data []byte) (S, error)
}

// TypedStore is the typed view over a Backend: load/save/delete a
// specific CRDT state type by replica id, with the schema's
// encode/decode failures surfaced as SchemaError and the backend's
// failures surfaced as Load/Save/DeleteError.
type TypedStore[S any] struct {
	backend Backend
	schema  Schema[S]
}

// NewTypedStore builds a typed store over backend using schema.
func NewTypedStore[S any](backend Backend, schema Schema[S]) *TypedStore[S] {
	return &TypedStore[S]{backend: backend, schema: schema}
}

// Load returns the persisted state for replicaID, or ok == false if none
// exists yet (a brand-new replica, for which the caller should start
// from an empty state).
func (t *TypedStore[S]) Load(ctx context.Context, replicaID string) (state S, ok bool, err error) {
	raw, found, err := t.backend.Load(ctx, replicaID)
	if err != nil {
		return state, false, &LoadError{ReplicaID: replicaID, Cause: err}
	}
	if !found {
		return state, false, nil
	}
	state, err = t.schema.Decode(raw)
	if err != nil {
		return state, false, &SchemaError{ReplicaID: replicaID, Cause: err}
	}
	return state, true, nil
}

// Save persists state under replicaID.
func (t *TypedStore[S]) Save(ctx context.Context, replicaID string, state S) error {
	raw, err := t.schema.Encode(state)
	if err != nil {
		return &SchemaError{ReplicaID: replicaID, Cause: err}
	}
	if err := t.backend.Save(ctx, replicaID, raw); err != nil {
		return &SaveError{ReplicaID: replicaID, Cause: err}
	}
	return nil
}

// Delete removes replicaID's persisted state, if any.
func (t *TypedStore[S]) Delete(ctx context.Context, replicaID string) error {
	if err := t.backend.Delete(ctx, replicaID); err != nil {
		return &DeleteError{ReplicaID: replicaID, Cause: err}
	}
	return nil
}
