package store_test

import (
	"context"
	"testing"

	"github.com/Polqt/crdtkit/store"
	"github.com/stretchr/testify/require"
)

type counterState struct {
	Value int
}

type counterSchema struct{}

func (counterSchema) Encode(s counterState) ([]byte, error) {
	return []byte{byte(s.Value)}, nil
}

func (counterSchema) Decode(data []byte) (counterState, error) {
	if len(data) == 0 {
		return counterState{}, nil
	}
	return counterState{Value: int(data[0])}, nil
}

func TestTypedStoreLoadMissingReturnsNotOK(t *testing.T) {
	ts := store.NewTypedStore[counterState](store.NewMemoryBackend(), counterSchema{})

	_, ok, err := ts.Load(context.Background(), "r1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTypedStoreSaveThenLoadRoundTrips(t *testing.T) {
	ts := store.NewTypedStore[counterState](store.NewMemoryBackend(), counterSchema{})

	require.NoError(t, ts.Save(context.Background(), "r1", counterState{Value: 7}))

	got, ok, err := ts.Load(context.Background(), "r1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 7, got.Value)
}

func TestTypedStoreDelete(t *testing.T) {
	ts := store.NewTypedStore[counterState](store.NewMemoryBackend(), counterSchema{})

	require.NoError(t, ts.Save(context.Background(), "r1", counterState{Value: 1}))
	require.NoError(t, ts.Delete(context.Background(), "r1"))

	_, ok, err := ts.Load(context.Background(), "r1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryBackendIsolatesKeys(t *testing.T) {
	b := store.NewMemoryBackend()
	require.NoError(t, b.Save(context.Background(), "a", []byte("1")))
	require.NoError(t, b.Save(context.Background(), "b", []byte("2")))

	va, ok, err := b.Load(context.Background(), "a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("1"), va)

	vb, ok, err := b.Load(context.Background(), "b")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("2"), vb)
}

func TestMemoryBackendLoadReturnsIndependentCopy(t *testing.T) {
	b := store.NewMemoryBackend()
	original := []byte("hello")
	require.NoError(t, b.Save(context.Background(), "k", original))

	loaded, ok, err := b.Load(context.Background(), "k")
	require.NoError(t, err)
	require.True(t, ok)

	loaded[0] = 'X'
	reloaded, _, _ := b.Load(context.Background(), "k")
	require.Equal(t, []byte("hello"), reloaded, "mutating a loaded slice must not affect stored state")
}
