package crdt_test

import (
	"testing"

	"github.com/Polqt/crdtkit/crdt"
	"github.com/stretchr/testify/require"
)

func TestORSetAddHasRemove(t *testing.T) {
	p := crdt.NewORSet[string]("P")
	p.Add("urgent")
	require.True(t, p.Has("urgent"))

	p.Remove("urgent")
	require.False(t, p.Has("urgent"))
}

func TestORSetTagsAreUnique(t *testing.T) {
	p := crdt.NewORSet[string]("P")
	t1 := p.Add("x")
	p.Remove("x")
	t2 := p.Add("x")

	require.NotEqual(t, t1, t2)
}

func TestORSetAddWinsOverConcurrentRemove(t *testing.T) {
	p := crdt.NewORSet[string]("P")
	q := crdt.NewORSet[string]("Q")

	p.Add("shared")
	// Q never observed P's add, so Q's remove of "shared" only
	// drops tags Q itself has seen (none).
	q.Remove("shared")

	p.Merge(q.Query())
	q.Merge(p.Query())

	require.True(t, p.Has("shared"), "add-wins: a concurrent remove that never observed the add cannot suppress it")
	require.True(t, q.Has("shared"))
}

func TestORSetRemoveAfterObservedAddConverges(t *testing.T) {
	p := crdt.NewORSet[string]("P")
	p.Add("x")

	q := crdt.NewORSet[string]("Q")
	q.Merge(p.Query())
	q.Remove("x")

	p.Merge(q.Query())

	require.False(t, p.Has("x"))
	require.False(t, q.Has("x"))
}

func TestORSetMergeCommutative(t *testing.T) {
	p := crdt.NewORSet[string]("P")
	p.Add("a")
	q := crdt.NewORSet[string]("Q")
	q.Add("b")

	left := crdt.NewORSet[string]("P")
	left.Add("a")
	left.Merge(q.Query())

	right := crdt.NewORSet[string]("Q")
	right.Add("b")
	right.Merge(p.Query())

	require.ElementsMatch(t, left.Values(), right.Values())
}
