package crdt_test

import (
	"testing"

	"github.com/Polqt/crdtkit/crdt"
	"github.com/stretchr/testify/require"
)

// TestScenarioS1 — three G-Counters with ReplicaIds "A","B","C"; increments
// 10/20/30 respectively; pairwise merges in any order converge to 60.
func TestScenarioS1(t *testing.T) {
	a := crdt.NewGCounter("A")
	b := crdt.NewGCounter("B")
	c := crdt.NewGCounter("C")

	require.NoError(t, a.Increment(10))
	require.NoError(t, b.Increment(20))
	require.NoError(t, c.Increment(30))

	a.Merge(b.Query())
	b.Merge(c.Query())
	c.Merge(a.Query())
	a.Merge(c.Query())
	b.Merge(a.Query())
	c.Merge(b.Query())

	require.EqualValues(t, 60, a.Value())
	require.EqualValues(t, 60, b.Value())
	require.EqualValues(t, 60, c.Value())
}

// TestScenarioS2 — two PN-Counters "X","Y": X does +100,-25; Y does +40,-10;
// mutual merge converges to 105.
func TestScenarioS2(t *testing.T) {
	x := crdt.NewPNCounter("X")
	y := crdt.NewPNCounter("Y")

	require.NoError(t, x.Increment(100))
	require.NoError(t, x.Decrement(25))
	require.NoError(t, y.Increment(40))
	require.NoError(t, y.Decrement(10))

	x.Merge(y.Query())
	y.Merge(x.Query())

	require.EqualValues(t, 105, x.Value())
	require.EqualValues(t, 105, y.Value())
}

// TestScenarioS3 — two OR-Sets "P","Q": P adds "a"; merge P→Q; Q removes
// "a"; P adds "a" concurrently; mutual merge ⇒ has("a") = true on both.
func TestScenarioS3(t *testing.T) {
	p := crdt.NewORSet[string]("P")
	q := crdt.NewORSet[string]("Q")

	p.Add("a")
	q.Merge(p.Query())
	q.Remove("a")
	p.Add("a") // concurrent with Q's remove: a fresh tag Q has not observed

	p.Merge(q.Query())
	q.Merge(p.Query())

	require.True(t, p.Has("a"))
	require.True(t, q.Has("a"))
}

// TestScenarioS4 — two 2P-Sets "M","N": M adds "x","y"; N adds "y","z",
// removes "y"; mutual merge ⇒ visible = {"x","z"} on both.
func TestScenarioS4(t *testing.T) {
	m := crdt.NewTwoPSet[string]("M")
	n := crdt.NewTwoPSet[string]("N")

	m.Add("x")
	m.Add("y")
	n.Add("y")
	n.Add("z")
	n.Remove("y")

	m.Merge(n.Query())
	n.Merge(m.Query())

	require.ElementsMatch(t, []string{"x", "z"}, m.Values())
	require.ElementsMatch(t, []string{"x", "z"}, n.Values())
}

// TestScenarioS5 — two LWW-Registers "r1","r2" both starting empty;
// r1.set("A"); merge r1→r2; r2.set("B"); merge r2→r1 ⇒ both read Some("B").
func TestScenarioS5(t *testing.T) {
	r1 := crdt.NewLWWRegister[string]("r1")
	r2 := crdt.NewLWWRegister[string]("r2")

	r1.Set("A")
	r2.Merge(r1.Query())
	r2.Set("B")
	r1.Merge(r2.Query())

	v1, ok1 := r1.Get()
	v2, ok2 := r2.Get()
	require.True(t, ok1)
	require.True(t, ok2)
	require.Equal(t, "B", v1)
	require.Equal(t, "B", v2)
}

// TestScenarioS6 — two MV-Registers "a","b": a.set("x"); b.set("y")
// (concurrent); merge both ways; b.set("z") after observing merged state;
// merge b→a ⇒ both see exactly {"z"}.
func TestScenarioS6(t *testing.T) {
	a := crdt.NewMVRegister[string]("a")
	b := crdt.NewMVRegister[string]("b")

	a.Set("x")
	b.Set("y")

	a.Merge(b.Query())
	b.Merge(a.Query())
	require.ElementsMatch(t, []string{"x", "y"}, a.Get())
	require.ElementsMatch(t, []string{"x", "y"}, b.Get())

	b.Set("z") // observed both x and y, so z dominates them both

	a.Merge(b.Query())

	require.Equal(t, []string{"z"}, a.Get())
	require.Equal(t, []string{"z"}, b.Get())
}

// TestScenarioLWWMapConcurrentSetVsDelete — concurrent set(k,v1) on a and
// delete(k) on b with b>a ⇒ both reach has(k)=false.
func TestScenarioLWWMapConcurrentSetVsDelete(t *testing.T) {
	clockA := crdt.NewClock("a")
	mapA := crdt.NewLWWMap[string, string]("a", clockA)
	clockB := crdt.NewClock("b")
	mapB := crdt.NewLWWMap[string, string]("b", clockB)

	require.NoError(t, mapA.Set("k", "v1"))
	require.NoError(t, mapB.Delete("k"))

	mapA.Merge(mapB.Query())
	mapB.Merge(mapA.Query())

	require.False(t, mapA.Has("k"), `"b" sorts after "a" so its concurrent delete wins the tie-break`)
	require.False(t, mapB.Has("k"))
}
