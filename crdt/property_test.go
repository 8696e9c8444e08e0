package crdt_test

import (
	"testing"

	"github.com/Polqt/crdtkit/crdt"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// These tests exercise the universal join-semilattice laws every merge
// operation in this package must satisfy: commutativity (L1),
// associativity (L2), idempotence (L3), and monotonicity of the derived
// value under merge (L4, checked directly on GCounter.Value).

func gcounterFromIncrements(owner crdt.ReplicaID, incs []int) *crdt.GCounter {
	c := crdt.NewGCounter(owner)
	for _, n := range incs {
		_ = c.Increment(int64(n))
	}
	return c
}

func TestGCounterMergeCommutative(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("merge(a,b) == merge(b,a)", prop.ForAll(
		func(incsA, incsB []int) bool {
			a := gcounterFromIncrements("A", incsA)
			b := gcounterFromIncrements("B", incsB)

			left := gcounterFromIncrements("A", incsA)
			left.Merge(b.Query())

			right := gcounterFromIncrements("B", incsB)
			right.Merge(a.Query())

			return left.Value() == right.Value()
		},
		gen.SliceOf(gen.IntRange(0, 10)),
		gen.SliceOf(gen.IntRange(0, 10)),
	))

	properties.TestingRun(t)
}

func TestGCounterMergeAssociative(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("merge(merge(a,b),c) == merge(a,merge(b,c))", prop.ForAll(
		func(incsA, incsB, incsC []int) bool {
			a := gcounterFromIncrements("A", incsA)
			b := gcounterFromIncrements("B", incsB)
			c := gcounterFromIncrements("C", incsC)

			left := gcounterFromIncrements("A", incsA)
			left.Merge(b.Query())
			left.Merge(c.Query())

			bc := gcounterFromIncrements("B", incsB)
			bc.Merge(c.Query())
			right := gcounterFromIncrements("A", incsA)
			right.Merge(bc.Query())

			return left.Value() == right.Value()
		},
		gen.SliceOf(gen.IntRange(0, 10)),
		gen.SliceOf(gen.IntRange(0, 10)),
		gen.SliceOf(gen.IntRange(0, 10)),
	))

	properties.TestingRun(t)
}

func TestGCounterMergeIdempotentProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("merge(a,a) == a", prop.ForAll(
		func(incs []int) bool {
			a := gcounterFromIncrements("A", incs)
			snap := a.Query()
			a.Merge(snap)
			a.Merge(snap)
			return a.Value() == snap.Value()
		},
		gen.SliceOf(gen.IntRange(0, 10)),
	))

	properties.TestingRun(t)
}

func TestGCounterValueMonotoneUnderMerge(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("merge never decreases Value", prop.ForAll(
		func(incsA, incsB []int) bool {
			a := gcounterFromIncrements("A", incsA)
			before := a.Value()
			b := gcounterFromIncrements("B", incsB)
			a.Merge(b.Query())
			return a.Value() >= before
		},
		gen.SliceOf(gen.IntRange(0, 10)),
		gen.SliceOf(gen.IntRange(0, 10)),
	))

	properties.TestingRun(t)
}

func gsetFromValues(owner crdt.ReplicaID, values []string) *crdt.GSet[string] {
	s := crdt.NewGSet[string](owner)
	for _, v := range values {
		s.Add(v)
	}
	return s
}

func TestGSetMergeCommutativeProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("merge(a,b) == merge(b,a)", prop.ForAll(
		func(valuesA, valuesB []string) bool {
			a := gsetFromValues("A", valuesA)
			b := gsetFromValues("B", valuesB)

			left := gsetFromValues("A", valuesA)
			left.Merge(b.Query())

			right := gsetFromValues("B", valuesB)
			right.Merge(a.Query())

			return setsEqual(left.Values(), right.Values())
		},
		gen.SliceOf(gen.AlphaString()),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}

func TestGSetMergeIdempotentProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("merge(a,a) == a", prop.ForAll(
		func(values []string) bool {
			a := gsetFromValues("A", values)
			snap := a.Query()
			before := a.Values()
			a.Merge(snap)
			return setsEqual(before, a.Values())
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}

func setsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, v := range a {
		seen[v]++
	}
	for _, v := range b {
		seen[v]--
	}
	for _, n := range seen {
		if n != 0 {
			return false
		}
	}
	return true
}
