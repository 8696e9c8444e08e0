package crdt

// mergeMaps returns a map whose key set is the union of a and b's keys,
// and whose value at k is combine(a[k], b[k]) — zero value standing in for
// an absent key. combine must be commutative and associative for the
// result to inherit those properties from a and b; every caller in this
// package passes a combine func satisfying that (max, for counters and
// clocks).
func mergeMaps[K comparable, V any](a, b map[K]V, combine func(x, y V) V) map[K]V {
	out := make(map[K]V, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, bv := range b {
		if av, ok := out[k]; ok {
			out[k] = combine(av, bv)
		} else {
			out[k] = bv
		}
	}
	return out
}

// unionSets returns the union of a and b.
func unionSets[E comparable](a, b map[E]struct{}) map[E]struct{} {
	out := make(map[E]struct{}, len(a)+len(b))
	for e := range a {
		out[e] = struct{}{}
	}
	for e := range b {
		out[e] = struct{}{}
	}
	return out
}
