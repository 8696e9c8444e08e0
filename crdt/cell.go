package crdt

import "sync"

// Cell is the transactional container every CRDT type in this package
// builds on: its state lives behind a single mutex, Get is a point-in-time
// read, and Update applies a pure function of the current state to produce
// the next one. A panic raised inside fn (invalidArgument, notSupported)
// is recovered at the transaction boundary and turned into a returned
// error; the cell's state is left untouched, since the swap only happens
// after fn returns successfully. This gives all-or-nothing, serializable
// semantics without requiring full software transactional memory.
type Cell[S any] struct {
	mu    sync.Mutex
	state S
}

// NewCell creates a cell holding initial.
func NewCell[S any](initial S) *Cell[S] {
	return &Cell[S]{state: initial}
}

// Get returns the current state.
func (c *Cell[S]) Get() S {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Update atomically replaces the cell's state with fn(current). If fn
// returns an error, or panics with one of this package's fatal argument
// errors, the cell's state is left exactly as it was.
func (c *Cell[S]) Update(fn func(S) (S, error)) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()

	next, ferr := fn(c.state)
	if ferr != nil {
		return ferr
	}
	c.state = next
	return nil
}

// ─────────────────────────────────────────────────────────────
// Multi-cell transactions
// ─────────────────────────────────────────────────────────────

// txParticipant is the type-erased view of a Cell that Transact needs:
// lock/unlock for ordered mutual exclusion, and get/set for the
// snapshot-compute-commit cycle. Cell[S] implements it for any S.
type txParticipant interface {
	lock()
	unlock()
	current() any
	commit(any)
}

func (c *Cell[S]) lock()        { c.mu.Lock() }
func (c *Cell[S]) unlock()      { c.mu.Unlock() }
func (c *Cell[S]) current() any { return c.state }
func (c *Cell[S]) commit(v any) { c.state = v.(S) }

// Participant erases a *Cell[S] to the common type Transact operates over.
// Callers composing a transaction across cells of different state types
// build the participant slice with Participant(cellA), Participant(cellB).
func Participant[S any](c *Cell[S]) any { return txParticipant(c) }

// Transact locks every participant (in the order given — callers are
// responsible for a consistent global order, e.g. sorted by owning
// ReplicaID, to avoid deadlocking against another concurrent Transact
// call over an overlapping cell set), snapshots their current values,
// runs fn over those values, and commits fn's results only if fn returns
// no error. On failure, no participant's state is touched: the contract
// is identical to Cell.Update, generalized to many cells at once.
func Transact(participants []any, fn func(values []any) ([]any, error)) (err error) {
	parts := make([]txParticipant, len(participants))
	for i, p := range participants {
		parts[i] = p.(txParticipant)
	}

	for _, p := range parts {
		p.lock()
	}
	defer func() {
		for i := len(parts) - 1; i >= 0; i-- {
			parts[i].unlock()
		}
	}()

	cur := make([]any, len(parts))
	for i, p := range parts {
		cur[i] = p.current()
	}

	next, ferr := func() (result []any, rerr error) {
		defer func() {
			if r := recover(); r != nil {
				if e, ok := r.(error); ok {
					rerr = e
					return
				}
				panic(r)
			}
		}()
		return fn(cur)
	}()
	if ferr != nil {
		return ferr
	}

	for i, p := range parts {
		p.commit(next[i])
	}
	return nil
}
