package main

import (
	"log/slog"
	"os"

	"github.com/Polqt/crdtkit/registry"
	"github.com/Polqt/crdtkit/store"
)

// This program is a small, runnable walkthrough of crdtkit: it creates a
// registry over an in-memory store, spins up pairs of plain (unpersisted)
// G-Counter, OR-Set and LWW-Register replicas, drives a few concurrent
// writes against them, merges each pair together, and logs the converged
// result. It is not a server — crdtkit ships no network
// transport or sync protocol; wiring replicas together over the wire is
// left to the caller.
func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	backend := store.NewMemoryBackend()
	reg := registry.NewRegistry(backend, logger)
	defer func() {
		if err := reg.CloseAll(); err != nil {
			logger.Error("close registry", "err", err)
		}
	}()

	demoCounter(logger, reg)
	demoORSet(logger)
	demoLWWRegister(logger)
}

func demoCounter(logger *slog.Logger, reg *registry.Registry) {
	a := reg.GCounter("replica-a")
	b := reg.GCounter("replica-b")

	_ = a.Increment(3)
	_ = b.Increment(5)

	a.Merge(b.Query())
	b.Merge(a.Query())

	logger.Info("gcounter converged", "value", a.Value(), "agree", a.Value() == b.Value())
}

func demoORSet(logger *slog.Logger) {
	p := registry.ORSet[string]("replica-a")
	q := registry.ORSet[string]("replica-b")

	p.Add("urgent")
	q.Add("stale")
	q.Remove("stale")

	p.Merge(q.Query())
	q.Merge(p.Query())

	logger.Info("orset converged", "values", p.Values(), "agree", p.Size() == q.Size())
}

func demoLWWRegister(logger *slog.Logger) {
	r1 := registry.LWWRegister[string]("replica-a")
	r2 := registry.LWWRegister[string]("replica-b")

	r1.Set("draft")
	r2.Set("final")

	r1.Merge(r2.Query())
	r2.Merge(r1.Query())

	v1, _ := r1.Get()
	v2, _ := r2.Get()
	logger.Info("lww register converged", "value", v1, "agree", v1 == v2)
}
