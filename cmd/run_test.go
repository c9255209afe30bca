package main

import (
	"errors"
	"testing"

	"github.com/gabrielasuchopar/gocma/internal/config"
	"github.com/gabrielasuchopar/gocma/internal/es"
	"github.com/gabrielasuchopar/gocma/internal/objective"
	"github.com/gabrielasuchopar/gocma/internal/opt"
	"github.com/gabrielasuchopar/gocma/internal/store"
)

func TestEs2DriverBudget(t *testing.T) {
	if opts := es2driverBudget(config.Run{}); len(opts) != 0 {
		t.Errorf("zero budgets produced %d options, expected 0", len(opts))
	}
	if opts := es2driverBudget(config.Run{MaxIter: 10}); len(opts) != 1 {
		t.Errorf("MaxIter alone produced %d options, expected 1", len(opts))
	}
	if opts := es2driverBudget(config.Run{MaxIter: 10, MaxEvals: 100}); len(opts) != 2 {
		t.Errorf("both budgets produced %d options, expected 2", len(opts))
	}
}

func TestCheckpointCallbackSavesOnInterval(t *testing.T) {
	st, err := store.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	run := config.Run{
		Objective:       "sphere",
		Dimension:       2,
		Sigma:           0.5,
		Seed:            3,
		CheckpointEvery: 2,
	}
	fn, err := objective.ByName(run.Objective)
	if err != nil {
		t.Fatalf("ByName failed: %v", err)
	}

	strategy, err := es.New([]float64{1, 1}, run.Sigma, es.WithSeed(run.Seed))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	cb := checkpointCallback(st, "test-run", fn([]float64{1, 1}), run)

	_, err = opt.Optimize(strategy, opt.Objective(fn),
		opt.WithMaxIter(5), opt.WithCallbacks(cb))
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	cp, err := st.LoadCheckpoint("test-run")
	if err != nil {
		t.Fatalf("LoadCheckpoint failed: %v", err)
	}
	// Iterations 2 and 4 hit the interval; the last save wins.
	if cp.Iteration != 4 {
		t.Errorf("checkpoint iteration = %d, expected 4", cp.Iteration)
	}
	if err := cp.Validate(); err != nil {
		t.Errorf("saved checkpoint invalid: %v", err)
	}
	if err := cp.IsCompatible(store.RunConfig{Objective: "sphere", Dimension: 2}); err != nil {
		t.Errorf("saved checkpoint incompatible: %v", err)
	}
}

func TestCheckpointCallbackSkipsOffInterval(t *testing.T) {
	st, err := store.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	run := config.Run{
		Objective:       "sphere",
		Dimension:       2,
		Sigma:           0.5,
		CheckpointEvery: 10,
	}
	fn, _ := objective.ByName(run.Objective)

	strategy, err := es.New([]float64{1, 1}, run.Sigma)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	cb := checkpointCallback(st, "short-run", 2.0, run)

	if _, err := opt.Optimize(strategy, opt.Objective(fn),
		opt.WithMaxIter(3), opt.WithCallbacks(cb)); err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	if _, err := st.LoadCheckpoint("short-run"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected no checkpoint before the interval, got %v", err)
	}
}
