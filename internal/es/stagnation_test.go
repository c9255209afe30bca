package es

import (
	"math"
	"testing"
)

func TestStagnationDisabled(t *testing.T) {
	tracker := NewStagnationTracker(StagnationConfig{Enabled: false, Patience: 1})

	for i := 0; i < 10; i++ {
		if tracker.Update(1.0) {
			t.Fatal("disabled tracker reported stagnation")
		}
	}
	if tracker.Stalled() {
		t.Error("disabled tracker reports Stalled")
	}
}

func TestStagnationTriggersAfterPatience(t *testing.T) {
	tracker := NewStagnationTracker(StagnationConfig{
		Enabled:   true,
		Patience:  3,
		Threshold: 1e-6,
	})

	tracker.Update(1.0) // first sample establishes the baseline
	if tracker.Update(1.0) {
		t.Fatal("stalled too early (1)")
	}
	if tracker.Update(1.0) {
		t.Fatal("stalled too early (2)")
	}
	if !tracker.Update(1.0) {
		t.Fatal("expected stagnation after patience exhausted")
	}
	if !tracker.Stalled() {
		t.Error("Stalled should report true after trigger")
	}
}

func TestStagnationResetsOnImprovement(t *testing.T) {
	tracker := NewStagnationTracker(StagnationConfig{
		Enabled:   true,
		Patience:  2,
		Threshold: 1e-3,
	})

	tracker.Update(1.0)
	tracker.Update(1.0)
	if tracker.StaleCount() != 1 {
		t.Fatalf("StaleCount = %d, expected 1", tracker.StaleCount())
	}

	// A significant improvement clears the stale count.
	tracker.Update(0.5)
	if tracker.StaleCount() != 0 {
		t.Errorf("StaleCount = %d after improvement, expected 0", tracker.StaleCount())
	}
	if tracker.BestCost() != 0.5 {
		t.Errorf("BestCost = %f, expected 0.5", tracker.BestCost())
	}
}

func TestStagnationInsignificantImprovementCounts(t *testing.T) {
	tracker := NewStagnationTracker(StagnationConfig{
		Enabled:   true,
		Patience:  2,
		Threshold: 0.1,
	})

	tracker.Update(1.0)
	tracker.Update(0.99) // below the 10% relative threshold
	if tracker.StaleCount() != 1 {
		t.Errorf("StaleCount = %d, expected 1", tracker.StaleCount())
	}
}

func TestStagnationReset(t *testing.T) {
	tracker := NewStagnationTracker(DefaultStagnationConfig())
	tracker.Update(1.0)
	tracker.Update(1.0)

	tracker.Reset()
	if tracker.StaleCount() != 0 {
		t.Errorf("StaleCount = %d after Reset, expected 0", tracker.StaleCount())
	}
	if !math.IsInf(tracker.BestCost(), 1) {
		t.Errorf("BestCost = %f after Reset, expected +Inf", tracker.BestCost())
	}
}
