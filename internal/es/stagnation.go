package es

import (
	"log/slog"
	"math"
)

// StagnationConfig defines parameters for detecting a stalled search.
type StagnationConfig struct {
	// Enabled controls whether stagnation detection is active.
	Enabled bool

	// Patience is the number of iterations with no significant improvement
	// before the stagnation condition triggers.
	Patience int

	// Threshold is the minimum relative improvement required to count as
	// progress: (oldBest - newBest) / |oldBest|.
	Threshold float64
}

// DefaultStagnationConfig returns sensible defaults for stagnation
// detection.
func DefaultStagnationConfig() StagnationConfig {
	return StagnationConfig{
		Enabled:   true,
		Patience:  120,
		Threshold: 1e-9,
	}
}

// StagnationTracker tracks the best-cost history and detects when the
// search has stopped making progress.
type StagnationTracker struct {
	config          StagnationConfig
	bestCost        float64
	lastSignificant float64
	staleCount      int
	seen            int
}

// NewStagnationTracker creates a tracker with the given config.
func NewStagnationTracker(config StagnationConfig) *StagnationTracker {
	return &StagnationTracker{
		config:          config,
		bestCost:        math.Inf(1),
		lastSignificant: math.Inf(1),
	}
}

// Update records a new best-cost value and returns true once the stale
// count exceeds the configured patience.
func (s *StagnationTracker) Update(cost float64) bool {
	if !s.config.Enabled {
		return false
	}

	s.seen++
	if cost < s.bestCost {
		s.bestCost = cost
	}
	if s.seen == 1 {
		s.lastSignificant = cost
		return false
	}

	denom := math.Abs(s.lastSignificant)
	if denom == 0 {
		denom = 1
	}
	relativeImprovement := (s.lastSignificant - cost) / denom

	if relativeImprovement >= s.config.Threshold {
		s.lastSignificant = cost
		s.staleCount = 0
		return false
	}

	s.staleCount++
	if s.staleCount >= s.config.Patience {
		slog.Debug("Stagnation detected",
			"stale_count", s.staleCount,
			"patience", s.config.Patience,
			"best_cost", s.bestCost,
		)
		return true
	}
	return false
}

// Stalled reports whether the stale count has reached the configured
// patience. Unlike Update it does not record anything.
func (s *StagnationTracker) Stalled() bool {
	return s.config.Enabled && s.staleCount >= s.config.Patience
}

// BestCost returns the best cost seen so far.
func (s *StagnationTracker) BestCost() float64 {
	return s.bestCost
}

// StaleCount returns the current number of iterations without significant
// improvement.
func (s *StagnationTracker) StaleCount() int {
	return s.staleCount
}

// Reset clears the tracker's state.
func (s *StagnationTracker) Reset() {
	s.bestCost = math.Inf(1)
	s.lastSignificant = math.Inf(1)
	s.staleCount = 0
	s.seen = 0
}
