package store

import (
	"fmt"
	"time"
)

// RunConfig holds the configuration of an optimization run, stored with the
// checkpoint so resumes can validate compatibility.
type RunConfig struct {
	Objective          string  `json:"objective"`
	Dimension          int     `json:"dimension"`
	Sigma              float64 `json:"sigma"`
	Lambda             int     `json:"lambda,omitempty"`
	MaxIter            int     `json:"maxIter,omitempty"`
	MaxEvals           int     `json:"maxEvals,omitempty"`
	Seed               int64   `json:"seed"`
	CheckpointInterval int     `json:"checkpointInterval,omitempty"` // checkpoint every N iterations (0 = disabled)
}

// Checkpoint is a saved optimization state that can be resumed later.
//
// Only the best point and the counters are saved; the internal strategy
// state (covariance, evolution paths, step size) is reinitialized on
// resume, seeded at the checkpointed best point. The best cost never gets
// worse across a resume, but the continued run is not a bit-exact
// continuation of the interrupted one.
type Checkpoint struct {
	// RunID is the unique identifier of the optimization run.
	RunID string `json:"runId"`

	// BestX is the best solution found so far.
	BestX []float64 `json:"bestX"`

	// BestF is the objective value achieved by BestX.
	BestF float64 `json:"bestF"`

	// InitialF is the objective value at the starting point, kept for
	// improvement tracking.
	InitialF float64 `json:"initialF"`

	// Iteration is the iteration count when this checkpoint was created.
	Iteration int `json:"iteration"`

	// Evaluations is the objective evaluation count at checkpoint time.
	Evaluations int `json:"evaluations"`

	// Timestamp records when this checkpoint was created.
	Timestamp time.Time `json:"timestamp"`

	// Config holds the run configuration, used for validation on resume.
	Config RunConfig `json:"config"`
}

// CheckpointInfo contains checkpoint metadata without the parameter data,
// for efficient listing.
type CheckpointInfo struct {
	RunID       string    `json:"runId"`
	BestF       float64   `json:"bestF"`
	Iteration   int       `json:"iteration"`
	Evaluations int       `json:"evaluations"`
	Timestamp   time.Time `json:"timestamp"`
	Objective   string    `json:"objective"`
	Dimension   int       `json:"dimension"`
}

// NewCheckpoint creates a checkpoint from run state.
func NewCheckpoint(runID string, bestX []float64, bestF, initialF float64, iteration, evaluations int, config RunConfig) *Checkpoint {
	return &Checkpoint{
		RunID:       runID,
		BestX:       bestX,
		BestF:       bestF,
		InitialF:    initialF,
		Iteration:   iteration,
		Evaluations: evaluations,
		Timestamp:   time.Now(),
		Config:      config,
	}
}

// ToInfo converts a full Checkpoint to its metadata.
func (c *Checkpoint) ToInfo() CheckpointInfo {
	return CheckpointInfo{
		RunID:       c.RunID,
		BestF:       c.BestF,
		Iteration:   c.Iteration,
		Evaluations: c.Evaluations,
		Timestamp:   c.Timestamp,
		Objective:   c.Config.Objective,
		Dimension:   c.Config.Dimension,
	}
}

// Validate checks that the checkpoint carries consistent data.
func (c *Checkpoint) Validate() error {
	if c.RunID == "" {
		return &ValidationError{Field: "RunID", Reason: "cannot be empty"}
	}
	if len(c.BestX) == 0 {
		return &ValidationError{Field: "BestX", Reason: "cannot be empty"}
	}
	if c.Iteration < 0 {
		return &ValidationError{Field: "Iteration", Reason: "cannot be negative"}
	}
	if c.Evaluations < 0 {
		return &ValidationError{Field: "Evaluations", Reason: "cannot be negative"}
	}
	if c.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if c.Config.Objective == "" {
		return &ValidationError{Field: "Config.Objective", Reason: "cannot be empty"}
	}
	if c.Config.Dimension <= 0 {
		return &ValidationError{Field: "Config.Dimension", Reason: "must be positive"}
	}
	if c.Config.Sigma <= 0 {
		return &ValidationError{Field: "Config.Sigma", Reason: "must be positive"}
	}
	if len(c.BestX) != c.Config.Dimension {
		return &ValidationError{
			Field:  "BestX",
			Reason: fmt.Sprintf("length mismatch: got %d values for dimension %d", len(c.BestX), c.Config.Dimension),
		}
	}
	return nil
}

// ValidationError represents a checkpoint validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// IsCompatible checks whether this checkpoint can be resumed with the given
// config.
func (c *Checkpoint) IsCompatible(config RunConfig) error {
	if c.Config.Objective != config.Objective {
		return &CompatibilityError{
			Field:    "Objective",
			Expected: c.Config.Objective,
			Actual:   config.Objective,
		}
	}
	if c.Config.Dimension != config.Dimension {
		return &CompatibilityError{
			Field:    "Dimension",
			Expected: fmt.Sprintf("%d", c.Config.Dimension),
			Actual:   fmt.Sprintf("%d", config.Dimension),
		}
	}
	return nil
}

// CompatibilityError represents a checkpoint compatibility error.
type CompatibilityError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *CompatibilityError) Error() string {
	return "compatibility error: " + e.Field + " mismatch (expected " + e.Expected + ", got " + e.Actual + ")"
}
