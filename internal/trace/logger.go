// Package trace provides the data-logger sink used by the optimizer driver:
// per-iteration data points are kept in memory for display/plotting and can
// additionally be persisted as JSON lines for later analysis.
package trace

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"

	"github.com/gabrielasuchopar/gocma/internal/opt"
)

// SigmaReporter is an optional optimizer capability: optimizers carrying a
// global step size expose it for logging.
type SigmaReporter interface {
	Sigma() float64
}

// Entry is a single logged data point.
type Entry struct {
	// Iteration is the optimizer's iteration count when the point was
	// recorded.
	Iteration int `json:"iteration"`

	// Evaluations is the objective evaluation count so far.
	Evaluations int `json:"evaluations"`

	// BestF is the best objective value so far.
	BestF float64 `json:"bestF"`

	// Sigma is the optimizer's step size, 0 if not reported.
	Sigma float64 `json:"sigma,omitempty"`

	// Timestamp records when this entry was created.
	Timestamp time.Time `json:"timestamp"`
}

// Logger records data points from an optimizer. The zero value is not
// usable; construct with New or NewPersistent.
//
// Logger implements opt.Logger, so the driver invokes Add after the user
// callbacks each iteration and forces one final Add on termination.
type Logger struct {
	modulo  int
	optim   opt.Optimizer
	entries []Entry
	writer  *Writer
}

// New creates an in-memory logger recording every modulo-th iteration.
// modulo 0 disables recording entirely; 1 records every iteration.
func New(modulo int) *Logger {
	return &Logger{modulo: modulo}
}

// NewPersistent creates a logger that additionally appends every recorded
// entry to <baseDir>/runs/<runID>/trace.jsonl.
func NewPersistent(baseDir, runID string, modulo int) (*Logger, error) {
	w, err := NewWriter(baseDir, runID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace writer: %w", err)
	}
	return &Logger{modulo: modulo, writer: w}, nil
}

// Register attaches an optimizer as the implicit subject of future Add
// calls and returns the logger for chaining.
func (l *Logger) Register(o opt.Optimizer) *Logger {
	l.optim = o
	return l
}

// Modulo reports the configured cadence.
func (l *Logger) Modulo() int {
	return l.modulo
}

// Add records one data point from the state of o. A nil o falls back to
// the registered optimizer. modulo follows the opt package conventions:
// opt.ModuloDefault applies the logger's own cadence, opt.ModuloNever
// skips, opt.ModuloForce records unconditionally, and any positive value
// records every modulo-th iteration.
func (l *Logger) Add(o opt.Optimizer, modulo int) error {
	if o == nil {
		o = l.optim
	}
	if o == nil {
		return fmt.Errorf("no optimizer passed and none registered")
	}
	if modulo == opt.ModuloDefault {
		modulo = l.modulo
	}

	res, err := o.Result()
	if err != nil {
		return fmt.Errorf("failed to read optimizer result: %w", err)
	}
	switch {
	case modulo == opt.ModuloNever:
		return nil
	case modulo > 1 && res.Iterations%modulo != 0:
		return nil
	}

	entry := Entry{
		Iteration:   res.Iterations,
		Evaluations: res.Evaluations,
		BestF:       res.BestF,
		Timestamp:   time.Now(),
	}
	if sr, ok := o.(SigmaReporter); ok {
		entry.Sigma = sr.Sigma()
	}
	l.entries = append(l.entries, entry)

	if l.writer != nil {
		if err := l.writer.Write(entry); err != nil {
			return fmt.Errorf("failed to persist trace entry: %w", err)
		}
	}
	return nil
}

// Data exports the logged series keyed by name: "iteration",
// "evaluations", "bestF" and "sigma". The slices are copies.
func (l *Logger) Data() map[string][]float64 {
	data := map[string][]float64{
		"iteration":   make([]float64, len(l.entries)),
		"evaluations": make([]float64, len(l.entries)),
		"bestF":       make([]float64, len(l.entries)),
		"sigma":       make([]float64, len(l.entries)),
	}
	for i, e := range l.entries {
		data["iteration"][i] = float64(e.Iteration)
		data["evaluations"][i] = float64(e.Evaluations)
		data["bestF"][i] = e.BestF
		data["sigma"][i] = e.Sigma
	}
	return data
}

// Len reports the number of recorded entries.
func (l *Logger) Len() int {
	return len(l.entries)
}

// Disp prints the recorded data points as a table.
func (l *Logger) Disp() {
	if len(l.entries) == 0 {
		fmt.Println("no data points logged")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ITER\tEVALS\tBEST F\tSIGMA")
	for _, e := range l.entries {
		fmt.Fprintf(w, "%d\t%d\t%.6e\t%.3e\n", e.Iteration, e.Evaluations, e.BestF, e.Sigma)
	}
	w.Flush()
}

// Plot renders the best-objective history as an ASCII graph.
func (l *Logger) Plot() string {
	if len(l.entries) == 0 {
		return "no data points logged"
	}
	series := make([]float64, len(l.entries))
	for i, e := range l.entries {
		series[i] = e.BestF
	}
	return asciigraph.Plot(series,
		asciigraph.Height(12),
		asciigraph.Caption("best objective value per logged iteration"),
	)
}

// Close flushes and closes the persistent writer, if any.
func (l *Logger) Close() error {
	if l.writer == nil {
		return nil
	}
	if err := l.writer.Close(); err != nil {
		return err
	}
	l.writer = nil
	return nil
}

// Path returns the trace file path, or "" for an in-memory logger.
func (l *Logger) Path() string {
	if l.writer == nil {
		return ""
	}
	return l.writer.Path()
}

var _ opt.Logger = (*Logger)(nil)
