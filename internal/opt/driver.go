package opt

import (
	"fmt"
	"log/slog"
)

// Objective is a black-box function to be minimized. It receives one
// candidate vector and returns a scalar cost. Extra parameters are captured
// by closing over them. The driver imposes no error contract: panics inside
// the objective propagate to the caller unmodified.
type Objective func(x []float64) float64

// Callback observes the optimizer once per iteration, after Tell. Nil
// callbacks are skipped silently.
type Callback func(o Optimizer)

type settings struct {
	maxEvals  int
	maxIter   int
	minIter   int
	verbDisp  int
	callbacks []Callback
	logger    Logger
}

// Option configures a call to Optimize.
type Option func(*settings)

// WithMaxEvals caps the total number of objective evaluations. The cap is a
// hard ceiling checked before every iteration; 0 means no iteration runs at
// all. Unset means unlimited.
func WithMaxEvals(n int) Option {
	return func(s *settings) { s.maxEvals = n }
}

// WithMaxIter caps the number of iterations. Unset means unbounded.
func WithMaxIter(n int) Option {
	return func(s *settings) { s.maxIter = n }
}

// WithMinIter sets the minimal number of iterations executed even while
// Stop reports a termination condition. Defaults to 1. Budget ceilings
// (WithMaxEvals, WithMaxIter) still override the floor.
func WithMinIter(n int) Option {
	return func(s *settings) { s.minIter = n }
}

// WithVerbDisp prints a status line every n-th iteration plus a final
// report on termination.
func WithVerbDisp(n int) Option {
	return func(s *settings) { s.verbDisp = n }
}

// WithCallbacks appends callbacks invoked in order after every Tell.
func WithCallbacks(cbs ...Callback) Option {
	return func(s *settings) { s.callbacks = append(s.callbacks, cbs...) }
}

// WithLogger attaches a data logger for this run, taking precedence over
// the optimizer's own attached logger.
func WithLogger(lg Logger) Option {
	return func(s *settings) { s.logger = lg }
}

// Optimize finds a minimizer of objective by repeatedly asking o for
// candidates, evaluating them in order, and telling the results back until
// o.Stop() is non-empty or a budget ceiling is hit.
//
// The optimizer instance itself is returned (alongside any setup or
// Ask/Tell error) so the caller can chain further inspection:
//
//	es, err := opt.Optimize(es, objective.Sphere)
//
// The logger — the one passed via WithLogger, or else o.Logger() — is
// invoked after the user callbacks on every iteration and forced to record
// one final data point on termination. Failures of that final flush are
// reported and swallowed.
func Optimize(o Optimizer, objective Objective, opts ...Option) (Optimizer, error) {
	s := settings{maxEvals: -1, maxIter: -1, minIter: 1}
	for _, opt := range opts {
		opt(&s)
	}

	if s.maxIter >= 0 && s.maxIter < s.minIter {
		return o, &InvalidArgumentError{
			Field:  "MaxIter",
			Reason: fmt.Sprintf("must not be less than MinIter (%d < %d)", s.maxIter, s.minIter),
		}
	}

	lg := s.logger
	if lg == nil {
		lg = o.Logger()
	}

	callbacks := s.callbacks
	if lg != nil {
		// The logger is an always-present observer, invoked last.
		callbacks = append(callbacks, func(inner Optimizer) {
			if err := lg.Add(inner, ModuloDefault); err != nil {
				slog.Warn("Logger add failed", "error", err)
			}
		})
	}

	citer, cevals := 0, 0
	for len(o.Stop()) == 0 || citer < s.minIter {
		// Budget ceilings are checked before the iteration starts and
		// override the minimum-iterations floor.
		if s.maxEvals >= 0 && cevals >= s.maxEvals {
			break
		}
		if s.maxIter >= 0 && citer >= s.maxIter {
			break
		}
		citer++

		X, err := o.Ask()
		if err != nil {
			return o, fmt.Errorf("ask failed at iteration %d: %w", citer, err)
		}

		values := make([]float64, len(X))
		for i, x := range X {
			values[i] = objective(x)
		}
		cevals += len(X)

		if err := o.Tell(X, values); err != nil {
			return o, fmt.Errorf("tell failed at iteration %d: %w", citer, err)
		}

		o.Disp(s.verbDisp)
		for _, cb := range callbacks {
			if cb != nil {
				cb(o)
			}
		}
	}

	forceFinalLogging(o, lg)

	if s.verbDisp > 0 {
		o.Disp(1)
		if res, err := o.Result(); err == nil {
			fmt.Printf("termination by %v\n", map[string]float64(o.Stop()))
			fmt.Printf("best f-value = %g\n", res.BestF)
			fmt.Printf("solution = %v\n", res.BestX)
		}
	}

	return o, nil
}

// forceFinalLogging records one last data point so the final optimizer
// state is captured even when the regular cadence would have skipped it.
// A logger with modulo 0 has logging disabled and is left alone. Errors are
// reported, never propagated.
func forceFinalLogging(o Optimizer, lg Logger) {
	if lg == nil {
		return
	}
	modulo := ModuloForce
	if lg.Modulo() == 0 {
		modulo = ModuloNever
	}
	if err := lg.Add(o, modulo); err != nil {
		slog.Warn("Suppressing failed final logger flush", "error", err)
	}
}
