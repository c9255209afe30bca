package opt

import (
	"errors"
	"math"
	"slices"
	"testing"
)

// stubOptimizer proposes two fixed candidates per iteration and keeps the
// better one. stopAfter < 0 means "never stop"; otherwise Stop reports a
// condition once CountIter >= stopAfter.
type stubOptimizer struct {
	Base
	stopAfter int
	asked     int
	bestX     []float64
	bestF     float64
}

func newStub(stopAfter int) *stubOptimizer {
	return &stubOptimizer{
		Base:      NewBase([]float64{0, 0}),
		stopAfter: stopAfter,
		bestF:     math.Inf(1),
	}
}

func (s *stubOptimizer) Ask() ([][]float64, error) {
	s.asked++
	return [][]float64{{1, 0}, {0, 1}}, nil
}

func (s *stubOptimizer) Tell(solutions [][]float64, values []float64) error {
	for i, f := range values {
		if f < s.bestF {
			s.bestF = f
			s.bestX = slices.Clone(solutions[i])
		}
	}
	s.XCurrent = slices.Clone(s.bestX)
	s.CountIter++
	return nil
}

func (s *stubOptimizer) Stop() Conditions {
	if s.stopAfter >= 0 && s.CountIter >= s.stopAfter {
		return Conditions{"countiter": float64(s.CountIter)}
	}
	return nil
}

func (s *stubOptimizer) Result() (Result, error) {
	return Result{
		BestX:      slices.Clone(s.bestX),
		BestF:      s.bestF,
		Iterations: s.CountIter,
		XCurrent:   slices.Clone(s.XCurrent),
	}, nil
}

func sphere(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return sum
}

// recordLogger appends an event marker on every recorded Add.
type recordLogger struct {
	events  *[]string
	modulo  int
	failAdd bool
}

func (l *recordLogger) Add(o Optimizer, modulo int) error {
	if l.failAdd {
		return errors.New("add failed")
	}
	if modulo == ModuloNever {
		return nil
	}
	*l.events = append(*l.events, "log")
	return nil
}

func (l *recordLogger) Modulo() int { return l.modulo }

func TestOptimizeInvalidBudgetFailsBeforeIterating(t *testing.T) {
	stub := newStub(-1)

	_, err := Optimize(stub, sphere, WithMaxIter(2), WithMinIter(3))
	if !errors.Is(err, &InvalidArgumentError{}) {
		t.Fatalf("expected invalid-argument error, got %v", err)
	}
	if stub.asked != 0 {
		t.Errorf("Ask was called %d times before the precondition check", stub.asked)
	}
}

func TestOptimizeMaxEvalsZeroRunsNoIteration(t *testing.T) {
	stub := newStub(-1)

	_, err := Optimize(stub, sphere, WithMaxEvals(0))
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if stub.asked != 0 || stub.CountIter != 0 {
		t.Errorf("expected no iterations, got asked=%d countiter=%d", stub.asked, stub.CountIter)
	}
}

func TestOptimizeMaxIterCeiling(t *testing.T) {
	stub := newStub(-1) // never stops on its own

	_, err := Optimize(stub, sphere, WithMaxIter(5))
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if stub.CountIter != 5 {
		t.Errorf("CountIter = %d, expected 5", stub.CountIter)
	}
}

func TestOptimizeMaxEvalsCeiling(t *testing.T) {
	stub := newStub(-1)

	// Each iteration evaluates 2 candidates; the budget of 3 is reached
	// after the second iteration.
	_, err := Optimize(stub, sphere, WithMaxEvals(3))
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if stub.CountIter != 2 {
		t.Errorf("CountIter = %d, expected 2", stub.CountIter)
	}
}

func TestOptimizeMinIterationsFloor(t *testing.T) {
	// Stop reports a condition from the very start; the floor still
	// forces two iterations.
	stub := newStub(0)

	_, err := Optimize(stub, sphere, WithMinIter(2))
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if stub.CountIter != 2 {
		t.Errorf("CountIter = %d, expected 2", stub.CountIter)
	}
}

func TestOptimizeBudgetOverridesMinIterations(t *testing.T) {
	stub := newStub(0)

	// The evaluation budget is a hard ceiling even while the
	// minimum-iterations floor is unsatisfied.
	_, err := Optimize(stub, sphere, WithMinIter(5), WithMaxEvals(2))
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if stub.CountIter != 1 {
		t.Errorf("CountIter = %d, expected 1", stub.CountIter)
	}
}

func TestOptimizeCallbackOrder(t *testing.T) {
	stub := newStub(-1)
	var events []string
	lg := &recordLogger{events: &events, modulo: 1}
	stub.SetLogger(lg)

	a := func(o Optimizer) { events = append(events, "a") }
	b := func(o Optimizer) { events = append(events, "b") }

	_, err := Optimize(stub, sphere, WithMaxIter(1), WithCallbacks(a, nil, b))
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}

	// One iteration: a, b, logger; then the forced final flush.
	want := []string{"a", "b", "log", "log"}
	if !slices.Equal(events, want) {
		t.Errorf("event order = %v, expected %v", events, want)
	}
}

func TestOptimizeForcedFlushErrorIsSwallowed(t *testing.T) {
	stub := newStub(3)
	var events []string
	stub.SetLogger(&recordLogger{events: &events, modulo: 1, failAdd: true})

	_, err := Optimize(stub, sphere)
	if err != nil {
		t.Fatalf("logger failure leaked out of Optimize: %v", err)
	}
}

func TestOptimizeLoggerModuloZeroSkipsFinalFlush(t *testing.T) {
	stub := newStub(1)
	var events []string
	stub.SetLogger(&recordLogger{events: &events, modulo: 0})

	_, err := Optimize(stub, sphere)
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	// One per-iteration add; the final flush is skipped for a disabled
	// logger.
	want := []string{"log"}
	if !slices.Equal(events, want) {
		t.Errorf("events = %v, expected %v", events, want)
	}
}

func TestOptimizeWithoutLoggerIsFine(t *testing.T) {
	stub := newStub(1)
	if _, err := Optimize(stub, sphere); err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if stub.CountIter != 1 {
		t.Errorf("CountIter = %d, expected 1", stub.CountIter)
	}
}

func TestOptimizeEndToEnd(t *testing.T) {
	// Two fixed candidates, f(x) = x0^2 + x1^2, stop after 3 iterations:
	// exactly 3 iterations run and the best of the two candidates wins.
	stub := newStub(3)

	returned, err := Optimize(stub, sphere, WithMinIter(1))
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if returned != Optimizer(stub) {
		t.Error("Optimize did not return the optimizer instance")
	}
	if stub.CountIter != 3 {
		t.Errorf("CountIter = %d, expected 3", stub.CountIter)
	}

	res, err := stub.Result()
	if err != nil {
		t.Fatalf("Result failed: %v", err)
	}
	if res.BestF != 1 {
		t.Errorf("BestF = %f, expected 1", res.BestF)
	}
	if !slices.Equal(res.BestX, []float64{1, 0}) {
		t.Errorf("BestX = %v, expected [1 0]", res.BestX)
	}
}

func TestOptimizeAskErrorPropagates(t *testing.T) {
	// An optimizer without Ask behaves like the abstract contract.
	type bare struct{ Base }
	b := &bare{Base: NewBase([]float64{0})}

	_, err := Optimize(b, sphere)
	if !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("expected not-implemented error, got %v", err)
	}
}
