package opt

import "slices"

// Conditions maps a termination-reason name to the value that triggered it,
// e.g. {"tolfun": 1e-12}. An empty (or nil) map means no termination
// condition holds.
type Conditions map[string]float64

// Result is the read-only outcome of an optimization run.
type Result struct {
	// BestX is the best solution evaluated so far.
	BestX []float64

	// BestF is the objective value of BestX.
	BestF float64

	// Evaluations is the number of objective evaluations consumed.
	Evaluations int

	// Iterations is the number of completed Tell calls.
	Iterations int

	// XCurrent is the optimizer's current working point (e.g. the
	// distribution mean), which may differ from BestX.
	XCurrent []float64
}

// Optimizer is the contract every concrete optimization algorithm satisfies.
// A caller may drive the loop manually around Ask/Tell/Stop, or delegate it
// entirely to Optimize.
//
// Ask and Tell are called in strict alternation by the driver. Tell must
// increment the iteration counter exactly once per successful call; Ask and
// Stop must not touch it.
type Optimizer interface {
	// Initialize (re)sets all mutable optimizer state to the initial
	// condition. It is idempotent for fixed construction arguments.
	Initialize() error

	// Ask delivers one or more new candidate solutions.
	Ask() ([][]float64, error)

	// Tell passes candidates and their paired objective values (same
	// length, same order) back to the optimizer and updates all internal
	// adaptive state.
	Tell(solutions [][]float64, values []float64) error

	// Stop returns the currently satisfied termination conditions, one
	// entry per condition, or an empty map. It is side-effect-free and may
	// be called any number of times.
	Stop() Conditions

	// Disp prints a best-effort status line every modulo-th iteration.
	// modulo <= 0 disables output.
	Disp(modulo int)

	// Result reports the best solution found so far.
	Result() (Result, error)

	// Logger returns the attached data logger, or nil.
	Logger() Logger
}

// Base carries the state shared by all optimizers and supplies the default
// method bodies of the abstract contract. Concrete optimizers embed it and
// override Ask, Tell, Stop and Result.
//
// Counter policy: Base.Tell increments CountIter before reporting the
// contract failure, mirroring the documented default behavior. Concrete
// optimizers own the counter entirely: they must not chain to Base.Tell and
// must increment CountIter exactly once per successful Tell.
type Base struct {
	// XStart is the initial candidate vector, immutable after construction.
	XStart []float64

	// XCurrent is the current working vector, derived from XStart at
	// initialization and mutated only by Tell/Initialize.
	XCurrent []float64

	// CountIter is the number of completed Tell calls.
	CountIter int

	logger Logger
}

// NewBase creates the shared optimizer state from the mandatory initial
// point and initializes it.
func NewBase(xstart []float64) Base {
	b := Base{XStart: slices.Clone(xstart)}
	b.Initialize()
	return b
}

// Initialize resets the iteration counter and the working vector.
func (b *Base) Initialize() error {
	b.CountIter = 0
	b.XCurrent = slices.Clone(b.XStart)
	return nil
}

// Ask is unimplemented in the base contract.
func (b *Base) Ask() ([][]float64, error) {
	return nil, &NotImplementedError{Op: "Ask"}
}

// Tell increments the iteration counter, then reports that the real update
// is unimplemented. See the counter policy on Base.
func (b *Base) Tell(solutions [][]float64, values []float64) error {
	b.CountIter++
	return &NotImplementedError{Op: "Tell"}
}

// Stop reports no termination conditions; concrete optimizers override it.
func (b *Base) Stop() Conditions {
	return nil
}

// Disp is a no-op in the base contract.
func (b *Base) Disp(modulo int) {}

// Result is unimplemented in the base contract.
func (b *Base) Result() (Result, error) {
	return Result{}, &NotImplementedError{Op: "Result"}
}

// Logger returns the attached data logger, or nil if none was set.
func (b *Base) Logger() Logger {
	return b.logger
}

// SetLogger attaches a data logger that the driver will invoke after the
// user callbacks on every iteration and once more on termination.
func (b *Base) SetLogger(lg Logger) {
	b.logger = lg
}
