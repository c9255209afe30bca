// Package es implements a weighted-recombination evolution strategy with
// covariance and step-size adaptation, driven through the generic
// ask/evaluate/tell loop of internal/opt and sampling from an
// internal/sampler model.
package es

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/gabrielasuchopar/gocma/internal/opt"
	"github.com/gabrielasuchopar/gocma/internal/sampler"
)

// Strategy is a concrete optimizer: candidates are drawn from a zero-mean
// sampling model, shifted by the current mean and scaled by the step size;
// Tell ranks them and adapts mean, covariance and step size.
type Strategy struct {
	opt.Base

	model    sampler.Model
	ownModel bool
	seed     int64

	sigma0  float64
	sigma   float64
	mean    []float64
	lambda  int
	weights []float64
	params  sampler.Params

	// cumulation constants and paths
	cc, cs, ds, chiN float64
	pc, ps           []float64

	bestX []float64
	bestF float64
	evals int

	tolFun     float64
	tolX       float64
	maxCond    float64
	stagnation *StagnationTracker

	// lastSpread is the objective spread of the most recent batch,
	// consulted by the tolfun condition.
	lastSpread float64
}

// Option configures a Strategy.
type Option func(*Strategy)

// WithLambda overrides the population size (default 4 + 3*ln(dim)).
func WithLambda(lambda int) Option {
	return func(s *Strategy) { s.lambda = lambda }
}

// WithSeed fixes the sample stream of the default model.
func WithSeed(seed int64) Option {
	return func(s *Strategy) { s.seed = seed }
}

// WithModel injects a sampling model. The strategy then treats the model as
// externally owned: Initialize does not reset it.
func WithModel(m sampler.Model) Option {
	return func(s *Strategy) {
		s.model = m
		s.ownModel = false
	}
}

// WithTolFun sets the termination tolerance on the per-batch objective
// spread (default 1e-12).
func WithTolFun(tol float64) Option {
	return func(s *Strategy) { s.tolFun = tol }
}

// WithTolX sets the termination tolerance on the step size relative to its
// initial value (default 1e-12).
func WithTolX(tol float64) Option {
	return func(s *Strategy) { s.tolX = tol }
}

// WithMaxCond sets the covariance condition-number ceiling (default 1e14).
func WithMaxCond(cond float64) Option {
	return func(s *Strategy) { s.maxCond = cond }
}

// WithStagnation configures the stagnation stop condition.
func WithStagnation(cfg StagnationConfig) Option {
	return func(s *Strategy) { s.stagnation = NewStagnationTracker(cfg) }
}

// New creates a strategy starting at xstart with initial step size sigma.
func New(xstart []float64, sigma float64, opts ...Option) (*Strategy, error) {
	if len(xstart) == 0 {
		return nil, &opt.InvalidArgumentError{Field: "xstart", Reason: "must not be empty"}
	}
	if sigma <= 0 {
		return nil, &opt.InvalidArgumentError{Field: "sigma", Reason: "must be positive"}
	}

	n := len(xstart)
	s := &Strategy{
		Base:     opt.NewBase(xstart),
		ownModel: true,
		seed:     42,
		sigma0:   sigma,
		lambda:   4 + int(3*math.Log(float64(n))),
		tolFun:   1e-12,
		tolX:     1e-12,
		maxCond:  1e14,
	}
	for _, o := range opts {
		o(s)
	}
	if s.lambda < 2 {
		return nil, &opt.InvalidArgumentError{Field: "lambda", Reason: "must be at least 2"}
	}
	if s.stagnation == nil {
		s.stagnation = NewStagnationTracker(DefaultStagnationConfig())
	}
	if s.model == nil {
		s.model = sampler.NewGaussian(n, s.seed)
	}
	if s.model.Dimension() != n {
		return nil, &opt.InvalidArgumentError{
			Field:  "model",
			Reason: fmt.Sprintf("dimension %d does not match xstart length %d", s.model.Dimension(), n),
		}
	}

	s.weights = RecombinationWeights(s.lambda)
	s.params = s.model.Parameters(s.weights)

	nf := float64(n)
	mueff := s.params.MuEff
	s.cc = (4 + mueff/nf) / (nf + 4 + 2*mueff/nf)
	s.cs = (mueff + 2) / (nf + mueff + 5)
	s.ds = 1 + 2*math.Max(0, math.Sqrt((mueff-1)/(nf+1))-1) + s.cs
	s.chiN = math.Sqrt(nf) * (1 - 1/(4*nf) + 1/(21*nf*nf))

	if err := s.Initialize(); err != nil {
		return nil, err
	}
	return s, nil
}

// Initialize resets all mutable strategy state to the initial condition.
// An injected model is left untouched; the default model is recreated with
// the same seed, making Initialize idempotent for fixed construction
// arguments.
func (s *Strategy) Initialize() error {
	if err := s.Base.Initialize(); err != nil {
		return err
	}
	n := len(s.XStart)
	s.sigma = s.sigma0
	s.mean = slices.Clone(s.XStart)
	s.pc = make([]float64, n)
	s.ps = make([]float64, n)
	s.bestX = nil
	s.bestF = math.Inf(1)
	s.evals = 0
	s.lastSpread = math.Inf(1)
	if s.stagnation != nil {
		s.stagnation.Reset()
	}
	if s.ownModel && s.model != nil {
		s.model = sampler.NewGaussian(n, s.seed)
		s.model.Parameters(s.weights)
	}
	return nil
}

// Ask draws lambda candidates x = mean + sigma * sample. It never touches
// the iteration counter.
func (s *Strategy) Ask() ([][]float64, error) {
	n := len(s.mean)
	samples := s.model.Sample(s.lambda, true)
	X := make([][]float64, len(samples))
	for k, z := range samples {
		x := make([]float64, n)
		for i := range x {
			x[i] = s.mean[i] + s.sigma*z[i]
		}
		X[k] = x
	}
	return X, nil
}

// Tell ranks the candidates by objective value and updates mean, evolution
// paths, covariance and step size. It increments the iteration counter
// exactly once.
func (s *Strategy) Tell(solutions [][]float64, values []float64) error {
	if len(solutions) != len(values) {
		return &opt.InvalidArgumentError{
			Field:  "values",
			Reason: fmt.Sprintf("length %d does not match %d solutions", len(values), len(solutions)),
		}
	}
	if len(solutions) == 0 {
		return &opt.InvalidArgumentError{Field: "solutions", Reason: "must not be empty"}
	}

	n := len(s.mean)
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	if values[idx[0]] < s.bestF {
		s.bestF = values[idx[0]]
		s.bestX = slices.Clone(solutions[idx[0]])
	}
	s.evals += len(solutions)
	s.lastSpread = values[idx[len(idx)-1]] - values[idx[0]]

	mu := Mu(s.weights)
	if mu > len(idx) {
		mu = len(idx)
	}

	oldMean := s.mean
	newMean := make([]float64, n)
	for i := 0; i < mu; i++ {
		w := s.weights[i]
		for j, v := range solutions[idx[i]] {
			newMean[j] += w * v
		}
	}
	s.mean = newMean
	s.XCurrent = slices.Clone(newMean)

	// mean shift in step-size units
	shift := make([]float64, n)
	for i := range shift {
		shift[i] = (newMean[i] - oldMean[i]) / s.sigma
	}

	mueff := s.params.MuEff
	csn := math.Sqrt(s.cs * (2 - s.cs) * mueff)
	white := s.model.TransformInverse(shift)
	psNorm := 0.0
	for i := range s.ps {
		s.ps[i] = (1-s.cs)*s.ps[i] + csn*white[i]
		psNorm += s.ps[i] * s.ps[i]
	}
	psNorm = math.Sqrt(psNorm)

	expect := 1 - math.Pow(1-s.cs, 2*float64(s.CountIter+1))
	hsig := psNorm/math.Sqrt(expect)/s.chiN < 1.4+2/(float64(n)+1)

	ccn := math.Sqrt(s.cc * (2 - s.cc) * mueff)
	for i := range s.pc {
		s.pc[i] *= 1 - s.cc
		if hsig {
			s.pc[i] += ccn * shift[i]
		}
	}

	// rank-one (evolution path) plus rank-mu (selected steps) update
	vectors := make([][]float64, 0, mu+1)
	rates := make([]float64, 0, mu+1)
	vectors = append(vectors, slices.Clone(s.pc))
	rates = append(rates, s.params.C1)
	for i := 0; i < mu; i++ {
		y := make([]float64, n)
		for j, v := range solutions[idx[i]] {
			y[j] = (v - oldMean[j]) / s.sigma
		}
		vectors = append(vectors, y)
		rates = append(rates, s.params.CMu*s.weights[i])
	}
	if err := s.model.Update(vectors, rates); err != nil {
		return fmt.Errorf("model update failed: %w", err)
	}

	s.sigma *= math.Exp(math.Min(1, s.cs/s.ds*(psNorm/s.chiN-1)))

	s.stagnation.Update(s.bestF)
	s.CountIter++
	return nil
}

// Stop reports the currently satisfied termination conditions. It is
// side-effect-free.
func (s *Strategy) Stop() opt.Conditions {
	conds := opt.Conditions{}
	if s.CountIter >= 10 && s.lastSpread < s.tolFun {
		conds["tolfun"] = s.lastSpread
	}
	maxVar := 0.0
	for _, v := range s.model.Variances() {
		maxVar = math.Max(maxVar, v)
	}
	if spread := s.sigma * math.Sqrt(maxVar); spread < s.tolX*s.sigma0 {
		conds["tolx"] = spread
	}
	if cond := s.model.ConditionNumber(); cond > s.maxCond {
		conds["maxcond"] = cond
	}
	if s.stagnation.Stalled() {
		conds["stagnation"] = float64(s.stagnation.StaleCount())
	}
	return conds
}

// Disp prints a status row every modulo-th iteration; modulo <= 0 disables
// output.
func (s *Strategy) Disp(modulo int) {
	if modulo <= 0 {
		return
	}
	if s.CountIter%modulo != 0 && s.CountIter != 1 {
		return
	}
	fmt.Printf("%5d %7d  %.8e  sigma=%.3e\n", s.CountIter, s.evals, s.bestF, s.sigma)
}

// Result reports the best solution found so far.
func (s *Strategy) Result() (opt.Result, error) {
	return opt.Result{
		BestX:       slices.Clone(s.bestX),
		BestF:       s.bestF,
		Evaluations: s.evals,
		Iterations:  s.CountIter,
		XCurrent:    slices.Clone(s.mean),
	}, nil
}

// Sigma reports the current step size.
func (s *Strategy) Sigma() float64 {
	return s.sigma
}

// Mean returns a copy of the current distribution mean.
func (s *Strategy) Mean() []float64 {
	return slices.Clone(s.mean)
}

// Lambda reports the population size.
func (s *Strategy) Lambda() int {
	return s.lambda
}

// Model exposes the sampling model for inspection.
func (s *Strategy) Model() sampler.Model {
	return s.model
}
