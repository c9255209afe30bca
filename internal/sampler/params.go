package sampler

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// Params holds the default adaptation learning rates derived from a
// recombination-weights vector. Concrete models may substitute
// domain-specific formulas but keep the signature and memoization contract.
type Params struct {
	// C1 is the rank-one covariance update learning rate.
	C1 float64

	// CMu is the rank-mu covariance update learning rate.
	CMu float64

	// MuEff is the effective sample size of the positively-weighted
	// subset: (sum of positive weights)^2 / (sum of their squares).
	MuEff float64
}

// DeriveParams computes the generic default rates for the given sample
// space dimension and recombination weights:
//
//	mueff = (sum w+)^2 / sum (w+)^2
//	c1    = min(1, lam/6) * 2 / ((dim+1.3)^2 + mueff)
//	cmu   = min(1-c1, 2*(mueff-2+1/mueff) / ((dim+2)^2 + mueff))
//
// where lam counts all weights, positive and not.
func DeriveParams(dimension int, weights []float64) Params {
	lam := len(weights)
	var sum, sumsq float64
	for _, w := range weights {
		if w > 0 {
			sum += w
			sumsq += w * w
		}
	}
	mueff := sum * sum / sumsq

	n := float64(dimension)
	c1 := math.Min(1, float64(lam)/6) * 2 / ((n+1.3)*(n+1.3) + mueff)
	cmu := math.Min(1-c1, 2*(mueff-2+1/mueff)/((n+2)*(n+2)+mueff))

	return Params{C1: c1, CMu: cmu, MuEff: mueff}
}

// ParamCache memoizes DeriveParams per distinct weights value. Models embed
// it to satisfy the Parameters contract: repeated calls with equal weights
// return the cached result without recomputation; a different weights
// vector invalidates and replaces the cache.
//
// The cache key is the weights value, compared explicitly; supplying a
// mutated copy of a previously seen slice recomputes.
type ParamCache struct {
	dimension int
	weights   []float64
	params    Params

	// derivations counts cache misses, observable in package tests.
	derivations int
}

// NewParamCache creates a parameter cache for the given sample space
// dimension.
func NewParamCache(dimension int) ParamCache {
	return ParamCache{dimension: dimension}
}

// Parameters returns the default adaptation rates for weights, recomputing
// only when weights differ from the cached key.
func (pc *ParamCache) Parameters(weights []float64) Params {
	if pc.weights != nil && floats.Equal(pc.weights, weights) {
		return pc.params
	}
	pc.weights = slices.Clone(weights)
	pc.params = DeriveParams(pc.dimension, weights)
	pc.derivations++
	return pc.params
}
