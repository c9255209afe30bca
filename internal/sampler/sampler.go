// Package sampler defines the contract for the zero-mean statistical model
// that supplies an adaptive optimizer's candidate-generation distribution,
// together with the generic learning-rate derivation shared by all models.
// The mean of the search distribution is handled by the owning optimizer;
// models only describe the shape around the origin.
package sampler

import (
	"strconv"

	"gonum.org/v1/gonum/mat"
)

// Model is a stateful distribution over a fixed-dimension real vector
// space. It produces samples, ingests weighted observation vectors, and
// exposes the implied linear (whitening) transform of its covariance.
//
// A model is owned by exactly one optimizer at a time and is not safe for
// concurrent use.
type Model interface {
	// Dimension reports the fixed dimension of the sample space.
	Dimension() int

	// Sample draws n i.i.d. vectors from the current distribution.
	// lazyUpdate hints that an expensive internal refresh (e.g. a matrix
	// factorization) may be deferred until needed; it never changes the
	// statistical law of the samples.
	Sample(n int, lazyUpdate bool) [][]float64

	// Update adapts the distribution parameters from observation vectors
	// paired one-to-one with weights. Weights may be negative for active
	// (penalizing) updates. Mismatched lengths are a ShapeMismatchError.
	Update(vectors [][]float64, weights []float64) error

	// Parameters derives default adaptation rates from a recombination-
	// weights vector. The result is memoized per distinct weights value.
	Parameters(weights []float64) Params

	// Norm is the Mahalanobis norm of x under the current distribution:
	// the Euclidean norm of TransformInverse(x). It is non-negative and
	// zero only at the origin.
	Norm(x []float64) float64

	// ConditionNumber is the spectral condition number of the covariance.
	ConditionNumber() float64

	// CovarianceMatrix returns a copy of the full covariance matrix.
	CovarianceMatrix() *mat.SymDense

	// Variances returns the coordinate-wise (marginal) variances.
	Variances() []float64

	// Transform applies the distribution's implied linear map (the
	// square-root-of-covariance action) to x.
	Transform(x []float64) []float64

	// TransformInverse inverts Transform; it whitens x.
	TransformInverse(x []float64) []float64

	// ToLinearTransformation materializes the implied linear map as an
	// explicit matrix. reset additionally restores the internal
	// representation to the identity after extraction, a destructive
	// factor-out used by callers that consume the accumulated transform.
	ToLinearTransformation(reset bool) *mat.Dense

	// ToLinearTransformationInverse materializes the inverse map; reset
	// behaves as in ToLinearTransformation.
	ToLinearTransformationInverse(reset bool) *mat.Dense

	// InverseHessianScalarCorrection returns the scalar alpha that best
	// fits the local quadratic model
	// f(x) ~= (x-mean)' (alpha*C)^-1 (x-mean) to the evaluated batch X, f
	// under the current covariance C.
	InverseHessianScalarCorrection(mean []float64, X [][]float64, f []float64) float64

	// Scale multiplies the covariance by factor in place, used for global
	// step-size corrections.
	Scale(factor float64)
}

// ShapeMismatchError reports an Update call whose vector and weight counts
// disagree.
type ShapeMismatchError struct {
	Vectors int
	Weights int
}

func (e *ShapeMismatchError) Error() string {
	return "shape mismatch: " + strconv.Itoa(e.Vectors) + " vectors vs " + strconv.Itoa(e.Weights) + " weights"
}

func (e *ShapeMismatchError) Is(target error) bool {
	_, ok := target.(*ShapeMismatchError)
	return ok
}
