package sampler

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Gaussian is a zero-mean multivariate normal sampling model with a full
// covariance matrix. The implied linear transform is the lower Cholesky
// factor of the covariance; it is refreshed lazily after updates.
type Gaussian struct {
	ParamCache

	dim   int
	cov   *mat.SymDense
	lower *mat.TriDense
	dirty bool
	rng   *rand.Rand
}

// NewGaussian creates an isotropic unit-covariance model of the given
// dimension. The seed fixes the sample stream for reproducibility.
func NewGaussian(dimension int, seed int64) *Gaussian {
	g := &Gaussian{
		ParamCache: NewParamCache(dimension),
		dim:        dimension,
		cov:        identitySym(dimension),
		lower:      mat.NewTriDense(dimension, mat.Lower, nil),
		rng:        rand.New(rand.NewSource(seed)),
	}
	g.setIdentity()
	return g
}

// Dimension reports the fixed dimension of the sample space.
func (g *Gaussian) Dimension() int {
	return g.dim
}

// setIdentity resets covariance and factor to the identity.
func (g *Gaussian) setIdentity() {
	g.cov = identitySym(g.dim)
	g.lower = mat.NewTriDense(g.dim, mat.Lower, nil)
	for i := 0; i < g.dim; i++ {
		g.lower.SetTri(i, i, 1)
	}
	g.dirty = false
}

// refresh recomputes the Cholesky factor of the covariance. A covariance
// driven indefinite by negative update weights is repaired by adding a
// growing diagonal jitter.
func (g *Gaussian) refresh() {
	var chol mat.Cholesky
	work := mat.NewSymDense(g.dim, nil)
	work.CopySym(g.cov)

	jitter := 0.0
	for attempt := 0; ; attempt++ {
		if chol.Factorize(work) {
			break
		}
		if attempt == 0 {
			maxDiag := 0.0
			for i := 0; i < g.dim; i++ {
				maxDiag = math.Max(maxDiag, math.Abs(work.At(i, i)))
			}
			jitter = 1e-12 * math.Max(maxDiag, 1)
		} else {
			jitter *= 10
		}
		if attempt > 40 {
			slog.Error("Covariance factorization failed, resetting to identity")
			g.setIdentity()
			return
		}
		for i := 0; i < g.dim; i++ {
			work.SetSym(i, i, work.At(i, i)+jitter)
		}
	}
	if jitter > 0 {
		slog.Warn("Repaired indefinite covariance", "jitter", jitter)
		g.cov.CopySym(work)
	}
	chol.LTo(g.lower)
	g.dirty = false
}

// Sample draws n i.i.d. vectors x = L z with z standard normal. When
// lazyUpdate is false, the factorization is recomputed eagerly even if no
// update is pending; the sampled law is identical either way.
func (g *Gaussian) Sample(n int, lazyUpdate bool) [][]float64 {
	if g.dirty || !lazyUpdate {
		g.refresh()
	}
	samples := make([][]float64, n)
	z := make([]float64, g.dim)
	for k := range samples {
		for i := range z {
			z[i] = g.rng.NormFloat64()
		}
		samples[k] = g.Transform(z)
	}
	return samples
}

// Update adapts the covariance from observation vectors and their weights:
//
//	C <- (1 - sum w) C + sum_i w_i v_i v_i'
//
// Negative weights perform active (penalizing) updates.
func (g *Gaussian) Update(vectors [][]float64, weights []float64) error {
	if len(vectors) != len(weights) {
		return &ShapeMismatchError{Vectors: len(vectors), Weights: len(weights)}
	}
	for i, v := range vectors {
		if len(v) != g.dim {
			return fmt.Errorf("update vector %d has dimension %d, want %d", i, len(v), g.dim)
		}
	}

	total := 0.0
	for _, w := range weights {
		total += w
	}
	g.cov.ScaleSym(1-total, g.cov)
	for i, v := range vectors {
		g.cov.SymRankOne(g.cov, weights[i], mat.NewVecDense(g.dim, v))
	}
	g.dirty = true
	return nil
}

// Norm is the Mahalanobis norm of x: the Euclidean norm of the whitened
// vector.
func (g *Gaussian) Norm(x []float64) float64 {
	return floats.Norm(g.TransformInverse(x), 2)
}

// ConditionNumber is the ratio of the extreme covariance eigenvalues.
func (g *Gaussian) ConditionNumber() float64 {
	var eig mat.EigenSym
	if !eig.Factorize(g.cov, false) {
		return math.Inf(1)
	}
	vals := eig.Values(nil)
	min, max := vals[0], vals[0]
	for _, v := range vals[1:] {
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	if min <= 0 {
		return math.Inf(1)
	}
	return max / min
}

// CovarianceMatrix returns a copy of the current covariance matrix.
func (g *Gaussian) CovarianceMatrix() *mat.SymDense {
	out := mat.NewSymDense(g.dim, nil)
	out.CopySym(g.cov)
	return out
}

// Variances returns the coordinate-wise marginal variances, the covariance
// diagonal.
func (g *Gaussian) Variances() []float64 {
	out := make([]float64, g.dim)
	for i := range out {
		out[i] = g.cov.At(i, i)
	}
	return out
}

// Transform applies the lower Cholesky factor to x.
func (g *Gaussian) Transform(x []float64) []float64 {
	if g.dirty {
		g.refresh()
	}
	var y mat.VecDense
	y.MulVec(g.lower, mat.NewVecDense(g.dim, x))
	out := make([]float64, g.dim)
	copy(out, y.RawVector().Data)
	return out
}

// TransformInverse solves L y = x, whitening x.
func (g *Gaussian) TransformInverse(x []float64) []float64 {
	if g.dirty {
		g.refresh()
	}
	var y mat.VecDense
	if err := y.SolveVec(g.lower, mat.NewVecDense(g.dim, x)); err != nil {
		// The factor is kept positive definite by refresh; a singular
		// solve here means the model was scaled to zero.
		slog.Error("Whitening solve failed", "error", err)
		return make([]float64, g.dim)
	}
	out := make([]float64, g.dim)
	copy(out, y.RawVector().Data)
	return out
}

// ToLinearTransformation returns the implied linear map as an explicit
// matrix. reset restores the model to the identity afterwards.
func (g *Gaussian) ToLinearTransformation(reset bool) *mat.Dense {
	if g.dirty {
		g.refresh()
	}
	out := mat.NewDense(g.dim, g.dim, nil)
	out.Copy(g.lower)
	if reset {
		g.setIdentity()
	}
	return out
}

// ToLinearTransformationInverse returns the inverse of the implied linear
// map. reset restores the model to the identity afterwards.
func (g *Gaussian) ToLinearTransformationInverse(reset bool) *mat.Dense {
	if g.dirty {
		g.refresh()
	}
	eye := mat.NewDense(g.dim, g.dim, nil)
	for i := 0; i < g.dim; i++ {
		eye.Set(i, i, 1)
	}
	out := mat.NewDense(g.dim, g.dim, nil)
	if err := out.Solve(g.lower, eye); err != nil {
		slog.Error("Factor inversion failed", "error", err)
	}
	if reset {
		g.setIdentity()
	}
	return out
}

// InverseHessianScalarCorrection fits the scalar alpha in
// f(x) ~= (x-mean)' (alpha*C)^-1 (x-mean) by least squares over the batch,
// after removing the batch's best value as the model offset. Returns 1 when
// the batch carries no usable curvature signal.
func (g *Gaussian) InverseHessianScalarCorrection(mean []float64, X [][]float64, f []float64) float64 {
	if len(X) == 0 || len(X) != len(f) {
		return 1
	}
	fmin := floats.Min(f)

	var num, den float64
	diff := make([]float64, g.dim)
	for i, x := range X {
		floats.SubTo(diff, x, mean)
		d := g.Norm(diff)
		d *= d
		num += (f[i] - fmin) * d
		den += d * d
	}
	if den == 0 || num <= 0 {
		return 1
	}
	// f - fmin ~= d/alpha, so 1/alpha is the slope of f over d.
	return den / num
}

// Scale multiplies the covariance by factor in place.
func (g *Gaussian) Scale(factor float64) {
	g.cov.ScaleSym(factor, g.cov)
	g.dirty = true
}

func identitySym(n int) *mat.SymDense {
	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		s.SetSym(i, i, 1)
	}
	return s
}
