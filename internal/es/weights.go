package es

import "math"

// RecombinationWeights returns the positive log-rank weights for a
// population of size lambda: the best mu = lambda/2 candidates receive
// weights proportional to log((lambda+1)/2) - log(rank), normalized to sum
// to one; the rest receive zero.
func RecombinationWeights(lambda int) []float64 {
	mu := lambda / 2
	if mu < 1 {
		mu = 1
	}
	weights := make([]float64, lambda)
	sum := 0.0
	for i := 0; i < mu; i++ {
		w := math.Log(float64(lambda+1)/2) - math.Log(float64(i+1))
		if w < 0 {
			w = 0
		}
		weights[i] = w
		sum += w
	}
	if sum == 0 {
		weights[0] = 1
		return weights
	}
	for i := 0; i < mu; i++ {
		weights[i] /= sum
	}
	return weights
}

// Mu counts the strictly positive entries of a weights vector.
func Mu(weights []float64) int {
	mu := 0
	for _, w := range weights {
		if w > 0 {
			mu++
		}
	}
	return mu
}
