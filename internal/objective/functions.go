// Package objective provides standard benchmark objective functions for
// exercising and testing the optimizers.
package objective

import (
	"fmt"
	"math"
	"sort"
)

// Func is a scalar objective to be minimized.
type Func func(x []float64) float64

// Sphere is f(x) = sum x_i^2, minimal at the origin.
func Sphere(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return sum
}

// Elli is an ellipsoid with condition number 1e6, minimal at the origin.
func Elli(x []float64) float64 {
	n := len(x)
	if n == 1 {
		return x[0] * x[0]
	}
	var sum float64
	for i, v := range x {
		sum += math.Pow(1e6, float64(i)/float64(n-1)) * v * v
	}
	return sum
}

// Rosenbrock is the banana-valley function, minimal at (1, ..., 1).
func Rosenbrock(x []float64) float64 {
	var sum float64
	for i := 0; i+1 < len(x); i++ {
		a := x[i+1] - x[i]*x[i]
		b := 1 - x[i]
		sum += 100*a*a + b*b
	}
	return sum
}

// Rastrigin is highly multimodal, minimal at the origin.
func Rastrigin(x []float64) float64 {
	sum := 10 * float64(len(x))
	for _, v := range x {
		sum += v*v - 10*math.Cos(2*math.Pi*v)
	}
	return sum
}

var registry = map[string]Func{
	"sphere":     Sphere,
	"elli":       Elli,
	"rosenbrock": Rosenbrock,
	"rastrigin":  Rastrigin,
}

// ByName looks up a benchmark function by its registry name.
func ByName(name string) (Func, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown objective %q (available: %v)", name, Names())
	}
	return f, nil
}

// Names lists the registered benchmark functions in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
