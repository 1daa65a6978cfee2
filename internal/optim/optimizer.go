// Package optim implements first-order optimizers over scalar parameters.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Gradient descent with momentum
//   - Adam: Adaptive Moment Estimation
//   - Minimize: a loop that rebuilds the graph, differentiates it and steps
//
// Parameters are plain float64 slices. A graph's leaf values never change
// after construction, so every step builds a fresh graph from the updated
// parameters.
//
// Example usage:
//
//	f := func(x []*autodiff.Value) *autodiff.Value {
//	    return x[0].Sub(3).Pow(2) // (x-3)²
//	}
//	res, err := optim.Minimize(ctx, f, []float64{0},
//	    optim.NewAdam(optim.AdamConfig{LR: 0.1}),
//	    optim.MinimizeConfig{Steps: 500})
package optim

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step updates params in place from grads (same length).
	//
	// Example:
	//   root.Backward()
	//   optimizer.Step(params, grads)
	Step(params, grads []float64)

	// GetLR returns the current learning rate.
	//
	// Useful for monitoring and learning rate scheduling.
	GetLR() float64

	// SetLR updates the learning rate.
	SetLR(lr float64)
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float64 // Learning rate
}

// grow returns s extended with zeros to length n.
func grow(s []float64, n int) []float64 {
	if len(s) >= n {
		return s
	}
	return append(s, make([]float64, n-len(s))...)
}

func checkLengths(params, grads []float64) {
	if len(params) != len(grads) {
		panic("optim: params and grads have different lengths")
	}
}
