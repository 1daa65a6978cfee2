package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/born-ml/scalargrad/internal/autodiff"
)

// ErrNonFinite means the loss or a gradient became NaN or ±Inf.
var ErrNonFinite = errors.New("optim: non-finite loss or gradient")

// Func builds a graph from the given parameter leaves and returns the loss.
// It is called once per step and must build a new graph each time.
type Func func(x []*autodiff.Value) *autodiff.Value

// MinimizeConfig controls the optimization loop.
type MinimizeConfig struct {
	Steps     int      // Maximum optimizer steps (default: 1000)
	Tolerance float64  // Stop once every |gradient| <= Tolerance (default: 1e-8, negative disables)
	Labels    []string // Optional labels for the parameter leaves
}

// Result is the state of the last evaluated point.
type Result struct {
	X         []float64 `json:"x" yaml:"x"`
	Loss      float64   `json:"loss" yaml:"loss"`
	Grad      []float64 `json:"grad" yaml:"grad"`
	Steps     int       `json:"steps" yaml:"steps"`
	Converged bool      `json:"converged" yaml:"converged"`
	History   []float64 `json:"history" yaml:"history"` // loss at every evaluated point
}

// Minimize runs opt on f starting from x0 until the gradient is within
// tolerance or the step budget is spent.
//
// Each iteration builds a fresh graph, runs one backward pass and hands the
// leaf gradients to opt. The returned Result describes the last point
// evaluated; it is populated even when an error is returned.
func Minimize(ctx context.Context, f Func, x0 []float64, opt Optimizer, cfg MinimizeConfig) (Result, error) {
	if cfg.Steps == 0 {
		cfg.Steps = 1000
	}
	if cfg.Tolerance == 0 {
		cfg.Tolerance = 1e-8
	}

	x := append([]float64(nil), x0...)
	grads := make([]float64, len(x))
	var res Result

	for step := 0; ; step++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		leaves := make([]*autodiff.Value, len(x))
		for i, xi := range x {
			leaves[i] = autodiff.New(xi)
			if i < len(cfg.Labels) {
				leaves[i].SetLabel(cfg.Labels[i])
			}
		}
		root := f(leaves)
		root.Backward()

		finite := isFinite(root.Data())
		for i, leaf := range leaves {
			grads[i] = leaf.Grad()
			finite = finite && isFinite(grads[i])
		}

		res.X = append(res.X[:0], x...)
		res.Grad = append(res.Grad[:0], grads...)
		res.Loss = root.Data()
		res.Steps = step
		res.History = append(res.History, res.Loss)

		if !finite {
			return res, fmt.Errorf("%w at step %d, x=%v", ErrNonFinite, step, x)
		}
		if maxAbs(grads) <= cfg.Tolerance {
			res.Converged = true
			return res, nil
		}
		if step == cfg.Steps {
			return res, nil
		}
		opt.Step(x, grads)
	}
}

func maxAbs(xs []float64) float64 {
	var m float64
	for _, x := range xs {
		m = max(m, math.Abs(x))
	}
	return m
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
