// Package gradcheck verifies analytic gradients against finite differences.
//
// For a graph builder f and a point x, Check compares the gradient produced by
// one backward pass with the central difference
//
//	(f(x + ε·eᵢ) - f(x - ε·eᵢ)) / 2ε
//
// for every input i. The forward value of a freshly built graph is the
// oracle, so the check exercises every backward rule the graph uses.
package gradcheck

import (
	"errors"
	"fmt"
	"math"

	"github.com/born-ml/scalargrad/internal/autodiff"
)

// Default finite-difference settings.
const (
	DefaultEpsilon   = 1e-6
	DefaultTolerance = 1e-4
)

var (
	// ErrMismatch means an analytic gradient disagrees with the numerical one.
	ErrMismatch = errors.New("gradcheck: gradient mismatch")

	// ErrNonFinite means the function or a gradient is NaN or ±Inf at the point.
	ErrNonFinite = errors.New("gradcheck: non-finite value")
)

// Func builds a graph from the given leaves and returns its root.
// It is called several times per check and must build a new graph each time.
type Func func(x []*autodiff.Value) *autodiff.Value

// Options holds the finite-difference settings.
type Options struct {
	Epsilon   float64 // step size ε
	Tolerance float64 // allowed |analytic - numeric| / max(1, |numeric|)
}

// Option configures a check.
type Option func(*Options)

// WithEpsilon sets the finite-difference step.
func WithEpsilon(eps float64) Option {
	return func(o *Options) {
		if eps > 0 {
			o.Epsilon = eps
		}
	}
}

// WithTolerance sets the relative tolerance.
func WithTolerance(tol float64) Option {
	return func(o *Options) {
		if tol > 0 {
			o.Tolerance = tol
		}
	}
}

func buildOptions(opts []Option) Options {
	o := Options{Epsilon: DefaultEpsilon, Tolerance: DefaultTolerance}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// InputResult is the comparison for a single input.
type InputResult struct {
	Index    int     `json:"index" yaml:"index"`
	Analytic float64 `json:"analytic" yaml:"analytic"`
	Numeric  float64 `json:"numeric" yaml:"numeric"`
	AbsErr   float64 `json:"abs_err" yaml:"abs_err"`
	OK       bool    `json:"ok" yaml:"ok"`
}

// Report is the result of checking one function at one point.
type Report struct {
	Name   string        `json:"name" yaml:"name"`
	At     []float64     `json:"at" yaml:"at"`
	Value  float64       `json:"value" yaml:"value"`
	Inputs []InputResult `json:"inputs" yaml:"inputs"`
}

// OK reports whether every input passed.
func (r Report) OK() bool {
	for _, in := range r.Inputs {
		if !in.OK {
			return false
		}
	}
	return true
}

// Numerical returns the central-difference derivative of f with respect to
// at[i]. at is not modified.
func Numerical(f func([]float64) float64, at []float64, i int, eps float64) float64 {
	x := append([]float64(nil), at...)

	x[i] = at[i] + eps
	fPlus := f(x)

	x[i] = at[i] - eps
	fMinus := f(x)

	return (fPlus - fMinus) / (2 * eps)
}

// Evaluate builds the graph at the given point and returns its forward value.
func Evaluate(build Func, at []float64) float64 {
	return build(leaves(at)).Data()
}

// Check compares analytic and numerical gradients of build at the given point.
//
// The returned Report is always populated. The error wraps ErrNonFinite if a
// value or gradient is NaN/Inf, or ErrMismatch naming the first failing input.
func Check(build Func, at []float64, opts ...Option) (Report, error) {
	o := buildOptions(opts)

	x := leaves(at)
	root := build(x)
	root.Backward()

	report := Report{
		At:     append([]float64(nil), at...),
		Value:  root.Data(),
		Inputs: make([]InputResult, len(at)),
	}
	f := func(p []float64) float64 { return Evaluate(build, p) }

	var firstErr error
	for i := range at {
		analytic := x[i].Grad()
		numeric := Numerical(f, at, i, o.Epsilon)
		diff := math.Abs(analytic - numeric)

		in := InputResult{
			Index:    i,
			Analytic: analytic,
			Numeric:  numeric,
			AbsErr:   diff,
			OK:       diff <= o.Tolerance*math.Max(1, math.Abs(numeric)),
		}
		report.Inputs[i] = in

		if firstErr != nil {
			continue
		}
		switch {
		case !finite(report.Value) || !finite(analytic) || !finite(numeric):
			in.OK = false
			report.Inputs[i] = in
			firstErr = fmt.Errorf("%w: input %d at %v", ErrNonFinite, i, at)
		case !in.OK:
			firstErr = fmt.Errorf("%w: input %d at %v: analytic %g, numeric %g",
				ErrMismatch, i, at, analytic, numeric)
		}
	}

	return report, firstErr
}

func leaves(at []float64) []*autodiff.Value {
	x := make([]*autodiff.Value, len(at))
	for i, v := range at {
		x[i] = autodiff.New(v, autodiff.WithLabel(fmt.Sprintf("x%d", i)))
	}
	return x
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
