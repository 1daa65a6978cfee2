package gradcheck

import (
	"context"
	"fmt"
	"math"

	"github.com/born-ml/scalargrad/internal/autodiff"
	"github.com/born-ml/scalargrad/internal/autodiff/ops"
	"github.com/born-ml/scalargrad/internal/parallel"
)

// Case is a named function checked at several points.
type Case struct {
	Name   string
	Kind   ops.Kind
	Build  Func
	Points [][]float64
}

func binaryCase(k ops.Kind, points ...[]float64) Case {
	return Case{
		Name: k.Name(),
		Kind: k,
		Build: func(x []*autodiff.Value) *autodiff.Value {
			v, err := autodiff.Apply(ops.Of(k), x[0], x[1])
			if err != nil {
				panic(err)
			}
			return v
		},
		Points: points,
	}
}

func unaryCase(k ops.Kind, points ...float64) Case {
	pts := make([][]float64, len(points))
	for i, p := range points {
		pts[i] = []float64{p}
	}
	return Case{
		Name: k.Name(),
		Kind: k,
		Build: func(x []*autodiff.Value) *autodiff.Value {
			v, err := autodiff.Apply(ops.Of(k), x[0])
			if err != nil {
				panic(err)
			}
			return v
		},
		Points: pts,
	}
}

func powCase(n float64, points ...float64) Case {
	c := unaryCase(ops.Pow, points...)
	c.Name = fmt.Sprintf("pow(n=%g)", n)
	c.Build = func(x []*autodiff.Value) *autodiff.Value {
		return x[0].Pow(n)
	}
	return c
}

// Cases returns the built-in sweep: every operation at negative, fractional
// and near-boundary points inside its domain, plus composite graphs with
// shared operands.
func Cases() []Case {
	return []Case{
		binaryCase(ops.Add, []float64{1, 2}, []float64{-3.5, 0.25}, []float64{0, 0.5}),
		binaryCase(ops.Sub, []float64{1, 2}, []float64{-3.5, 0.25}, []float64{0, 0.5}),
		binaryCase(ops.Mul, []float64{1, 2}, []float64{-3.5, 0.25}, []float64{0, 0.5}),
		binaryCase(ops.Div, []float64{1, 2}, []float64{-3.5, 0.25}, []float64{0.1, -0.7}),
		powCase(2, -1.5, 0.5, 3),
		powCase(3, -0.75, 0, 2),
		powCase(0.5, 0.3, 1, 4),
		powCase(-1, -0.5, 0.25, 2),
		binaryCase(ops.PowValue, []float64{2, 3}, []float64{0.5, 1.5}, []float64{1.7, -0.4}),
		unaryCase(ops.Neg, -2.5, 0, 1),
		unaryCase(ops.Sin, -1.2, 0, math.Pi/6, 3),
		unaryCase(ops.Cos, -1.2, 0, math.Pi/3, 3),
		unaryCase(ops.Tan, -1.2, 0, math.Pi/4, 1.5),
		unaryCase(ops.Cot, -1.2, 0.3, math.Pi/4, 3),
		unaryCase(ops.Sinh, -2.5, 0, 1),
		unaryCase(ops.Cosh, -2.5, 0, 1),
		unaryCase(ops.Tanh, -1.5, 0, 0.5),
		unaryCase(ops.Coth, -2, 0.5, 1),
		unaryCase(ops.Exp, -2, 0, 1),
		unaryCase(ops.Log, 0.5, 1, 3, 10),
		{
			Name: "diamond",
			Build: func(x []*autodiff.Value) *autodiff.Value {
				a := x[0]
				return a.Mul(a).Mul(a.Add(a))
			},
			Points: [][]float64{{-1.5}, {0.5}, {2}},
		},
		{
			Name: "composite",
			Build: func(x []*autodiff.Value) *autodiff.Value {
				return x[0].Sin().Exp().Mul(x[1].Cosh()).Add(x[0].Add(x[1]).Log())
			},
			Points: [][]float64{{0.5, 1}, {1.2, 0.3}},
		},
	}
}

// Result pairs a case with its report at one point.
type Result struct {
	Case   string `json:"case" yaml:"case"`
	Report Report `json:"report" yaml:"report"`
	Err    error  `json:"-" yaml:"-"`
}

// Sweep checks every case at every point. Each check builds its own graph,
// so points run in parallel according to cfg.
//
// Results are returned in case/point order. The error is ctx.Err() if the
// sweep was cancelled, or wraps ErrMismatch/ErrNonFinite if any check failed.
func Sweep(ctx context.Context, cases []Case, cfg parallel.Config, opts ...Option) ([]Result, error) {
	type job struct {
		c  int
		at []float64
	}
	var jobs []job
	for ci, c := range cases {
		for _, at := range c.Points {
			jobs = append(jobs, job{c: ci, at: at})
		}
	}

	results := make([]Result, len(jobs))
	err := parallel.ForErr(len(jobs), func(i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		j := jobs[i]
		report, err := Check(cases[j.c].Build, j.at, opts...)
		report.Name = cases[j.c].Name
		results[i] = Result{Case: cases[j.c].Name, Report: report, Err: err}
		return nil
	}, cfg)
	if err != nil {
		return nil, err
	}

	var failed int
	var first error
	for _, r := range results {
		if r.Err != nil {
			failed++
			if first == nil {
				first = r.Err
			}
		}
	}
	if failed > 0 {
		return results, fmt.Errorf("%d of %d checks failed, first: %w", failed, len(results), first)
	}
	return results, nil
}
