package problem

import (
	"context"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/born-ml/scalargrad/internal/autodiff"
	"github.com/born-ml/scalargrad/internal/expr"
	"github.com/born-ml/scalargrad/internal/optim"
)

// Fit is the result of minimising a problem's expression over its variables.
// The problem's variable values are the starting point.
type Fit struct {
	Name       string             `yaml:"name,omitempty"`
	Expression string             `yaml:"expression"`
	Start      map[string]float64 `yaml:"start"`
	X          map[string]float64 `yaml:"x"`
	Loss       float64            `yaml:"loss"`
	Gradients  map[string]float64 `yaml:"gradients"`
	Steps      int                `yaml:"steps"`
	Converged  bool               `yaml:"converged"`
}

// Minimize minimises the problem's expression with opt, starting from the
// problem's variables. The expression is parsed once; each step builds a new
// graph from it.
//
// On a non-finite loss the Fit of the last evaluated point is returned along
// with an error wrapping optim.ErrNonFinite.
func Minimize(ctx context.Context, p *Problem, opt optim.Optimizer, cfg optim.MinimizeConfig) (*Fit, error) {
	e, err := expr.Parse(p.Expression)
	if err != nil {
		return nil, err
	}

	names := e.Variables()
	x0 := make([]float64, len(names))
	for i, name := range names {
		v, ok := p.Variables[name]
		if !ok {
			return nil, fmt.Errorf("minimize %q: %w %q", p.Expression, expr.ErrUndefinedVariable, name)
		}
		x0[i] = v
	}
	cfg.Labels = make([]string, len(names))
	for i, name := range names {
		cfg.Labels[i] = name
		if l := p.Labels[name]; l != "" {
			cfg.Labels[i] = l
		}
	}

	var buildErr error
	f := func(x []*autodiff.Value) *autodiff.Value {
		leaves := make(map[string]*autodiff.Value, len(names))
		for i, name := range names {
			leaves[name] = x[i]
		}
		g, err := e.Build(nil, expr.WithLeaves(leaves))
		if err != nil {
			buildErr = err
			return autodiff.New(0)
		}
		return g.Root
	}

	res, err := optim.Minimize(ctx, f, x0, opt, cfg)
	if buildErr != nil {
		return nil, buildErr
	}

	fit := &Fit{
		Name:       p.Name,
		Expression: p.Expression,
		Start:      byName(names, x0),
		X:          byName(names, res.X),
		Loss:       res.Loss,
		Gradients:  byName(names, res.Grad),
		Steps:      res.Steps,
		Converged:  res.Converged,
	}
	return fit, err
}

func byName(names []string, xs []float64) map[string]float64 {
	m := make(map[string]float64, len(names))
	for i, name := range names {
		if i < len(xs) {
			m[name] = xs[i]
		}
	}
	return m
}

// Map returns the fit as generic JSON-like data.
func (f *Fit) Map() map[string]any {
	m := map[string]any{
		"expression": f.Expression,
		"start":      floatMap(f.Start),
		"x":          floatMap(f.X),
		"loss":       f.Loss,
		"gradients":  floatMap(f.Gradients),
		"steps":      int64(f.Steps),
		"converged":  f.Converged,
	}
	if f.Name != "" {
		m["name"] = f.Name
	}
	return m
}

// WriteText writes the fit as aligned "key: value" lines.
func (f *Fit) WriteText(w io.Writer) error {
	names := make([]string, 0, len(f.X))
	for name := range f.X {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if f.Name != "" {
		fmt.Fprintf(tw, "name:\t%s\n", f.Name)
	}
	fmt.Fprintf(tw, "expression:\t%s\n", f.Expression)
	fmt.Fprintf(tw, "loss:\t%s\n", formatFloat(f.Loss))
	fmt.Fprintf(tw, "steps:\t%d\n", f.Steps)
	fmt.Fprintf(tw, "converged:\t%t\n", f.Converged)
	for _, name := range names {
		fmt.Fprintf(tw, "%s:\t%s\t(from %s, grad %s)\n", name,
			formatFloat(f.X[name]), formatFloat(f.Start[name]), formatFloat(f.Gradients[name]))
	}
	return tw.Flush()
}

func floatMap(m map[string]float64) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
