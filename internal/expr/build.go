package expr

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/born-ml/scalargrad/internal/autodiff"
	"github.com/born-ml/scalargrad/internal/autodiff/ops"
)

// Graph is an expression built into an autodiff graph.
type Graph struct {
	Root   *autodiff.Value
	Leaves map[string]*autodiff.Value // one labelled leaf per variable
}

// Backward runs a backward pass from the root and returns the gradient of
// the root with respect to each variable.
func (g *Graph) Backward() map[string]float64 {
	g.Root.Backward()
	return g.Gradients()
}

// Gradients returns the current gradient of each variable leaf.
func (g *Graph) Gradients() map[string]float64 {
	grads := make(map[string]float64, len(g.Leaves))
	for name, leaf := range g.Leaves {
		grads[name] = leaf.Grad()
	}
	return grads
}

// Build creates a fresh graph with leaves taken from env.
//
// A variable that occurs several times maps to a single leaf, so its
// gradient sums the contributions of every occurrence.
func (e *Expr) Build(env map[string]float64, opts ...BuildOption) (*Graph, error) {
	b := &builder{
		env:    env,
		leaves: make(map[string]*autodiff.Value, len(e.vars)),
	}
	for _, opt := range opts {
		opt(b)
	}

	root, err := b.build(e.root)
	if err != nil {
		return nil, errors.Wrapf(err, "build %q", e.src)
	}
	if b.labelRoot != "" {
		root.SetLabel(b.labelRoot)
	}
	return &Graph{Root: root, Leaves: b.leaves}, nil
}

// BuildOption configures Build.
type BuildOption func(*builder)

// WithIntermediateLabels labels every operation node with the sub-expression
// it computes.
func WithIntermediateLabels() BuildOption {
	return func(b *builder) { b.labelIntermediate = true }
}

// WithRootLabel labels the root node.
func WithRootLabel(label string) BuildOption {
	return func(b *builder) { b.labelRoot = label }
}

// WithLeaves makes the named variables use the given leaves instead of new
// ones built from env. The leaves keep their own values and labels.
func WithLeaves(leaves map[string]*autodiff.Value) BuildOption {
	return func(b *builder) {
		for name, leaf := range leaves {
			b.leaves[name] = leaf
		}
	}
}

// WithLabels overrides the label of individual variable leaves.
func WithLabels(labels map[string]string) BuildOption {
	return func(b *builder) { b.labels = labels }
}

type builder struct {
	env               map[string]float64
	leaves            map[string]*autodiff.Value
	labels            map[string]string
	labelIntermediate bool
	labelRoot         string
}

func (b *builder) build(n Node) (*autodiff.Value, error) {
	switch n := n.(type) {
	case *Num:
		return autodiff.New(n.Val), nil

	case *Var:
		if leaf, ok := b.leaves[n.Name]; ok {
			return leaf, nil
		}
		x, ok := b.env[n.Name]
		if !ok {
			return nil, errors.Wrapf(ErrUndefinedVariable, "%q", n.Name)
		}
		label := n.Name
		if l, ok := b.labels[n.Name]; ok && l != "" {
			label = l
		}
		leaf := autodiff.New(x, autodiff.WithLabel(label))
		b.leaves[n.Name] = leaf
		return leaf, nil

	case *Call:
		x, err := b.build(n.X)
		if err != nil {
			return nil, err
		}
		return b.apply(n, ops.Of(n.Kind), x)

	case *Power:
		x, err := b.build(n.X)
		if err != nil {
			return nil, err
		}
		return b.apply(n, ops.PowOf(n.N), x)

	case *Binary:
		l, err := b.build(n.L)
		if err != nil {
			return nil, err
		}
		r, err := b.build(n.R)
		if err != nil {
			return nil, err
		}
		return b.apply(n, ops.Of(n.Kind), l, r)

	default:
		panic(fmt.Sprintf("expr: unknown node %T", n))
	}
}

func (b *builder) apply(n Node, op ops.Op, operands ...any) (*autodiff.Value, error) {
	v, err := autodiff.Apply(op, operands...)
	if err != nil {
		return nil, err
	}
	if b.labelIntermediate {
		v.SetLabel(n.String())
	}
	return v, nil
}

// Eval evaluates the expression with plain floats, without building a graph.
func (e *Expr) Eval(env map[string]float64) (float64, error) {
	x, err := eval(e.root, env)
	if err != nil {
		return 0, errors.Wrapf(err, "eval %q", e.src)
	}
	return x, nil
}

func eval(n Node, env map[string]float64) (float64, error) {
	switch n := n.(type) {
	case *Num:
		return n.Val, nil
	case *Var:
		x, ok := env[n.Name]
		if !ok {
			return 0, errors.Wrapf(ErrUndefinedVariable, "%q", n.Name)
		}
		return x, nil
	case *Call:
		x, err := eval(n.X, env)
		if err != nil {
			return 0, err
		}
		return ops.Of(n.Kind).Forward([]float64{x}), nil
	case *Power:
		x, err := eval(n.X, env)
		if err != nil {
			return 0, err
		}
		return ops.PowOf(n.N).Forward([]float64{x}), nil
	case *Binary:
		l, err := eval(n.L, env)
		if err != nil {
			return 0, err
		}
		r, err := eval(n.R, env)
		if err != nil {
			return 0, err
		}
		return ops.Of(n.Kind).Forward([]float64{l, r}), nil
	default:
		panic(fmt.Sprintf("expr: unknown node %T", n))
	}
}
