package expr_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/scalargrad/internal/autodiff"
	"github.com/born-ml/scalargrad/internal/autodiff/ops"
	"github.com/born-ml/scalargrad/internal/expr"
)

func TestParse_Precedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"a - b - c", "((a - b) - c)"},
		{"a / b * c", "((a / b) * c)"},
		{"x^2", "(x ** 2)"},
		{"x**2", "(x ** 2)"},
		{"-x^2", "(-(x ** 2))"},
		{"x^-1", "(x ** -1)"},
		{"x^y", "(x ** y)"},
		{"2^3^2", "(2 ** (3 ** 2))"},
		{"sin(x) * cos(y)", "(sin(x) * cos(y))"},
		{"exp(-x)", "exp((-x))"},
		{"-3", "-3"},
		{"2 * pi", "(2 * 3.141592653589793)"},
		{"1.5e-3 + x", "(0.0015 + x)"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			e, err := expr.Parse(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.String())
			assert.Equal(t, tt.src, e.Source())
		})
	}
}

func TestParse_PowerNodes(t *testing.T) {
	e := expr.MustParse("x^3")
	p, ok := e.Root().(*expr.Power)
	require.True(t, ok)
	assert.Equal(t, 3.0, p.N)

	e = expr.MustParse("x^y")
	b, ok := e.Root().(*expr.Binary)
	require.True(t, ok)
	assert.Equal(t, ops.PowValue, b.Kind)
}

func TestParse_Variables(t *testing.T) {
	e := expr.MustParse("z * sin(x) + x / y_1 + pi")
	assert.Equal(t, []string{"x", "y_1", "z"}, e.Variables())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		src    string
		target error
	}{
		{"", expr.ErrSyntax},
		{"1 +", expr.ErrSyntax},
		{"(x", expr.ErrSyntax},
		{"x)", expr.ErrSyntax},
		{"2x", expr.ErrSyntax},
		{"x $ y", expr.ErrSyntax},
		{".", expr.ErrSyntax},
		{"sin x", expr.ErrSyntax},
		{"relu(x)", expr.ErrUnknownFunction},
		{"pow(x)", expr.ErrUnknownFunction},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := expr.Parse(tt.src)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestParse_SyntaxErrorPosition(t *testing.T) {
	_, err := expr.Parse("x + * y")

	var syn *expr.SyntaxError
	require.ErrorAs(t, err, &syn)
	assert.Equal(t, 4, syn.Pos)
	assert.Contains(t, err.Error(), `parse "x + * y"`)
}

func TestBuild_Quadratic(t *testing.T) {
	g, err := expr.MustParse("x^2 + 2*x + 1").Build(map[string]float64{"x": 3})
	require.NoError(t, err)

	grads := g.Backward()
	assert.InDelta(t, 16.0, g.Root.Data(), 1e-12)
	assert.InDelta(t, 8.0, grads["x"], 1e-12)
	assert.Equal(t, "x", g.Leaves["x"].Label())
}

func TestBuild_SharedVariableAccumulates(t *testing.T) {
	// b = a*a, c = a+a, y = b*c
	g, err := expr.MustParse("(a*a) * (a+a)").Build(map[string]float64{"a": 2})
	require.NoError(t, err)

	grads := g.Backward()
	assert.Equal(t, 16.0, g.Root.Data())
	assert.Equal(t, 24.0, grads["a"])
	assert.Len(t, g.Leaves, 1)
}

func TestBuild_PowValueGradients(t *testing.T) {
	g, err := expr.MustParse("x^y").Build(map[string]float64{"x": 2, "y": 3})
	require.NoError(t, err)

	grads := g.Backward()
	assert.InDelta(t, 8.0, g.Root.Data(), 1e-12)
	assert.InDelta(t, 12.0, grads["x"], 1e-9)
	assert.InDelta(t, 8*math.Ln2, grads["y"], 1e-9)
}

func TestBuild_UndefinedVariable(t *testing.T) {
	_, err := expr.MustParse("x + y").Build(map[string]float64{"x": 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, expr.ErrUndefinedVariable)
	assert.Contains(t, err.Error(), `"y"`)
}

func TestBuild_Labels(t *testing.T) {
	e := expr.MustParse("sin(t) + cos(t)")
	g, err := e.Build(map[string]float64{"t": 0.5},
		expr.WithIntermediateLabels(),
		expr.WithRootLabel("f"),
		expr.WithLabels(map[string]string{"t": "θ"}),
	)
	require.NoError(t, err)

	assert.Equal(t, "f", g.Root.Label())
	assert.Equal(t, "θ", g.Leaves["t"].Label())
	operands := g.Root.Operands()
	require.Len(t, operands, 2)
	assert.Equal(t, "sin(t)", operands[0].Label())
	assert.Equal(t, "cos(t)", operands[1].Label())

	grads := g.Backward()
	assert.InDelta(t, math.Cos(0.5)-math.Sin(0.5), grads["t"], 1e-12)
}

func TestBuild_WithLeaves(t *testing.T) {
	x := autodiff.New(4, autodiff.WithLabel("p0"))

	g, err := expr.MustParse("x * x + y").Build(map[string]float64{"y": 1},
		expr.WithLeaves(map[string]*autodiff.Value{"x": x}))
	require.NoError(t, err)

	g.Backward()
	assert.Equal(t, 17.0, g.Root.Data())
	assert.Equal(t, 8.0, x.Grad())
	assert.Same(t, x, g.Leaves["x"])
	assert.Equal(t, "p0", x.Label())
}

func TestEval_MatchesGraph(t *testing.T) {
	srcs := []string{
		"exp(sin(x)) * cosh(y) + log(x + y)",
		"((a + b) * (c - a) / b) ^ 2",
		"tanh(x) - coth(y) + cot(x) * tan(y) / sinh(x)",
		"-x ^ 3 + 2 ^ y",
	}
	env := map[string]float64{"x": 0.5, "y": 1, "a": 1.5, "b": -2, "c": 0.5}

	for _, src := range srcs {
		e := expr.MustParse(src)
		want, err := e.Eval(env)
		require.NoError(t, err)

		g, err := e.Build(env)
		require.NoError(t, err)
		assert.Equal(t, want, g.Root.Data(), src)
	}
}

func TestEval_UndefinedVariable(t *testing.T) {
	_, err := expr.MustParse("q * 2").Eval(nil)
	assert.ErrorIs(t, err, expr.ErrUndefinedVariable)
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { expr.MustParse("1 +") })
}
