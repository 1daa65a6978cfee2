package problem

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/ohler55/ojg/oj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/scalargrad/internal/expr"
	"github.com/born-ml/scalargrad/internal/optim"
)

const quadratic = `
name: quadratic
expression: x^2 + 2*x + 1
variables:
  x: 3
labels:
  x: input
root_label: f
`

func TestParse(t *testing.T) {
	p, err := Parse([]byte(quadratic))
	require.NoError(t, err)

	assert.Equal(t, "quadratic", p.Name)
	assert.Equal(t, "x^2 + 2*x + 1", p.Expression)
	assert.Equal(t, map[string]float64{"x": 3}, p.Variables)
	assert.Equal(t, "input", p.Labels["x"])
	assert.Equal(t, "f", p.RootLabel)
}

func TestParse_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"missing expression", "variables: {x: 1}\n", "expression"},
		{"missing variables", "expression: x\n", "variables"},
		{"non-numeric variable", "expression: x\nvariables: {x: two}\n", "number"},
		{"bad variable name", "expression: x\nvariables: {\"1x\": 1}\n", "1x"},
		{"unknown key", "expression: x\nvariables: {x: 1}\nepsilon: 2\n", "epsilon"},
		{"empty document", "", "object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidProblem)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quadratic.yaml")
	require.NoError(t, os.WriteFile(path, []byte(quadratic), 0o600))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "quadratic", p.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSolve(t *testing.T) {
	p, err := Parse([]byte(quadratic))
	require.NoError(t, err)

	r, err := Solve(p)
	require.NoError(t, err)

	assert.InDelta(t, 16.0, r.Value, 1e-12)
	assert.InDelta(t, 8.0, r.Gradients["x"], 1e-12)
	// x, x**2, 2, 2*x, x**2+2*x, 1, root
	assert.Equal(t, 7, r.Nodes)
	assert.Empty(t, r.NonFinite)
}

func TestSolve_NonFinite(t *testing.T) {
	r, err := Solve(&Problem{Expression: "log(x)", Variables: map[string]float64{"x": 0}})
	require.NoError(t, err)

	assert.True(t, math.IsInf(r.Value, -1))
	// leaf x has gradient 1/0, the root has value log(0)
	require.Len(t, r.NonFinite, 2)
	assert.Equal(t, "x", r.NonFinite[0])
	assert.Regexp(t, `^log#\d+$`, r.NonFinite[1])
}

func TestSolve_Errors(t *testing.T) {
	_, err := Solve(&Problem{Expression: "x +", Variables: map[string]float64{"x": 1}})
	assert.Error(t, err)

	_, err = Solve(&Problem{Expression: "x + y", Variables: map[string]float64{"x": 1}})
	assert.Error(t, err)
}

func solved(t *testing.T) *Report {
	t.Helper()
	r, err := Solve(&Problem{
		Name:       "product",
		Expression: "x * y",
		Variables:  map[string]float64{"x": 2, "y": 5},
	})
	require.NoError(t, err)
	return r
}

func TestEncode_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, solved(t), "text", ""))

	out := buf.String()
	assert.Contains(t, out, "name:")
	assert.Contains(t, out, "product")
	assert.Contains(t, out, "x * y")
	assert.Regexp(t, `value:\s+10\n`, out)
	assert.Regexp(t, `d/dx:\s+5\n`, out)
	assert.Regexp(t, `d/dy:\s+2\n`, out)
	assert.NotContains(t, out, "non-finite")
}

func TestEncode_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, solved(t), "json", ""))

	v, err := oj.ParseString(buf.String())
	require.NoError(t, err)
	m, ok := v.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "x * y", m["expression"])
	assert.EqualValues(t, 3, m["nodes"])

	grads, ok := m["gradients"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 5, grads["x"])
	assert.EqualValues(t, 2, grads["y"])
}

func TestEncode_JSON_NonFinite(t *testing.T) {
	r, err := Solve(&Problem{Expression: "log(x)", Variables: map[string]float64{"x": 0}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, r, "json", ""))

	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m), buf.String())
	assert.Equal(t, "-Inf", m["value"])
	assert.Equal(t, map[string]any{"x": "+Inf"}, m["gradients"])

	buf.Reset()
	r, err = Solve(&Problem{Expression: "log(x)", Variables: map[string]float64{"x": -1}})
	require.NoError(t, err)
	require.NoError(t, Encode(&buf, r, "json", "$.value"))
	assert.Equal(t, "\"NaN\"\n", buf.String())
}

func TestJSONSafe(t *testing.T) {
	in := map[string]any{
		"a": math.NaN(),
		"b": []any{1.5, math.Inf(-1)},
		"c": "text",
	}
	out := JSONSafe(in)

	assert.Equal(t, map[string]any{
		"a": "NaN",
		"b": []any{1.5, "-Inf"},
		"c": "text",
	}, out)
	assert.True(t, math.IsNaN(in["a"].(float64)))
}

func TestEncode_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, solved(t), "yaml", ""))

	var back Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, "product", back.Name)
	assert.Equal(t, 10.0, back.Value)
	assert.Equal(t, map[string]float64{"x": 5, "y": 2}, back.Gradients)
}

func TestEncode_Query(t *testing.T) {
	r := solved(t)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, r, "text", "$.gradients.x"))
	assert.Equal(t, "5\n", buf.String())

	buf.Reset()
	require.NoError(t, Encode(&buf, r, "text", "$.expression"))
	assert.Equal(t, "x * y\n", buf.String())

	buf.Reset()
	require.NoError(t, Encode(&buf, r, "json", "$.gradients"))
	v, err := oj.ParseString(buf.String())
	require.NoError(t, err)
	assert.Len(t, v, 2)
}

func TestEncode_QueryErrors(t *testing.T) {
	r := solved(t)
	var buf bytes.Buffer

	err := Encode(&buf, r, "text", "$.gradients.z")
	assert.ErrorContains(t, err, "matched nothing")

	err = Encode(&buf, r, "text", "$[")
	assert.ErrorContains(t, err, "invalid JSONPath")

	err = Encode(&buf, r, "xml", "")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestMinimize(t *testing.T) {
	p := &Problem{
		Name:       "bowl",
		Expression: "(x - 1)^2 + (y + 2)^2",
		Variables:  map[string]float64{"x": 0, "y": 0},
		Labels:     map[string]string{"x": "px"},
	}

	fit, err := Minimize(context.Background(), p, optim.NewSGD(optim.SGDConfig{LR: 0.1}), optim.MinimizeConfig{})
	require.NoError(t, err)

	assert.True(t, fit.Converged)
	assert.InDelta(t, 1.0, fit.X["x"], 1e-8)
	assert.InDelta(t, -2.0, fit.X["y"], 1e-8)
	assert.Equal(t, map[string]float64{"x": 0, "y": 0}, fit.Start)
	assert.InDelta(t, 0.0, fit.Loss, 1e-12)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, fit, "text", ""))
	assert.Contains(t, buf.String(), "converged:")
	assert.Contains(t, buf.String(), "true")

	buf.Reset()
	require.NoError(t, Encode(&buf, fit, "json", "$.x.y"))
	v, err := oj.ParseString(buf.String())
	require.NoError(t, err)
	assert.InDelta(t, -2.0, toFloat(t, v), 1e-6)
}

func TestMinimize_Errors(t *testing.T) {
	sgd := optim.NewSGD(optim.SGDConfig{})

	_, err := Minimize(context.Background(), &Problem{Expression: "x +"}, sgd, optim.MinimizeConfig{})
	assert.ErrorIs(t, err, expr.ErrSyntax)

	_, err = Minimize(context.Background(), &Problem{Expression: "x * y", Variables: map[string]float64{"x": 1}},
		sgd, optim.MinimizeConfig{})
	assert.ErrorIs(t, err, expr.ErrUndefinedVariable)

	fit, err := Minimize(context.Background(), &Problem{Expression: "log(x)", Variables: map[string]float64{"x": -1}},
		sgd, optim.MinimizeConfig{})
	assert.ErrorIs(t, err, optim.ErrNonFinite)
	require.NotNil(t, fit)
	assert.Equal(t, -1.0, fit.X["x"])
}

func toFloat(t *testing.T, v any) float64 {
	t.Helper()
	switch n := v.(type) {
	case int64:
		return float64(n)
	case float64:
		return n
	default:
		t.Fatalf("not a number: %T", v)
		return 0
	}
}
