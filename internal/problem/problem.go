// Package problem reads differentiation problems from YAML and solves them.
//
// A problem file names an expression and the point to differentiate it at:
//
//	name: quadratic
//	expression: x^2 + 2*x + 1
//	variables:
//	  x: 3
//	labels:
//	  x: input
//	root_label: f
//
// Files are validated against an embedded JSON schema before decoding.
package problem

import (
	_ "embed"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"

	"github.com/born-ml/scalargrad/internal/expr"
)

//go:embed schema.json
var schemaJSON []byte

// ErrInvalidProblem means a problem file does not match the schema.
var ErrInvalidProblem = errors.New("problem: invalid problem")

// Problem is an expression together with the point to evaluate it at.
type Problem struct {
	Name       string             `yaml:"name,omitempty"`
	Expression string             `yaml:"expression"`
	Variables  map[string]float64 `yaml:"variables"`
	Labels     map[string]string  `yaml:"labels,omitempty"`
	RootLabel  string             `yaml:"root_label,omitempty"`
}

// Load reads and validates a problem file.
func Load(path string) (*Problem, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path is user-supplied by design
	if err != nil {
		return nil, errors.Wrap(err, "failed to read problem")
	}
	p, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return p, nil
}

// Parse validates and decodes a YAML problem document.
func Parse(data []byte) (*Problem, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse problem")
	}
	if doc == nil {
		return nil, errors.Wrap(ErrInvalidProblem, "empty document, expected an object")
	}
	if err := validate(doc); err != nil {
		return nil, err
	}

	var p Problem
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(err, "failed to decode problem")
	}
	return &p, nil
}

func validate(doc any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return errors.Wrap(err, "validation error")
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return errors.Wrap(ErrInvalidProblem, strings.Join(msgs, "; "))
}

// Build parses the expression and builds its graph at the problem's point.
// The problem's labels are applied before extra.
func (p *Problem) Build(extra ...expr.BuildOption) (*expr.Graph, error) {
	e, err := expr.Parse(p.Expression)
	if err != nil {
		return nil, err
	}

	opts := []expr.BuildOption{expr.WithLabels(p.Labels)}
	if p.RootLabel != "" {
		opts = append(opts, expr.WithRootLabel(p.RootLabel))
	}
	return e.Build(p.Variables, append(opts, extra...)...)
}
