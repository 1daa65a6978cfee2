package problem

import (
	"fmt"
	"sort"

	"github.com/born-ml/scalargrad/internal/autodiff"
	"github.com/born-ml/scalargrad/internal/expr"
)

// Report is the result of solving a problem.
type Report struct {
	Name       string             `yaml:"name,omitempty"`
	Expression string             `yaml:"expression"`
	Value      float64            `yaml:"value"`
	Gradients  map[string]float64 `yaml:"gradients"`
	Nodes      int                `yaml:"nodes"`
	NonFinite  []string           `yaml:"non_finite,omitempty"` // labels, or op#id, of nodes holding NaN or ±Inf
}

// Solve builds the problem's graph, runs a backward pass and reports the
// value and the gradient with respect to every variable.
func Solve(p *Problem) (*Report, error) {
	g, err := p.Build()
	if err != nil {
		return nil, err
	}
	return NewReport(p, g), nil
}

// NewReport runs a backward pass on g and summarises it.
func NewReport(p *Problem, g *expr.Graph) *Report {
	grads := g.Backward()

	r := &Report{
		Name:       p.Name,
		Expression: p.Expression,
		Value:      g.Root.Data(),
		Gradients:  grads,
		Nodes:      len(g.Root.Nodes()),
	}
	for _, n := range g.Root.NonFinite() {
		r.NonFinite = append(r.NonFinite, nodeName(n))
	}
	return r
}

// nodeName identifies n in reports: its label if set, else "<op>#<id>"
// ("leaf#<id>" for inputs).
func nodeName(n *autodiff.Value) string {
	if l := n.Label(); l != "" {
		return l
	}
	kind := "leaf"
	if op, ok := n.Op(); ok {
		kind = op.Kind.Name()
	}
	return fmt.Sprintf("%s#%d", kind, n.ID())
}

// Variables returns the variable names in sorted order.
func (r *Report) Variables() []string {
	names := make([]string, 0, len(r.Gradients))
	for name := range r.Gradients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Map returns the report as generic JSON-like data.
func (r *Report) Map() map[string]any {
	m := map[string]any{
		"expression": r.Expression,
		"value":      r.Value,
		"gradients":  floatMap(r.Gradients),
		"nodes":      int64(r.Nodes),
	}
	if r.Name != "" {
		m["name"] = r.Name
	}
	if len(r.NonFinite) > 0 {
		bad := make([]any, len(r.NonFinite))
		for i, s := range r.NonFinite {
			bad[i] = s
		}
		m["non_finite"] = bad
	}
	return m
}
