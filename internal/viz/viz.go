// Package viz renders autodiff graphs with Graphviz.
//
// It only reads the graph: values, gradients, operands, ops and labels.
// Each value becomes a record node showing its label (or value) and gradient.
// Each op becomes a circle between its operands and its result:
//
//	operand ──▶ (op) ──▶ result
package viz

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/exec"
	"strconv"
	"strings"

	"github.com/emicklei/dot"

	"github.com/born-ml/scalargrad/internal/autodiff"
)

// Palette.
const (
	ValueColor = "#8ecae6"
	OpColor    = "#ffb703"
	GradColor  = "#219ebc"
	LeafColor  = "#d9ed92"
)

// ErrGraphvizNotFound means a non-DOT format was requested but the graphviz
// binary is not installed.
var ErrGraphvizNotFound = errors.New("viz: graphviz 'dot' binary not found")

// Options controls rendering.
type Options struct {
	Precision    int    // significant digits for values and gradients
	RankDir      string // Graphviz rankdir, e.g. "LR" or "TB"
	GraphvizPath string // path of the dot binary; looked up on $PATH if empty
}

// Option configures rendering.
type Option func(*Options)

// WithPrecision sets the number of significant digits.
func WithPrecision(p int) Option {
	return func(o *Options) {
		if p > 0 {
			o.Precision = p
		}
	}
}

// WithRankDir sets the layout direction.
func WithRankDir(dir string) Option {
	return func(o *Options) { o.RankDir = dir }
}

// WithGraphvizPath sets the dot binary used by Render.
func WithGraphvizPath(path string) Option {
	return func(o *Options) { o.GraphvizPath = path }
}

func buildOptions(opts []Option) Options {
	o := Options{Precision: 4, RankDir: "LR"}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// DOT builds the Graphviz graph of everything reachable from root.
func DOT(root *autodiff.Value, opts ...Option) *dot.Graph {
	o := buildOptions(opts)

	g := dot.NewGraph(dot.Directed)
	g.Attr("bgcolor", "white")
	if o.RankDir != "" {
		g.Attr("rankdir", o.RankDir)
	}

	nodes := make(map[*autodiff.Value]dot.Node)
	root.Walk(func(v *autodiff.Value) bool {
		n := g.Node(nodeID(v)).
			Attr("shape", "record").
			Attr("style", "filled").
			Attr("fontname", "Helvetica").
			Attr("fontsize", "12").
			Attr("label", quoted(recordLabel(v, o.Precision)))
		if v.IsLeaf() {
			n.Attr("fillcolor", LeafColor)
		} else {
			n.Attr("fillcolor", ValueColor)
		}
		nodes[v] = n

		op, ok := v.Op()
		if !ok {
			return true
		}
		opNode := g.Node(opID(v)).
			Attr("shape", "circle").
			Attr("style", "filled").
			Attr("fillcolor", OpColor).
			Attr("fontsize", "16").
			Attr("label", quoted(op.String()))
		g.Edge(opNode, n).Attr("color", OpColor).Attr("penwidth", "2")

		// Operands come first in topological order, so they already exist.
		for _, operand := range v.Operands() {
			g.Edge(nodes[operand], opNode).Attr("color", GradColor).Attr("penwidth", "2")
		}
		return true
	})

	return g
}

// Render writes root's graph in the given format. "dot" (or "gv") writes the
// DOT source; any other format (svg, png, pdf, ...) is produced by the
// graphviz binary.
func Render(ctx context.Context, root *autodiff.Value, w io.Writer, format string, opts ...Option) error {
	g := DOT(root, opts...)
	src := g.String()

	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" || format == "dot" || format == "gv" {
		_, err := io.WriteString(w, src)
		return err
	}

	o := buildOptions(opts)
	bin := o.GraphvizPath
	if bin == "" {
		path, err := exec.LookPath("dot")
		if err != nil {
			return ErrGraphvizNotFound
		}
		bin = path
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "-T"+format)
	cmd.Stdin = strings.NewReader(src)
	cmd.Stdout = w
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return ErrGraphvizNotFound
		}
		return fmt.Errorf("viz: graphviz -T%s: %w: %s", format, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

func nodeID(v *autodiff.Value) string {
	return "v" + strconv.FormatUint(v.ID(), 10)
}

func opID(v *autodiff.Value) string {
	return "op" + strconv.FormatUint(v.ID(), 10)
}

// recordLabel is "label|grad=g" or "value=x|grad=g".
func recordLabel(v *autodiff.Value, precision int) string {
	head := v.Label()
	if head == "" {
		head = "value=" + formatFloat(v.Data(), precision)
	}
	return escapeRecord(head) + "|grad=" + formatFloat(v.Grad(), precision)
}

func formatFloat(x float64, precision int) string {
	return strconv.FormatFloat(x, 'g', precision, 64)
}

// quoted produces a DOT string literal, leaving backslash escapes intact.
func quoted(s string) dot.Literal {
	return dot.Literal(`"` + strings.ReplaceAll(s, `"`, `\"`) + `"`)
}

// escapeRecord protects characters that have meaning inside record labels.
func escapeRecord(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '{', '}', '|', '<', '>':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
