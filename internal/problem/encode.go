package problem

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-yaml"
	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// Encodable is a result Encode can write.
type Encodable interface {
	// Map returns the result as generic JSON-like data.
	Map() map[string]any
	// WriteText writes the human-readable form.
	WriteText(w io.Writer) error
}

// Encode writes r in the given format (text, json or yaml). YAML is produced
// from r itself, so its struct tags apply. JSON has no NaN or infinity, so
// those are written as the strings "NaN", "+Inf" and "-Inf" (see JSONSafe).
//
// If query is not empty it is a JSONPath expression evaluated against the
// report, e.g. "$.gradients.x", and only the matches are written. A single
// match is written on its own; several are written as a list.
func Encode(w io.Writer, r Encodable, format, query string) error {
	var data any = r.Map()
	if query != "" {
		x, err := jp.ParseString(query)
		if err != nil {
			return fmt.Errorf("invalid JSONPath expression: %w", err)
		}
		results := x.Get(data)
		switch len(results) {
		case 0:
			return fmt.Errorf("query %q matched nothing", query)
		case 1:
			data = results[0]
		default:
			data = results
		}
	}

	switch format {
	case "json":
		_, err := fmt.Fprintln(w, oj.JSON(JSONSafe(data), jsonOptions(2)))
		return err

	case "yaml":
		if query == "" {
			data = r
		}
		out, err := yaml.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		_, err = w.Write(out)
		return err

	case "", "text":
		if query != "" {
			return writeScalar(w, data)
		}
		return r.WriteText(w)

	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// WriteText writes the report as aligned "key: value" lines.
func (r *Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if r.Name != "" {
		fmt.Fprintf(tw, "name:\t%s\n", r.Name)
	}
	fmt.Fprintf(tw, "expression:\t%s\n", r.Expression)
	fmt.Fprintf(tw, "value:\t%s\n", formatFloat(r.Value))
	fmt.Fprintf(tw, "nodes:\t%d\n", r.Nodes)
	for _, name := range r.Variables() {
		fmt.Fprintf(tw, "d/d%s:\t%s\n", name, formatFloat(r.Gradients[name]))
	}
	if len(r.NonFinite) > 0 {
		fmt.Fprintf(tw, "non-finite:\t%s\n", strings.Join(r.NonFinite, ", "))
	}
	return tw.Flush()
}

func writeScalar(w io.Writer, data any) error {
	var s string
	switch v := data.(type) {
	case float64:
		s = formatFloat(v)
	case string:
		s = v
	default:
		s = oj.JSON(JSONSafe(v), jsonOptions(0))
	}
	_, err := fmt.Fprintln(w, s)
	return err
}

// JSONSafe returns v with every NaN or infinite float64 replaced by the string
// "NaN", "+Inf" or "-Inf". Maps and slices are copied, v is not modified.
func JSONSafe(v any) any {
	switch x := v.(type) {
	case float64:
		switch {
		case math.IsNaN(x):
			return "NaN"
		case math.IsInf(x, 1):
			return "+Inf"
		case math.IsInf(x, -1):
			return "-Inf"
		}
		return x
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = JSONSafe(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = JSONSafe(e)
		}
		return out
	default:
		return v
	}
}

func jsonOptions(indent int) *ojg.Options {
	opts := ojg.DefaultOptions
	opts.Indent = indent
	opts.Sort = true
	return &opts
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
