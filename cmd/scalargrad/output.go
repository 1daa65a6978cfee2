package main

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/oj"

	"github.com/born-ml/scalargrad/internal/config"
	"github.com/born-ml/scalargrad/internal/problem"
)

// encode writes generic data as JSON or YAML. Non-finite floats become
// strings in JSON.
func encode(w io.Writer, format string, data any) error {
	switch format {
	case config.FormatJSON:
		opts := ojg.DefaultOptions
		opts.Indent = 2
		opts.Sort = true
		_, err := fmt.Fprintln(w, oj.JSON(problem.JSONSafe(data), &opts))
		return err
	case config.FormatYAML:
		out, err := yaml.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", format, err)
		}
		_, err = w.Write(out)
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
