package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/born-ml/scalargrad/internal/problem"
)

// input is the problem source shared by eval and graph.
type input struct {
	file string
	vars []string
}

func (in *input) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&in.file, "file", "f", "", "Problem file (YAML)")
	cmd.Flags().StringArrayVar(&in.vars, "var", nil, "Variable binding name=value (repeatable)")
}

// problem returns the problem described by the arguments. Bindings given with
// --var override the file's variables.
func (in *input) problem(args []string) (*problem.Problem, error) {
	var p *problem.Problem
	switch {
	case in.file != "" && len(args) > 0:
		return nil, fmt.Errorf("give either an expression or --file, not both")
	case in.file != "":
		loaded, err := problem.Load(in.file)
		if err != nil {
			return nil, err
		}
		p = loaded
	case len(args) == 1:
		p = &problem.Problem{Expression: args[0]}
	default:
		return nil, fmt.Errorf("an expression or --file is required")
	}

	if p.Variables == nil {
		p.Variables = make(map[string]float64, len(in.vars))
	}
	for _, kv := range in.vars {
		name, val, err := parseBinding(kv)
		if err != nil {
			return nil, err
		}
		p.Variables[name] = val
	}
	return p, nil
}

func parseBinding(kv string) (string, float64, error) {
	name, raw, ok := strings.Cut(kv, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", 0, fmt.Errorf("invalid --var %q: want name=value", kv)
	}
	val, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid --var %q: %w", kv, err)
	}
	return name, val, nil
}
