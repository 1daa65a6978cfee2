package main

import (
	"github.com/spf13/cobra"

	"github.com/born-ml/scalargrad/internal/problem"
)

func newEvalCmd(a *app) *cobra.Command {
	var (
		in    input
		query string
	)

	cmd := &cobra.Command{
		Use:   "eval [expression]",
		Short: "Evaluate an expression and its gradients",
		Long: `Evaluate an expression at a point and print its value together with the
gradient with respect to every variable.`,
		Example: `  # Differentiate a quadratic at x=3
  scalargrad eval "x^2 + 2*x + 1" --var x=3

  # Solve a problem file, printing JSON
  scalargrad eval --file problem.yaml --output json

  # Print a single gradient
  scalargrad eval "sin(x) * y" --var x=0.5 --var y=2 --query '$.gradients.x'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := in.problem(args)
			if err != nil {
				return err
			}

			r, err := problem.Solve(p)
			if err != nil {
				return err
			}
			a.log.Debug("solved", "expression", r.Expression, "value", r.Value, "nodes", r.Nodes)
			if len(r.NonFinite) > 0 {
				a.log.Warn("non-finite values in graph", "nodes", r.NonFinite)
			}

			return problem.Encode(cmd.OutOrStdout(), r, a.cfg.Output, query)
		},
	}

	in.register(cmd)
	cmd.Flags().StringVarP(&query, "query", "q", "", "JSONPath expression selecting part of the report")
	return cmd
}
