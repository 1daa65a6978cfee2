package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/born-ml/scalargrad/internal/expr"
	"github.com/born-ml/scalargrad/internal/viz"
)

func newGraphCmd(a *app) *cobra.Command {
	var (
		in       input
		format   string
		out      string
		rankDir  string
		labelAll bool
	)

	cmd := &cobra.Command{
		Use:   "graph [expression]",
		Short: "Render the computation graph of an expression",
		Long: `Build the computation graph of an expression, run a backward pass and
render it with Graphviz. The dot format needs no external tools; other
formats (svg, png, pdf) run the graphviz dot binary.`,
		Example: `  # Print DOT source
  scalargrad graph "tanh(x*w + b)" --var x=1 --var w=0.5 --var b=-0.2

  # Write an SVG
  scalargrad graph --file problem.yaml --format svg --out graph.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			p, err := in.problem(args)
			if err != nil {
				return err
			}

			var opts []expr.BuildOption
			if labelAll {
				opts = append(opts, expr.WithIntermediateLabels())
			}
			g, err := p.Build(opts...)
			if err != nil {
				return err
			}
			g.Backward()

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out) // #nosec G304 - path is user-supplied by design
				if err != nil {
					return fmt.Errorf("failed to create output: %w", err)
				}
				defer func() {
					if cerr := f.Close(); cerr != nil && err == nil {
						err = cerr
					}
				}()
				w = f
			}

			a.log.Debug("rendering graph", "nodes", len(g.Root.Nodes()), "format", format, "out", out)
			return viz.Render(cmd.Context(), g.Root, w, format,
				viz.WithPrecision(a.cfg.Precision),
				viz.WithRankDir(rankDir),
				viz.WithGraphvizPath(a.cfg.GraphvizPath),
			)
		},
	}

	in.register(cmd)
	cmd.Flags().StringVar(&format, "format", "dot", "Output format (dot, svg, png, pdf, ...)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&rankDir, "rankdir", "LR", "Graph direction (LR, TB, ...)")
	cmd.Flags().BoolVar(&labelAll, "label-all", false, "Label every node with the sub-expression it computes")
	return cmd
}
