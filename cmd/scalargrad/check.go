package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/born-ml/scalargrad/internal/autodiff/ops"
	"github.com/born-ml/scalargrad/internal/config"
	"github.com/born-ml/scalargrad/internal/gradcheck"
	"github.com/born-ml/scalargrad/internal/parallel"
)

// Operation families checked concurrently.
var families = []string{"arithmetic", "trigonometric", "hyperbolic", "exponential", "composite"}

func family(k ops.Kind) string {
	switch k {
	case ops.Add, ops.Sub, ops.Mul, ops.Div, ops.Pow, ops.PowValue, ops.Neg:
		return "arithmetic"
	case ops.Sin, ops.Cos, ops.Tan, ops.Cot:
		return "trigonometric"
	case ops.Sinh, ops.Cosh, ops.Tanh, ops.Coth:
		return "hyperbolic"
	case ops.Exp, ops.Log:
		return "exponential"
	default:
		return "composite"
	}
}

func newCheckCmd(a *app) *cobra.Command {
	var only []string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify every backward rule against finite differences",
		Long: `Run the built-in gradient check sweep: every operation at several points,
plus composite graphs with shared operands. Each analytic gradient is compared
with a central finite difference.`,
		Example: `  # Check everything
  scalargrad check

  # Check only sin and pow, with a looser tolerance
  scalargrad check --op sin --op pow --config loose.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			groups := make(map[string][]gradcheck.Case, len(families))
			for _, c := range gradcheck.Cases() {
				if len(only) > 0 && !selected(only, c) {
					continue
				}
				f := family(c.Kind)
				groups[f] = append(groups[f], c)
			}
			if len(groups) == 0 {
				return fmt.Errorf("no checks match %v", only)
			}

			pcfg := parallel.DefaultConfig().WithWorkers(a.cfg.Workers)
			opts := []gradcheck.Option{
				gradcheck.WithEpsilon(a.cfg.Epsilon),
				gradcheck.WithTolerance(a.cfg.Tolerance),
			}

			results := make([][]gradcheck.Result, len(families))
			g, ctx := errgroup.WithContext(cmd.Context())
			for i, f := range families {
				cases := groups[f]
				if len(cases) == 0 {
					continue
				}
				g.Go(func() error {
					a.log.Debug("checking family", "family", f, "cases", len(cases))
					res, err := gradcheck.Sweep(ctx, cases, pcfg, opts...)
					results[i] = res
					if err != nil && !errors.Is(err, gradcheck.ErrMismatch) && !errors.Is(err, gradcheck.ErrNonFinite) {
						return fmt.Errorf("%s: %w", f, err)
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			all := slices.Concat(results...)
			var failed int
			for _, r := range all {
				if r.Err != nil {
					failed++
					a.log.Warn("gradient check failed", "case", r.Case, "at", r.Report.At, "err", r.Err)
				}
			}

			if err := writeResults(cmd.OutOrStdout(), all, a.cfg.Output); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d checks failed", failed, len(all))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&only, "op", nil, "Only check these operations or cases (repeatable)")
	return cmd
}

// selected matches a case by its name or, for single operations, its kind.
func selected(names []string, c gradcheck.Case) bool {
	return slices.Contains(names, c.Name) || (c.Kind.Valid() && slices.Contains(names, c.Kind.Name()))
}

func writeResults(w io.Writer, results []gradcheck.Result, format string) error {
	rows := make([]any, len(results))
	for i, r := range results {
		at := make([]any, len(r.Report.At))
		for j, x := range r.Report.At {
			at[j] = x
		}
		rows[i] = map[string]any{
			"case":        r.Case,
			"at":          at,
			"value":       r.Report.Value,
			"max_abs_err": maxAbsErr(r.Report),
			"ok":          r.Err == nil,
		}
	}

	if format != config.FormatText {
		return encode(w, format, rows)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CASE\tAT\tVALUE\tMAX ABS ERR\tSTATUS")
	var passed int
	for _, r := range results {
		status := "ok"
		if r.Err != nil {
			status = "FAIL"
		} else {
			passed++
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2e\t%s\n",
			r.Case, formatPoint(r.Report.At), formatFloat(r.Report.Value), maxAbsErr(r.Report), status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d/%d passed\n", passed, len(results))
	return err
}

func maxAbsErr(r gradcheck.Report) float64 {
	var m float64
	for _, in := range r.Inputs {
		m = max(m, in.AbsErr)
	}
	return m
}

func formatPoint(at []float64) string {
	parts := make([]string, len(at))
	for i, x := range at {
		parts[i] = formatFloat(x)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', 6, 64)
}
