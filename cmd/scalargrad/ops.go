package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/born-ml/scalargrad/internal/autodiff/ops"
	"github.com/born-ml/scalargrad/internal/config"
)

func newOpsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List the supported operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()

			if a.cfg.Output != config.FormatText {
				rows := make([]any, 0, len(ops.Kinds()))
				for _, k := range ops.Kinds() {
					rows = append(rows, map[string]any{
						"name":   k.Name(),
						"arity":  int64(k.Arity()),
						"symbol": symbol(k),
						"family": family(k),
					})
				}
				return encode(w, a.cfg.Output, rows)
			}

			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tARITY\tSYMBOL\tFAMILY")
			for _, k := range ops.Kinds() {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", k.Name(), k.Arity(), symbol(k), family(k))
			}
			return tw.Flush()
		},
	}
}

func symbol(k ops.Kind) string {
	if k == ops.Pow {
		return "**n"
	}
	return ops.Of(k).String()
}
