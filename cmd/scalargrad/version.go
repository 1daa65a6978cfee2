package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/born-ml/scalargrad/internal/config"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Example: `  # Show version
  scalargrad version

  # Show version in JSON format
  scalargrad version --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			info := map[string]any{
				"version":   version,
				"commit":    commit,
				"buildDate": buildDate,
				"goVersion": runtime.Version(),
			}

			if a.cfg.Output != config.FormatText {
				return encode(w, a.cfg.Output, info)
			}
			fmt.Fprintf(w, "scalargrad version %s\n", version)
			if version != "dev" {
				fmt.Fprintf(w, "  commit:     %s\n", commit)
				fmt.Fprintf(w, "  built:      %s\n", buildDate)
			}
			fmt.Fprintf(w, "  go version: %s\n", runtime.Version())
			return nil
		},
	}
}
