package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/born-ml/scalargrad/internal/config"
)

// app holds state shared by every command of one invocation.
type app struct {
	cfgFile string
	output  string
	verbose bool

	cfg config.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.Default()}

	root := &cobra.Command{
		Use:   "scalargrad",
		Short: "Reverse-mode automatic differentiation of scalar expressions",
		Long: `scalargrad evaluates scalar expressions, differentiates them with
reverse-mode automatic differentiation and renders their computation graphs.`,
		Version:           fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&a.output, "output", config.FormatText, "Output format (text, json, yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output")
	root.CompletionOptions.DisableDefaultCmd = true

	root.AddCommand(
		newEvalCmd(a),
		newGraphCmd(a),
		newCheckCmd(a),
		newMinimizeCmd(a),
		newOpsCmd(a),
		newVersionCmd(a),
	)
	return root
}

// setup loads the config file, applies flag overrides and creates the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.cfgFile != "" {
		cfg, err := config.Load(a.cfgFile)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	if cmd.Flags().Changed("output") {
		a.cfg.Output = a.output
	}
	if a.verbose {
		a.cfg.Verbose = true
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	level := slog.LevelWarn
	if a.cfg.Verbose {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}
