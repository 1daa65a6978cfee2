package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/born-ml/scalargrad/internal/config"
	"github.com/born-ml/scalargrad/internal/optim"
	"github.com/born-ml/scalargrad/internal/problem"
)

func newMinimizeCmd(a *app) *cobra.Command {
	var (
		in        input
		query     string
		optimizer string
		lr        float64
		momentum  float64
		steps     int
		tolerance float64
	)

	cmd := &cobra.Command{
		Use:   "minimize [expression]",
		Short: "Minimise an expression by gradient descent",
		Long: `Minimise an expression over its variables, starting from the values given
with --var or in the problem file. Every step rebuilds the graph at the current
point and runs one backward pass.`,
		Example: `  # Find the minimum of a bowl with Adam
  scalargrad minimize "(x-1)^2 + (y+2)^2" --var x=0 --var y=0

  # Plain gradient descent with momentum
  scalargrad minimize "cosh(x - 2)" --var x=0 --optimizer sgd --lr 0.1 --momentum 0.5`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("optimizer") {
				a.cfg.Optimizer = optimizer
			}
			if flags.Changed("lr") {
				a.cfg.LearningRate = lr
			}
			if flags.Changed("momentum") {
				a.cfg.Momentum = momentum
			}
			if flags.Changed("steps") {
				a.cfg.Steps = steps
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			p, err := in.problem(args)
			if err != nil {
				return err
			}

			var opt optim.Optimizer
			switch a.cfg.Optimizer {
			case config.OptimizerSGD:
				opt = optim.NewSGD(optim.SGDConfig{LR: a.cfg.LearningRate, Momentum: a.cfg.Momentum})
			default:
				opt = optim.NewAdam(optim.AdamConfig{LR: a.cfg.LearningRate})
			}
			a.log.Debug("minimizing", "expression", p.Expression, "optimizer", a.cfg.Optimizer,
				"lr", a.cfg.LearningRate, "steps", a.cfg.Steps)

			fit, err := problem.Minimize(cmd.Context(), p, opt, optim.MinimizeConfig{
				Steps:     a.cfg.Steps,
				Tolerance: tolerance,
			})
			if err != nil && !errors.Is(err, optim.ErrNonFinite) {
				return err
			}
			if err != nil {
				a.log.Warn("stopped on non-finite value", "steps", fit.Steps)
			} else if !fit.Converged {
				a.log.Warn("step budget spent before convergence", "steps", fit.Steps)
			}

			if encErr := problem.Encode(cmd.OutOrStdout(), fit, a.cfg.Output, query); encErr != nil {
				return encErr
			}
			return err
		},
	}

	in.register(cmd)
	cmd.Flags().StringVarP(&query, "query", "q", "", "JSONPath expression selecting part of the result")
	cmd.Flags().StringVar(&optimizer, "optimizer", config.OptimizerAdam, "Optimizer (sgd, adam)")
	cmd.Flags().Float64Var(&lr, "lr", 0.05, "Learning rate")
	cmd.Flags().Float64Var(&momentum, "momentum", 0, "Momentum (sgd only)")
	cmd.Flags().IntVar(&steps, "steps", 1000, "Maximum number of steps")
	cmd.Flags().Float64Var(&tolerance, "tol", 1e-8, "Stop once every |gradient| is at most this")
	return cmd
}
