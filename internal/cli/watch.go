package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/ocp2aks/internal/config"
	"github.com/hupe1980/ocp2aks/internal/engine"
	"github.com/hupe1980/ocp2aks/internal/logging"
	"github.com/hupe1980/ocp2aks/internal/report"
	"github.com/hupe1980/ocp2aks/internal/watch"
)

type watchOptions struct {
	debounce time.Duration
}

func newWatchCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the source directory and re-convert on changes",
		Long: `Watch runs convert once and then again whenever a manifest below the
source directory is created, modified, renamed or removed.

File changes are debounced to avoid rapid re-runs. Each run reports the
number of files, converted resources and warnings, plus which output
files changed since the previous run. Changes inside the output directory
are ignored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context(), cmd, opts)
		},
	}

	registerConversionFlags(cmd)
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 500*time.Millisecond, "debounce interval for file changes")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, opts *watchOptions) error {
	cfg := config.FromContext(ctx)
	engineOpts := engineOptions(cfg, false)

	runFn := func(fnCtx context.Context) (*watch.RunResult, error) {
		res, err := engine.New(engineOpts).Run(fnCtx)
		if err != nil {
			return nil, err
		}

		outputs := make(map[string][]byte, len(res.Outputs))
		for _, out := range res.Outputs {
			outputs[out.Path] = out.Data
		}

		return &watch.RunResult{
			Files:     res.Files,
			Converted: res.Summary.Converted(),
			Warnings:  len(res.Summary.Warnings()),
			Outputs:   outputs,
		}, nil
	}

	watchOpts := watch.DefaultOptions()
	watchOpts.SourceDir = cfg.Src
	watchOpts.Exclude = []string{cfg.Out, report.Path(cfg.Out)}
	watchOpts.Debounce = opts.debounce
	watchOpts.Logger = logging.FromContext(ctx)
	watchOpts.Out = cmd.ErrOrStderr()

	if err := watch.Run(ctx, watchOpts, runFn); err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	return nil
}
