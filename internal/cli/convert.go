package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/hupe1980/ocp2aks/internal/config"
	"github.com/hupe1980/ocp2aks/internal/engine"
	"github.com/hupe1980/ocp2aks/internal/output"
	"github.com/hupe1980/ocp2aks/internal/report"
)

type convertOptions struct {
	dryRun bool
}

func newConvertCommand() *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert OpenShift manifests into AKS manifests",
		Long: `Convert scans the source directory for *.yaml and *.yml files and
writes the converted manifests into the output directory:

  DeploymentConfig  -> apps/v1 Deployment
  Route             -> networking.k8s.io/v1 Ingress
  BuildConfig       -> skipped with a note in the report
  anything else     -> passed through, openshift.io/ annotations removed

Output files keep the source file name, except that names containing
"deploymentconfig" become deployment.yaml and names containing "route"
become ingress.yaml.

Files whose documents land in the same destination are grouped into one
multi-document stream. A Markdown report (transform-report.md) is written
next to the output directory.

Exit codes:
  0  Success (warnings do not change the exit code)
  1  The output directory could not be created
  2  Invalid arguments or configuration`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConvert(cmd.Context(), cmd, opts)
		},
	}

	registerConversionFlags(cmd)
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the converted streams instead of writing them")

	return cmd
}

func runConvert(ctx context.Context, cmd *cobra.Command, opts *convertOptions) error {
	cfg := config.FromContext(ctx)

	res, err := runEngine(ctx, engineOptions(cfg, opts.dryRun))
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()

	if opts.dryRun {
		if err := writeDryRun(w, res.Outputs); err != nil {
			return &ExitError{Code: ExitFailure, Err: err}
		}
	}

	if cfg.Quiet {
		return nil
	}

	report.PrintSummary(w, res.Summary, cfg.NoColor)

	if !opts.dryRun && res.ReportErr == nil {
		fmt.Fprintf(w, "report: %s\n", res.ReportPath)
	}

	return nil
}

// runEngine executes one run, mapping a failed output directory to exit
// code 1.
func runEngine(ctx context.Context, opts engine.Options) (*engine.Result, error) {
	res, err := engine.New(opts).Run(ctx)
	if err != nil {
		return nil, &ExitError{Code: ExitFailure, Err: err}
	}

	return res, nil
}

// writeDryRun prints every destination stream preceded by a "# <path>"
// comment line.
func writeDryRun(w io.Writer, outputs []*engine.Output) error {
	sw := output.NewStdoutWriter(w)

	for i, out := range outputs {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintf(w, "# %s\n", out.Path); err != nil {
			return err
		}

		if err := sw.Write(out.Data); err != nil {
			return err
		}
	}

	return nil
}
