package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/ocp2aks/internal/config"
	"github.com/hupe1980/ocp2aks/internal/diff"
)

type diffOptions struct {
	exitCode bool
}

func newDiffCommand() *cobra.Command {
	opts := &diffOptions{}

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare the output directory with a fresh conversion",
		Long: `Diff converts the source directory in memory and prints a unified
diff between every destination file currently on disk and what convert
would write there. Files that do not exist yet diff against /dev/null.
Nothing is written.

Exit codes:
  0  No differences, or differences without --exit-code
  1  Error
  2  Invalid arguments
  3  Differences found and --exit-code set`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDiff(cmd.Context(), cmd, opts)
		},
	}

	registerConversionFlags(cmd)
	cmd.Flags().BoolVar(&opts.exitCode, "exit-code", false, "exit with code 3 when differences exist")

	return cmd
}

func runDiff(ctx context.Context, cmd *cobra.Command, opts *diffOptions) error {
	cfg := config.FromContext(ctx)

	res, err := runEngine(ctx, engineOptions(cfg, true))
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	changed := 0

	for _, out := range res.Outputs {
		d, err := diff.File(out.Path, out.Data)
		if err != nil {
			return &ExitError{Code: ExitFailure, Err: err}
		}

		if !d.HasDifferences {
			continue
		}

		changed++

		diff.Write(w, d, !cfg.NoColor)
	}

	if changed == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(w, "No differences found.")
		}

		return nil
	}

	if !cfg.Quiet {
		fmt.Fprintf(w, "\n%d of %d file(s) differ\n", changed, len(res.Outputs))
	}

	if opts.exitCode {
		return &ExitError{Code: ExitDifferences}
	}

	return nil
}
