package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/ocp2aks/internal/audit"
	"github.com/hupe1980/ocp2aks/internal/config"
	"github.com/hupe1980/ocp2aks/internal/engine"
	"github.com/hupe1980/ocp2aks/internal/k8s"
	"github.com/hupe1980/ocp2aks/internal/k8s/parser"
	"github.com/hupe1980/ocp2aks/internal/logging"
)

type auditOptions struct {
	format string
	failOn string
}

func newAuditCommand() *cobra.Command {
	opts := &auditOptions{}

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Check converted manifests for AKS readiness",
		Long: `Audit converts the source directory in memory and checks the result
for issues that commonly break or weaken workloads on AKS: OpenShift-only
APIs that were passed through, floating image tags, privileged containers,
host namespace sharing, missing resource limits and, when an image registry
is configured, images pulled from elsewhere.

Exit code 4 is returned when a finding meets the --fail-on severity.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAudit(cmd.Context(), cmd, opts)
		},
	}

	registerConversionFlags(cmd)
	cmd.Flags().StringVar(&opts.format, "format", formatTable, "output format: table, json")
	cmd.Flags().StringVar(&opts.failOn, "fail-on", "", "exit with code 4 on findings at or above this severity: high, medium, low, info")

	return cmd
}

func runAudit(ctx context.Context, cmd *cobra.Command, opts *auditOptions) error {
	formatter, err := audit.NewFormatter(opts.format)
	if err != nil {
		return &ExitError{Code: ExitUsage, Err: err}
	}

	threshold := audit.SeverityInfo

	if opts.failOn != "" {
		threshold, err = audit.ParseSeverity(opts.failOn)
		if err != nil {
			return &ExitError{Code: ExitUsage, Err: err}
		}
	}

	cfg := config.FromContext(ctx)

	res, err := runEngine(ctx, engineOptions(cfg, true))
	if err != nil {
		return err
	}

	resources, err := convertedResources(ctx, res.Outputs)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: err}
	}

	auditor := audit.New(audit.DefaultChecks(audit.Options{Registry: cfg.ImageRegistry})...)
	result := auditor.Run(ctx, resources)

	logging.FromContext(ctx).Debug("audit complete",
		slog.Int("resources", len(resources)),
		slog.Int("findings", len(result.Findings)),
	)

	if err := formatter.Format(cmd.OutOrStdout(), result); err != nil {
		return &ExitError{Code: ExitFailure, Err: fmt.Errorf("formatting audit result: %w", err)}
	}

	if opts.failOn != "" && !result.Passed(threshold) {
		return &ExitError{Code: ExitFindings}
	}

	return nil
}

// convertedResources parses the in-memory output streams back into
// resources, attributed to their destination paths.
func convertedResources(ctx context.Context, outputs []*engine.Output) ([]*k8s.Resource, error) {
	p := parser.NewParser()

	var resources []*k8s.Resource

	for _, out := range outputs {
		bundle, err := p.Parse(ctx, out.Path, out.Data)
		if err != nil {
			return nil, fmt.Errorf("parsing converted output %s: %w", out.Path, err)
		}

		resources = append(resources, bundle.Resources...)
	}

	return resources, nil
}
