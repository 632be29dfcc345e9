package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/hupe1980/ocp2aks/internal/config"
	"github.com/hupe1980/ocp2aks/internal/convert"
	"github.com/hupe1980/ocp2aks/internal/engine"
	"github.com/hupe1980/ocp2aks/internal/k8s"
	"github.com/hupe1980/ocp2aks/internal/report"
)

// Inspect output formats.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

type inspectOptions struct {
	format string
}

func newInspectCommand() *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show what convert would do without writing anything",
		Long: `Inspect scans and converts the source directory in memory and lists
every document with its kind, name, outcome and destination file.
Nothing is written, not even the report.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd.Context(), cmd, opts)
		},
	}

	registerConversionFlags(cmd)
	cmd.Flags().StringVar(&opts.format, "format", formatTable, "output format: table, json, yaml")

	return cmd
}

// inspectResult is the structured output of the inspect command.
type inspectResult struct {
	Files     int           `json:"files"`
	Documents []documentRow `json:"documents"`
	Counts    countsRow     `json:"counts"`
	Warnings  []string      `json:"warnings,omitempty"`
}

type documentRow struct {
	File        string `json:"file"`
	APIVersion  string `json:"apiVersion,omitempty"`
	Kind        string `json:"kind"`
	Name        string `json:"name,omitempty"`
	OpenShift   bool   `json:"openshiftAPI"`
	Outcome     string `json:"outcome"`
	Destination string `json:"destination,omitempty"`
}

type countsRow struct {
	DeploymentConfigs int `json:"deploymentConfigs"`
	Routes            int `json:"routes"`
	BuildConfigs      int `json:"buildConfigs"`
	Other             int `json:"other"`
	Converted         int `json:"converted"`
}

func runInspect(ctx context.Context, cmd *cobra.Command, opts *inspectOptions) error {
	switch opts.format {
	case formatTable, formatJSON, formatYAML:
	default:
		return &ExitError{Code: ExitUsage, Err: fmt.Errorf("invalid format %q: must be one of table, json, yaml", opts.format)}
	}

	cfg := config.FromContext(ctx)

	res, err := runEngine(ctx, engineOptions(cfg, true))
	if err != nil {
		return err
	}

	result := buildInspectResult(cfg.Src, res)
	w := cmd.OutOrStdout()

	switch opts.format {
	case formatJSON:
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return &ExitError{Code: ExitFailure, Err: fmt.Errorf("formatting JSON: %w", err)}
		}

		_, err = fmt.Fprintln(w, string(data))

		return err
	case formatYAML:
		data, err := sigsyaml.Marshal(result)
		if err != nil {
			return &ExitError{Code: ExitFailure, Err: fmt.Errorf("formatting YAML: %w", err)}
		}

		_, err = w.Write(data)

		return err
	}

	writeInspectTable(w, result)

	return nil
}

func buildInspectResult(srcDir string, res *engine.Result) *inspectResult {
	s := res.Summary

	out := &inspectResult{
		Files:     res.Files,
		Documents: make([]documentRow, 0, len(res.Entries)),
		Counts: countsRow{
			DeploymentConfigs: s.Count(convert.CategoryDeploymentConfig),
			Routes:            s.Count(convert.CategoryRoute),
			BuildConfigs:      s.Count(convert.CategoryBuildConfig),
			Other:             s.Count(convert.CategoryOther),
			Converted:         s.Converted(),
		},
		Warnings: s.Warnings(),
	}

	for _, e := range res.Entries {
		apiVersion := ""
		if !e.GVK.GroupVersion().Empty() {
			apiVersion = e.GVK.GroupVersion().String()
		}

		out.Documents = append(out.Documents, documentRow{
			File:        relativeTo(srcDir, e.File),
			APIVersion:  apiVersion,
			Kind:        e.Kind,
			Name:        e.Name,
			OpenShift:   k8s.IsOpenShiftAPI(e.GVK),
			Outcome:     e.Outcome.String(),
			Destination: e.Destination,
		})
	}

	return out
}

func writeInspectTable(w io.Writer, result *inspectResult) {
	rows := make([][]string, 0, len(result.Documents))

	openshift := 0

	for _, d := range result.Documents {
		name := d.Name
		if name == "" {
			name = "-"
		}

		dest := d.Destination
		if dest == "" {
			dest = "-"
		}

		if d.OpenShift {
			openshift++
		}

		rows = append(rows, []string{d.File, d.Kind, name, d.Outcome, dest})
	}

	report.PrintTable(w, []string{"file", "kind", "name", "outcome", "destination"}, rows)

	fmt.Fprintf(w, "\n%d file(s), %d document(s), %d on OpenShift-only APIs, %d converted, %d warning(s)\n",
		result.Files, len(result.Documents), openshift, result.Counts.Converted, len(result.Warnings))
}

// relativeTo returns path relative to base when possible.
func relativeTo(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}

	return path
}
