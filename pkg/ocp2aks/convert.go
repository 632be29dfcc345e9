// Package ocp2aks provides a public Go API for converting OpenShift
// manifests into AKS-ready Kubernetes manifests.
//
// Basic usage:
//
//	result, err := ocp2aks.Convert(ctx, data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(string(result.YAML))
//
// With options:
//
//	result, err := ocp2aks.Convert(ctx, data,
//	    ocp2aks.WithDefaultDomain("apps.contoso.io"),
//	    ocp2aks.WithImageRegistry("myacr.azurecr.io"),
//	)
//
// ConvertDirectory runs the same conversion as the CLI over a whole
// directory tree, including output routing and the Markdown report.
package ocp2aks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hupe1980/ocp2aks/internal/config"
	"github.com/hupe1980/ocp2aks/internal/convert"
	"github.com/hupe1980/ocp2aks/internal/engine"
	"github.com/hupe1980/ocp2aks/internal/k8s/parser"
	"github.com/hupe1980/ocp2aks/internal/logging"
	"github.com/hupe1980/ocp2aks/internal/output"
	"github.com/hupe1980/ocp2aks/internal/report"
)

// inputName labels in-memory input in warnings and errors.
const inputName = "<input>"

// Option configures a conversion. Use the With* functions to create Options.
type Option func(*options)

type options struct {
	defaultDomain string
	ingressClass  string
	tlsSecret     string
	imageRegistry string
	repoPrefix    string
	dryRun        bool
	logger        *slog.Logger
}

// WithDefaultDomain sets the host suffix for Routes without a host
// (default: "apps.example.com").
func WithDefaultDomain(domain string) Option { return func(o *options) { o.defaultDomain = domain } }

// WithIngressClass sets the ingress class of converted Routes (default: "nginx").
func WithIngressClass(class string) Option { return func(o *options) { o.ingressClass = class } }

// WithTLSSecret sets the secret referenced by Ingress TLS entries.
func WithTLSSecret(secret string) Option { return func(o *options) { o.tlsSecret = secret } }

// WithImageRegistry sets the registry used for short image names.
func WithImageRegistry(registry string) Option {
	return func(o *options) { o.imageRegistry = registry }
}

// WithRepoPrefix sets the repository prefix inserted after the registry.
func WithRepoPrefix(prefix string) Option { return func(o *options) { o.repoPrefix = prefix } }

// WithDryRun makes ConvertDirectory route and serialize without writing.
// It has no effect on Convert, which never writes.
func WithDryRun() Option { return func(o *options) { o.dryRun = true } }

// WithLogger sets the logger used during conversion. By default nothing is
// logged.
func WithLogger(logger *slog.Logger) Option { return func(o *options) { o.logger = logger } }

func (o *options) applyDefaults() {
	if o.defaultDomain == "" {
		o.defaultDomain = config.DefaultDomain
	}

	if o.ingressClass == "" {
		o.ingressClass = config.DefaultIngressClass
	}

	if o.logger == nil {
		o.logger = logging.Discard()
	}
}

func (o *options) convertOptions() convert.Options {
	return convert.Options{
		Route: convert.RouteOptions{
			DefaultDomain: o.defaultDomain,
			IngressClass:  o.ingressClass,
			TLSSecret:     o.tlsSecret,
		},
		Image: convert.ImageOptions{
			Registry:   o.imageRegistry,
			RepoPrefix: o.repoPrefix,
		},
	}
}

// Counts holds the per-category document counters of a conversion.
type Counts struct {
	DeploymentConfigs int
	Routes            int
	BuildConfigs      int
	Other             int
}

// Converted returns the number of DeploymentConfigs and Routes converted.
func (c Counts) Converted() int {
	return c.DeploymentConfigs + c.Routes
}

func countsOf(s *report.Summary) Counts {
	return Counts{
		DeploymentConfigs: s.Count(convert.CategoryDeploymentConfig),
		Routes:            s.Count(convert.CategoryRoute),
		BuildConfigs:      s.Count(convert.CategoryBuildConfig),
		Other:             s.Count(convert.CategoryOther),
	}
}

// Result holds the outcome of converting one multi-document stream.
type Result struct {
	// YAML is the converted multi-document stream. Empty when every document
	// was skipped.
	YAML []byte

	// Documents holds the emitted documents in input order.
	Documents []map[string]interface{}

	// Counts holds the per-category counters.
	Counts Counts

	// Warnings lists the notes a run report would contain.
	Warnings []string
}

// ErrEmptyInput is returned by Convert for empty input.
var ErrEmptyInput = errors.New("input must not be empty")

// Convert converts an in-memory multi-document YAML stream. Documents
// without a kind are ignored. Malformed YAML fails the whole conversion.
func Convert(ctx context.Context, data []byte, opts ...Option) (*Result, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}

	o := &options{}
	for _, fn := range opts {
		fn(o)
	}

	o.applyDefaults()

	ctx = logging.NewContext(ctx, o.logger)

	bundle, err := parser.NewParser().Parse(ctx, inputName, data)
	if err != nil {
		return nil, fmt.Errorf("parsing input: %w", err)
	}

	summary := report.NewSummary()
	docs, _, _ := engine.Dispatch(convert.New(o.convertOptions()), bundle, summary)

	stream, err := output.SerializeStream(docs)
	if err != nil {
		return nil, fmt.Errorf("serializing output: %w", err)
	}

	result := &Result{
		YAML:      stream,
		Documents: make([]map[string]interface{}, 0, len(docs)),
		Counts:    countsOf(summary),
		Warnings:  summary.Warnings(),
	}

	for _, d := range docs {
		result.Documents = append(result.Documents, d.Object)
	}

	o.logger.Debug("stream converted",
		slog.Int("documents", len(bundle.Resources)),
		slog.Int("emitted", len(docs)),
		slog.Int("warnings", len(result.Warnings)),
	)

	return result, nil
}

// DirectoryResult holds the outcome of ConvertDirectory.
type DirectoryResult struct {
	// Files is the number of manifest files discovered.
	Files int

	// Outputs maps each destination path to its multi-document stream.
	Outputs map[string][]byte

	// Counts holds the per-category counters.
	Counts Counts

	// Warnings lists the notes written to the report.
	Warnings []string

	// ReportPath is where the Markdown report was written (or would be, in
	// dry-run mode).
	ReportPath string

	// ReportErr is set when the report could not be written.
	ReportErr error
}

// ConvertDirectory converts every manifest below srcDir into outDir and
// writes transform-report.md next to outDir. It fails only when outDir
// cannot be created.
func ConvertDirectory(ctx context.Context, srcDir, outDir string, opts ...Option) (*DirectoryResult, error) {
	if srcDir == "" || outDir == "" {
		return nil, errors.New("source and output directories must not be empty")
	}

	o := &options{}
	for _, fn := range opts {
		fn(o)
	}

	o.applyDefaults()

	res, err := engine.New(engine.Options{
		SourceDir: srcDir,
		OutDir:    outDir,
		Convert:   o.convertOptions(),
		DryRun:    o.dryRun,
		Writers:   output.FileWriterFactory(output.WithLogger(o.logger)),
	}).Run(logging.NewContext(ctx, o.logger))
	if err != nil {
		return nil, err
	}

	outputs := make(map[string][]byte, len(res.Outputs))
	for _, out := range res.Outputs {
		outputs[out.Path] = out.Data
	}

	return &DirectoryResult{
		Files:      res.Files,
		Outputs:    outputs,
		Counts:     countsOf(res.Summary),
		Warnings:   res.Summary.Warnings(),
		ReportPath: res.ReportPath,
		ReportErr:  res.ReportErr,
	}, nil
}
