// Package engine runs a conversion over a source directory: it discovers
// manifest files, parses each into a bundle, dispatches every document to its
// converter, writes the grouped output files and renders the run report.
//
// A run is strictly sequential. Per-file failures (malformed YAML, write
// errors) become warnings; only failing to create the output directory
// aborts the run.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/hupe1980/ocp2aks/internal/convert"
	"github.com/hupe1980/ocp2aks/internal/k8s/parser"
	"github.com/hupe1980/ocp2aks/internal/logging"
	"github.com/hupe1980/ocp2aks/internal/output"
	"github.com/hupe1980/ocp2aks/internal/report"
	"github.com/hupe1980/ocp2aks/internal/yamlutil"
)

// ErrOutputDir is returned when the output root cannot be created.
var ErrOutputDir = errors.New("creating output directory")

// Options configures a run.
type Options struct {
	// SourceDir is scanned recursively for manifests.
	SourceDir string

	// OutDir receives the converted manifests. Created when absent.
	OutDir string

	// Convert holds the converter settings.
	Convert convert.Options

	// DryRun performs dispatch and routing but writes nothing: no output
	// files, no output directory, no report.
	DryRun bool

	// Writers creates the writer for each destination. Defaults to
	// output.FileWriterFactory.
	Writers output.WriterFactory
}

// Settings returns the report echo of the options.
func (o Options) Settings() report.Settings {
	return report.Settings{
		SourceDir:     o.SourceDir,
		OutDir:        o.OutDir,
		DefaultDomain: o.Convert.Route.DefaultDomain,
		IngressClass:  o.Convert.Route.IngressClass,
		TLSSecret:     o.Convert.Route.TLSSecret,
		ImageRegistry: o.Convert.Image.Registry,
		RepoPrefix:    o.Convert.Image.RepoPrefix,
	}
}

// Output is one destination file of a run.
type Output struct {
	// Path is the destination file path.
	Path string

	// Sources lists the source files grouped into Path, in processing order.
	Sources []string

	// Documents is the number of documents in Data.
	Documents int

	// Data is the full multi-document stream of Path.
	Data []byte
}

// Entry records what happened to a single source document.
type Entry struct {
	File        string
	GVK         schema.GroupVersionKind
	Kind        string
	Name        string
	Category    convert.Category
	Outcome     convert.Outcome
	Destination string
}

// Result is the outcome of a run.
type Result struct {
	// Summary holds the counters and warnings.
	Summary *report.Summary

	// Files is the number of manifest files discovered.
	Files int

	// Outputs lists destination files in first-write order.
	Outputs []*Output

	// Entries lists every dispatched document in processing order.
	Entries []Entry

	// ReportPath is where the report was (or would be) written.
	ReportPath string

	// ReportErr is set when the report could not be written. The run itself
	// still succeeded.
	ReportErr error
}

// Engine executes conversion runs.
type Engine struct {
	opts      Options
	parser    *parser.DefaultParser
	converter *convert.Converter
	state     State
}

// New creates an Engine.
func New(opts Options) *Engine {
	if opts.Writers == nil {
		opts.Writers = output.FileWriterFactory()
	}

	return &Engine{
		opts:      opts,
		parser:    parser.NewParser(),
		converter: convert.New(opts.Convert),
		state:     StateIdle,
	}
}

// State returns the current run state.
func (e *Engine) State() State {
	return e.state
}

// Run executes one conversion run. The only returned error is the failure
// to create the output directory; everything else is recorded in the
// Result's Summary.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	logger := logging.FromContext(ctx)

	res := &Result{
		Summary:    report.NewSummary(),
		ReportPath: report.Path(e.opts.OutDir),
	}

	e.transition(logger, StateScanning)

	if !e.opts.DryRun {
		if err := os.MkdirAll(e.opts.OutDir, 0o750); err != nil {
			e.transition(logger, StateDone)
			return nil, fmt.Errorf("%w %s: %w", ErrOutputDir, e.opts.OutDir, err)
		}
	}

	files := Discover(e.opts.SourceDir, e.opts.OutDir, func(path string, err error) {
		res.Summary.Warnf("Failed to scan %s: %v", path, err)
		logger.Warn("scan failed", slog.String("path", path), slog.String("error", err.Error()))
	})
	res.Files = len(files)

	logger.Debug("manifests discovered", slog.String("src", e.opts.SourceDir), slog.Int("files", len(files)))

	byPath := make(map[string]*Output)

	for _, file := range files {
		e.processFile(ctx, logger, file, res, byPath)
	}

	e.transition(logger, StateReporting)

	if !e.opts.DryRun {
		if err := report.Write(res.ReportPath, e.opts.Settings(), res.Summary); err != nil {
			res.ReportErr = err
			logger.Error("failed to write report", slog.String("path", res.ReportPath), slog.String("error", err.Error()))
		} else {
			logger.Info("report written", slog.String("path", res.ReportPath))
		}
	}

	e.transition(logger, StateDone)

	return res, nil
}

// processFile runs the Parsing, Dispatching and Writing phases for one file.
func (e *Engine) processFile(ctx context.Context, logger *slog.Logger, file string, res *Result, byPath map[string]*Output) {
	e.transition(logger, StateParsing)

	bundle, err := e.parser.ParseFile(ctx, file)
	if err != nil {
		res.Summary.Warnf("Failed to parse %s: %v", file, err)
		logger.Warn("skipping unparsable file", slog.String("path", file), slog.String("error", err.Error()))

		return
	}

	if bundle.Dropped > 0 {
		logger.Debug("ignored documents without kind", slog.String("path", file), slog.Int("count", bundle.Dropped))
	}

	e.transition(logger, StateDispatching)

	docs, kinds, entries := Dispatch(e.converter, bundle, res.Summary)

	if len(docs) > 0 {
		e.transition(logger, StateWriting)

		dest := output.Destination(e.opts.OutDir, file, kinds)

		for i := range entries {
			if entries[i].Outcome != convert.OutcomeSkipped {
				entries[i].Destination = dest
			}
		}

		e.write(logger, file, dest, docs, res, byPath)
	}

	res.Entries = append(res.Entries, entries...)
}

// Dispatch converts every resource of bundle, recording counters and
// warnings in s. It returns the emitted documents, the kind of each emitted
// document and one Entry per resource.
func Dispatch(conv *convert.Converter, bundle *parser.Bundle, s *report.Summary) ([]*unstructured.Unstructured, []string, []Entry) {
	var (
		docs    []*unstructured.Unstructured
		kinds   []string
		entries = make([]Entry, 0, len(bundle.Resources))
	)

	for _, r := range bundle.Resources {
		result := conv.Convert(r)
		s.Record(result.Category)

		for _, w := range result.Warnings {
			s.Warn(w)
		}

		if result.Outcome == convert.OutcomeSkipped {
			s.Warn(result.Reason)
		}

		entries = append(entries, Entry{
			File:     bundle.Path,
			GVK:      r.GVK,
			Kind:     r.Kind(),
			Name:     r.Name,
			Category: result.Category,
			Outcome:  result.Outcome,
		})

		if result.Emits() {
			docs = append(docs, result.Object)
			kinds = append(kinds, result.Object.GetKind())
		}
	}

	return docs, kinds, entries
}

// write serializes docs and stores them at dest. A destination already
// written during this run keeps its documents and gets the new ones
// appended after a document boundary.
func (e *Engine) write(logger *slog.Logger, file, dest string, docs []*unstructured.Unstructured, res *Result, byPath map[string]*Output) {
	data, err := output.SerializeStream(docs)
	if err != nil {
		res.Summary.Warnf("Failed to serialize %s: %v", file, err)
		return
	}

	out, seen := byPath[dest]
	if !seen {
		out = &Output{Path: dest}
	}

	stream := yamlutil.AppendDocuments(out.Data, data)

	if !e.opts.DryRun {
		if err := e.opts.Writers(dest).Write(stream); err != nil {
			res.Summary.Warnf("Failed to write %s: %v", dest, err)
			logger.Warn("write failed", slog.String("path", dest), slog.String("error", err.Error()))

			return
		}

		logger.Info("doc(s) written", slog.String("source", file), slog.String("dest", dest), slog.Int("documents", len(docs)))
	}

	if seen {
		logger.Debug("grouped into existing output", slog.String("source", file), slog.String("dest", dest))
	} else {
		byPath[dest] = out
		res.Outputs = append(res.Outputs, out)
	}

	out.Data = stream
	out.Sources = append(out.Sources, file)
	out.Documents += len(docs)
}

func (e *Engine) transition(logger *slog.Logger, next State) {
	logger.Debug("engine state", slog.String("from", e.state.String()), slog.String("to", next.String()))
	e.state = next
}
