package watch

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hupe1980/ocp2aks/internal/engine"
)

// RunFunc is called each time the watcher triggers a conversion run.
type RunFunc func(ctx context.Context) (*RunResult, error)

// RunResult holds the figures of a single run that the watcher reports.
type RunResult struct {
	Files     int
	Converted int
	Warnings  int

	// Outputs maps each destination path to the stream written there. It is
	// compared against the previous run to list changed destinations.
	Outputs map[string][]byte
}

// Options configures the watch behaviour.
type Options struct {
	// SourceDir is the manifest directory to watch recursively.
	SourceDir string

	// Exclude lists paths whose events are ignored, typically the output
	// directory and the report file.
	Exclude []string

	// Debounce is the quiet period before triggering a run.
	Debounce time.Duration

	// Logger is used for structured logging.
	Logger *slog.Logger

	// Out is the writer for user-facing status messages.
	Out io.Writer
}

// DefaultOptions returns sensible default watch options.
func DefaultOptions() Options {
	return Options{
		Debounce: 500 * time.Millisecond,
		Logger:   slog.Default(),
		Out:      os.Stderr,
	}
}

// runner serializes runs and remembers the previous outputs.
type runner struct {
	mu    sync.Mutex
	opts  Options
	runFn RunFunc
	prev  map[string][]byte
}

// Run starts the file watcher and blocks until the context is cancelled
// or a SIGINT/SIGTERM signal is received.
func Run(ctx context.Context, opts Options, runFn RunFunc) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Out == nil {
		opts.Out = io.Discard
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	exclude := absPaths(opts.Exclude)

	if err := addRecursive(watcher, opts.SourceDir, exclude); err != nil {
		return fmt.Errorf("watching source directory: %w", err)
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(opts.Out, "watching %s (debounce=%s)\n", opts.SourceDir, opts.Debounce)

	r := &runner{opts: opts, runFn: runFn}
	r.run(sigCtx, "(initial)", 0)

	debouncer := NewDebouncer(opts.Debounce, func(path string, events int) {
		r.run(sigCtx, path, events)
	})
	defer debouncer.Stop()

	for {
		select {
		case <-sigCtx.Done():
			fmt.Fprintln(opts.Out, "\nshutting down watcher")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !isRelevant(event, exclude) {
				continue
			}

			// New directories are watched too.
			if event.Has(fsnotify.Create) {
				if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
					_ = addRecursive(watcher, event.Name, exclude)
				}
			}

			debouncer.Trigger(event.Name)

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			opts.Logger.Error("watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// run executes a single conversion run and prints the status line.
func (r *runner) run(ctx context.Context, trigger string, events int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	now := time.Now().Format("15:04:05")

	if events > 1 {
		trigger = fmt.Sprintf("%s (+%d more)", trigger, events-1)
	}

	result, err := r.runFn(ctx)
	if err != nil {
		fmt.Fprintf(r.opts.Out, "[%s] %s → ERROR: %v\n", now, trigger, err)
		return
	}

	fmt.Fprintf(r.opts.Out, "[%s] %s → OK (%d files, %d converted, %d warnings)\n",
		now, trigger, result.Files, result.Converted, result.Warnings)

	if r.prev != nil {
		changes := OutputDiff(r.prev, result.Outputs)
		fmt.Fprintf(r.opts.Out, "  output: %s\n", OutputDiffSummary(changes))

		for _, c := range changes {
			r.opts.Logger.Debug("output changed", slog.String("path", c.Path), slog.String("change", c.Kind))
		}
	}

	r.prev = result.Outputs
	if r.prev == nil {
		r.prev = map[string][]byte{}
	}
}

// addRecursive walks root and adds all directories to the watcher, skipping
// hidden and excluded directories.
func addRecursive(watcher *fsnotify.Watcher, root string, exclude []string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		if path != root && (strings.HasPrefix(d.Name(), ".") || isExcluded(path, exclude)) {
			return filepath.SkipDir
		}

		return watcher.Add(path)
	})
}

// isRelevant filters out events that cannot change the conversion result.
// Writes and creates must concern a manifest file or a directory; removals
// and renames always count since the old path may have been a directory.
func isRelevant(event fsnotify.Event, exclude []string) bool {
	if event.Op == 0 {
		return false
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	name := filepath.Base(event.Name)

	// Editor temporaries and hidden files.
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".swp") || strings.HasPrefix(name, "#") {
		return false
	}

	if isExcluded(event.Name, exclude) {
		return false
	}

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		return true
	}

	if engine.IsManifestFile(event.Name) {
		return true
	}

	info, err := os.Stat(event.Name)

	return err == nil && info.IsDir()
}

// isExcluded reports whether path equals or lies below an excluded path.
func isExcluded(path string, exclude []string) bool {
	if len(exclude) == 0 {
		return false
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	for _, ex := range exclude {
		if abs == ex || strings.HasPrefix(abs, ex+string(filepath.Separator)) {
			return true
		}
	}

	return false
}

func absPaths(paths []string) []string {
	out := make([]string, 0, len(paths))

	for _, p := range paths {
		if p == "" {
			continue
		}

		if abs, err := filepath.Abs(p); err == nil {
			out = append(out, abs)
		}
	}

	return out
}
