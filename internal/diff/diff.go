// Package diff compares what a conversion run would write with what is
// currently on disk, rendering unified diffs per destination file.
package diff

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
)

// DefaultContext is the number of unchanged lines around each hunk.
const DefaultContext = 3

// Result holds the unified diff of one destination file.
type Result struct {
	// Path is the destination file.
	Path string

	// Unified is the unified diff text, empty without differences.
	Unified string

	// HasDifferences is true when the proposed content differs from disk.
	HasDifferences bool

	// New is true when the file does not exist yet.
	New bool

	// Hunks holds Unified split at each "@@" header.
	Hunks []string
}

// Options configures diff computation.
type Options struct {
	OldLabel string
	NewLabel string
	Context  int
}

// DefaultOptions returns the labels used for on-disk versus proposed output.
func DefaultOptions() Options {
	return Options{
		OldLabel: "current",
		NewLabel: "proposed",
		Context:  DefaultContext,
	}
}

// Compute computes a unified diff between two YAML streams.
func Compute(oldDoc, newDoc string, opts Options) (*Result, error) {
	ud := difflib.UnifiedDiff{
		A:        splitLines(oldDoc),
		B:        splitLines(newDoc),
		FromFile: opts.OldLabel,
		ToFile:   opts.NewLabel,
		Context:  opts.Context,
	}

	unified, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return nil, fmt.Errorf("computing diff: %w", err)
	}

	res := &Result{
		Unified:        unified,
		HasDifferences: unified != "",
	}

	if res.HasDifferences {
		res.Hunks = extractHunks(unified)
	}

	return res, nil
}

// File diffs the content currently stored at path against proposed. A
// missing file diffs as empty and is marked New.
func File(path string, proposed []byte) (*Result, error) {
	current, err := os.ReadFile(path) //nolint:gosec // path comes from the output router
	isNew := false

	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		isNew = true
	}

	opts := DefaultOptions()
	opts.OldLabel = path + " (" + opts.OldLabel + ")"
	opts.NewLabel = path + " (" + opts.NewLabel + ")"

	if isNew {
		opts.OldLabel = "/dev/null"
	}

	res, err := Compute(string(current), string(proposed), opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	res.Path = path
	res.New = isNew

	return res, nil
}

// extractHunks splits unified diff output into individual hunks.
func extractHunks(unified string) []string {
	var hunks []string

	var current strings.Builder

	for _, line := range strings.Split(unified, "\n") {
		if strings.HasPrefix(line, "@@") && current.Len() > 0 {
			hunks = append(hunks, current.String())
			current.Reset()
		}

		current.WriteString(line)
		current.WriteString("\n")
	}

	if current.Len() > 0 {
		hunks = append(hunks, current.String())
	}

	return hunks
}

// Write writes a diff to w, colorizing added, removed and header lines when
// colored is true.
func Write(w io.Writer, res *Result, colored bool) {
	if !res.HasDifferences {
		return
	}

	palette := newPalette(colored)

	for _, line := range strings.Split(strings.TrimSuffix(res.Unified, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
			_, _ = palette.header.Fprintln(w, line)
		case strings.HasPrefix(line, "@@"):
			_, _ = palette.hunk.Fprintln(w, line)
		case strings.HasPrefix(line, "-"):
			_, _ = palette.removed.Fprintln(w, line)
		case strings.HasPrefix(line, "+"):
			_, _ = palette.added.Fprintln(w, line)
		default:
			_, _ = fmt.Fprintln(w, line)
		}
	}
}

type palette struct {
	header, hunk, removed, added *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		header:  color.New(color.Bold),
		hunk:    color.New(color.FgCyan),
		removed: color.New(color.FgRed),
		added:   color.New(color.FgGreen),
	}

	for _, c := range []*color.Color{p.header, p.hunk, p.removed, p.added} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return p
}

// splitLines splits a string into lines for diff processing.
// Each element includes a trailing newline for difflib compatibility.
func splitLines(s string) []string {
	if s == "" {
		return []string{}
	}

	return strings.SplitAfter(s, "\n")
}
