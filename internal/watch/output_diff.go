package watch

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
)

// Output change kinds.
const (
	ChangeAdded    = "added"
	ChangeRemoved  = "removed"
	ChangeModified = "modified"
)

// OutputChange describes how one destination file differs between two
// consecutive runs.
type OutputChange struct {
	// Kind is one of ChangeAdded, ChangeRemoved or ChangeModified.
	Kind string

	// Path is the destination file.
	Path string
}

// OutputDiff compares the destination streams of two runs, keyed by path.
// Changes are sorted by path.
func OutputDiff(prev, curr map[string][]byte) []OutputChange {
	var changes []OutputChange

	for path, data := range curr {
		old, ok := prev[path]

		switch {
		case !ok:
			changes = append(changes, OutputChange{Kind: ChangeAdded, Path: path})
		case !bytes.Equal(old, data):
			changes = append(changes, OutputChange{Kind: ChangeModified, Path: path})
		}
	}

	for path := range prev {
		if _, ok := curr[path]; !ok {
			changes = append(changes, OutputChange{Kind: ChangeRemoved, Path: path})
		}
	}

	slices.SortFunc(changes, func(a, b OutputChange) int {
		return strings.Compare(a.Path, b.Path)
	})

	return changes
}

// OutputDiffSummary returns a compact human-readable summary of changes.
func OutputDiffSummary(changes []OutputChange) string {
	if len(changes) == 0 {
		return "no output changes"
	}

	var added, removed, modified int

	for _, c := range changes {
		switch c.Kind {
		case ChangeAdded:
			added++
		case ChangeRemoved:
			removed++
		case ChangeModified:
			modified++
		}
	}

	var parts []string

	if added > 0 {
		parts = append(parts, fmt.Sprintf("+%d file(s) added", added))
	}

	if removed > 0 {
		parts = append(parts, fmt.Sprintf("-%d file(s) removed", removed))
	}

	if modified > 0 {
		parts = append(parts, fmt.Sprintf("~%d file(s) modified", modified))
	}

	return strings.Join(parts, ", ")
}
