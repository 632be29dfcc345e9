// Package report accumulates the outcome of a conversion run and renders it
// as a Markdown report and a console summary.
package report

import (
	"fmt"

	"github.com/hupe1980/ocp2aks/internal/convert"
)

// Summary holds per-category counters and the ordered warning trail of one
// run. Counters only ever increase. A Summary is owned by a single run and
// is not safe for concurrent use.
type Summary struct {
	counts   map[convert.Category]int
	warnings []string
}

// NewSummary returns an empty Summary.
func NewSummary() *Summary {
	return &Summary{counts: make(map[convert.Category]int, len(convert.Categories()))}
}

// Record counts one document dispatched to category.
func (s *Summary) Record(category convert.Category) {
	s.counts[category]++
}

// Warn appends a warning.
func (s *Summary) Warn(msg string) {
	s.warnings = append(s.warnings, msg)
}

// Warnf appends a formatted warning.
func (s *Summary) Warnf(format string, args ...interface{}) {
	s.Warn(fmt.Sprintf(format, args...))
}

// Count returns the counter of category.
func (s *Summary) Count(category convert.Category) int {
	return s.counts[category]
}

// Converted returns the number of documents translated to a new schema.
func (s *Summary) Converted() int {
	return s.counts[convert.CategoryDeploymentConfig] + s.counts[convert.CategoryRoute]
}

// Warnings returns a copy of the warnings in the order they were recorded.
func (s *Summary) Warnings() []string {
	return append([]string(nil), s.warnings...)
}
