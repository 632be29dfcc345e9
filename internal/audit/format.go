package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/ocp2aks/internal/report"
)

// Formatter writes audit results to a writer.
type Formatter interface {
	Format(w io.Writer, result *Result) error
}

// NewFormatter returns a formatter for the given format name.
// Supported: "table" (default) and "json".
func NewFormatter(format string) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "table":
		return &TableFormatter{}, nil
	case "json":
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q: use table or json", format)
	}
}

// TableFormatter writes findings as a human-readable table.
type TableFormatter struct{}

// Format writes the result as a table followed by a one-line summary.
func (f *TableFormatter) Format(w io.Writer, result *Result) error {
	if len(result.Findings) == 0 {
		_, err := fmt.Fprintln(w, "No findings.")
		return err
	}

	rows := make([][]string, 0, len(result.Findings))

	for _, finding := range result.Findings {
		rows = append(rows, []string{
			strings.ToUpper(finding.Severity.String()),
			finding.RuleID,
			finding.ResourceID,
			finding.Message,
		})
	}

	report.PrintTable(w, []string{"severity", "rule", "resource", "message"}, rows)

	var parts []string

	for _, sev := range []Severity{SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo} {
		if count := result.Summary[sev.String()]; count > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", count, sev))
		}
	}

	_, err := fmt.Fprintf(w, "\nFindings: %d total (%s)\n", len(result.Findings), strings.Join(parts, ", "))

	return err
}

// JSONFormatter writes findings as JSON.
type JSONFormatter struct{}

type jsonFinding struct {
	RuleID       string `json:"ruleId"`
	Severity     string `json:"severity"`
	ResourceID   string `json:"resourceId"`
	ResourceKind string `json:"resourceKind"`
	File         string `json:"file,omitempty"`
	Message      string `json:"message"`
	Remediation  string `json:"remediation"`
}

type jsonOutput struct {
	Findings []jsonFinding  `json:"findings"`
	Summary  map[string]int `json:"summary"`
	Total    int            `json:"total"`
}

// Format writes the result as indented JSON.
func (f *JSONFormatter) Format(w io.Writer, result *Result) error {
	out := jsonOutput{
		Findings: make([]jsonFinding, 0, len(result.Findings)),
		Summary:  result.Summary,
		Total:    len(result.Findings),
	}

	for _, finding := range result.Findings {
		out.Findings = append(out.Findings, jsonFinding{
			RuleID:       finding.RuleID,
			Severity:     finding.Severity.String(),
			ResourceID:   finding.ResourceID,
			ResourceKind: finding.ResourceKind,
			File:         finding.File,
			Message:      finding.Message,
			Remediation:  finding.Remediation,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(out)
}
