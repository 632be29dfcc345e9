// Package audit checks converted manifests for AKS readiness: OpenShift-only
// APIs that were passed through, floating image tags, images outside the
// target registry and workload settings AKS policies commonly reject.
package audit

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/hupe1980/ocp2aks/internal/k8s"
)

// Severity ranks the impact of a finding.
type Severity int

const (
	// SeverityInfo is purely informational.
	SeverityInfo Severity = iota
	// SeverityLow indicates a minor concern.
	SeverityLow
	// SeverityMedium indicates a moderate concern.
	SeverityMedium
	// SeverityHigh indicates the resource will likely fail on AKS.
	SeverityHigh
)

// String returns the lowercase label for the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ParseSeverity parses a severity string (case-insensitive).
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return SeverityHigh, nil
	case "medium":
		return SeverityMedium, nil
	case "low":
		return SeverityLow, nil
	case "info":
		return SeverityInfo, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity %q, valid values: high, medium, low, info", s)
	}
}

// Finding represents a single audit result.
type Finding struct {
	RuleID       string   `json:"ruleId"`
	Severity     Severity `json:"severity"`
	ResourceID   string   `json:"resourceId"`
	ResourceKind string   `json:"resourceKind"`
	File         string   `json:"file,omitempty"`
	Message      string   `json:"message"`
	Remediation  string   `json:"remediation"`
}

// Check is the interface every audit rule implements.
type Check interface {
	// ID returns the unique rule identifier (e.g. "AKS-001").
	ID() string
	// Run evaluates the resources and returns any findings.
	Run(ctx context.Context, resources []*k8s.Resource) []Finding
}

// Options configures the built-in checks.
type Options struct {
	// Registry is the registry converted images are expected to come from.
	// The registry check is disabled when empty.
	Registry string
}

// Result aggregates findings from all checks.
type Result struct {
	Findings []Finding      `json:"findings"`
	Summary  map[string]int `json:"summary"`
}

// Passed returns true when no finding meets or exceeds the threshold severity.
func (r *Result) Passed(threshold Severity) bool {
	for _, f := range r.Findings {
		if f.Severity >= threshold {
			return false
		}
	}

	return true
}

// Auditor orchestrates a set of checks against resources.
type Auditor struct {
	checks []Check
}

// New creates an Auditor with the given checks.
func New(checks ...Check) *Auditor {
	return &Auditor{checks: checks}
}

// Run executes every registered check and returns the findings sorted by
// severity (descending), rule and resource.
func (a *Auditor) Run(ctx context.Context, resources []*k8s.Resource) *Result {
	var all []Finding

	for _, chk := range a.checks {
		all = append(all, chk.Run(ctx, resources)...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Severity != all[j].Severity {
			return all[i].Severity > all[j].Severity
		}

		if all[i].RuleID != all[j].RuleID {
			return all[i].RuleID < all[j].RuleID
		}

		return all[i].ResourceID < all[j].ResourceID
	})

	summary := make(map[string]int)
	for _, f := range all {
		summary[f.Severity.String()]++
	}

	return &Result{Findings: all, Summary: summary}
}

// DefaultChecks returns the built-in checks.
func DefaultChecks(opts Options) []Check {
	checks := []Check{
		&OpenShiftAPICheck{},
		&LatestTagCheck{},
		&PrivilegedCheck{},
		&HostNamespaceCheck{},
		&ResourceLimitsCheck{},
	}

	if opts.Registry != "" {
		checks = append(checks, &RegistryCheck{Registry: opts.Registry})
	}

	return checks
}
