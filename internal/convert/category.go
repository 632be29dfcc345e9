package convert

import "github.com/hupe1980/ocp2aks/internal/k8s"

// Category is the closed set of dispatch targets a source document can fall
// into. Every document carrying a kind maps to exactly one Category.
type Category int

const (
	// CategoryDeploymentConfig documents are converted to apps/v1 Deployments.
	CategoryDeploymentConfig Category = iota
	// CategoryRoute documents are converted to networking.k8s.io/v1 Ingresses.
	CategoryRoute
	// CategoryBuildConfig documents are skipped with remediation advice.
	CategoryBuildConfig
	// CategoryOther documents pass through with annotations filtered.
	CategoryOther
)

// Categories returns every Category in report order.
func Categories() []Category {
	return []Category{CategoryDeploymentConfig, CategoryRoute, CategoryBuildConfig, CategoryOther}
}

// String returns the category name used in reports and counters.
func (c Category) String() string {
	switch c {
	case CategoryDeploymentConfig:
		return k8s.KindDeploymentConfig
	case CategoryRoute:
		return k8s.KindRoute
	case CategoryBuildConfig:
		return k8s.KindBuildConfig
	default:
		return "Other"
	}
}

// CategoryOf classifies a kind discriminator. Matching is exact: a document
// that was already converted (Deployment, Ingress) is Other.
func CategoryOf(kind string) Category {
	switch kind {
	case k8s.KindDeploymentConfig:
		return CategoryDeploymentConfig
	case k8s.KindRoute:
		return CategoryRoute
	case k8s.KindBuildConfig:
		return CategoryBuildConfig
	default:
		return CategoryOther
	}
}

// Outcome is what happened to one source document.
type Outcome int

const (
	// OutcomeConverted means a new document in the target schema was produced.
	OutcomeConverted Outcome = iota
	// OutcomeSkipped means no document was produced; Result.Reason explains why.
	OutcomeSkipped
	// OutcomePassThrough means the source document is emitted as-is, apart
	// from annotation filtering.
	OutcomePassThrough
)

// String returns a short lower-case label for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeConverted:
		return "converted"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "pass-through"
	}
}
