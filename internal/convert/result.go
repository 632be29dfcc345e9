package convert

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/hupe1980/ocp2aks/internal/k8s"
)

// Result is the single outcome of dispatching one source document.
type Result struct {
	// Category is the dispatch target the source kind mapped to.
	Category Category

	// Outcome tells which of Object or Reason is meaningful.
	Outcome Outcome

	// Source is the document that was dispatched.
	Source *k8s.Resource

	// Object is the document to emit. Nil when Outcome is OutcomeSkipped.
	Object *unstructured.Unstructured

	// Reason is the human-readable skip reason.
	Reason string

	// Warnings are non-fatal findings raised while converting.
	Warnings []string
}

// Emits reports whether the result contributes a document to the output.
func (r Result) Emits() bool {
	return r.Outcome != OutcomeSkipped && r.Object != nil
}

// Kind returns the kind of the emitted document, or "" when skipped.
func (r Result) Kind() string {
	if !r.Emits() {
		return ""
	}

	return r.Object.GetKind()
}
