// Package k8s provides the document abstraction shared by the converters and
// the leaf helpers every converter relies on: image reference resolution and
// annotation filtering.
package k8s

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Resource represents one parsed manifest document together with where it
// came from.
type Resource struct {
	// GVK is the GroupVersionKind of the document. Group and Version are
	// empty when the document has no apiVersion.
	GVK schema.GroupVersionKind

	// Name is metadata.name (may be empty).
	Name string

	// Namespace is metadata.namespace (may be empty).
	Namespace string

	// SourcePath is the file the document was read from. Empty for
	// in-memory input.
	SourcePath string

	// Index is the zero-based position of the document in its source
	// stream, counting only documents that were kept.
	Index int

	// Object is the full unstructured representation.
	Object *unstructured.Unstructured
}

// NewResource wraps obj, deriving GVK, name and namespace from its content.
func NewResource(obj map[string]interface{}, sourcePath string, index int) *Resource {
	u := &unstructured.Unstructured{Object: obj}

	apiVersion, _ := obj["apiVersion"].(string)
	kind, _ := obj["kind"].(string)

	name, _, _ := unstructured.NestedString(obj, "metadata", "name")
	namespace, _, _ := unstructured.NestedString(obj, "metadata", "namespace")

	return &Resource{
		GVK:        schema.FromAPIVersionAndKind(apiVersion, kind),
		Name:       name,
		Namespace:  namespace,
		SourcePath: sourcePath,
		Index:      index,
		Object:     u,
	}
}

// APIVersion returns the apiVersion string (e.g. "apps.openshift.io/v1").
func (r *Resource) APIVersion() string {
	if r.Object != nil {
		return r.Object.GetAPIVersion()
	}

	return r.GVK.GroupVersion().String()
}

// Kind returns the resource kind (e.g. "DeploymentConfig").
func (r *Resource) Kind() string {
	return r.GVK.Kind
}

// NameOr returns metadata.name, or fallback when the document has none.
func (r *Resource) NameOr(fallback string) string {
	if r.Name == "" {
		return fallback
	}

	return r.Name
}

// QualifiedName returns "kind/name" for display purposes.
func (r *Resource) QualifiedName() string {
	return r.GVK.Kind + "/" + r.NameOr("unnamed")
}
