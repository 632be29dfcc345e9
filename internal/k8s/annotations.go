package k8s

import (
	"strings"

	"github.com/hupe1980/ocp2aks/internal/maputil"
)

// ReservedAnnotationPrefix marks platform-proprietary annotation keys that
// have no meaning outside OpenShift.
const ReservedAnnotationPrefix = "openshift.io/"

// FilterAnnotations returns a new map holding every entry of annotations
// whose key does not start with ReservedAnnotationPrefix. The input is never
// modified and the result is never nil.
func FilterAnnotations(annotations map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(annotations))

	for k, v := range annotations {
		if strings.HasPrefix(k, ReservedAnnotationPrefix) {
			continue
		}

		out[k] = maputil.DeepCopyValue(v)
	}

	return out
}

// StripAnnotations filters metadata.annotations of obj in place. The
// annotations key is removed entirely when nothing survives. Documents
// without a metadata map are left untouched.
func StripAnnotations(obj map[string]interface{}) {
	meta, ok := obj["metadata"].(map[string]interface{})
	if !ok {
		return
	}

	raw, _ := meta["annotations"].(map[string]interface{})

	filtered := FilterAnnotations(raw)
	if len(filtered) == 0 {
		delete(meta, "annotations")
		return
	}

	meta["annotations"] = filtered
}
