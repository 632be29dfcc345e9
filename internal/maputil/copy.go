// Package maputil provides deep-copy and normalisation helpers for the
// generic document trees (maps, slices, scalars) that flow from parsed
// OpenShift manifests into converted Kubernetes manifests.
//
// Every value that crosses from a source document into an output document
// goes through DeepCopyValue, so output trees never share structure with
// their sources or with each other.
package maputil

import (
	"fmt"
	"time"
)

// DeepCopyMap performs a deep copy of a map[string]interface{}.
func DeepCopyMap(src map[string]interface{}) map[string]interface{} {
	if src == nil {
		return nil
	}

	dst := make(map[string]interface{}, len(src))

	for k, v := range src {
		dst[k] = DeepCopyValue(v)
	}

	return dst
}

// DeepCopySlice performs a deep copy of a []interface{}.
func DeepCopySlice(src []interface{}) []interface{} {
	if src == nil {
		return nil
	}

	dst := make([]interface{}, len(src))

	for i, v := range src {
		dst[i] = DeepCopyValue(v)
	}

	return dst
}

// DeepCopyValue deep-copies maps and slices and returns scalars unchanged.
func DeepCopyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return DeepCopyMap(val)
	case []interface{}:
		return DeepCopySlice(val)
	case map[string]string:
		dst := make(map[string]string, len(val))
		for k, s := range val {
			dst[k] = s
		}

		return dst
	default:
		return v
	}
}

// Normalize converts a decoded YAML value into the JSON-compatible shape
// expected by apimachinery's unstructured helpers: string-keyed maps, int64
// integers, float64 floats and RFC 3339 strings for timestamps. The result
// never aliases the input.
func Normalize(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		dst := make(map[string]interface{}, len(val))
		for k, item := range val {
			dst[k] = Normalize(item)
		}

		return dst
	case map[interface{}]interface{}:
		dst := make(map[string]interface{}, len(val))
		for k, item := range val {
			dst[fmt.Sprint(k)] = Normalize(item)
		}

		return dst
	case []interface{}:
		dst := make([]interface{}, len(val))
		for i, item := range val {
			dst[i] = Normalize(item)
		}

		return dst
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case uint:
		return int64(val) //nolint:gosec
	case uint32:
		return int64(val)
	case uint64:
		return int64(val) //nolint:gosec
	case float32:
		return float64(val)
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	default:
		return v
	}
}
