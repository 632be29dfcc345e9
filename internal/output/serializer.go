package output

import (
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/hupe1980/ocp2aks/internal/yamlutil"
)

// SerializeDocument converts one document to YAML. Keys are emitted in
// sorted order, which keeps apiVersion, kind, metadata and spec first for
// every Kubernetes resource.
func SerializeDocument(obj map[string]interface{}) ([]byte, error) {
	data, err := sigsyaml.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("serializing YAML: %w", err)
	}

	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	return data, nil
}

// SerializeStream serializes docs in order as one multi-document stream with
// a "---" boundary between consecutive documents and none after the last.
func SerializeStream(docs []*unstructured.Unstructured) ([]byte, error) {
	parts := make([][]byte, 0, len(docs))

	for i, doc := range docs {
		data, err := SerializeDocument(doc.Object)
		if err != nil {
			return nil, fmt.Errorf("document %d (%s/%s): %w", i, doc.GetKind(), doc.GetName(), err)
		}

		parts = append(parts, data)
	}

	return yamlutil.JoinDocuments(parts), nil
}
