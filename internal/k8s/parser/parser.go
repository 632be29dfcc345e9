// Package parser decodes multi-document YAML manifests into k8s.Resource
// bundles.
package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/ocp2aks/internal/k8s"
	"github.com/hupe1980/ocp2aks/internal/maputil"
)

// Bundle is the ordered set of documents extracted from one source.
type Bundle struct {
	// Path is the source file path (empty for in-memory input).
	Path string

	// Resources holds every document that is a map carrying a kind key,
	// in stream order.
	Resources []*k8s.Resource

	// Dropped counts documents that were not maps or had no kind key.
	Dropped int
}

// Parser parses raw manifests into resource bundles.
type Parser interface {
	Parse(ctx context.Context, path string, data []byte) (*Bundle, error)
}

// compile-time interface conformance check.
var _ Parser = (*DefaultParser)(nil)

// DefaultParser is the default implementation of the Parser interface.
type DefaultParser struct{}

// NewParser creates a new DefaultParser.
func NewParser() *DefaultParser {
	return &DefaultParser{}
}

// ParseFile reads and parses the file at path.
func (p *DefaultParser) ParseFile(ctx context.Context, path string) (*Bundle, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return p.Parse(ctx, path, data)
}

// Parse decodes every document of the stream. A syntax error anywhere in the
// stream fails the whole bundle so that a malformed file contributes nothing.
func (p *DefaultParser) Parse(_ context.Context, path string, data []byte) (*Bundle, error) {
	bundle := &Bundle{Path: path}

	dec := yaml.NewDecoder(bytes.NewReader(data))

	for docIndex := 0; ; docIndex++ {
		var raw interface{}

		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("decoding document %d: %w", docIndex, err)
		}

		obj, ok := maputil.Normalize(raw).(map[string]interface{})
		if !ok {
			bundle.Dropped++
			continue
		}

		if _, hasKind := obj["kind"]; !hasKind {
			bundle.Dropped++
			continue
		}

		bundle.Resources = append(bundle.Resources, k8s.NewResource(obj, path, len(bundle.Resources)))
	}

	return bundle, nil
}
