package k8s

import (
	"fmt"
	"strings"

	"github.com/google/go-containerregistry/pkg/name"
)

// LatestTag is the placeholder tag used for images resolved from a bare
// name. Tag pinning is expected to happen in the delivery pipeline.
const LatestTag = "latest"

// ResolveImage decides the target image reference of a container.
//
//   - An image that contains "/" or "." and also ":" is treated as fully
//     qualified and returned unchanged.
//   - A registry override that contains ":" is a complete reference and is
//     returned as-is.
//   - Otherwise the repository is "<repoPrefix>/<nameHint>" (or just the hint)
//     and the result is "<registry>/<repo>:latest" with an override, the raw
//     image when set, or "<repo>:latest".
//
// The result is never empty.
func ResolveImage(image, nameHint, registry, repoPrefix string) string {
	if IsFullyQualified(image) {
		return image
	}

	if registry != "" && strings.Contains(registry, ":") {
		return registry
	}

	repo := nameHint
	if repoPrefix != "" {
		repo = repoPrefix + "/" + repo
	}

	if registry != "" {
		return registry + "/" + repo + ":" + LatestTag
	}

	if image != "" {
		return image
	}

	return repo + ":" + LatestTag
}

// IsFullyQualified reports whether image already carries registry or path
// information and a tag. "myimage:5000" does not qualify, while
// "registry.io/app:1.0" and "app.v2:1" do.
func IsFullyQualified(image string) bool {
	if image == "" {
		return false
	}

	return (strings.Contains(image, "/") || strings.Contains(image, ".")) && strings.Contains(image, ":")
}

// ValidateImageReference parses image as an OCI image reference.
func ValidateImageReference(image string) error {
	if _, err := name.ParseReference(image); err != nil {
		return fmt.Errorf("invalid image reference %q: %w", image, err)
	}

	return nil
}
