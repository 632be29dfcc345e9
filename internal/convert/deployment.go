package convert

import (
	"fmt"
	"strings"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/hupe1980/ocp2aks/internal/k8s"
	"github.com/hupe1980/ocp2aks/internal/maputil"
)

const (
	defaultDeploymentName = "app"
	defaultRollingPercent = "25%"
)

// deploymentConfigOnlyFields are DeploymentConfig spec fields with no
// Deployment equivalent.
var deploymentConfigOnlyFields = []string{"triggers", "test", "paused"}

// containerListKeys are the pod spec keys whose entries get image resolution.
var containerListKeys = []string{"containers", "initContainers"}

// ImageOptions controls container image rewriting.
type ImageOptions struct {
	// Registry overrides the registry of short image names. A value that
	// contains ":" is used as the complete image reference.
	Registry string

	// RepoPrefix is inserted between the registry and the image name.
	RepoPrefix string
}

// ConvertDeploymentConfig converts an apps.openshift.io DeploymentConfig into
// an apps/v1 Deployment. The returned document shares no structure with src:
// top-level labels, selector match labels and pod template labels are three
// independent copies. The returned warnings report resolved images that are
// not valid OCI references.
func ConvertDeploymentConfig(src map[string]interface{}, opts ImageOptions) (*unstructured.Unstructured, []string) {
	meta := mapOf(src["metadata"])
	spec := maputil.DeepCopyMap(mapOf(src["spec"]))

	if spec == nil {
		spec = map[string]interface{}{}
	}

	name := stringOf(meta["name"])
	if name == "" {
		name = defaultDeploymentName
	}

	template := mapOf(spec["template"])
	tplMeta := mapOf(template["metadata"])

	tplSpec := mapOf(template["spec"])
	if tplSpec == nil {
		tplSpec = map[string]interface{}{}
	}

	labels := firstNonEmpty(mapOf(tplMeta["labels"]), mapOf(meta["labels"]))
	if labels == nil {
		labels = map[string]interface{}{"app": name}
	}

	outMeta := map[string]interface{}{
		"name":   name,
		"labels": maputil.DeepCopyMap(labels),
	}

	if ns := stringOf(meta["namespace"]); ns != "" {
		outMeta["namespace"] = ns
	}

	if annotations := k8s.FilterAnnotations(mapOf(meta["annotations"])); len(annotations) > 0 {
		outMeta["annotations"] = annotations
	}

	podMeta := map[string]interface{}{
		"labels": maputil.DeepCopyMap(labels),
	}

	if annotations := k8s.FilterAnnotations(mapOf(tplMeta["annotations"])); len(annotations) > 0 {
		podMeta["annotations"] = annotations
	}

	strategy := convertStrategy(mapOf(spec["strategy"]))

	for _, field := range deploymentConfigOnlyFields {
		delete(spec, field)
	}

	// DeploymentConfig selectors are plain label maps; Deployments need
	// matchLabels, which must equal the template labels.
	spec["replicas"] = valueOr(spec, "replicas", int64(1))
	spec["selector"] = map[string]interface{}{"matchLabels": maputil.DeepCopyMap(labels)}
	spec["template"] = map[string]interface{}{
		"metadata": podMeta,
		"spec":     tplSpec,
	}
	spec["strategy"] = strategy

	warnings := normalizeContainers(tplSpec, name, opts)

	out := &unstructured.Unstructured{Object: map[string]interface{}{
		"metadata": outMeta,
		"spec":     spec,
	}}
	out.SetGroupVersionKind(k8s.DeploymentGVK)

	return out, warnings
}

// convertStrategy maps a DeploymentConfig strategy onto a Deployment strategy.
// Recreate stays Recreate; Rolling, Custom and missing strategies become
// RollingUpdate with maxSurge/maxUnavailable taken from rollingParams.
func convertStrategy(src map[string]interface{}) map[string]interface{} {
	typ := stringOf(src["type"])
	if typ == "" {
		typ = "Rolling"
	}

	if strings.HasPrefix(strings.ToLower(typ), "recreate") {
		return map[string]interface{}{"type": string(appsv1.RecreateDeploymentStrategyType)}
	}

	params := mapOf(src["rollingParams"])

	return map[string]interface{}{
		"type": string(appsv1.RollingUpdateDeploymentStrategyType),
		"rollingUpdate": map[string]interface{}{
			"maxSurge":       maputil.DeepCopyValue(valueOr(params, "maxSurge", defaultRollingPercent)),
			"maxUnavailable": maputil.DeepCopyValue(valueOr(params, "maxUnavailable", defaultRollingPercent)),
		},
	}
}

// normalizeContainers resolves every container image and defaults the pull
// policy. podSpec is modified in place and must already be a private copy.
func normalizeContainers(podSpec map[string]interface{}, resourceName string, opts ImageOptions) []string {
	var warnings []string

	for _, key := range containerListKeys {
		containers, _ := podSpec[key].([]interface{})

		for _, item := range containers {
			c := mapOf(item)
			if c == nil {
				continue
			}

			hint := stringOf(c["name"])
			if hint == "" {
				hint = resourceName
			}

			image := k8s.ResolveImage(stringOf(c["image"]), hint, opts.Registry, opts.RepoPrefix)
			c["image"] = image

			if err := k8s.ValidateImageReference(image); err != nil {
				warnings = append(warnings, fmt.Sprintf("DeploymentConfig '%s': container '%s': %v", resourceName, hint, err))
			}

			if stringOf(c["imagePullPolicy"]) == "" {
				c["imagePullPolicy"] = string(corev1.PullIfNotPresent)
			}
		}
	}

	return warnings
}
