// Package convert maps OpenShift resources onto their Kubernetes
// equivalents: DeploymentConfig to Deployment, Route to Ingress. BuildConfigs
// are skipped with remediation advice and every other kind passes through
// with OpenShift-only annotations removed.
package convert

import (
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/hupe1980/ocp2aks/internal/k8s"
	"github.com/hupe1980/ocp2aks/internal/maputil"
)

// defaultBuildTarget names the registry in BuildConfig advice when no
// registry override is configured.
const defaultBuildTarget = "ACR"

// Options holds every knob the converters read.
type Options struct {
	Route RouteOptions
	Image ImageOptions
}

// Converter dispatches documents to the handler of their Category.
type Converter struct {
	opts Options
}

// New creates a Converter.
func New(opts Options) *Converter {
	return &Converter{opts: opts}
}

// Convert produces exactly one Result for res. The source document is never
// modified.
func (c *Converter) Convert(res *k8s.Resource) Result {
	category := CategoryOf(res.Kind())

	var result Result

	switch category {
	case CategoryDeploymentConfig:
		result = c.deploymentConfig(res)
	case CategoryRoute:
		result = c.route(res)
	case CategoryBuildConfig:
		result = c.buildConfig(res)
	case CategoryOther:
		result = passThrough(res)
	default:
		panic(fmt.Sprintf("convert: unhandled category %d", category))
	}

	result.Category = category
	result.Source = res

	return result
}

func (c *Converter) deploymentConfig(res *k8s.Resource) Result {
	obj, warnings := ConvertDeploymentConfig(res.Object.Object, c.opts.Image)

	return Result{Outcome: OutcomeConverted, Object: obj, Warnings: warnings}
}

func (c *Converter) route(res *k8s.Resource) Result {
	return Result{Outcome: OutcomeConverted, Object: ConvertRoute(res.Object.Object, c.opts.Route)}
}

// buildConfig never emits a document: builds belong in an external CI system.
func (c *Converter) buildConfig(res *k8s.Resource) Result {
	target := c.opts.Image.Registry
	if target == "" {
		target = defaultBuildTarget
	}

	return Result{
		Outcome: OutcomeSkipped,
		Reason: fmt.Sprintf(
			"BuildConfig '%s' skipped: move builds to CI (e.g., GitHub Actions) and push images to %s.",
			res.NameOr("unnamed"), target),
	}
}

// passThrough emits a copy of the document with reserved annotations removed.
func passThrough(res *k8s.Resource) Result {
	obj := maputil.DeepCopyMap(res.Object.Object)
	k8s.StripAnnotations(obj)

	return Result{Outcome: OutcomePassThrough, Object: &unstructured.Unstructured{Object: obj}}
}
