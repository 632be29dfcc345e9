package k8s

import (
	"strings"

	appsv1 "k8s.io/api/apps/v1"
	networkingv1 "k8s.io/api/networking/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// OpenShift source kinds with dedicated handling.
const (
	KindDeploymentConfig = "DeploymentConfig"
	KindRoute            = "Route"
	KindBuildConfig      = "BuildConfig"
)

// Target kinds produced by conversion.
var (
	DeploymentGVK = appsv1.SchemeGroupVersion.WithKind("Deployment")
	IngressGVK    = networkingv1.SchemeGroupVersion.WithKind("Ingress")
)

// IsOpenShiftAPI returns true for API groups served only by OpenShift
// (apps.openshift.io, route.openshift.io, build.openshift.io, ...).
func IsOpenShiftAPI(gvk schema.GroupVersionKind) bool {
	return gvk.Group == "openshift.io" || strings.HasSuffix(gvk.Group, ".openshift.io")
}

