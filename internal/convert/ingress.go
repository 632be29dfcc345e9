package convert

import (
	"math"

	networkingv1 "k8s.io/api/networking/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/util/intstr"

	"github.com/hupe1980/ocp2aks/internal/k8s"
	"github.com/hupe1980/ocp2aks/internal/maputil"
)

const (
	defaultRouteName  = "web"
	defaultTargetPort = 80
	minPort           = 1
	maxPort           = 65535

	// IngressClassAnnotation selects the ingress controller. The annotation
	// is used instead of spec.ingressClassName so that older controllers
	// honour it too.
	IngressClassAnnotation = "kubernetes.io/ingress.class"
)

// RouteOptions controls Route to Ingress conversion.
type RouteOptions struct {
	// DefaultDomain is appended to the route name when the Route has no host.
	DefaultDomain string

	// IngressClass is written into the IngressClassAnnotation.
	IngressClass string

	// TLSSecret, when set, forces a TLS entry using this secret.
	TLSSecret string
}

// ConvertRoute converts a route.openshift.io Route into a single-rule,
// single-path networking.k8s.io/v1 Ingress.
func ConvertRoute(src map[string]interface{}, opts RouteOptions) *unstructured.Unstructured {
	meta := mapOf(src["metadata"])
	spec := mapOf(src["spec"])

	name := stringOf(meta["name"])
	if name == "" {
		name = defaultRouteName
	}

	host := stringOf(spec["host"])
	if host == "" {
		host = name + "." + opts.DefaultDomain
	}

	serviceName := stringOf(mapOf(spec["to"])["name"])
	if serviceName == "" {
		serviceName = name
	}

	outMeta := map[string]interface{}{
		"name": name,
		"annotations": map[string]interface{}{
			IngressClassAnnotation: opts.IngressClass,
		},
	}

	if ns := stringOf(meta["namespace"]); ns != "" {
		outMeta["namespace"] = ns
	}

	if labels := mapOf(meta["labels"]); len(labels) > 0 {
		outMeta["labels"] = maputil.DeepCopyMap(labels)
	}

	outSpec := map[string]interface{}{
		"rules": []interface{}{
			map[string]interface{}{
				"host": host,
				"http": map[string]interface{}{
					"paths": []interface{}{
						map[string]interface{}{
							"path":     "/",
							"pathType": string(networkingv1.PathTypePrefix),
							"backend": map[string]interface{}{
								"service": map[string]interface{}{
									"name": serviceName,
									"port": servicePort(targetPort(mapOf(spec["port"])["targetPort"])),
								},
							},
						},
					},
				},
			},
		},
	}

	if tls := tlsEntries(spec, name, host, opts.TLSSecret); tls != nil {
		outSpec["tls"] = tls
	}

	out := &unstructured.Unstructured{Object: map[string]interface{}{
		"metadata": outMeta,
		"spec":     outSpec,
	}}
	out.SetGroupVersionKind(k8s.IngressGVK)

	return out
}

// targetPort reads spec.port.targetPort. Strings are named ports, numbers are
// numeric ports; missing, empty and out-of-range values fall back to port 80.
func targetPort(v interface{}) intstr.IntOrString {
	switch p := v.(type) {
	case string:
		if p != "" {
			return intstr.FromString(p)
		}
	case int64:
		if validPort(p) {
			return intstr.FromInt32(int32(p))
		}
	case float64:
		if p == math.Trunc(p) && validPort(int64(p)) {
			return intstr.FromInt32(int32(p))
		}
	}

	return intstr.FromInt32(defaultTargetPort)
}

func validPort(p int64) bool {
	return p >= minPort && p <= maxPort
}

// servicePort renders a target port as an Ingress service backend port.
func servicePort(port intstr.IntOrString) map[string]interface{} {
	if port.Type == intstr.String {
		return map[string]interface{}{"name": port.StrVal}
	}

	return map[string]interface{}{"number": int64(port.IntVal)}
}

// tlsEntries prefers an explicit secret; otherwise a Route that terminates
// TLS gets a "<name>-tls" secret. Nil means no TLS section.
func tlsEntries(spec map[string]interface{}, name, host, secret string) []interface{} {
	if secret == "" {
		if !hasTLS(spec["tls"]) {
			return nil
		}

		secret = name + "-tls"
	}

	return []interface{}{
		map[string]interface{}{
			"hosts":      []interface{}{host},
			"secretName": secret,
		},
	}
}

// hasTLS reports whether a Route tls value declares termination. Empty and
// zero values do not.
func hasTLS(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case map[string]interface{}:
		return len(t) > 0
	case []interface{}:
		return len(t) > 0
	case string:
		return t != ""
	case bool:
		return t
	case int64:
		return t != 0
	case float64:
		return t != 0
	default:
		return true
	}
}
