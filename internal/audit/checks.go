package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-containerregistry/pkg/name"

	"github.com/hupe1980/ocp2aks/internal/k8s"
)

// workloadKinds are the kinds carrying a pod template at spec.template.
var workloadKinds = map[string]bool{
	"Deployment":  true,
	"StatefulSet": true,
	"DaemonSet":   true,
	"ReplicaSet":  true,
	"Job":         true,
}

// getPodSpec navigates to the pod template spec of a workload.
func getPodSpec(res *k8s.Resource) map[string]interface{} {
	if res.Object == nil || !workloadKinds[res.Kind()] {
		return nil
	}

	spec, _ := res.Object.Object["spec"].(map[string]interface{})
	tpl, _ := spec["template"].(map[string]interface{})
	ps, _ := tpl["spec"].(map[string]interface{})

	return ps
}

// allContainers returns containers followed by initContainers.
func allContainers(podSpec map[string]interface{}) []map[string]interface{} {
	var result []map[string]interface{}

	for _, key := range []string{"containers", "initContainers"} {
		list, _ := podSpec[key].([]interface{})

		for _, c := range list {
			if cm, ok := c.(map[string]interface{}); ok {
				result = append(result, cm)
			}
		}
	}

	return result
}

// containerName returns the name of a container, or a fallback index.
func containerName(c map[string]interface{}, index int) string {
	if n, ok := c["name"].(string); ok && n != "" {
		return n
	}

	return fmt.Sprintf("[%d]", index)
}

type containerVisitor func(res *k8s.Resource, podSpec, container map[string]interface{}, index int)

// forEachContainer invokes fn for every container of every workload.
func forEachContainer(resources []*k8s.Resource, fn containerVisitor) {
	for _, res := range resources {
		podSpec := getPodSpec(res)
		if podSpec == nil {
			continue
		}

		for i, c := range allContainers(podSpec) {
			fn(res, podSpec, c, i)
		}
	}
}

func newFinding(rule string, sev Severity, res *k8s.Resource, msg, remediation string) Finding {
	return Finding{
		RuleID:       rule,
		Severity:     sev,
		ResourceID:   res.QualifiedName(),
		ResourceKind: res.Kind(),
		File:         res.SourcePath,
		Message:      msg,
		Remediation:  remediation,
	}
}

// --- AKS-001: OpenShift-only API ---

// OpenShiftAPICheck flags passed-through resources whose API group only
// exists on OpenShift.
type OpenShiftAPICheck struct{}

// ID returns the check identifier.
func (c *OpenShiftAPICheck) ID() string { return "AKS-001" }

// Run executes the check against the given resources.
func (c *OpenShiftAPICheck) Run(_ context.Context, resources []*k8s.Resource) []Finding {
	var findings []Finding

	for _, res := range resources {
		if !k8s.IsOpenShiftAPI(res.GVK) {
			continue
		}

		findings = append(findings, newFinding(c.ID(), SeverityHigh, res,
			fmt.Sprintf("%s uses OpenShift-only API %s", res.Kind(), res.APIVersion()),
			"Replace the resource with a Kubernetes or AKS equivalent, or remove it"))
	}

	return findings
}

// --- AKS-002: Floating image tag ---

// LatestTagCheck flags images without a tag or digest, or tagged "latest".
type LatestTagCheck struct{}

// ID returns the check identifier.
func (c *LatestTagCheck) ID() string { return "AKS-002" }

// Run executes the check against the given resources.
func (c *LatestTagCheck) Run(_ context.Context, resources []*k8s.Resource) []Finding {
	var findings []Finding

	forEachContainer(resources, func(res *k8s.Resource, _, container map[string]interface{}, i int) {
		image, _ := container["image"].(string)
		if image == "" {
			return
		}

		ref, err := name.ParseReference(image)
		if err != nil {
			return
		}

		if tag, ok := ref.(name.Tag); ok && tag.TagStr() == k8s.LatestTag {
			findings = append(findings, newFinding(c.ID(), SeverityMedium, res,
				fmt.Sprintf("container %s uses floating image %s", containerName(container, i), image),
				"Pin the image to a version tag or digest in the delivery pipeline"))
		}
	})

	return findings
}

// --- AKS-003: Privileged container ---

// PrivilegedCheck flags containers with privileged: true.
type PrivilegedCheck struct{}

// ID returns the check identifier.
func (c *PrivilegedCheck) ID() string { return "AKS-003" }

// Run executes the check against the given resources.
func (c *PrivilegedCheck) Run(_ context.Context, resources []*k8s.Resource) []Finding {
	var findings []Finding

	forEachContainer(resources, func(res *k8s.Resource, _, container map[string]interface{}, i int) {
		sc, _ := container["securityContext"].(map[string]interface{})
		if priv, ok := sc["privileged"].(bool); ok && priv {
			findings = append(findings, newFinding(c.ID(), SeverityHigh, res,
				fmt.Sprintf("container %s is privileged", containerName(container, i)),
				"Drop securityContext.privileged; the privileged SCC has no AKS counterpart"))
		}
	})

	return findings
}

// --- AKS-004: Host namespaces ---

// HostNamespaceCheck flags pods sharing the host network, PID or IPC
// namespace.
type HostNamespaceCheck struct{}

// ID returns the check identifier.
func (c *HostNamespaceCheck) ID() string { return "AKS-004" }

// Run executes the check against the given resources.
func (c *HostNamespaceCheck) Run(_ context.Context, resources []*k8s.Resource) []Finding {
	var findings []Finding

	for _, res := range resources {
		podSpec := getPodSpec(res)
		if podSpec == nil {
			continue
		}

		var shared []string

		for _, field := range []string{"hostNetwork", "hostPID", "hostIPC"} {
			if v, ok := podSpec[field].(bool); ok && v {
				shared = append(shared, field)
			}
		}

		if len(shared) > 0 {
			findings = append(findings, newFinding(c.ID(), SeverityHigh, res,
				"pod shares host namespaces: "+strings.Join(shared, ", "),
				"Remove host namespace sharing; AKS baseline policies reject it"))
		}
	}

	return findings
}

// --- AKS-005: Missing resource limits ---

// ResourceLimitsCheck flags containers without CPU and memory limits.
type ResourceLimitsCheck struct{}

// ID returns the check identifier.
func (c *ResourceLimitsCheck) ID() string { return "AKS-005" }

// Run executes the check against the given resources.
func (c *ResourceLimitsCheck) Run(_ context.Context, resources []*k8s.Resource) []Finding {
	var findings []Finding

	forEachContainer(resources, func(res *k8s.Resource, _, container map[string]interface{}, i int) {
		reqs, _ := container["resources"].(map[string]interface{})
		limits, _ := reqs["limits"].(map[string]interface{})

		var missing []string

		for _, r := range []string{"cpu", "memory"} {
			if _, ok := limits[r]; !ok {
				missing = append(missing, r)
			}
		}

		if len(missing) > 0 {
			findings = append(findings, newFinding(c.ID(), SeverityLow, res,
				fmt.Sprintf("container %s has no %s limit", containerName(container, i), strings.Join(missing, "/")),
				"Set resources.limits; OpenShift LimitRange defaults do not carry over"))
		}
	})

	return findings
}

// --- AKS-006: Image outside the target registry ---

// RegistryCheck flags images that are not pulled from Registry.
type RegistryCheck struct {
	Registry string
}

// ID returns the check identifier.
func (c *RegistryCheck) ID() string { return "AKS-006" }

// Run executes the check against the given resources.
func (c *RegistryCheck) Run(_ context.Context, resources []*k8s.Resource) []Finding {
	var findings []Finding

	want := registryHost(c.Registry)

	forEachContainer(resources, func(res *k8s.Resource, _, container map[string]interface{}, i int) {
		image, _ := container["image"].(string)
		if image == "" {
			return
		}

		ref, err := name.ParseReference(image)
		if err != nil {
			return
		}

		if got := ref.Context().RegistryStr(); got != want {
			findings = append(findings, newFinding(c.ID(), SeverityMedium, res,
				fmt.Sprintf("container %s pulls from %s instead of %s", containerName(container, i), got, want),
				"Mirror the image into the target registry and update the reference"))
		}
	})

	return findings
}

// registryHost returns the normalized registry host of a registry setting,
// which may carry a repository path after the host.
func registryHost(registry string) string {
	host := strings.SplitN(registry, "/", 2)[0]

	if reg, err := name.NewRegistry(host); err == nil {
		return reg.RegistryStr()
	}

	return host
}
