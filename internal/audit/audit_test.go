package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ocp2aks/internal/k8s"
)

func deployment(name string, podSpec map[string]interface{}) *k8s.Resource {
	return k8s.NewResource(map[string]interface{}{
		"apiVersion": "apps/v1",
		"kind":       "Deployment",
		"metadata":   map[string]interface{}{"name": name},
		"spec": map[string]interface{}{
			"template": map[string]interface{}{"spec": podSpec},
		},
	}, "output/"+name+".yaml", 0)
}

func container(name, image string, extra map[string]interface{}) map[string]interface{} {
	c := map[string]interface{}{"name": name, "image": image}
	for k, v := range extra {
		c[k] = v
	}

	return c
}

var limited = map[string]interface{}{
	"resources": map[string]interface{}{
		"limits": map[string]interface{}{"cpu": "500m", "memory": "256Mi"},
	},
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in      string
		want    Severity
		wantErr bool
	}{
		{"high", SeverityHigh, false},
		{"MEDIUM", SeverityMedium, false},
		{" low ", SeverityLow, false},
		{"info", SeverityInfo, false},
		{"critical", SeverityInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSeverity(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSeverity_String(t *testing.T) {
	assert.Equal(t, "high", SeverityHigh.String())
	assert.Equal(t, "unknown(9)", Severity(9).String())
}

func TestOpenShiftAPICheck(t *testing.T) {
	resources := []*k8s.Resource{
		k8s.NewResource(map[string]interface{}{
			"apiVersion": "image.openshift.io/v1",
			"kind":       "ImageStream",
			"metadata":   map[string]interface{}{"name": "web"},
		}, "", 0),
		k8s.NewResource(map[string]interface{}{
			"apiVersion": "v1",
			"kind":       "Service",
			"metadata":   map[string]interface{}{"name": "web"},
		}, "", 1),
	}

	findings := (&OpenShiftAPICheck{}).Run(context.Background(), resources)
	require.Len(t, findings, 1)
	assert.Equal(t, "ImageStream/web", findings[0].ResourceID)
	assert.Equal(t, SeverityHigh, findings[0].Severity)
	assert.Contains(t, findings[0].Message, "image.openshift.io/v1")
}

func TestLatestTagCheck(t *testing.T) {
	res := deployment("web", map[string]interface{}{
		"containers": []interface{}{
			container("pinned", "registry.io/web:1.2.3", nil),
			container("latest", "registry.io/web:latest", nil),
			container("untagged", "registry.io/web", nil),
			container("digest", "registry.io/web@sha256:"+sha, nil),
		},
	})

	findings := (&LatestTagCheck{}).Run(context.Background(), []*k8s.Resource{res})
	require.Len(t, findings, 2)
	assert.Contains(t, findings[0].Message, "container latest")
	assert.Contains(t, findings[1].Message, "container untagged")
}

const sha = "4a7c1f0bd5f6e2dbe0f1a1e3c5d7b9f0a2c4e6f8091b3d5f7a9c1e3b5d7f9a1c"

func TestPrivilegedCheck(t *testing.T) {
	res := deployment("web", map[string]interface{}{
		"initContainers": []interface{}{
			container("setup", "busybox:1.36", map[string]interface{}{
				"securityContext": map[string]interface{}{"privileged": true},
			}),
		},
		"containers": []interface{}{
			container("web", "web:v1", map[string]interface{}{
				"securityContext": map[string]interface{}{"privileged": false},
			}),
		},
	})

	findings := (&PrivilegedCheck{}).Run(context.Background(), []*k8s.Resource{res})
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "container setup")
}

func TestHostNamespaceCheck(t *testing.T) {
	shared := deployment("agent", map[string]interface{}{"hostNetwork": true, "hostPID": true})
	isolated := deployment("web", map[string]interface{}{"hostIPC": false})

	findings := (&HostNamespaceCheck{}).Run(context.Background(), []*k8s.Resource{shared, isolated})
	require.Len(t, findings, 1)
	assert.Equal(t, "Deployment/agent", findings[0].ResourceID)
	assert.Equal(t, "pod shares host namespaces: hostNetwork, hostPID", findings[0].Message)
}

func TestResourceLimitsCheck(t *testing.T) {
	res := deployment("web", map[string]interface{}{
		"containers": []interface{}{
			container("ok", "web:v1", limited),
			container("partial", "web:v1", map[string]interface{}{
				"resources": map[string]interface{}{
					"limits": map[string]interface{}{"cpu": "1"},
				},
			}),
			container("none", "web:v1", nil),
		},
	})

	findings := (&ResourceLimitsCheck{}).Run(context.Background(), []*k8s.Resource{res})
	require.Len(t, findings, 2)
	assert.Equal(t, "container partial has no memory limit", findings[0].Message)
	assert.Equal(t, "container none has no cpu/memory limit", findings[1].Message)
}

func TestResourceLimitsCheck_IgnoresNonWorkloads(t *testing.T) {
	svc := k8s.NewResource(map[string]interface{}{
		"apiVersion": "v1",
		"kind":       "Service",
		"spec":       map[string]interface{}{"template": map[string]interface{}{}},
	}, "", 0)

	assert.Empty(t, (&ResourceLimitsCheck{}).Run(context.Background(), []*k8s.Resource{svc}))
}

func TestRegistryCheck(t *testing.T) {
	res := deployment("web", map[string]interface{}{
		"containers": []interface{}{
			container("own", "myacr.azurecr.io/team/web:1.0", nil),
			container("hub", "nginx:1.25", nil),
			container("quay", "quay.io/org/tool:2", nil),
		},
	})

	findings := (&RegistryCheck{Registry: "myacr.azurecr.io/team"}).Run(context.Background(), []*k8s.Resource{res})
	require.Len(t, findings, 2)
	assert.Equal(t, "container hub pulls from index.docker.io instead of myacr.azurecr.io", findings[0].Message)
	assert.Contains(t, findings[1].Message, "quay.io")
}

func TestDefaultChecks(t *testing.T) {
	assert.Len(t, DefaultChecks(Options{}), 5)
	assert.Len(t, DefaultChecks(Options{Registry: "myacr.azurecr.io"}), 6)
}

func TestAuditor_RunSortsAndSummarizes(t *testing.T) {
	res := deployment("web", map[string]interface{}{
		"hostNetwork": true,
		"containers": []interface{}{
			container("web", "registry.io/web:latest", nil),
		},
	})

	result := New(DefaultChecks(Options{})...).Run(context.Background(), []*k8s.Resource{res})

	require.Len(t, result.Findings, 3)
	assert.Equal(t, "AKS-004", result.Findings[0].RuleID)
	assert.Equal(t, "AKS-002", result.Findings[1].RuleID)
	assert.Equal(t, "AKS-005", result.Findings[2].RuleID)
	assert.Equal(t, map[string]int{"high": 1, "medium": 1, "low": 1}, result.Summary)

	assert.False(t, result.Passed(SeverityHigh))
	assert.True(t, (&Result{}).Passed(SeverityInfo))
}

func TestResult_Passed(t *testing.T) {
	r := &Result{Findings: []Finding{{Severity: SeverityMedium}}}

	assert.False(t, r.Passed(SeverityLow))
	assert.False(t, r.Passed(SeverityMedium))
	assert.True(t, r.Passed(SeverityHigh))
}

func TestNewFormatter(t *testing.T) {
	f, err := NewFormatter("")
	require.NoError(t, err)
	assert.IsType(t, &TableFormatter{}, f)

	f, err = NewFormatter("JSON")
	require.NoError(t, err)
	assert.IsType(t, &JSONFormatter{}, f)

	_, err = NewFormatter("sarif")
	assert.Error(t, err)
}

func sampleResult() *Result {
	return &Result{
		Findings: []Finding{
			{RuleID: "AKS-003", Severity: SeverityHigh, ResourceID: "Deployment/web", ResourceKind: "Deployment", Message: "container web is privileged"},
			{RuleID: "AKS-005", Severity: SeverityLow, ResourceID: "Deployment/web", ResourceKind: "Deployment", Message: "container web has no cpu limit"},
		},
		Summary: map[string]int{"high": 1, "low": 1},
	}
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{}).Format(&buf, sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "SEVERITY")
	assert.Contains(t, out, "HIGH")
	assert.Contains(t, out, "container web is privileged")
	assert.Contains(t, out, "Findings: 2 total (1 high, 1 low)")
}

func TestTableFormatter_NoFindings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{}).Format(&buf, &Result{}))
	assert.Equal(t, "No findings.\n", buf.String())
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(&buf, sampleResult()))

	var got jsonOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, 2, got.Total)
	assert.Equal(t, "high", got.Findings[0].Severity)
	assert.Equal(t, "AKS-005", got.Findings[1].RuleID)
	assert.Equal(t, 1, got.Summary["low"])
}
