package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/hupe1980/ocp2aks/internal/convert"
	"github.com/hupe1980/ocp2aks/internal/output"
	"github.com/hupe1980/ocp2aks/internal/report"
	"github.com/hupe1980/ocp2aks/internal/yamlutil"
)

const deploymentConfigYAML = `apiVersion: apps.openshift.io/v1
kind: DeploymentConfig
metadata:
  name: web
  annotations:
    openshift.io/generated-by: OpenShiftNewApp
    team: payments
spec:
  replicas: 2
  triggers:
  - type: ConfigChange
  template:
    metadata:
      labels:
        app: web
    spec:
      containers:
      - name: web
        image: web:1.0
`

const routeYAML = `apiVersion: route.openshift.io/v1
kind: Route
metadata:
  name: web
spec:
  host: web.example.org
  to:
    kind: Service
    name: web
  port:
    targetPort: 8080
`

const buildConfigYAML = `apiVersion: build.openshift.io/v1
kind: BuildConfig
metadata:
  name: web-build
`

const serviceYAML = `apiVersion: v1
kind: Service
metadata:
  name: web
  annotations:
    openshift.io/host.generated: "true"
spec:
  ports:
  - port: 80
`

func testOptions(src, out string) Options {
	return Options{
		SourceDir: src,
		OutDir:    out,
		Convert: convert.Options{
			Route: convert.RouteOptions{
				DefaultDomain: "apps.example.com",
				IngressClass:  "nginx",
			},
		},
	}
}

func runEngine(t *testing.T, opts Options) *Result {
	t.Helper()

	res, err := New(opts).Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res)

	return res
}

func readDocs(t *testing.T, path string) []map[string]interface{} {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var docs []map[string]interface{}

	for _, raw := range yamlutil.SplitDocuments(data) {
		var doc map[string]interface{}
		require.NoError(t, sigsyaml.Unmarshal(raw, &doc))

		docs = append(docs, doc)
	}

	return docs
}

func TestRun_ConvertsAndRoutes(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "openshift")
	out := filepath.Join(base, "output")

	writeFile(t, filepath.Join(src, "web-deploymentconfig.yaml"), deploymentConfigYAML)
	writeFile(t, filepath.Join(src, "route.yml"), routeYAML)
	writeFile(t, filepath.Join(src, "svc.yaml"), serviceYAML)

	res := runEngine(t, testOptions(src, out))

	assert.Equal(t, 3, res.Files)
	assert.Equal(t, 1, res.Summary.Count(convert.CategoryDeploymentConfig))
	assert.Equal(t, 1, res.Summary.Count(convert.CategoryRoute))
	assert.Equal(t, 1, res.Summary.Count(convert.CategoryOther))
	assert.Equal(t, 2, res.Summary.Converted())
	assert.Empty(t, res.Summary.Warnings())

	deploy := readDocs(t, filepath.Join(out, "deployment.yaml"))
	require.Len(t, deploy, 1)
	assert.Equal(t, "Deployment", deploy[0]["kind"])
	assert.Equal(t, map[string]interface{}{"team": "payments"},
		deploy[0]["metadata"].(map[string]interface{})["annotations"])

	ingress := readDocs(t, filepath.Join(out, "ingress.yaml"))
	require.Len(t, ingress, 1)
	assert.Equal(t, "Ingress", ingress[0]["kind"])

	svc := readDocs(t, filepath.Join(out, "svc.yaml"))
	require.Len(t, svc, 1)
	assert.Equal(t, "Service", svc[0]["kind"])
	assert.NotContains(t, svc[0]["metadata"], "annotations")

	assert.Equal(t, filepath.Join(base, report.FileName), res.ReportPath)
	assert.FileExists(t, res.ReportPath)
	assert.NoError(t, res.ReportErr)
	assert.Len(t, res.Entries, 3)
}

func TestRun_BuildConfigOnlyFile(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	out := filepath.Join(base, "out")

	writeFile(t, filepath.Join(src, "build.yaml"), buildConfigYAML)

	res := runEngine(t, testOptions(src, out))

	assert.Equal(t, 1, res.Summary.Count(convert.CategoryBuildConfig))
	assert.Equal(t, 0, res.Summary.Converted())
	require.Len(t, res.Summary.Warnings(), 1)
	assert.Contains(t, res.Summary.Warnings()[0], "BuildConfig 'web-build' skipped")
	assert.Empty(t, res.Outputs)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.Len(t, res.Entries, 1)
	assert.Equal(t, convert.OutcomeSkipped, res.Entries[0].Outcome)
	assert.Empty(t, res.Entries[0].Destination)
}

func TestRun_ParseFailureSkipsWholeFile(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	out := filepath.Join(base, "out")

	broken := serviceYAML + "---\nkind: [unterminated\n"
	writeFile(t, filepath.Join(src, "broken.yaml"), broken)
	writeFile(t, filepath.Join(src, "ok.yaml"), serviceYAML)

	res := runEngine(t, testOptions(src, out))

	warnings := res.Summary.Warnings()
	require.Len(t, warnings, 1)
	assert.True(t, strings.HasPrefix(warnings[0], "Failed to parse "))
	assert.Contains(t, warnings[0], "broken.yaml")

	assert.Equal(t, 1, res.Summary.Count(convert.CategoryOther))
	assert.NoFileExists(t, filepath.Join(out, "broken.yaml"))
	assert.FileExists(t, filepath.Join(out, "ok.yaml"))
}

func TestRun_GroupsOutputsWithoutLoss(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	out := filepath.Join(base, "out")

	writeFile(t, filepath.Join(src, "a", "dc.yaml"), deploymentConfigYAML)
	writeFile(t, filepath.Join(src, "b", "dc.yaml"), strings.Replace(deploymentConfigYAML, "name: web\n", "name: api\n", 1))

	res := runEngine(t, testOptions(src, out))

	require.Len(t, res.Outputs, 1)
	assert.Equal(t, filepath.Join(out, "dc.yaml"), res.Outputs[0].Path)
	assert.Equal(t, 2, res.Outputs[0].Documents)
	assert.Len(t, res.Outputs[0].Sources, 2)

	docs := readDocs(t, filepath.Join(out, "dc.yaml"))
	require.Len(t, docs, 2)
	assert.Equal(t, "web", docs[0]["metadata"].(map[string]interface{})["name"])
	assert.Equal(t, "api", docs[1]["metadata"].(map[string]interface{})["name"])
}

func TestRun_MixedFileKeepsAllDocuments(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	out := filepath.Join(base, "out")

	writeFile(t, filepath.Join(src, "app.yaml"), deploymentConfigYAML+"---\n"+buildConfigYAML+"---\n"+serviceYAML)

	res := runEngine(t, testOptions(src, out))

	docs := readDocs(t, filepath.Join(out, "app.yaml"))
	require.Len(t, docs, 2)
	assert.Equal(t, "Deployment", docs[0]["kind"])
	assert.Equal(t, "Service", docs[1]["kind"])
	assert.Len(t, res.Summary.Warnings(), 1)
}

func TestRun_SeparateAppsKeepSeparateFiles(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	out := filepath.Join(base, "out")

	writeFile(t, filepath.Join(src, "frontend.yaml"), deploymentConfigYAML)
	writeFile(t, filepath.Join(src, "backend.yaml"), strings.Replace(deploymentConfigYAML, "name: web\n", "name: api\n", 1))
	writeFile(t, filepath.Join(src, "public.yaml"), routeYAML)

	res := runEngine(t, testOptions(src, out))

	require.Len(t, res.Outputs, 3)

	for _, o := range res.Outputs {
		assert.Len(t, o.Sources, 1)
		assert.Equal(t, 1, o.Documents)
	}

	assert.NoFileExists(t, filepath.Join(out, "deployment.yaml"))
	assert.NoFileExists(t, filepath.Join(out, "ingress.yaml"))

	frontend := readDocs(t, filepath.Join(out, "frontend.yaml"))
	require.Len(t, frontend, 1)
	assert.Equal(t, "web", frontend[0]["metadata"].(map[string]interface{})["name"])

	backend := readDocs(t, filepath.Join(out, "backend.yaml"))
	require.Len(t, backend, 1)
	assert.Equal(t, "api", backend[0]["metadata"].(map[string]interface{})["name"])

	public := readDocs(t, filepath.Join(out, "public.yaml"))
	require.Len(t, public, 1)
	assert.Equal(t, "Ingress", public[0]["kind"])
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	out := filepath.Join(base, "out")

	writeFile(t, filepath.Join(src, "dc.yaml"), deploymentConfigYAML)

	opts := testOptions(src, out)
	opts.DryRun = true

	res := runEngine(t, opts)

	require.Len(t, res.Outputs, 1)
	assert.NotEmpty(t, res.Outputs[0].Data)
	assert.NoDirExists(t, out)
	assert.NoFileExists(t, res.ReportPath)
}

func TestRun_MissingSourceDir(t *testing.T) {
	base := t.TempDir()

	res := runEngine(t, testOptions(filepath.Join(base, "missing"), filepath.Join(base, "out")))

	assert.Equal(t, 0, res.Files)
	assert.Len(t, res.Summary.Warnings(), 1)
	assert.FileExists(t, res.ReportPath)
}

func TestRun_ReportWriteFailureIsRecovered(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	out := filepath.Join(base, "out")

	writeFile(t, filepath.Join(src, "svc.yaml"), serviceYAML)
	require.NoError(t, os.MkdirAll(filepath.Join(base, report.FileName), 0o750))

	res, err := New(testOptions(src, out)).Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, res)

	require.Error(t, res.ReportErr)
	assert.Contains(t, res.ReportErr.Error(), "writing report")
	assert.DirExists(t, res.ReportPath)

	svc := readDocs(t, filepath.Join(out, "svc.yaml"))
	require.Len(t, svc, 1)
	assert.Equal(t, "Service", svc[0]["kind"])
	assert.Equal(t, 1, res.Summary.Count(convert.CategoryOther))
}

func TestRun_OutputDirFailureIsFatal(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	writeFile(t, blocker, "x")

	_, err := New(testOptions(base, filepath.Join(blocker, "out"))).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutputDir)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) error { return errors.New("disk full") }

func TestRun_WriteFailureBecomesWarning(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")

	writeFile(t, filepath.Join(src, "svc.yaml"), serviceYAML)

	opts := testOptions(src, filepath.Join(base, "out"))
	opts.Writers = func(string) output.Writer { return failingWriter{} }

	res := runEngine(t, opts)

	require.Len(t, res.Summary.Warnings(), 1)
	assert.Contains(t, res.Summary.Warnings()[0], "disk full")
	assert.Empty(t, res.Outputs)
}

func TestRun_EndsInDoneState(t *testing.T) {
	base := t.TempDir()
	e := New(testOptions(filepath.Join(base, "src"), filepath.Join(base, "out")))

	assert.Equal(t, StateIdle, e.State())

	_, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateDone, e.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "dispatching", StateDispatching.String())
	assert.Equal(t, "unknown", State(99).String())
}
