package output

import (
	"path/filepath"
	"slices"
	"strings"
)

// Extension is the suffix of every written manifest.
const Extension = ".yaml"

// family groups a kind with its canonical output file.
type family struct {
	kind     string
	pattern  string
	filename string
}

// families are matched in order; the first hit wins.
var families = []family{
	{kind: "DeploymentConfig", pattern: "deploymentconfig", filename: "deployment.yaml"},
	{kind: "Route", pattern: "route", filename: "ingress.yaml"},
}

// RouteFilename returns the base name of the file a source file's converted
// bundle is written to. kinds are the kinds of the emitted documents, so a
// converted DeploymentConfig counts as a Deployment and does not match its
// family by kind. A source file whose name contains a family pattern
// (case-insensitive), or whose bundle holds a family kind, is renamed to the
// family's canonical file. Otherwise the original name is kept with its
// extension normalised to .yaml.
func RouteFilename(sourcePath string, kinds []string) string {
	base := filepath.Base(sourcePath)
	lower := strings.ToLower(base)

	for _, f := range families {
		if strings.Contains(lower, f.pattern) || slices.Contains(kinds, f.kind) {
			return f.filename
		}
	}

	return strings.TrimSuffix(base, filepath.Ext(base)) + Extension
}

// Destination joins outDir with the routed filename.
func Destination(outDir, sourcePath string, kinds []string) string {
	return filepath.Join(outDir, RouteFilename(sourcePath, kinds))
}
