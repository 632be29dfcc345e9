package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hupe1980/ocp2aks/internal/convert"
	"github.com/hupe1980/ocp2aks/internal/output"
)

// FileName is the name of the report written next to the output directory.
const FileName = "transform-report.md"

// Settings are the run parameters echoed at the top of the report.
type Settings struct {
	SourceDir     string
	OutDir        string
	DefaultDomain string
	IngressClass  string
	TLSSecret     string
	ImageRegistry string
	RepoPrefix    string
}

// Path returns the report location for outDir: a sibling of the output
// directory.
func Path(outDir string) string {
	return filepath.Join(filepath.Dir(filepath.Clean(outDir)), FileName)
}

// Render produces the Markdown report. Optional settings appear only when
// set, and the warnings section only when warnings exist.
func Render(settings Settings, s *Summary) string {
	var b strings.Builder

	b.WriteString("# OpenShift → AKS Transformation Report\n\n")

	fmt.Fprintf(&b, "- Source dir: `%s`\n", settings.SourceDir)
	fmt.Fprintf(&b, "- Output dir: `%s`\n", settings.OutDir)
	fmt.Fprintf(&b, "- Default domain: `%s`\n", settings.DefaultDomain)
	fmt.Fprintf(&b, "- Ingress class: `%s`\n", settings.IngressClass)

	if settings.TLSSecret != "" {
		fmt.Fprintf(&b, "- TLS secret: `%s`\n", settings.TLSSecret)
	}

	if settings.ImageRegistry != "" {
		fmt.Fprintf(&b, "- Image registry override: `%s`\n", settings.ImageRegistry)
	}

	if settings.RepoPrefix != "" {
		fmt.Fprintf(&b, "- Repo prefix: `%s`\n", settings.RepoPrefix)
	}

	b.WriteString("\n## Summary\n\n")
	fmt.Fprintf(&b, "- DeploymentConfigs converted: **%d**\n", s.Count(convert.CategoryDeploymentConfig))
	fmt.Fprintf(&b, "- Routes converted: **%d**\n", s.Count(convert.CategoryRoute))
	fmt.Fprintf(&b, "- BuildConfigs skipped (see notes): **%d**\n", s.Count(convert.CategoryBuildConfig))
	fmt.Fprintf(&b, "- Other resources passed through: **%d**\n", s.Count(convert.CategoryOther))
	fmt.Fprintf(&b, "- Total converted: **%d**\n", s.Converted())

	if warnings := s.Warnings(); len(warnings) > 0 {
		b.WriteString("\n## Warnings / Notes\n\n")

		for _, w := range warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}

	return b.String()
}

// Write renders the report and stores it at path, creating the parent
// directory when needed.
func Write(path string, settings Settings, s *Summary, opts ...output.FileWriterOption) error {
	if err := output.NewFileWriter(path, opts...).Write([]byte(Render(settings, s))); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	return nil
}
