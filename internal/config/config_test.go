package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// newTestRootCmd creates a cobra.Command with the same persistent flags as the
// real root command so that Load can bind them during tests.
func newTestRootCmd() *cobra.Command {
	cmd := &cobra.Command{}
	pf := cmd.PersistentFlags()
	pf.String("config", "", "")
	pf.String("log-level", "info", "")
	pf.String("log-format", "text", "")
	pf.Bool("no-color", false, "")
	pf.BoolP("quiet", "q", false, "")

	f := cmd.Flags()
	f.String("src", DefaultSourceDir, "")
	f.String("out", DefaultOutDir, "")
	f.String("default-domain", DefaultDomain, "")
	f.String("ingress-class", DefaultIngressClass, "")
	f.String("tls-secret", "", "")
	f.String("image-registry", "", "")
	f.String("repo-prefix", "", "")

	return cmd
}

// writeTempConfig writes a YAML string to a temporary file and returns the path.
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	p := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))

	return p
}

// ---------------------------------------------------------------------------
// Default
// ---------------------------------------------------------------------------

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, LogLevelInfo, cfg.LogLevel)
	assert.Equal(t, LogFormatText, cfg.LogFormat)
	assert.False(t, cfg.NoColor)
	assert.False(t, cfg.Quiet)
	assert.Equal(t, "openshift", cfg.Src)
	assert.Equal(t, "./output", cfg.Out)
	assert.Equal(t, "apps.example.com", cfg.DefaultDomain)
	assert.Equal(t, "nginx", cfg.IngressClass)
	assert.Empty(t, cfg.TLSSecret)
	assert.Empty(t, cfg.ImageRegistry)
	assert.Empty(t, cfg.RepoPrefix)
}

// ---------------------------------------------------------------------------
// Validate
// ---------------------------------------------------------------------------

func TestValidate_ValidValues(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		cfg := Default()
		cfg.LogLevel = lvl
		assert.NoError(t, cfg.Validate(), "level=%s", lvl)
	}

	for _, fmt := range []string{"text", "json"} {
		cfg := Default()
		cfg.LogFormat = fmt
		assert.NoError(t, cfg.Validate(), "format=%s", fmt)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "verbose"
	assert.ErrorContains(t, cfg.Validate(), "invalid log level")
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := Default()
	cfg.LogFormat = "xml"
	assert.ErrorContains(t, cfg.Validate(), "invalid log format")
}

func TestValidate_RequiredConversionKeys(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"src", func(c *Config) { c.Src = "" }, "src must not be empty"},
		{"out", func(c *Config) { c.Out = " " }, "out must not be empty"},
		{"domain", func(c *Config) { c.DefaultDomain = "" }, "default-domain must not be empty"},
		{"class", func(c *Config) { c.IngressClass = "" }, "ingress-class must not be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

// ---------------------------------------------------------------------------
// EffectiveLogLevel
// ---------------------------------------------------------------------------

func TestEffectiveLogLevel_Normal(t *testing.T) {
	cfg := &Config{LogLevel: "debug"}
	assert.Equal(t, "debug", cfg.EffectiveLogLevel())
}

func TestEffectiveLogLevel_QuietOverride(t *testing.T) {
	cfg := &Config{LogLevel: "debug", Quiet: true}
	assert.Equal(t, "error", cfg.EffectiveLogLevel())
}

// ---------------------------------------------------------------------------
// Load — defaults only
// ---------------------------------------------------------------------------

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, LogLevelInfo, cfg.LogLevel)
	assert.Equal(t, LogFormatText, cfg.LogFormat)
	assert.False(t, cfg.NoColor)
	assert.False(t, cfg.Quiet)
}

// ---------------------------------------------------------------------------
// Load — environment variables
// ---------------------------------------------------------------------------

func TestLoad_EnvOverridesDefault(t *testing.T) {
	t.Setenv("OCP2AKS_LOG_LEVEL", "debug")

	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_EnvBooleans(t *testing.T) {
	t.Setenv("OCP2AKS_NO_COLOR", "true")
	t.Setenv("OCP2AKS_QUIET", "true")

	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.True(t, cfg.NoColor)
	assert.True(t, cfg.Quiet)
}

func TestLoad_PlainEnvNames(t *testing.T) {
	t.Setenv("SRC_DIR", "manifests")
	t.Setenv("OUT_DIR", "converted")
	t.Setenv("DEFAULT_DOMAIN", "apps.contoso.io")
	t.Setenv("INGRESS_CLASS", "azure-application-gateway")
	t.Setenv("TLS_SECRET", "wildcard-tls")
	t.Setenv("IMAGE_REGISTRY", "myacr.azurecr.io")
	t.Setenv("REPO_PREFIX", "team")

	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, "manifests", cfg.Src)
	assert.Equal(t, "converted", cfg.Out)
	assert.Equal(t, "apps.contoso.io", cfg.DefaultDomain)
	assert.Equal(t, "azure-application-gateway", cfg.IngressClass)
	assert.Equal(t, "wildcard-tls", cfg.TLSSecret)
	assert.Equal(t, "myacr.azurecr.io", cfg.ImageRegistry)
	assert.Equal(t, "team", cfg.RepoPrefix)
}

func TestLoad_PrefixedEnvWinsOverPlain(t *testing.T) {
	t.Setenv("DEFAULT_DOMAIN", "plain.example.com")
	t.Setenv("OCP2AKS_DEFAULT_DOMAIN", "prefixed.example.com")

	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, "prefixed.example.com", cfg.DefaultDomain)
}

func TestLoad_RegistryFallback(t *testing.T) {
	t.Setenv("REGISTRY_FALLBACK", "fallback.azurecr.io")

	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, "fallback.azurecr.io", cfg.ImageRegistry)

	t.Setenv("IMAGE_REGISTRY", "primary.azurecr.io")

	cfg, err = Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, "primary.azurecr.io", cfg.ImageRegistry)
}

// ---------------------------------------------------------------------------
// Load — config file
// ---------------------------------------------------------------------------

func TestLoad_ConfigFile(t *testing.T) {
	p := writeTempConfig(t, "log-level: warn\nlog-format: json\n")

	cfg, err := Load(nil, p)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_ConfigFileConversionKeys(t *testing.T) {
	p := writeTempConfig(t, "src: ocp\nout: aks\ningress-class: traefik\ntls-secret: tls\n")

	cfg, err := Load(nil, p)
	require.NoError(t, err)
	assert.Equal(t, "ocp", cfg.Src)
	assert.Equal(t, "aks", cfg.Out)
	assert.Equal(t, "traefik", cfg.IngressClass)
	assert.Equal(t, "tls", cfg.TLSSecret)
	assert.Equal(t, DefaultDomain, cfg.DefaultDomain)
	assert.Equal(t, p, cfg.ConfigFile)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(nil, "/tmp/nonexistent-ocp2aks-cfg-12345.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoad_MalformedFile(t *testing.T) {
	p := writeTempConfig(t, ": invalid yaml :")

	_, err := Load(nil, p)
	require.Error(t, err)
}

func TestLoad_MissingAutoDiscoverFile(t *testing.T) {
	// When no explicit file is given and auto-discover finds nothing, Load
	// should succeed with defaults.
	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, LogLevelInfo, cfg.LogLevel)
}

// ---------------------------------------------------------------------------
// Load — flag precedence
// ---------------------------------------------------------------------------

func TestLoad_FlagOverridesDefault(t *testing.T) {
	cmd := newTestRootCmd()
	require.NoError(t, cmd.PersistentFlags().Set("log-level", "error"))

	cfg, err := Load(cmd, "")
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoad_FlagOverridesEnv(t *testing.T) {
	t.Setenv("OCP2AKS_LOG_LEVEL", "debug")

	cmd := newTestRootCmd()
	require.NoError(t, cmd.PersistentFlags().Set("log-level", "error"))

	cfg, err := Load(cmd, "")
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("OCP2AKS_LOG_LEVEL", "debug")
	p := writeTempConfig(t, "log-level: warn\n")

	cfg, err := Load(nil, p)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_FlagOverridesAll(t *testing.T) {
	t.Setenv("OCP2AKS_LOG_LEVEL", "debug")
	p := writeTempConfig(t, "log-level: warn\n")

	cmd := newTestRootCmd()
	require.NoError(t, cmd.PersistentFlags().Set("log-level", "error"))

	cfg, err := Load(cmd, p)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoad_CommandFlagOverridesPlainEnv(t *testing.T) {
	t.Setenv("OUT_DIR", "from-env")

	cmd := newTestRootCmd()
	require.NoError(t, cmd.Flags().Set("out", "from-flag"))

	cfg, err := Load(cmd, "")
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.Out)
}

func TestLoad_UnsetFlagKeepsEnv(t *testing.T) {
	t.Setenv("SRC_DIR", "from-env")

	cfg, err := Load(newTestRootCmd(), "")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Src)
}

// ---------------------------------------------------------------------------
// Load — validation on loaded values
// ---------------------------------------------------------------------------

func TestLoad_InvalidLogLevelFromEnv(t *testing.T) {
	t.Setenv("OCP2AKS_LOG_LEVEL", "verbose")

	_, err := Load(nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestLoad_InvalidLogFormatFromFile(t *testing.T) {
	p := writeTempConfig(t, "log-format: xml\n")

	_, err := Load(nil, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log format")
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

func TestContext_RoundTrip(t *testing.T) {
	cfg := &Config{LogLevel: "debug", LogFormat: "json"}
	ctx := NewContext(context.Background(), cfg)
	got := FromContext(ctx)
	assert.Equal(t, cfg, got)
}

func TestFromContext_FallbackToDefault(t *testing.T) {
	got := FromContext(context.Background())
	assert.Equal(t, Default(), got)
}
