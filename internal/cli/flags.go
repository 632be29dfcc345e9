package cli

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/ocp2aks/internal/config"
	"github.com/hupe1980/ocp2aks/internal/convert"
	"github.com/hupe1980/ocp2aks/internal/engine"
)

// registerConversionFlags adds the run parameters to a cobra command. The
// values are read back through config.Load, which merges them with the
// environment and the config file.
func registerConversionFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("src", config.DefaultSourceDir, "directory scanned for OpenShift manifests (env SRC_DIR)")
	f.String("out", config.DefaultOutDir, "directory converted manifests are written to (env OUT_DIR)")
	f.String("default-domain", config.DefaultDomain, "host suffix for Routes without a host (env DEFAULT_DOMAIN)")
	f.String("ingress-class", config.DefaultIngressClass, "ingress class for converted Routes (env INGRESS_CLASS)")
	f.String("tls-secret", "", "TLS secret for Routes with TLS (env TLS_SECRET)")
	f.String("image-registry", "", "registry for short image names (env IMAGE_REGISTRY, REGISTRY_FALLBACK)")
	f.String("repo-prefix", "", "repository prefix inserted after the registry (env REPO_PREFIX)")
}

// engineOptions maps the loaded configuration onto engine options.
func engineOptions(cfg *config.Config, dryRun bool) engine.Options {
	return engine.Options{
		SourceDir: cfg.Src,
		OutDir:    cfg.Out,
		DryRun:    dryRun,
		Convert: convert.Options{
			Route: convert.RouteOptions{
				DefaultDomain: cfg.DefaultDomain,
				IngressClass:  cfg.IngressClass,
				TLSSecret:     cfg.TLSSecret,
			},
			Image: convert.ImageOptions{
				Registry:   cfg.ImageRegistry,
				RepoPrefix: cfg.RepoPrefix,
			},
		},
	}
}
