// ocp2aks converts OpenShift manifests into AKS-ready Kubernetes manifests.
package main

import (
	"os"

	"github.com/hupe1980/ocp2aks/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
