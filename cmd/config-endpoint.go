package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configEndpointCmd = &cobra.Command{
	Use:     "endpoints",
	Aliases: []string{"endpoint", "ep"},
	Short:   "Configure named sets of endpoints",
	Long: fmt.Sprintf(`Configure named sets of endpoints that universe manifests refer to, where:

- Endpoint configs are stored encrypted in file %q
- Any field can be overridden at compile time by environment variables named
  AORIST_<ENDPOINT>_<FIELD>, e.g. AORIST_POSTGRES_PASSWORD`, endpointsConfig.FullPath),
}

func init() {
	configCmd.AddCommand(configEndpointCmd)
}
