package cmd

import (
	"fmt"

	"github.com/relloyd/aorist/actions"
	"github.com/spf13/cobra"
)

var configEndpointListCfg = actions.EndpointListConfig{}

var configEndpointListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print all endpoint configs",
	Long: fmt.Sprintf(`List endpoint configs stored in config store %q
by printing them all to STDOUT. Secrets are not printed`,
		endpointsConfig.FullPath),
	RunE: func(cmd *cobra.Command, args []string) error {
		configEndpointListCfg.ConfigFile = endpointsConfig
		return actions.RunEndpointList(&configEndpointListCfg)
	},
}

func init() {
	configEndpointCmd.AddCommand(configEndpointListCmd)
	switches.addFlag(configEndpointListCmd, &configEndpointListCfg.OutputFormat, "output", actions.OutputYAML, false, "")
}
