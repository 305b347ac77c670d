package cmd

import (
	"fmt"

	"github.com/relloyd/aorist/actions"
	"github.com/spf13/cobra"
)

var configEndpointRemoveCfg = actions.EndpointActionConfig{}

var configEndpointRemoveCmd = &cobra.Command{
	Use:     "remove",
	Aliases: []string{"rm", "del", "delete"},
	Short:   "Remove an endpoint config",
	Long:    fmt.Sprintf("Remove an endpoint config from config store %q", endpointsConfig.FullPath),
	RunE: func(cmd *cobra.Command, args []string) error {
		configEndpointRemoveCfg.ConfigFile = endpointsConfig
		cmd.SilenceUsage = true
		return actions.RunEndpointRemove(&configEndpointRemoveCfg)
	},
}

func init() {
	configEndpointCmd.AddCommand(configEndpointRemoveCmd)
	switches.addFlag(configEndpointRemoveCmd, &configEndpointRemoveCfg.Name, "endpoint-name", "", true, "")
}
