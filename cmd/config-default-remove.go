package cmd

import (
	"fmt"

	"github.com/relloyd/aorist/actions"
	"github.com/spf13/cobra"
)

var defaultRemoveCfg = actions.DefaultRemoveConfig{}

var defaultRemoveCmd = &cobra.Command{
	Use:     "remove",
	Aliases: []string{"rm", "del", "delete"},
	Short:   "Remove a default flag value",
	Long:    fmt.Sprintf("Remove a default flag value from config file %q", mainConfig.FullPath),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		defaultRemoveCfg.ConfigFile = mainConfig
		return actions.RunDefaultRemove(&defaultRemoveCfg)
	},
}

func init() {
	defaultCmd.AddCommand(defaultRemoveCmd)
	key := switches["key"]
	defaultRemoveCmd.Flags().StringVarP(&defaultRemoveCfg.Key, key.name, key.shortHand, "", "* "+key.desc)
	_ = defaultRemoveCmd.MarkFlagRequired(key.name)
}
