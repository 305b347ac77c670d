package cmd

import (
	"fmt"

	"github.com/relloyd/aorist/actions"
	"github.com/spf13/cobra"
)

var defaultAddCfg = actions.DefaultAddConfig{}

var defaultAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or set a default flag value",
	Long: fmt.Sprintf(`Add a default flag value to config file %q.
Commands use it in place of their builtin default, e.g.

  aorist config defaults add -k mode -v airflow`, mainConfig.FullPath),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		defaultAddCfg.ConfigFile = mainConfig
		return actions.RunDefaultAdd(&defaultAddCfg)
	},
}

func init() {
	defaultCmd.AddCommand(defaultAddCmd)
	defaultAddCmd.Flags().SortFlags = false
	// Defaults never apply to the flags that manage them.
	for _, f := range []struct {
		target *string
		name   string
	}{{&defaultAddCfg.Key, "key"}, {&defaultAddCfg.Value, "value"}} {
		sw := switches[f.name]
		defaultAddCmd.Flags().StringVarP(f.target, sw.name, sw.shortHand, "", "* "+sw.desc)
		_ = defaultAddCmd.MarkFlagRequired(sw.name)
	}
	force := switches["force"]
	defaultAddCmd.Flags().BoolVarP(&defaultAddCfg.Force, force.name, force.shortHand, false, force.desc)
}
