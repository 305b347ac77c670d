package cmd

import (
	"github.com/relloyd/aorist/actions"
	"github.com/spf13/cobra"
)

var universeCfg = actions.UniverseConfig{}

var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "Inspect the universe described by manifests",
}

var universeValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the manifests describe a valid universe",
	RunE:  runUniverseFunc(actions.RunUniverseValidate),
}

var universeUUIDsCmd = &cobra.Command{
	Use:   "uuids",
	Short: "Print the UUID of every concept in the universe",
	Long: `Print the UUID of every concept in the universe.
UUIDs are derived from the content of each concept and its ancestors so they are
stable across runs and change whenever a concept changes`,
	RunE: runUniverseFunc(actions.RunUniverseUUIDs),
}

var universePermissionsCmd = &cobra.Command{
	Use:   "permissions",
	Short: "Print the permissions granted to each user by roles and role bindings",
	RunE:  runUniverseFunc(actions.RunUniversePermissions),
}

func runUniverseFunc(fn func(cfg *actions.UniverseConfig) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runUniverse(fn)()
	}
}

func runUniverse(fn func(cfg *actions.UniverseConfig) error) func() error {
	return func() error {
		universeCfg.Manifests.Endpoints = getEndpointLoader()
		universeCfg.StackDumpOnPanic = stackDumpOnPanic
		return fn(&universeCfg)
	}
}

func init() {
	rootCmd.AddCommand(universeCmd)
	for _, c := range []*cobra.Command{universeValidateCmd, universeUUIDsCmd, universePermissionsCmd} {
		universeCmd.AddCommand(c)
		c.Flags().SortFlags = false
		addManifestFlags(c, &universeCfg.Manifests)
		switches.addFlag(c, &universeCfg.OutputFormat, "output", actions.OutputYAML, false, "")
		switches.addFlag(c, &universeCfg.LogLevel, "log-level", "warn", false, "")
	}
}
