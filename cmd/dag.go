package cmd

import (
	"strconv"

	"github.com/relloyd/aorist/actions"
	"github.com/relloyd/aorist/constants"
	"github.com/spf13/cobra"
)

var dagCfg = actions.DagConfig{}

var dagCmd = &cobra.Command{
	Use:   "dag",
	Short: "Compile a universe into a program for the target constraints",
	Long: `Compile the universe described by manifests into the tasks that satisfy the target
constraints and print them as a program in the chosen mode. Use --execute to run
the tasks locally as a flow of shell commands instead.

For example, to print an Airflow DAG that replicates every dataset:

  aorist dag -f ./manifests -t Replicated -m airflow`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runDag()
	},
}

func runDag() error {
	dagCfg.Manifests.Endpoints = getEndpointLoader()
	dagCfg.StackDumpOnPanic = stackDumpOnPanic
	return actions.RunDag(&dagCfg)
}

func init() {
	rootCmd.AddCommand(dagCmd)
	dagCmd.Flags().SortFlags = false
	addManifestFlags(dagCmd, &dagCfg.Manifests)
	switches.addFlag(dagCmd, &dagCfg.Targets, "targets", "", true, "")
	switches.addFlag(dagCmd, &dagCfg.Mode, "mode", constants.OutputModePython, false, "")
	switches.addFlag(dagCmd, &dagCfg.Dialects, "dialects", "python,bash,presto,r", false, "")
	switches.addFlag(dagCmd, &dagCfg.RecipeFiles, "recipes", "", false, "")
	switches.addFlag(dagCmd, &dagCfg.Execute, "execute", "", false, "")
	switches.addFlag(dagCmd, &dagCfg.Workers, "workers", strconv.Itoa(constants.DefaultWorkerCount), false, "")
	switches.addFlag(dagCmd, &dagCfg.StatsDumpFrequencySeconds, "stats", "0", false, "")
	switches.addFlag(dagCmd, &dagCfg.LogLevel, "log-level", "warn", false, "")
}

// addManifestFlags adds the flags that say where to find a universe.
func addManifestFlags(c *cobra.Command, m *actions.ManifestConfig) {
	switches.addFlag(c, &m.ManifestFiles, "manifests", "", true, "")
	if !twelveFactorMode {
		_ = c.MarkFlagFilename(switches["manifests"].name, "yaml", "yml", "toml")
	}
	switches.addFlag(c, &m.Universe, "universe", "", false, "")
}
