package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Default values may be set at compile time.
	version          = "0.1.0"
	buildDate        = "2020-10-01T00:00+0000"
	stackDumpOnPanic bool
)

var rootCmd = &cobra.Command{
	Use:   "aorist",
	Short: "Compile declarative data universes into task graphs",
	Long: `
                  _     _
  __ _  ___  _ __(_)___| |_
 / _' |/ _ \| '__| / __| __|
| (_| | (_) | |  | \__ \ |_
 \__,_|\___/|_|  |_|___/\__|

Aorist turns a declarative description of your data universe (users, datasets,
storage and endpoints) into the programs that make it real. Describe what you
want in YAML or TOML manifests, choose your targets and get a Python script,
an Airflow DAG, a Prefect flow or a Bash script back. Run the plan locally as a
flow of shell tasks or start an HTTP server to compile and run universes remotely.`,
}

func init() {
	cobra.EnableCommandSorting = false
	rootCmd.PersistentFlags().BoolVar(&stackDumpOnPanic, "print-stack", false, "Print a stack dump if there is a panic")
	_ = rootCmd.PersistentFlags().MarkHidden("print-stack")
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if twelveFactorMode { // if we are running based on environment variables...
		if err := execute12FactorMode(twelveFactorActions); err != nil {
			// execute12FactorMode logs the error.
			os.Exit(1)
		}
		return
	}
	if err := rootCmd.Execute(); err != nil {
		// Execute() prints the error.
		os.Exit(1)
	}
}
