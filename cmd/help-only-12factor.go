package cmd

import (
	"fmt"

	"github.com/relloyd/aorist/constants"
	"github.com/spf13/cobra"
)

var twelveFactorCmd = &cobra.Command{
	Use:   "12f",
	Short: `View help notes for running in Twelve-Factor mode`,
	Long: fmt.Sprintf(`
aorist can be controlled by environment variables, which suits containers and
CI jobs where manifests are mounted and endpoints are injected as secrets.

To enable Twelve-Factor mode, set environment variable %[1]s_12FACTOR_MODE=1.
To supply flags documented by the regular command-line usage, set an
equivalent environment variable using the following convention:

%[1]s_<flag long-name in upper case>

Endpoints are read from variables named %[1]s_<ENDPOINT>_<FIELD> instead of
the local endpoints file. For example, this will print an Airflow DAG that
replicates the datasets of a universe into Hive tables on Alluxio:

export %[1]s_12FACTOR_MODE=1
export %[1]s_COMMAND=dag
export %[1]s_FILE=/manifests
export %[1]s_TARGETS=Replicated
export %[1]s_MODE=airflow
export %[1]s_PRESTO_SERVER=presto-coordinator
export %[1]s_ALLUXIO_SERVER=alluxio-master

Commands are dag, flow and serve. For universe commands set %[1]s_COMMAND=universe
and %[1]s_SUBCOMMAND to one of validate, uuids or permissions.

Then execute the CLI tool without any arguments or flags.

`, constants.EnvVarPrefix),
}

func init() {
	rootCmd.AddCommand(twelveFactorCmd)
}
