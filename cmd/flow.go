package cmd

import (
	"net"
	"strconv"

	"github.com/relloyd/aorist/actions"
	"github.com/relloyd/aorist/constants"
	"github.com/spf13/cobra"
)

var flowCfg = actions.FlowConfig{}

var flowCmd = &cobra.Command{
	Use:   "flow",
	Short: "Execute a flow of tasks described in a YAML or JSON file",
	Long: `Execute a flow of tasks described in a YAML or JSON file.
Optionally run a web server to monitor progress and health remotely.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runFlow()
	},
}

func runFlow() error {
	flowCfg.StackDumpOnPanic = stackDumpOnPanic
	serveConfig.LogLevel = flowCfg.LogLevel
	return actions.RunFlowFromFile(&flowCfg, &serveConfig)
}

func init() {
	rootCmd.AddCommand(flowCmd)
	flowCmd.Flags().SortFlags = false
	switches.addFlag(flowCmd, &flowCfg.FlowFile, "flow-file", "", true, "")
	if !twelveFactorMode {
		_ = flowCmd.MarkFlagFilename("file", "json", "yaml", "yml")
	}
	switches.addFlag(flowCmd, &flowCfg.Workers, "workers", strconv.Itoa(constants.DefaultWorkerCount), false, "")
	switches.addFlag(flowCmd, &flowCfg.WithWebService, "web-service", "", false, "")
	if !twelveFactorMode {
		flowCmd.Flags().IPVarP(&serveConfig.Addr, "address", "a", net.IP{0, 0, 0, 0}, "Address to listen on")
	}
	switches.addFlag(flowCmd, &serveConfig.Port, "port", "8080", false, "")
	switches.addFlag(flowCmd, &flowCfg.LogLevel, "log-level", "info", false, "")
	switches.addFlag(flowCmd, &flowCfg.StatsDumpFrequencySeconds, "stats", strconv.Itoa(constants.StatsCaptureFrequencySeconds), false, "")
}
