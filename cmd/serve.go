package cmd

import (
	"net"
	"strconv"

	"github.com/relloyd/aorist/actions"
	"github.com/relloyd/aorist/constants"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start a web service to compile universes and run flows",
	Long: `Start a web service that compiles manifests POSTed to /dag and runs flows
POSTed to /flows. Flow status and stats are available under /flows/<id>`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runServe()
	},
}

var serveConfig = actions.WebServerConfig{
	LogLevel:                  "info",
	Scheme:                    "http",
	Addr:                      net.IP{0, 0, 0, 0},
	Port:                      8080,
	StatsDumpFrequencySeconds: constants.StatsCaptureFrequencySeconds,
}

func runServe() error {
	serveConfig.Endpoints = getEndpointLoader()
	serveConfig.StackDumpOnPanic = stackDumpOnPanic
	return actions.RunWebServer(&serveConfig)
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().SortFlags = false
	if !twelveFactorMode {
		serveCmd.Flags().IPVarP(&serveConfig.Addr, "address", "a", net.IP{0, 0, 0, 0}, "Address to listen on")
	}
	switches.addFlag(serveCmd, &serveConfig.Port, "port", "8080", false, "")
	switches.addFlag(serveCmd, &serveConfig.RecipeFiles, "recipes", "", false, "")
	switches.addFlag(serveCmd, &serveConfig.Workers, "workers", strconv.Itoa(constants.DefaultWorkerCount), false, "")
	switches.addFlag(serveCmd, &serveConfig.LogLevel, "log-level", "info", false, "")
	switches.addFlag(serveCmd, &serveConfig.StatsDumpFrequencySeconds, "stats", strconv.Itoa(constants.StatsCaptureFrequencySeconds), false, "")
}
