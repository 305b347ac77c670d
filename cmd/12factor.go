package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/relloyd/aorist/actions"
	"github.com/relloyd/aorist/config"
	c "github.com/relloyd/aorist/constants"
	"github.com/relloyd/aorist/helper"
	"github.com/relloyd/aorist/logger"
	"github.com/relloyd/aorist/universe"
)

// init will be called first due to the lexical order in which these functions are executed.
// This ensures the value of twelveFactorMode is set such that other init() functions that configure
// Cobra can do the job of processing all environment variables that would contain equivalent of the CLI flag
// structures used by the actions.
func init() {
	setupTwelveFactorMode()
}

// setupTwelveFactorMode will enable or disable 12 factor mode based on environment variable.
func setupTwelveFactorMode() {
	twelveFactorMode = os.Getenv(envVarTwelveFactorMode) != ""
}

const (
	envVarTwelveFactorMode = c.EnvVarPrefix + "_" + "12FACTOR_MODE"
	envVarCommand          = c.EnvVarPrefix + "_" + "COMMAND"
	envVarSubcommand       = c.EnvVarPrefix + "_" + "SUBCOMMAND"
	envVarLogLevel         = c.EnvVarPrefix + "_" + "LOG_LEVEL"
)

var twelveFactorMode bool // true if os env var envVarTwelveFactorMode is set

var twelveFactorActions = map[string]func() error{
	"dag":                  runDag,
	"flow":                 runFlow,
	"serve":                runServe,
	"universe-validate":    runUniverse(actions.RunUniverseValidate),
	"universe-uuids":       runUniverse(actions.RunUniverseUUIDs),
	"universe-permissions": runUniverse(actions.RunUniversePermissions),
}

// getEndpointLoader returns the source of named endpoint configs that manifests do not declare.
func getEndpointLoader() actions.EndpointLoader {
	if twelveFactorMode {
		return TwelveFactorEndpoints{Getenv: os.Getenv}
	}
	return config.StoreLookup{Store: endpointsConfig}
}

func execute12FactorMode(acts map[string]func() error) (err error) {
	logLevel := helper.ReadValueFromEnvWithDefault(envVarLogLevel, "warn")
	log := logger.NewLogger(c.AppName, logLevel, stackDumpOnPanic)
	log.Info("aorist is running in 12 Factor mode...")
	command := os.Getenv(envVarCommand)
	subcommand := os.Getenv(envVarSubcommand)
	log.Debug(envVarCommand, "=", command)
	log.Debug(envVarSubcommand, "=", subcommand)
	action := command
	if subcommand != "" {
		action = fmt.Sprintf("%v-%v", command, subcommand)
	}
	fn, ok := acts[strings.ToLower(action)]
	if !ok {
		err = fmt.Errorf("invalid combination of command (%v) and subcommand (%v)", command, subcommand)
		log.Error(err.Error())
		return
	}
	if err = fn(); err != nil {
		log.Error("Error: ", err)
	}
	return err
}

// TwelveFactorEndpoints builds endpoint configs from environment variables named
// AORIST_<ENDPOINT>_<FIELD>. An endpoint is configured when any of its variables is set.
// The config name is ignored since the environment holds a single set of endpoints.
type TwelveFactorEndpoints struct {
	Getenv func(string) string
}

func (t TwelveFactorEndpoints) GetEndpointConfig(name string) (universe.EndpointConfig, error) {
	isSet := func(endpoint string, fields ...string) bool {
		for _, f := range fields {
			if t.Getenv(helper.GetEndpointEnvVarName(endpoint, f)) != "" {
				return true
			}
		}
		return false
	}
	e := universe.EndpointConfig{}
	if isSet("Alluxio", "Server", "ServerCLI", "RPCPort", "APIPort") {
		e.Alluxio = &universe.AlluxioConfig{}
	}
	if isSet("Presto", "Server", "HTTPPort", "User") {
		e.Presto = &universe.PrestoConfig{}
	}
	if isSet("Ranger", "Server", "Port", "User", "Password") {
		e.Ranger = &universe.RangerConfig{}
	}
	if isSet("Gitea", "Server", "Port", "Token") {
		e.Gitea = &universe.GiteaConfig{}
	}
	if isSet("Postgres", "Server", "Port", "Username", "Password") {
		e.Postgres = &universe.PostgresConfig{}
	}
	if isSet("Minio", "Server", "Port", "Bucket", "AccessKey", "SecretKey") {
		e.Minio = &universe.MinioConfig{}
	}
	if isSet("AWS", "AccessKeyID", "AccessKeySecret", "Region", "ProjectName") {
		e.AWS = &universe.AWSConfig{}
	}
	if len(e.Names()) == 0 {
		return e, fmt.Errorf("endpoint config %q not found: no %v_<ENDPOINT>_<FIELD> environment variables are set", name, c.EnvVarPrefix)
	}
	// Field values are applied from the same variables when the universe is assembled.
	return e, nil
}
