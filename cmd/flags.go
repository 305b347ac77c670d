package cmd

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/relloyd/aorist/config"
	"github.com/relloyd/aorist/constants"
	"github.com/relloyd/aorist/helper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type cliFlag struct {
	name      string // name of flag
	val       string // default value
	shortHand string // single character name for the flag
	desc      string // description of the flag; the long text
}

type cliFlags map[string]cliFlag

var switches = cliFlags{
	"mock": cliFlag{name: "mock", shortHand: "m", desc: "mock switch for testing"},
	"manifests": cliFlag{name: "file", shortHand: "f",
		desc: "The <CSV of files or directories> holding manifests (.yaml, .yml or .toml).\n" +
			"Directories are searched recursively"},
	"universe": cliFlag{name: "universe", shortHand: "u",
		desc: "The name of the universe to use when the manifests declare more than one"},
	"targets": cliFlag{name: "targets", shortHand: "t",
		desc: "The <CSV of constraints> that the program must satisfy, e.g. Replicated"},
	"mode": cliFlag{name: "mode", shortHand: "m",
		desc: "The kind of program to generate: \"python | airflow | prefect | bash\""},
	"dialects": cliFlag{name: "dialects", shortHand: "d",
		desc: "The <CSV of dialects> to write tasks in, most preferred first,\n" +
			"from \"python | r | bash | presto\""},
	"recipes": cliFlag{name: "recipes", shortHand: "r",
		desc: "The <CSV of files> holding programs that override or add to the builtin recipes"},
	"execute": cliFlag{name: "execute", shortHand: "e",
		desc: "Run the compiled tasks as a local flow instead of printing the program"},
	"workers": cliFlag{name: "workers", shortHand: "w",
		desc: "The maximum number of tasks to run at once"},
	"stats": cliFlag{name: "stats", shortHand: "L",
		desc: "Number of seconds between dumping task statistics (use 0 to disable)"},
	"log-level": cliFlag{name: "log-level", shortHand: "l",
		desc: "Log level: \"error | warn | info | debug\""},
	"output": cliFlag{name: "output", shortHand: "o",
		desc: "Output format: \"yaml\" or \"json\""},
	"flow-file": cliFlag{name: "file", shortHand: "f",
		desc: "File containing the flow definition (.yaml or .json)"},
	"web-service": cliFlag{name: "web-service", shortHand: "W",
		desc: "Launch a web service to monitor the flow"},
	"port": cliFlag{name: "port", shortHand: "p",
		desc: "Port to listen on"},
	"key": cliFlag{name: "key", shortHand: "k",
		desc: "The key to set in config. Match the name of the flag\n" +
			"to have this value take effect in commands"},
	"value": cliFlag{name: "value", shortHand: "v",
		desc: "The default value to set"},
	"force": cliFlag{name: "force", shortHand: "F",
		desc: "Overwrite existing values"},
	"endpoint-name": cliFlag{name: "name", shortHand: "n",
		desc: "Endpoint config name referred to by universe manifests"},
	"alluxio-server": cliFlag{name: "alluxio-server", desc: "Alluxio master host name"},
	"alluxio-rpc-port": cliFlag{name: "alluxio-rpc-port", desc: "Alluxio master RPC port"},
	"alluxio-api-port": cliFlag{name: "alluxio-api-port", desc: "Alluxio proxy REST API port"},
	"presto-server": cliFlag{name: "presto-server", desc: "Presto coordinator host name"},
	"presto-http-port": cliFlag{name: "presto-http-port", desc: "Presto coordinator HTTP port"},
	"presto-user": cliFlag{name: "presto-user", desc: "User to run Presto queries as"},
	"ranger-server": cliFlag{name: "ranger-server", desc: "Ranger admin host name"},
	"ranger-port": cliFlag{name: "ranger-port", desc: "Ranger admin port"},
	"ranger-user": cliFlag{name: "ranger-user", desc: "Ranger admin user"},
	"ranger-password": cliFlag{name: "ranger-password", desc: "Ranger admin password"},
	"gitea-server": cliFlag{name: "gitea-server", desc: "Gitea host name"},
	"gitea-port": cliFlag{name: "gitea-port", desc: "Gitea port"},
	"gitea-token": cliFlag{name: "gitea-token", desc: "Gitea admin API token"},
	"postgres-url": cliFlag{name: "postgres-url", desc: "Postgres URL of the form postgres://<user>:<password>@<host>:<port>/"},
	"minio-server": cliFlag{name: "minio-server", desc: "MinIO host name"},
	"minio-port": cliFlag{name: "minio-port", desc: "MinIO port"},
	"minio-bucket": cliFlag{name: "minio-bucket", desc: "MinIO bucket to replicate data into"},
	"minio-access-key": cliFlag{name: "minio-access-key", desc: "MinIO access key"},
	"minio-secret-key": cliFlag{name: "minio-secret-key", desc: "MinIO secret key"},
	"aws-region": cliFlag{name: "aws-region", desc: "AWS region"},
	"aws-key-id": cliFlag{name: "aws-key-id", desc: "AWS access key ID (or set AWS_ACCESS_KEY_ID)"},
	"aws-key-secret": cliFlag{name: "aws-key-secret", desc: "AWS secret access key (or set AWS_SECRET_ACCESS_KEY)"},
	"aws-project": cliFlag{name: "aws-project", desc: "Project name used to tag AWS resources"},
}

// addFlag add a flag to cobra.Command c, based on the type of targetVar (which must be a pointer).
// The name of the flag is looked up in map, cliFlags.
// When running in twelveFactorMode, the targetVar is populated using the value of environment variable for the supplied
// name, or if not set then the supplied default value is used.
// When NOT running in twelveFactorMode, the default value is fetched from config if it exists else the supplied
// defaultValue is applied.
// The flag is marked as required in Cobra based on the value of required.
// Supply a value for desc2 to append to the existing description found in map cliFlags.
func (f *cliFlags) addFlag(c *cobra.Command, targetVar interface{}, name string, defaultValue string, required bool, desc2 string) {
	v := reflect.ValueOf(targetVar)
	if v.Kind() != reflect.Ptr {
		fmt.Println("error adding flag: targetVar must be a pointer")
		os.Exit(1)
	}
	sw := f.getCliFlag(name, defaultValue, mainConfig.Get) // defaults come from config or the supplied defaultValue
	desc := sw.desc + desc2
	switch p := targetVar.(type) {
	case *string:
		if twelveFactorMode {
			*p = sw.val
		} else {
			c.Flags().StringVarP(p, sw.name, sw.shortHand, sw.val, desc)
			// Signal that the flag was set so defaults take effect.
			if sw.val != "" {
				mustSetFlag(c.Flags(), sw.name, sw.val)
			}
		}
	case *[]string:
		vals := helper.CsvToStringSliceTrimSpaces(sw.val)
		if twelveFactorMode {
			*p = vals
		} else {
			c.Flags().StringSliceVarP(p, sw.name, sw.shortHand, vals, desc)
		}
	case *bool:
		b, _ := strconv.ParseBool(sw.val)
		if twelveFactorMode {
			*p = b
		} else {
			c.Flags().BoolVarP(p, sw.name, sw.shortHand, b, desc)
		}
	case *int:
		i := 0
		if sw.val != "" {
			var err error
			if i, err = strconv.Atoi(sw.val); err != nil {
				fmt.Printf("the value for flag %q must be an integer: %v\n", sw.name, err)
				os.Exit(1)
			}
		}
		if twelveFactorMode {
			*p = i
		} else {
			c.Flags().IntVarP(p, sw.name, sw.shortHand, i, desc)
		}
	default:
		panic("Error: unhandled CLI flag target value type")
	}
	if required && !twelveFactorMode && sw.val == "" {
		_ = c.MarkFlagRequired(sw.name)
	}
}

// getCliFlag fetches the value of name from the environment, when running in twelveFactorMode,
// else read the main config file to find it.
// If a value cannot be found then use the supplied defaultValue in its place.
func (f *cliFlags) getCliFlag(name string, defaultValue string, fnGetConfig func(key string, out interface{}) error) cliFlag {
	s, ok := (*f)[name]
	if !ok {
		panic(fmt.Sprintf("unregistered CLI flag, %q", name))
	}
	if twelveFactorMode {
		if err := helper.ReadValueFromEnv(flagNameToEnvVar(s.name), &s.val); err != nil {
			s.val = defaultValue
		}
		return s
	}
	var val interface{}
	err := fnGetConfig(s.name, &val)
	switch {
	case errors.As(err, &config.KeyNotFoundError{}):
		s.val = defaultValue
	case err != nil:
		fmt.Printf("ignoring the default value for flag %q: %v\n", s.name, err)
		s.val = defaultValue
	case val == nil || fmt.Sprint(val) == "":
		s.val = defaultValue
	default:
		s.val = fmt.Sprint(val)
	}
	return s
}

// flagNameToEnvVar will form a sanitised environment variable name using constants.EnvVarPrefix.
func flagNameToEnvVar(name string) string {
	return constants.EnvVarPrefix + "_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

func mustSetFlag(f *pflag.FlagSet, name string, val string) {
	if err := f.Set(name, val); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
