package cmd

import (
	"fmt"

	"github.com/relloyd/aorist/actions"
	"github.com/relloyd/aorist/universe"
	"github.com/spf13/cobra"
)

var configEndpointAddCfg = actions.EndpointActionConfig{}

// Values for each kind of endpoint. Only the kinds given a value on the command line are saved.
var (
	alluxioEndpoint = universe.AlluxioConfig{}
	prestoEndpoint  = universe.PrestoConfig{}
	rangerEndpoint  = universe.RangerConfig{}
	giteaEndpoint   = universe.GiteaConfig{}
	minioEndpoint   = universe.MinioConfig{}
	awsEndpoint     = universe.AWSConfig{}
)

var configEndpointAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or update an endpoint config",
	Long: fmt.Sprintf(`Add an endpoint config to the config store %q.
Supply the flags of each kind of endpoint the universe uses. Postgres details are
given as a URL of the form:

postgres://<user>:<password>@<host>:<port>/
`, endpointsConfig.FullPath),
	RunE: func(cmd *cobra.Command, args []string) error {
		configEndpointAddCfg.ConfigFile = endpointsConfig
		configEndpointAddCfg.Endpoints = endpointsFromFlags()
		cmd.SilenceUsage = true
		return actions.RunEndpointAdd(&configEndpointAddCfg)
	},
}

// endpointsFromFlags returns the endpoints that have been given values on the command line.
func endpointsFromFlags() universe.EndpointConfig {
	e := universe.EndpointConfig{}
	if alluxioEndpoint != (universe.AlluxioConfig{}) {
		a := alluxioEndpoint
		e.Alluxio = &a
	}
	if prestoEndpoint != (universe.PrestoConfig{}) {
		p := prestoEndpoint
		e.Presto = &p
	}
	if rangerEndpoint != (universe.RangerConfig{}) {
		r := rangerEndpoint
		e.Ranger = &r
	}
	if giteaEndpoint != (universe.GiteaConfig{}) {
		g := giteaEndpoint
		e.Gitea = &g
	}
	if minioEndpoint != (universe.MinioConfig{}) {
		m := minioEndpoint
		e.Minio = &m
	}
	if awsEndpoint != (universe.AWSConfig{}) {
		a := awsEndpoint
		e.AWS = &a
	}
	return e
}

func init() {
	configEndpointCmd.AddCommand(configEndpointAddCmd)
	c := configEndpointAddCmd
	c.Flags().SortFlags = false
	switches.addFlag(c, &configEndpointAddCfg.Name, "endpoint-name", "", true, "")
	switches.addFlag(c, &configEndpointAddCfg.Force, "force", "", false, "")
	switches.addFlag(c, &alluxioEndpoint.Server, "alluxio-server", "", false, "")
	switches.addFlag(c, &alluxioEndpoint.RPCPort, "alluxio-rpc-port", "", false, "")
	switches.addFlag(c, &alluxioEndpoint.APIPort, "alluxio-api-port", "", false, "")
	switches.addFlag(c, &prestoEndpoint.Server, "presto-server", "", false, "")
	switches.addFlag(c, &prestoEndpoint.HTTPPort, "presto-http-port", "", false, "")
	switches.addFlag(c, &prestoEndpoint.User, "presto-user", "", false, "")
	switches.addFlag(c, &rangerEndpoint.Server, "ranger-server", "", false, "")
	switches.addFlag(c, &rangerEndpoint.Port, "ranger-port", "", false, "")
	switches.addFlag(c, &rangerEndpoint.User, "ranger-user", "", false, "")
	switches.addFlag(c, &rangerEndpoint.Password, "ranger-password", "", false, "")
	switches.addFlag(c, &giteaEndpoint.Server, "gitea-server", "", false, "")
	switches.addFlag(c, &giteaEndpoint.Port, "gitea-port", "", false, "")
	switches.addFlag(c, &giteaEndpoint.Token, "gitea-token", "", false, "")
	switches.addFlag(c, &configEndpointAddCfg.PostgresURL, "postgres-url", "", false, "")
	switches.addFlag(c, &minioEndpoint.Server, "minio-server", "", false, "")
	switches.addFlag(c, &minioEndpoint.Port, "minio-port", "", false, "")
	switches.addFlag(c, &minioEndpoint.Bucket, "minio-bucket", "", false, "")
	switches.addFlag(c, &minioEndpoint.AccessKey, "minio-access-key", "", false, "")
	switches.addFlag(c, &minioEndpoint.SecretKey, "minio-secret-key", "", false, "")
	switches.addFlag(c, &awsEndpoint.Region, "aws-region", "", false, "")
	switches.addFlag(c, &awsEndpoint.AccessKeyID, "aws-key-id", "", false, "")
	switches.addFlag(c, &awsEndpoint.AccessKeySecret, "aws-key-secret", "", false, "")
	switches.addFlag(c, &awsEndpoint.ProjectName, "aws-project", "", false, "")
}
