package actions

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/relloyd/aorist/config"
	"github.com/relloyd/aorist/helper"
	"github.com/relloyd/aorist/universe"
)

type EndpointActionConfig struct {
	ConfigFile  ConfigGetterSetter `errorTxt:"config-file" mandatory:"yes"`
	Name        string             `errorTxt:"endpoint config name" mandatory:"yes"`
	Endpoints   universe.EndpointConfig
	PostgresURL string
	Force       bool
	Output      io.Writer
}

type EndpointListConfig struct {
	ConfigFile   ConfigGetterSetter `errorTxt:"config-file" mandatory:"yes"`
	OutputFormat string
	Output       io.Writer
}

// RunEndpointAdd saves the endpoints in cfg under cfg.Name.
// An existing configuration is only updated when cfg.Force is set, in which case the
// endpoints supplied replace those of the same kind.
func RunEndpointAdd(cfg *EndpointActionConfig) error {
	if err := helper.ValidateStructIsPopulated(struct {
		ConfigFile ConfigGetterSetter `errorTxt:"config-file" mandatory:"yes"`
		Name       string             `errorTxt:"endpoint config name" mandatory:"yes"`
	}{cfg.ConfigFile, cfg.Name}); err != nil {
		return err
	}
	if strings.ContainsAny(cfg.Name, ". ") {
		return fmt.Errorf("endpoint config name %q cannot contain periods or spaces", cfg.Name)
	}
	e := cfg.Endpoints
	if cfg.PostgresURL != "" {
		pg, err := universe.NewPostgresConfigFromURL(cfg.PostgresURL)
		if err != nil {
			return err
		}
		e.Postgres = pg
	}
	if len(e.Names()) == 0 {
		return errors.New("supply details of at least one endpoint")
	}
	for _, ep := range []interface{}{e.Alluxio, e.Presto, e.Ranger, e.Postgres, e.Minio} {
		if err := helper.ValidateStructIsPopulated(ep); err != nil {
			return err
		}
	}
	existing := universe.EndpointConfig{}
	err := cfg.ConfigFile.Get(cfg.Name, &existing)
	if err == nil && !cfg.Force {
		return fmt.Errorf("endpoint config %q exists, use force to update it or remove it first", cfg.Name)
	} else if err != nil && !errors.As(err, &config.KeyNotFoundError{}) {
		return err
	}
	if err = config.SetEndpointConfig(cfg.ConfigFile, cfg.Name, e); err != nil {
		return fmt.Errorf("error writing endpoints config file after adding: %v", err)
	}
	_, _ = fmt.Fprintf(writerOrStdout(cfg.Output), "Endpoint config %q saved with endpoints %v\n", cfg.Name, e.Names())
	return nil
}

// RunEndpointList prints every saved endpoint configuration without secrets.
func RunEndpointList(cfg *EndpointListConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	keys, err := cfg.ConfigFile.GetAllKeys()
	if err != nil {
		return err
	}
	all := make(map[string]universe.EndpointConfig, len(keys))
	for _, k := range keys {
		e, err := config.GetEndpointConfig(cfg.ConfigFile, k)
		if err != nil {
			return err
		}
		all[k] = e
	}
	return writeOutput(cfg.Output, all, cfg.OutputFormat)
}

// RunEndpointRemove deletes the endpoint configuration called cfg.Name.
func RunEndpointRemove(cfg *EndpointActionConfig) error {
	if err := helper.ValidateStructIsPopulated(struct {
		ConfigFile ConfigGetterSetter `errorTxt:"config-file" mandatory:"yes"`
		Name       string             `errorTxt:"endpoint config name" mandatory:"yes"`
	}{cfg.ConfigFile, cfg.Name}); err != nil {
		return err
	}
	if err := cfg.ConfigFile.Delete(cfg.Name); err != nil {
		return fmt.Errorf("unable to remove endpoint config %q: %v", cfg.Name, err)
	}
	_, _ = fmt.Fprintf(writerOrStdout(cfg.Output), "Endpoint config %q removed\n", cfg.Name)
	return nil
}
