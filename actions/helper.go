package actions

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/relloyd/aorist/config"
	"github.com/relloyd/aorist/logger"
	"github.com/relloyd/aorist/universe"
	"github.com/spf13/afero"
)

// Output formats.
const (
	OutputYAML = "yaml"
	OutputJSON = "json"
)

// ManifestConfig says where to find the manifests of a universe.
type ManifestConfig struct {
	ManifestFiles []string `errorTxt:"manifest files" mandatory:"yes"`
	Universe      string
	Fs            afero.Fs
	Endpoints     EndpointLoader
}

// loadUniverse reads the manifests and assembles the requested universe.
func loadUniverse(log logger.Logger, m ManifestConfig) (*universe.Universe, error) {
	fs := m.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	manifests, err := config.LoadManifests(log, fs, m.ManifestFiles...)
	if err != nil {
		return nil, err
	}
	var lookup config.EndpointLookup
	if m.Endpoints != nil {
		lookup = m.Endpoints
	}
	u, err := manifests.Universe(m.Universe, lookup, os.Getenv)
	if err != nil {
		return nil, err
	}
	log.Debug("loaded universe ", u.Name, " with ", len(u.DataSets), " datasets and endpoints ", u.Endpoints.Names())
	return u, nil
}

func writerOrStdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}

// writeOutput prints v to w as YAML or JSON.
func writeOutput(w io.Writer, v interface{}, format string) error {
	var data []byte
	var err error
	switch strings.ToLower(format) {
	case OutputYAML, "":
		data, err = yaml.Marshal(v)
	case OutputJSON:
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
	if err != nil {
		return err
	}
	_, err = writerOrStdout(w).Write(data)
	return err
}
