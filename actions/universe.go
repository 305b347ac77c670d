package actions

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/relloyd/aorist/helper"
	"github.com/relloyd/aorist/logger"
	"github.com/relloyd/aorist/universe"
)

type UniverseConfig struct {
	Manifests        ManifestConfig
	OutputFormat     string
	LogLevel         string `errorTxt:"log level" mandatory:"yes"`
	StackDumpOnPanic bool
	Output           io.Writer
}

// ConceptUUID is one line of the uuids report.
type ConceptUUID struct {
	UUID string `json:"uuid"`
	Type string `json:"type"`
	Path string `json:"path"`
}

func setupUniverseAction(cfg *UniverseConfig) (logger.Logger, *universe.Universe, error) {
	if cfg == nil {
		return nil, nil, errors.New("nil pointer to universe config supplied")
	}
	log, err := logger.NewLoggerE("aorist", cfg.LogLevel, cfg.StackDumpOnPanic)
	if err != nil {
		return nil, nil, err
	}
	if err = helper.ValidateStructIsPopulated(cfg); err != nil {
		return nil, nil, err
	}
	u, err := loadUniverse(log, cfg.Manifests)
	if err != nil {
		return nil, nil, err
	}
	return log, u, nil
}

// RunUniverseValidate loads and validates the universe, then prints a summary.
func RunUniverseValidate(cfg *UniverseConfig) error {
	_, u, err := setupUniverseAction(cfg)
	if err != nil {
		return err
	}
	assets := 0
	for _, d := range u.DataSets {
		assets += len(d.Assets)
	}
	_, err = fmt.Fprintf(writerOrStdout(cfg.Output), "Universe %q is valid: %v users, %v groups, %v datasets, %v assets, endpoints %v\n",
		u.Name, len(u.Users), len(u.Groups), len(u.DataSets), assets, u.Endpoints.Names())
	return err
}

// RunUniverseUUIDs prints the UUID of every concept in the universe tree.
func RunUniverseUUIDs(cfg *UniverseConfig) error {
	_, u, err := setupUniverseAction(cfg)
	if err != nil {
		return err
	}
	root, err := u.Tree()
	if err != nil {
		return err
	}
	retval := make([]ConceptUUID, 0)
	err = universe.Walk(root, func(n *universe.Node) error {
		retval = append(retval, ConceptUUID{UUID: n.UUID.String(), Type: n.Type, Path: n.Path()})
		return nil
	})
	if err != nil {
		return err
	}
	return writeOutput(cfg.Output, retval, cfg.OutputFormat)
}

// RunUniversePermissions prints the permissions of every user in the universe.
func RunUniversePermissions(cfg *UniverseConfig) error {
	_, u, err := setupUniverseAction(cfg)
	if err != nil {
		return err
	}
	p, err := u.UserPermissions()
	if err != nil {
		return err
	}
	return writeOutput(cfg.Output, p, cfg.OutputFormat)
}
