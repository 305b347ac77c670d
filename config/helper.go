package config

import (
	"path"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/relloyd/aorist/constants"
	"github.com/spf13/afero"
)

var aoristHomeDir string

// HomeDir returns the full path to the directory that stores all local config files.
func HomeDir() (string, error) {
	if aoristHomeDir == "" {
		home, err := homedir.Dir()
		if err != nil {
			return "", errors.Wrap(err, "unable to find the home directory")
		}
		aoristHomeDir = path.Join(home, constants.ConfigDirName)
	}
	return aoristHomeDir, nil
}

// makeDir will make the given directory if it does not already exist.
func makeDir(fs afero.Fs, dir string) error {
	ok, err := afero.DirExists(fs, dir)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if err = fs.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "error creating directory %v", dir)
	}
	return nil
}
