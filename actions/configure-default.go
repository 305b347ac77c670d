package actions

import (
	"errors"
	"fmt"
	"io"

	"github.com/relloyd/aorist/config"
	"github.com/relloyd/aorist/helper"
)

type DefaultAddConfig struct {
	ConfigFile ConfigGetterSetter `errorTxt:"config-file" mandatory:"yes"`
	Key        string             `errorTxt:"key" mandatory:"yes"`
	Value      string             `errorTxt:"value" mandatory:"yes"`
	Force      bool
	Output     io.Writer
}

type DefaultRemoveConfig struct {
	ConfigFile ConfigGetterSetter `errorTxt:"config-file" mandatory:"yes"`
	Key        string             `errorTxt:"key" mandatory:"yes"`
	Output     io.Writer
}

type DefaultListConfig struct {
	ConfigFile ConfigGetterSetter `errorTxt:"config-file" mandatory:"yes"`
	Output     io.Writer
}

// RunDefaultAdd adds key+value to the given config file.
// If cfg.Force is not set then it returns an error when the key exists.
// The config file is created when it does not exist.
func RunDefaultAdd(cfg *DefaultAddConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	var val string
	err := cfg.ConfigFile.Get(cfg.Key, &val)
	if err == nil && !cfg.Force { // if key exists and we're not allowed to overwrite...
		return fmt.Errorf("key %q exists, use force to update the value or remove it first", cfg.Key)
	} else if err != nil && !errors.As(err, &config.KeyNotFoundError{}) {
		return err
	}
	if err = cfg.ConfigFile.Set(cfg.Key, cfg.Value); err != nil {
		return fmt.Errorf("error writing config file after adding: %v", err)
	}
	_, _ = fmt.Fprintf(writerOrStdout(cfg.Output), "Key %q added\n", cfg.Key)
	return nil
}

// RunDefaultRemove removes a key from the given config file.
func RunDefaultRemove(cfg *DefaultRemoveConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	if err := cfg.ConfigFile.Delete(cfg.Key); err != nil {
		return fmt.Errorf("unable to delete key %q from config: %v", cfg.Key, err)
	}
	_, _ = fmt.Fprintf(writerOrStdout(cfg.Output), "Key %q removed\n", cfg.Key)
	return nil
}

// RunDefaultList prints key=value for every default in the config file.
func RunDefaultList(cfg *DefaultListConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	keys, err := cfg.ConfigFile.GetAllKeys()
	if err != nil {
		return err
	}
	w := writerOrStdout(cfg.Output)
	for _, k := range keys {
		var val string
		if err := cfg.ConfigFile.Get(k, &val); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "%v=%v\n", k, val)
	}
	return nil
}
