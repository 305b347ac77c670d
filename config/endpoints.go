package config

import (
	"github.com/pkg/errors"
	"github.com/relloyd/aorist/universe"
)

// EndpointStore is the subset of File used to save named endpoint configurations.
type EndpointStore interface {
	Get(key string, out interface{}) error
	Set(key string, val interface{}) error
	Delete(key string) error
	GetAllKeys() ([]string, error)
}

// GetEndpointConfig loads the endpoint configuration saved as name.
func GetEndpointConfig(s EndpointStore, name string) (universe.EndpointConfig, error) {
	e := universe.EndpointConfig{}
	if err := s.Get(name, &e); err != nil {
		return e, errors.Wrapf(err, "unable to load endpoint configuration %q", name)
	}
	return e, nil
}

// SetEndpointConfig saves e as name, merging it over any existing configuration of that name.
func SetEndpointConfig(s EndpointStore, name string, e universe.EndpointConfig) error {
	if name == "" {
		return errors.New("endpoint configuration name is empty")
	}
	existing := universe.EndpointConfig{}
	err := s.Get(name, &existing)
	if err != nil && !errors.As(err, &KeyNotFoundError{}) {
		return err
	}
	existing.Merge(e)
	return s.Set(name, existing)
}
