package actions

import (
	"github.com/relloyd/aorist/universe"
)

// ConfigGetterSetter is a key-value store such as config.File.
type ConfigGetterSetter interface {
	Get(key string, out interface{}) error
	Set(key string, val interface{}) error
	Delete(key string) error
	GetAllKeys() ([]string, error)
}

// EndpointLoader finds named endpoint configurations that manifests refer to.
type EndpointLoader interface {
	GetEndpointConfig(name string) (universe.EndpointConfig, error)
}
