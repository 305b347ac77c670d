package config

import (
	"fmt"
	"path"
	"reflect"
	"sort"
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

const (
	MainFileName      = "config.yaml"
	EndpointsFileName = "endpoints.yaml"
)

// FileNotFoundError denotes failing to find configuration file.
type FileNotFoundError struct {
	name string
}

// Error returns the formatted configuration error.
func (f FileNotFoundError) Error() string {
	return fmt.Sprintf("config file %q not found", f.name)
}

type KeyNotFoundError struct {
	configFile string
	key        string
}

func (k KeyNotFoundError) Error() string {
	return fmt.Sprintf("key %q not found in config file %q", k.key, k.configFile)
}

// File is a map of keys to values held in an EncryptedFile as YAML.
type File struct {
	FullPath     string
	data         map[string]interface{}
	dataIsLoaded bool
	f            *EncryptedFile
	mu           sync.Mutex
}

func NewFile(fs afero.Fs, dirName string, filename string) *File {
	return &File{
		FullPath: path.Join(dirName, filename),
		data:     make(map[string]interface{}),
		f:        NewEncryptedFile(fs, dirName, filename),
	}
}

// NewEndpointsFile returns the endpoints file in the user's aorist home directory.
func NewEndpointsFile(fs afero.Fs) (*File, error) {
	return newHomeFile(fs, EndpointsFileName)
}

// NewMainFile returns the file of default flag values in the user's aorist home directory.
func NewMainFile(fs afero.Fs) (*File, error) {
	return newHomeFile(fs, MainFileName)
}

func newHomeFile(fs afero.Fs, filename string) (*File, error) {
	dir, err := HomeDir()
	if err != nil {
		return nil, err
	}
	return NewFile(fs, dir, filename), nil
}

// Get will decode the value of key into out, which must be a pointer.
func (c *File) Get(key string, out interface{}) error {
	if reflect.ValueOf(out).Kind() != reflect.Ptr {
		return errors.New("out must be a pointer")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadData(); err != nil {
		return err
	}
	d, ok := c.data[key]
	if !ok {
		return KeyNotFoundError{c.FullPath, key}
	}
	if err := mapstructure.Decode(normalise(d), out); err != nil {
		return errors.Wrapf(err, "error decoding key %v in config file %v", key, c.FullPath)
	}
	return nil
}

func (c *File) Set(key string, val interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadData(); err != nil {
		return err
	}
	// Keep the generic YAML form of val, as if it had been loaded from disk.
	b, err := yaml.Marshal(val)
	if err != nil {
		return errors.Wrapf(err, "error marshalling value of key %v", key)
	}
	var generic interface{}
	if err = yaml.Unmarshal(b, &generic); err != nil {
		return errors.Wrapf(err, "error marshalling value of key %v", key)
	}
	c.data[key] = generic
	return c.save(key)
}

func (c *File) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadData(); err != nil {
		return err
	}
	if _, ok := c.data[key]; !ok {
		return KeyNotFoundError{c.FullPath, key}
	}
	delete(c.data, key)
	return c.save(key)
}

// GetAllKeys returns the sorted keys of the file. A missing file has no keys.
func (c *File) GetAllKeys() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadData(); err != nil {
		return nil, err
	}
	retval := make([]string, 0, len(c.data))
	for k := range c.data {
		retval = append(retval, k)
	}
	sort.Strings(retval)
	return retval, nil
}

func (c *File) save(key string) error {
	b, err := yaml.Marshal(c.data)
	if err != nil {
		return errors.Wrapf(err, "error marshalling data while writing key %v to config file %v", key, c.FullPath)
	}
	return c.f.Set(b)
}

// loadData reads the file once. A missing file leaves the data empty.
func (c *File) loadData() error {
	if c.dataIsLoaded {
		return nil
	}
	b, err := c.f.Get()
	if err != nil {
		if errors.As(err, &FileNotFoundError{}) {
			c.dataIsLoaded = true
			return nil
		}
		return err
	}
	data := make(map[string]interface{})
	if err = yaml.Unmarshal(b, &data); err != nil {
		return errors.Wrapf(err, "error reading config file %v", c.FullPath)
	}
	c.data = data
	c.dataIsLoaded = true
	return nil
}

// normalise converts the map[interface{}]interface{} values produced by yaml.v2 into
// map[string]interface{} so they can be decoded and marshalled as JSON.
func normalise(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, val := range t {
			m[fmt.Sprintf("%v", k)] = normalise(val)
		}
		return m
	case map[string]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, val := range t {
			m[k] = normalise(val)
		}
		return m
	case []interface{}:
		s := make([]interface{}, len(t))
		for i, val := range t {
			s[i] = normalise(val)
		}
		return s
	}
	return v
}
