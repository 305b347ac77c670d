package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	om "github.com/cevaris/ordered_map"
	"github.com/hashicorp/go-version"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/relloyd/aorist/constants"
	"github.com/relloyd/aorist/helper"
	"github.com/relloyd/aorist/logger"
	"github.com/relloyd/aorist/universe"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

// Document types found in manifests.
const (
	DocUser           = "User"
	DocUserGroup      = "UserGroup"
	DocRoleBinding    = "RoleBinding"
	DocEndpointConfig = "EndpointConfig"
	DocDatumTemplate  = "DatumTemplate"
	DocDataSet        = "DataSet"
	DocAsset          = "Asset"
	DocUniverse       = "Universe"
	DocReplication    = "Replication"
)

// Manifest formats.
const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Documents are applied in this order regardless of the order they were read in.
var docTypeOrder = []string{
	DocEndpointConfig,
	DocUser,
	DocUserGroup,
	DocRoleBinding,
	DocDataSet,
	DocDatumTemplate,
	DocAsset,
	DocReplication,
	DocUniverse,
}

// Document is one {version, type, spec} entry of a manifest.
type Document struct {
	Version string
	Type    string
	Spec    map[string]interface{}
	Source  string
}

// Replication modes.
const (
	ReplicationModeReplicate = "replicate"
	ReplicationModePersist   = "persist"
)

type replicationSpec struct {
	DataSet     string             `mapstructure:"dataset" mandatory:"yes" errorTxt:"replication dataset"`
	Mode        string             `mapstructure:"mode"`
	Storage     universe.Storage   `mapstructure:"storage"`
	TmpDir      string             `mapstructure:"tmpDir"`
	TmpEncoding *universe.Encoding `mapstructure:"tmpEncoding"`
	As          string             `mapstructure:"as"`
}

type templateSpec struct {
	DataSet                string `mapstructure:"dataset" mandatory:"yes" errorTxt:"datum template dataset"`
	universe.DatumTemplate `mapstructure:",squash"`
}

type assetSpec struct {
	DataSet        string `mapstructure:"dataset" mandatory:"yes" errorTxt:"asset dataset"`
	universe.Asset `mapstructure:",squash"`
}

type endpointSpec struct {
	Name                    string `mapstructure:"name" mandatory:"yes" errorTxt:"endpoint config name"`
	PostgresURL             string `mapstructure:"postgresUrl"`
	universe.EndpointConfig `mapstructure:",squash"`
}

type universeSpec struct {
	Name      string   `mapstructure:"name" mandatory:"yes" errorTxt:"universe name"`
	DataSets  []string `mapstructure:"datasets"`
	Users     []string `mapstructure:"users"`
	Groups    []string `mapstructure:"groups"`
	Endpoints string   `mapstructure:"endpoints"`
}

// Manifests holds everything declared by a set of manifest documents, keyed by name.
type Manifests struct {
	Users        []universe.User
	Groups       []universe.UserGroup
	RoleBindings []universe.RoleBinding
	DataSets     *om.OrderedMap // name -> *universe.DataSet
	Endpoints    *om.OrderedMap // name -> universe.EndpointConfig
	Universes    []universeSpec
}

// EndpointLookup finds endpoint configurations that are not declared in manifests,
// e.g. those saved in the local endpoints file.
type EndpointLookup interface {
	GetEndpointConfig(name string) (universe.EndpointConfig, error)
}

// StoreLookup adapts an EndpointStore to an EndpointLookup.
type StoreLookup struct {
	Store EndpointStore
}

func (s StoreLookup) GetEndpointConfig(name string) (universe.EndpointConfig, error) {
	return GetEndpointConfig(s.Store, name)
}

// LoadManifests reads every manifest found at paths. Directories are walked and all
// .yaml, .yml and .toml files in them are read in lexical order.
func LoadManifests(log logger.Logger, fs afero.Fs, paths ...string) (*Manifests, error) {
	if len(paths) == 0 {
		return nil, errors.New("no manifest files supplied")
	}
	docs := make([]Document, 0)
	for _, p := range paths {
		files, err := manifestFiles(fs, p)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			b, err := afero.ReadFile(fs, f)
			if err != nil {
				return nil, errors.Wrapf(err, "error reading manifest %v", f)
			}
			d, err := ParseDocuments(b, FormatForFile(f), f)
			if err != nil {
				return nil, err
			}
			log.Debug("read ", len(d), " documents from manifest ", f)
			docs = append(docs, d...)
		}
	}
	return NewManifests(docs)
}

func manifestFiles(fs afero.Fs, p string) ([]string, error) {
	isDir, err := afero.IsDir(fs, p)
	if err != nil {
		return nil, errors.Wrapf(err, "manifest path %v", p)
	}
	if !isDir {
		return []string{p}, nil
	}
	retval := make([]string, 0)
	err = afero.Walk(fs, p, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && isManifestFile(path) {
			retval = append(retval, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "error reading manifest directory %v", p)
	}
	sort.Strings(retval)
	return retval, nil
}

func isManifestFile(p string) bool {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".yaml", ".yml", ".toml":
		return true
	}
	return false
}

// FormatForFile returns the manifest format implied by the file extension.
func FormatForFile(p string) string {
	if strings.ToLower(filepath.Ext(p)) == ".toml" {
		return FormatTOML
	}
	return FormatYAML
}

// ParseDocuments splits b into documents.
// YAML input may hold many documents separated by ---.
// TOML input is either one document or an array of tables called documents.
func ParseDocuments(b []byte, format string, source string) ([]Document, error) {
	raw := make([]map[string]interface{}, 0)
	switch format {
	case FormatYAML, "yml", "":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		for {
			var m map[string]interface{}
			err := dec.Decode(&m)
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, errors.Wrapf(err, "error parsing YAML manifest %v", source)
			}
			if len(m) > 0 {
				raw = append(raw, m)
			}
		}
	case FormatTOML:
		m := make(map[string]interface{})
		if _, err := toml.Decode(string(b), &m); err != nil {
			return nil, errors.Wrapf(err, "error parsing TOML manifest %v", source)
		}
		if list, ok := m["documents"]; ok {
			tables, ok := list.([]map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("TOML manifest %v: documents must be an array of tables", source)
			}
			raw = append(raw, tables...)
		} else if len(m) > 0 {
			raw = append(raw, m)
		}
	default:
		return nil, fmt.Errorf("unsupported manifest format %q", format)
	}
	retval := make([]Document, 0, len(raw))
	for idx, m := range raw {
		d, err := newDocument(normalise(m).(map[string]interface{}), source)
		if err != nil {
			return nil, errors.Wrapf(err, "manifest %v document %v", source, idx+1)
		}
		retval = append(retval, d)
	}
	return retval, nil
}

func newDocument(m map[string]interface{}, source string) (Document, error) {
	d := Document{Version: constants.ManifestVersionDefault, Source: source}
	for k := range m {
		switch k {
		case "version", "type", "spec":
		default:
			return d, fmt.Errorf("unexpected key %q; documents are made of version, type and spec", k)
		}
	}
	if v, ok := m["version"]; ok && v != nil {
		d.Version = fmt.Sprintf("%v", v)
	}
	if err := checkVersion(d.Version); err != nil {
		return d, err
	}
	t, ok := m["type"].(string)
	if !ok || t == "" {
		return d, errors.New("document type is missing")
	}
	d.Type = t
	switch s := m["spec"].(type) {
	case map[string]interface{}:
		d.Spec = s
	case nil:
		return d, fmt.Errorf("%v document has no spec", t)
	default:
		return d, fmt.Errorf("%v document spec must be a map", t)
	}
	return d, nil
}

func checkVersion(v string) error {
	c, err := version.NewConstraint(constants.ManifestVersionConstraint)
	if err != nil {
		return err
	}
	ver, err := version.NewVersion(v)
	if err != nil {
		return errors.Wrapf(err, "bad manifest version %q", v)
	}
	if !c.Check(ver) {
		return fmt.Errorf("manifest version %v is not supported (want %v)", v, constants.ManifestVersionConstraint)
	}
	return nil
}

func decodeSpec(d Document, out interface{}) error {
	if err := decodeOnly(d, out); err != nil {
		return err
	}
	return validateSpec(d, out)
}

func decodeOnly(d Document, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      out,
	})
	if err != nil {
		return err
	}
	if err = dec.Decode(d.Spec); err != nil {
		return errors.Wrapf(err, "error decoding %v document from %v", d.Type, d.Source)
	}
	return nil
}

func validateSpec(d Document, out interface{}) error {
	if err := helper.ValidateStructIsPopulated(out); err != nil {
		return errors.Wrapf(err, "%v document from %v", d.Type, d.Source)
	}
	return nil
}

// NewManifests applies docs in dependency order: endpoints, users and groups first, then
// datasets and the templates and assets added to them, then replications and universes.
func NewManifests(docs []Document) (*Manifests, error) {
	m := &Manifests{
		Users:        make([]universe.User, 0),
		Groups:       make([]universe.UserGroup, 0),
		RoleBindings: make([]universe.RoleBinding, 0),
		DataSets:     om.NewOrderedMap(),
		Endpoints:    om.NewOrderedMap(),
		Universes:    make([]universeSpec, 0),
	}
	known := make(map[string]struct{}, len(docTypeOrder))
	for _, t := range docTypeOrder {
		known[t] = struct{}{}
	}
	for _, d := range docs {
		if _, ok := known[d.Type]; !ok {
			return nil, fmt.Errorf("unknown document type %q in %v; expected one of %v", d.Type, d.Source, strings.Join(docTypeOrder, ", "))
		}
	}
	for _, t := range docTypeOrder {
		for _, d := range docs {
			if d.Type != t {
				continue
			}
			if err := m.apply(d); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Manifests) apply(d Document) error {
	switch d.Type {
	case DocEndpointConfig:
		s := endpointSpec{}
		if err := decodeSpec(d, &s); err != nil {
			return err
		}
		if s.PostgresURL != "" {
			pg, err := universe.NewPostgresConfigFromURL(s.PostgresURL)
			if err != nil {
				return errors.Wrapf(err, "endpoint config %q", s.Name)
			}
			s.EndpointConfig.Postgres = pg
		}
		if _, ok := m.Endpoints.Get(s.Name); ok {
			return fmt.Errorf("duplicate endpoint config %q", s.Name)
		}
		m.Endpoints.Set(s.Name, s.EndpointConfig)
	case DocUser:
		u := universe.User{}
		if err := decodeSpec(d, &u); err != nil {
			return err
		}
		m.Users = append(m.Users, u)
	case DocUserGroup:
		g := universe.UserGroup{}
		if err := decodeSpec(d, &g); err != nil {
			return err
		}
		m.Groups = append(m.Groups, g)
	case DocRoleBinding:
		rb := universe.RoleBinding{}
		if err := decodeSpec(d, &rb); err != nil {
			return err
		}
		m.RoleBindings = append(m.RoleBindings, rb)
	case DocDataSet:
		ds := &universe.DataSet{}
		if err := decodeOnly(d, ds); err != nil {
			return err
		}
		if ds.Assets == nil {
			ds.Assets = make(map[string]universe.Asset)
		}
		// Assets may be named by their key alone.
		for k, a := range ds.Assets {
			if a.Name == "" {
				a.Name = k
				ds.Assets[k] = a
			}
		}
		if err := validateSpec(d, ds); err != nil {
			return err
		}
		if _, ok := m.DataSets.Get(ds.Name); ok {
			return fmt.Errorf("duplicate dataset %q", ds.Name)
		}
		m.DataSets.Set(ds.Name, ds)
	case DocDatumTemplate:
		s := templateSpec{}
		if err := decodeSpec(d, &s); err != nil {
			return err
		}
		ds, err := m.DataSet(s.DataSet)
		if err != nil {
			return errors.Wrapf(err, "datum template %q", s.Name)
		}
		return ds.AddTemplate(s.DatumTemplate)
	case DocAsset:
		s := assetSpec{}
		if err := decodeSpec(d, &s); err != nil {
			return err
		}
		ds, err := m.DataSet(s.DataSet)
		if err != nil {
			return errors.Wrapf(err, "asset %q", s.Name)
		}
		return ds.AddAsset(s.Asset)
	case DocReplication:
		s := replicationSpec{}
		if err := decodeSpec(d, &s); err != nil {
			return err
		}
		return m.replicate(s)
	case DocUniverse:
		s := universeSpec{}
		if err := decodeSpec(d, &s); err != nil {
			return err
		}
		for _, existing := range m.Universes {
			if existing.Name == s.Name {
				return fmt.Errorf("duplicate universe %q", s.Name)
			}
		}
		m.Universes = append(m.Universes, s)
	}
	return nil
}

func (m *Manifests) replicate(s replicationSpec) error {
	ds, err := m.DataSet(s.DataSet)
	if err != nil {
		return errors.Wrap(err, "replication")
	}
	if err = s.Storage.Validate(); err != nil {
		return errors.Wrapf(err, "replication of dataset %q", s.DataSet)
	}
	var replicated *universe.DataSet
	switch s.Mode {
	case ReplicationModeReplicate, "":
		if s.TmpEncoding == nil {
			return fmt.Errorf("replication of dataset %q needs a tmpEncoding", s.DataSet)
		}
		tmpDir := s.TmpDir
		if tmpDir == "" {
			tmpDir = filepath.Join(constants.DefaultTmpDir, s.DataSet)
		}
		replicated = ds.ReplicateToLocal(s.Storage, tmpDir, *s.TmpEncoding)
	case ReplicationModePersist:
		replicated = ds.PersistLocal(s.Storage)
	default:
		return fmt.Errorf("unknown replication mode %q of dataset %q", s.Mode, s.DataSet)
	}
	if s.As == "" || s.As == s.DataSet {
		m.DataSets.Set(s.DataSet, replicated)
		return nil
	}
	if _, ok := m.DataSets.Get(s.As); ok {
		return fmt.Errorf("replication of dataset %q: dataset %q already exists", s.DataSet, s.As)
	}
	replicated.Name = s.As
	m.DataSets.Set(s.As, replicated)
	return nil
}

// DataSet returns the dataset declared as name.
func (m *Manifests) DataSet(name string) (*universe.DataSet, error) {
	v, ok := m.DataSets.Get(name)
	if !ok {
		return nil, fmt.Errorf("dataset %q is not declared", name)
	}
	return v.(*universe.DataSet), nil
}

// DataSetNames returns the names of all datasets in declaration order.
func (m *Manifests) DataSetNames() []string {
	return helper.OrderedMapKeys(m.DataSets)
}

// UniverseNames returns the names of all universes in declaration order.
func (m *Manifests) UniverseNames() []string {
	retval := make([]string, 0, len(m.Universes))
	for _, u := range m.Universes {
		retval = append(retval, u.Name)
	}
	return retval
}

// Universe assembles the universe called name. An empty name is allowed when the
// manifests declare exactly one universe.
// Endpoints named by the universe are looked up in the manifests first and then in
// lookup, which may be nil. Environment overrides are applied with getenv.
func (m *Manifests) Universe(name string, lookup EndpointLookup, getenv func(string) string) (*universe.Universe, error) {
	spec, err := m.universeSpec(name)
	if err != nil {
		return nil, err
	}
	u := &universe.Universe{Name: spec.Name}
	// Datasets.
	names := spec.DataSets
	if len(names) == 0 {
		names = m.DataSetNames()
	}
	for _, n := range names {
		ds, err := m.DataSet(n)
		if err != nil {
			return nil, errors.Wrapf(err, "universe %q", spec.Name)
		}
		u.DataSets = append(u.DataSets, ds)
	}
	// Users and the role bindings that apply to them.
	if u.Users, err = selectUsers(m.Users, spec.Users); err != nil {
		return nil, errors.Wrapf(err, "universe %q", spec.Name)
	}
	included := make(map[string]struct{}, len(u.Users))
	for _, usr := range u.Users {
		included[usr.UnixName] = struct{}{}
	}
	for _, rb := range m.RoleBindings {
		if _, ok := included[rb.UserName]; ok {
			u.RoleBindings = append(u.RoleBindings, rb)
		}
	}
	if u.Groups, err = selectGroups(m.Groups, spec.Groups); err != nil {
		return nil, errors.Wrapf(err, "universe %q", spec.Name)
	}
	// Endpoints.
	if spec.Endpoints != "" {
		if v, ok := m.Endpoints.Get(spec.Endpoints); ok {
			u.Endpoints = v.(universe.EndpointConfig).Copy()
		} else if lookup != nil {
			if u.Endpoints, err = lookup.GetEndpointConfig(spec.Endpoints); err != nil {
				return nil, errors.Wrapf(err, "universe %q", spec.Name)
			}
		} else {
			return nil, fmt.Errorf("universe %q refers to unknown endpoint config %q", spec.Name, spec.Endpoints)
		}
	}
	if err = u.Endpoints.ApplyEnv(getenv); err != nil {
		return nil, err
	}
	u.Endpoints.ApplyDefaults()
	if err = u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

func (m *Manifests) universeSpec(name string) (universeSpec, error) {
	if name == "" {
		switch len(m.Universes) {
		case 1:
			return m.Universes[0], nil
		case 0:
			return universeSpec{}, errors.New("no Universe document found in manifests")
		default:
			return universeSpec{}, fmt.Errorf("manifests declare several universes, choose one of: %v", strings.Join(m.UniverseNames(), ", "))
		}
	}
	for _, u := range m.Universes {
		if u.Name == name {
			return u, nil
		}
	}
	return universeSpec{}, fmt.Errorf("universe %q not found in manifests", name)
}

func selectUsers(all []universe.User, names []string) ([]universe.User, error) {
	if len(names) == 0 {
		return append([]universe.User(nil), all...), nil
	}
	retval := make([]universe.User, 0, len(names))
	for _, n := range names {
		found := false
		for _, usr := range all {
			if usr.UnixName == n {
				retval = append(retval, usr)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("user %q is not declared", n)
		}
	}
	return retval, nil
}

func selectGroups(all []universe.UserGroup, names []string) ([]universe.UserGroup, error) {
	if len(names) == 0 {
		return append([]universe.UserGroup(nil), all...), nil
	}
	retval := make([]universe.UserGroup, 0, len(names))
	for _, n := range names {
		found := false
		for _, g := range all {
			if g.Name == n {
				retval = append(retval, g)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("user group %q is not declared", n)
		}
	}
	return retval, nil
}
