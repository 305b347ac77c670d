package universe

import (
	"fmt"
	"sort"
	"strings"
)

// Schema picks the datum template of an asset and optionally a subset of its attributes.
type Schema struct {
	DatumTemplateName string   `mapstructure:"datumTemplateName" json:"datumTemplateName" mandatory:"yes" errorTxt:"asset schema datumTemplateName"`
	Attributes        []string `mapstructure:"attributes" json:"attributes,omitempty"`
}

// Asset is a single table of data and the storage setup that says where it is kept.
type Asset struct {
	Type    string       `mapstructure:"type" json:"type"`
	Name    string       `mapstructure:"name" json:"name" mandatory:"yes" errorTxt:"asset name"`
	Comment string       `mapstructure:"comment" json:"comment,omitempty"`
	Schema  Schema       `mapstructure:"schema" json:"schema"`
	Setup   StorageSetup `mapstructure:"setup" json:"setup"`
}

// TypeOrDefault returns the asset type; assets are static data tables unless stated otherwise.
func (a Asset) TypeOrDefault() string {
	if a.Type == "" {
		return AssetStaticDataTable
	}
	return a.Type
}

// AttributesOf returns the attributes of t that a selects, in template order when
// the selection is empty, or selection order otherwise.
func (a Asset) AttributesOf(t DatumTemplate) ([]Attribute, error) {
	if len(a.Schema.Attributes) == 0 {
		return t.Attributes, nil
	}
	retval := make([]Attribute, 0, len(a.Schema.Attributes))
	for _, name := range a.Schema.Attributes {
		attr, ok := t.Attribute(name)
		if !ok {
			return nil, fmt.Errorf("asset %q selects attribute %q that is missing from datum template %q", a.Name, name, t.Name)
		}
		retval = append(retval, attr)
	}
	return retval, nil
}

// DataSet groups datum templates and the assets built from them.
type DataSet struct {
	Name           string           `mapstructure:"name" json:"name" mandatory:"yes" errorTxt:"dataset name"`
	Description    string           `mapstructure:"description" json:"description,omitempty"`
	SourcePath     string           `mapstructure:"sourcePath" json:"sourcePath,omitempty"`
	DatumTemplates []DatumTemplate  `mapstructure:"datumTemplates" json:"datumTemplates"`
	Assets         map[string]Asset `mapstructure:"assets" json:"assets"`
}

// AddTemplate adds t to the dataset. Template names are unique.
func (d *DataSet) AddTemplate(t DatumTemplate) error {
	if _, ok := d.Template(t.Name); ok {
		return fmt.Errorf("dataset %q already has datum template %q", d.Name, t.Name)
	}
	d.DatumTemplates = append(d.DatumTemplates, t)
	return nil
}

// AddAsset adds a to the dataset. Asset names are unique.
func (d *DataSet) AddAsset(a Asset) error {
	if d.Assets == nil {
		d.Assets = make(map[string]Asset)
	}
	if _, ok := d.Assets[a.Name]; ok {
		return fmt.Errorf("dataset %q already has asset %q", d.Name, a.Name)
	}
	d.Assets[a.Name] = a
	return nil
}

// Template returns the datum template called name.
func (d *DataSet) Template(name string) (DatumTemplate, bool) {
	for _, t := range d.DatumTemplates {
		if t.Name == name {
			return t, true
		}
	}
	return DatumTemplate{}, false
}

// Asset returns the asset called name.
func (d *DataSet) Asset(name string) (Asset, bool) {
	a, ok := d.Assets[name]
	return a, ok
}

// AssetNames returns asset names in sorted order, which is the order assets are visited in.
func (d *DataSet) AssetNames() []string {
	retval := make([]string, 0, len(d.Assets))
	for k := range d.Assets {
		retval = append(retval, k)
	}
	sort.Strings(retval)
	return retval
}

// TemplateForAsset returns the datum template that a's schema names.
func (d *DataSet) TemplateForAsset(a Asset) (DatumTemplate, error) {
	t, ok := d.Template(a.Schema.DatumTemplateName)
	if !ok {
		names := make([]string, 0, len(d.DatumTemplates))
		for _, t := range d.DatumTemplates {
			names = append(names, t.Name)
		}
		return t, fmt.Errorf("could not find datum template %q of asset %q in dataset %q; known templates are: %v",
			a.Schema.DatumTemplateName, a.Name, d.Name, strings.Join(names, ", "))
	}
	return t, nil
}

// copyWithAssets returns a shallow copy of d with a fresh asset map and template slice.
func (d *DataSet) copyWithAssets() *DataSet {
	c := *d
	c.DatumTemplates = append([]DatumTemplate(nil), d.DatumTemplates...)
	c.Assets = make(map[string]Asset, len(d.Assets))
	for k, v := range d.Assets {
		c.Assets[k] = v
	}
	return &c
}

// ReplicateToLocal returns a copy of d in which every asset held in remote storage is
// replicated to target via tmpDir, staged in tmpEncoding.
// Assets that are not remote are kept as they are. d is not modified.
func (d *DataSet) ReplicateToLocal(target Storage, tmpDir string, tmpEncoding Encoding) *DataSet {
	c := d.copyWithAssets()
	for name, a := range c.Assets {
		if a.Setup.Type != StorageSetupRemote {
			continue
		}
		enc := tmpEncoding
		a.Setup = StorageSetup{
			Type:        StorageSetupReplication,
			Remote:      a.Setup.Remote,
			Local:       []Storage{target},
			TmpDir:      tmpDir,
			TmpEncoding: &enc,
		}
		c.Assets[name] = a
	}
	return c
}

// PersistLocal returns a copy of d whose assets all use a local storage setup on target.
func (d *DataSet) PersistLocal(target Storage) *DataSet {
	c := d.copyWithAssets()
	for name, a := range c.Assets {
		a.Setup = StorageSetup{
			Type:  StorageSetupLocal,
			Local: []Storage{target},
		}
		c.Assets[name] = a
	}
	return c
}
