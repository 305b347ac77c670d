package universe

import (
	"fmt"
)

// Universe is the root of the declarative configuration: who the users are, which
// datasets exist and the endpoints used to reach the systems that hold them.
type Universe struct {
	Name         string         `mapstructure:"name" json:"name" mandatory:"yes" errorTxt:"universe name"`
	Users        []User         `mapstructure:"users" json:"users,omitempty"`
	Groups       []UserGroup    `mapstructure:"groups" json:"groups,omitempty"`
	RoleBindings []RoleBinding  `mapstructure:"roleBindings" json:"roleBindings,omitempty"`
	DataSets     []*DataSet     `mapstructure:"datasets" json:"datasets,omitempty"`
	Endpoints    EndpointConfig `mapstructure:"endpoints" json:"endpoints"`
	tree         *Node
}

// DataSet returns the dataset called name.
func (u *Universe) DataSet(name string) (*DataSet, error) {
	for _, d := range u.DataSets {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("dataset %q not found in universe %q", name, u.Name)
}

// AddAsset adds a to the dataset called datasetName.
func (u *Universe) AddAsset(a Asset, datasetName string) error {
	d, err := u.DataSet(datasetName)
	if err != nil {
		return err
	}
	u.tree = nil
	return d.AddAsset(a)
}

// AddTemplate adds t to the dataset called datasetName.
func (u *Universe) AddTemplate(t DatumTemplate, datasetName string) error {
	d, err := u.DataSet(datasetName)
	if err != nil {
		return err
	}
	u.tree = nil
	return d.AddTemplate(t)
}

// ReplaceDataSet swaps the dataset with the same name as d for d.
func (u *Universe) ReplaceDataSet(d *DataSet) error {
	for i, existing := range u.DataSets {
		if existing.Name == d.Name {
			u.DataSets[i] = d
			u.tree = nil
			return nil
		}
	}
	return fmt.Errorf("dataset %q not found in universe %q", d.Name, u.Name)
}

// ComputeUUIDs builds the concept tree of u and assigns a UUID to every concept in it.
// The tree is cached until u is changed through its methods.
func (u *Universe) ComputeUUIDs() (*Node, error) {
	t, err := NewTree(u)
	if err != nil {
		return nil, err
	}
	t.ComputeUUIDs()
	u.tree = t
	return t, nil
}

// Tree returns the concept tree with UUIDs computed, building it when required.
func (u *Universe) Tree() (*Node, error) {
	if u.tree != nil {
		return u.tree, nil
	}
	return u.ComputeUUIDs()
}
