package universe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeUUIDsIsDeterministic(t *testing.T) {
	a, err := testUniverse().ComputeUUIDs()
	require.NoError(t, err)
	b, err := testUniverse().ComputeUUIDs()
	require.NoError(t, err)
	assert.Equal(t, a.UUID, b.UUID)
	assert.NotEqual(t, a.UUID.String(), "00000000-0000-0000-0000-000000000000")

	// Every concept has a UUID.
	_ = Walk(a, func(n *Node) error {
		assert.NotEqual(t, [16]byte{}, [16]byte(n.UUID), n.Type)
		return nil
	})

	// A change deep in the tree changes the root.
	u := testUniverse()
	d, _ := u.DataSet("wine")
	d.DatumTemplates[0].Attributes[0].Comment = "changed"
	c, err := u.ComputeUUIDs()
	require.NoError(t, err)
	assert.NotEqual(t, a.UUID, c.UUID)
}

func TestComputeUUIDsIgnoresSecrets(t *testing.T) {
	a, _ := testUniverse().ComputeUUIDs()
	u := testUniverse()
	u.Endpoints.Gitea.Token = "another"
	b, _ := u.ComputeUUIDs()
	assert.Equal(t, a.UUID, b.UUID)
}

func TestTreeShapeAndAncestry(t *testing.T) {
	root, err := testUniverse().Tree()
	require.NoError(t, err)
	assert.Equal(t, ConceptUniverse, root.Type)

	tables := Find(root, AssetStaticDataTable)
	require.Len(t, tables, 2)
	// Assets are visited in name order.
	assert.Equal(t, "alcohol_only", tables[0].Name)
	assert.Equal(t, "wine_table", tables[1].Name)

	setups := Find(root, StorageSetupReplication)
	require.Len(t, setups, 1)
	s := setups[0]
	types := make([]string, 0)
	for _, a := range s.Ancestors() {
		types = append(types, a.Type)
	}
	assert.Equal(t, []string{ConceptUniverse, ConceptDataSet, AssetStaticDataTable}, types)
	assert.Equal(t, "my_cluster/wine/wine_table", s.Path())
	assert.Equal(t, "wine", s.NearestAncestor(ConceptDataSet).Name)
	assert.Nil(t, s.NearestAncestor(ConceptUser))

	// Remote and local storages plus the tmp encoding hang off the setup.
	childTypes := make([]string, 0)
	for _, c := range s.Children {
		childTypes = append(childTypes, c.Type)
	}
	assert.Equal(t, []string{StorageRemote, StorageHiveTable, EncodingCSV}, childTypes)
	assert.Contains(t, tables[1].Descendants(), s)
}

func TestWalkSkipChildren(t *testing.T) {
	root, _ := testUniverse().Tree()
	visited := 0
	err := Walk(root, func(n *Node) error {
		visited++
		if n.Type == ConceptDataSet {
			return ErrSkipChildren
		}
		return nil
	})
	require.NoError(t, err)
	// universe, 2 users, 1 group, 1 binding, endpoints, 1 dataset
	assert.Equal(t, 7, visited)
}
