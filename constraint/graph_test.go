package constraint

import (
	"testing"

	"github.com/relloyd/aorist/universe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReplicationClosure(t *testing.T) {
	g, err := Build(testUniverse(), Builtin(), []string{Replicated})
	require.NoError(t, err)
	assert.Equal(t, []string{
		DownloadDataFromRemote, DecompressDownloadedData, RemoveFileHeader, ConvertToLocalEncoding,
		CreateTableSchema, UploadDataToLocal, ReplicatedData, ReplicatedSchema,
		IsConsistent, IsAudited, DataSetReplicated, Replicated,
	}, g.Names())
	// Source and temporary encodings match so there is nothing to convert.
	assert.Empty(t, g.States(ConvertToLocalEncoding))
	assert.Equal(t, 11, g.Len())

	upload := g.States(UploadDataToLocal)
	require.Len(t, upload, 1)
	deps := make([]string, 0)
	for _, d := range upload[0].Dependencies {
		deps = append(deps, d.Name())
	}
	// The schema is found on the asset above the storage setup.
	assert.Equal(t, []string{RemoveFileHeader, DecompressDownloadedData, DownloadDataFromRemote, CreateTableSchema}, deps)

	top := g.States(Replicated)
	require.Len(t, top, 1)
	assert.Equal(t, universe.ConceptUniverse, top[0].Node.Type)
	require.Len(t, top[0].Dependencies, 1)
	assert.Equal(t, DataSetReplicated, top[0].Dependencies[0].Name())
}

func TestBuildStageParams(t *testing.T) {
	g, err := Build(testUniverse(), Builtin(), []string{UploadDataToLocal})
	require.NoError(t, err)
	assert.NotContains(t, g.Names(), Replicated)

	p := g.States(RemoveFileHeader)[0].Params
	assert.Equal(t, "/tmp/wine/wine_table.decompressed", p["inputFile"])
	assert.Equal(t, "/tmp/wine/wine_table.noheader", p["outputFile"])
	assert.Equal(t, 1, p["headerLines"])

	p = g.States(UploadDataToLocal)[0].Params
	assert.Equal(t, "/tmp/wine/wine_table.noheader", p["inputFile"])
	assert.Equal(t, true, p["filesOnly"])
	assert.Equal(t, "wine_table.csv", p["fileName"])
}

func TestBuildUsersSkipsMissingEndpoints(t *testing.T) {
	g, err := Build(testUniverse(), Builtin(), []string{UsersCreated})
	require.NoError(t, err)
	// Neither Gitea nor Ranger is configured.
	assert.Empty(t, g.States(GiteaUserCreated))
	assert.Empty(t, g.States(RangerUserCreated))
	require.Len(t, g.States(UsersCreated), 1)
	assert.Empty(t, g.States(UsersCreated)[0].Dependencies)
}

func TestBuildErrors(t *testing.T) {
	u := testUniverse()
	_, err := Build(u, Builtin(), nil)
	assert.Error(t, err)

	_, err = Build(u, Builtin(), []string{"Nonsense"})
	assert.Error(t, err)

	r := NewRegistry()
	require.NoError(t, r.Register(Definition{Name: "A", RootType: universe.ConceptUniverse, Requires: []string{"B"}}))
	require.NoError(t, r.Register(Definition{Name: "B", RootType: universe.ConceptUniverse, Requires: []string{"A"}}))
	_, err = Build(u, r, []string{"A"})
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "cycle")
	}

	r = NewRegistry()
	require.NoError(t, r.Register(Definition{Name: "A", RootType: universe.ConceptUniverse, Requires: []string{"Missing"}}))
	_, err = Build(u, r, []string{"A"})
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Register(Definition{Name: "NoRoot"}))
	require.NoError(t, r.Register(Definition{Name: "Zeta", RootType: universe.ConceptUniverse}))
	require.NoError(t, r.Register(Definition{Name: "Alpha", RootType: universe.ConceptUniverse}))
	assert.Error(t, r.Register(Definition{Name: "Alpha", RootType: universe.ConceptUniverse}))
	assert.Equal(t, []string{"Zeta", "Alpha"}, r.Names())
	assert.Equal(t, []string{"Alpha", "Zeta"}, r.SortedNames())
}
