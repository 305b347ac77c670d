package config

import (
	"testing"

	"github.com/relloyd/aorist/logger"
	"github.com/relloyd/aorist/universe"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wineManifest = `
version: 1.0
type: User
spec:
  firstName: Ada
  lastName: Lovelace
  email: ada@example.org
  unixName: ada
  roles:
    - type: GlobalPermissionsAdmin
---
version: "1.2"
type: User
spec:
  firstName: Alan
  lastName: Turing
  email: alan@example.org
  unixName: alan
---
type: UserGroup
spec:
  name: analysts
  users: [ada, alan]
---
type: RoleBinding
spec:
  name: alan-admin
  userName: alan
  role:
    type: GlobalPermissionsAdmin
---
type: DataSet
spec:
  name: wine
  description: Wine quality measurements
  datumTemplates:
    - type: RowStruct
      name: wine_datum
      attributes:
        - type: FloatLatitude
          name: alcohol
          comment: percent by volume
        - type: Int64
          name: class
  assets:
    wine_table:
      type: StaticDataTable
      schema:
        datumTemplateName: wine_datum
      setup:
        type: RemoteStorageSetup
        remote:
          type: RemoteStorage
          location:
            type: WebLocation
            address: https://example.org/wine.data.gz
          encoding:
            type: CSVEncoding
            compression:
              type: GzipCompression
            header:
              type: CSVHeader
`

const wineReplication = `
type: Replication
spec:
  dataset: wine
  tmpDir: /tmp/wine
  tmpEncoding:
    type: CSVEncoding
  storage:
    type: HiveTableStorage
    location:
      type: HiveLocation
      inner:
        type: AlluxioLocation
        path: data
    encoding:
      type: ORCEncoding
---
type: EndpointConfig
spec:
  name: local
  presto:
    server: presto-coordinator
  postgresUrl: postgres://etl:pw@db.local:6432/
---
type: Universe
spec:
  name: my_cluster
  endpoints: local
`

const extraTOML = `
[[documents]]
version = "1.0"
type = "DatumTemplate"

  [documents.spec]
  dataset = "wine"
  type = "RowStruct"
  name = "wine_summary"

    [[documents.spec.attributes]]
    type = "Int64"
    name = "class"

[[documents]]
type = "Asset"

  [documents.spec]
  dataset = "wine"
  name = "wine_summary_table"

    [documents.spec.schema]
    datumTemplateName = "wine_summary"

    [documents.spec.setup]
    type = "LocalStorageSetup"

      [[documents.spec.setup.local]]
      type = "SQLiteStorage"

        [documents.spec.setup.local.location]
        type = "SQLiteLocation"
        file = "/tmp/wine.db"
`

func testLogger() logger.Logger {
	return logger.NewLogger("aorist-test", "error", false)
}

func writeManifests(t *testing.T) afero.Fs {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/manifests/a-wine.yaml", []byte(wineManifest), 0644))
	require.NoError(t, afero.WriteFile(fs, "/manifests/b-extra.toml", []byte(extraTOML), 0644))
	require.NoError(t, afero.WriteFile(fs, "/manifests/nested/c-replication.yml", []byte(wineReplication), 0644))
	require.NoError(t, afero.WriteFile(fs, "/manifests/README.md", []byte("not a manifest"), 0644))
	return fs
}

func TestLoadManifestsDirectory(t *testing.T) {
	fs := writeManifests(t)
	m, err := LoadManifests(testLogger(), fs, "/manifests")
	require.NoError(t, err)

	assert.Len(t, m.Users, 2)
	assert.Len(t, m.Groups, 1)
	assert.Len(t, m.RoleBindings, 1)
	assert.Equal(t, []string{"wine"}, m.DataSetNames())
	assert.Equal(t, []string{"my_cluster"}, m.UniverseNames())

	ds, err := m.DataSet("wine")
	require.NoError(t, err)
	assert.Len(t, ds.DatumTemplates, 2)
	a, ok := ds.Asset("wine_table")
	require.True(t, ok)
	assert.Equal(t, universe.StorageSetupReplication, a.Setup.Type, "the replication document replaces the dataset")
	assert.Equal(t, "/tmp/wine", a.Setup.TmpDir)
	s, ok := ds.Asset("wine_summary_table")
	require.True(t, ok)
	assert.Equal(t, universe.StorageSetupLocal, s.Setup.Type)
}

func TestManifestsUniverse(t *testing.T) {
	m, err := LoadManifests(testLogger(), writeManifests(t), "/manifests")
	require.NoError(t, err)
	env := map[string]string{"AORIST_PRESTO_HTTP_PORT": "8085"}
	u, err := m.Universe("", nil, func(k string) string { return env[k] })
	require.NoError(t, err)

	assert.Equal(t, "my_cluster", u.Name)
	assert.Len(t, u.Users, 2)
	assert.Len(t, u.DataSets, 1)
	require.NotNil(t, u.Endpoints.Presto)
	assert.Equal(t, 8085, u.Endpoints.Presto.HTTPPort, "environment overrides manifest values")
	assert.Equal(t, universe.DefaultPrestoUser, u.Endpoints.Presto.User, "defaults are applied")
	require.NotNil(t, u.Endpoints.Postgres)
	assert.Equal(t, "db.local", u.Endpoints.Postgres.Server)
	assert.Equal(t, 6432, u.Endpoints.Postgres.Port)
	assert.Equal(t, "pw", u.Endpoints.Postgres.Password)

	_, err = m.Universe("other", nil, nil)
	assert.Error(t, err)

	// Overrides of one call do not stick to the manifests.
	u, err = m.Universe("", nil, func(string) string { return "" })
	require.NoError(t, err)
	assert.Equal(t, universe.DefaultPrestoHTTPPort, u.Endpoints.Presto.HTTPPort)
}

func TestManifestsUniverseSelectsNames(t *testing.T) {
	docs, err := ParseDocuments([]byte(wineManifest+`
---
type: Universe
spec:
  name: small
  users: [alan]
  datasets: [wine]
  endpoints: remote
---
type: Universe
spec:
  name: pair
  users: [alan, ada]
  endpoints: remote
`), FormatYAML, "inline")
	require.NoError(t, err)
	m, err := NewManifests(docs)
	require.NoError(t, err)

	_, err = m.Universe("", nil, nil)
	assert.Error(t, err, "a name is needed when there are several universes")
	_, err = m.Universe("pair", nil, nil)
	assert.Error(t, err, "unknown endpoints without a lookup")

	lookup := StoreLookup{Store: NewFile(afero.NewMemMapFs(), "/cfg", EndpointsFileName)}
	require.NoError(t, SetEndpointConfig(lookup.Store, "remote", universe.EndpointConfig{
		Presto: &universe.PrestoConfig{Server: "presto.remote"},
	}))
	_, err = m.Universe("small", lookup, nil)
	assert.Error(t, err, "group analysts refers to ada, who is not part of the universe")

	u, err := m.Universe("pair", lookup, nil)
	require.NoError(t, err)
	require.Len(t, u.Users, 2)
	assert.Equal(t, "alan", u.Users[0].UnixName)
	assert.Len(t, u.RoleBindings, 1)
	assert.Len(t, u.Groups, 1)
	require.NotNil(t, u.Endpoints.Presto)
	assert.Equal(t, "presto.remote", u.Endpoints.Presto.Server)
	assert.Equal(t, universe.DefaultPrestoHTTPPort, u.Endpoints.Presto.HTTPPort)
}

func TestParseDocumentsErrors(t *testing.T) {
	cases := map[string]string{
		"bad version":  "version: 2.1\ntype: User\nspec: {}\n",
		"no type":      "version: 1.0\nspec: {}\n",
		"no spec":      "type: User\n",
		"spec not map": "type: User\nspec: [1, 2]\n",
		"extra key":    "type: User\nkind: x\nspec: {}\n",
		"bad yaml":     "type: [\n",
	}
	for name, in := range cases {
		_, err := ParseDocuments([]byte(in), FormatYAML, name)
		assert.Error(t, err, name)
	}
	_, err := ParseDocuments([]byte("a"), "xml", "x")
	assert.Error(t, err)
}

func TestNewManifestsErrors(t *testing.T) {
	cases := map[string]string{
		"unknown type": "type: Thing\nspec: {name: x}\n",
		"unknown field": `type: User
spec: {firstName: a, lastName: b, email: c, unixName: d, shoeSize: 9}
`,
		"missing mandatory": "type: User\nspec: {firstName: a}\n",
		"asset without dataset": `type: Asset
spec:
  dataset: nope
  name: t
  schema: {datumTemplateName: x}
  setup: {type: LocalStorageSetup}
`,
		"duplicate dataset": "type: DataSet\nspec: {name: a}\n---\ntype: DataSet\nspec: {name: a}\n",
		"bad replication mode": `type: DataSet
spec: {name: a}
---
type: Replication
spec:
  dataset: a
  mode: teleport
  storage:
    type: SQLiteStorage
    location: {type: SQLiteLocation, file: /tmp/a.db}
`,
		"replication without tmp encoding": `type: DataSet
spec: {name: a}
---
type: Replication
spec:
  dataset: a
  storage:
    type: SQLiteStorage
    location: {type: SQLiteLocation, file: /tmp/a.db}
`,
	}
	for name, in := range cases {
		docs, err := ParseDocuments([]byte(in), FormatYAML, name)
		require.NoError(t, err, name)
		_, err = NewManifests(docs)
		assert.Error(t, err, name)
	}
}

func TestReplicationAs(t *testing.T) {
	docs, err := ParseDocuments([]byte(wineManifest+`
---
type: Replication
spec:
  dataset: wine
  mode: persist
  as: wine_local
  storage:
    type: SQLiteStorage
    location: {type: SQLiteLocation, file: /tmp/wine.db}
`), FormatYAML, "inline")
	require.NoError(t, err)
	m, err := NewManifests(docs)
	require.NoError(t, err)
	assert.Equal(t, []string{"wine", "wine_local"}, m.DataSetNames())
	orig, _ := m.DataSet("wine")
	local, _ := m.DataSet("wine_local")
	assert.Equal(t, universe.StorageSetupRemote, orig.Assets["wine_table"].Setup.Type)
	assert.Equal(t, universe.StorageSetupLocal, local.Assets["wine_table"].Setup.Type)
	assert.Equal(t, "wine_local", local.Name)
}

func TestLoadManifestsErrors(t *testing.T) {
	_, err := LoadManifests(testLogger(), afero.NewMemMapFs())
	assert.Error(t, err)
	_, err = LoadManifests(testLogger(), afero.NewMemMapFs(), "/missing.yaml")
	assert.Error(t, err)
}
