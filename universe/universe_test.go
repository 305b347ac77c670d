package universe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserPermissions(t *testing.T) {
	u := testUniverse()
	perms, err := u.UserPermissions()
	require.NoError(t, err)
	assert.Equal(t, []string{PermissionGiteaAdmin, PermissionRangerAdmin}, perms["ada"])
	assert.Equal(t, []string{PermissionGiteaAdmin, PermissionRangerAdmin}, perms["alan"])

	u.RoleBindings = append(u.RoleBindings, RoleBinding{Name: "ghost", UserName: "nobody", Role: Role{Type: RoleGlobalPermissionsAdmin}})
	_, err = u.UserPermissions()
	assert.EqualError(t, err, `role binding "ghost" refers to unknown user "nobody"`)

	u = testUniverse()
	u.Users[1].Roles = []Role{{Type: "Wizard"}}
	_, err = u.UserPermissions()
	assert.Error(t, err)
}

func TestReplicateToLocal(t *testing.T) {
	d := testWineDataSet()
	r := d.ReplicateToLocal(testHiveStorage(), "/tmp/wine", Encoding{Type: EncodingCSV})

	// The receiver is untouched.
	assert.Equal(t, StorageSetupRemote, d.Assets["wine_table"].Setup.Type)

	wine := r.Assets["wine_table"]
	assert.Equal(t, StorageSetupReplication, wine.Setup.Type)
	require.NotNil(t, wine.Setup.Remote)
	assert.Equal(t, LocationWeb, wine.Setup.Remote.Location.Type)
	assert.Equal(t, []Storage{testHiveStorage()}, wine.Setup.Local)
	assert.Equal(t, "/tmp/wine", wine.Setup.TmpDir)
	assert.Equal(t, EncodingCSV, wine.Setup.TmpEncoding.Type)

	// Non-remote assets are kept.
	assert.Equal(t, d.Assets["alcohol_only"], r.Assets["alcohol_only"])
	assert.NoError(t, r.Validate())
}

func TestPersistLocal(t *testing.T) {
	d := testWineDataSet()
	p := d.PersistLocal(testHiveStorage())
	for _, name := range p.AssetNames() {
		assert.Equal(t, StorageSetupLocal, p.Assets[name].Setup.Type)
	}
	assert.Equal(t, StorageSetupRemote, d.Assets["wine_table"].Setup.Type)
}

func TestAddAssetAndTemplate(t *testing.T) {
	u := testUniverse()
	err := u.AddAsset(Asset{Name: "x"}, "beer")
	assert.EqualError(t, err, `dataset "beer" not found in universe "my_cluster"`)
	err = u.AddAsset(Asset{Name: "wine_table"}, "wine")
	assert.Error(t, err)
	err = u.AddTemplate(DatumTemplate{Type: TemplateRowStruct, Name: "wine_datum"}, "wine")
	assert.Error(t, err)
	require.NoError(t, u.AddTemplate(DatumTemplate{Type: TemplateKeyedStruct, Name: "other"}, "wine"))
	d, err := u.DataSet("wine")
	require.NoError(t, err)
	_, ok := d.Template("other")
	assert.True(t, ok)
}

func TestTemplateForAssetError(t *testing.T) {
	d := testWineDataSet()
	_, err := d.TemplateForAsset(Asset{Name: "beer_table", Schema: Schema{DatumTemplateName: "beer_datum"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"beer_datum"`)
	assert.Contains(t, err.Error(), `"beer_table"`)
	assert.Contains(t, err.Error(), `"wine"`)
	assert.Contains(t, err.Error(), "wine_datum")
}

func TestAttributesOf(t *testing.T) {
	d := testWineDataSet()
	tmpl, _ := d.Template("wine_datum")
	attrs, err := d.Assets["alcohol_only"].AttributesOf(tmpl)
	require.NoError(t, err)
	assert.Len(t, attrs, 1)
	attrs, err = d.Assets["wine_table"].AttributesOf(tmpl)
	require.NoError(t, err)
	assert.Len(t, attrs, 3)
	_, err = Asset{Name: "bad", Schema: Schema{Attributes: []string{"colour"}}}.AttributesOf(tmpl)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, testUniverse().Validate())

	u := testUniverse()
	u.Groups[0].Users = append(u.Groups[0].Users, "grace")
	assert.EqualError(t, u.Validate(), `user group "analysts" refers to unknown user "grace"`)

	u = testUniverse()
	u.Users = append(u.Users, u.Users[0])
	assert.EqualError(t, u.Validate(), `duplicate user unixName "ada"`)

	u = testUniverse()
	u.Users[0].Email = ""
	assert.Error(t, u.Validate())

	u = testUniverse()
	d, _ := u.DataSet("wine")
	d.DatumTemplates[0].Attributes[0].Type = "Colour"
	assert.Error(t, u.Validate())

	u = testUniverse()
	d, _ = u.DataSet("wine")
	a := d.Assets["wine_table"]
	a.Setup.TmpEncoding = nil
	d.Assets["wine_table"] = a
	assert.Error(t, u.Validate())

	u = testUniverse()
	u.Endpoints.Presto.Server = ""
	assert.Error(t, u.Validate())
}

func TestLocationValidateAndURL(t *testing.T) {
	assert.Error(t, Location{Type: LocationS3, Bucket: "b"}.Validate())
	assert.Error(t, Location{Type: "FloppyLocation"}.Validate())
	assert.Equal(t, "s3://b/k", Location{Type: LocationS3, Bucket: "b", Key: "k"}.URL())
	assert.Equal(t, "gs://b/o", Location{Type: LocationGCS, Bucket: "b", Blob: "o"}.URL())
	assert.Equal(t, "alluxio://data", testHiveStorage().Location.URL())
}
