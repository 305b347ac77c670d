package universe

func testWineDataSet() *DataSet {
	d := &DataSet{
		Name:        "wine",
		Description: "Wine quality measurements",
		SourcePath:  "https://archive.ics.uci.edu/ml/datasets/wine",
	}
	_ = d.AddTemplate(DatumTemplate{
		Type: TemplateRowStruct,
		Name: "wine_datum",
		Attributes: []Attribute{
			{Type: "FloatLatitude", Name: "alcohol", Comment: "percent by volume"},
			{Type: "NullableFloat", Name: "malic_acid"},
			{Type: "Int64", Name: "class", Comment: "cultivar's id"},
		},
	})
	_ = d.AddAsset(Asset{
		Type:   AssetStaticDataTable,
		Name:   "wine_table",
		Schema: Schema{DatumTemplateName: "wine_datum"},
		Setup: StorageSetup{
			Type: StorageSetupRemote,
			Remote: &Storage{
				Type:     StorageRemote,
				Location: Location{Type: LocationWeb, Address: "https://example.org/wine.data"},
				Encoding: &Encoding{Type: EncodingCSV, Header: &Header{Type: HeaderCSV}},
			},
		},
	})
	_ = d.AddAsset(Asset{
		Name:   "alcohol_only",
		Schema: Schema{DatumTemplateName: "wine_datum", Attributes: []string{"alcohol"}},
		Setup: StorageSetup{
			Type: StorageSetupLocal,
			Local: []Storage{{
				Type:     StorageSQLite,
				Location: Location{Type: LocationSQLite, File: "/tmp/wine.db"},
			}},
		},
	})
	return d
}

func testHiveStorage() Storage {
	return Storage{
		Type:     StorageHiveTable,
		Location: Location{Type: LocationHive, Inner: &Location{Type: LocationAlluxio, Path: "data"}},
		Encoding: &Encoding{Type: EncodingORC},
	}
}

func testUniverse() *Universe {
	return &Universe{
		Name: "my_cluster",
		Users: []User{
			{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.org", UnixName: "ada",
				Roles: []Role{{Type: RoleGlobalPermissionsAdmin}}},
			{FirstName: "Alan", LastName: "Turing", Email: "alan@example.org", UnixName: "alan"},
		},
		Groups: []UserGroup{
			{Name: "analysts", Users: []string{"ada", "alan"}, Labels: map[string]string{"team": "data"}},
		},
		RoleBindings: []RoleBinding{
			{Name: "alan-admin", UserName: "alan", Role: Role{Type: RoleGlobalPermissionsAdmin}},
		},
		DataSets: []*DataSet{
			testWineDataSet().ReplicateToLocal(testHiveStorage(), "/tmp/wine", Encoding{Type: EncodingCSV}),
		},
		Endpoints: EndpointConfig{
			Presto: &PrestoConfig{Server: "presto-coordinator"},
			Gitea:  &GiteaConfig{Token: "secret"},
		},
	}
}
