package codegen

import (
	"github.com/relloyd/aorist/universe"
)

func testUniverse() *universe.Universe {
	d := &universe.DataSet{Name: "wine"}
	_ = d.AddTemplate(universe.DatumTemplate{
		Type: universe.TemplateRowStruct,
		Name: "wine_datum",
		Attributes: []universe.Attribute{
			{Type: "FloatLatitude", Name: "alcohol", Comment: "percent by volume"},
			{Type: "Int64", Name: "class"},
		},
	})
	_ = d.AddAsset(universe.Asset{
		Name:   "wine_table",
		Schema: universe.Schema{DatumTemplateName: "wine_datum"},
		Setup: universe.StorageSetup{
			Type: universe.StorageSetupRemote,
			Remote: &universe.Storage{
				Type:     universe.StorageRemote,
				Location: universe.Location{Type: universe.LocationWeb, Address: "https://example.org/wine.data.gz"},
				Encoding: &universe.Encoding{
					Type:        universe.EncodingCSV,
					Compression: &universe.Compression{Type: universe.CompressionGzip},
					Header:      &universe.Header{Type: universe.HeaderCSV},
				},
			},
		},
	})
	hive := universe.Storage{
		Type: universe.StorageHiveTable,
		Location: universe.Location{
			Type:  universe.LocationHive,
			Inner: &universe.Location{Type: universe.LocationAlluxio, Path: "data"},
		},
		Encoding: &universe.Encoding{Type: universe.EncodingORC},
	}
	return &universe.Universe{
		Name: "my_cluster",
		Users: []universe.User{
			{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.org", UnixName: "ada"},
		},
		DataSets: []*universe.DataSet{
			d.ReplicateToLocal(hive, "/tmp/wine", universe.Encoding{Type: universe.EncodingCSV}),
		},
		Endpoints: universe.EndpointConfig{
			Presto: &universe.PrestoConfig{Server: "presto-coordinator"},
		},
	}
}
