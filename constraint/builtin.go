package constraint

import (
	"github.com/relloyd/aorist/universe"
)

// Builtin constraint names.
const (
	DownloadDataFromRemote   = "DownloadDataFromRemote"
	DecompressDownloadedData = "DecompressDownloadedData"
	RemoveFileHeader         = "RemoveFileHeader"
	ConvertToLocalEncoding   = "ConvertToLocalEncoding"
	UploadDataToLocal        = "UploadDataToLocal"
	CreateTableSchema        = "CreateTableSchema"
	ReplicatedData           = "ReplicatedData"
	ReplicatedSchema         = "ReplicatedSchema"
	IsConsistent             = "IsConsistent"
	IsAudited                = "IsAudited"
	DataSetReplicated        = "DataSetReplicated"
	Replicated               = "Replicated"
	GiteaUserCreated         = "GiteaUserCreated"
	RangerUserCreated        = "RangerUserCreated"
	UsersCreated             = "UsersCreated"
)

// Builtin returns a registry holding the replication and user provisioning constraints.
func Builtin() *Registry {
	r := NewRegistry()
	for _, d := range builtinDefinitions() {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
	return r
}

func builtinDefinitions() []Definition {
	return []Definition{
		{
			Name:            DownloadDataFromRemote,
			RootType:        universe.StorageSetupReplication,
			Title:           "Downloading data from remote storage",
			Body:            "Data for each replicated asset is fetched from its remote location into a temporary directory.",
			RequiresProgram: true,
			Active:          replicationActive(nil),
			Params: stageParams(DownloadDataFromRemote, func(r *replication) string {
				return r.downloadFile()
			}),
		},
		{
			Name:            DecompressDownloadedData,
			RootType:        universe.StorageSetupReplication,
			Requires:        []string{DownloadDataFromRemote},
			Title:           "Decompressing downloaded data",
			Body:            "Compressed downloads are expanded before any further processing.",
			RequiresProgram: true,
			Active: replicationActive(func(r *replication) bool {
				return r.compression() != ""
			}),
			Params: stageParams(DecompressDownloadedData, func(r *replication) string {
				return r.decompressedFile()
			}),
		},
		{
			Name:            RemoveFileHeader,
			RootType:        universe.StorageSetupReplication,
			Requires:        []string{DecompressDownloadedData, DownloadDataFromRemote},
			Title:           "Removing file headers",
			Body:            "Header lines are stripped so that only records remain.",
			RequiresProgram: true,
			Active: replicationActive(func(r *replication) bool {
				return r.headerLines() > 0
			}),
			Params: stageParams(RemoveFileHeader, func(r *replication) string {
				return r.headerlessFile()
			}),
		},
		{
			Name:            ConvertToLocalEncoding,
			RootType:        universe.StorageSetupReplication,
			Requires:        []string{RemoveFileHeader, DecompressDownloadedData, DownloadDataFromRemote},
			Title:           "Converting to the local encoding",
			Body:            "Records are re-encoded into the temporary encoding used for local storage.",
			RequiresProgram: true,
			Active: replicationActive(func(r *replication) bool {
				return r.needsConversion()
			}),
			Params: stageParams(ConvertToLocalEncoding, func(r *replication) string {
				return r.convertedFile()
			}),
		},
		{
			Name:     CreateTableSchema,
			RootType: universe.AssetStaticDataTable,
			Title:    "Creating table schemas",
			Body: "Tables are created in local storage with one column per attribute of the datum template. " +
				"Attribute comments become column comments where the engine supports them.",
			RequiresProgram: true,
			Active:          hasTableStorage,
			Params:          tableParams,
		},
		{
			Name:     UploadDataToLocal,
			RootType: universe.StorageSetupReplication,
			Requires: []string{
				ConvertToLocalEncoding, RemoveFileHeader, DecompressDownloadedData, DownloadDataFromRemote, CreateTableSchema,
			},
			Title:           "Uploading data to local storage",
			Body:            "The prepared file is copied into every local storage of the asset.",
			RequiresProgram: true,
			Active:          replicationActive(nil),
			Params:          stageParams(UploadDataToLocal, nil),
		},
		{
			Name:     ReplicatedData,
			RootType: universe.AssetStaticDataTable,
			Requires: []string{UploadDataToLocal},
			Title:    "Data has been replicated",
			Active:   isReplicatedAsset,
		},
		{
			Name:     ReplicatedSchema,
			RootType: universe.AssetStaticDataTable,
			Requires: []string{CreateTableSchema},
			Title:    "Schema has been replicated",
			Active:   isReplicatedAsset,
		},
		{
			Name:     IsConsistent,
			RootType: universe.AssetStaticDataTable,
			Requires: []string{ReplicatedData, ReplicatedSchema},
			Title:    "Replicated data is consistent with its schema",
			Active:   isReplicatedAsset,
		},
		{
			Name:     IsAudited,
			RootType: universe.AssetStaticDataTable,
			Requires: []string{IsConsistent},
			Title:    "Replicated data has been audited",
			Active:   isReplicatedAsset,
		},
		{
			Name:     DataSetReplicated,
			RootType: universe.ConceptDataSet,
			Requires: []string{IsAudited},
			Title:    "Dataset has been replicated",
		},
		{
			Name:     Replicated,
			RootType: universe.ConceptUniverse,
			Requires: []string{DataSetReplicated},
			Title:    "All datasets have been replicated",
		},
		{
			Name:            GiteaUserCreated,
			RootType:        universe.ConceptUser,
			Title:           "Creating Gitea users",
			Body:            "Every user gets a Gitea account. The admin token is read from AORIST_GITEA_TOKEN.",
			RequiresProgram: true,
			Active: func(n *universe.Node, ctx *Context) bool {
				return ctx.Universe.Endpoints.Gitea != nil
			},
			Params: giteaParams,
		},
		{
			Name:     RangerUserCreated,
			RootType: universe.ConceptUser,
			Title:    "Creating Ranger users",
			Body: "Every user gets a Ranger account; users holding ranger/admin become system admins. " +
				"Credentials are read from AORIST_RANGER_USER and AORIST_RANGER_PASSWORD.",
			RequiresProgram: true,
			Active: func(n *universe.Node, ctx *Context) bool {
				return ctx.Universe.Endpoints.Ranger != nil
			},
			Params: rangerParams,
		},
		{
			Name:     UsersCreated,
			RootType: universe.ConceptUniverse,
			Requires: []string{GiteaUserCreated, RangerUserCreated},
			Title:    "All users have been created",
		},
	}
}
