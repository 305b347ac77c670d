package universe

import (
	"fmt"
	"strings"
)

// Location types.
const (
	LocationGCS             = "GCSLocation"
	LocationS3              = "S3Location"
	LocationWeb             = "WebLocation"
	LocationLocalFileSystem = "LocalFileSystemLocation"
	LocationMinio           = "MinioLocation"
	LocationAlluxio         = "AlluxioLocation"
	LocationHive            = "HiveLocation"
	LocationPostgres        = "PostgresLocation"
	LocationSQLite          = "SQLiteLocation"
)

// Encoding, compression and header types.
const (
	EncodingCSV                   = "CSVEncoding"
	EncodingTSV                   = "TSVEncoding"
	EncodingORC                   = "ORCEncoding"
	EncodingJSON                  = "JSONEncoding"
	EncodingNewlineDelimitedJSON  = "NewlineDelimitedJSONEncoding"
	CompressionGzip               = "GzipCompression"
	CompressionZip                = "ZipCompression"
	HeaderCSV                     = "CSVHeader"
	HeaderUpperSnakeCaseCSV       = "UpperSnakeCaseCSVHeader"
	LayoutStaticTabular           = "StaticTabularLayout"
	LayoutDynamicTabular          = "DynamicTabularLayout"
	LayoutSingleFile              = "SingleFileLayout"
	StorageRemote                 = "RemoteStorage"
	StorageLocalFile              = "LocalFileStorage"
	StorageHiveTable              = "HiveTableStorage"
	StoragePostgres               = "PostgresStorage"
	StorageSQLite                 = "SQLiteStorage"
	StorageSetupRemote            = "RemoteStorageSetup"
	StorageSetupLocal             = "LocalStorageSetup"
	StorageSetupReplication       = "ReplicationStorageSetup"
	AssetStaticDataTable          = "StaticDataTable"
	defaultHeaderLines            = 1
	defaultDynamicGranularityName = "daily"
)

// Location says where data lives. Which fields are needed depends on Type.
type Location struct {
	Type     string    `mapstructure:"type" json:"type" mandatory:"yes" errorTxt:"location type"`
	Bucket   string    `mapstructure:"bucket" json:"bucket,omitempty"`
	Blob     string    `mapstructure:"blob" json:"blob,omitempty"`
	Key      string    `mapstructure:"key" json:"key,omitempty"`
	Address  string    `mapstructure:"address" json:"address,omitempty"`
	Path     string    `mapstructure:"path" json:"path,omitempty"`
	Name     string    `mapstructure:"name" json:"name,omitempty"`
	Database string    `mapstructure:"database" json:"database,omitempty"`
	File     string    `mapstructure:"file" json:"file,omitempty"`
	Inner    *Location `mapstructure:"inner" json:"inner,omitempty"`
}

// Validate checks that the fields required by the location type are set.
func (l Location) Validate() error {
	missing := make([]string, 0)
	need := func(field, value string) {
		if value == "" {
			missing = append(missing, field)
		}
	}
	switch l.Type {
	case LocationGCS:
		need("bucket", l.Bucket)
		need("blob", l.Blob)
	case LocationS3:
		need("bucket", l.Bucket)
		need("key", l.Key)
	case LocationWeb:
		need("address", l.Address)
	case LocationLocalFileSystem, LocationAlluxio:
		need("path", l.Path)
	case LocationMinio:
		need("name", l.Name)
	case LocationPostgres:
		need("database", l.Database)
	case LocationSQLite:
		need("file", l.File)
	case LocationHive:
		if l.Inner != nil {
			if err := l.Inner.Validate(); err != nil {
				return fmt.Errorf("hive location: %w", err)
			}
		}
	default:
		return fmt.Errorf("unknown location type %q", l.Type)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%v requires %v", l.Type, strings.Join(missing, ", "))
	}
	return nil
}

// URL renders the location as a URL that download tools understand.
func (l Location) URL() string {
	switch l.Type {
	case LocationGCS:
		return fmt.Sprintf("gs://%v/%v", l.Bucket, l.Blob)
	case LocationS3:
		return fmt.Sprintf("s3://%v/%v", l.Bucket, l.Key)
	case LocationWeb:
		return l.Address
	case LocationLocalFileSystem:
		return "file://" + l.Path
	case LocationAlluxio:
		return "alluxio://" + l.Path
	case LocationMinio:
		return "minio://" + l.Name
	case LocationPostgres:
		return "postgres:///" + l.Database
	case LocationSQLite:
		return "sqlite://" + l.File
	case LocationHive:
		if l.Inner != nil {
			return l.Inner.URL()
		}
	}
	return ""
}

type Compression struct {
	Type string `mapstructure:"type" json:"type"`
}

type Header struct {
	Type     string `mapstructure:"type" json:"type"`
	NumLines int    `mapstructure:"numLines" json:"numLines,omitempty"`
}

// Lines returns the number of header lines, defaulting to one.
func (h Header) Lines() int {
	if h.NumLines <= 0 {
		return defaultHeaderLines
	}
	return h.NumLines
}

// Encoding says how data is serialised.
type Encoding struct {
	Type        string       `mapstructure:"type" json:"type" mandatory:"yes" errorTxt:"encoding type"`
	Compression *Compression `mapstructure:"compression" json:"compression,omitempty"`
	Header      *Header      `mapstructure:"header" json:"header,omitempty"`
}

// Validate checks the encoding, compression and header types.
func (e Encoding) Validate() error {
	switch e.Type {
	case EncodingCSV, EncodingTSV, EncodingORC, EncodingJSON, EncodingNewlineDelimitedJSON:
	default:
		return fmt.Errorf("unknown encoding type %q", e.Type)
	}
	if e.Compression != nil {
		switch e.Compression.Type {
		case CompressionGzip, CompressionZip:
		default:
			return fmt.Errorf("unknown compression type %q", e.Compression.Type)
		}
	}
	if e.Header != nil {
		switch e.Header.Type {
		case HeaderCSV, HeaderUpperSnakeCaseCSV:
		default:
			return fmt.Errorf("unknown header type %q", e.Header.Type)
		}
	}
	return nil
}

// Extension returns the file extension used for files in this encoding.
func (e Encoding) Extension() string {
	switch e.Type {
	case EncodingCSV:
		return "csv"
	case EncodingTSV:
		return "tsv"
	case EncodingORC:
		return "orc"
	default:
		return "json"
	}
}

// Delimiter returns the field separator of delimited text encodings.
func (e Encoding) Delimiter() string {
	if e.Type == EncodingTSV {
		return "\t"
	}
	return ","
}

type Layout struct {
	Type        string `mapstructure:"type" json:"type"`
	Granularity string `mapstructure:"granularity" json:"granularity,omitempty"`
}

// GranularityOrDefault returns the partition granularity of dynamic layouts.
func (l Layout) GranularityOrDefault() string {
	if l.Granularity == "" {
		return defaultDynamicGranularityName
	}
	return l.Granularity
}

// Storage combines a location, an encoding and a layout.
type Storage struct {
	Type     string    `mapstructure:"type" json:"type" mandatory:"yes" errorTxt:"storage type"`
	Location Location  `mapstructure:"location" json:"location"`
	Encoding *Encoding `mapstructure:"encoding" json:"encoding,omitempty"`
	Layout   *Layout   `mapstructure:"layout" json:"layout,omitempty"`
}

// Validate checks the storage type and its parts.
func (s Storage) Validate() error {
	switch s.Type {
	case StorageRemote, StorageLocalFile, StorageHiveTable, StoragePostgres, StorageSQLite:
	default:
		return fmt.Errorf("unknown storage type %q", s.Type)
	}
	if err := s.Location.Validate(); err != nil {
		return fmt.Errorf("%v: %w", s.Type, err)
	}
	if s.Encoding != nil {
		if err := s.Encoding.Validate(); err != nil {
			return fmt.Errorf("%v: %w", s.Type, err)
		}
	} else if s.Type == StorageRemote || s.Type == StorageLocalFile || s.Type == StorageHiveTable {
		return fmt.Errorf("%v requires an encoding", s.Type)
	}
	if s.Layout != nil {
		switch s.Layout.Type {
		case LayoutStaticTabular, LayoutSingleFile, LayoutDynamicTabular:
		default:
			return fmt.Errorf("unknown layout type %q", s.Layout.Type)
		}
	}
	return nil
}

// IsTable reports whether the storage is a queryable table rather than files.
func (s Storage) IsTable() bool {
	return s.Type == StorageHiveTable || s.Type == StoragePostgres || s.Type == StorageSQLite
}

// StorageSetup says where an asset comes from and where copies of it go.
type StorageSetup struct {
	Type        string    `mapstructure:"type" json:"type" mandatory:"yes" errorTxt:"storage setup type"`
	Remote      *Storage  `mapstructure:"remote" json:"remote,omitempty"`
	Local       []Storage `mapstructure:"local" json:"local,omitempty"`
	TmpDir      string    `mapstructure:"tmpDir" json:"tmpDir,omitempty"`
	TmpEncoding *Encoding `mapstructure:"tmpEncoding" json:"tmpEncoding,omitempty"`
}

// Validate checks that the setup carries the storages its type needs.
func (s StorageSetup) Validate() error {
	switch s.Type {
	case StorageSetupRemote:
		if s.Remote == nil {
			return fmt.Errorf("%v requires remote storage", s.Type)
		}
	case StorageSetupLocal:
		if len(s.Local) == 0 {
			return fmt.Errorf("%v requires local storage", s.Type)
		}
	case StorageSetupReplication:
		if s.Remote == nil || len(s.Local) == 0 {
			return fmt.Errorf("%v requires remote and local storage", s.Type)
		}
		if s.TmpDir == "" || s.TmpEncoding == nil {
			return fmt.Errorf("%v requires tmpDir and tmpEncoding", s.Type)
		}
		if err := s.TmpEncoding.Validate(); err != nil {
			return fmt.Errorf("%v tmpEncoding: %w", s.Type, err)
		}
	default:
		return fmt.Errorf("unknown storage setup type %q", s.Type)
	}
	if s.Remote != nil {
		if err := s.Remote.Validate(); err != nil {
			return err
		}
	}
	for _, l := range s.Local {
		if err := l.Validate(); err != nil {
			return err
		}
	}
	return nil
}
