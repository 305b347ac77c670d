package constants

// General

const (
	AppName                      = "aorist"
	EnvVarPrefix                 = "AORIST" // prefix for environment variables that override endpoint secrets
	ConfigDirName                = ".aorist"
	EnvVarConfigKey              = EnvVarPrefix + "_CONFIG_KEY"
	StatsCaptureFrequencySeconds = 5
	TimeFormatYearSeconds        = "20060102T150405" // used for human readable file names
	EmojiBang                    = "\U0001F4A5"
	ManifestVersionDefault       = "1.0"
	ManifestVersionConstraint    = ">= 1.0, < 2.0"
	DefaultTmpDir                = "/tmp/aorist"
	DefaultWorkerCount           = 4
)

// Output modes supported by the code generator.

const (
	OutputModePython  = "python"
	OutputModeAirflow = "airflow"
	OutputModePrefect = "prefect"
	OutputModeBash    = "bash"
)

// Dialects that programs can be written in.

const (
	DialectPython = "python"
	DialectR      = "r"
	DialectBash   = "bash"
	DialectPresto = "presto"
)

// Schema targets.

const (
	SchemaTargetPresto   = "presto"
	SchemaTargetOrc      = "orc"
	SchemaTargetPostgres = "postgres"
	SchemaTargetSqlite   = "sqlite"
	SchemaTargetBigQuery = "bigquery"
)

// Flow task types.

const (
	TaskTypeShell    = "shell"
	TaskTypeConstant = "constant"
)
