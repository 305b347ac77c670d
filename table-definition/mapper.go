package tabledefinition

import (
	"fmt"
	"sort"
	"strings"

	"github.com/relloyd/aorist/constants"
	"github.com/relloyd/aorist/universe"
)

// Mapper converts attribute types into the column types of one target engine.
type Mapper interface {
	Map(attributeType string) (string, error)
}

// dataTypeMap implements Mapper.
type dataTypeMap struct {
	target   string
	mapTypes map[string]string
}

// Map returns the column type for attributeType. Lookups ignore case.
func (o dataTypeMap) Map(attributeType string) (string, error) {
	v, ok := o.mapTypes[strings.ToLower(attributeType)]
	if !ok {
		return "", fmt.Errorf("unsupported attribute type %q for %v", attributeType, o.target)
	}
	return v, nil
}

type dataTypeLink struct {
	SourceDataType string
	TargetDataType string
}

func newDataTypeMapper(target string, types []dataTypeLink) dataTypeMap {
	dtm := dataTypeMap{target: target, mapTypes: make(map[string]string)}
	for _, row := range types { // for each data type link...
		dtm.mapTypes[strings.ToLower(row.SourceDataType)] = row.TargetDataType
	}
	return dtm
}

// kindColumnFuncs picks the column type of each target from an attribute kind.
var kindColumnFuncs = map[string]func(universe.AttributeKind) string{
	constants.SchemaTargetPresto:   func(k universe.AttributeKind) string { return k.Presto },
	constants.SchemaTargetOrc:      func(k universe.AttributeKind) string { return k.Orc },
	constants.SchemaTargetPostgres: func(k universe.AttributeKind) string { return k.Postgres },
	constants.SchemaTargetSqlite:   func(k universe.AttributeKind) string { return k.Sqlite },
	constants.SchemaTargetBigQuery: func(k universe.AttributeKind) string { return k.BigQuery },
}

// dataTypeLinks returns the mapping of every registered attribute kind for target.
func dataTypeLinks(target string, fn func(universe.AttributeKind) string) []dataTypeLink {
	names := universe.AttributeKindNames()
	retval := make([]dataTypeLink, 0, len(names))
	for _, n := range names {
		k, _ := universe.LookupAttributeKind(n)
		retval = append(retval, dataTypeLink{SourceDataType: n, TargetDataType: fn(k)})
	}
	return retval
}

// GetMapper returns the Mapper for target, one of presto, orc, postgres, sqlite or bigquery.
// The mapper reflects the attribute kinds registered at the time of the call.
func GetMapper(target string) (Mapper, error) {
	fn, ok := kindColumnFuncs[strings.ToLower(target)]
	if !ok {
		return nil, fmt.Errorf("unsupported schema target %q; choose one of: %v", target, strings.Join(Targets(), ", "))
	}
	return newDataTypeMapper(target, dataTypeLinks(target, fn)), nil
}

// Targets lists the supported schema targets.
func Targets() []string {
	retval := make([]string, 0, len(kindColumnFuncs))
	for k := range kindColumnFuncs {
		retval = append(retval, k)
	}
	sort.Strings(retval)
	return retval
}
