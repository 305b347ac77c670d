package tabledefinition

import (
	"fmt"
	"sort"
	"strings"

	"github.com/relloyd/aorist/constants"
	"github.com/relloyd/aorist/helper"
	"github.com/relloyd/aorist/universe"
)

const (
	columnIndent  = "    "
	commentIndent = "     "
)

// PrestoSchema renders one column per line with names padded to the longest name plus one space.
// Comments go on the following line as COMMENT '<comment>'.
func PrestoSchema(attrs []universe.Attribute) (string, error) {
	mapper, err := GetMapper(constants.SchemaTargetPresto)
	if err != nil {
		return "", err
	}
	maxLen := 0
	for _, a := range attrs {
		if len(a.Name) > maxLen {
			maxLen = len(a.Name)
		}
	}
	cols := make([]string, 0, len(attrs))
	for _, a := range attrs {
		typ, err := mapper.Map(a.Type)
		if err != nil {
			return "", fmt.Errorf("column %q: %w", a.Name, err)
		}
		col := a.Name + strings.Repeat(" ", maxLen-len(a.Name)+1) + typ
		if c := strings.TrimSpace(a.Comment); c != "" {
			col = fmt.Sprintf("%v\n%vCOMMENT '%v'", col, commentIndent, helper.EscapeSingleQuotes(c))
		}
		cols = append(cols, col)
	}
	return strings.Join(cols, ",\n"), nil
}

// OrcSchema renders the attributes as name:TYPE joined by commas.
func OrcSchema(attrs []universe.Attribute) (string, error) {
	mapper, err := GetMapper(constants.SchemaTargetOrc)
	if err != nil {
		return "", err
	}
	cols := make([]string, 0, len(attrs))
	for _, a := range attrs {
		typ, err := mapper.Map(a.Type)
		if err != nil {
			return "", fmt.Errorf("column %q: %w", a.Name, err)
		}
		cols = append(cols, a.Name+":"+typ)
	}
	return strings.Join(cols, ","), nil
}

// ColumnsDDL renders "name TYPE [NOT NULL]" column definitions for target, one per line.
// Presto columns use PrestoSchema instead so comments are kept.
func ColumnsDDL(target string, attrs []universe.Attribute) (string, error) {
	if target == constants.SchemaTargetPresto {
		return PrestoSchema(attrs)
	}
	mapper, err := GetMapper(target)
	if err != nil {
		return "", err
	}
	cols := make([]string, 0, len(attrs))
	for _, a := range attrs {
		typ, err := mapper.Map(a.Type)
		if err != nil {
			return "", fmt.Errorf("column %q: %w", a.Name, err)
		}
		k, _ := universe.LookupAttributeKind(a.Type)
		notNull := ""
		if !k.Nullable { // if we should add NOT NULL...
			notNull = " NOT NULL"
		}
		cols = append(cols, fmt.Sprintf("%v %v%v", a.Name, typ, notNull))
	}
	return strings.Join(cols, ",\n"), nil
}

// CreateTable renders CREATE TABLE IF NOT EXISTS DDL for target.
// Tags are rendered as WITH (k='v', ...) in key order; nil or empty tags add nothing.
func CreateTable(target string, table string, attrs []universe.Attribute, tags map[string]string) (string, error) {
	if len(attrs) == 0 {
		return "", fmt.Errorf("no columns found to build CREATE TABLE DDL for %q", table)
	}
	cols, err := ColumnsDDL(target, attrs)
	if err != nil {
		return "", err
	}
	tagStr := ""
	if len(tags) > 0 {
		keys := make([]string, 0, len(tags))
		for k := range tags {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%v='%v'", k, helper.EscapeSingleQuotes(tags[k])))
		}
		tagStr = fmt.Sprintf(" WITH (%v)", strings.Join(pairs, ", "))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %v (\n%v\n)%v", table, helper.IndentLines(cols, columnIndent), tagStr), nil
}

// TableTags returns the table creation tags implied by storage s.
// Hive tables carry their file format; other storages carry none.
func TableTags(s universe.Storage) map[string]string {
	if s.Type != universe.StorageHiveTable || s.Encoding == nil {
		return nil
	}
	switch s.Encoding.Type {
	case universe.EncodingORC:
		return map[string]string{"format": "ORC"}
	case universe.EncodingCSV, universe.EncodingTSV:
		return map[string]string{"format": "TEXTFILE"}
	case universe.EncodingJSON, universe.EncodingNewlineDelimitedJSON:
		return map[string]string{"format": "JSON"}
	}
	return nil
}

// TargetForStorage returns the schema target used to create tables on s.
func TargetForStorage(s universe.Storage) (string, error) {
	switch s.Type {
	case universe.StorageHiveTable:
		return constants.SchemaTargetPresto, nil
	case universe.StoragePostgres:
		return constants.SchemaTargetPostgres, nil
	case universe.StorageSQLite:
		return constants.SchemaTargetSqlite, nil
	}
	return "", fmt.Errorf("storage type %q does not hold tables", s.Type)
}

// NullableKeyViolations returns the names of key attributes whose kind is nullable.
func NullableKeyViolations(attrs []universe.Attribute) []string {
	retval := make([]string, 0)
	for _, a := range attrs {
		k, err := universe.LookupAttributeKind(a.Type)
		if err != nil {
			continue
		}
		if k.Key && k.Nullable {
			retval = append(retval, a.Name)
		}
	}
	return retval
}
