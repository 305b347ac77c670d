package universe

import (
	"fmt"
	"sort"
)

// AttributeKind describes one registered attribute type and its column type per engine.
type AttributeKind struct {
	Name     string
	Nullable bool
	Key      bool
	Presto   string
	Orc      string
	Postgres string
	Sqlite   string
	BigQuery string
}

var attributeKinds = map[string]AttributeKind{}

func registerKind(k AttributeKind) {
	attributeKinds[k.Name] = k
}

// RegisterAttributeKind adds a custom attribute kind. Names must be unique.
func RegisterAttributeKind(k AttributeKind) error {
	if k.Name == "" {
		return fmt.Errorf("attribute kind needs a name")
	}
	if _, ok := attributeKinds[k.Name]; ok {
		return fmt.Errorf("attribute kind %q is already registered", k.Name)
	}
	registerKind(k)
	return nil
}

func init() {
	for _, k := range []AttributeKind{
		{Name: "KeyStringIdentifier", Key: true, Presto: "VARCHAR", Orc: "STRING", Postgres: "VARCHAR", Sqlite: "TEXT", BigQuery: "STRING"},
		{Name: "NullableStringIdentifier", Nullable: true, Presto: "VARCHAR", Orc: "STRING", Postgres: "VARCHAR", Sqlite: "TEXT", BigQuery: "STRING"},
		{Name: "StringIdentifier", Presto: "VARCHAR", Orc: "STRING", Postgres: "VARCHAR", Sqlite: "TEXT", BigQuery: "STRING"},
		{Name: "NullableString", Nullable: true, Presto: "VARCHAR", Orc: "STRING", Postgres: "VARCHAR", Sqlite: "TEXT", BigQuery: "STRING"},
		{Name: "FreeText", Nullable: true, Presto: "VARCHAR", Orc: "STRING", Postgres: "TEXT", Sqlite: "TEXT", BigQuery: "STRING"},
		{Name: "NullablePOSIXTimestamp", Nullable: true, Presto: "BIGINT", Orc: "BIGINT", Postgres: "BIGINT", Sqlite: "INTEGER", BigQuery: "INT64"},
		{Name: "POSIXTimestamp", Presto: "BIGINT", Orc: "BIGINT", Postgres: "BIGINT", Sqlite: "INTEGER", BigQuery: "INT64"},
		{Name: "NullableInt64", Nullable: true, Presto: "BIGINT", Orc: "BIGINT", Postgres: "BIGINT", Sqlite: "INTEGER", BigQuery: "INT64"},
		{Name: "Int64", Presto: "BIGINT", Orc: "BIGINT", Postgres: "BIGINT", Sqlite: "INTEGER", BigQuery: "INT64"},
		{Name: "Count", Presto: "BIGINT", Orc: "BIGINT", Postgres: "BIGINT", Sqlite: "INTEGER", BigQuery: "INT64"},
		{Name: "NullableFloat", Nullable: true, Presto: "REAL", Orc: "FLOAT", Postgres: "REAL", Sqlite: "REAL", BigQuery: "FLOAT64"},
		{Name: "FloatLatitude", Presto: "REAL", Orc: "FLOAT", Postgres: "REAL", Sqlite: "REAL", BigQuery: "FLOAT64"},
		{Name: "FloatLongitude", Presto: "REAL", Orc: "FLOAT", Postgres: "REAL", Sqlite: "REAL", BigQuery: "FLOAT64"},
		{Name: "Boolean", Presto: "BOOLEAN", Orc: "BOOLEAN", Postgres: "BOOLEAN", Sqlite: "INTEGER", BigQuery: "BOOL"},
		{Name: "URI", Nullable: true, Presto: "VARCHAR", Orc: "STRING", Postgres: "VARCHAR", Sqlite: "TEXT", BigQuery: "STRING"},
		{Name: "IP", Nullable: true, Presto: "VARCHAR", Orc: "STRING", Postgres: "INET", Sqlite: "TEXT", BigQuery: "STRING"},
		{Name: "Date", Nullable: true, Presto: "DATE", Orc: "DATE", Postgres: "DATE", Sqlite: "TEXT", BigQuery: "DATE"},
	} {
		registerKind(k)
	}
}

// LookupAttributeKind returns the registered kind called name.
func LookupAttributeKind(name string) (AttributeKind, error) {
	k, ok := attributeKinds[name]
	if !ok {
		return AttributeKind{}, fmt.Errorf("unknown attribute type %q", name)
	}
	return k, nil
}

// AttributeKindNames returns the names of all registered kinds, sorted.
func AttributeKindNames() []string {
	retval := make([]string, 0, len(attributeKinds))
	for k := range attributeKinds {
		retval = append(retval, k)
	}
	sort.Strings(retval)
	return retval
}

// Attribute is one column of a datum template.
type Attribute struct {
	Type    string `mapstructure:"type" json:"type" mandatory:"yes" errorTxt:"attribute type"`
	Name    string `mapstructure:"name" json:"name" mandatory:"yes" errorTxt:"attribute name"`
	Comment string `mapstructure:"comment" json:"comment,omitempty"`
}

// Kind returns the registered kind of a.
func (a Attribute) Kind() (AttributeKind, error) {
	k, err := LookupAttributeKind(a.Type)
	if err != nil {
		return k, fmt.Errorf("attribute %q: %w", a.Name, err)
	}
	return k, nil
}

// Datum template types.
const (
	TemplateKeyedStruct     = "KeyedStruct"
	TemplateRowStruct       = "RowStruct"
	TemplateIdentifierTuple = "IdentifierTuple"
)

// DatumTemplate describes the shape of the records held by an asset.
type DatumTemplate struct {
	Type       string      `mapstructure:"type" json:"type" mandatory:"yes" errorTxt:"datum template type"`
	Name       string      `mapstructure:"name" json:"name" mandatory:"yes" errorTxt:"datum template name"`
	Attributes []Attribute `mapstructure:"attributes" json:"attributes" mandatory:"yes" errorTxt:"datum template attributes"`
}

// Attribute returns the attribute called name.
func (t DatumTemplate) Attribute(name string) (Attribute, bool) {
	for _, a := range t.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// Validate checks the template type, attribute kinds and that names are unique.
func (t DatumTemplate) Validate() error {
	switch t.Type {
	case TemplateKeyedStruct, TemplateRowStruct, TemplateIdentifierTuple:
	default:
		return fmt.Errorf("datum template %q has unknown type %q", t.Name, t.Type)
	}
	seen := make(map[string]struct{}, len(t.Attributes))
	for _, a := range t.Attributes {
		if _, err := a.Kind(); err != nil {
			return fmt.Errorf("datum template %q: %w", t.Name, err)
		}
		if _, ok := seen[a.Name]; ok {
			return fmt.Errorf("datum template %q has duplicate attribute %q", t.Name, a.Name)
		}
		seen[a.Name] = struct{}{}
	}
	return nil
}
