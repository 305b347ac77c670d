package dialect

import (
	"fmt"
	"strings"

	"github.com/relloyd/aorist/constants"
	"github.com/relloyd/aorist/helper"
)

// Kinds lists the known dialects.
var Kinds = []string{constants.DialectPython, constants.DialectR, constants.DialectBash, constants.DialectPresto}

// Dialect is a language that programs can be written in.
// PipRequirements is only meaningful for python.
type Dialect struct {
	Kind            string   `json:"kind"`
	PipRequirements []string `json:"pipRequirements,omitempty"`
}

func (d Dialect) String() string {
	if len(d.PipRequirements) == 0 {
		return d.Kind
	}
	return d.Kind + ":" + strings.Join(d.PipRequirements, ";")
}

// Preferences is an ordered list of dialects, most preferred first.
type Preferences []Dialect

// ParsePreferences parses "r,python:pandas;numpy,bash,presto".
// The order is kept. Empty entries, unknown dialects and duplicates are errors.
func ParsePreferences(s string) (Preferences, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("no dialects supplied; choose from: %v", strings.Join(Kinds, ", "))
	}
	o, err := helper.TokensToOrderedMap(strings.ToLower(s))
	if err != nil {
		return nil, err
	}
	if o.Len() != len(strings.Split(s, ",")) {
		return nil, fmt.Errorf("duplicate dialect in preferences %q", s)
	}
	retval := make(Preferences, 0, o.Len())
	iter := o.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		kind := kv.Key.(string)
		if !helper.StringSliceContains(Kinds, kind) {
			return nil, fmt.Errorf("unknown dialect %q; choose from: %v", kind, strings.Join(Kinds, ", "))
		}
		d := Dialect{Kind: kind}
		for _, req := range strings.Split(kv.Value.(string), ";") {
			if req = strings.TrimSpace(req); req != "" {
				d.PipRequirements = append(d.PipRequirements, req)
			}
		}
		if len(d.PipRequirements) > 0 && kind != constants.DialectPython {
			return nil, fmt.Errorf("pip requirements are only allowed for python, not %q", kind)
		}
		retval = append(retval, d)
	}
	return retval, nil
}

// Kinds returns the dialect kinds in preference order.
func (p Preferences) Kinds() []string {
	retval := make([]string, 0, len(p))
	for _, d := range p {
		retval = append(retval, d.Kind)
	}
	return retval
}

func (p Preferences) String() string {
	parts := make([]string, 0, len(p))
	for _, d := range p {
		parts = append(parts, d.String())
	}
	return strings.Join(parts, ",")
}

// Resolve returns the first preferred dialect that is also available.
func Resolve(prefs Preferences, available []string) (Dialect, error) {
	for _, d := range prefs {
		if helper.StringSliceContains(available, d.Kind) {
			return d, nil
		}
	}
	return Dialect{}, fmt.Errorf("none of the preferred dialects [%v] is available; available dialects are [%v]",
		strings.Join(prefs.Kinds(), ", "), strings.Join(available, ", "))
}
