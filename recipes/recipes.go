package recipes

import (
	_ "embed"
	"fmt"
	"sort"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	"github.com/relloyd/aorist/dialect"
	"github.com/relloyd/aorist/helper"
	"github.com/spf13/afero"
)

//go:embed builtin.yaml
var builtinRecipes []byte

// RecipeSet maps constraint names to the programs that can satisfy them.
type RecipeSet struct {
	Programs map[string][]Program `json:"programs"`
}

// Parse reads a YAML or JSON recipe file.
func Parse(b []byte) (*RecipeSet, error) {
	r := &RecipeSet{}
	if err := yaml.Unmarshal(b, r); err != nil {
		return nil, errors.Wrap(err, "error parsing recipes")
	}
	if r.Programs == nil {
		r.Programs = make(map[string][]Program)
	}
	for _, c := range r.Constraints() {
		for _, p := range r.Programs[c] {
			if err := p.validate(c); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

// Builtin returns the recipes that ship with aorist.
func Builtin() (*RecipeSet, error) {
	return Parse(builtinRecipes)
}

// LoadFile parses the recipe file at path.
func LoadFile(fs afero.Fs, path string) (*RecipeSet, error) {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading recipe file %v", path)
	}
	r, err := Parse(b)
	if err != nil {
		return nil, errors.Wrapf(err, "recipe file %v", path)
	}
	return r, nil
}

// Load returns the builtin recipes with the files at paths merged on top, in order.
func Load(fs afero.Fs, paths ...string) (*RecipeSet, error) {
	r, err := Builtin()
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		user, err := LoadFile(fs, p)
		if err != nil {
			return nil, err
		}
		r.Merge(user)
	}
	return r, nil
}

// Merge adds the programs of other to r. For each constraint, the programs of other
// replace the programs of r written in the same dialect.
func (r *RecipeSet) Merge(other *RecipeSet) {
	for c, programs := range other.Programs {
		replaced := make(map[string]struct{})
		for _, p := range programs {
			replaced[p.Dialect] = struct{}{}
		}
		kept := make([]Program, 0, len(r.Programs[c])+len(programs))
		for _, p := range r.Programs[c] {
			if _, ok := replaced[p.Dialect]; !ok {
				kept = append(kept, p)
			}
		}
		r.Programs[c] = append(kept, programs...)
	}
}

// Constraints returns the constraint names that have programs, sorted.
func (r *RecipeSet) Constraints() []string {
	retval := make([]string, 0, len(r.Programs))
	for k := range r.Programs {
		retval = append(retval, k)
	}
	sort.Strings(retval)
	return retval
}

// Eligible returns the programs for constraint whose when rule holds for params.
func (r *RecipeSet) Eligible(constraint string, params map[string]interface{}) ([]Program, error) {
	retval := make([]Program, 0)
	for _, p := range r.Programs[constraint] {
		ok, err := p.Applies(params)
		if err != nil {
			return nil, errors.Wrapf(err, "constraint %v", constraint)
		}
		if ok {
			retval = append(retval, p)
		}
	}
	return retval, nil
}

// Choose picks the program for constraint in the most preferred dialect that has an eligible program.
// Within a dialect, the first eligible program wins.
func (r *RecipeSet) Choose(constraint string, params map[string]interface{}, prefs dialect.Preferences) (Program, dialect.Dialect, error) {
	eligible, err := r.Eligible(constraint, params)
	if err != nil {
		return Program{}, dialect.Dialect{}, err
	}
	available := make([]string, 0, len(eligible))
	for _, p := range eligible {
		if !helper.StringSliceContains(available, p.Dialect) {
			available = append(available, p.Dialect)
		}
	}
	d, err := dialect.Resolve(prefs, available)
	if err != nil {
		return Program{}, d, fmt.Errorf("constraint %v: %w", constraint, err)
	}
	for _, p := range eligible {
		if p.Dialect == d.Kind {
			return p, d, nil
		}
	}
	return Program{}, d, fmt.Errorf("constraint %v: no %v program", constraint, d.Kind)
}

func isKnownDialect(kind string) bool {
	return helper.StringSliceContains(dialect.Kinds, kind)
}
