package constraint

import (
	"fmt"
	"sort"

	"github.com/relloyd/aorist/universe"
)

// Context is what activation predicates and parameter functions can see.
type Context struct {
	Universe *universe.Universe
	Root     *universe.Node
}

// ActiveFunc reports whether a constraint applies to concept n.
type ActiveFunc func(n *universe.Node, ctx *Context) bool

// ParamsFunc computes the template parameters of a constraint on concept n.
type ParamsFunc func(n *universe.Node, ctx *Context) (map[string]interface{}, error)

// Definition describes a kind of constraint: the concept type it is attached to,
// the constraints it requires and how to explain and parameterise it.
type Definition struct {
	Name            string
	RootType        string
	Requires        []string
	Title           string
	Body            string
	RequiresProgram bool
	Active          ActiveFunc
	Params          ParamsFunc
}

func (d *Definition) isActive(n *universe.Node, ctx *Context) bool {
	return d.Active == nil || d.Active(n, ctx)
}

func (d *Definition) params(n *universe.Node, ctx *Context) (map[string]interface{}, error) {
	if d.Params == nil {
		return map[string]interface{}{}, nil
	}
	p, err := d.Params(n, ctx)
	if err != nil {
		return nil, fmt.Errorf("constraint %v on %v %q: %w", d.Name, n.Type, n.Path(), err)
	}
	return p, nil
}

// Registry holds constraint definitions in registration order.
type Registry struct {
	defs  map[string]*Definition
	order []string
}

func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register adds d. Names are unique.
func (r *Registry) Register(d Definition) error {
	if d.Name == "" || d.RootType == "" {
		return fmt.Errorf("constraint definitions need a name and a root type")
	}
	if _, ok := r.defs[d.Name]; ok {
		return fmt.Errorf("constraint %v is already registered", d.Name)
	}
	r.defs[d.Name] = &d
	r.order = append(r.order, d.Name)
	return nil
}

// Get returns the definition called name.
func (r *Registry) Get(name string) (*Definition, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	retval := make([]string, len(r.order))
	copy(retval, r.order)
	return retval
}

// SortedNames returns the registered names in lexical order.
func (r *Registry) SortedNames() []string {
	retval := r.Names()
	sort.Strings(retval)
	return retval
}
