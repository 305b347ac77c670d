package constraint

import (
	"fmt"
	"strings"

	"github.com/relloyd/aorist/dialect"
	"github.com/relloyd/aorist/universe"
)

// State is one constraint applied to one concept.
type State struct {
	Definition   *Definition
	Node         *universe.Node
	Params       map[string]interface{}
	Dependencies []*State

	TaskName        string
	Dialect         dialect.Dialect
	Code            string
	Preamble        string
	PipRequirements []string
}

// Name returns the constraint name.
func (s *State) Name() string {
	return s.Definition.Name
}

// Key identifies the state by constraint name and concept UUID.
func (s *State) Key() string {
	return s.Definition.Name + "/" + s.Node.UUID.String()
}

// Graph holds the constraint states needed to satisfy a set of targets.
type Graph struct {
	registry *Registry
	ctx      *Context
	names    []string            // constraint names in the requirement closure, registration order
	states   map[string][]*State // constraint name -> states in walk order
}

// Names returns the constraint names taking part in the graph.
func (g *Graph) Names() []string {
	retval := make([]string, len(g.names))
	copy(retval, g.names)
	return retval
}

// States returns the states of constraint name in concept walk order.
func (g *Graph) States(name string) []*State {
	return g.states[name]
}

// Len returns the number of states in the graph.
func (g *Graph) Len() int {
	n := 0
	for _, s := range g.states {
		n += len(s)
	}
	return n
}

// Build instantiates every active constraint needed for targets on the concepts of u.
// A state depends on the instances of each required constraint found on its own
// concept or below it; failing that, on the nearest ancestor that has one.
// Requirements with no instance anywhere on that path are skipped.
func Build(u *universe.Universe, registry *Registry, targets []string) (*Graph, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("no target constraints supplied; choose from: %v", strings.Join(registry.SortedNames(), ", "))
	}
	root, err := u.Tree()
	if err != nil {
		return nil, err
	}
	names, err := closure(registry, targets)
	if err != nil {
		return nil, err
	}
	if err := checkAcyclic(registry, names); err != nil {
		return nil, err
	}
	g := &Graph{
		registry: registry,
		ctx:      &Context{Universe: u, Root: root},
		names:    names,
		states:   make(map[string][]*State, len(names)),
	}
	byNode := make(map[string]map[*universe.Node]*State, len(names))
	for _, name := range names {
		def, _ := registry.Get(name)
		byNode[name] = make(map[*universe.Node]*State)
		for _, n := range universe.Find(root, def.RootType) {
			if !def.isActive(n, g.ctx) {
				continue
			}
			params, err := def.params(n, g.ctx)
			if err != nil {
				return nil, err
			}
			s := &State{Definition: def, Node: n, Params: params}
			g.states[name] = append(g.states[name], s)
			byNode[name][n] = s
		}
	}
	for _, name := range names {
		for _, s := range g.states[name] {
			for _, req := range s.Definition.Requires {
				s.Dependencies = append(s.Dependencies, findDependencies(s.Node, byNode[req])...)
			}
		}
	}
	return g, nil
}

// findDependencies returns the states found on n or below it, in walk order, or the
// state on the nearest ancestor of n.
func findDependencies(n *universe.Node, states map[*universe.Node]*State) []*State {
	if len(states) == 0 {
		return nil
	}
	retval := make([]*State, 0)
	_ = universe.Walk(n, func(c *universe.Node) error {
		if s, ok := states[c]; ok {
			retval = append(retval, s)
		}
		return nil
	})
	if len(retval) > 0 {
		return retval
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if s, ok := states[p]; ok {
			return []*State{s}
		}
	}
	return nil
}

// closure returns targets and everything they require, in registration order.
func closure(registry *Registry, targets []string) ([]string, error) {
	seen := make(map[string]struct{})
	queue := make([]string, 0, len(targets))
	for _, t := range targets {
		if _, ok := registry.Get(t); !ok {
			return nil, fmt.Errorf("unknown target constraint %q; choose from: %v", t, strings.Join(registry.SortedNames(), ", "))
		}
		queue = append(queue, t)
	}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		def, _ := registry.Get(name)
		for _, req := range def.Requires {
			if _, ok := registry.Get(req); !ok {
				return nil, fmt.Errorf("constraint %v requires unknown constraint %q", name, req)
			}
			queue = append(queue, req)
		}
	}
	retval := make([]string, 0, len(seen))
	for _, name := range registry.Names() {
		if _, ok := seen[name]; ok {
			retval = append(retval, name)
		}
	}
	return retval, nil
}

// checkAcyclic fails if the requirements among names form a cycle.
func checkAcyclic(registry *Registry, names []string) error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(names))
	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch state[name] {
		case visiting:
			return fmt.Errorf("constraint requirements form a cycle: %v", strings.Join(append(path, name), " -> "))
		case done:
			return nil
		}
		state[name] = visiting
		def, _ := registry.Get(name)
		for _, req := range def.Requires {
			if err := visit(req, append(path, name)); err != nil {
				return err
			}
		}
		state[name] = done
		return nil
	}
	for _, name := range names {
		if err := visit(name, nil); err != nil {
			return err
		}
	}
	return nil
}
