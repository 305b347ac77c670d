package constraint

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/aorist/constants"
	"github.com/relloyd/aorist/dialect"
	"github.com/relloyd/aorist/helper"
	"github.com/relloyd/aorist/logger"
	"github.com/relloyd/aorist/recipes"
	"github.com/relloyd/aorist/universe"
)

// Task is one step of a plan.
// Constant tasks have an empty Dialect and no code; they only mark that their
// dependencies are done.
type Task struct {
	Name            string   `json:"name"`
	Constraint      string   `json:"constraint"`
	ConceptUUID     string   `json:"conceptUuid"`
	ConceptPath     string   `json:"conceptPath"`
	Title           string   `json:"title,omitempty"`
	Body            string   `json:"body,omitempty"`
	Dialect         string   `json:"dialect,omitempty"`
	Code            string   `json:"code,omitempty"`
	Preamble        string   `json:"preamble,omitempty"`
	PipRequirements []string `json:"pipRequirements,omitempty"`
	Dependencies    []string `json:"dependencies,omitempty"`
}

// IsConstant reports whether the task has no program.
func (t *Task) IsConstant() bool {
	return t.Dialect == ""
}

// Program returns the preamble followed by the code, for running the task on its own.
func (t *Task) Program() string {
	if strings.TrimSpace(t.Preamble) == "" {
		return t.Code
	}
	return strings.TrimRight(t.Preamble, "\n") + "\n\n" + t.Code
}

// Block holds the tasks of one constraint.
type Block struct {
	Constraint string  `json:"constraint"`
	Title      string  `json:"title,omitempty"`
	Body       string  `json:"body,omitempty"`
	Tasks      []*Task `json:"tasks"`
}

// Plan is the ordered result of running the driver.
// Every task appears after all of its dependencies.
type Plan struct {
	Universe        string                  `json:"universe"`
	Blocks          []*Block                `json:"blocks"`
	PipRequirements []string                `json:"pipRequirements,omitempty"`
	Endpoints       universe.EndpointConfig `json:"-"`
}

// Tasks returns every task in plan order.
func (p *Plan) Tasks() []*Task {
	retval := make([]*Task, 0)
	for _, b := range p.Blocks {
		retval = append(retval, b.Tasks...)
	}
	return retval
}

// Preambles returns the distinct preambles of tasks in dialect kind, in plan order.
func (p *Plan) Preambles(kind string) []string {
	seen := make(map[string]struct{})
	retval := make([]string, 0)
	for _, t := range p.Tasks() {
		pre := strings.TrimSpace(t.Preamble)
		if t.Dialect != kind || pre == "" {
			continue
		}
		if _, ok := seen[pre]; !ok {
			seen[pre] = struct{}{}
			retval = append(retval, pre)
		}
	}
	return retval
}

// Dialects returns the distinct dialects used by tasks in plan order.
func (p *Plan) Dialects() []string {
	retval := make([]string, 0)
	for _, t := range p.Tasks() {
		if t.Dialect != "" && !helper.StringSliceContains(retval, t.Dialect) {
			retval = append(retval, t.Dialect)
		}
	}
	return retval
}

// Driver turns a constraint graph into a plan by choosing and rendering a program for
// every state that needs one.
type Driver struct {
	log     logger.Logger
	recipes *recipes.RecipeSet
	prefs   dialect.Preferences
}

func NewDriver(log logger.Logger, r *recipes.RecipeSet, prefs dialect.Preferences) *Driver {
	return &Driver{log: log, recipes: r, prefs: prefs}
}

// Run processes g block by block. A block is every state of one constraint whose
// requirements have all been processed; when several constraints are ready the one
// registered first goes next.
func (d *Driver) Run(g *Graph) (*Plan, error) {
	processed := make(map[string]struct{}, len(g.names))
	plan := &Plan{Universe: g.ctx.Universe.Name, Endpoints: g.ctx.Universe.Endpoints}
	ordered := make([]*State, 0, g.Len())
	pip := make([]string, 0)
	for len(processed) < len(g.names) {
		name, ok := d.nextReady(g, processed)
		if !ok {
			return nil, fmt.Errorf("no constraint can be processed; unprocessed constraints form a cycle")
		}
		processed[name] = struct{}{}
		states := g.states[name]
		d.log.Debug("processing constraint block ", name, " with ", len(states), " member(s)")
		if len(states) == 0 {
			continue
		}
		for _, s := range states {
			if err := d.process(s); err != nil {
				return nil, err
			}
			pip = append(pip, s.PipRequirements...)
		}
		ordered = append(ordered, states...)
		def, _ := g.registry.Get(name)
		plan.Blocks = append(plan.Blocks, &Block{Constraint: name, Title: def.Title, Body: def.Body})
	}
	// Name the tasks.
	full := make([]string, len(ordered))
	for i, s := range ordered {
		full[i] = fullTaskName(s)
	}
	for i, n := range shortenTaskNames(full) {
		ordered[i].TaskName = n
	}
	// Fill the blocks.
	idx := 0
	for _, b := range plan.Blocks {
		name := ordered[idx].Definition.Name
		for idx < len(ordered) && ordered[idx].Definition.Name == name {
			b.Tasks = append(b.Tasks, newTask(ordered[idx]))
			idx++
		}
	}
	plan.PipRequirements = helper.SortedUnique(pip)
	d.log.Info("planned ", len(ordered), " task(s) in ", len(plan.Blocks), " block(s)")
	return plan, nil
}

func (d *Driver) nextReady(g *Graph, processed map[string]struct{}) (string, bool) {
	for _, name := range g.names {
		if _, done := processed[name]; done {
			continue
		}
		def, _ := g.registry.Get(name)
		ready := true
		for _, req := range def.Requires {
			if _, ok := processed[req]; !ok {
				ready = false
				break
			}
		}
		if ready {
			return name, true
		}
	}
	return "", false
}

// process chooses a dialect and renders the program of s.
func (d *Driver) process(s *State) error {
	if !s.Definition.RequiresProgram {
		return nil
	}
	p, dl, err := d.recipes.Choose(s.Name(), s.Params, d.prefs)
	if err != nil {
		return errors.Wrapf(err, "at %v", s.Node.Path())
	}
	code, preamble, err := p.Render(s.Name(), s.Params)
	if err != nil {
		return err
	}
	s.Dialect = dl
	s.Code = code
	s.Preamble = preamble
	if dl.Kind == constants.DialectPython {
		s.PipRequirements = append(append([]string{}, p.PipRequirements...), dl.PipRequirements...)
	}
	d.log.Trace("rendered ", s.Name(), " at ", s.Node.Path(), " as ", dl.Kind)
	return nil
}

func newTask(s *State) *Task {
	t := &Task{
		Name:            s.TaskName,
		Constraint:      s.Name(),
		ConceptUUID:     s.Node.UUID.String(),
		ConceptPath:     s.Node.Path(),
		Title:           s.Definition.Title,
		Body:            s.Definition.Body,
		Dialect:         s.Dialect.Kind,
		Code:            s.Code,
		Preamble:        s.Preamble,
		PipRequirements: s.PipRequirements,
	}
	seen := make(map[string]struct{})
	for _, dep := range s.Dependencies {
		if _, ok := seen[dep.TaskName]; ok {
			continue
		}
		seen[dep.TaskName] = struct{}{}
		t.Dependencies = append(t.Dependencies, dep.TaskName)
	}
	return t
}
