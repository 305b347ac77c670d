package codegen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/relloyd/aorist/constants"
	"github.com/relloyd/aorist/constraint"
	"github.com/relloyd/aorist/dialect"
	"github.com/relloyd/aorist/helper"
	"github.com/relloyd/aorist/logger"
	"github.com/relloyd/aorist/recipes"
	"github.com/relloyd/aorist/universe"
)

// Generator renders a plan as source text.
type Generator interface {
	Generate(plan *constraint.Plan) (string, error)
}

var generators = map[string]Generator{
	constants.OutputModePython:  pythonGenerator{},
	constants.OutputModeAirflow: airflowGenerator{},
	constants.OutputModePrefect: prefectGenerator{},
	constants.OutputModeBash:    bashGenerator{},
}

// Modes returns the supported output modes.
func Modes() []string {
	retval := make([]string, 0, len(generators))
	for k := range generators {
		retval = append(retval, k)
	}
	sort.Strings(retval)
	return retval
}

// New returns the generator for mode.
func New(mode string) (Generator, error) {
	g, ok := generators[strings.ToLower(mode)]
	if !ok {
		return nil, fmt.Errorf("unsupported output mode %q; choose from: %v", mode, strings.Join(Modes(), ", "))
	}
	return g, nil
}

// Compile builds the constraint graph of u for targets and runs the driver over it.
func Compile(log logger.Logger, u *universe.Universe, targets []string, r *recipes.RecipeSet, prefs dialect.Preferences) (*constraint.Plan, error) {
	g, err := constraint.Build(u, constraint.Builtin(), targets)
	if err != nil {
		return nil, err
	}
	return constraint.NewDriver(log, r, prefs).Run(g)
}

// Dag compiles u and returns the program for targets in the given output mode.
func Dag(log logger.Logger, u *universe.Universe, targets []string, mode string, r *recipes.RecipeSet, prefs dialect.Preferences) (string, error) {
	gen, err := New(mode)
	if err != nil {
		return "", err
	}
	plan, err := Compile(log, u, targets, r, prefs)
	if err != nil {
		return "", err
	}
	return gen.Generate(plan)
}

// pyString returns s as a Python string literal.
func pyString(s string) string {
	buf := bytes.Buffer{}
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimRight(buf.String(), "\n")
}

func pyList(names []string) string {
	return "[" + strings.Join(names, ", ") + "]"
}

// usesDialect reports whether any task of plan is written in kind.
func usesDialect(plan *constraint.Plan, kind string) bool {
	return helper.StringSliceContains(plan.Dialects(), kind)
}

func writeHeader(b *strings.Builder, plan *constraint.Plan, comment string) {
	fmt.Fprintf(b, "%v Generated by %v for universe %v.\n", comment, constants.AppName, plan.Universe)
	if len(plan.PipRequirements) > 0 {
		fmt.Fprintf(b, "%v Requires: pip install %v\n", comment, strings.Join(plan.PipRequirements, " "))
	}
}

// writeBlockHeader writes the block title as a double comment followed by its body.
func writeBlockHeader(b *strings.Builder, block *constraint.Block, indent string, comment string) {
	title := block.Title
	if title == "" {
		title = block.Constraint
	}
	fmt.Fprintf(b, "\n%v%v%v %v\n", indent, comment, comment, title)
	if block.Body != "" {
		b.WriteString(helper.IndentLines(helper.CommentLines(block.Body, comment), indent) + "\n")
	}
}

// shellCommand returns the shell command that runs a non-python task.
func shellCommand(t *constraint.Task, plan *constraint.Plan) (string, error) {
	return dialect.ShellCommand(t.Dialect, t.Program(), plan.Endpoints)
}

// prestoStatements splits presto code into statements.
func prestoStatements(code string) []string {
	retval := make([]string, 0)
	for _, s := range strings.Split(code, ";\n") {
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), ";"))
		if s != "" {
			retval = append(retval, s)
		}
	}
	return retval
}
