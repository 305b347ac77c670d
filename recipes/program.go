package recipes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/diegoholiveira/jsonlogic"
	"github.com/pkg/errors"
	"github.com/relloyd/aorist/dialect"
)

// Program is the code that satisfies a constraint in one dialect.
// Code and Preamble are text templates rendered against the constraint parameters.
// When is an optional JSON Logic rule over the same parameters.
type Program struct {
	Dialect         string          `json:"dialect"`
	Code            string          `json:"code"`
	Preamble        string          `json:"preamble,omitempty"`
	PipRequirements []string        `json:"pipRequirements,omitempty"`
	When            json.RawMessage `json:"when,omitempty"`
}

// funcMap holds the template functions available to programs.
func funcMap() template.FuncMap {
	m := sprig.TxtFuncMap()
	m["shellQuote"] = dialect.ShellQuote
	return m
}

func parseTemplate(name, text string) (*template.Template, error) {
	return template.New(name).Funcs(funcMap()).Option("missingkey=error").Parse(text)
}

// validate checks the dialect, that the templates parse and that the rule is valid JSON Logic.
func (p Program) validate(constraint string) error {
	if !isKnownDialect(p.Dialect) {
		return fmt.Errorf("constraint %v: unknown dialect %q", constraint, p.Dialect)
	}
	if strings.TrimSpace(p.Code) == "" {
		return fmt.Errorf("constraint %v: %v program has no code", constraint, p.Dialect)
	}
	if _, err := parseTemplate(constraint, p.Code); err != nil {
		return errors.Wrapf(err, "constraint %v: %v program code", constraint, p.Dialect)
	}
	if _, err := parseTemplate(constraint, p.Preamble); err != nil {
		return errors.Wrapf(err, "constraint %v: %v program preamble", constraint, p.Dialect)
	}
	if p.hasRule() && !jsonlogic.IsValid(bytes.NewReader(p.When)) {
		return fmt.Errorf("constraint %v: invalid when rule for %v program: %s", constraint, p.Dialect, p.When)
	}
	return nil
}

func (p Program) hasRule() bool {
	w := strings.TrimSpace(string(p.When))
	return w != "" && w != "null"
}

// Applies evaluates the when rule against params. Programs without a rule always apply.
func (p Program) Applies(params map[string]interface{}) (bool, error) {
	if !p.hasRule() {
		return true, nil
	}
	data, err := json.Marshal(params)
	if err != nil {
		return false, fmt.Errorf("error marshalling data before applying JSON logic: %v", err)
	}
	var result bytes.Buffer
	if err := jsonlogic.Apply(bytes.NewReader(p.When), bytes.NewReader(data), &result); err != nil {
		return false, fmt.Errorf("error applying JSON logic: %v", err)
	}
	return strings.TrimSpace(result.String()) == "true", nil
}

// Render executes the code and preamble templates with params.
func (p Program) Render(name string, params map[string]interface{}) (code string, preamble string, err error) {
	if code, err = execute(name, p.Code, params); err != nil {
		return "", "", err
	}
	if preamble, err = execute(name, p.Preamble, params); err != nil {
		return "", "", err
	}
	return code, preamble, nil
}

func execute(name, text string, params map[string]interface{}) (string, error) {
	if text == "" {
		return "", nil
	}
	t, err := parseTemplate(name, text)
	if err != nil {
		return "", err
	}
	b := bytes.Buffer{}
	if err := t.Execute(&b, params); err != nil {
		return "", errors.Wrapf(err, "error rendering program for %v", name)
	}
	return strings.TrimSpace(b.String()) + "\n", nil
}
