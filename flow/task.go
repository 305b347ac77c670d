package flow

import (
	"bytes"
	"text/template"

	"github.com/Masterminds/sprig"
	"github.com/pkg/errors"
	"github.com/relloyd/aorist/constants"
	"github.com/relloyd/aorist/dialect"
)

// Task is a node of a flow.
type Task interface {
	Name() string
	Type() string
}

// ConstantTask completes immediately with Value.
type ConstantTask struct {
	TaskName string
	Value    string
}

func (t *ConstantTask) Name() string { return t.TaskName }
func (t *ConstantTask) Type() string { return constants.TaskTypeConstant }

// ShellTask runs Command with bash.
type ShellTask struct {
	TaskName string
	Command  string
}

func (t *ShellTask) Name() string { return t.TaskName }
func (t *ShellTask) Type() string { return constants.TaskTypeShell }

// NewShellTask renders the command template tmpl with params.
// Templates may use sprig functions and shellQuote; a missing key is an error.
func NewShellTask(name string, tmpl string, params map[string]interface{}) (*ShellTask, error) {
	funcs := sprig.TxtFuncMap()
	funcs["shellQuote"] = dialect.ShellQuote
	t, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to parse command of task %v", name)
	}
	buf := bytes.Buffer{}
	if err := t.Execute(&buf, params); err != nil {
		return nil, errors.Wrapf(err, "unable to render command of task %v", name)
	}
	return &ShellTask{TaskName: name, Command: buf.String()}, nil
}
