package flow

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	"github.com/relloyd/aorist/constants"
	"github.com/relloyd/aorist/helper"
	"github.com/spf13/afero"
)

// FileTask is a task as written in a flow file.
type FileTask struct {
	Name     string                 `json:"name" mandatory:"yes" errorTxt:"task name"`
	Type     string                 `json:"type,omitempty"`
	Command  string                 `json:"command,omitempty"`
	Params   map[string]interface{} `json:"params,omitempty"`
	Value    string                 `json:"value,omitempty"`
	Upstream []string               `json:"upstream,omitempty"`
}

// File is the YAML or JSON form of a flow.
type File struct {
	Name  string      `json:"name" mandatory:"yes" errorTxt:"flow name"`
	Tasks []FileTask  `json:"tasks" mandatory:"yes" errorTxt:"tasks"`
	Edges [][2]string `json:"edges,omitempty"`
}

// Parse reads a flow file. JSON is valid YAML so both are accepted.
// Shell task commands are templates rendered with the task params.
func Parse(b []byte) (*Flow, error) {
	ff := File{}
	if err := yaml.Unmarshal(b, &ff); err != nil {
		return nil, errors.Wrap(err, "unable to parse flow file")
	}
	if err := helper.ValidateStructIsPopulated(&ff); err != nil {
		return nil, err
	}
	return ff.Flow()
}

// ParseFile reads the flow file at path from fs.
func ParseFile(fs afero.Fs, path string) (*Flow, error) {
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read flow file %v", path)
	}
	f, err := Parse(b)
	if err != nil {
		return nil, errors.Wrapf(err, "flow file %v", path)
	}
	return f, nil
}

// Flow builds the flow described by ff.
func (ff *File) Flow() (*Flow, error) {
	f := NewFlow(ff.Name)
	for _, t := range ff.Tasks {
		var task Task
		switch t.Type {
		case constants.TaskTypeShell, "":
			if t.Command == "" {
				return nil, fmt.Errorf("shell task %v has no command", t.Name)
			}
			st, err := NewShellTask(t.Name, t.Command, t.Params)
			if err != nil {
				return nil, err
			}
			task = st
		case constants.TaskTypeConstant:
			task = &ConstantTask{TaskName: t.Name, Value: t.Value}
		default:
			return nil, fmt.Errorf("task %v has unknown type %q", t.Name, t.Type)
		}
		if err := f.AddNode(task); err != nil {
			return nil, err
		}
	}
	for _, t := range ff.Tasks {
		for _, u := range t.Upstream {
			if err := f.AddEdge(u, t.Name); err != nil {
				return nil, err
			}
		}
	}
	for _, e := range ff.Edges {
		if err := f.AddEdge(e[0], e[1]); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Marshal writes f as a flow file.
func Marshal(f *Flow) ([]byte, error) {
	ff := File{Name: f.Name}
	for _, n := range f.Names() {
		ft := FileTask{Name: n, Upstream: f.Upstream(n)}
		switch t := f.tasks[n].(type) {
		case *ShellTask:
			ft.Type = constants.TaskTypeShell
			ft.Command = escapeTemplate(t.Command)
		case *ConstantTask:
			ft.Type = constants.TaskTypeConstant
			ft.Value = t.Value
		}
		ff.Tasks = append(ff.Tasks, ft)
	}
	return yaml.Marshal(ff)
}

// escapeTemplate makes a literal command safe to read back as a template.
func escapeTemplate(s string) string {
	if !strings.Contains(s, "{{") {
		return s
	}
	return "{{" + strconv.Quote(s) + "}}"
}
