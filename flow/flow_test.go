package flow

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNodeAndEdge(t *testing.T) {
	f := NewFlow("test")
	require.NoError(t, f.AddNode(&ShellTask{TaskName: "a", Command: "true"}))
	require.NoError(t, f.AddNode(&ShellTask{TaskName: "b", Command: "true"}))
	require.NoError(t, f.AddNode(&ConstantTask{TaskName: "c", Value: "Done"}))
	assert.Error(t, f.AddNode(&ShellTask{TaskName: "a"}))
	assert.Error(t, f.AddNode(&ShellTask{}))

	require.NoError(t, f.AddEdge("a", "b"))
	require.NoError(t, f.AddEdge("a", "b")) // repeated edges are ignored
	assert.Equal(t, []string{"b"}, f.Downstream("a"))
	require.NoError(t, f.AddEdge("b", "c"))
	assert.Error(t, f.AddEdge("c", "a"), "cycle")
	assert.Error(t, f.AddEdge("a", "a"), "self edge")
	assert.Error(t, f.AddEdge("a", "missing"))
	assert.Equal(t, []string{"b"}, f.Upstream("c"))
	assert.Equal(t, 3, f.Len())
}

func TestOrderBreaksTiesByInsertion(t *testing.T) {
	f := NewFlow("test")
	for _, n := range []string{"load", "extract_b", "extract_a", "report"} {
		require.NoError(t, f.AddNode(&ConstantTask{TaskName: n}))
	}
	require.NoError(t, f.AddEdge("extract_a", "load"))
	require.NoError(t, f.AddEdge("extract_b", "load"))
	require.NoError(t, f.AddEdge("load", "report"))
	assert.Equal(t, []string{"extract_b", "extract_a", "load", "report"}, f.Order())
	assert.Equal(t, []string{"load", "extract_b", "extract_a", "report"}, f.Names())
}

func TestNewShellTask(t *testing.T) {
	st, err := NewShellTask("decompress", "gunzip {{ .tmpDir }}/{{ .fileName | shellQuote }}",
		map[string]interface{}{"tmpDir": "/tmp/wine", "fileName": "wine.csv.gz"})
	require.NoError(t, err)
	assert.Equal(t, "gunzip /tmp/wine/'wine.csv.gz'", st.Command)
	assert.Equal(t, "shell", st.Type())

	_, err = NewShellTask("broken", "echo {{ .missing }}", map[string]interface{}{})
	assert.Error(t, err)
	_, err = NewShellTask("broken", "echo {{ .x", nil)
	assert.Error(t, err)
}

const testFlowYAML = `
name: wine
tasks:
  - name: download
    command: curl -sSfL {{ .url }} -o /tmp/wine.data
    params:
      url: https://example.org/wine.data
  - name: remove_header
    command: tail -n +2 /tmp/wine.data > /tmp/wine.csv
    upstream: [download]
  - name: hive_created
    command: echo create
  - name: done
    type: constant
    value: Done
edges:
  - [remove_header, done]
  - [hive_created, done]
`

func TestParseFlowFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/flows/wine.yaml", []byte(testFlowYAML), 0644))
	f, err := ParseFile(fs, "/flows/wine.yaml")
	require.NoError(t, err)
	assert.Equal(t, "wine", f.Name)
	assert.Equal(t, []string{"download", "remove_header", "hive_created", "done"}, f.Order())
	task, ok := f.Task("download")
	require.True(t, ok)
	assert.Equal(t, "curl -sSfL https://example.org/wine.data -o /tmp/wine.data", task.(*ShellTask).Command)
	assert.Equal(t, []string{"remove_header", "hive_created"}, f.Upstream("done"))

	// JSON works too.
	f, err = Parse([]byte(`{"name": "j", "tasks": [{"name": "a", "command": "true"}, {"name": "b", "type": "constant", "upstream": ["a"]}]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, f.Upstream("b"))

	_, err = ParseFile(fs, "/flows/missing.yaml")
	assert.Error(t, err)
}

func TestParseFlowFileErrors(t *testing.T) {
	cases := map[string]string{
		"no name":        "tasks: [{name: a, command: 'true'}]",
		"no tasks":       "name: x",
		"no command":     "name: x\ntasks: [{name: a}]",
		"bad type":       "name: x\ntasks: [{name: a, type: sql, command: 'select 1'}]",
		"unknown edge":   "name: x\ntasks: [{name: a, command: 'true'}]\nedges: [[a, b]]",
		"cycle":          "name: x\ntasks: [{name: a, command: 'true', upstream: [b]}, {name: b, command: 'true', upstream: [a]}]",
		"duplicate task": "name: x\ntasks: [{name: a, command: 'true'}, {name: a, command: 'true'}]",
	}
	for name, doc := range cases {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestMarshalRoundTripKeepsCommands(t *testing.T) {
	f := NewFlow("m")
	require.NoError(t, f.AddNode(&ShellTask{TaskName: "a", Command: `echo '{{ not a template }}'`}))
	require.NoError(t, f.AddNode(&ConstantTask{TaskName: "b", Value: "Done"}))
	require.NoError(t, f.AddEdge("a", "b"))
	b, err := Marshal(f)
	require.NoError(t, err)
	g, err := Parse(b)
	require.NoError(t, err)
	task, _ := g.Task("a")
	assert.Equal(t, `echo '{{ not a template }}'`, task.(*ShellTask).Command)
	assert.Equal(t, []string{"a"}, g.Upstream("b"))
}
