package dialect

import (
	"testing"

	"github.com/relloyd/aorist/universe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePreferences(t *testing.T) {
	p, err := ParsePreferences("r, python:pandas;numpy ,bash,presto")
	require.NoError(t, err)
	assert.Equal(t, []string{"r", "python", "bash", "presto"}, p.Kinds())
	assert.Equal(t, []string{"pandas", "numpy"}, p[1].PipRequirements)
	assert.Equal(t, "r,python:pandas;numpy,bash,presto", p.String())

	for _, bad := range []string{"", "r,,bash", "cobol", "bash,bash", "bash:numpy", "Python,python"} {
		_, err := ParsePreferences(bad)
		assert.Error(t, err, bad)
	}
}

func TestResolve(t *testing.T) {
	p, _ := ParsePreferences("r,python,bash")
	d, err := Resolve(p, []string{"bash", "python"})
	require.NoError(t, err)
	assert.Equal(t, "python", d.Kind)

	_, err = Resolve(p, []string{"presto"})
	assert.EqualError(t, err, "none of the preferred dialects [r, python, bash] is available; available dialects are [presto]")
}

func TestShellCommand(t *testing.T) {
	e := universe.EndpointConfig{Presto: &universe.PrestoConfig{Server: "coordinator"}}
	s, err := ShellCommand("presto", "SELECT 'x'", e)
	require.NoError(t, err)
	assert.Equal(t, `presto --server coordinator:8080 --user 'aorist' --execute 'SELECT '"'"'x'"'"''`, s)

	s, err = ShellCommand("presto", "SELECT 1", universe.EndpointConfig{})
	require.NoError(t, err)
	assert.Equal(t, `presto --execute 'SELECT 1'`, s)

	s, _ = ShellCommand("python", "print(1)\n", e)
	assert.Equal(t, "python3 - <<'AORIST_EOF'\nprint(1)\nAORIST_EOF", s)
	s, _ = ShellCommand("r", "print(1)", e)
	assert.Equal(t, "Rscript -e 'print(1)'", s)
	s, _ = ShellCommand("bash", "echo hi", e)
	assert.Equal(t, "echo hi", s)
	_, err = ShellCommand("cobol", "", e)
	assert.Error(t, err)
}
