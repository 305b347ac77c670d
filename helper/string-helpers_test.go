package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToSnakeCase(t *testing.T) {
	cases := map[string]string{
		"DownloadDataFromRemote": "download_data_from_remote",
		"CSVEncoding":            "csv_encoding",
		"HTTPPort":               "http_port",
		"wine-quality data":      "wine_quality_data",
		"already_snake":          "already_snake",
		"Int64":                  "int64",
	}
	for in, expected := range cases {
		assert.Equal(t, expected, ToSnakeCase(in), in)
	}
	assert.Equal(t, "ACCESS_KEY", ToUpperSnakeCase("AccessKey"))
}

func TestCsvToStringSliceTrimSpaces(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, CsvToStringSliceTrimSpaces(" a, b ,,c "))
	assert.Empty(t, CsvToStringSliceTrimSpaces(""))
}

func TestTokensToOrderedMap(t *testing.T) {
	// Confirm empty string produces empty ordered map.
	o, err := TokensToOrderedMap("")
	require.NoError(t, err)
	assert.Equal(t, 0, o.Len())

	o, err = TokensToOrderedMap("r, python:pandas;numpy ,bash")
	require.NoError(t, err)
	assert.Equal(t, []string{"r", "python", "bash"}, OrderedMapKeys(o))
	v, ok := o.Get("python")
	assert.True(t, ok)
	assert.Equal(t, "pandas;numpy", v)
	v, _ = o.Get("r")
	assert.Equal(t, "", v)

	_, err = TokensToOrderedMap("r,,bash")
	assert.Error(t, err)
}

func TestEscapingAndIndenting(t *testing.T) {
	assert.Equal(t, "it''s", EscapeSingleQuotes("it's"))
	assert.Equal(t, "  a\n\n  b", IndentLines("a\n\nb", "  "))
	assert.Equal(t, "# one\n#\n# two", CommentLines("one\n\ntwo\n", "#"))
}

func TestSortedUnique(t *testing.T) {
	assert.Equal(t, []string{"numpy", "pandas"}, SortedUnique([]string{"pandas", "", "numpy", "pandas"}))
	assert.True(t, StringSliceContains([]string{"a", "b"}, "b"))
	assert.False(t, StringSliceContains(nil, "b"))
}
