package helper

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	om "github.com/cevaris/ordered_map"
)

var (
	matchFirstCap = regexp.MustCompile("(.)([A-Z][a-z]+)")
	matchAllCap   = regexp.MustCompile("([a-z0-9])([A-Z])")
	matchNonWord  = regexp.MustCompile("[^A-Za-z0-9]+")
)

// ToSnakeCase converts "DownloadDataFromRemote" to "download_data_from_remote".
// Runs of capitals are kept together: "CSVEncoding" gives "csv_encoding".
// Other separators (spaces, dashes, dots) become a single underscore.
func ToSnakeCase(s string) string {
	s = matchNonWord.ReplaceAllString(s, "_")
	s = matchFirstCap.ReplaceAllString(s, "${1}_${2}")
	s = matchAllCap.ReplaceAllString(s, "${1}_${2}")
	s = strings.Trim(s, "_")
	return strings.ToLower(strings.ReplaceAll(s, "__", "_"))
}

// ToUpperSnakeCase is ToSnakeCase in upper case.
func ToUpperSnakeCase(s string) string {
	return strings.ToUpper(ToSnakeCase(s))
}

// CsvToStringSliceTrimSpaces converts a string of the form, 'f1, f2, f3...' into a slice of string values.
// Empty values are dropped so "" gives an empty slice.
func CsvToStringSliceTrimSpaces(s string) []string {
	tokens := strings.Split(s, ",")
	retval := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			retval = append(retval, t)
		}
	}
	return retval
}

// TokensToOrderedMap converts a string of the form, 'k1:v1,k2,k3:v3' into an ordered map.
// Keys without a value map to "".
// An error is returned for an empty key.
func TokensToOrderedMap(s string) (*om.OrderedMap, error) {
	o := om.NewOrderedMap()
	if strings.TrimSpace(s) == "" {
		return o, nil
	}
	for _, token := range strings.Split(s, ",") {
		kv := strings.SplitN(token, ":", 2)
		k := strings.TrimSpace(kv[0])
		if k == "" {
			return nil, fmt.Errorf("empty key in token list %q", s)
		}
		v := ""
		if len(kv) == 2 {
			v = strings.TrimSpace(kv[1])
		}
		o.Set(k, v)
	}
	return o, nil
}

// OrderedMapKeys returns the string keys of o in insertion order.
func OrderedMapKeys(o *om.OrderedMap) []string {
	retval := make([]string, 0, o.Len())
	iter := o.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		retval = append(retval, fmt.Sprintf("%v", kv.Key))
	}
	return retval
}

// EscapeSingleQuotes doubles single quotes for use inside SQL string literals.
func EscapeSingleQuotes(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// IndentLines prefixes every non-empty line of s with prefix.
func IndentLines(s string, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}

// CommentLines turns every line of s into a comment using marker, e.g. "#" or "--".
func CommentLines(s string, marker string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(marker+" "+l, " ")
	}
	return strings.Join(lines, "\n")
}

// SortedUnique returns the distinct non-empty values of s in sorted order.
func SortedUnique(s []string) []string {
	seen := make(map[string]struct{}, len(s))
	retval := make([]string, 0, len(s))
	for _, v := range s {
		if _, ok := seen[v]; ok || v == "" {
			continue
		}
		seen[v] = struct{}{}
		retval = append(retval, v)
	}
	sort.Strings(retval)
	return retval
}

// StringSliceContains reports whether s contains v.
func StringSliceContains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
