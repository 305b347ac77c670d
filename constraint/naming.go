package constraint

import (
	"fmt"
	"strings"

	"github.com/relloyd/aorist/helper"
	"github.com/relloyd/aorist/universe"
)

// fullTaskName is the snake case constraint name followed by the names of the concept
// and its named ancestors below the universe, all separated by "__".
// Constraints on the universe itself use the universe name.
func fullTaskName(s *State) string {
	parts := []string{helper.ToSnakeCase(s.Definition.Name)}
	chain := append(s.Node.Ancestors(), s.Node)
	for _, n := range chain {
		if n.Name == "" || (n.Type == universe.ConceptUniverse && len(chain) > 1) {
			continue
		}
		parts = append(parts, helper.ToSnakeCase(n.Name))
	}
	return strings.Join(parts, "__")
}

// shorterTaskName drops one part of name:
// with more than two "__" parts the second is dropped; with two only the first is kept;
// with one part of more than two "_" words the second word is dropped.
func shorterTaskName(name string) string {
	parts := strings.Split(name, "__")
	switch {
	case len(parts) > 2:
		return parts[0] + "__" + strings.Join(parts[2:], "__")
	case len(parts) == 2:
		return parts[0]
	}
	words := strings.Split(name, "_")
	if len(words) > 2 {
		return words[0] + "_" + strings.Join(words[2:], "_")
	}
	return name
}

// uniqueTaskNames suffixes repeated names with _2, _3 and so on.
// Distinct concept names can snake case to the same string, e.g. WineTable and wine_table.
func uniqueTaskNames(names []string) []string {
	out := make([]string, len(names))
	used := make(map[string]struct{}, len(names))
	for _, n := range names {
		used[n] = struct{}{}
	}
	seen := make(map[string]struct{}, len(names))
	for i, n := range names {
		if _, dup := seen[n]; dup {
			for k := 2; ; k++ {
				c := fmt.Sprintf("%v_%v", n, k)
				if _, taken := used[c]; !taken {
					n = c
					used[c] = struct{}{}
					break
				}
			}
		}
		seen[n] = struct{}{}
		out[i] = n
	}
	return out
}

// shortenTaskNames makes the names unique then repeatedly shortens every name while
// at least one name changes and the shortened names stay unique.
func shortenTaskNames(names []string) []string {
	current := uniqueTaskNames(names)
	for {
		proposed := make([]string, len(current))
		changed := false
		seen := make(map[string]struct{}, len(current))
		for i, n := range current {
			proposed[i] = shorterTaskName(n)
			if proposed[i] != n {
				changed = true
			}
			seen[proposed[i]] = struct{}{}
		}
		if !changed || len(seen) < len(proposed) {
			return current
		}
		current = proposed
	}
}
