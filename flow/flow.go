package flow

import (
	"fmt"

	"github.com/relloyd/aorist/helper"
)

// Flow is a DAG of tasks. Tasks keep their insertion order, which breaks ties when ordering.
type Flow struct {
	Name       string
	names      []string
	tasks      map[string]Task
	upstream   map[string][]string
	downstream map[string][]string
}

func NewFlow(name string) *Flow {
	return &Flow{
		Name:       name,
		tasks:      make(map[string]Task),
		upstream:   make(map[string][]string),
		downstream: make(map[string][]string),
	}
}

// AddNode adds t. Task names are unique.
func (f *Flow) AddNode(t Task) error {
	if t == nil || t.Name() == "" {
		return fmt.Errorf("flow %v: tasks need a name", f.Name)
	}
	if _, ok := f.tasks[t.Name()]; ok {
		return fmt.Errorf("flow %v: duplicate task %q", f.Name, t.Name())
	}
	f.tasks[t.Name()] = t
	f.names = append(f.names, t.Name())
	return nil
}

// AddEdge makes dst run after src. Repeated edges are ignored.
func (f *Flow) AddEdge(src string, dst string) error {
	for _, n := range []string{src, dst} {
		if _, ok := f.tasks[n]; !ok {
			return fmt.Errorf("flow %v: edge %v -> %v names unknown task %q", f.Name, src, dst, n)
		}
	}
	if src == dst {
		return fmt.Errorf("flow %v: task %q cannot depend on itself", f.Name, src)
	}
	if helper.StringSliceContains(f.downstream[src], dst) {
		return nil
	}
	if f.reaches(dst, src) {
		return fmt.Errorf("flow %v: edge %v -> %v would create a cycle", f.Name, src, dst)
	}
	f.downstream[src] = append(f.downstream[src], dst)
	f.upstream[dst] = append(f.upstream[dst], src)
	return nil
}

// reaches reports whether to can be reached from from by following edges.
func (f *Flow) reaches(from string, to string) bool {
	seen := make(map[string]struct{})
	stack := []string{from}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == to {
			return true
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		stack = append(stack, f.downstream[n]...)
	}
	return false
}

// Task returns the task called name.
func (f *Flow) Task(name string) (Task, bool) {
	t, ok := f.tasks[name]
	return t, ok
}

// Names returns the task names in insertion order.
func (f *Flow) Names() []string {
	retval := make([]string, len(f.names))
	copy(retval, f.names)
	return retval
}

// Upstream returns the tasks that name waits for.
func (f *Flow) Upstream(name string) []string {
	return append([]string{}, f.upstream[name]...)
}

// Downstream returns the tasks that wait for name.
func (f *Flow) Downstream(name string) []string {
	return append([]string{}, f.downstream[name]...)
}

// Len returns the number of tasks.
func (f *Flow) Len() int {
	return len(f.names)
}

// Order returns the task names in topological order.
// Of the tasks that are ready at any point the one added first comes first.
func (f *Flow) Order() []string {
	indegree := make(map[string]int, len(f.names))
	for _, n := range f.names {
		indegree[n] = len(f.upstream[n])
	}
	retval := make([]string, 0, len(f.names))
	placed := make(map[string]bool, len(f.names))
	for len(retval) < len(f.names) {
		for _, n := range f.names {
			if !placed[n] && indegree[n] == 0 {
				placed[n] = true
				retval = append(retval, n)
				for _, d := range f.downstream[n] {
					indegree[d]--
				}
				break
			}
		}
	}
	return retval
}
