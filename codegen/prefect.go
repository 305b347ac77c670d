package codegen

import (
	"fmt"
	"strings"

	"github.com/relloyd/aorist/constants"
	"github.com/relloyd/aorist/constraint"
)

// prefectGenerator writes a Prefect flow of ShellTasks and @task functions.
type prefectGenerator struct{}

func (prefectGenerator) Generate(plan *constraint.Plan) (string, error) {
	b := &strings.Builder{}
	writeHeader(b, plan, "#")
	b.WriteString(`
from prefect import Flow, task
from prefect.tasks.shell import ShellTask
`)
	writeImports(b, plan, false)
	// Functions first; the flow body wires them together.
	for _, t := range plan.Tasks() {
		switch t.Dialect {
		case "":
			fmt.Fprintf(b, "\n\n@task(name=%v)\ndef %v_fn():\n%vreturn \"Done\"\n", pyString(t.Name), t.Name, pyIndent)
		case constants.DialectPython:
			fmt.Fprintf(b, "\n\n@task(name=%v)\ndef %v_fn():\n%v\n", pyString(t.Name), t.Name, pyFunctionBody(t.Code))
		}
	}
	fmt.Fprintf(b, "\n\nwith Flow(%v) as flow:\n", pyString(plan.Universe))
	for _, block := range plan.Blocks {
		writeBlockHeader(b, block, pyIndent, "#")
		for _, t := range block.Tasks {
			upstream := pyList(t.Dependencies)
			switch t.Dialect {
			case "", constants.DialectPython:
				fmt.Fprintf(b, "%v%v = %v_fn(upstream_tasks=%v)\n", pyIndent, t.Name, t.Name, upstream)
			default:
				cmd, err := shellCommand(t, plan)
				if err != nil {
					return "", err
				}
				fmt.Fprintf(b, "%v%v = ShellTask(name=%v, command=%v)(upstream_tasks=%v)\n",
					pyIndent, t.Name, pyString(t.Name), pyString(cmd), upstream)
			}
		}
	}
	if len(plan.Blocks) == 0 {
		b.WriteString(pyIndent + "pass\n")
	}
	b.WriteString("\nif __name__ == \"__main__\":\n" + pyIndent + "flow.run()\n")
	return b.String(), nil
}
