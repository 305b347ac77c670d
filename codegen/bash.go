package codegen

import (
	"fmt"
	"strings"

	"github.com/relloyd/aorist/constraint"
)

// bashGenerator writes a shell script that runs the tasks one after another.
type bashGenerator struct{}

func (bashGenerator) Generate(plan *constraint.Plan) (string, error) {
	b := &strings.Builder{}
	b.WriteString("#!/usr/bin/env bash\n")
	writeHeader(b, plan, "#")
	b.WriteString("set -euo pipefail\n")
	for _, block := range plan.Blocks {
		writeBlockHeader(b, block, "", "#")
		for _, t := range block.Tasks {
			fmt.Fprintf(b, "\n# %v\n", t.Name)
			if t.IsConstant() {
				fmt.Fprintf(b, "%v=Done\n", t.Name)
				continue
			}
			cmd, err := shellCommand(t, plan)
			if err != nil {
				return "", err
			}
			b.WriteString(strings.TrimRight(cmd, "\n") + "\n")
		}
	}
	return b.String(), nil
}
