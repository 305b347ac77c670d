package codegen

import (
	"fmt"
	"strings"

	"github.com/relloyd/aorist/constants"
	"github.com/relloyd/aorist/constraint"
	"github.com/relloyd/aorist/helper"
	"github.com/relloyd/aorist/universe"
)

const pyIndent = "    "

// pythonGenerator writes a single python script that runs every task in plan order.
type pythonGenerator struct{}

func (pythonGenerator) Generate(plan *constraint.Plan) (string, error) {
	b := &strings.Builder{}
	writeHeader(b, plan, "#")
	writeImports(b, plan, true)
	if usesDialect(plan, constants.DialectPresto) {
		writePrestoHelper(b, plan.Endpoints)
	}
	for _, block := range plan.Blocks {
		writeBlockHeader(b, block, "", "#")
		for _, t := range block.Tasks {
			b.WriteString("\n")
			switch t.Dialect {
			case "":
				fmt.Fprintf(b, "%v = \"Done\"\n", t.Name)
			case constants.DialectPython:
				fmt.Fprintf(b, "def %v():\n%v\n\n%v()\n", t.Name, pyFunctionBody(t.Code), t.Name)
			case constants.DialectBash:
				fmt.Fprintf(b, "subprocess.run(%v, shell=True, check=True)\n", pyString(t.Program()))
			case constants.DialectR:
				fmt.Fprintf(b, "robjects.r(%v)\n", pyString(t.Program()))
			case constants.DialectPresto:
				fmt.Fprintf(b, "presto_execute(%v)\n", pyStrings(prestoStatements(t.Code)))
			default:
				return "", fmt.Errorf("task %v has unknown dialect %q", t.Name, t.Dialect)
			}
		}
	}
	return b.String(), nil
}

// writeImports writes the imports the tasks of plan need followed by the distinct
// python preambles. Shell tasks need subprocess only when run from python.
func writeImports(b *strings.Builder, plan *constraint.Plan, shell bool) {
	imports := make([]string, 0)
	if shell && usesDialect(plan, constants.DialectBash) {
		imports = append(imports, "import subprocess")
	}
	if shell && usesDialect(plan, constants.DialectR) {
		imports = append(imports, "from rpy2 import robjects")
	}
	if shell && usesDialect(plan, constants.DialectPresto) {
		imports = append(imports, "import prestodb")
	}
	if len(imports) > 0 {
		b.WriteString("\n" + strings.Join(imports, "\n") + "\n")
	}
	for _, p := range plan.Preambles(constants.DialectPython) {
		b.WriteString("\n" + p + "\n")
	}
}

func writePrestoHelper(b *strings.Builder, e universe.EndpointConfig) {
	p := universe.PrestoConfig{Server: "localhost"}
	if e.Presto != nil {
		p = *e.Presto
	}
	if p.HTTPPort == 0 {
		p.HTTPPort = universe.DefaultPrestoHTTPPort
	}
	if p.User == "" {
		p.User = universe.DefaultPrestoUser
	}
	fmt.Fprintf(b, `
def presto_execute(statements):
    conn = prestodb.dbapi.connect(host=%v, port=%v, user=%v, catalog="hive", schema="default")
    cursor = conn.cursor()
    for statement in statements:
        cursor.execute(statement)
        cursor.fetchall()
`, pyString(p.Server), p.HTTPPort, pyString(p.User))
}

// pyFunctionBody indents code as the body of a python function. Code that may hold
// multi-line string literals or continued lines is run through exec instead, so
// indenting cannot change the literals.
func pyFunctionBody(code string) string {
	code = strings.TrimRight(code, "\n")
	if strings.Contains(code, `"""`) || strings.Contains(code, "'''") || strings.Contains(code, "\\\n") {
		return pyIndent + "exec(" + pyString(code+"\n") + ", globals())"
	}
	return helper.IndentLines(code, pyIndent)
}

func pyStrings(s []string) string {
	quoted := make([]string, len(s))
	for i, v := range s {
		quoted[i] = pyString(v)
	}
	return pyList(quoted)
}
