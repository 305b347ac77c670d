package codegen

import (
	"fmt"
	"strings"

	"github.com/relloyd/aorist/constants"
	"github.com/relloyd/aorist/constraint"
)

// airflowGenerator writes an Airflow DAG. Python tasks become PythonOperators, constant
// tasks DummyOperators and everything else a BashOperator running the shell command.
type airflowGenerator struct{}

func (airflowGenerator) Generate(plan *constraint.Plan) (string, error) {
	b := &strings.Builder{}
	writeHeader(b, plan, "#")
	b.WriteString(`
import datetime

from airflow import DAG
from airflow.operators.bash_operator import BashOperator
from airflow.operators.dummy_operator import DummyOperator
from airflow.operators.python_operator import PythonOperator
`)
	writeImports(b, plan, false)
	fmt.Fprintf(b, `
default_args = {
    "owner": %v,
    "start_date": datetime.datetime(2021, 1, 1),
}

dag = DAG(%v, default_args=default_args, schedule_interval=None, catchup=False)
`, pyString(constants.AppName), pyString(plan.Universe))
	edges := make([]string, 0)
	for _, block := range plan.Blocks {
		writeBlockHeader(b, block, "", "#")
		for _, t := range block.Tasks {
			b.WriteString("\n")
			switch t.Dialect {
			case "":
				fmt.Fprintf(b, "%v = DummyOperator(task_id=%v, dag=dag)\n", t.Name, pyString(t.Name))
			case constants.DialectPython:
				fmt.Fprintf(b, "def %v_callable():\n%v\n\n", t.Name, pyFunctionBody(t.Code))
				fmt.Fprintf(b, "%v = PythonOperator(task_id=%v, python_callable=%v_callable, dag=dag)\n", t.Name, pyString(t.Name), t.Name)
			default:
				cmd, err := shellCommand(t, plan)
				if err != nil {
					return "", err
				}
				fmt.Fprintf(b, "%v = BashOperator(task_id=%v, bash_command=%v, dag=dag)\n", t.Name, pyString(t.Name), pyString(cmd))
			}
			for _, d := range t.Dependencies {
				edges = append(edges, fmt.Sprintf("%v >> %v", d, t.Name))
			}
		}
	}
	if len(edges) > 0 {
		b.WriteString("\n" + strings.Join(edges, "\n") + "\n")
	}
	return b.String(), nil
}
