package flow

import (
	"github.com/relloyd/aorist/constraint"
	"github.com/relloyd/aorist/dialect"
	"github.com/relloyd/aorist/helper"
	"github.com/relloyd/aorist/universe"
)

// FromPlan converts a driver plan into a flow. Programs of every dialect become shell tasks;
// constant tasks stay constant.
func FromPlan(plan *constraint.Plan) (*Flow, error) {
	f := NewFlow(plan.Universe)
	tasks := plan.Tasks()
	for _, t := range tasks {
		if t.IsConstant() {
			if err := f.AddNode(&ConstantTask{TaskName: t.Name, Value: "Done"}); err != nil {
				return nil, err
			}
			continue
		}
		cmd, err := dialect.ShellCommand(t.Dialect, t.Program(), plan.Endpoints)
		if err != nil {
			return nil, err
		}
		if err := f.AddNode(&ShellTask{TaskName: t.Name, Command: cmd}); err != nil {
			return nil, err
		}
	}
	for _, t := range tasks {
		for _, d := range t.Dependencies {
			if err := f.AddEdge(d, t.Name); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

// PlanLaunchOptions runs the tasks of a plan in a shell that holds the endpoint credentials
// the programs read at run time.
func PlanLaunchOptions(plan *constraint.Plan, workers int) LaunchOptions {
	return LaunchOptions{Workers: workers, Runner: ShellRunner{Env: EndpointEnv(plan.Endpoints)}}
}

// EndpointEnv returns KEY=value pairs for the secrets of e that are set.
func EndpointEnv(e universe.EndpointConfig) []string {
	var env []string
	add := func(key string, val string) {
		if val != "" {
			env = append(env, key+"="+val)
		}
	}
	if e.Gitea != nil {
		add(helper.GetEndpointEnvVarName("Gitea", "Token"), e.Gitea.Token)
	}
	if e.Ranger != nil {
		add(helper.GetEndpointEnvVarName("Ranger", "User"), e.Ranger.User)
		add(helper.GetEndpointEnvVarName("Ranger", "Password"), e.Ranger.Password)
	}
	if e.Postgres != nil {
		add("PGPASSWORD", e.Postgres.Password)
	}
	if e.AWS != nil {
		add("AWS_ACCESS_KEY_ID", e.AWS.AccessKeyID)
		add("AWS_SECRET_ACCESS_KEY", e.AWS.AccessKeySecret)
		add("AWS_DEFAULT_REGION", e.AWS.Region)
	}
	return env
}
