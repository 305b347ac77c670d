package actions

import (
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/relloyd/aorist/codegen"
	"github.com/relloyd/aorist/constraint"
	"github.com/relloyd/aorist/dialect"
	"github.com/relloyd/aorist/flow"
	"github.com/relloyd/aorist/helper"
	"github.com/relloyd/aorist/logger"
	"github.com/relloyd/aorist/recipes"
	"github.com/relloyd/aorist/universe"
	"github.com/spf13/afero"
)

type DagConfig struct {
	Manifests                 ManifestConfig
	Targets                   string `errorTxt:"targets" mandatory:"yes"`
	Mode                      string `errorTxt:"mode" mandatory:"yes"`
	Dialects                  string `errorTxt:"dialects" mandatory:"yes"`
	RecipeFiles               []string
	Execute                   bool
	Workers                   int
	StatsDumpFrequencySeconds int
	LogLevel                  string `errorTxt:"log level" mandatory:"yes"`
	StackDumpOnPanic          bool
	Output                    io.Writer
}

// RunDag compiles the universe in the manifests and prints the program for the targets.
// With Execute set the plan is run locally as a flow of shell commands instead.
func RunDag(cfg *DagConfig) error {
	if cfg == nil {
		return errors.New("nil pointer to dag config supplied")
	}
	log, err := logger.NewLoggerE("aorist", cfg.LogLevel, cfg.StackDumpOnPanic)
	if err != nil {
		return err
	}
	if err = helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	var gen codegen.Generator
	if !cfg.Execute {
		if gen, err = codegen.New(cfg.Mode); err != nil {
			return err
		}
	}
	r, err := loadRecipes(cfg.Manifests.Fs, cfg.RecipeFiles)
	if err != nil {
		return err
	}
	plan, err := compileDag(log, cfg.Manifests, cfg.Targets, cfg.Dialects, r)
	if err != nil {
		return err
	}
	if cfg.Execute {
		return executePlan(context.Background(), log, plan, cfg.Workers, cfg.StatsDumpFrequencySeconds)
	}
	program, err := gen.Generate(plan)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(writerOrStdout(cfg.Output), program)
	return err
}

func loadRecipes(fs afero.Fs, files []string) (*recipes.RecipeSet, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return recipes.Load(fs, files...)
}

// compileDag loads the universe and runs the constraint driver for the CSV of targets.
func compileDag(log logger.Logger, m ManifestConfig, targets string, dialects string, r *recipes.RecipeSet) (*constraint.Plan, error) {
	u, err := loadUniverse(log, m)
	if err != nil {
		return nil, err
	}
	return compilePlan(log, u, targets, dialects, r)
}

func compilePlan(log logger.Logger, u *universe.Universe, targets string, dialects string, r *recipes.RecipeSet) (*constraint.Plan, error) {
	prefs, err := dialect.ParsePreferences(dialects)
	if err != nil {
		return nil, err
	}
	t := helper.CsvToStringSliceTrimSpaces(targets)
	if len(t) == 0 {
		return nil, errors.New("no target constraints supplied")
	}
	plan, err := codegen.Compile(log, u, t, r, prefs)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to compile universe %q", u.Name)
	}
	log.Info("Compiled ", len(plan.Tasks()), " tasks for universe ", u.Name)
	return plan, nil
}

// executePlan runs plan as a flow and blocks until it ends or the user interrupts it.
func executePlan(ctx context.Context, log logger.Logger, plan *constraint.Plan, workers int, statsDumpFrequencySeconds int) error {
	f, err := flow.FromPlan(plan)
	if err != nil {
		return err
	}
	ctx, stop := flow.HandleSignals(ctx, log)
	defer stop()
	_, err = flow.LaunchFlow(ctx, log, flow.NewSafeMapRunInfo(), f, flow.PlanLaunchOptions(plan, workers), statsDumpFrequencySeconds, true)
	return err
}
