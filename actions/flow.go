package actions

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/relloyd/aorist/flow"
	"github.com/relloyd/aorist/helper"
	"github.com/relloyd/aorist/logger"
	"github.com/spf13/afero"
)

type FlowConfig struct {
	FlowFile                  string `errorTxt:"flow file" mandatory:"yes"`
	Workers                   int
	WithWebService            bool
	LogLevel                  string `errorTxt:"log level" mandatory:"yes"`
	StackDumpOnPanic          bool
	StatsDumpFrequencySeconds int
	Fs                        afero.Fs
}

// RunFlowFromFile runs the flow described in a YAML or JSON file.
// With WithWebService set the flow is launched inside a web server that can be used to
// monitor and stop it, and the server keeps running once the flow ends.
func RunFlowFromFile(cfg *FlowConfig, web *WebServerConfig) error {
	if cfg == nil {
		return fmt.Errorf("nil pointer for flow config supplied")
	}
	log, err := logger.NewLoggerE("aorist", cfg.LogLevel, cfg.StackDumpOnPanic)
	if err != nil {
		return err
	}
	if err = helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	fs := cfg.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	f, err := flow.ParseFile(fs, cfg.FlowFile)
	if err != nil {
		return err
	}
	log.Debug("flow ", f.Name, " has tasks in order: ", f.Order())
	opts := flow.LaunchOptions{Workers: cfg.Workers}
	if !cfg.WithWebService {
		ctx, stop := flow.HandleSignals(context.Background(), log)
		defer stop()
		_, err = flow.LaunchFlow(ctx, log, flow.NewSafeMapRunInfo(), f, opts, cfg.StatsDumpFrequencySeconds, true)
		return err
	}
	if web == nil {
		return errors.New("nil pointer to web server config supplied")
	}
	web.StatsDumpFrequencySeconds = cfg.StatsDumpFrequencySeconds
	web.Workers = cfg.Workers
	s, err := newServer(log, web)
	if err != nil {
		return err
	}
	ctx, stop := flow.HandleSignals(context.Background(), log)
	defer stop()
	srv := s.start()
	id, err := flow.LaunchFlow(s.ctx, log, s.runs, f, opts, cfg.StatsDumpFrequencySeconds, false)
	if err != nil {
		s.stop()
		_ = s.wait(ctx, srv)
		return err
	}
	log.Info("Launched flow file ", cfg.FlowFile, " as run ", id)
	return s.wait(ctx, srv)
}
