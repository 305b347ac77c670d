package flow

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/relloyd/aorist/constants"
	"github.com/relloyd/aorist/logger"
	"github.com/relloyd/aorist/stats"
)

// StatsManager abstracts stats capture for flow tasks.
type StatsManager interface {
	StartDumping()
	StopDumping()
	AddTaskWatcher(taskName string) *stats.TaskWatcher
}

// LaunchOptions configure a flow run. Zero values select defaults.
type LaunchOptions struct {
	Workers int
	Runner  CommandRunner
	Stats   StatsManager
}

type taskResult struct {
	name     string
	exitCode int
	err      error
}

// Launch runs the tasks of f, at most opts.Workers at a time, each as soon as all of its
// upstream tasks have succeeded. When a task fails its downstream tasks are skipped while
// unrelated tasks carry on; the first failure is returned. Cancelling ctx stops scheduling,
// cancels running commands and skips whatever has not run.
func Launch(ctx context.Context, log logger.Logger, f *Flow, opts LaunchOptions) error {
	workers := opts.Workers
	if workers <= 0 {
		workers = constants.DefaultWorkerCount
	}
	runner := opts.Runner
	if runner == nil {
		runner = ShellRunner{}
	}
	sm := opts.Stats
	if sm == nil {
		sm = stats.NewFlowStats(log, stats.SetStatsDumpFrequency(0))
	}
	order := f.Order()
	position := make(map[string]int, len(order))
	watchers := make(map[string]*stats.TaskWatcher, len(order))
	indegree := make(map[string]int, len(order))
	for i, n := range order {
		position[n] = i
		watchers[n] = sm.AddTaskWatcher(n)
		indegree[n] = len(f.upstream[n])
	}
	sm.StartDumping()
	defer sm.StopDumping()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	jobs := make(chan *ShellTask)
	results := make(chan taskResult, len(order))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				results <- runTask(ctx, log, runner, t, watchers[t.TaskName])
			}
		}()
	}

	const (
		pending = iota
		finished
		skipped
	)
	state := make(map[string]int, len(order))
	ready := make([]string, 0)
	enqueue := func(n string) {
		ready = append(ready, n)
		sort.Slice(ready, func(i, j int) bool { return position[ready[i]] < position[ready[j]] })
	}
	for _, n := range order {
		if indegree[n] == 0 {
			enqueue(n)
		}
	}
	done := 0
	release := func(n string) {
		for _, d := range f.downstream[n] {
			indegree[d]--
			if indegree[d] == 0 && state[d] == pending {
				enqueue(d)
			}
		}
	}
	var skip func(n string)
	skip = func(n string) {
		for _, d := range f.downstream[n] {
			if state[d] == pending {
				state[d] = skipped
				watchers[d].Skip()
				done++
				log.Warn("Skipping task ", d, " as upstream task ", n, " did not succeed")
				skip(d)
			}
		}
	}

	var firstErr error
	stopped := false
	ctxDone := ctx.Done()
	running := 0
	for done < len(order) {
		for !stopped && len(ready) > 0 && running < workers {
			n := ready[0]
			ready = ready[1:]
			switch t := f.tasks[n].(type) {
			case *ShellTask:
				jobs <- t
				running++
			default:
				w := watchers[n]
				w.StartWatching()
				w.StopWatching(0, nil)
				log.Debug("Constant task ", n, " complete")
				state[n] = finished
				done++
				release(n)
			}
		}
		if running == 0 {
			break
		}
		select {
		case r := <-results:
			running--
			done++
			state[r.name] = finished
			if r.err != nil {
				if firstErr == nil {
					firstErr = errors.Wrapf(r.err, "task %v failed with exit code %v", r.name, r.exitCode)
				}
				skip(r.name)
				continue
			}
			release(r.name)
		case <-ctxDone:
			ctxDone = nil
			stopped = true
			if firstErr == nil {
				firstErr = errors.Wrap(ctx.Err(), "flow "+f.Name+" stopped")
			}
			log.Info("Stopping flow ", f.Name, " with ", running, " task(s) running")
		}
	}
	close(jobs)
	wg.Wait()
	for _, n := range order {
		if state[n] == pending {
			watchers[n].Skip()
		}
	}
	return firstErr
}

func runTask(ctx context.Context, log logger.Logger, runner CommandRunner, t *ShellTask, w *stats.TaskWatcher) taskResult {
	tlog := log
	if fl, ok := log.(logger.FieldLogger); ok {
		tlog = fl.WithField("task", t.TaskName)
	}
	tlog.Info("Launching task ", t.TaskName)
	stdout := &lineWriter{log: tlog.Info}
	stderr := &lineWriter{log: tlog.Warn}
	w.StartWatching()
	code, err := runner.Run(ctx, t.Command, stdout, stderr)
	stdout.Flush()
	stderr.Flush()
	w.StopWatching(code, err)
	if err != nil {
		tlog.Error("Task ", t.TaskName, " failed: ", err)
	} else {
		tlog.Info("Task ", t.TaskName, " complete")
	}
	return taskResult{name: t.TaskName, exitCode: code, err: err}
}

// lineWriter logs every complete line written to it.
type lineWriter struct {
	log func(...interface{})
	buf bytes.Buffer
}

var _ io.Writer = (*lineWriter)(nil)

func (w *lineWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	for {
		s := w.buf.String()
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			break
		}
		w.log(s[:i])
		w.buf.Next(i + 1)
	}
	return len(p), nil
}

// Flush logs any partial last line.
func (w *lineWriter) Flush() {
	if w.buf.Len() > 0 {
		w.log(w.buf.String())
		w.buf.Reset()
	}
}
