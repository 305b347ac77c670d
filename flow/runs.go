package flow

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/relloyd/aorist/logger"
	"github.com/relloyd/aorist/stats"
	"github.com/rs/xid"
)

// RunInfo describes a launched flow.
type RunInfo struct {
	ID       string             `json:"id"`
	FlowName string             `json:"flowName"`
	Status   RunStatus          `json:"status"`
	Stats    stats.StatsFetcher `json:"-"`
	cancel   context.CancelFunc
}

// SafeMapRunInfo holds the runs launched by this process.
type SafeMapRunInfo struct {
	sync.RWMutex
	Internal map[string]RunInfo
}

func NewSafeMapRunInfo() *SafeMapRunInfo {
	return &SafeMapRunInfo{Internal: make(map[string]RunInfo)}
}

func (t *SafeMapRunInfo) Load(key string) (ri RunInfo, ok bool) {
	t.RLock()
	ri, ok = t.Internal[key]
	t.RUnlock()
	return
}

func (t *SafeMapRunInfo) Store(key string, value RunInfo) {
	t.Lock()
	t.Internal[key] = value
	t.Unlock()
}

func (t *SafeMapRunInfo) Delete(key string) {
	t.Lock()
	delete(t.Internal, key)
	t.Unlock()
}

// List returns every run ordered by id, which sorts by creation time.
func (t *SafeMapRunInfo) List() []RunInfo {
	t.RLock()
	retval := make([]RunInfo, 0, len(t.Internal))
	for _, v := range t.Internal {
		retval = append(retval, v)
	}
	t.RUnlock()
	sort.Slice(retval, func(i, j int) bool { return retval[i].ID < retval[j].ID })
	return retval
}

// setStatus applies a status change to the run called id.
func (t *SafeMapRunInfo) setStatus(id string, s Status, err error) {
	t.Lock()
	defer t.Unlock()
	ri := t.Internal[id]
	ri.Status.Status = s
	switch s {
	case StatusRunning:
		ri.Status.StartTime = time.Now()
	case StatusComplete, StatusCompleteWithError, StatusShutdown:
		ri.Status.EndTime = time.Now()
	}
	if err != nil {
		ri.Status.Error = err.Error()
	}
	t.Internal[id] = ri
}

// Stop cancels the run called id.
func (t *SafeMapRunInfo) Stop(id string) error {
	ri, ok := t.Load(id)
	if !ok {
		return fmt.Errorf("flow run %v not found", id)
	}
	if ri.Status.IsFinished() {
		return fmt.Errorf("flow run %v is already %v", id, ri.Status.Status)
	}
	ri.cancel()
	return nil
}

// StopAll cancels every unfinished run.
func (t *SafeMapRunInfo) StopAll() {
	for _, ri := range t.List() {
		if !ri.Status.IsFinished() {
			ri.cancel()
		}
	}
}

// LaunchFlow validates f, registers a new run in runs and launches it.
// If blockUntilComplete is false the flow runs in a goroutine and the returned error
// only covers validation; otherwise it is the result of the run.
func LaunchFlow(ctx context.Context, log logger.Logger, runs *SafeMapRunInfo, f *Flow, opts LaunchOptions, statsDumpFrequencySeconds int, blockUntilComplete bool) (id string, err error) {
	if f == nil || f.Len() == 0 {
		return "", errors.New("flow has no tasks")
	}
	id = xid.New().String()
	ctx, cancel := context.WithCancel(ctx)
	s := stats.NewFlowStats(log, stats.SetStatsDumpFrequency(statsDumpFrequencySeconds))
	opts.Stats = s
	runs.Store(id, RunInfo{
		ID:       id,
		FlowName: f.Name,
		Status:   RunStatus{Status: StatusStarting, StartTime: time.Now()},
		Stats:    s,
		cancel:   cancel,
	})
	log.Info("Launching flow ", f.Name, " as run ", id)
	run := func() error {
		defer cancel()
		runs.setStatus(id, StatusRunning, nil)
		err := Launch(ctx, log, f, opts)
		switch {
		case err != nil && ctx.Err() != nil:
			runs.setStatus(id, StatusShutdown, err)
		case err != nil:
			runs.setStatus(id, StatusCompleteWithError, err)
		default:
			runs.setStatus(id, StatusComplete, nil)
		}
		if err != nil {
			log.Error("Flow run ", id, " ended: ", err)
		} else {
			log.Info("Flow run ", id, " complete")
		}
		return err
	}
	if blockUntilComplete {
		return id, run()
	}
	go func() { _ = run() }()
	return id, nil
}
