package stats

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/relloyd/aorist/logger"
)

// Task states reported by a TaskWatcher.
const (
	StatusPending  = "pending"
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
	StatusSkipped  = "skipped"
)

var statusEmoji = map[string]string{
	StatusPending:  "\U0001F4A4", // zzz
	StatusRunning:  "\U0000231B", // hour glass
	StatusComplete: "\U00002705", // green tick
	StatusFailed:   "\U0000274C", // red cross
	StatusSkipped:  "\U000023ED", // skip
}

// TaskWatcher records the lifecycle of one flow task.
type TaskWatcher struct {
	log       logger.Logger
	clock     clockwork.Clock
	taskName  string
	mu        sync.RWMutex
	status    string
	startTime time.Time
	endTime   time.Time
	exitCode  int
	err       string
}

type Stats struct {
	TaskName       string `json:"taskName"`
	StatusText     string `json:"statusText"`
	StatusEmoji    string `json:"statusEmoji"`
	ElapsedTimeSec int    `json:"elapsedTimeSec"`
	ExitCode       int    `json:"exitCode"`
	Error          string `json:"error,omitempty"`
}

func NewTaskWatcher(log logger.Logger, clock clockwork.Clock, taskName string) *TaskWatcher {
	return &TaskWatcher{log: log, clock: clock, taskName: taskName, status: StatusPending}
}

func (w *TaskWatcher) StartWatching() {
	w.mu.Lock()
	w.status = StatusRunning
	w.startTime = w.clock.Now()
	w.mu.Unlock()
	w.log.Debug("STATS: ", w.taskName, " started")
}

// StopWatching records the end of the task. A non-nil err marks it failed.
func (w *TaskWatcher) StopWatching(exitCode int, err error) {
	w.mu.Lock()
	w.endTime = w.clock.Now()
	w.exitCode = exitCode
	if err != nil {
		w.status = StatusFailed
		w.err = err.Error()
	} else {
		w.status = StatusComplete
	}
	w.mu.Unlock()
	w.log.Debug("STATS: ", w.taskName, " stopped with exit code ", exitCode)
}

// Skip marks a task that will never run because an upstream task failed or the run stopped.
func (w *TaskWatcher) Skip() {
	w.mu.Lock()
	w.status = StatusSkipped
	w.mu.Unlock()
}

// RenderStats gets a struct filled with stats at the point of time it is called.
func (w *TaskWatcher) RenderStats() Stats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var elapsed time.Duration
	switch w.status {
	case StatusRunning:
		elapsed = w.clock.Now().Sub(w.startTime)
	case StatusComplete, StatusFailed:
		elapsed = w.endTime.Sub(w.startTime)
	}
	return Stats{
		TaskName:       w.taskName,
		StatusText:     w.status,
		StatusEmoji:    statusEmoji[w.status],
		ElapsedTimeSec: int(elapsed.Seconds()),
		ExitCode:       w.exitCode,
		Error:          w.err,
	}
}

// String will format the stats for general logging.
func (s Stats) String() string {
	return fmt.Sprintf("Stats for %v %v %v elapsedTimeSec=%v exitCode=%v",
		s.TaskName, s.StatusText, s.StatusEmoji, s.ElapsedTimeSec, s.ExitCode)
}
