package stats

import (
	"sync"
	"time"

	"github.com/cevaris/ordered_map"
	"github.com/jonboulle/clockwork"
	"github.com/relloyd/aorist/constants"
	"github.com/relloyd/aorist/logger"
)

type StatsFetcher interface {
	GetStats() []Stats
}

// FlowStatsManager keeps a TaskWatcher per task, in the order tasks were added,
// and can log their stats periodically.
type FlowStatsManager struct {
	log             logger.Logger
	clock           clockwork.Clock
	dumpFrequency   int
	mu              sync.Mutex
	dumping         bool
	dumpDone        chan struct{}
	dumpStopped     chan struct{}
	mapTaskWatchers *ordered_map.OrderedMap
}

// Option configures a FlowStatsManager.
type Option func(m *FlowStatsManager)

// SetStatsDumpFrequency sets the dump interval. Zero or less disables dumping.
func SetStatsDumpFrequency(seconds int) Option {
	return func(m *FlowStatsManager) {
		m.dumpFrequency = seconds
	}
}

// SetClock replaces the real clock, e.g. with a fake one in tests.
func SetClock(c clockwork.Clock) Option {
	return func(m *FlowStatsManager) {
		m.clock = c
	}
}

func NewFlowStats(log logger.Logger, options ...Option) *FlowStatsManager {
	m := &FlowStatsManager{
		log:             log,
		clock:           clockwork.NewRealClock(),
		dumpFrequency:   constants.StatsCaptureFrequencySeconds,
		mapTaskWatchers: ordered_map.NewOrderedMap(),
	}
	for _, o := range options {
		o(m)
	}
	return m
}

// AddTaskWatcher creates a TaskWatcher for taskName and saves it.
func (m *FlowStatsManager) AddTaskWatcher(taskName string) *TaskWatcher {
	w := NewTaskWatcher(m.log, m.clock, taskName)
	m.mu.Lock()
	m.mapTaskWatchers.Set(taskName, w)
	m.mu.Unlock()
	return w
}

func (m *FlowStatsManager) StartDumping() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dumping {
		m.log.Debug("stats dumper already running")
		return
	}
	if m.dumpFrequency <= 0 {
		m.log.Debug("stats dumper disabled")
		return
	}
	m.dumping = true
	m.dumpDone = make(chan struct{})
	m.dumpStopped = make(chan struct{})
	interval := time.Second * time.Duration(m.dumpFrequency)
	go func(done, stopped chan struct{}) {
		defer close(stopped)
		m.log.Debug("stats dumper started")
		for {
			select {
			case <-done:
				m.log.Debug("stats dumper stopped")
				return
			case <-m.clock.After(interval):
				m.logStats()
			}
		}
	}(m.dumpDone, m.dumpStopped)
}

// StopDumping stops the dumper and logs the stats one last time,
// only if the dumper was started by a call to StartDumping().
func (m *FlowStatsManager) StopDumping() {
	m.mu.Lock()
	if !m.dumping {
		m.mu.Unlock()
		return
	}
	m.dumping = false
	close(m.dumpDone)
	stopped := m.dumpStopped
	m.mu.Unlock()
	<-stopped
	m.logStats()
}

func (m *FlowStatsManager) logStats() {
	for _, s := range m.GetStats() {
		m.log.Warn(s.String())
	}
}

// GetStats implements StatsFetcher.
func (m *FlowStatsManager) GetStats() []Stats {
	m.mu.Lock()
	watchers := make([]*TaskWatcher, 0, m.mapTaskWatchers.Len())
	iter := m.mapTaskWatchers.IterFunc()
	for kv, ok := iter(); ok; kv, ok = iter() {
		watchers = append(watchers, kv.Value.(*TaskWatcher))
	}
	m.mu.Unlock()
	retval := make([]Stats, 0, len(watchers))
	for _, w := range watchers {
		retval = append(retval, w.RenderStats())
	}
	return retval
}
