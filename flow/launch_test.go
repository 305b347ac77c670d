package flow

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/relloyd/aorist/logger"
	"github.com/relloyd/aorist/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() logger.Logger {
	return logger.NewLogger("test", "error", false)
}

// testFlow returns a -> b -> d and an independent c.
func testFlow(t *testing.T) *Flow {
	f := NewFlow("test")
	require.NoError(t, f.AddNode(&ShellTask{TaskName: "a", Command: "cmd a"}))
	require.NoError(t, f.AddNode(&ShellTask{TaskName: "b", Command: "cmd b"}))
	require.NoError(t, f.AddNode(&ShellTask{TaskName: "c", Command: "cmd c"}))
	require.NoError(t, f.AddNode(&ConstantTask{TaskName: "d", Value: "Done"}))
	require.NoError(t, f.AddEdge("a", "b"))
	require.NoError(t, f.AddEdge("b", "d"))
	return f
}

func statusesOf(m *stats.FlowStatsManager) map[string]string {
	retval := make(map[string]string)
	for _, s := range m.GetStats() {
		retval[s.TaskName] = s.StatusText
	}
	return retval
}

func TestLaunchRunsEverything(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	runner := NewMockCommandRunner(ctrl)
	mu := sync.Mutex{}
	ran := make([]string, 0)
	record := func(ctx context.Context, command string, stdout io.Writer, stderr io.Writer) (int, error) {
		mu.Lock()
		ran = append(ran, command)
		mu.Unlock()
		_, _ = stdout.Write([]byte("output of " + command + "\n"))
		return 0, nil
	}
	for _, c := range []string{"cmd a", "cmd b", "cmd c"} {
		runner.EXPECT().Run(gomock.Any(), c, gomock.Any(), gomock.Any()).DoAndReturn(record).Times(1)
	}
	m := stats.NewFlowStats(testLogger(), stats.SetStatsDumpFrequency(0))
	err := Launch(context.Background(), testLogger(), testFlow(t), LaunchOptions{Workers: 2, Runner: runner, Stats: m})
	require.NoError(t, err)
	assert.Len(t, ran, 3)
	idx := func(c string) int {
		for i, r := range ran {
			if r == c {
				return i
			}
		}
		return -1
	}
	assert.True(t, idx("cmd a") < idx("cmd b"))
	assert.Equal(t, map[string]string{"a": "complete", "b": "complete", "c": "complete", "d": "complete"}, statusesOf(m))
}

func TestLaunchSkipsDependentsOfFailedTask(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	runner := NewMockCommandRunner(ctrl)
	runner.EXPECT().Run(gomock.Any(), "cmd a", gomock.Any(), gomock.Any()).Return(2, errors.New("exit status 2"))
	runner.EXPECT().Run(gomock.Any(), "cmd c", gomock.Any(), gomock.Any()).Return(0, nil)
	m := stats.NewFlowStats(testLogger(), stats.SetStatsDumpFrequency(0))
	err := Launch(context.Background(), testLogger(), testFlow(t), LaunchOptions{Workers: 1, Runner: runner, Stats: m})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task a failed with exit code 2")
	assert.Equal(t, map[string]string{"a": "failed", "b": "skipped", "c": "complete", "d": "skipped"}, statusesOf(m))
}

func TestLaunchStopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	runner := NewMockCommandRunner(ctrl)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner.EXPECT().Run(gomock.Any(), "cmd a", gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, command string, stdout io.Writer, stderr io.Writer) (int, error) {
			cancel()
			<-ctx.Done()
			return -1, ctx.Err()
		})
	f := NewFlow("cancel")
	require.NoError(t, f.AddNode(&ShellTask{TaskName: "a", Command: "cmd a"}))
	require.NoError(t, f.AddNode(&ShellTask{TaskName: "b", Command: "cmd b"}))
	require.NoError(t, f.AddEdge("a", "b"))
	m := stats.NewFlowStats(testLogger(), stats.SetStatsDumpFrequency(0))
	err := Launch(ctx, testLogger(), f, LaunchOptions{Runner: runner, Stats: m})
	require.Error(t, err)
	assert.Equal(t, context.Canceled, errors.Cause(err))
	assert.Equal(t, "skipped", statusesOf(m)["b"])
}

func TestLaunchFlowRegistersRuns(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	runner := NewMockCommandRunner(ctrl)
	runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(0, nil).Times(3)
	runs := NewSafeMapRunInfo()

	id, err := LaunchFlow(context.Background(), testLogger(), runs, testFlow(t), LaunchOptions{Runner: runner}, 0, true)
	require.NoError(t, err)
	ri, ok := runs.Load(id)
	require.True(t, ok)
	assert.Equal(t, StatusComplete, ri.Status.Status)
	assert.True(t, ri.Status.IsFinished())
	assert.Len(t, ri.Stats.GetStats(), 4)
	assert.Len(t, runs.List(), 1)
	assert.Error(t, runs.Stop(id), "already complete")
	assert.Error(t, runs.Stop("nope"))

	_, err = LaunchFlow(context.Background(), testLogger(), runs, NewFlow("empty"), LaunchOptions{Runner: runner}, 0, true)
	assert.Error(t, err)
}

func TestLaunchFlowInBackgroundCanBeStopped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	runner := NewMockCommandRunner(ctrl)
	runner.EXPECT().Run(gomock.Any(), "cmd a", gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, command string, stdout io.Writer, stderr io.Writer) (int, error) {
			<-ctx.Done()
			return -1, ctx.Err()
		})
	f := NewFlow("slow")
	require.NoError(t, f.AddNode(&ShellTask{TaskName: "a", Command: "cmd a"}))
	runs := NewSafeMapRunInfo()
	id, err := LaunchFlow(context.Background(), testLogger(), runs, f, LaunchOptions{Runner: runner}, 0, false)
	require.NoError(t, err)
	require.NoError(t, runs.Stop(id))
	deadline := time.Now().Add(5 * time.Second)
	var ri RunInfo
	for time.Now().Before(deadline) {
		ri, _ = runs.Load(id)
		if ri.Status.IsFinished() {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, StatusShutdown, ri.Status.Status)
	assert.NotEmpty(t, ri.Status.Error)
}

func TestShellRunner(t *testing.T) {
	out := &bytes.Buffer{}
	code, err := ShellRunner{Shell: "sh"}.Run(context.Background(), "echo hi; echo oops >&2", out, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "hi\n", out.String())

	code, err = ShellRunner{Shell: "sh", Env: []string{"AORIST_TEST_CODE=3"}}.Run(context.Background(), "exit $AORIST_TEST_CODE", io.Discard, io.Discard)
	assert.Error(t, err)
	assert.Equal(t, 3, code)
}

func TestLineWriter(t *testing.T) {
	lines := make([]string, 0)
	w := &lineWriter{log: func(args ...interface{}) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, a.(string))
		}
		lines = append(lines, strings.Join(parts, ""))
	}}
	_, _ = w.Write([]byte("one\ntw"))
	_, _ = w.Write([]byte("o\nthree"))
	w.Flush()
	assert.Equal(t, []string{"one", "two", "three"}, lines)
}

func TestStatusJSON(t *testing.T) {
	b, err := StatusCompleteWithError.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"complete with error"`, string(b))
	_, err = Status(42).MarshalJSON()
	assert.Error(t, err)
}
