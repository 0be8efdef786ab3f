package runner

import (
	"bytes"
	"testing"

	"github.com/ja7ad/csbench/internal/bench"
	"github.com/ja7ad/csbench/internal/sampler"
	"github.com/ja7ad/csbench/internal/stopper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTaskWithShellCommand(t *testing.T, name, cmd string, runs int) *Task {
	t.Helper()
	b := &bench.Benchmark{
		DisplayName: name,
		UseShell:    true,
		Command:     cmd,
		Measurements: []bench.MeasurementDescriptor{
			{Kind: bench.MeasWall, Name: "wall"},
		},
	}
	c, err := sampler.NewCollector(sampler.Params{UseShell: true, Command: cmd}, b)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return NewTask(b, c, stopper.Policy{TimeLimit: -1}, stopper.Policy{ExactRuns: runs})
}

func TestSessionRunCompletesAllTasks(t *testing.T) {
	taskA := newTaskWithShellCommand(t, "bench-a", "true", 3)
	taskB := newTaskWithShellCommand(t, "bench-b", "true", 3)

	var buf bytes.Buffer
	sess := &Session{
		Tasks:       []*Task{taskA, taskB},
		WorkerCount: 2,
		NResamples:  50,
		Progress:    &buf,
		ShowBar:     true,
	}

	err := sess.Run()
	require.NoError(t, err)
	assert.Equal(t, 3, taskA.Bench.RunCount)
	assert.Equal(t, 3, taskB.Bench.RunCount)
	assert.True(t, taskA.Record.Finished())
	assert.True(t, taskB.Record.Finished())
}

func TestSessionAnalyzeProducesPerBenchmarkDistributions(t *testing.T) {
	taskA := newTaskWithShellCommand(t, "bench-a", "true", 5)
	taskB := newTaskWithShellCommand(t, "bench-b", "true", 5)

	sess := &Session{
		Tasks:       []*Task{taskA, taskB},
		WorkerCount: 2,
		NResamples:  50,
	}
	require.NoError(t, sess.Run())

	rep, err := sess.Analyze()
	require.NoError(t, err)
	require.Len(t, rep.Benchmarks, 2)
	for _, br := range rep.Benchmarks {
		assert.False(t, br.Failed)
		mr, ok := br.Measurements["wall"]
		require.True(t, ok)
		assert.Len(t, mr.Samples, 5)
	}
}

func TestSessionAnalyzeGroupsByVariable(t *testing.T) {
	taskA := newTaskWithShellCommand(t, "sleep-small", "true", 5)
	taskB := newTaskWithShellCommand(t, "sleep-big", "true", 5)

	sess := &Session{
		Tasks: []*Task{taskA, taskB},
		Groups: []bench.Group{
			{DisplayName: "compare", BenchIndices: []int{0, 1}},
		},
		Variable:    bench.Variable{Name: "n", Values: []string{"1", "2"}},
		WorkerCount: 2,
		NResamples:  50,
		BaselineIdx: -1,
	}
	require.NoError(t, sess.Run())

	rep, err := sess.Analyze()
	require.NoError(t, err)
	require.Len(t, rep.Groups, 1)
	g := rep.Groups[0]
	assert.Equal(t, "wall", g.MeasurementName)
	assert.Equal(t, "n", g.VariableName)
	require.NotNil(t, g.AvgSpeedup)
	require.NotNil(t, g.SumSpeedup)
	assert.Len(t, g.BenchOrder, 2)
}

func TestSessionRunDoesNotAbortSiblingsOnFailure(t *testing.T) {
	good := newTaskWithShellCommand(t, "good", "true", 3)
	bad := newTaskWithShellCommand(t, "bad", "false", 3)

	sess := &Session{
		Tasks:       []*Task{good, bad},
		WorkerCount: 2,
		NResamples:  50,
	}
	err := sess.Run()
	require.NoError(t, err)
	assert.True(t, bad.Bench.Failed)
	assert.False(t, good.Bench.Failed)
	assert.Equal(t, 3, good.Bench.RunCount)
}
