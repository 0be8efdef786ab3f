package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ja7ad/csbench/internal/bench"
)

func TestParseScan(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		want    []string
		wantVar string
		wantErr bool
	}{
		{name: "range with step", arg: "n/100/500/100", wantVar: "n", want: []string{"100", "200", "300", "400", "500"}},
		{name: "range default step", arg: "i/1/3", wantVar: "i", want: []string{"1", "2", "3"}},
		{name: "missing parts", arg: "n/100", wantErr: true},
		{name: "empty name", arg: "/1/3", wantErr: true},
		{name: "reversed range", arg: "n/5/1", wantErr: true},
		{name: "zero step", arg: "n/1/5/0", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseScan(tt.arg)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrBadScan)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantVar, v.Name)
			assert.Equal(t, tt.want, v.Values)
		})
	}
}

func TestParseScanList(t *testing.T) {
	v, err := ParseScanList("k/a,b")
	require.NoError(t, err)
	assert.Equal(t, "k", v.Name)
	assert.Equal(t, []string{"a", "b"}, v.Values)

	_, err = ParseScanList("noslash")
	require.Error(t, err)
}

func TestParseMeasList(t *testing.T) {
	ds, err := ParseMeasList([]string{"wall", "maxrss", "cycles"})
	require.NoError(t, err)
	require.Len(t, ds, 3)
	assert.Equal(t, bench.MeasWall, ds[0].Kind)
	assert.Equal(t, bench.MeasMaxRSS, ds[1].Kind)
	assert.True(t, ds[2].Kind.IsPMC())

	_, err = ParseMeasList([]string{"bogus"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownMeasurement)
}

func TestCustomDescriptorCatShorthand(t *testing.T) {
	d := CustomDescriptor(CustomSpec{Name: "t"})
	assert.Equal(t, bench.MeasCustom, d.Kind)
	assert.Equal(t, "cat", d.ExtractorCmd)
	assert.Equal(t, "none", d.Units)

	d = CustomDescriptor(CustomSpec{Name: "throughput", Units: "ops", Cmd: "tail -1"})
	assert.Equal(t, "ops", d.Units)
	assert.Equal(t, "tail -1", d.ExtractorCmd)
}

func TestSetVariableRejectsSecond(t *testing.T) {
	c := Defaults()
	require.NoError(t, c.SetVariable(bench.Variable{Name: "n", Values: []string{"1"}}))
	err := c.SetVariable(bench.Variable{Name: "k", Values: []string{"a"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateVariable)
}

func TestBuildBenchmarksWithoutVariable(t *testing.T) {
	c := Defaults()
	c.Measurements = DefaultMeasurements()

	benches, groups, err := c.BuildBenchmarks([]string{"true", "false"})
	require.NoError(t, err)
	assert.Len(t, benches, 2)
	assert.Empty(t, groups)
	assert.Equal(t, "true", benches[0].Command)
}

func TestBuildBenchmarksExpandsVariable(t *testing.T) {
	c := Defaults()
	c.Measurements = DefaultMeasurements()
	require.NoError(t, c.SetVariable(bench.Variable{Name: "n", Values: []string{"10", "20", "30"}}))

	benches, groups, err := c.BuildBenchmarks([]string{"echo {n}"})
	require.NoError(t, err)
	require.Len(t, benches, 3)
	require.Len(t, groups, 1)
	assert.Equal(t, []int{0, 1, 2}, groups[0].BenchIndices)
	assert.Equal(t, "echo 10", benches[0].Command)
	assert.Equal(t, "echo 30", benches[2].Command)
}

func TestBuildBenchmarksNoCommands(t *testing.T) {
	c := Defaults()
	_, _, err := c.BuildBenchmarks(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoCommands)
}

func TestApplyRenames(t *testing.T) {
	c := Defaults()
	c.RenameByIdx = map[int]string{2: "slow"}
	benches, _, err := c.BuildBenchmarks([]string{"true", "false"})
	require.NoError(t, err)
	assert.Equal(t, "slow", benches[1].DisplayName)

	c = Defaults()
	c.RenameAll = []string{"a"}
	_, _, err = c.BuildBenchmarks([]string{"true", "false"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadRename)
}

func TestResolveBaseline(t *testing.T) {
	c := Defaults()
	benches, _, err := c.BuildBenchmarks([]string{"true", "false"})
	require.NoError(t, err)

	idx, err := c.ResolveBaseline(benches)
	require.NoError(t, err)
	assert.Equal(t, -1, idx)

	c.BaselineIdx = 1
	idx, err = c.ResolveBaseline(benches)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	c.BaselineIdx = 5
	_, err = c.ResolveBaseline(benches)
	require.Error(t, err)

	c = Defaults()
	c.BaselineName = "false"
	idx, err = c.ResolveBaseline(benches)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
}

func TestCommonArgsAppended(t *testing.T) {
	c := Defaults()
	c.CommonArgs = "--fast"
	benches, _, err := c.BuildBenchmarks([]string{"sort data.txt"})
	require.NoError(t, err)
	assert.Equal(t, "sort data.txt --fast", benches[0].Command)
}
