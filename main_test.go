package main

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"q.log/exactsimplex/instance"
	"q.log/exactsimplex/rational"
	"q.log/exactsimplex/simplex"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSolveReport(t *testing.T) {
	out, err := execute(t, "-r", "Bland", "testdata/scenario_a.lp")
	require.NoError(t, err)

	assert.Contains(t, out, "Maximize  ")
	assert.Contains(t, out, "The point (0,...,0) is a feasible solution. Only one phase is needed\n")
	assert.Contains(t, out, "An optimal solution is : x_1 = 2, x_2 = 0\n")
	assert.Contains(t, out, "The value of the objective for this solution is : 6\n")
	assert.Contains(t, out, "The number of pivots is : 1\n")
	assert.Contains(t, out, "The pivot rule used : Bland\n")
	assert.NotContains(t, out, "The initial tableau is")
}

func TestSolveOutcomes(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"testdata/infeasible.lp", "This linear program is INFEASIBLE\n"},
		{"testdata/unbounded.lp", "This linear program is UNBOUNDED\n"},
	}
	for _, tt := range tests {
		t.Run(filepath.Base(tt.file), func(t *testing.T) {
			for _, rule := range simplex.PivotRules() {
				out, err := execute(t, "--rule", rule, "--seed", "3", tt.file)
				require.NoError(t, err)
				assert.Contains(t, out, tt.want)
				assert.NotContains(t, out, "Only one phase is needed")
				assert.NotContains(t, out, "An optimal solution")
			}
		})
	}
}

func TestSolveVerbose(t *testing.T) {
	out, err := execute(t, "-v", "--no-color", "-r", "MaxCoeff", "testdata/scenario_a.lp")
	require.NoError(t, err)
	assert.Contains(t, out, "The initial tableau is :")
	assert.Contains(t, out, " |  ")
}

func TestSolveInvalidRule(t *testing.T) {
	// the rule is checked before the file is opened
	_, err := execute(t, "-r", "Steepest", "testdata/missing.lp")
	require.ErrorIs(t, err, simplex.ErrInvalidPivotRule)
	assert.Contains(t, err.Error(), "Random, Bland, MaxCoeff, Custom")
}

func TestHelpNamesMPSFormat(t *testing.T) {
	// ReadMPS reads fixed format files
	assert.Contains(t, newRootCmd().Long, "fixed format MPS file")
}

func TestSolveMissingFile(t *testing.T) {
	_, err := execute(t, "testdata/missing.lp")
	require.Error(t, err)
}

func TestSolveVerifyAndMetrics(t *testing.T) {
	out, err := execute(t, "-r", "Custom", "--verify", "--metrics", "testdata/scenario_a.lp")
	require.NoError(t, err)
	assert.Contains(t, out, "reference solver: OPTIMAL, objective ")
	assert.Contains(t, out, `exactsimplex_solves_total{rule="Custom",status="OPTIMAL"} 1`)
	assert.Contains(t, out, `exactsimplex_pivots_count{rule="Custom"} 1`)
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "random.lp")
	_, err := execute(t, "generate", file, "-n", "4", "-m", "3", "--twophase", "--seed", "5")
	require.NoError(t, err)

	lp, err := instance.NewReader(file).ConstructModelFromFile()
	require.NoError(t, err)
	assert.Equal(t, 4, lp.NumCols)
	assert.Equal(t, 3, lp.NumRows)

	again := filepath.Join(dir, "again.lp")
	_, err = execute(t, "generate", again, "-n", "4", "-m", "3", "--twophase", "--seed", "5")
	require.NoError(t, err)
	other, err := instance.NewReader(again).ConstructModelFromFile()
	require.NoError(t, err)
	assert.Equal(t, lp.String(), other.String())
}

func TestGenerateKleeMinty(t *testing.T) {
	file := filepath.Join(t.TempDir(), "cube.lp")
	_, err := execute(t, "generate", file, "--klee-minty", "3")
	require.NoError(t, err)

	out, err := execute(t, "-r", "MaxCoeff", file)
	require.NoError(t, err)
	assert.Contains(t, out, "The value of the objective for this solution is : 125\n")
	assert.Contains(t, out, "The number of pivots is : 7\n")
}

func TestBenchKleeMinty(t *testing.T) {
	out, err := execute(t, "bench", "--klee-minty", "3", "--rules", "MaxCoeff,Bland")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"RULE", "SOLVES", "OPTIMAL", "INFEASIBLE", "UNBOUNDED", "MEAN", "PIVOTS", "MAX", "PIVOTS", "TIME"}, strings.Fields(lines[0]))

	maxCoeff := strings.Fields(lines[1])
	require.Len(t, maxCoeff, 8)
	assert.Equal(t, []string{"MaxCoeff", "3", "3", "0", "0", "3.67", "7"}, maxCoeff[:7])
	assert.Equal(t, "Bland", strings.Fields(lines[2])[0])
}

func TestBenchRandom(t *testing.T) {
	out, err := execute(t, "bench", "-c", "6", "-n", "3", "-m", "3", "--twophase", "--seed", "2", "--metrics")
	require.NoError(t, err)

	for _, rule := range simplex.PivotRules() {
		assert.Contains(t, out, `exactsimplex_solves_total{rule="`+rule+`"`)
	}
	assert.Contains(t, out, `exactsimplex_pivots_count{rule="Bland"} 6`)
}

func TestBenchInvalidRule(t *testing.T) {
	_, err := execute(t, "bench", "--rules", "Bland,Dantzig")
	require.ErrorIs(t, err, simplex.ErrInvalidPivotRule)
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	writeReport(&buf, &simplex.Result{
		Status:    simplex.Optimal,
		Values:    []rational.Rational{rational.MustParse("1/3"), rational.Zero},
		Objective: rational.MustParse("-2/3"),
		Pivots:    4,
		Rule:      simplex.Custom,
		TwoPhases: true,
	}, 0)

	want := "An optimal solution is : x_1 = 1/3, x_2 = 0\n" +
		"The value of the objective for this solution is : -2/3\n" +
		"The number of pivots is : 4\n" +
		"The pivot rule used : Custom\n" +
		"Solved in 0s\n"
	assert.Equal(t, want, buf.String())
}
