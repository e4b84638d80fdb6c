package instance_test

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"q.log/exactsimplex/instance"
	"q.log/exactsimplex/model"
	"q.log/exactsimplex/rational"
)

var ratComparer = cmp.Comparer(func(a, b rational.Rational) bool { return a.Equal(b) })

func TestParse(t *testing.T) {
	lp, err := instance.ParseString("3\n2\n1 -2/3 0\n4 -1\n1 1 1\n\n2/4 0 -7\n")
	require.NoError(t, err)

	assert.Equal(t, 3, lp.NumCols)
	assert.Equal(t, 2, lp.NumRows)
	assert.Equal(t, "-2/3", lp.C[1].String())
	assert.Equal(t, "-1", lp.B[1].String())
	assert.Equal(t, "1/2", lp.A[1][0].String())
	assert.Equal(t, "-7", lp.A[1][2].String())
	require.NoError(t, lp.Validate())
	assert.False(t, lp.NeedsTwoPhases())
}

func TestParseErrors(t *testing.T) {
	tests := map[string]struct {
		in   string
		line int
	}{
		"empty":                {"", 0},
		"bad n":                {"x\n1\n1\n1\n1\n", 1},
		"zero m":               {"1\n0\n1\n\n", 2},
		"two tokens for n":     {"1 2\n1\n1\n1\n1\n", 1},
		"short objective":      {"2\n1\n1\n1\n1 1\n", 3},
		"bad rhs token":        {"1\n1\n1\nfoo\n1\n", 4},
		"missing row":          {"1\n2\n1\n1 1\n1\n", 0},
		"long matrix row":      {"1\n1\n1\n1\n1 2\n", 5},
		"trailing rows":        {"1\n1\n1\n1\n1\n1\n", 6},
		"zero denominator":     {"1\n1\n1/0\n1\n1\n", 3},
		"negative denominator": {"1\n1\n1/-2\n1\n1\n", 3},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := instance.ParseString(tc.in)
			var perr *instance.ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tc.line, perr.Line)
		})
	}

	_, err := instance.ParseString("1\n1\n1/0\n1\n1\n")
	require.ErrorIs(t, err, rational.ErrDivisionByZero)
}

func TestReaderTextFile(t *testing.T) {
	lp, err := instance.NewReader("testdata/scenario_a.lp").ConstructModelFromFile()
	require.NoError(t, err)
	assert.Equal(t, 2, lp.NumCols)
	assert.Equal(t, "3", lp.A[1][1].String())

	_, err = instance.NewReader("testdata/missing.lp").ConstructModelFromFile()
	require.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		lp, err := instance.Generate(rng, instance.GenerateOptions{NbVar: 1 + i%5, NbConst: 1 + i%4, TwoPhase: i%2 == 0, Hollow: i%3 == 0})
		require.NoError(t, err)
		lp.C[0] = rational.MustParse("-7/3")

		var buf bytes.Buffer
		require.NoError(t, instance.Write(&buf, lp))
		back, err := instance.Parse(&buf)
		require.NoError(t, err)

		diff := cmp.Diff(lp, back, ratComparer, cmp.AllowUnexported(model.LinearProgram{}))
		require.Empty(t, diff)
	}
}

func TestWriteFormat(t *testing.T) {
	lp, err := instance.ParseString("2\n1\n1/2 -3\n-4\n6/3 0\n")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, instance.Write(&buf, lp))
	assert.Equal(t, "2\n1\n1/2 -3\n-4\n2 0\n", buf.String())

	require.Error(t, instance.Write(&buf, model.New(0, 0)))
}

func strs(v []rational.Rational) []string {
	out := make([]string, len(v))
	for i, x := range v {
		out[i] = x.String()
	}
	return out
}
