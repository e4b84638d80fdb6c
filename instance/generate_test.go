package instance_test

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"q.log/exactsimplex/instance"
	"q.log/exactsimplex/rational"
)

func TestGenerateRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	lo, hi := rational.FromInt(-100), rational.FromInt(100)

	for _, twoPhase := range []bool{false, true} {
		lp, err := instance.Generate(rng, instance.GenerateOptions{NbVar: 6, NbConst: 5, TwoPhase: twoPhase})
		require.NoError(t, err)
		require.NoError(t, lp.Validate())

		all := append(append([]rational.Rational{}, lp.C...), lp.B...)
		for _, row := range lp.A {
			all = append(all, row...)
		}
		for _, v := range all {
			assert.False(t, v.Less(lo) || hi.Less(v), "value %v out of range", v)
			if !twoPhase {
				assert.GreaterOrEqual(t, v.Sign(), 0)
			}
			assert.Equal(t, int64(1), v.Denom().Int64())
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	opts := instance.GenerateOptions{NbVar: 4, NbConst: 3, TwoPhase: true, Hollow: true}
	a, err := instance.Generate(rand.New(rand.NewSource(42)), opts)
	require.NoError(t, err)
	b, err := instance.Generate(rand.New(rand.NewSource(42)), opts)
	require.NoError(t, err)
	assert.Equal(t, a.String(), b.String())
}

func TestGenerateHollow(t *testing.T) {
	lp, err := instance.Generate(rand.New(rand.NewSource(3)), instance.GenerateOptions{NbVar: 40, NbConst: 40, Hollow: true})
	require.NoError(t, err)
	zeros := 0
	for _, row := range lp.A {
		for _, v := range row {
			if v.IsZero() {
				zeros++
			}
		}
	}
	// roughly half of the 1600 entries
	assert.Greater(t, zeros, 600)
	assert.Less(t, zeros, 1000)
}

func TestGenerateInvalid(t *testing.T) {
	_, err := instance.Generate(rand.New(rand.NewSource(1)), instance.GenerateOptions{NbVar: 0, NbConst: 1})
	require.Error(t, err)
}

func TestKleeMinty(t *testing.T) {
	lp, err := instance.KleeMinty(3)
	require.NoError(t, err)

	want := "3\n3\n4 2 1\n5 25 125\n1 0 0\n4 1 0\n8 4 1\n"
	var sb strings.Builder
	require.NoError(t, instance.Write(&sb, lp))
	assert.Equal(t, want, sb.String())

	_, err = instance.KleeMinty(0)
	require.Error(t, err)
}
