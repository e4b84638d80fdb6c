package instance

import (
	"math/big"
	"math/rand"

	"github.com/pkg/errors"

	"q.log/exactsimplex/model"
	"q.log/exactsimplex/rational"
)

type GenerateOptions struct {
	NbVar   int
	NbConst int
	// TwoPhase draws entries from [-100, 100] instead of [0, 100], so some
	// right-hand sides are usually negative.
	TwoPhase bool
	// Hollow zeroes each objective and matrix entry with probability 1/2.
	Hollow bool
}

// Generate returns a random program with integer coefficients.
func Generate(rng *rand.Rand, opts GenerateOptions) (*model.LinearProgram, error) {
	if opts.NbVar <= 0 || opts.NbConst <= 0 {
		return nil, errors.Errorf("need a positive number of variables and constraints, got n=%d m=%d", opts.NbVar, opts.NbConst)
	}
	lo, hi := 0, 100
	if opts.TwoPhase {
		lo = -100
	}
	draw := func(hollowable bool) rational.Rational {
		if hollowable && opts.Hollow && rng.Intn(2) == 1 {
			return rational.Zero
		}
		return rational.FromInt(int64(lo + rng.Intn(hi-lo+1)))
	}

	lp := model.New(opts.NbConst, opts.NbVar)
	for c := 0; c < opts.NbVar; c++ {
		lp.C[c] = draw(true)
	}
	for r := 0; r < opts.NbConst; r++ {
		lp.B[r] = draw(false)
	}
	for r := 0; r < opts.NbConst; r++ {
		for c := 0; c < opts.NbVar; c++ {
			lp.A[r][c] = draw(true)
		}
	}
	return lp, nil
}

// KleeMinty returns the d-dimensional Klee-Minty cube
//
//	maximize  sum_j 2^(d-j) x_j
//	s.t.      sum_{j<i} 2^(i-j+1) x_j + x_i <= 5^i   for i = 1..d
//
// whose optimum is 5^d and on which the largest coefficient rule visits all
// 2^d vertices.
func KleeMinty(d int) (*model.LinearProgram, error) {
	if d <= 0 {
		return nil, errors.Errorf("klee-minty dimension must be positive, got %d", d)
	}
	pow := func(base, exp int) rational.Rational {
		p := new(big.Int).Exp(big.NewInt(int64(base)), big.NewInt(int64(exp)), nil)
		return rational.FromBig(new(big.Rat).SetInt(p))
	}

	lp := model.New(d, d)
	for j := 1; j <= d; j++ {
		lp.C[j-1] = pow(2, d-j)
	}
	for i := 1; i <= d; i++ {
		lp.B[i-1] = pow(5, i)
		for j := 1; j < i; j++ {
			lp.A[i-1][j-1] = pow(2, i-j+1)
		}
		lp.A[i-1][i-1] = rational.One
	}
	return lp, nil
}
