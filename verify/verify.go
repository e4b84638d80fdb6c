// Package verify checks exact simplex results against gonum's floating point
// simplex implementation.
package verify

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"q.log/exactsimplex/model"
	"q.log/exactsimplex/simplex"
)

// DefaultTolerance is used when CrossCheck is given a non-positive tolerance.
const DefaultTolerance = 1e-7

var ErrMismatch = errors.New("exact and reference solutions disagree")

// Report holds what the reference solver found.
type Report struct {
	Status    simplex.Status
	Objective float64
	// Residual is the largest violation of Ax <= b or x >= 0 by the exact
	// solution, zero when the exact result is not optimal.
	Residual float64
}

func (r *Report) String() string {
	if r.Status != simplex.Optimal {
		return fmt.Sprintf("reference solver: %v", r.Status)
	}
	return fmt.Sprintf("reference solver: %v, objective %g, residual %g", r.Status, r.Objective, r.Residual)
}

// CrossCheck solves lp again in float64 and compares the outcome with res.
// Disagreements wrap ErrMismatch; failures of the reference solver itself
// are returned as other errors.
func CrossCheck(prog *model.LinearProgram, res *simplex.Result, tol float64) (*Report, error) {
	if tol <= 0 {
		tol = DefaultTolerance
	}
	if err := prog.Validate(); err != nil {
		return nil, err
	}

	rep, err := reference(prog)
	if err != nil {
		return nil, err
	}
	if rep.Status != res.Status {
		return rep, errors.Wrapf(ErrMismatch, "exact solver reports %v, reference %v", res.Status, rep.Status)
	}
	if res.Status != simplex.Optimal {
		return rep, nil
	}

	exact, _ := res.Objective.Float64()
	if math.Abs(exact-rep.Objective) > tol*(1+math.Abs(rep.Objective)) {
		return rep, errors.Wrapf(ErrMismatch, "objective %g, reference %g", exact, rep.Objective)
	}
	rep.Residual = residual(prog, res)
	if rep.Residual > tol {
		return rep, errors.Wrapf(ErrMismatch, "solution violates the constraints by %g", rep.Residual)
	}
	return rep, nil
}

// reference builds the equality form [A I][x;s] = b and minimizes -c with
// lp.Simplex. All-zero columns are dropped since lp.Simplex rejects them; a
// dropped column with a positive cost makes any feasible program unbounded.
func reference(prog *model.LinearProgram) (*Report, error) {
	m, n := prog.NumRows, prog.NumCols

	var keep []int
	freeRay := false
	for j := 0; j < n; j++ {
		zero := true
		for i := 0; i < m; i++ {
			if !prog.A[i][j].IsZero() {
				zero = false
				break
			}
		}
		if !zero {
			keep = append(keep, j)
			continue
		}
		if prog.C[j].Sign() > 0 {
			freeRay = true
		}
	}

	cols := len(keep) + m
	c := make([]float64, cols)
	for k, j := range keep {
		c[k], _ = prog.C[j].Neg().Float64()
	}
	A := mat.NewDense(m, cols, nil)
	b := make([]float64, m)
	for i := 0; i < m; i++ {
		sign := 1.0
		b[i], _ = prog.B[i].Float64()
		if b[i] < 0 {
			sign = -1
			b[i] = -b[i]
		}
		for k, j := range keep {
			v, _ := prog.A[i][j].Float64()
			A.Set(i, k, sign*v)
		}
		A.Set(i, len(keep)+i, sign)
	}

	z, _, err := lp.Simplex(c, A, b, 0, nil)
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return &Report{Status: simplex.Infeasible}, nil
	case errors.Is(err, lp.ErrUnbounded):
		return &Report{Status: simplex.Unbounded}, nil
	case err != nil:
		return nil, errors.Wrap(err, "reference simplex")
	}
	if freeRay {
		return &Report{Status: simplex.Unbounded}, nil
	}
	return &Report{Status: simplex.Optimal, Objective: -z}, nil
}

func residual(prog *model.LinearProgram, res *simplex.Result) float64 {
	m, n := prog.NumRows, prog.NumCols
	A := mat.NewDense(m, n, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			v, _ := prog.A[i][j].Float64()
			A.Set(i, j, v)
		}
	}
	x := mat.NewVecDense(n, nil)
	worst := 0.0
	for j, v := range res.Values {
		f, _ := v.Float64()
		x.SetVec(j, f)
		worst = math.Max(worst, -f)
	}

	var ax mat.VecDense
	ax.MulVec(A, x)
	for i := 0; i < m; i++ {
		b, _ := prog.B[i].Float64()
		worst = math.Max(worst, ax.AtVec(i)-b)
	}
	return worst
}
