package instance

import (
	"math"
	"runtime"

	"github.com/lukpank/go-glpk/glpk"
	"github.com/pkg/errors"

	"q.log/exactsimplex/model"
	"q.log/exactsimplex/rational"
)

// ErrUnsupported is returned for MPS models that cannot be expressed as
// max c·x s.t. Ax <= b, x >= 0.
var ErrUnsupported = errors.New("instance: unsupported model")

// ReadMPS reads a fixed MPS file with GLPK and returns it in canonical form:
// minimization becomes maximization of -c, >= rows are negated, equality and
// ranged rows are split into two <= rows, and finite column bounds become
// extra rows.
func ReadMPS(filename string) (*model.LinearProgram, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	lp := glpk.New()
	defer lp.Delete()
	if err := lp.ReadMPS(glpk.MPS_FILE, nil, filename); err != nil {
		return nil, errors.Wrapf(err, "reading mps file %s", filename)
	}

	numCols := lp.NumCols()
	if numCols == 0 {
		return nil, errors.Wrapf(ErrUnsupported, "%s has no columns", filename)
	}
	m := model.New(0, numCols)

	//populate obj function
	sense := rational.One
	if lp.ObjDir() == glpk.MIN {
		sense = rational.FromInt(-1)
	}
	for c := 0; c < numCols; c++ {
		coef, err := rational.FromFloat64(lp.ObjCoef(c + 1))
		if err != nil {
			return nil, errors.Wrapf(err, "objective coefficient of column %d", c+1)
		}
		m.C[c] = coef.Mul(sense)
	}

	//populate constraints
	for r := 1; r <= lp.NumRows(); r++ {
		rowVec := make([]rational.Rational, numCols)
		idxs, row := lp.MatRow(r)
		for i, v := range idxs {
			if v == 0 {
				continue
			}
			coef, err := rational.FromFloat64(row[i])
			if err != nil {
				return nil, errors.Wrapf(err, "row %d", r)
			}
			rowVec[v-1] = coef
		}

		lb, ub := lp.RowLB(r), lp.RowUB(r)
		if ub != math.MaxFloat64 {
			if err := addBound(m, rowVec, ub, false); err != nil {
				return nil, errors.Wrapf(err, "row %d", r)
			}
		}
		if lb != -math.MaxFloat64 {
			if err := addBound(m, rowVec, lb, true); err != nil {
				return nil, errors.Wrapf(err, "row %d", r)
			}
		}
	}

	//column bounds, x >= 0 is implicit
	for c := 0; c < numCols; c++ {
		lb, ub := lp.ColLB(c+1), lp.ColUB(c+1)
		if lb < 0 {
			return nil, errors.Wrapf(ErrUnsupported, "column %d has lower bound %v", c+1, lb)
		}
		unit := make([]rational.Rational, numCols)
		unit[c] = rational.One
		if lb > 0 {
			if err := addBound(m, unit, lb, true); err != nil {
				return nil, errors.Wrapf(err, "column %d", c+1)
			}
		}
		if ub != math.MaxFloat64 {
			if err := addBound(m, unit, ub, false); err != nil {
				return nil, errors.Wrapf(err, "column %d", c+1)
			}
		}
	}

	if m.NumRows == 0 {
		return nil, errors.Wrapf(ErrUnsupported, "%s has no constraints", filename)
	}
	return m, nil
}

// addBound appends rowVec·x <= bound, or rowVec·x >= bound when lower is set.
func addBound(m *model.LinearProgram, rowVec []rational.Rational, bound float64, lower bool) error {
	rhs, err := rational.FromFloat64(bound)
	if err != nil {
		return err
	}
	if err := m.AddRow(rowVec, rhs); err != nil {
		return err
	}
	if lower {
		return m.MultiplyConstraint(m.NumRows-1, rational.FromInt(-1))
	}
	return nil
}
