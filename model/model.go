package model

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"q.log/exactsimplex/rational"
)

var ErrShapeMismatch = errors.New("model: shape mismatch")

// LinearProgram is a program in canonical form:
//
//	maximize  C·x
//	s.t.      A x <= B
//	          x >= 0
type LinearProgram struct {
	//C objective function coefficients
	C []rational.Rational

	//A constraints matrix, NumRows x NumCols
	A [][]rational.Rational

	//B constraints rhs
	B []rational.Rational

	NumRows int
	NumCols int

	needsTwoPhases bool
}

// New returns a program with numCols variables and numRows constraints whose
// coefficients are all zero.
func New(numRows, numCols int) *LinearProgram {
	a := make([][]rational.Rational, numRows)
	for r := 0; r < numRows; r++ {
		a[r] = make([]rational.Rational, numCols)
	}
	return &LinearProgram{
		C:       make([]rational.Rational, numCols),
		A:       a,
		B:       make([]rational.Rational, numRows),
		NumRows: numRows,
		NumCols: numCols,
	}
}

func (lp *LinearProgram) SetC(cVec []rational.Rational) error {
	if len(cVec) != lp.NumCols {
		return errors.Wrap(ErrShapeMismatch, "mismatch number of variables")
	}

	lp.C = append([]rational.Rational(nil), cVec...)

	return nil
}

func (lp *LinearProgram) SetB(bVec []rational.Rational) error {
	if len(bVec) != lp.NumRows {
		return errors.Wrap(ErrShapeMismatch, "mismatch number of constraints")
	}

	lp.B = append([]rational.Rational(nil), bVec...)

	return nil
}

// SetA replaces the constraint matrix with a copy of rows.
func (lp *LinearProgram) SetA(rows [][]rational.Rational) error {
	if len(rows) != lp.NumRows {
		return errors.Wrap(ErrShapeMismatch, "mismatch number of constraints")
	}
	a := make([][]rational.Rational, lp.NumRows)
	for r, row := range rows {
		if len(row) != lp.NumCols {
			return errors.Wrapf(ErrShapeMismatch, "mismatch number of variables in row %d", r+1)
		}
		a[r] = append([]rational.Rational(nil), row...)
	}

	lp.A = a

	return nil
}

// AddRow appends the constraint rVec·x <= rhs.
func (lp *LinearProgram) AddRow(rVec []rational.Rational, rhs rational.Rational) error {
	if len(rVec) != lp.NumCols {
		return errors.Wrap(ErrShapeMismatch, "mismatch number of columns, i.e. wrong len of rVec")
	}

	lp.A = append(lp.A, append([]rational.Rational(nil), rVec...))
	lp.B = append(lp.B, rhs)

	lp.NumRows++
	return nil
}

// MultiplyConstraint scales row r and its rhs by mul.
func (lp *LinearProgram) MultiplyConstraint(r int, mul rational.Rational) error {
	if r < 0 || r >= lp.NumRows {
		return errors.Errorf("row %d does not exist", r)
	}

	for c := 0; c < lp.NumCols; c++ {
		lp.A[r][c] = lp.A[r][c].Mul(mul)
	}
	lp.B[r] = lp.B[r].Mul(mul)
	return nil
}

// Validate checks that the slices agree with NumRows and NumCols.
func (lp *LinearProgram) Validate() error {
	if lp.NumCols <= 0 || lp.NumRows <= 0 {
		return errors.Wrapf(ErrShapeMismatch, "need at least one variable and one constraint, got %d and %d", lp.NumCols, lp.NumRows)
	}
	if len(lp.C) != lp.NumCols {
		return errors.Wrap(ErrShapeMismatch, "mismatch number of variables")
	}
	if len(lp.B) != lp.NumRows || len(lp.A) != lp.NumRows {
		return errors.Wrap(ErrShapeMismatch, "mismatch number of constraints")
	}
	for r, row := range lp.A {
		if len(row) != lp.NumCols {
			return errors.Wrapf(ErrShapeMismatch, "mismatch number of variables in row %d", r+1)
		}
	}
	return nil
}

// NeedsTwoPhases reports whether some rhs entry is negative. It is set when a
// tableau is built from the program.
func (lp *LinearProgram) NeedsTwoPhases() bool {
	return lp.needsTwoPhases
}

func (lp *LinearProgram) SetNeedsTwoPhases(v bool) {
	lp.needsTwoPhases = v
}

// Clone returns a deep copy. The two-phase flag is not copied.
func (lp *LinearProgram) Clone() *LinearProgram {
	c := New(lp.NumRows, lp.NumCols)
	copy(c.C, lp.C)
	copy(c.B, lp.B)
	for r := 0; r < lp.NumRows; r++ {
		copy(c.A[r], lp.A[r])
	}
	return c
}

func (lp *LinearProgram) String() string {
	var sb strings.Builder
	sb.WriteString("Maximize  ")
	sb.WriteString(linearTerm(lp.C))
	sb.WriteString("\nSuch that ")
	for r := 0; r < lp.NumRows; r++ {
		if r > 0 {
			sb.WriteString("          ")
		}
		sb.WriteString(linearTerm(lp.A[r]))
		fmt.Fprintf(&sb, " <= %v\n", lp.B[r])
	}
	vars := make([]string, lp.NumCols)
	for c := 0; c < lp.NumCols; c++ {
		vars[c] = fmt.Sprintf("x_%d", c+1)
	}
	sb.WriteString("          ")
	sb.WriteString(strings.Join(vars, ", "))
	sb.WriteString(" are non-negative\n")
	return sb.String()
}

// linearTerm renders coefs as "3x_1 - 1/2x_3", skipping zeros.
func linearTerm(coefs []rational.Rational) string {
	var sb strings.Builder
	for c, v := range coefs {
		switch {
		case v.IsZero():
			continue
		case sb.Len() == 0:
			fmt.Fprintf(&sb, "%vx_%d", v, c+1)
		case v.Sign() > 0:
			fmt.Fprintf(&sb, " + %vx_%d", v, c+1)
		default:
			fmt.Fprintf(&sb, " - %vx_%d", v.Neg(), c+1)
		}
	}
	if sb.Len() == 0 {
		return "0"
	}
	return sb.String()
}
