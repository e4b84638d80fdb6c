package simplex

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"q.log/exactsimplex/model"
	"q.log/exactsimplex/rational"
)

// Tableau is the dense simplex tableau of a canonical program.
//
// Row 0 holds the objective, rows 1..m the constraints, and the last column
// the right-hand side. Variables are numbered from 1: x_1..x_n are the
// program's variables, x_{n+1}..x_{n+m} the slacks, and any further index an
// artificial variable. Variable v lives in column v-1.
//
// The objective row stores negated reduced costs so that Value is
// -T[0, width-1]; a positive entry in row 0 marks an improving column.
type Tableau struct {
	nbVar   int
	nbConst int

	width  int
	height int
	data   []rational.Rational

	basic      map[int]struct{}
	nonBasic   map[int]struct{}
	artificial map[int]struct{}

	rowOfVariable map[int]int
	variableOfRow []int

	pivots int
}

// NewTableau builds the initial tableau of lp. Every constraint with a
// negative rhs is negated and given an artificial basic variable, in which
// case lp is flagged as needing two phases and row 0 holds the phase one
// objective; otherwise the slacks form the basis and row 0 is the objective
// of lp.
func NewTableau(lp *model.LinearProgram) (*Tableau, error) {
	if err := lp.Validate(); err != nil {
		return nil, err
	}
	n, m := lp.NumCols, lp.NumRows

	nbArtificial := 0
	for _, b := range lp.B {
		if b.Sign() < 0 {
			nbArtificial++
		}
	}

	t := &Tableau{
		nbVar:         n,
		nbConst:       m,
		width:         n + m + nbArtificial + 1,
		height:        m + 1,
		basic:         make(map[int]struct{}, m),
		nonBasic:      make(map[int]struct{}, n+nbArtificial),
		artificial:    make(map[int]struct{}, nbArtificial),
		rowOfVariable: make(map[int]int, m),
		variableOfRow: make([]int, m+1),
	}
	t.data = make([]rational.Rational, t.width*t.height)
	last := t.width - 1

	next := n + m + 1
	var artificialRows []int
	for i := 1; i <= m; i++ {
		row := t.row(i)
		copy(row, lp.A[i-1])
		row[n+i-1] = rational.One
		row[last] = lp.B[i-1]

		v := n + i
		if lp.B[i-1].Sign() < 0 {
			for j := range row {
				row[j] = row[j].Neg()
			}
			v = next
			next++
			row[v-1] = rational.One
			t.artificial[v] = struct{}{}
			artificialRows = append(artificialRows, i)
		}
		t.bind(v, i)
	}
	for v := 1; v < t.width; v++ {
		if _, ok := t.basic[v]; !ok {
			t.nonBasic[v] = struct{}{}
		}
	}

	if len(artificialRows) == 0 {
		t.loadObjective(lp.C)
		return t, nil
	}

	lp.SetNeedsTwoPhases(true)

	// Phase one maximizes minus the sum of the artificials. Starting from -1
	// in every artificial column and adding each artificial row cancels those
	// entries, leaving the objective in terms of non-basic variables.
	top := t.row(0)
	for v := range t.artificial {
		top[v-1] = rational.FromInt(-1)
	}
	for _, i := range artificialRows {
		row := t.row(i)
		for j := range top {
			top[j] = top[j].Add(row[j])
		}
	}
	return t, nil
}

func (t *Tableau) row(i int) []rational.Rational {
	return t.data[i*t.width : (i+1)*t.width]
}

func (t *Tableau) bind(v, row int) {
	t.basic[v] = struct{}{}
	delete(t.nonBasic, v)
	t.rowOfVariable[v] = row
	t.variableOfRow[row] = v
}

// loadObjective sets row 0 to [c, 0, ..., 0].
func (t *Tableau) loadObjective(c []rational.Rational) {
	top := t.row(0)
	for j := range top {
		top[j] = rational.Zero
	}
	copy(top, c)
}

// At returns the entry at row i and column j, both 0-based.
func (t *Tableau) At(i, j int) rational.Rational {
	return t.data[i*t.width+j]
}

// Width is the number of columns, rhs included.
func (t *Tableau) Width() int { return t.width }

// Height is the number of rows, objective included.
func (t *Tableau) Height() int { return t.height }

func (t *Tableau) NumVariables() int { return t.nbVar }

func (t *Tableau) NumConstraints() int { return t.nbConst }

// Pivots is the number of pivots applied so far.
func (t *Tableau) Pivots() int { return t.pivots }

// Reduced returns the objective row entry of variable v.
func (t *Tableau) Reduced(v int) rational.Rational {
	return t.At(0, v-1)
}

// RHS returns the right-hand side of row i.
func (t *Tableau) RHS(i int) rational.Rational {
	return t.At(i, t.width-1)
}

func (t *Tableau) IsBasic(v int) bool {
	_, ok := t.basic[v]
	return ok
}

func (t *Tableau) IsArtificial(v int) bool {
	_, ok := t.artificial[v]
	return ok
}

// Basic returns the basic variables in increasing order.
func (t *Tableau) Basic() []int { return sortedKeys(t.basic) }

// NonBasic returns the non-basic variables in increasing order.
func (t *Tableau) NonBasic() []int { return sortedKeys(t.nonBasic) }

// Artificial returns the artificial variables still in the tableau.
func (t *Tableau) Artificial() []int { return sortedKeys(t.artificial) }

// RowOf returns the row in which basic variable v is expressed.
func (t *Tableau) RowOf(v int) (int, bool) {
	r, ok := t.rowOfVariable[v]
	return r, ok
}

// VariableOf returns the basic variable bound to constraint row i.
func (t *Tableau) VariableOf(i int) int {
	return t.variableOfRow[i]
}

// RowBindings returns the basic variable of each constraint row, starting at
// row 1.
func (t *Tableau) RowBindings() []int {
	return slices.Clone(t.variableOfRow[1:])
}

// Value is the objective value of the current basic solution.
func (t *Tableau) Value() rational.Rational {
	return t.RHS(0).Neg()
}

// Solution returns the values of x_1..x_n in the current basic solution.
func (t *Tableau) Solution(n int) []rational.Rational {
	out := make([]rational.Rational, n)
	for v := 1; v <= n; v++ {
		if r, ok := t.rowOfVariable[v]; ok {
			out[v-1] = t.RHS(r)
		}
	}
	return out
}

// Pivot brings entering into the basis in place of leaving. The tableau is
// left untouched when the pivot is rejected.
func (t *Tableau) Pivot(entering, leaving int) error {
	if entering < 1 || entering >= t.width {
		return errors.Errorf("entering variable x_%d out of range", entering)
	}
	if t.IsBasic(entering) {
		return errors.Errorf("entering variable x_%d is already basic", entering)
	}
	r, ok := t.rowOfVariable[leaving]
	if !ok {
		return errors.Errorf("leaving variable x_%d is not basic", leaving)
	}
	col := entering - 1
	pivotRow := t.row(r)
	inv, err := rational.One.Div(pivotRow[col])
	if err != nil {
		return errors.Wrapf(err, "pivot on x_%d in row %d", entering, r)
	}

	t.pivots++

	//normalize the pivot row
	for j := range pivotRow {
		pivotRow[j] = pivotRow[j].Mul(inv)
	}
	//eliminate the entering column from every other row, objective included
	for i := 0; i < t.height; i++ {
		if i == r {
			continue
		}
		row := t.row(i)
		f := row[col]
		if f.IsZero() {
			continue
		}
		for j := range row {
			if pivotRow[j].IsZero() {
				continue
			}
			row[j] = row[j].Sub(f.Mul(pivotRow[j]))
		}
	}

	delete(t.basic, leaving)
	delete(t.rowOfVariable, leaving)
	t.nonBasic[leaving] = struct{}{}
	t.bind(entering, r)
	return nil
}

// replacementFor returns the lowest-indexed non-basic non-artificial
// variable with a nonzero entry in the row of basic artificial a. Pivoting it
// in takes a out of the basis without changing the rhs, a being at zero level.
func (t *Tableau) replacementFor(a int) (int, error) {
	r, ok := t.rowOfVariable[a]
	if !ok {
		return 0, errors.Errorf("artificial variable x_%d is not basic", a)
	}
	for _, v := range t.NonBasic() {
		if t.IsArtificial(v) || t.At(r, v-1).IsZero() {
			continue
		}
		return v, nil
	}
	return 0, errors.Errorf("artificial variable x_%d cannot leave row %d", a, r)
}

// reloadObjective replaces row 0 by c and eliminates every basic column from
// it, so that basic variables have zero reduced cost.
func (t *Tableau) reloadObjective(c []rational.Rational) {
	t.loadObjective(c)
	top := t.row(0)
	for _, v := range t.Basic() {
		f := top[v-1]
		if f.IsZero() {
			continue
		}
		row := t.row(t.rowOfVariable[v])
		for j := range top {
			top[j] = top[j].Sub(f.Mul(row[j]))
		}
	}
}

// dropArtificials removes the artificial columns with a compacting copy. None
// of them may be basic.
func (t *Tableau) dropArtificials() error {
	if len(t.artificial) == 0 {
		return nil
	}
	for v := range t.artificial {
		if t.IsBasic(v) {
			return errors.Errorf("artificial variable x_%d is still basic", v)
		}
	}

	keep := make([]int, 0, t.width-len(t.artificial))
	for j := 0; j < t.width; j++ {
		if _, ok := t.artificial[j+1]; !ok {
			keep = append(keep, j)
		}
	}
	width := len(keep)
	data := make([]rational.Rational, width*t.height)
	for i := 0; i < t.height; i++ {
		row := t.row(i)
		for k, j := range keep {
			data[i*width+k] = row[j]
		}
	}

	for v := range t.artificial {
		delete(t.nonBasic, v)
	}
	t.artificial = map[int]struct{}{}
	t.data = data
	t.width = width
	return nil
}

// transition turns an optimal phase one tableau, with every artificial
// already out of the basis, into the initial phase two tableau for c.
func (t *Tableau) transition(c []rational.Rational) error {
	t.reloadObjective(c)
	return t.dropArtificials()
}

// Validate checks the bookkeeping invariants: basic and non-basic variables
// partition 1..width-1 with one basic variable per row, the row bindings are
// inverse of each other, basic columns are unit columns with zero reduced
// cost, and every rhs is non-negative.
func (t *Tableau) Validate() error {
	if len(t.basic) != t.nbConst {
		return errors.Errorf("%d basic variables for %d constraints", len(t.basic), t.nbConst)
	}
	if len(t.basic)+len(t.nonBasic) != t.width-1 {
		return errors.Errorf("%d basic and %d non-basic variables for %d columns", len(t.basic), len(t.nonBasic), t.width-1)
	}
	for v := range t.basic {
		if _, ok := t.nonBasic[v]; ok {
			return errors.Errorf("x_%d is both basic and non-basic", v)
		}
		if v < 1 || v >= t.width {
			return errors.Errorf("basic variable x_%d out of range", v)
		}
		r, ok := t.rowOfVariable[v]
		if !ok || t.variableOfRow[r] != v {
			return errors.Errorf("row binding of x_%d is inconsistent", v)
		}
		if !t.Reduced(v).IsZero() {
			return errors.Errorf("basic variable x_%d has reduced cost %v", v, t.Reduced(v))
		}
		for i := 1; i < t.height; i++ {
			want := rational.Zero
			if i == r {
				want = rational.One
			}
			if !t.At(i, v-1).Equal(want) {
				return errors.Errorf("column of basic variable x_%d is not a unit column", v)
			}
		}
	}
	for i := 1; i < t.height; i++ {
		if t.RHS(i).Sign() < 0 {
			return errors.Errorf("row %d has negative rhs %v", i, t.RHS(i))
		}
	}
	return nil
}

func (t *Tableau) String() string {
	cells := make([]string, len(t.data))
	spacing := 0
	for k, v := range t.data {
		cells[k] = v.String()
		spacing = max(spacing, len(cells[k])+2)
	}

	var sb strings.Builder
	printRow := func(i int) {
		for j := 0; j < t.width-1; j++ {
			fmt.Fprintf(&sb, "%-*s", spacing, cells[i*t.width+j])
		}
		sb.WriteString(" |  ")
		sb.WriteString(cells[i*t.width+t.width-1])
		sb.WriteByte('\n')
	}

	printRow(0)
	sb.WriteString(strings.Repeat("-", sb.Len()+1))
	sb.WriteByte('\n')
	for i := 1; i < t.height; i++ {
		printRow(i)
	}
	return sb.String()
}

func sortedKeys(m map[int]struct{}) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
