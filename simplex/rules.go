package simplex

import (
	"math/rand"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"q.log/exactsimplex/rational"
)

var ErrInvalidPivotRule = errors.New("invalid pivot rule")

// PivotRule selects the entering variable of each pivot.
type PivotRule int

const (
	// Random picks uniformly among the improving non-basic variables.
	Random PivotRule = iota
	// Bland picks the lowest-indexed improving variable. Combined with the
	// lowest-index tie-break of the ratio test it never cycles.
	Bland
	// MaxCoeff picks the variable with the largest objective row entry
	// (Dantzig's rule).
	MaxCoeff
	// Custom picks the variable maximizing its objective row entry divided by
	// the squared norm of its column, a steepest-edge approximation.
	Custom
)

var pivotRuleNames = map[PivotRule]string{
	Random:   "Random",
	Bland:    "Bland",
	MaxCoeff: "MaxCoeff",
	Custom:   "Custom",
}

func (r PivotRule) String() string {
	if name, ok := pivotRuleNames[r]; ok {
		return name
	}
	return "PivotRule(" + strconv.Itoa(int(r)) + ")"
}

// PivotRules lists the rule names accepted by ParsePivotRule.
func PivotRules() []string {
	return []string{"Random", "Bland", "MaxCoeff", "Custom"}
}

// ParsePivotRule returns the rule with the given name.
func ParsePivotRule(name string) (PivotRule, error) {
	for r, n := range pivotRuleNames {
		if n == name {
			return r, nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidPivotRule, "%q does not refer to any implemented rule, possible rules are %s", name, strings.Join(PivotRules(), ", "))
}

// enteringSelector returns the entering variable, or false when no column
// improves the objective.
type enteringSelector interface {
	entering(t *Tableau) (int, bool)
}

func (r PivotRule) selector(rng *rand.Rand) (enteringSelector, error) {
	switch r {
	case Random:
		return randomRule{rng: rng}, nil
	case Bland:
		return blandRule{}, nil
	case MaxCoeff:
		return maxCoeffRule{}, nil
	case Custom:
		return steepestRule{}, nil
	}
	return nil, errors.Wrapf(ErrInvalidPivotRule, "%v", r)
}

type randomRule struct {
	rng *rand.Rand
}

func (s randomRule) entering(t *Tableau) (int, bool) {
	var candidates []int
	for _, v := range t.NonBasic() {
		if t.Reduced(v).Sign() > 0 {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return 0, false
	}
	return candidates[s.rng.Intn(len(candidates))], true
}

type blandRule struct{}

func (blandRule) entering(t *Tableau) (int, bool) {
	for _, v := range t.NonBasic() {
		if t.Reduced(v).Sign() > 0 {
			return v, true
		}
	}
	return 0, false
}

type maxCoeffRule struct{}

func (maxCoeffRule) entering(t *Tableau) (int, bool) {
	best := 1
	for v := 2; v < t.Width(); v++ {
		if t.Reduced(best).Less(t.Reduced(v)) {
			best = v
		}
	}
	if t.Reduced(best).Sign() <= 0 {
		return 0, false
	}
	return best, true
}

type steepestRule struct{}

func (steepestRule) entering(t *Tableau) (int, bool) {
	// columns with a zero norm score -1 and are never chosen
	sentinel := rational.FromInt(-1)
	best, bestScore := 0, rational.Zero
	for v := 1; v < t.Width(); v++ {
		norm := rational.Zero
		for i := 0; i < t.Height(); i++ {
			a := t.At(i, v-1)
			norm = norm.Add(a.Mul(a))
		}
		score := sentinel
		if !norm.IsZero() {
			score, _ = t.Reduced(v).Div(norm)
		}
		if best == 0 || bestScore.Less(score) {
			best, bestScore = v, score
		}
	}
	if t.Reduced(best).Sign() <= 0 {
		return 0, false
	}
	return best, true
}

// chooseLeaving runs the ratio test on the entering column and returns the
// basic variable of the winning row. Equal ratios go to the lowest row, or
// to the lowest-indexed basic variable when lowestVariable is set.
func chooseLeaving(t *Tableau, entering int, lowestVariable bool) (int, error) {
	col := entering - 1
	bestRow := -1
	var bestRatio rational.Rational
	for i := 1; i < t.Height(); i++ {
		a := t.At(i, col)
		if a.Sign() <= 0 {
			continue
		}
		ratio, err := t.RHS(i).Div(a)
		if err != nil {
			return 0, err
		}
		better := bestRow == -1 || ratio.Less(bestRatio) ||
			(lowestVariable && ratio.Equal(bestRatio) && t.VariableOf(i) < t.VariableOf(bestRow))
		if better {
			bestRow, bestRatio = i, ratio
		}
	}
	if bestRow == -1 {
		return 0, errors.Wrapf(ErrUnbounded, "no positive entry in the column of x_%d", entering)
	}
	return t.VariableOf(bestRow), nil
}
