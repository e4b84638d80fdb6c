// Package simplex solves canonical linear programs with the two-phase tableau
// simplex method in exact rational arithmetic.
package simplex

import (
	"math/rand"
	"time"

	"github.com/pkg/errors"

	"q.log/exactsimplex/model"
	"q.log/exactsimplex/rational"
)

var (
	ErrUnbounded  = errors.New("linear program is unbounded")
	ErrInfeasible = errors.New("linear program is infeasible")
)

// Status is the terminal state of a solve.
type Status int

const (
	Optimal Status = iota
	Infeasible
	Unbounded
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "OPTIMAL"
	case Infeasible:
		return "INFEASIBLE"
	case Unbounded:
		return "UNBOUNDED"
	}
	return "UNKNOWN"
}

// Phase identifies which objective the tableau is optimizing.
type Phase int

const (
	// PhaseOne drives the artificial variables to zero.
	PhaseOne Phase = iota + 1
	// PhaseTwo optimizes the program's own objective.
	PhaseTwo
)

func (p Phase) String() string {
	if p == PhaseOne {
		return "phase 1"
	}
	return "phase 2"
}

// Result is the outcome of Solve. Values and Objective are only meaningful
// when Status is Optimal.
type Result struct {
	Status    Status
	Values    []rational.Rational
	Objective rational.Rational
	Pivots    int
	Rule      PivotRule
	TwoPhases bool
}

// Err returns ErrInfeasible or ErrUnbounded for the matching status and nil
// for an optimal result.
func (r *Result) Err() error {
	switch r.Status {
	case Infeasible:
		return ErrInfeasible
	case Unbounded:
		return ErrUnbounded
	}
	return nil
}

type options struct {
	rng      *rand.Rand
	observer Observer
}

type Option func(*options)

// WithObserver reports construction, pivots and phase changes to o.
func WithObserver(o Observer) Option {
	return func(opts *options) {
		opts.observer = o
	}
}

// WithRand sets the source used by the Random rule.
func WithRand(rng *rand.Rand) Option {
	return func(opts *options) {
		opts.rng = rng
	}
}

// WithSeed seeds the Random rule so that its pivot sequence is reproducible.
func WithSeed(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

type solver struct {
	t        *Tableau
	sel      enteringSelector
	rule     PivotRule
	observer Observer
}

// Solve maximizes lp with the given pivot rule. Infeasible and unbounded
// programs are reported through Result.Status; an error means the input is
// malformed or the tableau got corrupted.
func Solve(lp *model.LinearProgram, rule PivotRule, opts ...Option) (*Result, error) {
	o := options{observer: nopObserver{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	sel, err := rule.selector(o.rng)
	if err != nil {
		return nil, err
	}
	t, err := NewTableau(lp)
	if err != nil {
		return nil, err
	}
	s := &solver{t: t, sel: sel, rule: rule, observer: o.observer}
	s.observer.Observe(Event{Kind: EventConstructed, Tableau: t})

	res := &Result{Rule: rule, TwoPhases: len(t.artificial) > 0}
	err = s.solve(lp.C, res.TwoPhases)
	switch {
	case errors.Is(err, ErrInfeasible):
		res.Status = Infeasible
	case errors.Is(err, ErrUnbounded):
		res.Status = Unbounded
	case err != nil:
		return nil, err
	default:
		res.Status = Optimal
		res.Values = t.Solution(lp.NumCols)
		res.Objective = t.Value()
	}
	res.Pivots = t.Pivots()
	s.observer.Observe(Event{Kind: EventFinished, Tableau: t, Status: res.Status})
	return res, nil
}

func (s *solver) solve(objective []rational.Rational, twoPhases bool) error {
	if twoPhases {
		s.observer.Observe(Event{Kind: EventPhaseStarted, Phase: PhaseOne, Tableau: s.t})
		if err := s.run(PhaseOne); err != nil {
			return err
		}
		if v := s.t.Value(); !v.IsZero() {
			return errors.Wrapf(ErrInfeasible, "phase 1 optimum is %v", v)
		}
		if err := s.driveOut(); err != nil {
			return errors.Wrap(err, "phase transition")
		}
		if err := s.t.transition(objective); err != nil {
			return errors.Wrap(err, "phase transition")
		}
		s.observer.Observe(Event{Kind: EventPhaseTransition, Phase: PhaseTwo, Tableau: s.t})
	}

	s.observer.Observe(Event{Kind: EventPhaseStarted, Phase: PhaseTwo, Tableau: s.t})
	return s.run(PhaseTwo)
}

// driveOut pivots the artificial variables left basic at zero level out of
// the basis. These pivots belong to phase one.
func (s *solver) driveOut() error {
	for _, a := range s.t.Artificial() {
		if !s.t.IsBasic(a) {
			continue
		}
		entering, err := s.t.replacementFor(a)
		if err != nil {
			return err
		}
		if err := s.pivot(PhaseOne, entering, a); err != nil {
			return err
		}
	}
	return nil
}

// run pivots until no entering variable improves the current objective row.
func (s *solver) run(phase Phase) error {
	for {
		entering, ok := s.sel.entering(s.t)
		if !ok {
			return nil
		}
		leaving, err := chooseLeaving(s.t, entering, s.rule == Bland)
		if err != nil {
			return err
		}
		if err := s.pivot(phase, entering, leaving); err != nil {
			return err
		}
	}
}

func (s *solver) pivot(phase Phase, entering, leaving int) error {
	s.observer.Observe(Event{Kind: EventBeforePivot, Phase: phase, Entering: entering, Leaving: leaving, Tableau: s.t})
	if err := s.t.Pivot(entering, leaving); err != nil {
		return err
	}
	s.observer.Observe(Event{Kind: EventAfterPivot, Phase: phase, Entering: entering, Leaving: leaving, Tableau: s.t})
	return nil
}
