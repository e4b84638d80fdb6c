package simplex

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

type EventKind int

const (
	EventConstructed EventKind = iota
	EventPhaseStarted
	EventBeforePivot
	EventAfterPivot
	EventPhaseTransition
	EventFinished
)

// Event describes a step of the solve. Entering and Leaving are set for pivot
// events, Status for EventFinished.
type Event struct {
	Kind     EventKind
	Phase    Phase
	Entering int
	Leaving  int
	Status   Status
	Tableau  *Tableau
}

// Observer receives solver events. Observers must not modify the tableau.
type Observer interface {
	Observe(e Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(e Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

type nopObserver struct{}

func (nopObserver) Observe(Event) {}

// LogObserver traces a solve: pivots and phases at info level, the index
// tables at debug level. Tableaux are rendered to out when info is enabled.
type LogObserver struct {
	logger *slog.Logger
	out    io.Writer
}

func NewLogObserver(logger *slog.Logger, out io.Writer) *LogObserver {
	return &LogObserver{logger: logger, out: out}
}

func (o *LogObserver) Observe(e Event) {
	ctx := context.Background()
	verbose := o.logger.Enabled(ctx, slog.LevelInfo)
	debug := o.logger.Enabled(ctx, slog.LevelDebug)

	switch e.Kind {
	case EventConstructed:
		if verbose {
			fmt.Fprintf(o.out, "The initial tableau is :\n\n%v\n", e.Tableau)
		}
		if debug {
			o.logger.Debug("artificial variables", "vars", varList(e.Tableau.Artificial()),
				"variables", e.Tableau.NumVariables(), "constraints", e.Tableau.NumConstraints())
		}
	case EventPhaseStarted:
		o.logger.Info("starting", "phase", e.Phase.String())
	case EventBeforePivot:
		if debug {
			o.logger.Debug("index tables",
				"basic", varList(e.Tableau.Basic()),
				"nonBasic", varList(e.Tableau.NonBasic()),
				"rows", varList(e.Tableau.RowBindings()))
		}
		o.logger.Info("pivot", "entering", varName(e.Entering), "leaving", varName(e.Leaving))
	case EventAfterPivot:
		if verbose {
			fmt.Fprintln(o.out, e.Tableau)
		}
	case EventPhaseTransition:
		o.logger.Info("phase 1 done, original objective reloaded")
		if verbose {
			fmt.Fprintln(o.out, e.Tableau)
		}
	case EventFinished:
		o.logger.Info("finished", "status", e.Status.String(), "pivots", e.Tableau.Pivots())
	}
}

func varName(v int) string {
	return fmt.Sprintf("x_%d", v)
}

func varList(vs []int) string {
	names := make([]string, len(vs))
	for i, v := range vs {
		names[i] = varName(v)
	}
	return "[" + strings.Join(names, " ") + "]"
}
