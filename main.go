package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"q.log/exactsimplex/instance"
	"q.log/exactsimplex/metrics"
	"q.log/exactsimplex/simplex"
	"q.log/exactsimplex/verify"
)

type solveOptions struct {
	rule    string
	verbose bool
	debug   bool
	seed    int64
	verify  bool
	metrics bool
	noColor bool
}

func newRootCmd() *cobra.Command {
	var o solveOptions
	rootCmd := &cobra.Command{
		Use:   "exactsimplex FILE",
		Short: "Solve a linear program with the exact two-phase simplex method",
		Long: `exactsimplex maximizes c.x subject to Ax <= b and x >= 0 in exact
rational arithmetic. FILE is either the plain text format (n, m, c, b, then the
rows of A) or, with a .mps extension, a fixed format MPS file.

        $ exactsimplex -r Bland lp.txt
        `,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(cmd, args[0], o)
		},
	}

	rootCmd.Flags().StringVarP(&o.rule, "rule", "r", simplex.Random.String(), "pivot rule, one of "+strings.Join(simplex.PivotRules(), ", "))
	rootCmd.Flags().BoolVarP(&o.verbose, "verbose", "v", false, "print the tableau after every pivot")
	rootCmd.Flags().BoolVarP(&o.debug, "debug", "d", false, "also print the basic and non-basic variables before every pivot")
	rootCmd.Flags().Int64Var(&o.seed, "seed", 0, "seed of the Random rule, time based when unset")
	rootCmd.Flags().BoolVar(&o.verify, "verify", false, "cross-check the result with a floating point simplex")
	rootCmd.Flags().BoolVar(&o.metrics, "metrics", false, "print solver metrics in the Prometheus text format")
	rootCmd.Flags().BoolVar(&o.noColor, "no-color", false, "disable colored log output")

	rootCmd.AddCommand(newGenerateCmd(), newBenchCmd())
	return rootCmd
}

func newLogger(w io.Writer, verbose, debug, noColor bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
		NoColor:    noColor,
	}))
}

func runSolve(cmd *cobra.Command, filename string, o solveOptions) error {
	rule, err := simplex.ParsePivotRule(o.rule)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	logger := newLogger(cmd.ErrOrStderr(), o.verbose, o.debug, o.noColor)

	lp, err := instance.NewReader(filename).ConstructModelFromFile()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, lp)
	logger.Info("solving", "file", filename, "rule", rule.String(), "variables", lp.NumCols, "constraints", lp.NumRows)

	opts := []simplex.Option{simplex.WithObserver(simplex.NewLogObserver(logger, out))}
	if cmd.Flags().Changed("seed") {
		opts = append(opts, simplex.WithSeed(o.seed))
	}
	start := time.Now()
	res, err := simplex.Solve(lp, rule, opts...)
	if err != nil {
		return errors.Wrapf(err, "solving %s", filename)
	}
	elapsed := time.Since(start)
	writeReport(out, res, elapsed)

	if o.verify {
		rep, err := verify.CrossCheck(lp, res, 0)
		if err != nil {
			return errors.Wrap(err, "cross-check")
		}
		fmt.Fprintln(out, rep)
	}
	if o.metrics {
		rec := metrics.NewRecorder()
		rec.Observe(res, elapsed)
		if err := rec.WriteText(out); err != nil {
			return err
		}
	}
	return nil
}

func writeReport(w io.Writer, res *simplex.Result, elapsed time.Duration) {
	if !res.TwoPhases {
		fmt.Fprintln(w, "The point (0,...,0) is a feasible solution. Only one phase is needed")
	}
	switch res.Status {
	case simplex.Infeasible:
		fmt.Fprintln(w, "This linear program is INFEASIBLE")
		return
	case simplex.Unbounded:
		fmt.Fprintln(w, "This linear program is UNBOUNDED")
		return
	}

	values := make([]string, len(res.Values))
	for i, v := range res.Values {
		values[i] = fmt.Sprintf("x_%d = %v", i+1, v)
	}
	fmt.Fprintf(w, "An optimal solution is : %s\n", strings.Join(values, ", "))
	fmt.Fprintf(w, "The value of the objective for this solution is : %v\n", res.Objective)
	fmt.Fprintf(w, "The number of pivots is : %d\n", res.Pivots)
	fmt.Fprintf(w, "The pivot rule used : %v\n", res.Rule)
	fmt.Fprintf(w, "Solved in %v\n", elapsed)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
