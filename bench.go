package main

import (
	"fmt"
	"io"
	"runtime"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"q.log/exactsimplex/instance"
	"q.log/exactsimplex/metrics"
	"q.log/exactsimplex/model"
	"q.log/exactsimplex/simplex"
)

type benchOptions struct {
	generateOptions
	rules   []string
	count   int
	metrics bool
}

type benchJob struct {
	name string
	lp   *model.LinearProgram
}

type ruleStats struct {
	solves     int
	byStatus   map[simplex.Status]int
	pivots     int
	maxPivots  int
	solveTotal time.Duration
}

func (s *ruleStats) add(res *simplex.Result, elapsed time.Duration) {
	s.solves++
	s.byStatus[res.Status]++
	s.pivots += res.Pivots
	s.maxPivots = max(s.maxPivots, res.Pivots)
	s.solveTotal += elapsed
}

func newBenchCmd() *cobra.Command {
	var o benchOptions
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Compare pivot rules on generated linear programs",
		Long: `bench solves the same generated programs with every requested rule
and prints the pivot counts per rule.

        $ exactsimplex bench -c 50 -n 10 -m 10 --twophase
        $ exactsimplex bench --klee-minty 8 --rules Bland,MaxCoeff
        `,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd, o)
		},
	}
	o.bindFlags(cmd.Flags())
	cmd.Flags().StringSliceVar(&o.rules, "rules", simplex.PivotRules(), "pivot rules to compare")
	cmd.Flags().IntVarP(&o.count, "count", "c", 20, "number of random programs")
	cmd.Flags().BoolVar(&o.metrics, "metrics", false, "print solver metrics in the Prometheus text format")
	return cmd
}

func (o benchOptions) jobs(cmd *cobra.Command) ([]benchJob, error) {
	var jobs []benchJob
	if o.kleeMinty > 0 {
		for d := 1; d <= o.kleeMinty; d++ {
			lp, err := instance.KleeMinty(d)
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, benchJob{name: fmt.Sprintf("klee-minty d=%d", d), lp: lp})
		}
		return jobs, nil
	}
	if o.count <= 0 {
		return nil, errors.Errorf("count must be positive, got %d", o.count)
	}
	rng := o.rng(cmd.Flags())
	for i := 0; i < o.count; i++ {
		lp, err := o.generate(rng)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, benchJob{name: fmt.Sprintf("random #%d", i), lp: lp})
	}
	return jobs, nil
}

func runBench(cmd *cobra.Command, o benchOptions) error {
	rules := make([]simplex.PivotRule, len(o.rules))
	for i, name := range o.rules {
		r, err := simplex.ParsePivotRule(name)
		if err != nil {
			return err
		}
		rules[i] = r
	}
	jobs, err := o.jobs(cmd)
	if err != nil {
		return err
	}

	rec := metrics.NewRecorder()
	stats := make(map[simplex.PivotRule]*ruleStats, len(rules))
	for _, r := range rules {
		stats[r] = &ruleStats{byStatus: map[simplex.Status]int{}}
	}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, rule := range rules {
		rule := rule
		for i, job := range jobs {
			i, job := i, job
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				start := time.Now()
				// Solve marks the program, so every goroutine works on its own copy.
				res, err := simplex.Solve(job.lp.Clone(), rule, simplex.WithSeed(o.seed+int64(i)))
				if err != nil {
					return errors.Wrapf(err, "%s with rule %v", job.name, rule)
				}
				elapsed := time.Since(start)
				rec.Observe(res, elapsed)

				mu.Lock()
				defer mu.Unlock()
				stats[rule].add(res, elapsed)
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := writeSummary(out, rules, stats); err != nil {
		return err
	}
	if o.metrics {
		return rec.WriteText(out)
	}
	return nil
}

func writeSummary(w io.Writer, rules []simplex.PivotRule, stats map[simplex.PivotRule]*ruleStats) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RULE\tSOLVES\tOPTIMAL\tINFEASIBLE\tUNBOUNDED\tMEAN PIVOTS\tMAX PIVOTS\tTIME")
	for _, r := range rules {
		s := stats[r]
		mean := 0.0
		if s.solves > 0 {
			mean = float64(s.pivots) / float64(s.solves)
		}
		fmt.Fprintf(tw, "%v\t%d\t%d\t%d\t%d\t%.2f\t%d\t%v\n", r, s.solves,
			s.byStatus[simplex.Optimal], s.byStatus[simplex.Infeasible], s.byStatus[simplex.Unbounded],
			mean, s.maxPivots, s.solveTotal.Round(time.Microsecond))
	}
	return tw.Flush()
}
