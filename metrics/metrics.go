// Package metrics records solver outcomes as Prometheus metrics.
package metrics

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"q.log/exactsimplex/simplex"
)

const (
	RuleLabel   = "rule"
	StatusLabel = "status"
)

// Recorder owns a private registry so that several recorders can coexist in
// one process. It is safe for concurrent use.
type Recorder struct {
	registry *prometheus.Registry

	solves   *prometheus.CounterVec
	pivots   *prometheus.HistogramVec
	duration *prometheus.HistogramVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		solves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exactsimplex_solves_total",
				Help: "Number of completed solves by pivot rule and terminal status",
			},
			[]string{RuleLabel, StatusLabel},
		),
		pivots: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "exactsimplex_pivots",
				Help:    "Pivots performed per solve, both phases included",
				Buckets: prometheus.ExponentialBuckets(1, 2, 14),
			},
			[]string{RuleLabel},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "exactsimplex_solve_seconds",
				Help:    "Wall time of a solve",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{RuleLabel},
		),
	}
	r.registry.MustRegister(r.solves)
	r.registry.MustRegister(r.pivots)
	r.registry.MustRegister(r.duration)
	return r
}

// Observe records one finished solve.
func (r *Recorder) Observe(res *simplex.Result, elapsed time.Duration) {
	rule := res.Rule.String()
	r.solves.WithLabelValues(rule, res.Status.String()).Inc()
	r.pivots.WithLabelValues(rule).Observe(float64(res.Pivots))
	r.duration.WithLabelValues(rule).Observe(elapsed.Seconds())
}

func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteText writes every metric family in the Prometheus text exposition
// format.
func (r *Recorder) WriteText(w io.Writer) error {
	mfs, err := r.registry.Gather()
	if err != nil {
		return errors.Wrap(err, "gathering metrics")
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.Wrapf(err, "writing %s", mf.GetName())
		}
	}
	return nil
}
