// Package metrics records classification metrics in a private Prometheus
// registry and exports them in the text exposition format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cognicore/derisk/pkg/derisk"
	"github.com/cognicore/derisk/pkg/derisk/internalerr"
)

// Rulebook outcomes.
const (
	OutcomeMatched         = "matched"
	OutcomeNone            = "none"
	OutcomeUnknownCategory = "unknown_category"
)

// Config holds configuration for the recorder.
type Config struct {
	Namespace       string
	ConstLabels     map[string]string
	DurationBuckets []float64
}

// Recorder implements derisk.Observer.
type Recorder struct {
	registry *prometheus.Registry

	records   prometheus.Counter
	derisking *prometheus.CounterVec
	rulebook  *prometheus.CounterVec
	duration  prometheus.Histogram
}

var _ derisk.Observer = (*Recorder)(nil)

// NewRecorder creates a Recorder and registers its metrics.
func NewRecorder(cfg Config) (*Recorder, error) {
	if cfg.Namespace == "" {
		return nil, fmt.Errorf("metrics namespace is required: %w", internalerr.ErrInvalidConfig)
	}
	if cfg.DurationBuckets == nil {
		cfg.DurationBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	}

	r := &Recorder{
		registry: prometheus.NewRegistry(),
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "records_total",
			Help:        "Records classified.",
			ConstLabels: cfg.ConstLabels,
		}),
		derisking: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "derisking_matches_total",
			Help:        "Derisking outcomes by kind (exact, override, partial, none).",
			ConstLabels: cfg.ConstLabels,
		}, []string{"kind"}),
		rulebook: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        "rulebook_matches_total",
			Help:        "Rulebook outcomes (matched, none, unknown_category).",
			ConstLabels: cfg.ConstLabels,
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Name:        "classify_duration_seconds",
			Help:        "Wall time of one Classify batch.",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.DurationBuckets,
		}),
	}
	if err := registerAll(r.registry, r.records, r.derisking, r.rulebook, r.duration); err != nil {
		return nil, err
	}
	return r, nil
}

func registerAll(reg *prometheus.Registry, cs ...prometheus.Collector) error {
	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("register metric: %w", err)
		}
	}
	return nil
}

// ObserveResult counts one classified record.
func (r *Recorder) ObserveResult(res derisk.Result, categoryKnown bool) {
	r.records.Inc()
	r.derisking.WithLabelValues(res.Provenance.Source.String()).Inc()

	switch {
	case res.RuleElement.Valid():
		r.rulebook.WithLabelValues(OutcomeMatched).Inc()
	case !categoryKnown:
		r.rulebook.WithLabelValues(OutcomeUnknownCategory).Inc()
	default:
		r.rulebook.WithLabelValues(OutcomeNone).Inc()
	}
}

// ObserveBatch records the duration of one batch.
func (r *Recorder) ObserveBatch(records int, elapsed time.Duration) {
	r.duration.Observe(elapsed.Seconds())
}

// Registry returns the registry holding the recorder's metrics.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes all metrics to path in the text exposition format,
// e.g. for the node exporter textfile collector. The file is replaced
// atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
