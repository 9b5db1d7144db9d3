package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	fits          prometheus.Counter
	observations  prometheus.Gauge
	lastPredicted prometheus.Gauge
	cacheLookups  *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	latency       *prometheus.HistogramVec
}

// New creates a recorder registered on reg. A nil reg uses the default
// registry, so New must then be called only once per process.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Recorder{
		fits: f.NewCounter(prometheus.CounterOpts{
			Name: "findash_forecast_fits_total",
			Help: "Total number of revenue forecasts fitted",
		}),
		observations: f.NewGauge(prometheus.GaugeOpts{
			Name: "findash_forecast_observations",
			Help: "Number of monthly observations in the last fit",
		}),
		lastPredicted: f.NewGauge(prometheus.GaugeOpts{
			Name: "findash_forecast_predicted_revenue",
			Help: "Predicted revenue of the last forecast",
		}),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "findash_cache_lookups_total",
				Help: "Query cache lookups by result",
			},
			[]string{"query", "result"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "findash_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "findash_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordFit records a completed fit.
func (r *Recorder) RecordFit(observations int, predicted float64) {
	r.fits.Inc()
	r.observations.Set(float64(observations))
	r.lastPredicted.Set(predicted)
}

func (r *Recorder) RecordCache(name string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(name, result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
