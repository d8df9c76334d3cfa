package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	Predictions        *prometheus.CounterVec
	PredictionFailures *prometheus.CounterVec
	PredictionDuration prometheus.Histogram
	DroppedIndicators  *prometheus.CounterVec
	SchemaColumns      prometheus.Gauge
}

// New registers the service collectors on a fresh registry so tests can build
// as many instances as they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Predictions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "heartcheck_predictions_total",
				Help: "Total number of risk predictions by verdict",
			},
			[]string{"risk_level"},
		),
		PredictionFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "heartcheck_prediction_failures_total",
				Help: "Total number of failed predictions by reason",
			},
			[]string{"reason"},
		),
		PredictionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "heartcheck_prediction_duration_seconds",
				Help:    "Time spent building, scaling and classifying one input",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
			},
		),
		DroppedIndicators: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "heartcheck_dropped_indicators_total",
				Help: "Categorical selections with no matching schema column",
			},
			[]string{"column"},
		),
		SchemaColumns: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "heartcheck_schema_columns",
				Help: "Number of columns in the loaded expected schema",
			},
		),
	}
}

func (m *Metrics) ObservePrediction(riskLevel string, took time.Duration) {
	m.Predictions.WithLabelValues(riskLevel).Inc()
	m.PredictionDuration.Observe(took.Seconds())
}

func (m *Metrics) ObserveFailure(reason string) {
	m.PredictionFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveDropped(columns []string) {
	for _, col := range columns {
		m.DroppedIndicators.WithLabelValues(col).Inc()
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
