package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "attendance"

// Metrics holds the Prometheus counters, histograms, and gauges for the prediction service.
type Metrics struct {
	Predictions        *prometheus.CounterVec // labels: variant={with_weather,without_weather}, status={Low,Normal,High}
	PredictionErrors   *prometheus.CounterVec // labels: reason={validation,missing_profile,model,...}
	PredictionDuration prometheus.Histogram
	ModelsLoaded       prometheus.Gauge

	// Encoding metrics.
	DroppedColumns *prometheus.CounterVec // labels: field

	// Weather metrics.
	WeatherRequests    *prometheus.CounterVec // labels: outcome={success,error,unrecognized,circuit_open}
	WeatherAPIDuration prometheus.Histogram
	WeatherEnabled     prometheus.Gauge

	// Prediction event publishing.
	EventsPublished      prometheus.Counter
	EventPublishFailures prometheus.Counter
}

func newMetrics() *Metrics {
	return &Metrics{
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Predictions served by model variant and attendance status.",
		}, []string{"variant", "status"}),
		PredictionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_errors_total",
			Help:      "Failed prediction requests by reason.",
		}, []string{"reason"}),
		PredictionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Duration of a complete prediction, including the weather lookup.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ModelsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "models_loaded",
			Help:      "Number of models loaded and validated against their schemas.",
		}),
		DroppedColumns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schema_dropped_columns_total",
			Help:      "Encoded one-hot columns absent from the model schema, by field.",
		}, []string{"field"}),
		WeatherRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_requests_total",
			Help:      "Weather lookups by outcome.",
		}, []string{"outcome"}),
		WeatherAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "weather_api_duration_seconds",
			Help:      "Open-Meteo API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		WeatherEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "weather_enabled",
			Help:      "1 when weather lookups are enabled, 0 otherwise.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Prediction events written to Kafka.",
		}),
		EventPublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "Prediction events that could not be written to Kafka.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Predictions,
		m.PredictionErrors,
		m.PredictionDuration,
		m.ModelsLoaded,
		m.DroppedColumns,
		m.WeatherRequests,
		m.WeatherAPIDuration,
		m.WeatherEnabled,
		m.EventsPublished,
		m.EventPublishFailures,
	}
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsWithRegistry creates metrics registered with reg, so tests can
// gather and assert on them.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
