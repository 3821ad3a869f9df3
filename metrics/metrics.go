package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline's Prometheus collectors. A nil *Metrics is a
// valid no-op receiver so components can run without instrumentation.
type Metrics struct {
	Registry *prometheus.Registry

	ChunksInFlight prometheus.Gauge
	ChunkResults   *prometheus.CounterVec
	ChunkRetries   prometheus.Counter
	ChunkLatency   prometheus.Histogram
	Routes         *prometheus.CounterVec
	Requests       *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		ChunksInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "surveyaudio_chunks_in_flight",
			Help: "Transcription calls currently waiting on the speech service",
		}),
		ChunkResults: f.NewCounterVec(prometheus.CounterOpts{
			Name: "surveyaudio_chunk_results_total",
			Help: "Chunk transcriptions by outcome",
		}, []string{"status"}),
		ChunkRetries: f.NewCounter(prometheus.CounterOpts{
			Name: "surveyaudio_chunk_retries_total",
			Help: "Retried speech service calls",
		}),
		ChunkLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "surveyaudio_chunk_latency_seconds",
			Help:    "Wall time of one chunk transcription including retries",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
		Routes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "surveyaudio_routes_total",
			Help: "Transcriptions by selected route",
		}, []string{"route"}),
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "surveyaudio_requests_total",
			Help: "Analysis requests by kind and outcome",
		}, []string{"kind", "outcome"}),
	}
}

func (m *Metrics) ChunkStarted() {
	if m == nil {
		return
	}
	m.ChunksInFlight.Inc()
}

func (m *Metrics) ChunkFinished(status string, took time.Duration) {
	if m == nil {
		return
	}
	m.ChunksInFlight.Dec()
	m.ChunkResults.WithLabelValues(status).Inc()
	m.ChunkLatency.Observe(took.Seconds())
}

func (m *Metrics) Retried() {
	if m == nil {
		return
	}
	m.ChunkRetries.Inc()
}

func (m *Metrics) RouteSelected(route string) {
	if m == nil {
		return
	}
	m.Routes.WithLabelValues(route).Inc()
}

func (m *Metrics) Request(kind, outcome string) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(kind, outcome).Inc()
}
