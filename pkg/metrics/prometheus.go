package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"TrendPulse/internal/domain/repository"
)

var (
	registerOnce   sync.Once
	termsAnalyzed  *prometheus.CounterVec
	anomaliesFound *prometheus.CounterVec
	pipelineErrors *prometheus.CounterVec
	stageDuration  *prometheus.HistogramVec
)

func register() {
	registerOnce.Do(func() {
		termsAnalyzed = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trendpulse_terms_analyzed_total",
			Help: "Total terms run through the anomaly pipeline",
		}, []string{"term"})
		anomaliesFound = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trendpulse_anomalies_found_total",
			Help: "Total consensus anomalies found",
		}, []string{"term"})
		pipelineErrors = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "trendpulse_pipeline_errors_total",
			Help: "Total pipeline errors by stage",
		}, []string{"stage"})
		stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trendpulse_stage_duration_seconds",
			Help:    "Pipeline stage latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"})
	})
}

// Recorder implements repository.Metrics on Prometheus collectors.
type Recorder struct{}

var _ repository.Metrics = Recorder{}

// NewRecorder registers collectors and returns the recorder.
func NewRecorder() Recorder {
	register()
	return Recorder{}
}

func (Recorder) RecordTermAnalyzed(term string) {
	termsAnalyzed.WithLabelValues(term).Inc()
}

func (Recorder) RecordAnomaliesFound(term string, n int) {
	anomaliesFound.WithLabelValues(term).Add(float64(n))
}

func (Recorder) RecordError(kind string) {
	pipelineErrors.WithLabelValues(kind).Inc()
}

func (Recorder) RecordLatency(op string, seconds float64) {
	stageDuration.WithLabelValues(op).Observe(seconds)
}
