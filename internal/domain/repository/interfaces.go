package repository

import (
	"context"

	"TrendPulse/internal/domain/models"
)

// SeriesProvider supplies chronologically ordered daily observations per
// term. Implemented by the trends acquisition client.
type SeriesProvider interface {
	FetchSeries(ctx context.Context, term string, start models.Day) (models.Series, error)
}

// SeriesStore persists raw observations and serves them back for analysis.
type SeriesStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	StoreSeries(ctx context.Context, s models.Series) error
	LoadSeries(ctx context.Context, term string, limit int) (models.Series, error)
	Health(ctx context.Context) error
	Close() error
}

// AnomalyStore persists high-confidence anomaly records.
type AnomalyStore interface {
	StoreAnomalies(ctx context.Context, records []models.AnomalyRecord) error
}

// AlertPublisher pushes high-confidence anomaly alerts to downstream
// consumers (message topic, websocket subscribers).
type AlertPublisher interface {
	PublishAlert(ctx context.Context, a models.AnomalyAlert) error
	PublishAlertBatch(ctx context.Context, alerts []models.AnomalyAlert) error
	Close() error
}

// Metrics records operational counters for the pipeline.
type Metrics interface {
	RecordTermAnalyzed(term string)
	RecordAnomaliesFound(term string, n int)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
