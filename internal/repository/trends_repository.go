package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"TrendPulse/internal/domain/models"
	domrepo "TrendPulse/internal/domain/repository"
	pkgch "TrendPulse/pkg/clickhouse"
	pkgkafka "TrendPulse/pkg/kafka"
	applogger "TrendPulse/pkg/logger"
)

const (
	observationsTable = "trend_observations"
	anomaliesTable    = "trend_anomalies"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS ` + observationsTable + ` (
		term  String,
		date  Date,
		value Float64
	) ENGINE = ReplacingMergeTree
	ORDER BY (term, date)`,
	`CREATE TABLE IF NOT EXISTS ` + anomaliesTable + ` (
		term        String,
		date        Date,
		value       Float64,
		methods     Array(String),
		agreement   UInt8,
		detected_at DateTime
	) ENGINE = ReplacingMergeTree
	ORDER BY (term, date)`,
}

// CHSeriesStore implements SeriesStore and AnomalyStore on ClickHouse.
type CHSeriesStore struct {
	ch *pkgch.Client
	db *sql.DB
	l  *applogger.Logger
}

var (
	_ domrepo.SeriesStore  = (*CHSeriesStore)(nil)
	_ domrepo.AnomalyStore = (*CHSeriesStore)(nil)
)

// NewCHSeriesStore creates a ClickHouse-backed series store.
func NewCHSeriesStore(ch *pkgch.Client, l *applogger.Logger) *CHSeriesStore {
	return &CHSeriesStore{ch: ch, db: ch.DB(), l: l}
}

// Init ensures the observation and anomaly tables exist.
func (s *CHSeriesStore) Init(ctx context.Context) error {
	return s.ch.InitSchema(ctx, schemaStatements)
}

// StoreSeries inserts all observations of a series in chunked multi-row
// batches. ReplacingMergeTree makes re-inserts of the same (term, date)
// idempotent.
func (s *CHSeriesStore) StoreSeries(ctx context.Context, series models.Series) error {
	if series.Len() == 0 {
		return nil
	}

	start := time.Now()
	const chunkSize = 2000
	for lo := 0; lo < series.Len(); lo += chunkSize {
		hi := lo + chunkSize
		if hi > series.Len() {
			hi = series.Len()
		}

		values := make([]string, 0, hi-lo)
		args := make([]interface{}, 0, (hi-lo)*3)
		for i := lo; i < hi; i++ {
			values = append(values, "(?, ?, ?)")
			args = append(args, series.Term, series.Dates[i].Time, series.Values[i])
		}

		q := fmt.Sprintf("INSERT INTO %s (term, date, value) VALUES %s",
			observationsTable, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("store series %s: %w", series.Term, err)
		}
	}

	s.l.Info("series stored",
		applogger.String("term", series.Term),
		applogger.Int("points", series.Len()),
		applogger.Duration("took", time.Since(start)))
	return nil
}

// LoadSeries returns the most recent observations of a term in ascending
// date order. A non-positive limit loads the full history.
func (s *CHSeriesStore) LoadSeries(ctx context.Context, term string, limit int) (models.Series, error) {
	q := fmt.Sprintf(`
		SELECT date, value FROM (
			SELECT date, value FROM %s FINAL
			WHERE term = ?
			ORDER BY date DESC
			%s
		) ORDER BY date ASC`, observationsTable, limitClause(limit))

	args := []interface{}{term}
	if limit > 0 {
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return models.Series{}, fmt.Errorf("load series %s: %w", term, err)
	}
	defer rows.Close()

	series := models.Series{Term: term}
	for rows.Next() {
		var date time.Time
		var value float64
		if err := rows.Scan(&date, &value); err != nil {
			return models.Series{}, fmt.Errorf("scan observation: %w", err)
		}
		series.Dates = append(series.Dates, models.NewDay(date))
		series.Values = append(series.Values, value)
	}
	if err := rows.Err(); err != nil {
		return models.Series{}, fmt.Errorf("rows: %w", err)
	}
	return series, nil
}

// StoreAnomalies persists consensus anomaly records.
func (s *CHSeriesStore) StoreAnomalies(ctx context.Context, records []models.AnomalyRecord) error {
	if len(records) == 0 {
		return nil
	}

	values := make([]string, 0, len(records))
	args := make([]interface{}, 0, len(records)*6)
	now := time.Now().UTC()
	for _, r := range records {
		values = append(values, "(?, ?, ?, ?, ?, ?)")
		args = append(args, r.Term, r.Date.Time, r.Value, r.Methods, uint8(r.Agreement), now)
	}

	q := fmt.Sprintf("INSERT INTO %s (term, date, value, methods, agreement, detected_at) VALUES %s",
		anomaliesTable, strings.Join(values, ","))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("store anomalies: %w", err)
	}
	return nil
}

// Health checks the ClickHouse connection.
func (s *CHSeriesStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close is a no-op; the ClickHouse client owns the pool.
func (s *CHSeriesStore) Close() error {
	return nil
}

func limitClause(limit int) string {
	if limit > 0 {
		return "LIMIT ?"
	}
	return ""
}

// KafkaAlertPublisher implements AlertPublisher on a Kafka topic. Messages
// are keyed by term so alerts for one term stay ordered.
type KafkaAlertPublisher struct {
	producer *pkgkafka.Producer
}

var _ domrepo.AlertPublisher = (*KafkaAlertPublisher)(nil)

// NewKafkaAlertPublisher creates a Kafka alert publisher.
func NewKafkaAlertPublisher(producer *pkgkafka.Producer) *KafkaAlertPublisher {
	return &KafkaAlertPublisher{producer: producer}
}

func (p *KafkaAlertPublisher) PublishAlert(ctx context.Context, a models.AnomalyAlert) error {
	return p.PublishAlertBatch(ctx, []models.AnomalyAlert{a})
}

func (p *KafkaAlertPublisher) PublishAlertBatch(ctx context.Context, alerts []models.AnomalyAlert) error {
	if len(alerts) == 0 {
		return nil
	}

	msgs := make([]pkgkafka.Message, 0, len(alerts))
	for _, a := range alerts {
		value, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("marshal alert: %w", err)
		}
		msgs = append(msgs, pkgkafka.Message{Key: []byte(a.Term), Value: value})
	}
	return p.producer.PublishBatch(ctx, msgs)
}

func (p *KafkaAlertPublisher) Close() error {
	return p.producer.Close()
}
