package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TrendPulse/internal/domain/models"
	domrepo "TrendPulse/internal/domain/repository"
	"TrendPulse/internal/services/anomaly"
	"TrendPulse/pkg/cache"
	"TrendPulse/pkg/logger"
)

const reportCacheKey = "report:latest"

// ReportAnalyzer loads stored series, runs the consensus engine and serves
// the assembled report. Fresh reports are cached, persisted to the anomaly
// store and fanned out as alerts.
type ReportAnalyzer struct {
	store      domrepo.SeriesStore
	anomalies  domrepo.AnomalyStore
	assembler  *anomaly.Assembler
	publishers []domrepo.AlertPublisher
	cache      cache.Service
	metrics    domrepo.Metrics
	log        *logger.Logger

	terms     []string
	reportTTL time.Duration
}

// NewReportAnalyzer creates the analyzer.
func NewReportAnalyzer(
	store domrepo.SeriesStore,
	anomalies domrepo.AnomalyStore,
	assembler *anomaly.Assembler,
	publishers []domrepo.AlertPublisher,
	cacheSvc cache.Service,
	metrics domrepo.Metrics,
	log *logger.Logger,
	terms []string,
	reportTTL time.Duration,
) *ReportAnalyzer {
	return &ReportAnalyzer{
		store:      store,
		anomalies:  anomalies,
		assembler:  assembler,
		publishers: publishers,
		cache:      cacheSvc,
		metrics:    metrics,
		log:        log,
		terms:      terms,
		reportTTL:  reportTTL,
	}
}

// Report returns the latest report, serving from cache unless refresh is
// set or the cache misses.
func (a *ReportAnalyzer) Report(ctx context.Context, refresh bool) (*models.Report, error) {
	if !refresh {
		var cached models.Report
		err := a.cache.Get(ctx, reportCacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			a.log.Warn("report cache read failed", logger.Error(err))
		}
	}
	return a.build(ctx)
}

// TermAnomalies returns the consensus anomalies of one term.
func (a *ReportAnalyzer) TermAnomalies(ctx context.Context, term string) (models.TermAnomalies, error) {
	report, err := a.Report(ctx, false)
	if err != nil {
		return models.TermAnomalies{}, err
	}
	ta, ok := report.AnomaliesByTerm[term]
	if !ok {
		return models.TermAnomalies{}, ErrTermNotFound
	}
	return ta, nil
}

// TermBaseline returns the baseline shift of one term.
func (a *ReportAnalyzer) TermBaseline(ctx context.Context, term string) (models.BaselineShift, error) {
	report, err := a.Report(ctx, false)
	if err != nil {
		return models.BaselineShift{}, err
	}
	bs, ok := report.BaselineByTerm[term]
	if !ok {
		return models.BaselineShift{}, ErrTermNotFound
	}
	return bs, nil
}

// EventCorrelations returns the event correlations of the latest report.
func (a *ReportAnalyzer) EventCorrelations(ctx context.Context) ([]models.EventCorrelation, error) {
	report, err := a.Report(ctx, false)
	if err != nil {
		return nil, err
	}
	return report.EventCorrelations, nil
}

// Series returns the most recent n observations of a term.
func (a *ReportAnalyzer) Series(ctx context.Context, term string, n int) (models.Series, error) {
	s, err := a.store.LoadSeries(ctx, term, n)
	if err != nil {
		return models.Series{}, err
	}
	if s.Len() == 0 {
		return models.Series{}, ErrTermNotFound
	}
	return s, nil
}

// ErrTermNotFound marks a term absent from the report or store.
var ErrTermNotFound = errors.New("term not found")

func (a *ReportAnalyzer) build(ctx context.Context) (*models.Report, error) {
	start := time.Now()

	data := make(models.Dataset, len(a.terms))
	for _, term := range a.terms {
		s, err := a.store.LoadSeries(ctx, term, 0)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", term, err)
		}
		if s.Len() == 0 {
			continue // recorded as an omission by the assembler
		}
		data[term] = s
	}

	report, err := a.assembler.BuildReport(ctx, data, a.terms)
	if err != nil {
		a.metrics.RecordError("analyze")
		return nil, err
	}

	for _, term := range a.terms {
		a.metrics.RecordTermAnalyzed(term)
		if ta, ok := report.AnomaliesByTerm[term]; ok {
			a.metrics.RecordAnomaliesFound(term, ta.TotalAnomalies)
		}
	}
	a.metrics.RecordLatency("analyze", time.Since(start).Seconds())

	a.persistAndAlert(ctx, report)

	if err := a.cache.Set(ctx, reportCacheKey, report, a.reportTTL); err != nil {
		a.log.Warn("report cache write failed", logger.Error(err))
	}

	a.log.Info("report built",
		logger.Int("terms", len(report.TermsAnalyzed)),
		logger.Int("omissions", len(report.Omissions)),
		logger.Duration("took", time.Since(start)))
	return report, nil
}

// persistAndAlert stores consensus anomalies and pushes alerts. Failures
// here degrade delivery, not the report itself, so they only log.
func (a *ReportAnalyzer) persistAndAlert(ctx context.Context, report *models.Report) {
	var records []models.AnomalyRecord
	var alerts []models.AnomalyAlert
	for _, term := range report.TermsAnalyzed {
		ta, ok := report.AnomaliesByTerm[term]
		if !ok {
			continue
		}
		records = append(records, ta.Records...)
		for _, rec := range ta.Records {
			alerts = append(alerts, models.AnomalyAlert{
				Term:      rec.Term,
				Date:      rec.Date,
				Value:     rec.Value,
				Agreement: rec.Agreement,
			})
		}
	}
	if len(records) == 0 {
		return
	}

	if err := a.anomalies.StoreAnomalies(ctx, records); err != nil {
		a.metrics.RecordError("persist")
		a.log.Error("anomaly persist failed", logger.Error(err))
	}
	for _, pub := range a.publishers {
		if err := pub.PublishAlertBatch(ctx, alerts); err != nil {
			a.metrics.RecordError("alert")
			a.log.Error("alert publish failed", logger.Error(err))
		}
	}
}
