package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"TrendPulse/internal/domain/models"
	domrepo "TrendPulse/internal/domain/repository"
	"TrendPulse/internal/services/anomaly"
	"TrendPulse/pkg/cache"
	"TrendPulse/pkg/logger"
)

type fakeStore struct {
	mu      sync.Mutex
	series  map[string]models.Series
	records []models.AnomalyRecord
	loads   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{series: make(map[string]models.Series)}
}

func (f *fakeStore) Init(context.Context) error { return nil }

func (f *fakeStore) StoreSeries(_ context.Context, s models.Series) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.series[s.Term] = s
	return nil
}

func (f *fakeStore) LoadSeries(_ context.Context, term string, _ int) (models.Series, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	return f.series[term], nil
}

func (f *fakeStore) StoreAnomalies(_ context.Context, records []models.AnomalyRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, records...)
	return nil
}

func (f *fakeStore) Health(context.Context) error { return nil }
func (f *fakeStore) Close() error                 { return nil }

type fakePublisher struct {
	mu     sync.Mutex
	alerts []models.AnomalyAlert
}

func (f *fakePublisher) PublishAlert(ctx context.Context, a models.AnomalyAlert) error {
	return f.PublishAlertBatch(ctx, []models.AnomalyAlert{a})
}

func (f *fakePublisher) PublishAlertBatch(_ context.Context, alerts []models.AnomalyAlert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, alerts...)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type noopMetrics struct{}

func (noopMetrics) RecordTermAnalyzed(string)        {}
func (noopMetrics) RecordAnomaliesFound(string, int) {}
func (noopMetrics) RecordError(string)               {}
func (noopMetrics) RecordLatency(string, float64)    {}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

// spikedSeries is flat around 50 with a small repeating wobble and a single
// extreme spike, strong enough for at least three detectors to agree.
func spikedSeries(term string, n, spikeAt int) models.Series {
	s := models.Series{Term: term}
	start := models.MustDay("2020-01-20")
	for i := 0; i < n; i++ {
		v := 50 + float64(i%5-2)
		if i == spikeAt {
			v = 95
		}
		s.Dates = append(s.Dates, start.AddDays(i))
		s.Values = append(s.Values, v)
	}
	return s
}

func newAnalyzer(t *testing.T, store *fakeStore, pub *fakePublisher) *ReportAnalyzer {
	t.Helper()
	assembler, err := anomaly.NewAssembler(anomaly.DefaultConfig(), anomaly.DefaultEventCalendar())
	if err != nil {
		t.Fatalf("assembler: %v", err)
	}
	return NewReportAnalyzer(
		store, store, assembler,
		[]domrepo.AlertPublisher{pub},
		cache.NewMemoryCache(),
		noopMetrics{}, testLogger(t),
		[]string{"depression"}, time.Minute,
	)
}

func TestReportPersistsAnomaliesAndAlerts(t *testing.T) {
	store := newFakeStore()
	store.series["depression"] = spikedSeries("depression", 100, 50)
	pub := &fakePublisher{}

	analyzer := newAnalyzer(t, store, pub)

	report, err := analyzer.Report(context.Background(), false)
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	ta := report.AnomaliesByTerm["depression"]
	if ta.TotalAnomalies == 0 {
		t.Fatal("expected at least one consensus anomaly")
	}
	if len(store.records) != ta.TotalAnomalies {
		t.Errorf("persisted %d records, report has %d", len(store.records), ta.TotalAnomalies)
	}
	if len(pub.alerts) != ta.TotalAnomalies {
		t.Errorf("published %d alerts, report has %d", len(pub.alerts), ta.TotalAnomalies)
	}
	if pub.alerts[0].Term != "depression" {
		t.Errorf("unexpected alert term %s", pub.alerts[0].Term)
	}
}

func TestReportServedFromCache(t *testing.T) {
	store := newFakeStore()
	store.series["depression"] = spikedSeries("depression", 100, 50)

	analyzer := newAnalyzer(t, store, &fakePublisher{})

	if _, err := analyzer.Report(context.Background(), false); err != nil {
		t.Fatalf("first report: %v", err)
	}
	loadsAfterFirst := store.loads

	if _, err := analyzer.Report(context.Background(), false); err != nil {
		t.Fatalf("second report: %v", err)
	}
	if store.loads != loadsAfterFirst {
		t.Errorf("cached report should not reload series: %d -> %d", loadsAfterFirst, store.loads)
	}
}

func TestReportRefreshBypassesCache(t *testing.T) {
	store := newFakeStore()
	store.series["depression"] = spikedSeries("depression", 100, 50)

	analyzer := newAnalyzer(t, store, &fakePublisher{})

	if _, err := analyzer.Report(context.Background(), false); err != nil {
		t.Fatalf("first report: %v", err)
	}
	loadsAfterFirst := store.loads

	if _, err := analyzer.Report(context.Background(), true); err != nil {
		t.Fatalf("refreshed report: %v", err)
	}
	if store.loads == loadsAfterFirst {
		t.Error("refresh should reload series from the store")
	}
}

func TestTermAnomaliesUnknownTerm(t *testing.T) {
	store := newFakeStore()
	store.series["depression"] = spikedSeries("depression", 100, 50)

	analyzer := newAnalyzer(t, store, &fakePublisher{})

	if _, err := analyzer.TermAnomalies(context.Background(), "unknown"); err != ErrTermNotFound {
		t.Fatalf("expected ErrTermNotFound, got %v", err)
	}
}

func TestReportRecordsOmissionForEmptySeries(t *testing.T) {
	store := newFakeStore() // no data stored at all

	analyzer := newAnalyzer(t, store, &fakePublisher{})

	report, err := analyzer.Report(context.Background(), false)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if _, ok := report.Omissions["depression"]; !ok {
		t.Fatal("expected omission for term without stored data")
	}
}
