package anomaly

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"TrendPulse/internal/domain/models"
)

func fixedClock() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestNewAssemblerRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative zscore threshold", func(c *Config) { c.ZScoreThreshold = -1 }},
		{"zero modified threshold", func(c *Config) { c.ModifiedZThreshold = 0 }},
		{"contamination one", func(c *Config) { c.Contamination = 1 }},
		{"window too small", func(c *Config) { c.RollingWindow = 1 }},
		{"quorum above detector count", func(c *Config) { c.Quorum = 5 }},
		{"quorum zero", func(c *Config) { c.Quorum = 0 }},
		{"cutoff before start", func(c *Config) { c.BaselineCutoff = models.MustDay("2018-01-01") }},
		{"negative event window", func(c *Config) { c.EventWindowDays = -1 }},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(&cfg)
		if _, err := NewAssembler(cfg, DefaultEventCalendar()); err == nil {
			t.Errorf("%s: expected a configuration error", tc.name)
		}
	}
}

func TestBuildReportRecordsOmissions(t *testing.T) {
	a, err := NewAssembler(DefaultConfig(), DefaultEventCalendar())
	if err != nil {
		t.Fatal(err)
	}

	data := models.Dataset{"depression": spikedSeries(101, 50, 95)}
	report, err := a.BuildReport(context.Background(), data, []string{"depression", "anxiety"})
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := report.AnomaliesByTerm["depression"]; !ok {
		t.Error("present term was not analyzed")
	}
	if msg, ok := report.Omissions["anxiety"]; !ok {
		t.Error("missing term was not recorded as an omission")
	} else if msg == "" {
		t.Error("omission has no reason")
	}
	if _, ok := report.AnomaliesByTerm["anxiety"]; ok {
		t.Error("omitted term should not appear in anomaly summaries")
	}
}

func TestBuildReportSkipsInvalidSeries(t *testing.T) {
	a, err := NewAssembler(DefaultConfig(), DefaultEventCalendar())
	if err != nil {
		t.Fatal(err)
	}

	bad := daily("anxiety", "2020-01-01", []float64{1, 2, 3})
	bad.Dates[2] = bad.Dates[1] // duplicate date

	data := models.Dataset{
		"depression": spikedSeries(101, 50, 95),
		"anxiety":    bad,
	}
	report, err := a.BuildReport(context.Background(), data, []string{"depression", "anxiety"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := report.Omissions["anxiety"]; !ok {
		t.Error("invalid series should be recorded as an omission")
	}
	if _, ok := report.AnomaliesByTerm["depression"]; !ok {
		t.Error("valid term should still be analyzed")
	}
}

func TestBuildReportDeterministic(t *testing.T) {
	data := models.Dataset{
		"depression": spikedSeries(200, 120, 97),
		"anxiety":    spikedSeries(200, 60, 93),
	}
	terms := []string{"depression", "anxiety"}

	run := func() []byte {
		a, err := NewAssembler(DefaultConfig(), DefaultEventCalendar())
		if err != nil {
			t.Fatal(err)
		}
		report, err := a.WithClock(fixedClock).BuildReport(context.Background(), data, terms)
		if err != nil {
			t.Fatal(err)
		}
		b, err := json.Marshal(report)
		if err != nil {
			t.Fatal(err)
		}
		return b
	}

	first := run()
	second := run()
	if !bytes.Equal(first, second) {
		t.Error("two runs over identical input produced different serialized reports")
	}
}

func TestBuildReportEndToEnd(t *testing.T) {
	// 100-day series flat at 50 except a 95 on day 50 (2020-03-10 counting
	// from 2020-01-20), with an event inside the 14-day window
	values := make([]float64, 100)
	for i := range values {
		values[i] = 50
	}
	values[50] = 95
	s := daily("depression", "2020-01-20", values)

	cal, err := NewEventCalendar(map[string]string{"2020-03-11": "WHO declares COVID-19 pandemic"})
	if err != nil {
		t.Fatal(err)
	}
	a, err := NewAssembler(DefaultConfig(), cal)
	if err != nil {
		t.Fatal(err)
	}

	report, err := a.BuildReport(context.Background(), models.Dataset{"depression": s}, []string{"depression"})
	if err != nil {
		t.Fatal(err)
	}

	ta := report.AnomaliesByTerm["depression"]
	if ta.TotalAnomalies != 1 {
		t.Fatalf("expected exactly one high-confidence anomaly, got %d (%v)", ta.TotalAnomalies, ta.Dates)
	}
	if ta.Dates[0] != s.Dates[50] {
		t.Errorf("high-confidence anomaly on %s, want %s", ta.Dates[0], s.Dates[50])
	}

	if len(report.EventCorrelations) != 1 {
		t.Fatalf("expected 1 event correlation, got %d", len(report.EventCorrelations))
	}
	corr := report.EventCorrelations[0]
	if corr.AnomalyCount != 1 {
		t.Errorf("anomaly count = %d, want 1", corr.AnomalyCount)
	}
	if len(corr.AffectedTerms) != 1 || corr.AffectedTerms[0] != "depression" {
		t.Errorf("affected terms = %v, want [depression]", corr.AffectedTerms)
	}
}
