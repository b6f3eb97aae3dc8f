package anomaly

import (
	"math"
	"testing"

	"TrendPulse/internal/domain/models"
)

func TestBaselineShiftKnownChange(t *testing.T) {
	// 60 days at 40 before the cutoff, 60 days at 60 after it
	values := make([]float64, 120)
	for i := range values {
		if i < 60 {
			values[i] = 40
		} else {
			values[i] = 60
		}
	}
	s := daily("anxiety", "2020-01-01", values)
	cutoff := s.Dates[60]

	res := AnalyzeBaseline(s, models.MustDay("2020-01-01"), cutoff)
	if res.PreMean != 40 || res.DuringMean != 60 {
		t.Fatalf("means: pre=%v during=%v", res.PreMean, res.DuringMean)
	}
	if res.PercentChange == nil {
		t.Fatal("expected percent change to be defined")
	}
	if math.Abs(*res.PercentChange-50) > 1e-9 {
		t.Errorf("percent change = %v, want 50", *res.PercentChange)
	}
	if res.PeakValue == nil || *res.PeakValue != 60 {
		t.Errorf("unexpected peak %+v", res.PeakValue)
	}
}

func TestBaselineZeroPreMeanUndefined(t *testing.T) {
	values := make([]float64, 40)
	for i := 20; i < 40; i++ {
		values[i] = 80
	}
	s := daily("therapy", "2020-01-01", values)
	cutoff := s.Dates[20]

	res := AnalyzeBaseline(s, s.Dates[0], cutoff)
	if res.PreMean != 0 {
		t.Fatalf("pre mean = %v, want 0", res.PreMean)
	}
	if res.PercentChange != nil {
		t.Errorf("percent change should be undefined for zero pre mean, got %v", *res.PercentChange)
	}
}

func TestBaselineEmptyPrePeriod(t *testing.T) {
	// whole series starts after the cutoff
	s := daily("burnout", "2021-06-01", []float64{10, 20, 30})

	res := AnalyzeBaseline(s, models.MustDay("2019-01-01"), models.MustDay("2020-03-01"))
	if res.PercentChange != nil {
		t.Errorf("percent change should be undefined with no pre observations")
	}
	if res.PeakValue == nil || *res.PeakValue != 30 {
		t.Fatalf("unexpected peak value %+v", res.PeakValue)
	}
	if res.PeakDate == nil || res.PeakDate.String() != "2021-06-03" {
		t.Errorf("unexpected peak date %+v", res.PeakDate)
	}
}

func TestBaselineEmptyDuringPeriod(t *testing.T) {
	// series ends before the cutoff
	s := daily("stress", "2019-02-01", []float64{5, 6, 7})

	res := AnalyzeBaseline(s, models.MustDay("2019-01-01"), models.MustDay("2020-03-01"))
	if res.PeakValue != nil || res.PeakDate != nil {
		t.Errorf("peak should be undefined for an empty during period")
	}
	if res.PercentChange == nil {
		t.Fatal("percent change should be defined with a non-zero pre mean")
	}
	if math.Abs(*res.PercentChange - -100) > 1e-9 {
		t.Errorf("percent change = %v, want -100", *res.PercentChange)
	}
}
