package preprocess

import (
	"math"
	"testing"

	"TrendPulse/internal/domain/models"
)

func TestCleanFillsCalendarGaps(t *testing.T) {
	s := models.Series{
		Term:   "anxiety",
		Dates:  []models.Day{models.MustDay("2020-01-01"), models.MustDay("2020-01-05")},
		Values: []float64{10, 50},
	}

	got := Preprocessor{}.Clean(s)

	if got.Len() != 5 {
		t.Fatalf("expected 5 points, got %d", got.Len())
	}
	want := []float64{10, 20, 30, 40, 50}
	for i, v := range want {
		if math.Abs(got.Values[i]-v) > 1e-9 {
			t.Errorf("point %d: expected %.1f, got %.1f", i, v, got.Values[i])
		}
		if !got.Dates[i].Equal(models.MustDay("2020-01-01").AddDays(i).Time) {
			t.Errorf("point %d: unexpected date %s", i, got.Dates[i])
		}
	}
}

func TestCleanContiguousSeriesUnchanged(t *testing.T) {
	s := models.Series{
		Term:   "therapy",
		Dates:  []models.Day{models.MustDay("2020-01-01"), models.MustDay("2020-01-02"), models.MustDay("2020-01-03")},
		Values: []float64{1, 2, 3},
	}

	got := Preprocessor{}.Clean(s)

	if got.Len() != 3 {
		t.Fatalf("expected 3 points, got %d", got.Len())
	}
	for i := range s.Values {
		if got.Values[i] != s.Values[i] {
			t.Errorf("point %d changed: %.1f != %.1f", i, got.Values[i], s.Values[i])
		}
	}
}

func TestCleanRemovesExtremeOutliers(t *testing.T) {
	s := models.Series{Term: "stress"}
	for i := 0; i < 30; i++ {
		s.Dates = append(s.Dates, models.MustDay("2020-01-01").AddDays(i))
		s.Values = append(s.Values, 50+float64(i%5-2))
	}
	s.Values[15] = 500

	got := Preprocessor{OutlierThreshold: 3.5}.Clean(s)

	if got.Len() != 30 {
		t.Fatalf("expected 30 points, got %d", got.Len())
	}
	if got.Values[15] > 60 {
		t.Fatalf("outlier not removed: %.1f", got.Values[15])
	}
}

func TestCleanShortSeriesPassthrough(t *testing.T) {
	s := models.Series{
		Term:   "insomnia",
		Dates:  []models.Day{models.MustDay("2020-01-01")},
		Values: []float64{7},
	}

	got := Preprocessor{}.Clean(s)
	if got.Len() != 1 || got.Values[0] != 7 {
		t.Fatalf("single-point series should pass through, got %+v", got)
	}
}
