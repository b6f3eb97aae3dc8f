package anomaly

import (
	"math"

	"TrendPulse/internal/domain/models"
	domsvc "TrendPulse/internal/domain/service"
)

// RollingDetector flags observations by their z-score against a centered
// rolling mean and standard deviation, catching regime-relative spikes that
// a global statistic would miss in a trending series.
//
// Observations within Window/2 of either series edge have no full centered
// window; they are treated as defined-absent and never flagged. Windows with
// zero standard deviation likewise flag nothing.
type RollingDetector struct {
	Window    int
	Threshold float64
}

func (d RollingDetector) Name() string { return "rolling" }

func (d RollingDetector) Detect(s models.Series) []models.Day {
	n := s.Len()
	w := d.Window
	if w < 2 || n < w {
		return nil
	}

	var out []models.Day
	for i := 0; i < n; i++ {
		lo := i - w/2
		hi := lo + w
		if lo < 0 || hi > n {
			continue
		}
		win := s.Values[lo:hi]
		std := stddev(win)
		if std == 0 {
			continue
		}
		if math.Abs(s.Values[i]-mean(win))/std > d.Threshold {
			out = append(out, s.Dates[i])
		}
	}
	return out
}

var _ domsvc.Detector = RollingDetector{}
