package anomaly

import (
	"math"

	"TrendPulse/internal/domain/models"
	domsvc "TrendPulse/internal/domain/service"
)

// ZScoreDetector flags observations whose distance from the series-wide mean
// exceeds Threshold standard deviations. The default threshold of 2.5
// captures observations beyond roughly the 98.8th percentile.
type ZScoreDetector struct {
	Threshold float64
}

func (d ZScoreDetector) Name() string { return "zscore" }

func (d ZScoreDetector) Detect(s models.Series) []models.Day {
	std := stddev(s.Values)
	if std == 0 {
		// constant series: nothing deviates
		return nil
	}
	m := mean(s.Values)

	var out []models.Day
	for i, v := range s.Values {
		if math.Abs(v-m)/std > d.Threshold {
			out = append(out, s.Dates[i])
		}
	}
	return out
}

var _ domsvc.Detector = ZScoreDetector{}
