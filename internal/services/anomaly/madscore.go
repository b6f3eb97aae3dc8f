package anomaly

import (
	"math"

	"TrendPulse/internal/domain/models"
	domsvc "TrendPulse/internal/domain/service"
)

// madScale converts a MAD into a consistent estimator of the standard
// deviation under normality.
const madScale = 0.6745

// ModifiedZScoreDetector flags observations by modified z-score, built on the
// median and the median absolute deviation. It is far less sensitive to fat
// tails than the standard z-score, which matters for low-volume terms whose
// distributions are spiky.
type ModifiedZScoreDetector struct {
	Threshold float64
}

func (d ModifiedZScoreDetector) Name() string { return "modified_zscore" }

func (d ModifiedZScoreDetector) Detect(s models.Series) []models.Day {
	m := median(s.Values)
	dev := mad(s.Values, m)
	if dev == 0 {
		// constant or highly discrete series: scores undefined, flag nothing
		return nil
	}

	var out []models.Day
	for i, v := range s.Values {
		score := madScale * (v - m) / dev
		if math.Abs(score) > d.Threshold {
			out = append(out, s.Dates[i])
		}
	}
	return out
}

var _ domsvc.Detector = ModifiedZScoreDetector{}
