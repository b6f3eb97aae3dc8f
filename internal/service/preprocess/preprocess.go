package preprocess

import (
	"math"
	"sort"

	"TrendPulse/internal/domain/models"
	domsvc "TrendPulse/internal/domain/service"
)

const madScale = 0.6745

// Preprocessor fills calendar gaps by linear interpolation and optionally
// replaces extreme outliers before storage.
type Preprocessor struct {
	// OutlierThreshold, when positive, marks points whose modified z-score
	// exceeds it and re-interpolates them. Zero disables the step.
	OutlierThreshold float64
}

var _ domsvc.Preprocessor = Preprocessor{}

// Clean returns a series covering every calendar day between the first and
// last observation. Missing days get linearly interpolated values.
func (p Preprocessor) Clean(s models.Series) models.Series {
	if s.Len() < 2 {
		return s
	}

	out := interpolateGaps(s)
	if p.OutlierThreshold > 0 {
		out = removeOutliers(out, p.OutlierThreshold)
	}
	return out
}

func interpolateGaps(s models.Series) models.Series {
	out := models.Series{Term: s.Term}
	for i := 0; i < s.Len()-1; i++ {
		cur, next := s.Dates[i], s.Dates[i+1]
		out.Dates = append(out.Dates, cur)
		out.Values = append(out.Values, s.Values[i])

		gap := daysBetween(cur, next)
		for step := 1; step < gap; step++ {
			frac := float64(step) / float64(gap)
			out.Dates = append(out.Dates, cur.AddDays(step))
			out.Values = append(out.Values, s.Values[i]+frac*(s.Values[i+1]-s.Values[i]))
		}
	}
	out.Dates = append(out.Dates, s.Dates[s.Len()-1])
	out.Values = append(out.Values, s.Values[s.Len()-1])
	return out
}

// removeOutliers blanks values whose modified z-score exceeds the threshold
// and fills them back in by interpolation between surviving neighbors.
func removeOutliers(s models.Series, threshold float64) models.Series {
	med := median(s.Values)
	dev := make([]float64, len(s.Values))
	for i, v := range s.Values {
		dev[i] = math.Abs(v - med)
	}
	mad := median(dev)
	if mad == 0 {
		return s
	}

	kept := models.Series{Term: s.Term}
	for i, v := range s.Values {
		if math.Abs(madScale*(v-med)/mad) > threshold {
			continue
		}
		kept.Dates = append(kept.Dates, s.Dates[i])
		kept.Values = append(kept.Values, v)
	}
	if kept.Len() < 2 {
		return s
	}
	return interpolateGaps(kept)
}

func daysBetween(a, b models.Day) int {
	return int(b.Sub(a.Time).Hours() / 24)
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
