package anomaly

import "TrendPulse/internal/domain/models"

// AnalyzeBaseline compares a term's fixed historical window [start, cutoff)
// against the open-ended during period [cutoff, end of series].
//
// Percent change is left nil when the pre-period mean is zero or the
// pre-period holds no observations: division by that baseline is undefined,
// not an error. Peak value and date are nil when the during period is empty.
func AnalyzeBaseline(s models.Series, start, cutoff models.Day) models.BaselineShift {
	pre := s.Slice(start, cutoff)
	during := s.Slice(cutoff, models.Day{})

	out := models.BaselineShift{
		Term:       s.Term,
		PreMean:    mean(pre.Values),
		DuringMean: mean(during.Values),
	}

	if pre.Len() > 0 && out.PreMean != 0 {
		pct := (out.DuringMean - out.PreMean) / out.PreMean * 100
		out.PercentChange = &pct
	}

	if during.Len() > 0 {
		peakIdx := 0
		for i, v := range during.Values {
			if v > during.Values[peakIdx] {
				peakIdx = i
			}
		}
		peak := during.Values[peakIdx]
		peakDate := during.Dates[peakIdx]
		out.PeakValue = &peak
		out.PeakDate = &peakDate
	}

	return out
}
