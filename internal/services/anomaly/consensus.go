package anomaly

import (
	"sort"

	"TrendPulse/internal/domain/models"
)

// MethodResult is one detector's output for a term.
type MethodResult struct {
	Method string
	Dates  []models.Day
}

// ConsensusResult merges the detector outputs for one term into per-date
// agreement counts and the high-confidence subset. Both slices are ordered
// by date so identical inputs reproduce identical output.
type ConsensusResult struct {
	Records        []models.ConsensusRecord
	HighConfidence []models.AnomalyRecord
}

// Consensus counts, for every date flagged by at least one detector, how many
// detectors agree. A date is promoted to high confidence iff its agreement
// count reaches the quorum. Lowering the quorum can only grow the
// high-confidence set.
func Consensus(s models.Series, results []MethodResult, quorum int) ConsensusResult {
	byDate := make(map[models.Day][]string)
	for _, r := range results {
		for _, d := range r.Dates {
			byDate[d] = append(byDate[d], r.Method)
		}
	}

	dates := make([]models.Day, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Time.Before(dates[j].Time) })

	values := make(map[models.Day]float64, s.Len())
	for i, d := range s.Dates {
		values[d] = s.Values[i]
	}

	var res ConsensusResult
	for _, d := range dates {
		methods := byDate[d]
		res.Records = append(res.Records, models.ConsensusRecord{
			Date:      d,
			Term:      s.Term,
			Agreement: len(methods),
		})
		if len(methods) >= quorum {
			res.HighConfidence = append(res.HighConfidence, models.AnomalyRecord{
				Date:      d,
				Term:      s.Term,
				Value:     values[d],
				Methods:   methods,
				Agreement: len(methods),
			})
		}
	}
	return res
}
