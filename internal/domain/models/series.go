package models

import "fmt"

// Series holds one term's chronologically ordered daily observations.
// Values are non-negative search-interest units. The acquisition and
// preprocessing layers are responsible for imputation; a Series handed to
// the anomaly engine is assumed gap-free.
type Series struct {
	Term   string    `json:"term"`
	Dates  []Day     `json:"dates"`
	Values []float64 `json:"values"`
}

// Len returns the number of observations.
func (s Series) Len() int {
	return len(s.Values)
}

// Validate checks the structural invariants the anomaly engine relies on:
// matching lengths, strictly increasing dates (which also rules out
// duplicates) and non-negative values.
func (s Series) Validate() error {
	if len(s.Dates) != len(s.Values) {
		return fmt.Errorf("series %s: %d dates vs %d values", s.Term, len(s.Dates), len(s.Values))
	}
	for i := 1; i < len(s.Dates); i++ {
		if !s.Dates[i].Time.After(s.Dates[i-1].Time) {
			return fmt.Errorf("series %s: dates not strictly increasing at %s", s.Term, s.Dates[i])
		}
	}
	for i, v := range s.Values {
		if v < 0 {
			return fmt.Errorf("series %s: negative value %.2f at %s", s.Term, v, s.Dates[i])
		}
	}
	return nil
}

// Slice returns the observations with from <= date < to. A zero `to`
// means open-ended.
func (s Series) Slice(from, to Day) Series {
	out := Series{Term: s.Term}
	for i, d := range s.Dates {
		if d.Time.Before(from.Time) {
			continue
		}
		if !to.Time.IsZero() && !d.Time.Before(to.Time) {
			continue
		}
		out.Dates = append(out.Dates, d)
		out.Values = append(out.Values, s.Values[i])
	}
	return out
}

// Dataset maps a term to its Series.
type Dataset map[string]Series
