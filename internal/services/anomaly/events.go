package anomaly

import (
	"fmt"
	"sort"

	"TrendPulse/internal/domain/models"
)

// Event is one labeled calendar entry.
type Event struct {
	Date  models.Day
	Label string
}

// EventCalendar is an immutable, chronologically ordered list of labeled
// external events. Correlations are reported in this order, not in anomaly
// discovery order.
type EventCalendar []Event

// NewEventCalendar builds a calendar from a date-string to label mapping,
// such as the one carried in the YAML config.
func NewEventCalendar(entries map[string]string) (EventCalendar, error) {
	cal := make(EventCalendar, 0, len(entries))
	for ds, label := range entries {
		d, err := models.ParseDay(ds)
		if err != nil {
			return nil, fmt.Errorf("event calendar: %w", err)
		}
		cal = append(cal, Event{Date: d, Label: label})
	}
	sort.Slice(cal, func(i, j int) bool { return cal[i].Date.Time.Before(cal[j].Date.Time) })
	return cal, nil
}

// DefaultEventCalendar covers the major events of the study period.
func DefaultEventCalendar() EventCalendar {
	cal, _ := NewEventCalendar(map[string]string{
		"2020-03-11": "WHO declares COVID-19 pandemic",
		"2020-03-15": "US lockdowns begin",
		"2020-11-03": "US election",
		"2021-01-06": "US Capitol attack",
		"2022-02-24": "Ukraine war begins",
		"2023-03-10": "Silicon Valley Bank collapse",
		"2024-01-01": "New year mental health awareness",
	})
	return cal
}

// CorrelateEvents matches the merged high-confidence anomalies of all terms
// against the calendar. For each event the closed window
// [date-windowDays, date+windowDays] is searched, inclusive on both ends; an
// EventCorrelation is produced only when at least one anomaly falls inside.
// The anomaly count tallies instances, so the same date across two terms
// counts twice, while affected terms are deduplicated.
func CorrelateEvents(cal EventCalendar, anomalies []models.AnomalyRecord, windowDays int) []models.EventCorrelation {
	var out []models.EventCorrelation
	for _, ev := range cal {
		windowStart := ev.Date.AddDays(-windowDays)
		windowEnd := ev.Date.AddDays(windowDays)

		count := 0
		termSet := make(map[string]struct{})
		for _, a := range anomalies {
			if a.Date.Time.Before(windowStart.Time) || a.Date.Time.After(windowEnd.Time) {
				continue
			}
			count++
			termSet[a.Term] = struct{}{}
		}
		if count == 0 {
			continue
		}

		terms := make([]string, 0, len(termSet))
		for t := range termSet {
			terms = append(terms, t)
		}
		sort.Strings(terms)

		out = append(out, models.EventCorrelation{
			Event:         ev.Label,
			EventDate:     ev.Date,
			AnomalyCount:  count,
			AffectedTerms: terms,
		})
	}
	return out
}
