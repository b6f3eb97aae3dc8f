package models

import "time"

// AnomalyRecord is one confirmed anomalous observation. Created once by the
// consensus stage and never mutated afterwards.
type AnomalyRecord struct {
	Date      Day      `json:"date"`
	Term      string   `json:"term"`
	Value     float64  `json:"value"`
	Methods   []string `json:"methods"`
	Agreement int      `json:"agreement"`
}

// ConsensusRecord carries the per-date detector agreement count for a term.
type ConsensusRecord struct {
	Date      Day    `json:"date"`
	Term      string `json:"term"`
	Agreement int    `json:"agreement"`
}

// TermAnomalies summarizes the high-confidence anomalies of one term.
type TermAnomalies struct {
	TotalAnomalies int             `json:"total_anomalies"`
	Dates          []Day           `json:"dates"`
	Records        []AnomalyRecord `json:"records,omitempty"`
}

// BaselineShift compares a fixed pre-period against the open-ended during
// period of one term. PercentChange is nil when the pre-period mean is zero
// or the pre-period holds no observations; PeakValue/PeakDate are nil when
// the during period is empty.
type BaselineShift struct {
	Term          string   `json:"term"`
	PreMean       float64  `json:"pre_period_mean"`
	DuringMean    float64  `json:"during_period_mean"`
	PercentChange *float64 `json:"percent_change,omitempty"`
	PeakValue     *float64 `json:"peak_value,omitempty"`
	PeakDate      *Day     `json:"peak_date,omitempty"`
}

// EventCorrelation associates a calendar event with the high-confidence
// anomalies falling inside its day window, across all terms.
type EventCorrelation struct {
	Event         string   `json:"event"`
	EventDate     Day      `json:"event_date"`
	AnomalyCount  int      `json:"anomaly_count"`
	AffectedTerms []string `json:"affected_terms"`
}

// Report is the root aggregate produced by one analysis run. Maps marshal
// with sorted keys, so identical inputs yield byte-identical JSON.
type Report struct {
	GeneratedAt       time.Time                `json:"generated_at"`
	TermsAnalyzed     []string                 `json:"terms_analyzed"`
	AnomaliesByTerm   map[string]TermAnomalies `json:"anomalies_by_term"`
	BaselineByTerm    map[string]BaselineShift `json:"baseline_shift"`
	EventCorrelations []EventCorrelation       `json:"event_correlations"`
	Omissions         map[string]string        `json:"omissions,omitempty"`
}

// AnomalyAlert is the message published to the alert topic and pushed to
// websocket subscribers for each high-confidence anomaly.
type AnomalyAlert struct {
	Term      string  `json:"term"`
	Date      Day     `json:"date"`
	Value     float64 `json:"value"`
	Agreement int     `json:"agreement"`
}
