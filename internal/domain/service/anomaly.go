package service

import "TrendPulse/internal/domain/models"

// Detector flags the dates of one Series it judges anomalous. Detectors are
// pure and stateless: they never mutate the input and never depend on each
// other. Each captures a different anomaly shape, which is why the consensus
// stage treats none of them as authoritative.
type Detector interface {
	Name() string
	Detect(s models.Series) []models.Day
}

// Preprocessor turns raw acquired observations into the clean, gap-free
// Series the anomaly engine assumes.
type Preprocessor interface {
	Clean(s models.Series) models.Series
}
