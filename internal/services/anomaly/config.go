package anomaly

import (
	"fmt"

	"TrendPulse/internal/domain/models"
	domsvc "TrendPulse/internal/domain/service"
)

// detectorCount is the size of the detector set the quorum is taken over.
const detectorCount = 4

// Config is the immutable tuning surface of the anomaly engine. Invalid
// values fail fast at assembler construction, before any per-term work.
type Config struct {
	ZScoreThreshold    float64
	ModifiedZThreshold float64
	Contamination      float64
	Seed               int64
	RollingWindow      int
	RollingThreshold   float64
	Quorum             int
	BaselineStart      models.Day
	BaselineCutoff     models.Day
	EventWindowDays    int
}

// DefaultConfig returns the tuning used by the original study: global z at
// 2.5, modified z at 3.5, 5% contamination with seed 42, a 12-observation
// centered window, 3-of-4 quorum, a 2019 pre-pandemic baseline against a
// March 2020 cutoff and a 14-day event window.
func DefaultConfig() Config {
	return Config{
		ZScoreThreshold:    2.5,
		ModifiedZThreshold: 3.5,
		Contamination:      0.05,
		Seed:               42,
		RollingWindow:      12,
		RollingThreshold:   2.5,
		Quorum:             3,
		BaselineStart:      models.MustDay("2019-01-01"),
		BaselineCutoff:     models.MustDay("2020-03-01"),
		EventWindowDays:    14,
	}
}

// Validate reports the first invalid configuration value.
func (c Config) Validate() error {
	if c.ZScoreThreshold <= 0 {
		return fmt.Errorf("zscore threshold must be positive, got %v", c.ZScoreThreshold)
	}
	if c.ModifiedZThreshold <= 0 {
		return fmt.Errorf("modified zscore threshold must be positive, got %v", c.ModifiedZThreshold)
	}
	if c.Contamination <= 0 || c.Contamination >= 1 {
		return fmt.Errorf("contamination must be in (0,1), got %v", c.Contamination)
	}
	if c.RollingWindow < 2 {
		return fmt.Errorf("rolling window must be at least 2, got %d", c.RollingWindow)
	}
	if c.RollingThreshold <= 0 {
		return fmt.Errorf("rolling threshold must be positive, got %v", c.RollingThreshold)
	}
	if c.Quorum < 1 || c.Quorum > detectorCount {
		return fmt.Errorf("quorum must be between 1 and %d, got %d", detectorCount, c.Quorum)
	}
	if c.BaselineStart.Time.IsZero() || c.BaselineCutoff.Time.IsZero() {
		return fmt.Errorf("baseline start and cutoff are required")
	}
	if !c.BaselineStart.Time.Before(c.BaselineCutoff.Time) {
		return fmt.Errorf("baseline start %s must precede cutoff %s", c.BaselineStart, c.BaselineCutoff)
	}
	if c.EventWindowDays < 0 {
		return fmt.Errorf("event window days must be non-negative, got %d", c.EventWindowDays)
	}
	return nil
}

// Detectors builds the four-member detector set from the config.
func (c Config) Detectors() []domsvc.Detector {
	return []domsvc.Detector{
		ZScoreDetector{Threshold: c.ZScoreThreshold},
		ModifiedZScoreDetector{Threshold: c.ModifiedZThreshold},
		EnsembleDetector{Contamination: c.Contamination, Seed: c.Seed},
		RollingDetector{Window: c.RollingWindow, Threshold: c.RollingThreshold},
	}
}
