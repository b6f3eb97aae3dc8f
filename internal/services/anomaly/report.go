package anomaly

import (
	"context"
	"fmt"
	"sync"
	"time"

	"TrendPulse/internal/domain/models"
	domsvc "TrendPulse/internal/domain/service"
)

// Assembler orchestrates the detector set, consensus aggregation, baseline
// analysis and event correlation into one Report. It computes nothing itself
// beyond merging; every numeric judgment is delegated.
type Assembler struct {
	cfg       Config
	cal       EventCalendar
	detectors []domsvc.Detector
	now       func() time.Time
}

// NewAssembler validates the configuration and builds the detector set.
// Configuration errors are fatal here, before any per-term work starts.
func NewAssembler(cfg Config, cal EventCalendar) (*Assembler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("anomaly config: %w", err)
	}
	return &Assembler{
		cfg:       cfg,
		cal:       cal,
		detectors: cfg.Detectors(),
		now:       time.Now,
	}, nil
}

// WithClock replaces the report timestamp source. Used to make serialized
// reports reproducible.
func (a *Assembler) WithClock(now func() time.Time) *Assembler {
	a.now = now
	return a
}

// AnalyzeTerm runs all four detectors on one series and merges their output.
func (a *Assembler) AnalyzeTerm(s models.Series) (ConsensusResult, error) {
	if err := s.Validate(); err != nil {
		return ConsensusResult{}, err
	}
	results := make([]MethodResult, 0, len(a.detectors))
	for _, det := range a.detectors {
		results = append(results, MethodResult{Method: det.Name(), Dates: det.Detect(s)})
	}
	return Consensus(s, results, a.cfg.Quorum), nil
}

type termOutcome struct {
	term      string
	consensus ConsensusResult
	baseline  models.BaselineShift
	err       error
}

// BuildReport analyzes every requested term and merges the results. Per-term
// analyses are independent and fan out across goroutines; the event
// correlation runs after all of them have joined, since it needs the union
// of high-confidence anomalies across terms.
//
// A term missing from the dataset, or one whose series fails validation, is
// recorded as an omission and never aborts the other terms.
func (a *Assembler) BuildReport(ctx context.Context, data models.Dataset, terms []string) (*models.Report, error) {
	report := &models.Report{
		GeneratedAt:     a.now().UTC(),
		TermsAnalyzed:   terms,
		AnomaliesByTerm: make(map[string]models.TermAnomalies),
		BaselineByTerm:  make(map[string]models.BaselineShift),
	}

	ch := make(chan termOutcome, len(terms))
	var wg sync.WaitGroup
	for _, term := range terms {
		s, ok := data[term]
		if !ok {
			ch <- termOutcome{term: term, err: fmt.Errorf("term not present in dataset")}
			continue
		}
		wg.Add(1)
		go func(term string, s models.Series) {
			defer wg.Done()
			consensus, err := a.AnalyzeTerm(s)
			if err != nil {
				ch <- termOutcome{term: term, err: err}
				return
			}
			ch <- termOutcome{
				term:      term,
				consensus: consensus,
				baseline:  AnalyzeBaseline(s, a.cfg.BaselineStart, a.cfg.BaselineCutoff),
			}
		}(term, s)
	}
	go func() { wg.Wait(); close(ch) }()

	for out := range ch {
		if out.err != nil {
			if report.Omissions == nil {
				report.Omissions = make(map[string]string)
			}
			report.Omissions[out.term] = out.err.Error()
			continue
		}

		dates := make([]models.Day, 0, len(out.consensus.HighConfidence))
		for _, rec := range out.consensus.HighConfidence {
			dates = append(dates, rec.Date)
		}
		report.AnomaliesByTerm[out.term] = models.TermAnomalies{
			TotalAnomalies: len(out.consensus.HighConfidence),
			Dates:          dates,
			Records:        out.consensus.HighConfidence,
		}
		report.BaselineByTerm[out.term] = out.baseline
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Barrier: correlation needs the cross-term anomaly union. Merge order
	// follows the requested term order to keep output reproducible.
	var merged []models.AnomalyRecord
	for _, term := range terms {
		ta, ok := report.AnomaliesByTerm[term]
		if !ok {
			continue
		}
		merged = append(merged, ta.Records...)
	}
	report.EventCorrelations = CorrelateEvents(a.cal, merged, a.cfg.EventWindowDays)

	return report, nil
}
