package usecase

import (
	"context"
	"sync"
	"time"

	"TrendPulse/internal/domain/models"
	domrepo "TrendPulse/internal/domain/repository"
	domsvc "TrendPulse/internal/domain/service"
	"TrendPulse/pkg/logger"
)

// TrendCollector periodically pulls the configured terms from the trends
// API, cleans the series and persists them.
type TrendCollector struct {
	provider domrepo.SeriesProvider
	pre      domsvc.Preprocessor
	store    domrepo.SeriesStore
	metrics  domrepo.Metrics
	log      *logger.Logger

	terms    []string
	start    models.Day
	interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewTrendCollector creates the collector.
func NewTrendCollector(
	provider domrepo.SeriesProvider,
	pre domsvc.Preprocessor,
	store domrepo.SeriesStore,
	metrics domrepo.Metrics,
	log *logger.Logger,
	terms []string,
	start models.Day,
	interval time.Duration,
) *TrendCollector {
	return &TrendCollector{
		provider: provider,
		pre:      pre,
		store:    store,
		metrics:  metrics,
		log:      log,
		terms:    terms,
		start:    start,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start runs an immediate collection pass, then repeats on the configured
// interval until the context is cancelled or Shutdown is called.
func (c *TrendCollector) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)
	defer close(c.done)

	if err := c.store.Init(ctx); err != nil {
		return err
	}

	c.collectAll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.collectAll(ctx)
		}
	}
}

// Shutdown stops the collection loop and waits for the current pass.
func (c *TrendCollector) Shutdown(ctx context.Context) error {
	c.once.Do(func() {
		if c.cancel != nil {
			c.cancel()
		}
	})
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// collectAll fetches terms sequentially. The provider is rate limited, so
// fanning out would only queue on the limiter.
func (c *TrendCollector) collectAll(ctx context.Context) {
	for _, term := range c.terms {
		if ctx.Err() != nil {
			return
		}
		if err := c.collectTerm(ctx, term); err != nil {
			c.metrics.RecordError("collect")
			c.log.Error("term collection failed",
				logger.String("term", term),
				logger.Error(err))
		}
	}
}

func (c *TrendCollector) collectTerm(ctx context.Context, term string) error {
	start := time.Now()

	series, err := c.provider.FetchSeries(ctx, term, c.start)
	if err != nil {
		return err
	}
	series = c.pre.Clean(series)

	if err := c.store.StoreSeries(ctx, series); err != nil {
		return err
	}

	c.metrics.RecordLatency("collect", time.Since(start).Seconds())
	c.log.Info("term collected",
		logger.String("term", term),
		logger.Int("points", series.Len()),
		logger.Duration("took", time.Since(start)))
	return nil
}
