package trends

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"TrendPulse/internal/domain/models"
	"TrendPulse/internal/domain/repository"
	xhttp "TrendPulse/pkg/http"
	"TrendPulse/pkg/logger"
)

// interestResponse is the upstream payload for one chunk request.
type interestResponse struct {
	Term   string          `json:"term"`
	Points []interestPoint `json:"points"`
}

type interestPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Client fetches daily search-interest series from the trends API. Long
// ranges are retrieved in fixed-size chunks to keep the upstream
// resolution daily, then merged.
type Client struct {
	http      *xhttp.Client
	limiter   *rate.Limiter
	log       *logger.Logger
	baseURL   string
	chunkDays int
	retries   int
}

var _ repository.SeriesProvider = (*Client)(nil)

// Config holds trends client parameters.
type Config struct {
	BaseURL        string
	ChunkDays      int
	Retries        int
	RequestsPerMin int
	Timeout        time.Duration
}

// NewClient creates a trends API client.
func NewClient(cfg Config, log *logger.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}
	if cfg.ChunkDays <= 0 {
		cfg.ChunkDays = 180
	}
	if cfg.Retries <= 0 {
		cfg.Retries = 3
	}
	if cfg.RequestsPerMin <= 0 {
		cfg.RequestsPerMin = 10
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 25 * time.Second
	}

	return &Client{
		http:      xhttp.NewClient(xhttp.WithTimeout(cfg.Timeout)),
		limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMin)), 1),
		log:       log,
		baseURL:   cfg.BaseURL,
		chunkDays: cfg.ChunkDays,
		retries:   cfg.Retries,
	}, nil
}

// FetchSeries retrieves the full daily series for a term from start to
// today, chunk by chunk. Overlapping days between chunks are deduplicated,
// first occurrence wins.
func (c *Client) FetchSeries(ctx context.Context, term string, start models.Day) (models.Series, error) {
	today := models.NewDay(time.Now())

	seen := make(map[models.Day]struct{})
	series := models.Series{Term: term}

	for from := start; !from.After(today.Time); from = from.AddDays(c.chunkDays) {
		to := from.AddDays(c.chunkDays - 1)
		if to.After(today.Time) {
			to = today
		}

		chunk, err := c.fetchChunk(ctx, term, from, to)
		if err != nil {
			return models.Series{}, fmt.Errorf("fetch %s [%s..%s]: %w", term, from, to, err)
		}

		for i, d := range chunk.Dates {
			if _, dup := seen[d]; dup {
				continue
			}
			seen[d] = struct{}{}
			series.Dates = append(series.Dates, d)
			series.Values = append(series.Values, chunk.Values[i])
		}
	}

	if err := series.Validate(); err != nil {
		return models.Series{}, fmt.Errorf("merged series for %s: %w", term, err)
	}

	c.log.Info("series fetched",
		logger.String("term", term),
		logger.Int("points", series.Len()))
	return series, nil
}

// fetchChunk requests one date range with retries and linear backoff.
func (c *Client) fetchChunk(ctx context.Context, term string, from, to models.Day) (models.Series, error) {
	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return models.Series{}, err
		}

		resp, err := c.requestChunk(ctx, term, from, to)
		if err == nil {
			return c.toSeries(term, resp)
		}
		lastErr = err

		var se *xhttp.StatusError
		if errors.As(err, &se) && !se.Retryable() {
			return models.Series{}, err
		}

		backoff := time.Duration(attempt+1) * 2 * time.Second
		c.log.Warn("chunk fetch failed, retrying",
			logger.String("term", term),
			logger.Int("attempt", attempt+1),
			logger.Duration("backoff", backoff),
			logger.Error(err))

		select {
		case <-ctx.Done():
			return models.Series{}, ctx.Err()
		case <-time.After(backoff):
		}
	}
	return models.Series{}, lastErr
}

func (c *Client) requestChunk(ctx context.Context, term string, from, to models.Day) (*interestResponse, error) {
	var resp interestResponse
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    c.baseURL + "/interest",
		QueryParams: map[string]string{
			"term":  term,
			"start": from.String(),
			"end":   to.String(),
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) toSeries(term string, resp *interestResponse) (models.Series, error) {
	s := models.Series{Term: term}
	for _, p := range resp.Points {
		d, err := models.ParseDay(p.Date)
		if err != nil {
			return models.Series{}, fmt.Errorf("bad date %q: %w", p.Date, err)
		}
		s.Dates = append(s.Dates, d)
		s.Values = append(s.Values, p.Value)
	}
	return s, nil
}
