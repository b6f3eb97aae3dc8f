package trends

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"TrendPulse/internal/domain/models"
	"TrendPulse/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func newTestClient(t *testing.T, baseURL string, chunkDays int) *Client {
	t.Helper()
	c, err := NewClient(Config{
		BaseURL:        baseURL,
		ChunkDays:      chunkDays,
		Retries:        3,
		RequestsPerMin: 100000, // effectively unlimited for tests
		Timeout:        5 * time.Second,
	}, testLogger(t))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func serveRange(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("term")
	start, _ := models.ParseDay(r.URL.Query().Get("start"))
	end, _ := models.ParseDay(r.URL.Query().Get("end"))

	resp := interestResponse{Term: term}
	for d := start; !d.After(end.Time); d = d.AddDays(1) {
		resp.Points = append(resp.Points, interestPoint{Date: d.String(), Value: 50})
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func TestFetchSeriesMergesChunks(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		serveRange(w, r)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 30)
	start := models.NewDay(time.Now()).AddDays(-89) // 90 days, 3 chunks

	s, err := c.FetchSeries(context.Background(), "anxiety", start)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if s.Len() != 90 {
		t.Fatalf("expected 90 points, got %d", s.Len())
	}
	if requests.Load() != 3 {
		t.Errorf("expected 3 chunk requests, got %d", requests.Load())
	}
	if err := s.Validate(); err != nil {
		t.Errorf("merged series invalid: %v", err)
	}
}

func TestFetchSeriesDeduplicatesOverlap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Answer every chunk with one extra trailing day so chunks overlap.
		term := r.URL.Query().Get("term")
		start, _ := models.ParseDay(r.URL.Query().Get("start"))
		end, _ := models.ParseDay(r.URL.Query().Get("end"))
		end = end.AddDays(1)

		resp := interestResponse{Term: term}
		for d := start; !d.After(end.Time); d = d.AddDays(1) {
			resp.Points = append(resp.Points, interestPoint{Date: d.String(), Value: 50})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 10)
	start := models.NewDay(time.Now()).AddDays(-19) // 20 days, 2 chunks

	s, err := c.FetchSeries(context.Background(), "stress", start)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("overlapping chunks produced invalid series: %v", err)
	}
}

func TestFetchSeriesRetriesServerErrors(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		serveRange(w, r)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 365)
	start := models.NewDay(time.Now()).AddDays(-9)

	s, err := c.FetchSeries(context.Background(), "therapy", start)
	if err != nil {
		t.Fatalf("fetch after retry: %v", err)
	}
	if s.Len() != 10 {
		t.Fatalf("expected 10 points, got %d", s.Len())
	}
	if requests.Load() != 2 {
		t.Errorf("expected 2 requests, got %d", requests.Load())
	}
}

func TestFetchSeriesStopsOnClientError(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 365)
	start := models.NewDay(time.Now()).AddDays(-9)

	if _, err := c.FetchSeries(context.Background(), "bad", start); err == nil {
		t.Fatal("expected error")
	}
	if requests.Load() != 1 {
		t.Errorf("client error should not be retried, got %d requests", requests.Load())
	}
}
