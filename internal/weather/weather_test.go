package weather

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/jtroost/packmule/internal/model"
)

func TestBandFor(t *testing.T) {
	tests := []struct {
		avgHigh float64
		want    model.Temperature
	}{
		{31.2, model.TemperatureHot},
		{25.1, model.TemperatureHot},
		{25.0, model.TemperatureMixed},
		{18.0, model.TemperatureMixed},
		{10.0, model.TemperatureMixed},
		{9.9, model.TemperatureCold},
		{-4.0, model.TemperatureCold},
	}
	for _, tt := range tests {
		if got := bandFor(tt.avgHigh); got != tt.want {
			t.Errorf("bandFor(%.1f) = %q, want %q", tt.avgHigh, got, tt.want)
		}
	}
}

func TestSuggestFetchesAndCaches(t *testing.T) {
	var calls atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"daily":{"temperature_2m_max":[28,30,27],"temperature_2m_min":[18,19,17]}}`)
	}))
	defer ts.Close()

	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.baseURL = ts.URL

	fc, err := svc.Suggest(context.Background(), 43.7, 7.26)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if fc.Suggested != model.TemperatureHot {
		t.Errorf("suggested = %q, want hot", fc.Suggested)
	}
	if fc.AverageHigh < 28.3 || fc.AverageHigh > 28.4 {
		t.Errorf("averageHigh = %.2f", fc.AverageHigh)
	}

	// Same destination inside the TTL is served from cache.
	if _, err := svc.Suggest(context.Background(), 43.7, 7.26); err != nil {
		t.Fatalf("cached suggest: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("api calls = %d, want 1", calls.Load())
	}

	// A different destination fetches again.
	if _, err := svc.Suggest(context.Background(), 60.2, 24.9); err != nil {
		t.Fatalf("second destination: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("api calls = %d, want 2", calls.Load())
	}
}

func TestSuggestErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.baseURL = ts.URL

	if _, err := svc.Suggest(context.Background(), 43.7, 7.26); err == nil {
		t.Fatal("expected error from failing API")
	}
}

func TestSuggestServesStaleOnError(t *testing.T) {
	var fail atomic.Bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"daily":{"temperature_2m_max":[5,6],"temperature_2m_min":[-2,0]}}`)
	}))
	defer ts.Close()

	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.baseURL = ts.URL

	first, err := svc.Suggest(context.Background(), 61.0, 8.0)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if first.Suggested != model.TemperatureCold {
		t.Errorf("suggested = %q, want cold", first.Suggested)
	}

	// Expire the cache, then fail the API: the stale forecast comes back.
	svc.mu.Lock()
	for k, fc := range svc.cache {
		fc.FetchedAt = fc.FetchedAt.Add(-2 * cacheTTL)
		svc.cache[k] = fc
	}
	svc.mu.Unlock()
	fail.Store(true)

	stale, err := svc.Suggest(context.Background(), 61.0, 8.0)
	if err != nil {
		t.Fatalf("stale suggest: %v", err)
	}
	if stale.Suggested != model.TemperatureCold {
		t.Errorf("stale suggested = %q", stale.Suggested)
	}
}
