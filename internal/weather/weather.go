// Package weather suggests a temperature band for a destination from the
// Open-Meteo forecast. The suggestion is advisory: it prefills the trip
// form but is never written to a trip without the user confirming it.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jtroost/packmule/internal/model"
)

const cacheTTL = 30 * time.Minute

// Forecast is the aggregated outlook for a destination.
type Forecast struct {
	AverageHigh float64           `json:"averageHigh"`
	AverageLow  float64           `json:"averageLow"`
	Suggested   model.Temperature `json:"suggested"`
	FetchedAt   time.Time         `json:"fetchedAt"`
}

// Service fetches and caches destination forecasts.
type Service struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger

	mu    sync.Mutex
	cache map[string]Forecast
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: "https://api.open-meteo.com/v1/forecast",
		logger:  logger.With("component", "weather"),
		cache:   make(map[string]Forecast),
	}
}

// Suggest returns the forecast for a destination, served from cache when
// fetched within the last half hour.
func (s *Service) Suggest(ctx context.Context, lat, lon float64) (Forecast, error) {
	key := fmt.Sprintf("%.3f,%.3f", lat, lon)

	s.mu.Lock()
	cached, ok := s.cache[key]
	s.mu.Unlock()
	if ok && time.Since(cached.FetchedAt) < cacheTTL {
		return cached, nil
	}

	fc, err := s.fetch(ctx, lat, lon)
	if err != nil {
		if ok {
			// Stale beats nothing.
			return cached, nil
		}
		return Forecast{}, err
	}

	s.mu.Lock()
	s.cache[key] = fc
	s.mu.Unlock()
	return fc, nil
}

type apiResponse struct {
	Daily struct {
		TempMax []float64 `json:"temperature_2m_max"`
		TempMin []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

func (s *Service) fetch(ctx context.Context, lat, lon float64) (Forecast, error) {
	url := fmt.Sprintf(
		"%s?latitude=%.4f&longitude=%.4f&daily=temperature_2m_max,temperature_2m_min&timezone=auto&forecast_days=7&temperature_unit=celsius",
		s.baseURL, lat, lon,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Forecast{}, fmt.Errorf("create forecast request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return Forecast{}, fmt.Errorf("forecast request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Forecast{}, fmt.Errorf("forecast API returned status %d", resp.StatusCode)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return Forecast{}, fmt.Errorf("decode forecast: %w", err)
	}
	if len(apiResp.Daily.TempMax) == 0 {
		return Forecast{}, fmt.Errorf("forecast response has no daily data")
	}

	fc := Forecast{
		AverageHigh: average(apiResp.Daily.TempMax),
		AverageLow:  average(apiResp.Daily.TempMin),
		FetchedAt:   time.Now(),
	}
	fc.Suggested = bandFor(fc.AverageHigh)
	return fc, nil
}

func average(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// bandFor maps an average daily high onto the trip temperature bands:
// above 25°C hot, below 10°C cold, mixed between.
func bandFor(avgHighC float64) model.Temperature {
	switch {
	case avgHighC > 25:
		return model.TemperatureHot
	case avgHighC < 10:
		return model.TemperatureCold
	default:
		return model.TemperatureMixed
	}
}
