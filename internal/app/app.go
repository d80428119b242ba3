// Package app assembles the forecast pipeline from configuration.
package app

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/i474232898/weather-forecast-aggregator/internal/config"
	"github.com/i474232898/weather-forecast-aggregator/internal/store"
	"github.com/i474232898/weather-forecast-aggregator/internal/weather"
	"github.com/i474232898/weather-forecast-aggregator/internal/weather/providers"
)

// NewService wires the provider cache, the three providers and the pipeline.
func NewService(cfg *config.AppConfig, logger *zap.SugaredLogger) *weather.Service {
	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	fetcher := store.NewFetcher(newCache(cfg, logger.Named("cache")), cfg.CacheTTL, cfg.HTTPTimeout, logger.Named("cache"))

	settings := providers.Settings{
		City:      cfg.City,
		Latitude:  *cfg.Latitude,
		Longitude: *cfg.Longitude,
		Lang:      cfg.Lang,
	}
	keys := providers.Keys{
		WeatherAPI:     cfg.APIs.WeatherAPI.Key,
		VisualCrossing: cfg.APIs.VisualCrossing.Key,
	}

	provs := providers.NewAll(httpClient, fetcher, settings, keys, logger.Named("providers"))
	return weather.NewService(logger.Named("pipeline"), provs)
}

// newCache returns the file-backed cache, or an in-process one when no cache
// file is configured.
func newCache(cfg *config.AppConfig, logger *zap.SugaredLogger) store.Store {
	if cfg.CacheFile == "" {
		logger.Infow("no cache file configured; caching in memory")
		return store.NewMemoryStore()
	}
	return store.NewFileStore(cfg.CacheFile, logger)
}
