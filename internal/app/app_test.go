package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/i474232898/weather-forecast-aggregator/internal/config"
	"github.com/i474232898/weather-forecast-aggregator/internal/store"
	"github.com/i474232898/weather-forecast-aggregator/internal/weather"
)

func TestNewServiceWiresEveryProvider(t *testing.T) {
	lat, lon := 52.52, 13.405
	cfg := &config.AppConfig{
		City:        "Berlin",
		Latitude:    &lat,
		Longitude:   &lon,
		Lang:        "en",
		Units:       "metric",
		CacheFile:   filepath.Join(t.TempDir(), "cache.json"),
		CacheTTL:    time.Hour,
		HTTPTimeout: time.Second,
	}

	svc := NewService(cfg, zap.NewNop().Sugar())

	assert.Equal(t, weather.Providers, svc.Sources())
}

func TestNewCacheSelectsBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	fileCache := newCache(&config.AppConfig{CacheFile: path}, zap.NewNop().Sugar())
	fs, ok := fileCache.(*store.FileStore)
	if assert.True(t, ok) {
		assert.Equal(t, path, fs.Path())
	}

	memCache := newCache(&config.AppConfig{}, zap.NewNop().Sugar())
	assert.IsType(t, &store.MemoryStore{}, memCache)
}
