package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"WEATHER_CITY", "WEATHER_COUNTRY", "WEATHER_LATITUDE", "WEATHER_LONGITUDE",
	"WEATHER_LANG", "WEATHER_UNITS", "WEATHERAPI_API_KEY", "VISUALCROSSING_API_KEY",
	"CACHE_FILE", "CACHE_TTL", "HTTP_TIMEOUT", "CACHE_WARM_INTERVAL",
	"PORT", "LOG_LEVEL", "LOG_FORMAT", "GEOCODER_API_KEY",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		// Setenv restores the original value after the test.
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const jsonConfig = `{
  "city": "Moscow",
  "latitude": 55.75,
  "longitude": 37.62,
  "lang": "ru",
  "units": "metric",
  "apis": {
    "weatherapi": {"key": "wa-key"},
    "visual_crossing": {"key": "vc-key"}
  }
}`

func TestLoadJSONFile(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFile(writeFile(t, "config.json", jsonConfig))
	require.NoError(t, err)

	assert.Equal(t, "Moscow", cfg.City)
	assert.Equal(t, 55.75, *cfg.Latitude)
	assert.Equal(t, 37.62, *cfg.Longitude)
	assert.Equal(t, "ru", cfg.Lang)
	assert.Equal(t, "wa-key", cfg.APIs.WeatherAPI.Key)
	assert.Equal(t, "vc-key", cfg.APIs.VisualCrossing.Key)
	assert.Equal(t, ".weather_cache.json", cfg.CacheFile)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 30*time.Minute, cfg.WarmInterval)
	assert.Equal(t, "8080", cfg.Port)
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yaml", `
city: Oslo
latitude: 59.91
longitude: 10.75
apis:
  weatherapi:
    key: wa
  visual_crossing:
    key: vc
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Oslo", cfg.City)
	assert.Equal(t, 59.91, *cfg.Latitude)
	assert.Equal(t, "en", cfg.Lang)
	assert.Equal(t, "metric", cfg.Units)
}

func TestEmptyCacheFileMeansMemory(t *testing.T) {
	clearEnv(t)
	t.Setenv("CACHE_FILE", "")

	cfg, err := LoadFile(writeFile(t, "config.json", jsonConfig))
	require.NoError(t, err)
	assert.Empty(t, cfg.CacheFile)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEATHER_CITY", "Kazan")
	t.Setenv("WEATHER_LATITUDE", "55.79")
	t.Setenv("WEATHERAPI_API_KEY", "from-env")
	t.Setenv("CACHE_TTL", "30m")
	t.Setenv("CACHE_WARM_INTERVAL", "0")

	cfg, err := LoadFile(writeFile(t, "config.json", jsonConfig))
	require.NoError(t, err)
	assert.Equal(t, "Kazan", cfg.City)
	assert.Equal(t, 55.79, *cfg.Latitude)
	assert.Equal(t, "from-env", cfg.APIs.WeatherAPI.Key)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.Equal(t, time.Duration(0), cfg.WarmInterval)
}

func TestLoadWithoutFileUsesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("WEATHER_CITY", "Paris")
	t.Setenv("WEATHER_LATITUDE", "48.85")
	t.Setenv("WEATHER_LONGITUDE", "2.35")
	t.Setenv("WEATHERAPI_API_KEY", "wa")
	t.Setenv("VISUALCROSSING_API_KEY", "vc")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, "Paris", cfg.City)
}

func TestMissingAPIKeyIsConfigurationError(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.json", `{"city":"Rome","latitude":41.9,"longitude":12.5,"apis":{"weatherapi":{"key":"wa"}}}`)

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VisualCrossing")
}

func TestInvalidValues(t *testing.T) {
	clearEnv(t)

	t.Setenv("WEATHER_LATITUDE", "north")
	_, err := LoadFile(writeFile(t, "config.json", jsonConfig))
	assert.Error(t, err)

	t.Setenv("WEATHER_LATITUDE", "123")
	_, err = LoadFile(writeFile(t, "config.json", jsonConfig))
	assert.Error(t, err)

	t.Setenv("WEATHER_LATITUDE", "")
	t.Setenv("WEATHER_UNITS", "kelvin")
	_, err = LoadFile(writeFile(t, "config.json", jsonConfig))
	assert.Error(t, err)

	t.Setenv("WEATHER_UNITS", "")
	_, err = LoadFile(writeFile(t, "config.json", "{broken"))
	assert.Error(t, err)
}

func TestGeocodesMissingCoordinates(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEOCODER_API_KEY", "geo")

	orig := geocode
	t.Cleanup(func() { geocode = orig })
	var gotCity string
	geocode = func(apiKey, city, country string) (float64, float64, error) {
		gotCity = city
		return 40.4, -3.7, nil
	}

	cfg, err := LoadFile(writeFile(t, "config.json", `{"city":"Madrid","apis":{"weatherapi":{"key":"wa"},"visual_crossing":{"key":"vc"}}}`))
	require.NoError(t, err)
	assert.Equal(t, "Madrid", gotCity)
	assert.Equal(t, 40.4, *cfg.Latitude)
	assert.Equal(t, -3.7, *cfg.Longitude)

	geocode = func(apiKey, city, country string) (float64, float64, error) {
		return 0, 0, errors.New("quota exceeded")
	}
	_, err = LoadFile(writeFile(t, "config.json", `{"city":"Madrid"}`))
	assert.Error(t, err)
}

func TestMissingCoordinatesWithoutGeocoder(t *testing.T) {
	clearEnv(t)
	_, err := LoadFile(writeFile(t, "config.json", `{"city":"Madrid","apis":{"weatherapi":{"key":"wa"},"visual_crossing":{"key":"vc"}}}`))
	assert.Error(t, err)
}
