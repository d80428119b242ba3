package providers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/i474232898/weather-forecast-aggregator/internal/weather"
)

// Keys holds the API keys of the providers that require one.
type Keys struct {
	WeatherAPI     string
	VisualCrossing string
}

// NewAll builds every provider in the order "all sources" invokes them.
func NewAll(client *http.Client, fetcher PayloadFetcher, settings Settings, keys Keys, logger *zap.SugaredLogger) []weather.Provider {
	return []weather.Provider{
		NewOpenMeteoProvider(client, fetcher, settings, logger),
		NewWeatherAPIProvider(client, fetcher, keys.WeatherAPI, settings, logger),
		NewVisualCrossingProvider(client, fetcher, keys.VisualCrossing, settings, logger),
	}
}
