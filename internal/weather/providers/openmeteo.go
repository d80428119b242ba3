package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/weather-forecast-aggregator/internal/weather"
)

// OpenMeteoProvider implements the weather.Provider interface for Open-Meteo.
type OpenMeteoProvider struct {
	baseURL  string
	settings Settings
	httpCfg  HTTPClientConfig
	fetcher  PayloadFetcher
	logger   *zap.SugaredLogger
}

func NewOpenMeteoProvider(client *http.Client, fetcher PayloadFetcher, settings Settings, logger *zap.SugaredLogger) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		baseURL:  "https://api.open-meteo.com/v1/forecast",
		settings: settings,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Circuit: newCircuitBreaker("openmeteo"),
		},
		fetcher: fetcher,
		logger:  logger,
	}
}

func (p *OpenMeteoProvider) Source() weather.Source {
	return weather.SourceOpenMeteo
}

// openMeteoPayload mirrors the hourly forecast response. The hourly series are
// parallel arrays; any value may be null.
type openMeteoPayload struct {
	Error       bool   `json:"error"`
	Reason      string `json:"reason"`
	HourlyUnits struct {
		Temperature string `json:"temperature_2m"`
		WindSpeed   string `json:"windspeed_10m"`
	} `json:"hourly_units"`
	Hourly struct {
		Time              []string   `json:"time"`
		Temperature       []*float64 `json:"temperature_2m"`
		PrecipProbability []*float64 `json:"precipitation_probability"`
		WindSpeed         []*float64 `json:"windspeed_10m"`
	} `json:"hourly"`
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, window weather.TimeWindow) (weather.Summary, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(p.settings.Latitude, 'f', -1, 64))
		values.Set("longitude", strconv.FormatFloat(p.settings.Longitude, 'f', -1, 64))
		values.Set("hourly", "temperature_2m,precipitation_probability,windspeed_10m")
		values.Set("forecast_days", "16")
		values.Set("timezone", "UTC")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		p.logger.Debugw("requesting forecast", "source", p.Source(), "url", u)
		return http.NewRequest(http.MethodGet, u, nil)
	}

	data, err := fetchPayload(ctx, p.fetcher, p.Source(), p.httpCfg, buildRequest)
	if err != nil {
		return weather.Summary{}, err
	}

	var payload openMeteoPayload
	if err := decodePayload(p.Source(), data, &payload); err != nil {
		return weather.Summary{}, err
	}

	observations, err := p.parse(payload)
	if err != nil {
		return weather.Summary{}, err
	}

	return weather.Summarize(p.Source().DisplayName(), window, observations)
}

func (p *OpenMeteoProvider) parse(payload openMeteoPayload) ([]weather.Observation, error) {
	if payload.Error {
		return nil, fmt.Errorf("%s: %w: %s", p.Source().DisplayName(), weather.ErrSourceUnavailable, payload.Reason)
	}

	toCelsius, err := temperatureConverter(payload.HourlyUnits.Temperature)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", p.Source().DisplayName(), weather.ErrSourceUnavailable, err)
	}
	toMS, err := windSpeedConverter(payload.HourlyUnits.WindSpeed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", p.Source().DisplayName(), weather.ErrSourceUnavailable, err)
	}

	h := payload.Hourly
	observations := make([]weather.Observation, 0, len(h.Time))
	skipped := 0

	for i, raw := range h.Time {
		ts, err := parseTimestamp(raw, time.UTC)
		temp := valueAt(h.Temperature, i)
		wind := valueAt(h.WindSpeed, i)
		if err != nil || temp == nil || wind == nil {
			skipped++
			continue
		}

		observations = append(observations, weather.Observation{
			Timestamp:         ts,
			TemperatureC:      toCelsius(*temp),
			WindSpeedMS:       toMS(*wind),
			PrecipProbability: valueAt(h.PrecipProbability, i),
		})
	}

	logSkipped(p.logger, p.Source(), skipped)
	return observations, nil
}

// valueAt tolerates series shorter than the time axis.
func valueAt(series []*float64, i int) *float64 {
	if i >= len(series) {
		return nil
	}
	return series[i]
}

// temperatureConverter returns a function converting the reported unit to °C.
func temperatureConverter(unit string) (func(float64) float64, error) {
	switch unit {
	case "", "°C", "celsius":
		return func(v float64) float64 { return v }, nil
	case "°F", "fahrenheit":
		return func(v float64) float64 { return (v - 32) * 5 / 9 }, nil
	default:
		return nil, fmt.Errorf("unsupported temperature unit %q", unit)
	}
}

// windSpeedConverter returns a function converting the reported unit to m/s.
// Open-Meteo reports km/h unless asked otherwise.
func windSpeedConverter(unit string) (func(float64) float64, error) {
	switch unit {
	case "", "km/h", "kmh":
		return kmhToMS, nil
	case "m/s", "ms":
		return func(v float64) float64 { return v }, nil
	case "mp/h", "mph":
		return func(v float64) float64 { return v * 0.44704 }, nil
	case "kn":
		return func(v float64) float64 { return v * 0.514444 }, nil
	default:
		return nil, fmt.Errorf("unsupported wind speed unit %q", unit)
	}
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// parseTimestamp accepts the ISO-8601 variants the providers emit. Values
// without an offset are interpreted in loc.
func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
