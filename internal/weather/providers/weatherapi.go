package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/weather-forecast-aggregator/internal/weather"
)

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	apiKey   string
	baseURL  string
	settings Settings
	httpCfg  HTTPClientConfig
	fetcher  PayloadFetcher
	logger   *zap.SugaredLogger
}

func NewWeatherAPIProvider(client *http.Client, fetcher PayloadFetcher, apiKey string, settings Settings, logger *zap.SugaredLogger) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		apiKey:   apiKey,
		baseURL:  "https://api.weatherapi.com/v1/forecast.json",
		settings: settings,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Circuit: newCircuitBreaker("weatherapi"),
		},
		fetcher: fetcher,
		logger:  logger,
	}
}

func (p *WeatherAPIProvider) Source() weather.Source {
	return weather.SourceWeatherAPI
}

type weatherAPIPayload struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Location struct {
		TzID string `json:"tz_id"`
	} `json:"location"`
	Forecast struct {
		ForecastDay []struct {
			Hour []weatherAPIHour `json:"hour"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

type weatherAPIHour struct {
	TimeEpoch    int64    `json:"time_epoch"`
	Time         string   `json:"time"`
	TempC        *float64 `json:"temp_c"`
	WindKph      *float64 `json:"wind_kph"`
	ChanceOfRain *float64 `json:"chance_of_rain"`
	Condition    struct {
		Text string `json:"text"`
	} `json:"condition"`
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, window weather.TimeWindow) (weather.Summary, error) {
	if p.apiKey == "" {
		return weather.Summary{}, fmt.Errorf("%s: %w: api key is not configured", p.Source().DisplayName(), weather.ErrSourceUnavailable)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		// WeatherAPI uses "q" for location; it accepts a city name or "lat,lon".
		if p.settings.City != "" {
			values.Set("q", p.settings.City)
		} else {
			values.Set("q", fmt.Sprintf("%f,%f", p.settings.Latitude, p.settings.Longitude))
		}
		values.Set("days", "10")
		values.Set("aqi", "no")
		values.Set("alerts", "no")
		if p.settings.Lang != "" {
			values.Set("lang", p.settings.Lang)
		}

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		p.logger.Debugw("requesting forecast", "source", p.Source(), "url", redact(u, p.apiKey))
		return http.NewRequest(http.MethodGet, u, nil)
	}

	data, err := fetchPayload(ctx, p.fetcher, p.Source(), p.httpCfg, buildRequest)
	if err != nil {
		return weather.Summary{}, err
	}

	var payload weatherAPIPayload
	if err := decodePayload(p.Source(), data, &payload); err != nil {
		return weather.Summary{}, err
	}

	observations, err := p.parse(payload)
	if err != nil {
		return weather.Summary{}, err
	}

	return weather.Summarize(p.Source().DisplayName(), window, observations)
}

func (p *WeatherAPIProvider) parse(payload weatherAPIPayload) ([]weather.Observation, error) {
	if payload.Error != nil {
		return nil, fmt.Errorf("%s: %w: api error %d: %s",
			p.Source().DisplayName(), weather.ErrSourceUnavailable, payload.Error.Code, payload.Error.Message)
	}

	// Hour.time is local to the forecast location.
	loc := time.UTC
	if payload.Location.TzID != "" {
		if l, err := time.LoadLocation(payload.Location.TzID); err == nil {
			loc = l
		}
	}

	var observations []weather.Observation
	skipped := 0

	for _, day := range payload.Forecast.ForecastDay {
		for _, hour := range day.Hour {
			if hour.TempC == nil || hour.WindKph == nil {
				skipped++
				continue
			}

			var ts time.Time
			if hour.TimeEpoch > 0 {
				ts = time.Unix(hour.TimeEpoch, 0).UTC()
			} else {
				parsed, err := parseTimestamp(hour.Time, loc)
				if err != nil {
					skipped++
					continue
				}
				ts = parsed
			}

			observations = append(observations, weather.Observation{
				Timestamp:         ts,
				TemperatureC:      *hour.TempC,
				WindSpeedMS:       kmhToMS(*hour.WindKph),
				PrecipProbability: hour.ChanceOfRain,
				Condition:         hour.Condition.Text,
			})
		}
	}

	logSkipped(p.logger, p.Source(), skipped)
	return observations, nil
}
