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

// VisualCrossingProvider implements the weather.Provider interface for the
// Visual Crossing timeline API.
type VisualCrossingProvider struct {
	apiKey   string
	baseURL  string
	settings Settings
	httpCfg  HTTPClientConfig
	fetcher  PayloadFetcher
	logger   *zap.SugaredLogger
}

func NewVisualCrossingProvider(client *http.Client, fetcher PayloadFetcher, apiKey string, settings Settings, logger *zap.SugaredLogger) *VisualCrossingProvider {
	return &VisualCrossingProvider{
		apiKey:   apiKey,
		baseURL:  "https://weather.visualcrossing.com/VisualCrossingWebServices/rest/services/timeline",
		settings: settings,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Circuit: newCircuitBreaker("visualcrossing"),
		},
		fetcher: fetcher,
		logger:  logger,
	}
}

func (p *VisualCrossingProvider) Source() weather.Source {
	return weather.SourceVisualCrossing
}

type visualCrossingPayload struct {
	Timezone string `json:"timezone"`
	Days     []struct {
		Datetime string               `json:"datetime"`
		Hours    []visualCrossingHour `json:"hours"`
	} `json:"days"`
}

type visualCrossingHour struct {
	Datetime      string   `json:"datetime"`
	DatetimeEpoch int64    `json:"datetimeEpoch"`
	Temp          *float64 `json:"temp"`
	WindSpeed     *float64 `json:"windspeed"`
	PrecipProb    *float64 `json:"precipprob"`
	Conditions    string   `json:"conditions"`
}

func (p *VisualCrossingProvider) Fetch(ctx context.Context, window weather.TimeWindow) (weather.Summary, error) {
	if p.apiKey == "" {
		return weather.Summary{}, fmt.Errorf("%s: %w: api key is not configured", p.Source().DisplayName(), weather.ErrSourceUnavailable)
	}

	buildRequest := func() (*http.Request, error) {
		location := p.settings.City
		if location == "" {
			location = fmt.Sprintf("%f,%f", p.settings.Latitude, p.settings.Longitude)
		}
		first, last := requestDates(window)

		values := url.Values{}
		values.Set("unitGroup", "metric")
		values.Set("include", "hours")
		values.Set("key", p.apiKey)
		if p.settings.Lang != "" {
			values.Set("lang", p.settings.Lang)
		}

		u := fmt.Sprintf("%s/%s/%s/%s?%s", p.baseURL, url.PathEscape(location), first, last, values.Encode())
		p.logger.Debugw("requesting forecast", "source", p.Source(), "url", redact(u, p.apiKey))
		return http.NewRequest(http.MethodGet, u, nil)
	}

	data, err := fetchPayload(ctx, p.fetcher, p.Source(), p.httpCfg, buildRequest)
	if err != nil {
		return weather.Summary{}, err
	}

	var payload visualCrossingPayload
	if err := decodePayload(p.Source(), data, &payload); err != nil {
		return weather.Summary{}, err
	}

	return weather.Summarize(p.Source().DisplayName(), window, p.parse(payload))
}

func (p *VisualCrossingProvider) parse(payload visualCrossingPayload) []weather.Observation {
	loc := time.UTC
	if payload.Timezone != "" {
		if l, err := time.LoadLocation(payload.Timezone); err == nil {
			loc = l
		}
	}

	var observations []weather.Observation
	skipped := 0

	for _, day := range payload.Days {
		for _, hour := range day.Hours {
			if hour.Temp == nil || hour.WindSpeed == nil {
				skipped++
				continue
			}

			var ts time.Time
			if hour.DatetimeEpoch > 0 {
				ts = time.Unix(hour.DatetimeEpoch, 0).UTC()
			} else {
				parsed, err := parseTimestamp(day.Datetime+"T"+hour.Datetime, loc)
				if err != nil {
					skipped++
					continue
				}
				ts = parsed
			}

			// unitGroup=metric reports wind speed in km/h.
			observations = append(observations, weather.Observation{
				Timestamp:         ts,
				TemperatureC:      *hour.Temp,
				WindSpeedMS:       kmhToMS(*hour.WindSpeed),
				PrecipProbability: hour.PrecipProb,
				Condition:         hour.Conditions,
			})
		}
	}

	logSkipped(p.logger, p.Source(), skipped)
	return observations
}

// requestDates returns the inclusive date range asked of the timeline API.
// The API reads dates in the location's local time, so the range is padded by
// a day on each side and Contains trims it. It always spans the longest
// selectable window so the shared cache slot can serve any later request.
func requestDates(window weather.TimeWindow) (string, string) {
	end := window.End
	if longest := window.Start.Add(time.Duration(weather.MaxWindowHours()) * time.Hour); longest.After(end) {
		end = longest
	}
	first := window.Start.UTC().AddDate(0, 0, -1).Format("2006-01-02")
	last := end.UTC().AddDate(0, 0, 1).Format("2006-01-02")
	return first, last
}
