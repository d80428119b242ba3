package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/weather-forecast-aggregator/internal/store"
	"github.com/i474232898/weather-forecast-aggregator/internal/weather"
)

// kmhToMS converts km/h to m/s.
func kmhToMS(v float64) float64 {
	return v / 3.6
}

// maxBodyBytes caps how much of a provider response is read.
const maxBodyBytes = 16 << 20

// PayloadFetcher returns a provider payload, from cache when it is fresh.
// *store.Fetcher satisfies it.
type PayloadFetcher interface {
	Fetch(ctx context.Context, key string, fetch store.FetchFunc) (json.RawMessage, error)
}

// Settings carries the static request parameters shared by every adapter.
type Settings struct {
	City      string
	Latitude  float64
	Longitude float64
	Lang      string
}

// HTTPClientConfig bundles the HTTP client and the provider's circuit breaker.
type HTTPClientConfig struct {
	Client  *http.Client
	Circuit *gobreaker.CircuitBreaker
}

var (
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// doRequest executes one attempt of the request through the circuit breaker
// and returns the response body.
func doRequest(
	ctx context.Context,
	cfg HTTPClientConfig,
	buildRequest func() (*http.Request, error),
) (json.RawMessage, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}

	req, err := buildRequest()
	if err != nil {
		return nil, err
	}
	// Ensure the request obeys context cancellation.
	req = req.WithContext(ctx)

	result, err := cfg.Circuit.Execute(func() (interface{}, error) {
		resp, execErr := cfg.Client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		// Handle rate limiting and server errors explicitly.
		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, errRateLimited
		}
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if readErr != nil {
			return nil, readErr
		}
		return json.RawMessage(body), nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return nil, err
	}

	body, ok := result.(json.RawMessage)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return body, nil
}

// fetchPayload retrieves the raw payload through the cache and marks every
// failure as the source being unavailable.
func fetchPayload(
	ctx context.Context,
	fetcher PayloadFetcher,
	src weather.Source,
	cfg HTTPClientConfig,
	buildRequest func() (*http.Request, error),
) (json.RawMessage, error) {
	data, err := fetcher.Fetch(ctx, src.CacheKey(), func(ctx context.Context) (json.RawMessage, error) {
		return doRequest(ctx, cfg, buildRequest)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", src.DisplayName(), weather.ErrSourceUnavailable, err)
	}
	return data, nil
}

// decodePayload unmarshals a cached or fresh payload into the provider's wire type.
func decodePayload(src weather.Source, data json.RawMessage, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w: decode payload: %v", src.DisplayName(), weather.ErrSourceUnavailable, err)
	}
	return nil
}

// logSkipped reports hours dropped for missing or malformed fields.
func logSkipped(logger *zap.SugaredLogger, src weather.Source, skipped int) {
	if skipped > 0 {
		logger.Debugw("skipped malformed hours", "source", src, "count", skipped)
	}
}

func redact(u, key string) string {
	if key == "" {
		return u
	}
	return strings.ReplaceAll(u, url.QueryEscape(key), "***")
}
