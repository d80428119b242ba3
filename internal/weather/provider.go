package weather

import "context"

// Provider abstracts one forecast source (Open-Meteo, WeatherAPI, Visual Crossing).
// Fetch returns the source's Summary over window, ErrNoData when the provider
// has no hours inside it, or an error wrapping ErrSourceUnavailable.
type Provider interface {
	Source() Source
	Fetch(ctx context.Context, window TimeWindow) (Summary, error)
}
