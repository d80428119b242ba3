package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service runs the fetch-summarize-aggregate pipeline over the configured providers.
type Service struct {
	logger    *zap.SugaredLogger
	providers []Provider
	bySource  map[Source]Provider
}

// NewService creates a new Service. Providers are invoked in the order given
// when every source is selected.
func NewService(logger *zap.SugaredLogger, providers []Provider) *Service {
	bySource := make(map[Source]Provider, len(providers))
	for _, p := range providers {
		bySource[p.Source()] = p
	}
	return &Service{
		logger:    logger,
		providers: providers,
		bySource:  bySource,
	}
}

// Sources returns the sources that have a configured provider, in call order.
func (s *Service) Sources() []Source {
	out := make([]Source, 0, len(s.providers))
	for _, p := range s.providers {
		out = append(out, p.Source())
	}
	return out
}

// Run fetches summaries for the selected source(s) over window. Failed sources
// are logged and dropped; when wantAggregate is set and at least two summaries
// survived, their aggregate is appended last. An empty result is not an error:
// the returned error only reports an invalid window or selection.
func (s *Service) Run(ctx context.Context, window TimeWindow, selection Source, wantAggregate bool) ([]Summary, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}

	log := s.logger.With("run_id", uuid.NewString(), "selection", selection)

	var selected []Provider
	switch selection {
	case SourceAll:
		selected = s.providers
	case SourceOpenMeteo, SourceWeatherAPI, SourceVisualCrossing:
		p, ok := s.bySource[selection]
		if !ok {
			log.Warnw("source is not configured")
			return []Summary{}, nil
		}
		selected = []Provider{p}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, selection)
	}

	log.Debugw("running pipeline",
		"start", window.Start,
		"end", window.End,
		"providers", len(selected))

	// Each slot is written by exactly one goroutine, so call order survives.
	results := make([]*Summary, len(selected))

	var wg sync.WaitGroup
	for i, p := range selected {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()

			summary, err := p.Fetch(ctx, window)
			if err != nil {
				if errors.Is(err, ErrNoData) {
					log.Warnw("no data in window", "source", p.Source(), "error", err)
				} else {
					log.Errorw("source fetch failed", "source", p.Source(), "error", err)
				}
				return
			}
			results[i] = &summary
		}(i, p)
	}
	wg.Wait()

	summaries := make([]Summary, 0, len(results)+1)
	for _, r := range results {
		if r != nil {
			summaries = append(summaries, *r)
		}
	}

	if len(summaries) == 0 {
		log.Warnw("no source produced a summary")
		return summaries, nil
	}

	if wantAggregate && len(summaries) >= 2 {
		agg, err := Aggregate(summaries)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, agg)
		log.Infow("aggregated summaries", "sources", len(summaries)-1)
	}

	return summaries, nil
}
