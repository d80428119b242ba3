package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultFetchTimeout bounds a single upstream call made on a cache miss.
const DefaultFetchTimeout = 10 * time.Second

// FetchFunc performs the upstream call for a cache miss and returns the raw payload.
type FetchFunc func(ctx context.Context) (json.RawMessage, error)

// Fetcher serves payloads from a Store while they are fresh and refreshes
// them with a single upstream call once they are stale or missing.
type Fetcher struct {
	store   Store
	ttl     time.Duration
	timeout time.Duration
	logger  *zap.SugaredLogger
	now     func() time.Time
}

// NewFetcher creates a Fetcher. Non-positive ttl or timeout fall back to the defaults.
func NewFetcher(store Store, ttl, timeout time.Duration, logger *zap.SugaredLogger, opts ...Option) *Fetcher {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	o := applyOptions(opts)
	return &Fetcher{
		store:   store,
		ttl:     ttl,
		timeout: timeout,
		logger:  logger,
		now:     o.now,
	}
}

// Fetch returns the payload cached under key if it is fresh. Otherwise it
// calls fetch once, stores the result and returns it. A failed call leaves
// the cached entry untouched and is returned as an error.
func (f *Fetcher) Fetch(ctx context.Context, key string, fetch FetchFunc) (json.RawMessage, error) {
	entry, err := f.store.Get(key)
	if err == nil && entry.IsFresh(f.now(), f.ttl) {
		f.logger.Debugw("cache hit", "key", key, "captured_at", entry.Timestamp)
		return entry.Data, nil
	}
	f.logger.Debugw("cache miss", "key", key)

	callCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	data, err := fetch(callCtx)
	if err != nil {
		f.logger.Errorw("upstream request failed", "key", key, "error", err)
		return nil, fmt.Errorf("fetch %s: %w", key, err)
	}
	if !json.Valid(data) {
		f.logger.Errorw("upstream returned invalid JSON", "key", key)
		return nil, fmt.Errorf("fetch %s: response is not valid JSON", key)
	}

	if err := f.store.Put(key, data); err != nil {
		// The payload is still usable for this request.
		f.logger.Errorw("cache write failed", "key", key, "error", err)
	}
	return data, nil
}
