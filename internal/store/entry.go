package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when no entry is stored under a key.
	ErrNotFound = errors.New("no cache entry for key")
)

// DefaultTTL is how long a cached payload stays fresh.
const DefaultTTL = time.Hour

// legacyTimestamp is the offset-less ISO-8601 layout written by older cache files.
const legacyTimestamp = "2006-01-02T15:04:05.999999999"

// Entry is one cached provider payload and the time it was captured.
type Entry struct {
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEntry stamps data with capturedAt.
func NewEntry(data json.RawMessage, capturedAt time.Time) Entry {
	return Entry{
		Timestamp: capturedAt.UTC().Format(time.RFC3339Nano),
		Data:      data,
	}
}

// CapturedAt parses the entry timestamp. Timestamps without an offset are read as UTC.
func (e Entry) CapturedAt() (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, e.Timestamp); err == nil {
		return ts, nil
	}
	ts, err := time.ParseInLocation(legacyTimestamp, e.Timestamp, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cache timestamp %q: %w", e.Timestamp, err)
	}
	return ts, nil
}

// IsFresh reports whether now - captured < ttl. Entries with an unreadable
// timestamp are never fresh.
func (e Entry) IsFresh(now time.Time, ttl time.Duration) bool {
	ts, err := e.CapturedAt()
	if err != nil {
		return false
	}
	return now.Sub(ts) < ttl
}

// Store is the contract the cache backends satisfy. Put replaces the whole
// entry under key and leaves other keys untouched.
type Store interface {
	Get(key string) (Entry, error)
	Put(key string, data json.RawMessage) error
}

// Option configures a store or fetcher.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func applyOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
