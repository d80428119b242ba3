package weather

import "errors"

var (
	// ErrNoData is returned when a provider answered but no hour falls inside the window.
	ErrNoData = errors.New("no observations in window")

	// ErrSourceUnavailable wraps transport, timeout and decoding failures of a provider.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrNoSummaries is returned by Aggregate when called with nothing to combine.
	ErrNoSummaries = errors.New("aggregate requires at least one summary")

	// ErrInvalidWindow is returned for a window whose start is not before its end.
	ErrInvalidWindow = errors.New("invalid time window")

	// ErrUnknownSource is returned for a selection that names no known source.
	ErrUnknownSource = errors.New("unknown source")
)
