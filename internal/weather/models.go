package weather

import (
	"fmt"
	"time"
)

// Source identifies a forecast provider, or every provider at once (SourceAll).
type Source string

const (
	SourceAll            Source = "all"
	SourceOpenMeteo      Source = "openmeteo"
	SourceWeatherAPI     Source = "weatherapi"
	SourceVisualCrossing Source = "visualcrossing"
)

// Providers lists the concrete sources in the order "all" invokes them.
var Providers = []Source{SourceOpenMeteo, SourceWeatherAPI, SourceVisualCrossing}

// ParseSource maps a user-facing selection onto a Source.
func ParseSource(s string) (Source, error) {
	switch src := Source(s); src {
	case SourceAll, SourceOpenMeteo, SourceWeatherAPI, SourceVisualCrossing:
		return src, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSource, s)
	}
}

// CacheKey returns the fixed cache slot used by the source's adapter.
// SourceAll has no slot of its own.
func (s Source) CacheKey() string {
	switch s {
	case SourceOpenMeteo:
		return "open_meteo"
	case SourceWeatherAPI:
		return "weatherapi"
	case SourceVisualCrossing:
		return "visual_crossing"
	default:
		return ""
	}
}

// DisplayName is the label written into Summary.Source.
func (s Source) DisplayName() string {
	switch s {
	case SourceOpenMeteo:
		return "Open-Meteo"
	case SourceWeatherAPI:
		return "WeatherAPI"
	case SourceVisualCrossing:
		return "Visual Crossing"
	case SourceAll:
		return "All sources"
	default:
		return string(s)
	}
}

// SummaryType selects between per-source output and per-source plus aggregate.
type SummaryType string

const (
	SummaryHourly SummaryType = "hourly"
	SummaryTotal  SummaryType = "summary"
)

// ParseSummaryType maps a user-facing value onto a SummaryType.
func ParseSummaryType(s string) (SummaryType, error) {
	switch t := SummaryType(s); t {
	case SummaryHourly, SummaryTotal:
		return t, nil
	default:
		return "", fmt.Errorf("unknown summary type %q", s)
	}
}

// WantsAggregate reports whether the cross-source summary should be appended.
func (t SummaryType) WantsAggregate() bool {
	switch t {
	case SummaryTotal:
		return true
	case SummaryHourly:
		return false
	default:
		return false
	}
}

// WindowHours are the window lengths a user may pick.
var WindowHours = []int{1, 3, 6, 12, 24, 72, 168}

// MaxWindowHours is the longest selectable window.
func MaxWindowHours() int {
	return WindowHours[len(WindowHours)-1]
}

// TimeWindow is the half-open interval [Start, End).
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeWindow returns a validated window.
func NewTimeWindow(start, end time.Time) (TimeWindow, error) {
	w := TimeWindow{Start: start.UTC(), End: end.UTC()}
	if err := w.Validate(); err != nil {
		return TimeWindow{}, err
	}
	return w, nil
}

// NextHours returns the window [from, from+hours).
func NextHours(from time.Time, hours int) (TimeWindow, error) {
	return NewTimeWindow(from, from.Add(time.Duration(hours)*time.Hour))
}

// Validate checks Start < End.
func (w TimeWindow) Validate() error {
	if !w.Start.Before(w.End) {
		return fmt.Errorf("%w: start %s is not before end %s", ErrInvalidWindow,
			w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
	}
	return nil
}

// Contains reports whether t falls inside the window; Start is included, End is not.
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Observation is one parsed forecast hour, already in °C and m/s.
// PrecipProbability is nil when the provider did not report it.
type Observation struct {
	Timestamp         time.Time
	TemperatureC      float64
	WindSpeedMS       float64
	PrecipProbability *float64
	Condition         string
}

// Summary is the reduced view of one source (or the aggregate) over a window.
// Conditions is sorted and holds no duplicates or empty strings.
type Summary struct {
	Source     string   `json:"source"`
	AvgTemp    float64  `json:"avgTempC"`
	MinTemp    float64  `json:"minTempC"`
	MaxTemp    float64  `json:"maxTempC"`
	AvgWind    float64  `json:"avgWindMs"`
	AvgRain    float64  `json:"avgRainPercent"`
	Conditions []string `json:"conditions"`
}
