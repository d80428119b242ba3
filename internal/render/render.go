// Package render formats summaries for people: a message-style block for
// chat and HTTP text responses, and a table for the console.
package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/i474232898/weather-forecast-aggregator/internal/weather"
)

// NoData is written when no source produced a summary.
const NoData = "No forecast data available for the selected period."

// Units selects the units summaries are displayed in. Summaries themselves
// are always °C and m/s.
type Units string

const (
	Metric   Units = "metric"
	Imperial Units = "imperial"
)

func (u Units) temp(c float64) float64 {
	if u == Imperial {
		return c*9/5 + 32
	}
	return c
}

func (u Units) wind(ms float64) float64 {
	if u == Imperial {
		return ms / 0.44704
	}
	return ms
}

func (u Units) tempUnit() string {
	if u == Imperial {
		return "°F"
	}
	return "°C"
}

func (u Units) windUnit() string {
	if u == Imperial {
		return "mph"
	}
	return "m/s"
}

// Text writes one block per summary under a header naming the window.
func Text(w io.Writer, window weather.TimeWindow, summaries []weather.Summary, units Units) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Weather from %s to %s UTC\n\n",
		window.Start.UTC().Format("2006-01-02 15:04"),
		window.End.UTC().Format("2006-01-02 15:04"))

	if len(summaries) == 0 {
		b.WriteString(NoData + "\n")
	}

	tu := units.tempUnit()
	for _, s := range summaries {
		fmt.Fprintf(&b, "%s\n", s.Source)
		fmt.Fprintf(&b, "Temperature: %.1f%s (min %.1f%s / max %.1f%s)\n",
			units.temp(s.AvgTemp), tu, units.temp(s.MinTemp), tu, units.temp(s.MaxTemp), tu)
		fmt.Fprintf(&b, "Wind: %.1f %s\n", units.wind(s.AvgWind), units.windUnit())
		fmt.Fprintf(&b, "Precipitation: %.0f%%\n", s.AvgRain)
		fmt.Fprintf(&b, "Conditions: %s\n\n", strings.Join(s.Conditions, ", "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Table writes the summaries as aligned columns, one row per summary.
func Table(w io.Writer, city string, window weather.TimeWindow, summaries []weather.Summary, units Units) error {
	last := window.End.Add(-1).UTC()
	if _, err := fmt.Fprintf(w, "Forecast from %s to %s for %s\n",
		window.Start.UTC().Format("2006-01-02"), last.Format("2006-01-02"), city); err != nil {
		return err
	}
	if len(summaries) == 0 {
		_, err := fmt.Fprintln(w, NoData)
		return err
	}

	// Numbers align right; the source column is padded here so it stays left-aligned.
	width := utf8.RuneCountInString("Source")
	for _, s := range summaries {
		width = max(width, utf8.RuneCountInString(s.Source))
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	tu, wu := units.tempUnit(), units.windUnit()
	fmt.Fprintf(tw, "%-*s\tTavg %s\tTmin %s\tTmax %s\tWind %s\tPrecip\t\n", width, "Source", tu, tu, tu, wu)
	for _, s := range summaries {
		fmt.Fprintf(tw, "%-*s\t%.1f\t%.1f\t%.1f\t%.1f\t%.0f%%\t  %s\n",
			width, s.Source,
			units.temp(s.AvgTemp), units.temp(s.MinTemp), units.temp(s.MaxTemp),
			units.wind(s.AvgWind), s.AvgRain,
			strings.Join(s.Conditions, ", "))
	}
	return tw.Flush()
}
