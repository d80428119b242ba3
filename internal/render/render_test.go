package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-forecast-aggregator/internal/weather"
)

func window(t *testing.T) weather.TimeWindow {
	t.Helper()
	w, err := weather.NextHours(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), 24)
	require.NoError(t, err)
	return w
}

var sample = []weather.Summary{
	{Source: "WeatherAPI", AvgTemp: 10, MinTemp: 5, MaxTemp: 15, AvgWind: 10, AvgRain: 12, Conditions: []string{"Cloudy", "Sunny"}},
}

func TestText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, window(t), sample, Metric))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Weather from 2025-03-01 09:00 to 2025-03-02 09:00 UTC\n"))
	assert.Contains(t, out, "WeatherAPI\n")
	assert.Contains(t, out, "Temperature: 10.0°C (min 5.0°C / max 15.0°C)")
	assert.Contains(t, out, "Wind: 10.0 m/s")
	assert.Contains(t, out, "Precipitation: 12%")
	assert.Contains(t, out, "Conditions: Cloudy, Sunny")
}

func TestTextImperial(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, window(t), sample, Imperial))

	out := buf.String()
	assert.Contains(t, out, "Temperature: 50.0°F (min 41.0°F / max 59.0°F)")
	assert.Contains(t, out, "Wind: 22.4 mph")
}

func TestNoData(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, window(t), nil, Metric))
	assert.Contains(t, buf.String(), NoData)

	buf.Reset()
	require.NoError(t, Table(&buf, "Berlin", window(t), nil, Metric))
	assert.Contains(t, buf.String(), NoData)
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Table(&buf, "Berlin", window(t), sample, Metric))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Forecast from 2025-03-01 to 2025-03-02 for Berlin", lines[0])
	assert.Contains(t, lines[1], "Tavg °C")
	assert.Contains(t, lines[2], "WeatherAPI")
	assert.Contains(t, lines[2], "15.0")
	assert.Contains(t, lines[2], "Cloudy, Sunny")
}

func TestTableLeftAlignsSource(t *testing.T) {
	summaries := []weather.Summary{
		{Source: "Visual Crossing", AvgTemp: 4, MinTemp: 1, MaxTemp: 7},
		{Source: "aggregate", AvgTemp: 12.5, MinTemp: -3, MaxTemp: 21},
	}

	var buf bytes.Buffer
	require.NoError(t, Table(&buf, "Berlin", window(t), summaries, Metric))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)

	col := strings.Index(lines[1], "Source")
	require.GreaterOrEqual(t, col, 0)
	assert.Equal(t, col, strings.Index(lines[2], "Visual Crossing"))
	assert.Equal(t, col, strings.Index(lines[3], "aggregate"))

	// Numeric columns still line up on their right edge.
	assert.Equal(t, strings.Index(lines[2], "7.0")+len("7.0"), strings.Index(lines[3], "21.0")+len("21.0"))
}
