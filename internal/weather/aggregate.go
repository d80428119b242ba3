package weather

import (
	"fmt"
	"sort"
)

// AggregateSource labels the cross-source summary.
const AggregateSource = "aggregate"

// Summarize reduces the observations that fall inside window into a Summary.
// Hours outside the window are ignored; ErrNoData is returned when none remain.
func Summarize(source string, window TimeWindow, observations []Observation) (Summary, error) {
	var (
		sumTemp, sumWind, sumRain float64
		minTemp, maxTemp          float64
		count, rainCount          int
	)
	conditions := make(map[string]struct{})

	for _, o := range observations {
		if !window.Contains(o.Timestamp) {
			continue
		}

		if count == 0 || o.TemperatureC < minTemp {
			minTemp = o.TemperatureC
		}
		if count == 0 || o.TemperatureC > maxTemp {
			maxTemp = o.TemperatureC
		}
		sumTemp += o.TemperatureC
		sumWind += o.WindSpeedMS
		count++

		if o.PrecipProbability != nil {
			sumRain += *o.PrecipProbability
			rainCount++
		}
		if o.Condition != "" {
			conditions[o.Condition] = struct{}{}
		}
	}

	if count == 0 {
		return Summary{}, fmt.Errorf("%s: %w", source, ErrNoData)
	}

	n := float64(count)
	avgRain := 0.0
	if rainCount > 0 {
		avgRain = sumRain / float64(rainCount)
	}

	return Summary{
		Source:     source,
		AvgTemp:    clamp(sumTemp/n, minTemp, maxTemp),
		MinTemp:    minTemp,
		MaxTemp:    maxTemp,
		AvgWind:    sumWind / n,
		AvgRain:    avgRain,
		Conditions: sortedKeys(conditions),
	}, nil
}

// Aggregate combines per-source summaries into one. Averages are unweighted
// means of the per-source means; min/max are taken over the per-source extremes
// and conditions are unioned.
func Aggregate(summaries []Summary) (Summary, error) {
	if len(summaries) == 0 {
		return Summary{}, ErrNoSummaries
	}

	var sumTemp, sumWind, sumRain float64
	minTemp, maxTemp := summaries[0].MinTemp, summaries[0].MaxTemp
	conditions := make(map[string]struct{})

	for _, s := range summaries {
		sumTemp += s.AvgTemp
		sumWind += s.AvgWind
		sumRain += s.AvgRain

		if s.MinTemp < minTemp {
			minTemp = s.MinTemp
		}
		if s.MaxTemp > maxTemp {
			maxTemp = s.MaxTemp
		}
		for _, c := range s.Conditions {
			if c != "" {
				conditions[c] = struct{}{}
			}
		}
	}

	n := float64(len(summaries))

	return Summary{
		Source:     AggregateSource,
		AvgTemp:    clamp(sumTemp/n, minTemp, maxTemp),
		MinTemp:    minTemp,
		MaxTemp:    maxTemp,
		AvgWind:    sumWind / n,
		AvgRain:    sumRain / n,
		Conditions: sortedKeys(conditions),
	}, nil
}

// clamp keeps float rounding in the mean from escaping [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
