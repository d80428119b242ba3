package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/i474232898/weather-forecast-aggregator/internal/app"
	"github.com/i474232898/weather-forecast-aggregator/internal/config"
	"github.com/i474232898/weather-forecast-aggregator/internal/logging"
	"github.com/i474232898/weather-forecast-aggregator/internal/render"
	"github.com/i474232898/weather-forecast-aggregator/internal/weather"
)

var (
	start     = flag.String("start", "", "First day, YYYY-MM-DD (default: now)")
	end       = flag.String("end", "", "Last day, inclusive, YYYY-MM-DD (default: start + 1 day)")
	source    = flag.String("source", "all", "Source: all, openmeteo, weatherapi or visualcrossing")
	aggregate = flag.Bool("aggregate", true, "Append the cross-source summary")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	sugar, err := logging.New(cfg.LogLevel, "console")
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer sugar.Sync()

	window, err := parseWindow(*start, *end, time.Now().UTC())
	if err != nil {
		sugar.Fatalw("invalid date range", "error", err)
	}
	selection, err := weather.ParseSource(*source)
	if err != nil {
		sugar.Fatalw("invalid source", "error", err)
	}

	sugar.Infow("requesting forecast",
		"city", cfg.City,
		"from", window.Start.Format("2006-01-02"),
		"to", window.End.Add(-time.Nanosecond).Format("2006-01-02"))

	ctx, cancel := context.WithTimeout(context.Background(), 3*cfg.HTTPTimeout)
	defer cancel()

	service := app.NewService(cfg, sugar)
	summaries, err := service.Run(ctx, window, selection, *aggregate)
	if err != nil {
		sugar.Fatalw("pipeline failed", "error", err)
	}
	if len(summaries) == 0 {
		sugar.Errorw("no source returned data")
	}

	if err := render.Table(os.Stdout, cfg.City, window, summaries, render.Units(cfg.Units)); err != nil {
		sugar.Fatalw("failed to print table", "error", err)
	}
}

// parseWindow turns the day flags into a window. The end day is inclusive,
// so the window closes at the following midnight.
func parseWindow(startStr, endStr string, now time.Time) (weather.TimeWindow, error) {
	from := now
	if startStr != "" {
		d, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			return weather.TimeWindow{}, err
		}
		from = d
	}

	to := from.AddDate(0, 0, 1)
	if endStr != "" {
		d, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			return weather.TimeWindow{}, err
		}
		to = d.AddDate(0, 0, 1)
	}

	return weather.NewTimeWindow(from, to)
}
