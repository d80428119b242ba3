package httpapi

import (
	"bytes"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-forecast-aggregator/internal/render"
	"github.com/i474232898/weather-forecast-aggregator/internal/weather"
)

var validate = validator.New()

// Options tunes how forecasts are presented.
type Options struct {
	Units render.Units
	// Now is the start of every requested window; defaults to time.Now.
	Now func() time.Time
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, opts Options) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Units == "" {
		opts.Units = render.Metric
	}

	v1 := app.Group("/api/v1")

	v1.Get("/sources", func(c *fiber.Ctx) error {
		sources := []fiber.Map{{"id": weather.SourceAll, "name": weather.SourceAll.DisplayName()}}
		for _, s := range service.Sources() {
			sources = append(sources, fiber.Map{"id": s, "name": s.DisplayName()})
		}
		return c.JSON(fiber.Map{
			"sources":     sources,
			"windowHours": weather.WindowHours,
		})
	})

	v1.Get("/forecast", func(c *fiber.Ctx) error {
		var q forecastQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		// Validated above, so both parse.
		source, _ := weather.ParseSource(q.Source)
		summaryType, _ := weather.ParseSummaryType(q.Type)

		window, err := weather.NextHours(opts.Now().UTC(), q.Hours)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		summaries, err := service.Run(c.UserContext(), window, source, summaryType.WantsAggregate())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to build forecast")
		}

		if q.Format == "text" {
			var buf bytes.Buffer
			if err := render.Text(&buf, window, summaries, opts.Units); err != nil {
				return err
			}
			c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
			return c.Send(buf.Bytes())
		}

		return c.JSON(fiber.Map{
			"from":      window.Start,
			"to":        window.End,
			"source":    source,
			"type":      summaryType,
			"summaries": summaries,
		})
	})
}

// forecastQuery is the user's selection: window length, source and summary type.
type forecastQuery struct {
	Hours  int    `validate:"required,oneof=1 3 6 12 24 72 168"`
	Source string `validate:"required,oneof=all openmeteo weatherapi visualcrossing"`
	Type   string `validate:"required,oneof=hourly summary"`
	Format string `validate:"omitempty,oneof=json text"`
}

func (q *forecastQuery) bind(c *fiber.Ctx) error {
	if c.Query("hours") == "" {
		return errors.New("hours query parameter is required")
	}
	q.Hours = c.QueryInt("hours", 0)
	q.Source = c.Query("source", string(weather.SourceAll))
	q.Type = c.Query("type", string(weather.SummaryTotal))
	q.Format = c.Query("format", "json")
	return nil
}
