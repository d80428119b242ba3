package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-forecast-aggregator/internal/api/http"
	"github.com/i474232898/weather-forecast-aggregator/internal/app"
	"github.com/i474232898/weather-forecast-aggregator/internal/config"
	"github.com/i474232898/weather-forecast-aggregator/internal/logging"
	"github.com/i474232898/weather-forecast-aggregator/internal/render"
	"github.com/i474232898/weather-forecast-aggregator/internal/scheduler"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	sugar, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer sugar.Sync()

	service := app.NewService(cfg, sugar)

	// Scheduler that keeps the provider cache warm.
	sched := scheduler.New(cfg.WarmInterval, 3*cfg.HTTPTimeout, service, sugar.Named("scheduler"))
	if err := sched.Start(); err != nil {
		sugar.Fatalw("failed to start scheduler", "error", err)
	}
	defer sched.Stop()

	// Basic app configuration
	fiberApp := fiber.New(fiber.Config{
		AppName:               "weather-forecast-aggregator",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	fiberApp.Use(logger.New())
	fiberApp.Use(recover.New())

	// Basic health endpoint
	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-forecast-aggregator",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(fiberApp, service, httpapi.Options{Units: render.Units(cfg.Units)})

	go func() {
		sugar.Infow("listening", "port", cfg.Port, "city", cfg.City)
		if err := fiberApp.Listen(":" + cfg.Port); err != nil {
			sugar.Errorw("fiber server stopped", "error", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := fiberApp.ShutdownWithContext(shutdownCtx); err != nil {
		sugar.Errorw("error during shutdown", "error", err)
	}
}
