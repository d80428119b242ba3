package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/weather-forecast-aggregator/internal/weather"
)

// Scheduler periodically runs the all-sources pipeline so provider payloads
// are refreshed in the cache before user requests need them.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *weather.Service
	interval  time.Duration
	timeout   time.Duration
	logger    *zap.SugaredLogger
}

// New creates a new Scheduler. timeout bounds one warm-up run.
func New(interval, timeout time.Duration, service *weather.Service, logger *zap.SugaredLogger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		interval:  interval,
		timeout:   timeout,
		logger:    logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// A non-positive interval disables warm-up.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Infow("scheduler: cache warm-up disabled")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 1
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.Warm)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Infow("scheduler: cache warm-up scheduled", "every_minutes", minutes)
	return nil
}

// Warm runs the pipeline once over the longest selectable window for every
// source. Each provider owns one cache slot, so a shorter window would leave
// it too narrow for longer requests made before it expires.
func (s *Scheduler) Warm() {
	s.logger.Infow("scheduler: running cache warm-up")

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	window, err := weather.NextHours(time.Now().UTC(), weather.MaxWindowHours())
	if err != nil {
		s.logger.Errorw("scheduler: invalid warm-up window", "error", err)
		return
	}

	summaries, err := s.service.Run(ctx, window, weather.SourceAll, false)
	if err != nil {
		s.logger.Errorw("scheduler: warm-up failed", "error", err)
		return
	}
	s.logger.Infow("scheduler: completed cache warm-up", "sources", len(summaries))
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
