// Package stats periodically refreshes store-derived gauges.
package stats

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ErlanBelekov/geoquiz/internal/domain"
	"github.com/ErlanBelekov/geoquiz/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
)

type QuizLister interface {
	List(ctx context.Context) ([]domain.QuizSummary, error)
}

// Collector recounts stored quizzes on a cron schedule and publishes the
// result as quiz_quizzes_stored.
type Collector struct {
	quizzes  QuizLister
	schedule cron.Schedule
	spec     string
	logger   *slog.Logger
}

func NewCollector(quizzes QuizLister, spec string, logger *slog.Logger) (*Collector, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse stats schedule %q: %w", spec, err)
	}
	return &Collector{
		quizzes:  quizzes,
		schedule: sched,
		spec:     spec,
		logger:   logger.With("component", "stats"),
	}, nil
}

// Start refreshes once immediately, then on every tick until ctx is done.
func (c *Collector) Start(ctx context.Context) {
	runner := cron.New()
	runner.Schedule(c.schedule, cron.FuncJob(func() { c.refreshAndLog(ctx) }))

	c.logger.Info("stats collector started", "schedule", c.spec)
	c.refreshAndLog(ctx)
	runner.Start()

	<-ctx.Done()
	<-runner.Stop().Done()
	c.logger.Info("stats collector shut down")
}

// Refresh lists quizzes once and updates the gauge.
func (c *Collector) Refresh(ctx context.Context) (int, error) {
	timer := prometheus.NewTimer(metrics.StatsRefreshDuration)
	defer timer.ObserveDuration()

	list, err := c.quizzes.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list quizzes: %w", err)
	}
	metrics.QuizzesStored.Set(float64(len(list)))
	return len(list), nil
}

func (c *Collector) refreshAndLog(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	n, err := c.Refresh(ctx)
	if err != nil {
		c.logger.Error("stats refresh", "error", err)
		return
	}
	c.logger.Debug("stats refreshed", "quizzes", n)
}
