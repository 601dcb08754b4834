// Package scheduler drives the dispatch pipeline on a fixed interval.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"news_bot/internal/pipeline"
)

// Runner runs one dispatch cycle. Satisfied by *pipeline.Pipeline.
type Runner interface {
	RunCycle(ctx context.Context) *pipeline.Report
}

// Scheduler periodically runs the dispatch pipeline.
type Scheduler struct {
	pipe Runner
	log  *slog.Logger
	tick time.Duration
}

// New creates a Scheduler with the given check interval.
func New(pipe Runner, log *slog.Logger, tick time.Duration) *Scheduler {
	return &Scheduler{pipe: pipe, log: log, tick: tick}
}

// Run starts the scheduler loop, blocking until ctx is cancelled. The
// first cycle runs immediately. A failing cycle never terminates the
// loop.
func (s *Scheduler) Run(ctx context.Context) {
	s.cycle(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cycle(ctx)
		}
	}
}

func (s *Scheduler) cycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("dispatch cycle panicked", "panic", r)
		}
	}()

	s.log.Info("checking for new articles")
	report := s.pipe.RunCycle(ctx)
	if report.Skipped {
		return
	}

	for kind, n := range report.NewArticles {
		s.log.Debug("cycle source result", "kind", kind, "new", n)
	}
	for guild, counts := range report.Guilds {
		if counts.Failed > 0 {
			s.log.Warn("cycle guild deliveries failed",
				"guild", guild, "delivered", counts.Delivered, "failed", counts.Failed)
		}
	}
	if n := report.Delivered(); n > 0 {
		s.log.Info("posted articles", "count", n)
	}
}
