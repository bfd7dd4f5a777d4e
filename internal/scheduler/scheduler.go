// Package scheduler fires the daily dispatch cycle at a fixed local
// wall-clock time.
package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/robfig/cron/v3"

	"likesbot/internal/config"
	"likesbot/pkg/logx"
)

type Config struct {
	Timezone string
	DailyAt  string // "HH:MM"
}

// Job is the dispatch entry point the trigger invokes.
type Job func(ctx context.Context)

type Service struct {
	spec string
	loc  *time.Location
	job  Job
	log  logx.Logger

	c *cron.Cron
}

func New(cfg Config, job Job, log logx.Logger) (*Service, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	hour, minute, err := config.ParseHHMM(cfg.DailyAt)
	if err != nil {
		return nil, err
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{
		spec: fmt.Sprintf("%d %d * * *", minute, hour),
		loc:  loc,
		job:  job,
		log:  log.With(logx.String("comp", "scheduler")),
	}, nil
}

// Start registers the daily trigger and starts the cron loop.
// The job runs with ctx so a shutdown cancels an in-flight cycle's calls.
func (s *Service) Start(ctx context.Context) error {
	if s.c != nil {
		return nil
	}
	s.c = cron.New(cron.WithLocation(s.loc))

	_, err := s.c.AddFunc(s.spec, func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("panic in scheduled cycle", logx.Any("panic", r), logx.String("stack", string(debug.Stack())))
			}
		}()
		s.job(ctx)
	})
	if err != nil {
		return fmt.Errorf("register daily trigger: %w", err)
	}

	s.c.Start()
	s.log.Info("daily trigger armed", logx.String("spec", s.spec), logx.String("tz", s.loc.String()))
	return nil
}

func (s *Service) Stop(ctx context.Context) {
	if s.c == nil {
		return
	}
	stopped := s.c.Stop()
	select {
	case <-stopped.Done():
	case <-ctx.Done():
	}
	s.c = nil
	s.log.Info("scheduler stopped")
}

// Next reports the next scheduled fire time, for /status output.
func (s *Service) Next() time.Time {
	if s.c == nil {
		return time.Time{}
	}
	entries := s.c.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
