package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/liuyuxiang92/MOFMaster-Scientific-Server/evaluator"
	"github.com/liuyuxiang92/MOFMaster-Scientific-Server/tools"
)

const defaultHealthCron = "*/1 * * * *"

// Probe schedules use the standard 5-field cron format, minute resolution.
var healthCronParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// parseHealthCron validates and parses a probe schedule. Schedules are
// interpreted in UTC; timezone prefixes are rejected rather than honored.
func parseHealthCron(expr string) (cron.Schedule, error) {
	clean := strings.TrimSpace(expr)
	if clean == "" {
		return nil, errors.New("health cron expression is required")
	}
	upper := strings.ToUpper(clean)
	if strings.Contains(upper, "CRON_TZ=") || strings.Contains(upper, "TZ=") {
		return nil, errors.New("health cron expression must be UTC-only (timezone prefixes are not allowed)")
	}
	schedule, err := healthCronParser.Parse(clean)
	if err != nil {
		return nil, fmt.Errorf("invalid health cron expression: %w", err)
	}
	return schedule, nil
}

// HealthSchedulerConfig controls background evaluator health probing.
type HealthSchedulerConfig struct {
	Checker  evaluator.HealthChecker
	CronExpr string
	Timeout  time.Duration
	Logger   *slog.Logger
	Now      func() time.Time
}

// HealthScheduler probes the evaluator on a cron schedule. The most recent
// probe result gates the readiness endpoint.
type HealthScheduler struct {
	checker  evaluator.HealthChecker
	schedule cron.Schedule
	timeout  time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	healthy bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewHealthScheduler creates a health scheduler.
func NewHealthScheduler(cfg HealthSchedulerConfig) (*HealthScheduler, error) {
	if cfg.Checker == nil {
		return nil, errors.New("health scheduler requires an evaluator health checker")
	}
	if cfg.CronExpr == "" {
		cfg.CronExpr = defaultHealthCron
	}
	schedule, err := parseHealthCron(cfg.CronExpr)
	if err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}

	return &HealthScheduler{
		checker:  cfg.Checker,
		schedule: schedule,
		timeout:  cfg.Timeout,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}, nil
}

// Healthy reports the result of the most recent probe.
func (s *HealthScheduler) Healthy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.healthy
}

// Start begins scheduler execution. The first probe runs immediately.
// Cancelling ctx stops the loop, as does Stop.
func (s *HealthScheduler) Start(ctx context.Context) error {
	if s == nil {
		return errors.New("health scheduler is nil")
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return nil
	}
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		s.RunOnce(loopCtx)

		for {
			next := s.schedule.Next(s.now().UTC())
			timer := time.NewTimer(next.Sub(s.now()))
			select {
			case <-loopCtx.Done():
				timer.Stop()
				return
			case <-timer.C:
				s.RunOnce(loopCtx)
			}
		}
	}()

	return nil
}

// Stop terminates scheduler execution.
func (s *HealthScheduler) Stop(ctx context.Context) error {
	if s == nil {
		return nil
	}

	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce performs one evaluator probe and records the outcome.
func (s *HealthScheduler) RunOnce(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	err := s.checker.Ping(probeCtx)

	s.mu.Lock()
	s.healthy = err == nil
	s.mu.Unlock()

	errorCode := ""
	if err != nil {
		errorCode = "PING_FAILED"
		s.logger.Warn("evaluator health probe failed", "err", err)
	}
	tools.EmitHealthObservation(tools.ToolHealthObservation{
		Target:     "evaluator",
		Healthy:    err == nil,
		DurationMS: time.Since(start).Milliseconds(),
		ErrorCode:  errorCode,
	})
}
