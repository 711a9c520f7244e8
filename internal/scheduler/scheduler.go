package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the daily digest on a cron schedule.
type Scheduler struct {
	cron       *cron.Cron
	spec       string
	ctx        context.Context
	cancel     context.CancelFunc
	reportFunc func(ctx context.Context) error
	timeout    time.Duration
	log        *zap.Logger
}

// New creates a scheduler for the given cron spec, evaluated in UTC.
func New(spec string, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		spec:    spec,
		ctx:     ctx,
		cancel:  cancel,
		timeout: time.Minute,
		log:     log,
	}
}

// SetReportFunction sets the job run on every tick.
func (s *Scheduler) SetReportFunction(f func(ctx context.Context) error) {
	s.reportFunc = f
}

// Start registers the job and starts the cron loop.
// An empty spec disables the scheduler.
func (s *Scheduler) Start() error {
	if s.spec == "" {
		s.log.Info("scheduler disabled: empty cron spec")
		return nil
	}
	if s.reportFunc == nil {
		return errors.New("report function not set")
	}

	if _, err := s.cron.AddFunc(s.spec, s.run); err != nil {
		return fmt.Errorf("bad cron spec %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.log.Info("scheduler started", zap.String("spec", s.spec))
	return nil
}

func (s *Scheduler) run() {
	s.log.Info("daily digest triggered")
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()
	if err := s.reportFunc(ctx); err != nil {
		s.log.Error("daily digest failed", zap.Error(err))
	}
}

// Stop waits for a running job and stops the scheduler.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.log.Info("scheduler stopped")
}

// IsRunning reports whether a job is registered.
func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
