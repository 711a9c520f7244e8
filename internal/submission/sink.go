package submission

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"lawyer-bot/internal/store"
)

// Notifier delivers a text to a chat recipient.
type Notifier interface {
	Notify(ctx context.Context, recipientID int64, text string) error
}

// Result describes what Submit dispatched. It never reports delivery
// outcomes: both effects are best-effort and run in the background.
type Result struct {
	Ref       string
	Notified  bool
	Persisted bool
}

// Sink hands completed bundles to the admin and to persistence.
type Sink struct {
	notifier Notifier
	store    store.Store
	adminID  int64
	timeout  time.Duration
	log      *zap.Logger
	wg       sync.WaitGroup
}

func NewSink(notifier Notifier, st store.Store, adminID int64, timeout time.Duration, log *zap.Logger) *Sink {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Sink{notifier: notifier, store: st, adminID: adminID, timeout: timeout, log: log}
}

// Submit starts notification and persistence independently and returns
// without waiting for either.
func (s *Sink) Submit(ctx context.Context, b Bundle) Result {
	base := context.WithoutCancel(ctx)
	res := Result{Ref: b.Ref()}
	log := s.log.With(zap.String("ref", res.Ref), zap.String("flow", b.Flow), zap.Int64("user_id", b.User.ID))

	if s.notifier != nil && s.adminID != 0 {
		text := FormatNotification(b)
		s.spawn(base, log.With(zap.String("effect", "notify")), func(ctx context.Context) error {
			return s.notifier.Notify(ctx, s.adminID, text)
		})
		res.Notified = true
	} else {
		log.Warn("admin notification skipped: no admin configured")
	}

	if s.store != nil {
		s.spawn(base, log.With(zap.String("effect", "persist")), func(ctx context.Context) error {
			return s.persist(ctx, b)
		})
		res.Persisted = true
	}
	return res
}

// Wait blocks until every dispatched effect has finished.
func (s *Sink) Wait() { s.wg.Wait() }

func (s *Sink) spawn(base context.Context, log *zap.Logger, fn func(ctx context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Error("submission effect panicked", zap.Any("panic", r))
			}
		}()
		ctx, cancel := context.WithTimeout(base, s.timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.Error("submission effect failed", zap.Error(err))
			return
		}
		log.Info("submission effect done")
	}()
}

func (s *Sink) persist(ctx context.Context, b Bundle) error {
	switch b.Flow {
	case FlowEmergency:
		id, err := s.store.AddEmergency(ctx, EmergencyRecord(b))
		if err != nil {
			return fmt.Errorf("add emergency: %w", err)
		}
		s.log.Debug("emergency stored", zap.Int64("id", id))
	case FlowConsultation:
		id, err := s.store.AddConsultation(ctx, ConsultationRecord(b))
		if err != nil {
			return fmt.Errorf("add consultation: %w", err)
		}
		s.log.Debug("consultation stored", zap.Int64("id", id))
	default:
		return fmt.Errorf("unknown flow %q", b.Flow)
	}
	return nil
}
