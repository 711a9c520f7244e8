package analytics

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"lawyer-bot/internal/store"
)

// Notifier delivers the digest text.
type Notifier interface {
	Notify(ctx context.Context, recipientID int64, text string) error
}

// Digest builds the daily report from persisted requests and sends it to the admin.
type Digest struct {
	store    store.Store
	notifier Notifier
	adminID  int64
	loc      *time.Location
	now      func() time.Time
	log      *zap.Logger
}

func NewDigest(st store.Store, n Notifier, adminID int64, log *zap.Logger) *Digest {
	if log == nil {
		log = zap.NewNop()
	}
	return &Digest{store: st, notifier: n, adminID: adminID, loc: time.UTC, now: time.Now, log: log}
}

// Build returns the report text for the day containing t.
func (d *Digest) Build(ctx context.Context, t time.Time) (string, error) {
	t = t.In(d.loc)
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, d.loc)
	to := from.AddDate(0, 0, 1)
	summaries, err := d.store.Summaries(ctx, from, to)
	if err != nil {
		return "", fmt.Errorf("load summaries: %w", err)
	}
	stats := AnalyzeDay(summaries, from)
	if js, err := stats.ToJSON(); err == nil {
		d.log.Debug("daily stats", zap.String("stats", js))
	}
	return stats.Report(), nil
}

// Send builds today's report and delivers it to the admin.
func (d *Digest) Send(ctx context.Context) error {
	if d.adminID == 0 {
		d.log.Warn("daily digest skipped: no admin configured")
		return nil
	}
	text, err := d.Build(ctx, d.now())
	if err != nil {
		return err
	}
	if err := d.notifier.Notify(ctx, d.adminID, text); err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	d.log.Info("daily digest sent", zap.Int64("admin_id", d.adminID))
	return nil
}
