package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"lawyer-bot/internal/store"
)

type stubStore struct {
	summaries []store.Summary
	from, to  time.Time
	err       error
}

func (s *stubStore) AddEmergency(context.Context, store.EmergencyRecord) (int64, error) {
	return 0, nil
}

func (s *stubStore) AddConsultation(context.Context, store.ConsultationRecord) (int64, error) {
	return 0, nil
}

func (s *stubStore) Summaries(_ context.Context, from, to time.Time) ([]store.Summary, error) {
	s.from, s.to = from, to
	return s.summaries, s.err
}

func (s *stubStore) Close() error { return nil }

type recordingNotifier struct {
	to   int64
	text string
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, id int64, text string) error {
	n.to, n.text = id, text
	return n.err
}

func TestDigestSend(t *testing.T) {
	now := time.Date(2026, 10, 16, 21, 0, 0, 0, time.UTC)
	st := &stubStore{summaries: []store.Summary{
		{Kind: store.KindEmergency, Ref: "12345678-abcd", UserID: 1, CreatedAt: now.Add(-time.Hour)},
	}}
	n := &recordingNotifier{}
	d := NewDigest(st, n, 99, zaptest.NewLogger(t))
	d.now = func() time.Time { return now }

	require.NoError(t, d.Send(context.Background()))
	assert.Equal(t, int64(99), n.to)
	assert.Contains(t, n.text, "Экстренные вызовы: 1")
	assert.Equal(t, time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), st.from)
	assert.Equal(t, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), st.to)
}

func TestDigestErrors(t *testing.T) {
	d := NewDigest(&stubStore{err: errors.New("db down")}, &recordingNotifier{}, 99, zaptest.NewLogger(t))
	assert.ErrorContains(t, d.Send(context.Background()), "db down")

	d = NewDigest(&stubStore{}, &recordingNotifier{err: errors.New("blocked")}, 99, zaptest.NewLogger(t))
	assert.ErrorContains(t, d.Send(context.Background()), "blocked")
}

func TestDigestWithoutAdmin(t *testing.T) {
	n := &recordingNotifier{}
	d := NewDigest(&stubStore{}, n, 0, zaptest.NewLogger(t))
	require.NoError(t, d.Send(context.Background()))
	assert.Empty(t, n.text)
}
