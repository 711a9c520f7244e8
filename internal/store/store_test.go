package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()
	day := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

	id1, err := st.AddEmergency(ctx, EmergencyRecord{
		Ref: "7d3c1f1e-0000-4000-8000-000000000001", UserID: 1, Username: "alice", FullName: "Alice A",
		Phone: "+79990001111", Coordinates: "55.751244, 37.618423", CreatedAt: day.Add(2 * time.Hour),
	})
	require.NoError(t, err)

	id2, err := st.AddConsultation(ctx, ConsultationRecord{
		Ref: "7d3c1f1e-0000-4000-8000-000000000002", UserID: 2, Username: "bob", FullName: "Bob B",
		City: "Москва", Phone: "+79990002222", Urgency: "Срочно", Article: "228", Description: "текст",
		PreferredDate: "17.10.2026", PreferredTime: "10:00-12:00", CreatedAt: day.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Positive(t, id1)
	assert.Positive(t, id2)

	// next day, outside the range
	_, err = st.AddConsultation(ctx, ConsultationRecord{
		Ref: "7d3c1f1e-0000-4000-8000-000000000003", UserID: 3, Article: "105", CreatedAt: day.AddDate(0, 0, 1),
	})
	require.NoError(t, err)

	got, err := st.Summaries(ctx, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, KindConsultation, got[0].Kind)
	assert.Equal(t, "Срочно", got[0].Urgency)
	assert.Equal(t, "228", got[0].Article)
	assert.Equal(t, KindEmergency, got[1].Kind)
	assert.Equal(t, int64(1), got[1].UserID)
	assert.True(t, got[1].CreatedAt.Equal(day.Add(2*time.Hour)))
}

func TestSQLiteStore(t *testing.T) {
	st, err := NewSQLiteStore(WithDSN(filepath.Join(t.TempDir(), "db", "requests.db")))
	require.NoError(t, err)
	defer st.Close()
	exerciseStore(t, st)
}

func TestFileStore(t *testing.T) {
	p := filepath.Join(t.TempDir(), "requests.jsonl")
	st, err := NewFileStore(WithDSN(p))
	require.NoError(t, err)
	exerciseStore(t, st)

	// ids continue after reopening
	st2, err := NewFileStore(WithDSN(p))
	require.NoError(t, err)
	id, err := st2.AddEmergency(context.Background(), EmergencyRecord{Ref: "x", CreatedAt: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)

	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("env DATABASE_URL not set")
	}
	st, err := NewPostgresStore(WithDSN(dsn))
	if err != nil {
		t.Skipf("Postgres not available: %v", err)
	}
	defer st.Close()
	_, _ = st.db.Exec("DELETE FROM emergency_requests")
	_, _ = st.db.Exec("DELETE FROM consultation_requests")
	exerciseStore(t, st)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("mongo", WithDSN("x"))
	require.Error(t, err)
}
