package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore keeps requests in a local SQLite file.
// Timestamps are stored as unix seconds.
type SQLiteStore struct {
	db  *sql.DB
	log *zap.Logger
}

// NewSQLiteStore opens the database at the DSN path, creating the directory
// and schema when missing.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	cfg := applyOpts(opts)
	log := cfg.logger().With(zap.String("store", "sqlite"))
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN not set")
	}
	if dir := filepath.Dir(cfg.DSN); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// sqlite serializes writers anyway
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(sqliteMigrations); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Debug("sqlite store ready", zap.String("dsn", cfg.DSN))
	return &SQLiteStore{db: db, log: log}, nil
}

func (s *SQLiteStore) AddEmergency(ctx context.Context, r EmergencyRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO emergency_requests (ref, user_id, username, full_name, phone, address, coordinates, article, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Ref, r.UserID, r.Username, r.FullName, r.Phone, r.Address, r.Coordinates, r.Article, r.CreatedAt.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to insert emergency request %s: %w", r.Ref, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	s.log.Debug("emergency request inserted", zap.Int64("id", id), zap.String("ref", r.Ref))
	return id, nil
}

func (s *SQLiteStore) AddConsultation(ctx context.Context, r ConsultationRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO consultation_requests (ref, user_id, username, full_name, city, phone, urgency, article, description, preferred_date, preferred_time, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Ref, r.UserID, r.Username, r.FullName, r.City, r.Phone, r.Urgency, r.Article, r.Description, r.PreferredDate, r.PreferredTime, r.CreatedAt.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to insert consultation request %s: %w", r.Ref, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	s.log.Debug("consultation request inserted", zap.Int64("id", id), zap.String("ref", r.Ref))
	return id, nil
}

func (s *SQLiteStore) Summaries(ctx context.Context, from, to time.Time) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT 'emergency', ref, user_id, article, '', created_at FROM emergency_requests
		  WHERE created_at >= ? AND created_at < ?
		 UNION ALL
		 SELECT 'consultation', ref, user_id, article, urgency, created_at FROM consultation_requests
		  WHERE created_at >= ? AND created_at < ?
		 ORDER BY 6`,
		from.Unix(), to.Unix(), from.Unix(), to.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sm Summary
		var ts int64
		if err := rows.Scan(&sm.Kind, &sm.Ref, &sm.UserID, &sm.Article, &sm.Urgency, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		sm.CreatedAt = time.Unix(ts, 0).UTC()
		out = append(out, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate summary rows: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
