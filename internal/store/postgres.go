package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "embed"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Database connection pool configuration constants
const (
	DefaultMaxOpenConns    = 10
	DefaultMaxIdleConns    = 5
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db  *sql.DB
	log *zap.Logger
}

// NewPostgresStore connects to PostgreSQL and applies the schema.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	cfg := applyOpts(opts)
	log := cfg.logger().With(zap.String("store", "postgres"))
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN not set")
	}
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.Exec(postgresMigrations); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Debug("postgres store ready")
	return &PostgresStore{db: db, log: log}, nil
}

func (s *PostgresStore) AddEmergency(ctx context.Context, r EmergencyRecord) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO emergency_requests (ref, user_id, username, full_name, phone, address, coordinates, article, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		r.Ref, r.UserID, r.Username, r.FullName, r.Phone, r.Address, r.Coordinates, r.Article, r.CreatedAt.UTC()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert emergency request %s: %w", r.Ref, err)
	}
	s.log.Debug("emergency request inserted", zap.Int64("id", id), zap.String("ref", r.Ref))
	return id, nil
}

func (s *PostgresStore) AddConsultation(ctx context.Context, r ConsultationRecord) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO consultation_requests (ref, user_id, username, full_name, city, phone, urgency, article, description, preferred_date, preferred_time, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`,
		r.Ref, r.UserID, r.Username, r.FullName, r.City, r.Phone, r.Urgency, r.Article, r.Description, r.PreferredDate, r.PreferredTime, r.CreatedAt.UTC()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert consultation request %s: %w", r.Ref, err)
	}
	s.log.Debug("consultation request inserted", zap.Int64("id", id), zap.String("ref", r.Ref))
	return id, nil
}

func (s *PostgresStore) Summaries(ctx context.Context, from, to time.Time) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT 'emergency', ref::text, user_id, article, '', created_at FROM emergency_requests
		  WHERE created_at >= $1 AND created_at < $2
		 UNION ALL
		 SELECT 'consultation', ref::text, user_id, article, urgency, created_at FROM consultation_requests
		  WHERE created_at >= $1 AND created_at < $2
		 ORDER BY 6`,
		from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sm Summary
		if err := rows.Scan(&sm.Kind, &sm.Ref, &sm.UserID, &sm.Article, &sm.Urgency, &sm.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		sm.CreatedAt = sm.CreatedAt.UTC()
		out = append(out, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate summary rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
