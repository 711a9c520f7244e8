// Package store persists completed intake requests.
//
// Writes are append-only: records are inserted once with an auto-incremented
// id and never updated or deleted.
package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// EmergencyRecord is a submitted emergency call.
type EmergencyRecord struct {
	ID          int64     `json:"id"`
	Ref         string    `json:"ref"`
	UserID      int64     `json:"user_id"`
	Username    string    `json:"username"`
	FullName    string    `json:"full_name"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	Coordinates string    `json:"coordinates"`
	Article     string    `json:"article"`
	CreatedAt   time.Time `json:"created_at"`
}

// ConsultationRecord is a submitted consultation request.
type ConsultationRecord struct {
	ID            int64     `json:"id"`
	Ref           string    `json:"ref"`
	UserID        int64     `json:"user_id"`
	Username      string    `json:"username"`
	FullName      string    `json:"full_name"`
	City          string    `json:"city"`
	Phone         string    `json:"phone"`
	Urgency       string    `json:"urgency"`
	Article       string    `json:"article"`
	Description   string    `json:"description"`
	PreferredDate string    `json:"preferred_date"`
	PreferredTime string    `json:"preferred_time"`
	CreatedAt     time.Time `json:"created_at"`
}

// Summary is the projection of either record kind used for reporting.
type Summary struct {
	Kind      string
	Ref       string
	UserID    int64
	Article   string
	Urgency   string
	CreatedAt time.Time
}

const (
	KindEmergency    = "emergency"
	KindConsultation = "consultation"
)

// Store abstracts persistence of requests.
// Implementations must be safe for concurrent use.
type Store interface {
	AddEmergency(ctx context.Context, r EmergencyRecord) (int64, error)
	AddConsultation(ctx context.Context, r ConsultationRecord) (int64, error)
	// Summaries returns records created in [from, to) ordered by creation time.
	Summaries(ctx context.Context, from, to time.Time) ([]Summary, error)
	Close() error
}

// Opts holds configuration for store constructors.
type Opts struct {
	DSN    string
	Logger *zap.Logger
}

func (o Opts) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func applyOpts(opts []Option) Opts {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Option configures a store constructor.
type Option func(*Opts)

// WithDSN sets the connection string or file path.
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithLogger sets the logger used by the store.
func WithLogger(l *zap.Logger) Option {
	return func(o *Opts) { o.Logger = l }
}

// Open creates the store for the given driver name.
func Open(driver string, opts ...Option) (Store, error) {
	var (
		st  Store
		err error
	)
	switch driver {
	case "sqlite":
		st, err = NewSQLiteStore(opts...)
	case "postgres":
		st, err = NewPostgresStore(opts...)
	case "file":
		st, err = NewFileStore(opts...)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", driver, err)
	}
	return st, nil
}
