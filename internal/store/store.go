// Package store defines the persistence contract shared by the SQLite,
// Postgres and Neo4j backends.
package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/vanshika/bnpltrace/backend/internal/domain"
)

var (
	// ErrNotFound is returned when a record or profile does not exist for the
	// requesting user.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when (user_email, source_message_id) already exists.
	ErrDuplicate = errors.New("duplicate record")
)

// RecordStore persists BNPL records. Every method is scoped to one user.
type RecordStore interface {
	FindRecord(ctx context.Context, userEmail, sourceMessageID string) (domain.BnplRecord, error)
	GetRecord(ctx context.Context, userEmail string, id int64) (domain.BnplRecord, error)
	InsertRecord(ctx context.Context, rec domain.BnplRecord) (domain.BnplRecord, error)
	// ListRecords returns newest first. An empty status returns every record.
	ListRecords(ctx context.Context, userEmail string, status domain.Status) ([]domain.BnplRecord, error)
	SetStatus(ctx context.Context, userEmail string, id int64, status domain.Status) error
	ClearRecords(ctx context.Context, userEmail string) (int64, error)
}

// ProfileStore persists user profiles.
type ProfileStore interface {
	GetProfile(ctx context.Context, email string) (domain.UserProfile, error)
	UpsertProfile(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error)
	// UpdateSalary creates the profile when it does not exist yet.
	UpdateSalary(ctx context.Context, email string, salary decimal.Decimal) error
	// GetSalary falls back to domain.DefaultSalary for unknown users.
	GetSalary(ctx context.Context, email string) (decimal.Decimal, error)
}

// Store is the full backend contract.
type Store interface {
	RecordStore
	ProfileStore
	Ping(ctx context.Context) error
	Close() error
}
