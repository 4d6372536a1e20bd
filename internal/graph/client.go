package graph

import (
	"context"
	"errors"
)

// Client is the narrow surface the graph-backed store needs from a Bolt
// driver. Every call runs in its own auto-commit session.
type Client interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error)
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Result holds every record of a fully consumed query.
type Result struct {
	Records []Record
}

// Record maps RETURN aliases to values.
type Record map[string]any

// Options configures a graph client implementation.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

var (
	// ErrMissingURI indicates the graph URI is not provided.
	ErrMissingURI = errors.New("graph URI is required")
	// ErrConstraintViolation is what clients report when a write breaks a
	// uniqueness constraint.
	ErrConstraintViolation = errors.New("graph constraint violation")
)

// IsConstraintViolation reports whether err stems from a schema constraint.
func IsConstraintViolation(err error) bool {
	return errors.Is(err, ErrConstraintViolation)
}
