// Package mailbox reads candidate messages from a mail provider or a local
// fixture file.
package mailbox

import (
	"context"

	"github.com/vanshika/bnpltrace/backend/internal/domain"
)

// DefaultMaxResults caps a single fetch when the caller passes zero.
const DefaultMaxResults = 50

// Fallbacks for missing headers.
const (
	UnknownSender  = "Unknown"
	DefaultSubject = "No Subject"
)

// Source yields the messages of one mailbox.
//
// Fetch fails as a whole only when the listing step fails; per-message
// problems are reported in Batch.Failures.
type Source interface {
	Fetch(ctx context.Context, maxResults int) (domain.Batch, error)
	Identity(ctx context.Context) (string, error)
}

func limitOrDefault(maxResults int) int {
	if maxResults <= 0 {
		return DefaultMaxResults
	}
	return maxResults
}
