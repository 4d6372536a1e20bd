// Package service orchestrates synchronisation, analysis and record upkeep
// over a store.Store.
package service

import (
	"errors"
	"regexp"
	"strings"

	"github.com/vanshika/bnpltrace/backend/internal/domain"
)

var (
	// ErrSourceFetchFailed wraps failures to list the mailbox at all.
	ErrSourceFetchFailed = errors.New("mail source fetch failed")
	// ErrInvalidTransition is returned for status changes other than active -> paid.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrMissingUser is returned when no user identity was supplied.
	ErrMissingUser = errors.New("user email is required")
)

// Extractor turns one message into a candidate obligation.
type Extractor interface {
	Extract(sender, subject, body string) (domain.Candidate, bool)
}

var whitespaceRegex = regexp.MustCompile(`\s+`)

// normalizeEmail lowercases and trims the provided email.
func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// sanitizeString collapses whitespace and trims the result.
func sanitizeString(value string) string {
	value = whitespaceRegex.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}
