package cli

import (
	"errors"

	"github.com/vanshika/bnpltrace/backend/internal/service"
	"github.com/vanshika/bnpltrace/backend/internal/store"
)

// serviceFailure maps service and store sentinels onto error codes.
func serviceFailure(out *OutputFormatter, message string, err error) error {
	switch {
	case errors.Is(err, service.ErrMissingUser), errors.Is(err, service.ErrInvalidProfile):
		return out.Fail(ExitCommandError, ErrCodeInvalidInput, message, err)
	case errors.Is(err, store.ErrNotFound):
		return out.Fail(ExitCommandError, ErrCodeNotFound, "record not found", err)
	case errors.Is(err, service.ErrInvalidTransition):
		return out.Fail(ExitFailure, ErrCodeInvalidInput, message, err)
	default:
		return out.Fail(ExitCommandError, ErrCodeStore, message, err)
	}
}
