package service

import (
	"context"
	"fmt"

	"github.com/vanshika/bnpltrace/backend/internal/domain"
	"github.com/vanshika/bnpltrace/backend/internal/store"
)

// RecordService exposes read and upkeep operations on stored records.
type RecordService struct {
	store store.Store
}

// NewRecordService builds a RecordService.
func NewRecordService(st store.Store) *RecordService {
	return &RecordService{store: st}
}

// List returns the user's records newest first, optionally filtered by status.
func (s *RecordService) List(ctx context.Context, userEmail string, status domain.Status) ([]domain.BnplRecord, error) {
	userEmail = normalizeEmail(userEmail)
	if userEmail == "" {
		return nil, ErrMissingUser
	}
	records, err := s.store.ListRecords(ctx, userEmail, status)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	if records == nil {
		records = []domain.BnplRecord{}
	}
	return records, nil
}

// Get returns one record owned by the user.
func (s *RecordService) Get(ctx context.Context, userEmail string, id int64) (domain.BnplRecord, error) {
	userEmail = normalizeEmail(userEmail)
	if userEmail == "" {
		return domain.BnplRecord{}, ErrMissingUser
	}
	return s.store.GetRecord(ctx, userEmail, id)
}

// MarkPaid moves an active record to paid. Marking a paid record again is a
// no-op; records of other users are reported as not found.
func (s *RecordService) MarkPaid(ctx context.Context, userEmail string, id int64) (domain.BnplRecord, error) {
	return s.transition(ctx, userEmail, id, domain.StatusPaid)
}

func (s *RecordService) transition(ctx context.Context, userEmail string, id int64, to domain.Status) (domain.BnplRecord, error) {
	rec, err := s.Get(ctx, userEmail, id)
	if err != nil {
		return domain.BnplRecord{}, err
	}
	if rec.Status == to {
		return rec, nil
	}
	if !allowedTransition(rec.Status, to) {
		return domain.BnplRecord{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, rec.Status, to)
	}
	if err := s.store.SetStatus(ctx, rec.UserEmail, id, to); err != nil {
		return domain.BnplRecord{}, err
	}
	rec.Status = to
	return rec, nil
}

func allowedTransition(from, to domain.Status) bool {
	return from == domain.StatusActive && to == domain.StatusPaid
}

// Reset deletes every record of the user. Profiles are kept.
func (s *RecordService) Reset(ctx context.Context, userEmail string) (int64, error) {
	userEmail = normalizeEmail(userEmail)
	if userEmail == "" {
		return 0, ErrMissingUser
	}
	n, err := s.store.ClearRecords(ctx, userEmail)
	if err != nil {
		return 0, fmt.Errorf("reset records: %w", err)
	}
	return n, nil
}
