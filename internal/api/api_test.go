package api

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/bnpltrace/backend/internal/domain"
)

func TestNewRecord(t *testing.T) {
	rec := domain.BnplRecord{
		ID:           7,
		Vendor:       "Klarna",
		Amount:       decimal.RequireFromString("1000"),
		Installments: 3,
		DueDate:      domain.DueDatePtr("5/1/2026"),
		Subject:      "Plan",
		Status:       domain.StatusActive,
		CreatedAt:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("IST", 19800)),
	}

	got := NewRecord(rec)
	assert.Equal(t, 1000.0, got.Amount)
	assert.Equal(t, 333.33, got.MonthlyAmount)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, "05/01/2026", *got.DueDate)
	assert.Equal(t, "2025-01-01T21:34:05Z", got.CreatedAt)

	data, err := json.Marshal(NewRecord(domain.BnplRecord{Status: domain.StatusPaid}))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"due_date":null`)
	assert.Contains(t, string(data), `"email_subject":""`)
}

func TestNewSyncResult(t *testing.T) {
	report := domain.SyncReport{
		RunID:    "run-1",
		Fetched:  3,
		Inserted: 1,
		Errors:   []domain.MessageError{{MessageID: "m2", Stage: "store", Err: errors.New("locked")}},
	}

	got := NewSyncResult(report, errors.New("partial"))
	assert.Equal(t, 1, got.Failed)
	require.Len(t, got.Errors, 1)
	assert.Equal(t, SyncError{MessageID: "m2", Stage: "store", Error: "locked"}, got.Errors[0])
	assert.Equal(t, "partial", got.Error)
	assert.Empty(t, got.StartedAt)

	clean := NewSyncResult(domain.SyncReport{}, nil)
	assert.NotNil(t, clean.Errors)
	assert.Empty(t, clean.Error)
}

func TestProfileRequestToProfile(t *testing.T) {
	p := ProfileRequest{FullName: "Asha", Salary: decimal.RequireFromString("45000.5"), MonthlyRent: decimal.NewFromInt(1200)}.ToProfile("a@example.com")
	assert.Equal(t, "a@example.com", p.Email)
	assert.Equal(t, "45000.5", p.Salary.String())
	assert.True(t, p.OtherExpenses.IsZero())
}
