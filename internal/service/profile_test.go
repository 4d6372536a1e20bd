package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/bnpltrace/backend/internal/domain"
)

func TestProfileService_GetDefaultsWhenMissing(t *testing.T) {
	svc := NewProfileService(newStubStore())

	p, found, err := svc.Get(context.Background(), "New@Example.com")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "new@example.com", p.Email)
	assert.True(t, domain.DefaultSalary.Equal(p.Salary))
}

func TestProfileService_SaveAndGet(t *testing.T) {
	st := newStubStore()
	svc := NewProfileService(st)
	ctx := context.Background()

	saved, err := svc.Save(ctx, domain.UserProfile{
		Email:       " user@example.com",
		FullName:    "  Asha   Rao ",
		Salary:      decimal.Zero,
		MonthlyRent: decimal.NewFromInt(8000),
		City:        "Pune",
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", saved.FullName)
	assert.True(t, domain.DefaultSalary.Equal(saved.Salary))

	got, found, err := svc.Get(ctx, "user@example.com")
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, decimal.NewFromInt(8000).Equal(got.MonthlyRent))
	assert.Equal(t, "Pune", got.City)
}

func TestProfileService_SaveRejectsNegatives(t *testing.T) {
	svc := NewProfileService(newStubStore())

	_, err := svc.Save(context.Background(), domain.UserProfile{
		Email:         "user@example.com",
		Salary:        decimal.NewFromInt(50000),
		OtherExpenses: decimal.NewFromInt(-1),
	})
	require.ErrorIs(t, err, ErrInvalidProfile)
	assert.Contains(t, err.Error(), "other_expenses")

	_, err = svc.Save(context.Background(), domain.UserProfile{})
	assert.ErrorIs(t, err, ErrMissingUser)
}

func TestProfileService_Salary(t *testing.T) {
	svc := NewProfileService(newStubStore())
	ctx := context.Background()

	salary, err := svc.Salary(ctx, "user@example.com")
	require.NoError(t, err)
	assert.True(t, domain.DefaultSalary.Equal(salary))

	require.NoError(t, svc.SetSalary(ctx, "user@example.com", decimal.NewFromInt(64000)))
	salary, err = svc.Salary(ctx, "USER@example.com")
	require.NoError(t, err)
	assert.Equal(t, "64000", salary.String())

	err = svc.SetSalary(ctx, "user@example.com", decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, ErrInvalidProfile)
}
