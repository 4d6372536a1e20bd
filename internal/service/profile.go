package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vanshika/bnpltrace/backend/internal/domain"
	"github.com/vanshika/bnpltrace/backend/internal/store"
)

// ErrInvalidProfile flags negative money values or a missing email.
var ErrInvalidProfile = errors.New("invalid profile")

// ProfileService manages user income and expense figures.
type ProfileService struct {
	store store.Store
}

// NewProfileService builds a ProfileService.
func NewProfileService(st store.Store) *ProfileService {
	return &ProfileService{store: st}
}

// Get returns the saved profile, or a default one when nothing was saved.
// The boolean reports whether the profile exists in the store.
func (s *ProfileService) Get(ctx context.Context, email string) (domain.UserProfile, bool, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.UserProfile{}, false, ErrMissingUser
	}
	p, err := s.store.GetProfile(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return domain.NewUserProfile(email), false, nil
	}
	if err != nil {
		return domain.UserProfile{}, false, fmt.Errorf("get profile: %w", err)
	}
	return p.WithDefaults(), true, nil
}

// Save replaces the full profile. A zero salary is stored as the default.
func (s *ProfileService) Save(ctx context.Context, p domain.UserProfile) (domain.UserProfile, error) {
	p.Email = normalizeEmail(p.Email)
	if p.Email == "" {
		return domain.UserProfile{}, ErrMissingUser
	}
	fields := []struct {
		name  string
		value decimal.Decimal
	}{
		{"salary", p.Salary},
		{"monthly_rent", p.MonthlyRent},
		{"other_expenses", p.OtherExpenses},
		{"existing_loans", p.ExistingLoans},
	}
	for _, f := range fields {
		if f.value.IsNegative() {
			return domain.UserProfile{}, fmt.Errorf("%w: %s must not be negative", ErrInvalidProfile, f.name)
		}
	}
	p.FullName = sanitizeString(p.FullName)
	p.City = sanitizeString(p.City)

	saved, err := s.store.UpsertProfile(ctx, p.WithDefaults())
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("save profile: %w", err)
	}
	return saved.WithDefaults(), nil
}

// SetSalary updates only the salary, creating the profile when needed.
func (s *ProfileService) SetSalary(ctx context.Context, email string, salary decimal.Decimal) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrMissingUser
	}
	if salary.IsNegative() {
		return fmt.Errorf("%w: salary must not be negative", ErrInvalidProfile)
	}
	if err := s.store.UpdateSalary(ctx, email, salary); err != nil {
		return fmt.Errorf("set salary: %w", err)
	}
	return nil
}

// Salary returns the effective salary for analysis.
func (s *ProfileService) Salary(ctx context.Context, email string) (decimal.Decimal, error) {
	email = normalizeEmail(email)
	if email == "" {
		return decimal.Zero, ErrMissingUser
	}
	return s.store.GetSalary(ctx, email)
}
