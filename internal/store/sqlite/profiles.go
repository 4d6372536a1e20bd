package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vanshika/bnpltrace/backend/internal/domain"
)

// GetProfile returns the stored profile as saved, without defaults applied.
func (s *Store) GetProfile(ctx context.Context, email string) (domain.UserProfile, error) {
	var (
		p         domain.UserProfile
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT email, full_name, salary, monthly_rent, other_expenses, city, existing_loans, created_at
		FROM users WHERE email = ?
	`, email).Scan(&p.Email, &p.FullName, &p.Salary, &p.MonthlyRent, &p.OtherExpenses, &p.City, &p.ExistingLoans, &createdAt)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("get profile: %w", notFound(err))
	}
	if t, err := time.Parse(timeLayout, createdAt); err == nil {
		p.CreatedAt = t
	}
	return p, nil
}

// UpsertProfile replaces every editable field of the profile.
func (s *Store) UpsertProfile(ctx context.Context, p domain.UserProfile) (domain.UserProfile, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (email, full_name, salary, monthly_rent, other_expenses, city, existing_loans, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (email) DO UPDATE SET
			full_name      = excluded.full_name,
			salary         = excluded.salary,
			monthly_rent   = excluded.monthly_rent,
			other_expenses = excluded.other_expenses,
			city           = excluded.city,
			existing_loans = excluded.existing_loans
	`,
		p.Email,
		p.FullName,
		p.Salary.String(),
		p.MonthlyRent.String(),
		p.OtherExpenses.String(),
		p.City,
		p.ExistingLoans.String(),
		s.now(),
	)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("upsert profile: %w", err)
	}
	return s.GetProfile(ctx, p.Email)
}

// UpdateSalary sets only the salary, creating the profile if needed.
func (s *Store) UpdateSalary(ctx context.Context, email string, salary decimal.Decimal) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (email, salary, created_at) VALUES (?, ?, ?)
		ON CONFLICT (email) DO UPDATE SET salary = excluded.salary
	`, email, salary.String(), s.now())
	if err != nil {
		return fmt.Errorf("update salary: %w", err)
	}
	return nil
}

// GetSalary returns the effective salary of the user.
func (s *Store) GetSalary(ctx context.Context, email string) (decimal.Decimal, error) {
	var salary decimal.Decimal
	err := s.db.QueryRowContext(ctx, `SELECT salary FROM users WHERE email = ?`, email).Scan(&salary)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.DefaultSalary, nil
		}
		return decimal.Zero, fmt.Errorf("get salary: %w", err)
	}
	return domain.UserProfile{Salary: salary}.WithDefaults().Salary, nil
}
