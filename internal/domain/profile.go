package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultSalary applies to users who never saved a salary.
var DefaultSalary = decimal.NewFromInt(30000)

// UserProfile carries the income and expense figures of one user.
type UserProfile struct {
	Email         string
	FullName      string
	Salary        decimal.Decimal
	MonthlyRent   decimal.Decimal
	OtherExpenses decimal.Decimal
	City          string
	ExistingLoans decimal.Decimal
	CreatedAt     time.Time
}

// NewUserProfile returns a profile populated with defaults.
func NewUserProfile(email string) UserProfile {
	return UserProfile{
		Email:         email,
		Salary:        DefaultSalary,
		MonthlyRent:   decimal.Zero,
		OtherExpenses: decimal.Zero,
		ExistingLoans: decimal.Zero,
	}
}

// WithDefaults fills unset monetary fields. A zero salary counts as unset.
func (p UserProfile) WithDefaults() UserProfile {
	if !p.Salary.IsPositive() {
		p.Salary = DefaultSalary
	}
	if p.MonthlyRent.IsNegative() {
		p.MonthlyRent = decimal.Zero
	}
	if p.OtherExpenses.IsNegative() {
		p.OtherExpenses = decimal.Zero
	}
	if p.ExistingLoans.IsNegative() {
		p.ExistingLoans = decimal.Zero
	}
	return p
}
