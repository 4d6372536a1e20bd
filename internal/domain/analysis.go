package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RiskLevel buckets the debt ratio.
type RiskLevel string

const (
	RiskNone   RiskLevel = "None"
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// AffordabilityStatus classifies the share of salary going to installments.
type AffordabilityStatus string

const (
	AffordabilityHealthy       AffordabilityStatus = "Healthy"
	AffordabilityWarning       AffordabilityStatus = "Warning"
	AffordabilityOverleveraged AffordabilityStatus = "Overleveraged"
)

// Analysis aggregates the active records of a user against their salary.
type Analysis struct {
	TotalOutstanding  decimal.Decimal
	MonthlyObligation decimal.Decimal
	UpcomingDues      decimal.Decimal
	DebtRatio         decimal.Decimal
	RiskScore         int
	RiskLevel         RiskLevel
	TransactionCount  int
	Salary            decimal.Decimal
}

// Affordability describes how much installment headroom a salary leaves.
type Affordability struct {
	DisposableIncome     decimal.Decimal
	MaxSafeEMI           decimal.Decimal
	CurrentEMI           decimal.Decimal
	AvailableEMICapacity decimal.Decimal
	Status               AffordabilityStatus
	EMIPercentage        decimal.Decimal
	SafeEMIPercentage    decimal.Decimal
}

// FinancialReport is the full analysis returned to callers.
type FinancialReport struct {
	Profile       UserProfile
	Analysis      Analysis
	Affordability Affordability
	GeneratedAt   time.Time
}

// SyncReport summarises one synchronisation run.
type SyncReport struct {
	RunID      string
	UserEmail  string
	Fetched    int
	Inserted   int
	Skipped    int
	Duplicates int
	Errors     []MessageError
	StartedAt  time.Time
	FinishedAt time.Time
}

// Failed is the number of messages that hit an error.
func (r SyncReport) Failed() int {
	return len(r.Errors)
}
