// Package api holds the JSON wire types shared by the HTTP API and the CLI.
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vanshika/bnpltrace/backend/internal/domain"
)

// Money leaves the services as decimal and becomes a JSON number only here,
// after every computation has happened.

// SyncMessagesRequest is the body of POST /sync/messages.
type SyncMessagesRequest struct {
	Messages []domain.RawMessage `json:"messages"`
}

type SyncError struct {
	MessageID string `json:"message_id"`
	Stage     string `json:"stage"`
	Error     string `json:"error"`
}

// SyncResult renders a domain.SyncReport. Error is set when the run failed
// after the report was started.
type SyncResult struct {
	RunID      string      `json:"run_id"`
	UserEmail  string      `json:"user_email"`
	Fetched    int         `json:"fetched"`
	Inserted   int         `json:"inserted"`
	Skipped    int         `json:"skipped"`
	Duplicates int         `json:"duplicates"`
	Failed     int         `json:"failed"`
	Errors     []SyncError `json:"errors"`
	StartedAt  string      `json:"started_at"`
	FinishedAt string      `json:"finished_at"`
	Error      string      `json:"error,omitempty"`
}

// Record is one stored obligation. DueDate is DD/MM/YYYY or null.
type Record struct {
	ID              int64   `json:"id"`
	SourceMessageID string  `json:"source_message_id"`
	Vendor          string  `json:"vendor"`
	Amount          float64 `json:"amount"`
	Installments    int     `json:"installments"`
	MonthlyAmount   float64 `json:"monthly_amount"`
	DueDate         *string `json:"due_date"`
	Subject         string  `json:"email_subject"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"created_at"`
}

type RecordList struct {
	Records []Record `json:"records"`
	Count   int      `json:"count"`
}

type Analysis struct {
	TotalOutstanding  float64 `json:"total_outstanding"`
	MonthlyObligation float64 `json:"monthly_obligation"`
	UpcomingDues      float64 `json:"upcoming_dues"`
	DebtRatio         float64 `json:"debt_ratio"`
	RiskScore         int     `json:"risk_score"`
	RiskLevel         string  `json:"risk_level"`
	TransactionCount  int     `json:"transaction_count"`
	Salary            float64 `json:"salary"`
}

type Affordability struct {
	DisposableIncome     float64 `json:"disposable_income"`
	MaxSafeEMI           float64 `json:"max_safe_emi"`
	CurrentEMI           float64 `json:"current_emi"`
	AvailableEMICapacity float64 `json:"available_emi_capacity"`
	Status               string  `json:"status"`
	EMIPercentage        float64 `json:"emi_percentage"`
	SafeEMIPercentage    float64 `json:"safe_emi_percentage"`
}

type Profile struct {
	Email         string  `json:"email"`
	FullName      string  `json:"full_name"`
	Salary        float64 `json:"salary"`
	MonthlyRent   float64 `json:"monthly_rent"`
	OtherExpenses float64 `json:"other_expenses"`
	City          string  `json:"city"`
	ExistingLoans float64 `json:"existing_loans"`
	CreatedAt     string  `json:"created_at,omitempty"`
	Saved         bool    `json:"saved"`
}

// Report is the full financial analysis of one user.
type Report struct {
	Profile       Profile       `json:"profile"`
	Analysis      Analysis      `json:"analysis"`
	Affordability Affordability `json:"affordability"`
	GeneratedAt   string        `json:"generated_at"`
}

// MarkPaidResult carries the updated record with a refreshed analysis.
type MarkPaidResult struct {
	Record        Record        `json:"record"`
	Analysis      Analysis      `json:"analysis"`
	Affordability Affordability `json:"affordability"`
}

// ProfileRequest replaces a profile wholesale.
type ProfileRequest struct {
	FullName      string          `json:"full_name"`
	Salary        decimal.Decimal `json:"salary"`
	MonthlyRent   decimal.Decimal `json:"monthly_rent"`
	OtherExpenses decimal.Decimal `json:"other_expenses"`
	City          string          `json:"city"`
	ExistingLoans decimal.Decimal `json:"existing_loans"`
}

func (req ProfileRequest) ToProfile(email string) domain.UserProfile {
	return domain.UserProfile{
		Email:         email,
		FullName:      req.FullName,
		Salary:        req.Salary,
		MonthlyRent:   req.MonthlyRent,
		OtherExpenses: req.OtherExpenses,
		City:          req.City,
		ExistingLoans: req.ExistingLoans,
	}
}

// SalaryRequest sets only the salary. Money fields accept JSON numbers or
// strings and are decoded exactly.
type SalaryRequest struct {
	Salary decimal.Decimal `json:"salary"`
}

// NewSyncResult renders report, attaching err when non-nil.
func NewSyncResult(report domain.SyncReport, err error) SyncResult {
	resp := SyncResult{
		RunID:      report.RunID,
		UserEmail:  report.UserEmail,
		Fetched:    report.Fetched,
		Inserted:   report.Inserted,
		Skipped:    report.Skipped,
		Duplicates: report.Duplicates,
		Failed:     report.Failed(),
		Errors:     make([]SyncError, 0, len(report.Errors)),
		StartedAt:  formatTime(report.StartedAt),
		FinishedAt: formatTime(report.FinishedAt),
	}
	for _, e := range report.Errors {
		resp.Errors = append(resp.Errors, SyncError{
			MessageID: e.MessageID,
			Stage:     e.Stage,
			Error:     e.Err.Error(),
		})
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}

func NewRecord(rec domain.BnplRecord) Record {
	resp := Record{
		ID:              rec.ID,
		SourceMessageID: rec.SourceMessageID,
		Vendor:          rec.Vendor,
		Amount:          money(rec.Amount),
		Installments:    rec.Installments,
		MonthlyAmount:   money(rec.MonthlyAmount()),
		Subject:         rec.Subject,
		Status:          string(rec.Status),
		CreatedAt:       formatTime(rec.CreatedAt),
	}
	if due := rec.FormatDueDate(); due != "" {
		resp.DueDate = &due
	}
	return resp
}

func NewProfile(p domain.UserProfile) Profile {
	return Profile{
		Email:         p.Email,
		FullName:      p.FullName,
		Salary:        money(p.Salary),
		MonthlyRent:   money(p.MonthlyRent),
		OtherExpenses: money(p.OtherExpenses),
		City:          p.City,
		ExistingLoans: money(p.ExistingLoans),
		CreatedAt:     formatTime(p.CreatedAt),
	}
}

// NewReport renders a financial report.
func NewReport(report domain.FinancialReport) Report {
	a, f := report.Analysis, report.Affordability
	return Report{
		Profile: NewProfile(report.Profile),
		Analysis: Analysis{
			TotalOutstanding:  money(a.TotalOutstanding),
			MonthlyObligation: money(a.MonthlyObligation),
			UpcomingDues:      money(a.UpcomingDues),
			DebtRatio:         a.DebtRatio.InexactFloat64(),
			RiskScore:         a.RiskScore,
			RiskLevel:         string(a.RiskLevel),
			TransactionCount:  a.TransactionCount,
			Salary:            money(a.Salary),
		},
		Affordability: Affordability{
			DisposableIncome:     money(f.DisposableIncome),
			MaxSafeEMI:           money(f.MaxSafeEMI),
			CurrentEMI:           money(f.CurrentEMI),
			AvailableEMICapacity: money(f.AvailableEMICapacity),
			Status:               string(f.Status),
			EMIPercentage:        money(f.EMIPercentage),
			SafeEMIPercentage:    money(f.SafeEMIPercentage),
		},
		GeneratedAt: formatTime(report.GeneratedAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
