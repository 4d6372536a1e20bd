package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a BNPL record.
type Status string

const (
	StatusActive Status = "active"
	StatusPaid   Status = "paid"
)

// UnknownVendor is stored when no vendor could be inferred from a message.
const UnknownVendor = "Unknown"

// DueDateLayout is the textual due-date format understood by the extractor
// and persisted by the stores.
const DueDateLayout = "02/01/2006"

// dueDateParseLayout accepts one- or two-digit day and month components.
const dueDateParseLayout = "2/1/2006"

// ParseStatus maps user input onto a Status. The empty string means "no filter".
func ParseStatus(value string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case "":
		return "", true
	case StatusActive:
		return StatusActive, true
	case StatusPaid:
		return StatusPaid, true
	default:
		return "", false
	}
}

// BnplRecord is one inferred installment obligation.
type BnplRecord struct {
	ID              int64
	UserEmail       string
	SourceMessageID string
	Vendor          string
	Amount          decimal.Decimal
	Installments    int
	DueDate         *time.Time
	Subject         string
	Status          Status
	CreatedAt       time.Time
}

// IsActive reports whether the record participates in analytics.
func (r BnplRecord) IsActive() bool {
	return r.Status == StatusActive
}

// MonthlyAmount is the per-installment share of the record amount. Records
// without a positive installment count contribute nothing.
func (r BnplRecord) MonthlyAmount() decimal.Decimal {
	if r.Installments <= 0 {
		return decimal.Zero
	}
	return r.Amount.Div(decimal.NewFromInt(int64(r.Installments)))
}

// DueDateIn places the calendar due date at midnight in loc.
func (r BnplRecord) DueDateIn(loc *time.Location) (time.Time, bool) {
	if r.DueDate == nil {
		return time.Time{}, false
	}
	d := *r.DueDate
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc), true
}

// FormatDueDate renders the due date in DueDateLayout, or "" when absent.
func (r BnplRecord) FormatDueDate() string {
	if r.DueDate == nil {
		return ""
	}
	return r.DueDate.Format(DueDateLayout)
}

// ParseDueDate parses a DD/MM/YYYY string into a calendar date at UTC
// midnight. Any other shape yields false.
func ParseDueDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dueDateParseLayout, value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DueDatePtr is ParseDueDate returning nil for unparseable input.
func DueDatePtr(value string) *time.Time {
	t, ok := ParseDueDate(value)
	if !ok {
		return nil
	}
	return &t
}

// Candidate is the structured result of scanning one message.
type Candidate struct {
	Vendor       string
	Amount       decimal.Decimal
	Installments int
	DueDate      *time.Time
}

// ToRecord binds a candidate to its owner and source message.
func (c Candidate) ToRecord(userEmail string, msg RawMessage) BnplRecord {
	installments := c.Installments
	if installments < 1 {
		installments = 1
	}
	vendor := strings.TrimSpace(c.Vendor)
	if vendor == "" {
		vendor = UnknownVendor
	}
	return BnplRecord{
		UserEmail:       userEmail,
		SourceMessageID: msg.ID,
		Vendor:          vendor,
		Amount:          c.Amount,
		Installments:    installments,
		DueDate:         c.DueDate,
		Subject:         msg.Subject,
		Status:          StatusActive,
	}
}
