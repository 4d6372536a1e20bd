package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vanshika/bnpltrace/backend/internal/domain"
)

// UpcomingWindow is how far ahead a due date counts toward upcoming dues.
const UpcomingWindow = 30 * 24 * time.Hour

const (
	moneyPlaces = 2
	ratioPlaces = 4
)

// Analyze aggregates the active records against the given salary. Paid
// records never influence any figure. An empty record set yields the
// canonical zero analysis with risk level None.
func Analyze(salary decimal.Decimal, records []domain.BnplRecord, now time.Time) domain.Analysis {
	if len(records) == 0 {
		return zeroAnalysis(salary)
	}

	totalOutstanding := decimal.Zero
	monthlyObligation := decimal.Zero
	activeCount := 0

	for _, rec := range records {
		if !rec.IsActive() {
			continue
		}
		activeCount++
		totalOutstanding = totalOutstanding.Add(rec.Amount)
		monthlyObligation = monthlyObligation.Add(rec.MonthlyAmount())
	}

	upcoming := UpcomingDues(records, now)

	debtRatio := decimal.Zero
	if salary.IsPositive() {
		debtRatio = monthlyObligation.Div(salary)
	}
	score, level := ScoreRisk(debtRatio)

	return domain.Analysis{
		TotalOutstanding:  totalOutstanding.Round(moneyPlaces),
		MonthlyObligation: monthlyObligation.Round(moneyPlaces),
		UpcomingDues:      upcoming.Round(moneyPlaces),
		DebtRatio:         debtRatio.Round(ratioPlaces),
		RiskScore:         score,
		RiskLevel:         level,
		TransactionCount:  activeCount,
		Salary:            salary,
	}
}

// UpcomingDues sums the per-installment amount of active records whose due
// date falls within [now, now+30d]. Due dates are calendar dates taken at
// midnight in now's location. Records without a due date are skipped. The
// result is not rounded.
func UpcomingDues(records []domain.BnplRecord, now time.Time) decimal.Decimal {
	limit := now.Add(UpcomingWindow)
	total := decimal.Zero

	for _, rec := range records {
		if !rec.IsActive() || rec.Amount.IsZero() {
			continue
		}
		due, ok := rec.DueDateIn(now.Location())
		if !ok || due.Before(now) || due.After(limit) {
			continue
		}

		installments := rec.Installments
		if installments == 0 {
			installments = 1
		}
		if installments < 0 {
			continue
		}
		total = total.Add(rec.Amount.Div(decimal.NewFromInt(int64(installments))))
	}
	return total
}

func zeroAnalysis(salary decimal.Decimal) domain.Analysis {
	return domain.Analysis{
		TotalOutstanding:  decimal.Zero,
		MonthlyObligation: decimal.Zero,
		UpcomingDues:      decimal.Zero,
		DebtRatio:         decimal.Zero,
		RiskScore:         0,
		RiskLevel:         domain.RiskNone,
		TransactionCount:  0,
		Salary:            salary,
	}
}
