package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/vanshika/bnpltrace/backend/internal/domain"
)

// SafeEMIShare is the fraction of gross salary treated as the safe ceiling
// for installment payments.
var SafeEMIShare = decimal.RequireFromString("0.30")

var (
	hundred           = decimal.NewFromInt(100)
	warningEMIPercent = decimal.NewFromInt(20)
	maxEMIPercent     = decimal.NewFromInt(30)
)

// Affordability computes installment headroom for a salary given the current
// monthly BNPL obligation and the other fixed monthly outflows. Disposable
// income may be negative; available capacity is clamped at zero.
func Affordability(salary, monthlyObligation, rent, otherExpenses decimal.Decimal) domain.Affordability {
	fixedExpenses := rent.Add(otherExpenses).Add(monthlyObligation)
	disposable := salary.Sub(fixedExpenses)
	maxSafe := salary.Mul(SafeEMIShare)
	available := decimal.Max(decimal.Zero, maxSafe.Sub(monthlyObligation))

	emiPercentage := decimal.Zero
	if salary.IsPositive() {
		emiPercentage = monthlyObligation.Mul(hundred).Div(salary)
	}

	safePercentage := decimal.Zero
	if maxSafe.IsPositive() {
		safePercentage = decimal.Min(hundred, monthlyObligation.Mul(hundred).Div(maxSafe))
	}

	return domain.Affordability{
		DisposableIncome:     disposable.Round(moneyPlaces),
		MaxSafeEMI:           maxSafe.Round(moneyPlaces),
		CurrentEMI:           monthlyObligation.Round(moneyPlaces),
		AvailableEMICapacity: available.Round(moneyPlaces),
		Status:               classifyAffordability(emiPercentage),
		EMIPercentage:        emiPercentage.Round(moneyPlaces),
		SafeEMIPercentage:    safePercentage.Round(moneyPlaces),
	}
}

func classifyAffordability(emiPercentage decimal.Decimal) domain.AffordabilityStatus {
	switch {
	case emiPercentage.LessThan(warningEMIPercent):
		return domain.AffordabilityHealthy
	case emiPercentage.LessThanOrEqual(maxEMIPercent):
		return domain.AffordabilityWarning
	default:
		return domain.AffordabilityOverleveraged
	}
}
