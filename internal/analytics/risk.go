package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/vanshika/bnpltrace/backend/internal/domain"
)

var (
	mediumRiskCutoff = decimal.RequireFromString("0.20")
	highRiskCutoff   = decimal.RequireFromString("0.40")

	lowRiskSlope    = decimal.NewFromInt(100)
	mediumRiskSlope = decimal.NewFromInt(150)
	highRiskSlope   = decimal.NewFromInt(100)
)

const (
	mediumRiskBase = 20
	highRiskBase   = 50
	maxRiskScore   = 100
)

// ScoreRisk maps a debt ratio onto a 0-100 score and a level. Cutoffs are
// strict at 0.20 and 0.40 and the fractional part of each score is truncated.
func ScoreRisk(debtRatio decimal.Decimal) (int, domain.RiskLevel) {
	switch {
	case debtRatio.LessThan(mediumRiskCutoff):
		return truncate(debtRatio.Mul(lowRiskSlope)), domain.RiskLow
	case debtRatio.LessThan(highRiskCutoff):
		return mediumRiskBase + truncate(debtRatio.Sub(mediumRiskCutoff).Mul(mediumRiskSlope)), domain.RiskMedium
	default:
		score := highRiskBase + truncate(debtRatio.Sub(highRiskCutoff).Mul(highRiskSlope))
		if score > maxRiskScore {
			score = maxRiskScore
		}
		return score, domain.RiskHigh
	}
}

func truncate(v decimal.Decimal) int {
	return int(v.Truncate(0).IntPart())
}
