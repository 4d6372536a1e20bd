package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	numberPattern   = `(\d{1,3}(?:,\d{2,3})+(?:\.\d{1,2})?|\d+(?:\.\d{1,2})?)`
	currencyPattern = `(?:₹|\brs\.?|\binr|\$|\busd|€|\beur|£|\bgbp)`
)

var (
	// Labels naming the full purchase value come before generic "amount" labels.
	totalLabelRegex = regexp.MustCompile(`\b(?:total(?: amount| value| payable)?|order (?:value|total|amount)|purchase(?: amount| value)?|loan amount|bill amount|financed amount)\b[^0-9]{0,20}?` + currencyPattern + `?\s*` + numberPattern)
	amountLabelRegex = regexp.MustCompile(`\bamount(?: due| payable)?\b[^0-9]{0,20}?` + currencyPattern + `?\s*` + numberPattern)
	prefixedRegex    = regexp.MustCompile(currencyPattern + `\s*` + numberPattern)
	suffixedRegex    = regexp.MustCompile(numberPattern + `\s*(?:inr|usd|eur|gbp|rs\b|rupees|dollars|euros|pounds)`)
)

// findAmount returns the most plausible obligation amount in normalised text.
func findAmount(text string) (decimal.Decimal, bool) {
	for _, re := range []*regexp.Regexp{totalLabelRegex, amountLabelRegex, prefixedRegex, suffixedRegex} {
		if amount, ok := firstAmount(re, text); ok {
			return amount, true
		}
	}
	return decimal.Zero, false
}

// firstAmount returns the first positive match of re whose number is not part
// of a date such as 15/06/2025.
func firstAmount(re *regexp.Regexp, text string) (decimal.Decimal, bool) {
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[2], loc[3]
		if start < 0 {
			continue
		}
		if partOfDate(text, start, end) {
			continue
		}
		amount, ok := ParseAmount(text[start:end])
		if !ok || !amount.IsPositive() {
			continue
		}
		return amount, true
	}
	return decimal.Zero, false
}

// partOfDate reports whether the number at text[start:end] is joined to
// another number by a date separator. "2,000/-" is an amount, "15/06" is not.
func partOfDate(text string, start, end int) bool {
	if end+1 < len(text) && isDateSeparator(text[end]) && isDigit(text[end+1]) {
		return true
	}
	if start > 1 && isDateSeparator(text[start-1]) && isDigit(text[start-2]) {
		return true
	}
	return false
}

func isDateSeparator(c byte) bool {
	return c == '/' || c == '-'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// ParseAmount parses a number with optional thousands separators.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}
