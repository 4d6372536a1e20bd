// Package extract turns loosely structured email text into BNPL candidates.
//
// Matching is keyword and pattern based. Text is NFKC-normalised and
// case-folded before any pattern runs, so every regular expression below is
// written in lower case.
//
// Relevance and spam cues match whole words only, not arbitrary substrings:
// "emi" must not fire inside "systematic" or "premium".
package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/vanshika/bnpltrace/backend/internal/domain"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)

	relevanceRegex = regexp.MustCompile(`\b(?:emis?|installments?|instalments?|pay[ -]later|bnpl|due date|monthly payments?|statements?|repayments?)\b`)
	spamRegex      = regexp.MustCompile(`\bspam\b`)
)

// Extractor scans messages for installment cues. The zero value is ready to use.
type Extractor struct{}

// New returns an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns a candidate for messages that look like BNPL obligations and
// carry a positive amount. Irrelevant or amount-less messages yield false.
func (e *Extractor) Extract(sender, subject, body string) (domain.Candidate, bool) {
	text := normalize(subject + "\n" + body)
	if !isRelevant(text) {
		return domain.Candidate{}, false
	}

	amount, ok := findAmount(text)
	if !ok {
		return domain.Candidate{}, false
	}

	return domain.Candidate{
		Vendor:       findVendor(sender, text),
		Amount:       amount,
		Installments: findInstallments(text),
		DueDate:      findDueDate(text),
	}, true
}

func isRelevant(text string) bool {
	if spamRegex.MatchString(text) {
		return false
	}
	return relevanceRegex.MatchString(text)
}

// normalize folds case, applies NFKC and collapses whitespace. cases.Caser
// keeps state, so a fresh one is built per call.
func normalize(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s)
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
