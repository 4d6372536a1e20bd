package extract

import (
	"regexp"
	"time"

	"github.com/vanshika/bnpltrace/backend/internal/domain"
)

var (
	dateTokenRegex = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`)
	dueCueRegex    = regexp.MustCompile(`\b(?:due(?: date| on| by)?|payable (?:on|by)|pay by|debited on)\b[^0-9]{0,20}?(\d{1,2}/\d{1,2}/\d{4})\b`)
)

// findDueDate prefers a date following a due cue, then the first date token.
// Tokens that do not parse as DD/MM/YYYY are ignored.
func findDueDate(text string) *time.Time {
	for _, m := range dueCueRegex.FindAllStringSubmatch(text, -1) {
		if due := domain.DueDatePtr(m[1]); due != nil {
			return due
		}
	}
	for _, token := range dateTokenRegex.FindAllString(text, -1) {
		if due := domain.DueDatePtr(token); due != nil {
			return due
		}
	}
	return nil
}
