package extract

import (
	"regexp"
	"strconv"
)

const maxInstallments = 60

var installmentRegexes = []*regexp.Regexp{
	regexp.MustCompile(`\bpay in (\d{1,2})\b`),
	regexp.MustCompile(`\b(\d{1,2}) ?-? ?(?:monthly |easy |equal )?(?:installments?|instalments?|emis?|payments)\b`),
	regexp.MustCompile(`\b(\d{1,2}) ?-? ?months?\b`),
}

// findInstallments returns the installment count, defaulting to 1.
func findInstallments(text string) int {
	for _, re := range installmentRegexes {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			n, err := strconv.Atoi(m[1])
			if err != nil || n < 1 || n > maxInstallments {
				continue
			}
			return n
		}
	}
	return 1
}
