package extract

import (
	"net/mail"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vanshika/bnpltrace/backend/internal/domain"
)

type provider struct {
	name    string
	pattern *regexp.Regexp
}

// Ordered so that multi-word brands win over their parent brand.
var knownProviders = []provider{
	{name: "Amazon Pay Later", pattern: regexp.MustCompile(`\bamazon pay ?later\b`)},
	{name: "Flipkart Pay Later", pattern: regexp.MustCompile(`\bflipkart pay ?later\b`)},
	{name: "Paytm Postpaid", pattern: regexp.MustCompile(`\bpaytm post ?paid\b`)},
	{name: "Klarna", pattern: regexp.MustCompile(`\bklarna\b`)},
	{name: "Afterpay", pattern: regexp.MustCompile(`\bafterpay\b`)},
	{name: "Clearpay", pattern: regexp.MustCompile(`\bclearpay\b`)},
	{name: "Affirm", pattern: regexp.MustCompile(`\baffirm\.com\b|\baffirm (?:loan|payment|pay)`)},
	{name: "Sezzle", pattern: regexp.MustCompile(`\bsezzle\b`)},
	{name: "Zip", pattern: regexp.MustCompile(`\bzip ?pay\b|\bzip\.co\b|\bquadpay\b`)},
	{name: "PayPal", pattern: regexp.MustCompile(`\bpaypal\b`)},
	{name: "Simpl", pattern: regexp.MustCompile(`\bsimpl\b`)},
	{name: "LazyPay", pattern: regexp.MustCompile(`\blazypay\b`)},
	{name: "ZestMoney", pattern: regexp.MustCompile(`\bzest ?money\b`)},
	{name: "Slice", pattern: regexp.MustCompile(`\bslice ?(?:card|it|pay)\b|\bsliceit\b`)},
	{name: "Uni", pattern: regexp.MustCompile(`\buni (?:card|pay)\b`)},
}

// Second-level labels that sit between the brand and the TLD, as in example.co.in.
var genericSecondLevel = map[string]struct{}{
	"co": {}, "com": {}, "net": {}, "org": {}, "ac": {}, "gov": {},
}

// findVendor names the lender: a known provider mentioned anywhere, the sender
// display name, the sender domain, or Unknown.
func findVendor(sender, text string) string {
	haystack := normalize(sender) + " " + text
	for _, p := range knownProviders {
		if p.pattern.MatchString(haystack) {
			return p.name
		}
	}

	name, address := splitSender(sender)
	if name != "" {
		return name
	}
	if label := domainLabel(address); label != "" {
		return cases.Title(language.English).String(label)
	}
	return domain.UnknownVendor
}

func splitSender(sender string) (string, string) {
	sender = strings.TrimSpace(sender)
	if sender == "" {
		return "", ""
	}
	if addr, err := mail.ParseAddress(sender); err == nil {
		return strings.TrimSpace(addr.Name), addr.Address
	}
	if idx := strings.LastIndex(sender, "<"); idx != -1 {
		if end := strings.LastIndex(sender, ">"); end > idx {
			name := strings.Trim(strings.TrimSpace(sender[:idx]), `"'`)
			return name, strings.TrimSpace(sender[idx+1 : end])
		}
	}
	if strings.Contains(sender, "@") {
		return "", sender
	}
	return "", ""
}

func domainLabel(address string) string {
	at := strings.LastIndex(address, "@")
	if at == -1 || at == len(address)-1 {
		return ""
	}
	labels := strings.Split(strings.ToLower(address[at+1:]), ".")
	if len(labels) < 2 {
		return ""
	}
	labels = labels[:len(labels)-1]
	if len(labels) > 1 {
		if _, ok := genericSecondLevel[labels[len(labels)-1]]; ok {
			labels = labels[:len(labels)-1]
		}
	}
	return labels[len(labels)-1]
}
