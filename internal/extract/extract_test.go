package extract

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_FullCandidate(t *testing.T) {
	e := New()

	got, ok := e.Extract(
		"Klarna <no-reply@klarna.com>",
		"Your payment plan is confirmed",
		"Order total: ₹12,000 split into 3 installments.\nNext installment due on 15/06/2025.",
	)

	require.True(t, ok)
	assert.Equal(t, "Klarna", got.Vendor)
	assert.True(t, decimal.NewFromInt(12000).Equal(got.Amount), "amount %s", got.Amount)
	assert.Equal(t, 3, got.Installments)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, "15/06/2025", got.DueDate.Format("02/01/2006"))
}

func TestExtract_IrrelevantMessage(t *testing.T) {
	_, ok := New().Extract("friend@example.com", "Lunch tomorrow?", "Rs. 500 for the cab, see you at 1.")
	assert.False(t, ok)
}

func TestExtract_SpamExcluded(t *testing.T) {
	_, ok := New().Extract("promo@deals.biz", "SPAM: BNPL offer", "Get ₹50,000 on pay later now")
	assert.False(t, ok)
}

func TestExtract_NoAmountDiscarded(t *testing.T) {
	_, ok := New().Extract("bank@example.com", "EMI reminder", "Your EMI is due on 15/06/2025.")
	assert.False(t, ok)
}

func TestExtract_DefaultsInstallmentsAndDueDate(t *testing.T) {
	got, ok := New().Extract("", "Monthly payment", "Your monthly payment of $249.99 is scheduled.")

	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("249.99").Equal(got.Amount))
	assert.Equal(t, 1, got.Installments)
	assert.Nil(t, got.DueDate)
	assert.Equal(t, "Unknown", got.Vendor)
}

func TestExtract_SkipsNumbersInsideDates(t *testing.T) {
	got, ok := New().Extract("", "Repayment notice", "Amount due 15/06/2025 of Rs 4,500 for your EMI.")

	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(4500).Equal(got.Amount), "amount %s", got.Amount)
	require.NotNil(t, got.DueDate)
	assert.Equal(t, "15/06/2025", got.DueDate.Format("02/01/2006"))
}

func TestExtract_SlashDashSuffixedAmounts(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		body    string
		want    int64
	}{
		{"rs with due date", "EMI reminder", "Your EMI of Rs. 2,000/- is due on 15/06/2025.", 2000},
		{"rupee total", "Your plan", "Total amount: ₹24,000/- payable in 12 EMIs.", 24000},
		{"inr repayment", "Repayment", "Repayment of INR 5000/- for your BNPL purchase.", 5000},
		{"iso date first", "Repayment notice", "Amount due 2025-06-15 of Rs 700/- for your EMI.", 700},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := New().Extract("bank@example.com", tt.subject, tt.body)
			require.True(t, ok)
			assert.True(t, decimal.NewFromInt(tt.want).Equal(got.Amount), "amount %s", got.Amount)
		})
	}
}

func TestPartOfDate(t *testing.T) {
	tests := []struct {
		text string
		num  string
		want bool
	}{
		{"due 15/06/2025", "15", true},
		{"due 15/06/2025", "06", true},
		{"due 15/06/2025", "2025", true},
		{"on 2025-06-15", "2025", true},
		{"rs 2,000/- only", "2,000", false},
		{"rs 2,000-", "2,000", false},
		{"-500 credited", "500", false},
	}
	for _, tt := range tests {
		start := strings.Index(tt.text, tt.num)
		got := partOfDate(tt.text, start, start+len(tt.num))
		assert.Equal(t, tt.want, got, "%q in %q", tt.num, tt.text)
	}
}

func TestExtract_TotalLabelWinsOverInstallmentAmount(t *testing.T) {
	got, ok := New().Extract("", "EMI schedule",
		"EMI of ₹1,000 starts next month. Total amount ₹1,20,000 over 12 months.")

	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(120000).Equal(got.Amount), "amount %s", got.Amount)
	assert.Equal(t, 12, got.Installments)
}

func TestFindInstallments(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"pay in 4 interest-free", 4},
		{"6-month plan", 6},
		{"12 emis of rs 500", 12},
		{"3 monthly installments", 3},
		{"100 installments", 1},
		{"0 installments", 1},
		{"no count here", 1},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, findInstallments(tt.text))
		})
	}
}

func TestFindDueDate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"after cue", "statement 01/05/2025 payment due by 20/05/2025", "20/05/2025"},
		{"first token without cue", "statement date 01/07/2025", "01/07/2025"},
		{"single digit day and month", "due on 5/7/2025", "05/07/2025"},
		{"wrong separator", "due on 15-06-2025", ""},
		{"impossible date", "due on 31/02/2025", ""},
		{"two digit year", "due on 15/06/25", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := findDueDate(tt.text)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Format("02/01/2006"))
		})
	}
}

func TestIsRelevant(t *testing.T) {
	relevant := func(subject, body string) bool {
		return isRelevant(normalize(subject + "\n" + body))
	}
	assert.True(t, relevant("Your BNPL statement", ""))
	assert.True(t, relevant("", "Buy now, Pay Later with us"))
	assert.True(t, relevant("INSTALMENT reminder", ""))
	assert.False(t, relevant("Premium membership", "Thanks for joining"))
	assert.False(t, relevant("Systematic review", "Anemia study results"))
	assert.False(t, relevant("EMI offer", "marked as spam"))
}

func TestParseAmount(t *testing.T) {
	got, ok := ParseAmount("1,20,000.50")
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("120000.50").Equal(got))

	_, ok = ParseAmount("")
	assert.False(t, ok)
	_, ok = ParseAmount("abc")
	assert.False(t, ok)
}
