package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindVendor(t *testing.T) {
	tests := []struct {
		name   string
		sender string
		text   string
		want   string
	}{
		{"provider in body", "alerts@bank.example", "your afterpay order", "Afterpay"},
		{"provider in sender", "Amazon Pay Later <no-reply@amazon.in>", "", "Amazon Pay Later"},
		{"display name", "ShopKart Finance <billing@shopkart.in>", "emi due", "ShopKart Finance"},
		{"quoted display name", `"Easy Credit" <hello@easycredit.com>`, "", "Easy Credit"},
		{"domain label", "billing@easycredit.co.in", "", "Easycredit"},
		{"bare domain", "noreply@lendfast.com", "", "Lendfast"},
		{"empty sender", "", "emi", "Unknown"},
		{"garbage sender", "not an address", "", "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, findVendor(tt.sender, tt.text))
		})
	}
}
