package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vanshika/bnpltrace/backend/internal/domain"
)

func TestScoreRisk_Boundaries(t *testing.T) {
	tests := []struct {
		ratio     string
		wantScore int
		wantLevel domain.RiskLevel
	}{
		{ratio: "0", wantScore: 0, wantLevel: domain.RiskLow},
		{ratio: "0.02", wantScore: 2, wantLevel: domain.RiskLow},
		{ratio: "0.1999", wantScore: 19, wantLevel: domain.RiskLow},
		{ratio: "0.2", wantScore: 20, wantLevel: domain.RiskMedium},
		{ratio: "0.3", wantScore: 35, wantLevel: domain.RiskMedium},
		{ratio: "0.3999", wantScore: 49, wantLevel: domain.RiskMedium},
		{ratio: "0.4", wantScore: 50, wantLevel: domain.RiskHigh},
		{ratio: "0.555", wantScore: 65, wantLevel: domain.RiskHigh},
		{ratio: "0.9", wantScore: 100, wantLevel: domain.RiskHigh},
		{ratio: "2.5", wantScore: 100, wantLevel: domain.RiskHigh},
	}

	for _, tt := range tests {
		t.Run(tt.ratio, func(t *testing.T) {
			score, level := ScoreRisk(dec(tt.ratio))
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantLevel, level)
		})
	}
}
