package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vanshika/bnpltrace/backend/internal/analytics"
	"github.com/vanshika/bnpltrace/backend/internal/domain"
	"github.com/vanshika/bnpltrace/backend/internal/store"
)

// AnalysisService produces financial reports from stored records and profiles.
type AnalysisService struct {
	store store.Store
	nowFn func() time.Time
}

// NewAnalysisService builds an AnalysisService.
func NewAnalysisService(st store.Store) *AnalysisService {
	return &AnalysisService{store: st, nowFn: time.Now}
}

// WithClock overrides the time provider (used primarily in tests).
func (s *AnalysisService) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// Report analyses every record of the user against the effective profile.
// Users without a saved profile get the defaults.
func (s *AnalysisService) Report(ctx context.Context, userEmail string) (domain.FinancialReport, error) {
	userEmail = normalizeEmail(userEmail)
	if userEmail == "" {
		return domain.FinancialReport{}, ErrMissingUser
	}

	profile, err := s.store.GetProfile(ctx, userEmail)
	switch {
	case errors.Is(err, store.ErrNotFound):
		profile = domain.NewUserProfile(userEmail)
	case err != nil:
		return domain.FinancialReport{}, fmt.Errorf("load profile: %w", err)
	}
	profile = profile.WithDefaults()

	records, err := s.store.ListRecords(ctx, userEmail, "")
	if err != nil {
		return domain.FinancialReport{}, fmt.Errorf("load records: %w", err)
	}

	now := s.nowFn()
	analysis := analytics.Analyze(profile.Salary, records, now)
	afford := analytics.Affordability(profile.Salary, analysis.MonthlyObligation, profile.MonthlyRent, profile.OtherExpenses)

	return domain.FinancialReport{
		Profile:       profile,
		Analysis:      analysis,
		Affordability: afford,
		GeneratedAt:   now,
	}, nil
}
