package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/bnpltrace/backend/internal/domain"
)

func seededStore(t *testing.T) *stubStore {
	t.Helper()
	st := newStubStore()
	_, err := newTestSync(st, nil).Sync(context.Background(), "owner@example.com", inbox())
	require.NoError(t, err)
	return st
}

func newTestAnalysis(st *stubStore) *AnalysisService {
	svc := NewAnalysisService(st)
	svc.WithClock(func() time.Time { return syncNow })
	return svc
}

func TestReport_DefaultProfile(t *testing.T) {
	st := seededStore(t)

	report, err := newTestAnalysis(st).Report(context.Background(), "OWNER@example.com")
	require.NoError(t, err)

	assert.Equal(t, syncNow, report.GeneratedAt)
	assert.True(t, domain.DefaultSalary.Equal(report.Profile.Salary))

	a := report.Analysis
	assert.Equal(t, "12400", a.TotalOutstanding.String())
	assert.Equal(t, "1100", a.MonthlyObligation.String())
	assert.Equal(t, "1100", a.UpcomingDues.String())
	assert.Equal(t, "0.0367", a.DebtRatio.String())
	assert.Equal(t, 3, a.RiskScore)
	assert.Equal(t, domain.RiskLow, a.RiskLevel)
	assert.Equal(t, 2, a.TransactionCount)

	f := report.Affordability
	assert.Equal(t, "28900", f.DisposableIncome.String())
	assert.Equal(t, "9000", f.MaxSafeEMI.String())
	assert.Equal(t, "7900", f.AvailableEMICapacity.String())
	assert.Equal(t, "3.67", f.EMIPercentage.String())
	assert.Equal(t, domain.AffordabilityHealthy, f.Status)
}

func TestReport_SavedProfile(t *testing.T) {
	st := seededStore(t)
	st.profiles["owner@example.com"] = domain.UserProfile{
		Email:       "owner@example.com",
		Salary:      decimal.NewFromInt(5000),
		MonthlyRent: decimal.NewFromInt(1000),
	}

	report, err := newTestAnalysis(st).Report(context.Background(), "owner@example.com")
	require.NoError(t, err)

	assert.Equal(t, "0.22", report.Analysis.DebtRatio.String())
	assert.Equal(t, 23, report.Analysis.RiskScore)
	assert.Equal(t, domain.RiskMedium, report.Analysis.RiskLevel)
	assert.Equal(t, "2900", report.Affordability.DisposableIncome.String())
	assert.Equal(t, domain.AffordabilityWarning, report.Affordability.Status)
}

func TestReport_NoRecords(t *testing.T) {
	report, err := newTestAnalysis(newStubStore()).Report(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RiskNone, report.Analysis.RiskLevel)
	assert.Zero(t, report.Analysis.RiskScore)
	assert.True(t, report.Analysis.DebtRatio.IsZero())
}

func TestReport_AllPaidIsLowRisk(t *testing.T) {
	st := seededStore(t)
	for i := range st.records {
		st.records[i].Status = domain.StatusPaid
	}

	report, err := newTestAnalysis(st).Report(context.Background(), "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RiskLow, report.Analysis.RiskLevel)
	assert.Zero(t, report.Analysis.TransactionCount)
	assert.True(t, report.Analysis.TotalOutstanding.IsZero())
}

func TestReport_StoreFailure(t *testing.T) {
	st := newStubStore()
	st.listErr = errors.New("locked")

	_, err := newTestAnalysis(st).Report(context.Background(), "owner@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load records")

	_, err = newTestAnalysis(st).Report(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingUser)
}
