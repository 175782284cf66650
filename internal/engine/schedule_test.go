package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veloxfin/velox-backend/internal/domain"
)

var scheduleStart = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

// flatPlan: 100000 at 2.5% flat over 12 months, 100% principal in month 12.
func flatPlan() *domain.Plan {
	return &domain.Plan{
		Name:                         "Fixed Income 12M",
		InterestType:                 domain.InterestTypeFlat,
		InterestRateMonthly:          decimal.NewFromFloat(2.5),
		TenureMonths:                 12,
		PrincipalRepaymentPercentage: decimal.NewFromInt(100),
		PrincipalRepaymentStartMonth: 12,
		Active:                       true,
	}
}

// reducingPlan: 75000 at 2.0% reducing over 18 months, 50% repaid from month 6.
func reducingPlan() *domain.Plan {
	return &domain.Plan{
		Name:                         "Reducing 18M",
		InterestType:                 domain.InterestTypeReducing,
		InterestRateMonthly:          decimal.NewFromFloat(2.0),
		TenureMonths:                 18,
		PrincipalRepaymentPercentage: decimal.NewFromInt(50),
		PrincipalRepaymentStartMonth: 6,
		Active:                       true,
	}
}

func mustResolve(t *testing.T, plan *domain.Plan, principal decimal.Decimal, sel *Selection) *ResolvedConfig {
	t.Helper()
	cfg, err := ResolveConfig(plan, principal, sel)
	require.NoError(t, err)
	return cfg
}

func TestGenerateSchedule_FlatInterestOnly(t *testing.T) {
	cfg := mustResolve(t, flatPlan(), decimal.NewFromInt(100000), nil)

	entries, err := GenerateSchedule(cfg, scheduleStart)
	require.NoError(t, err)
	require.Len(t, entries, 12)

	for _, e := range entries[:11] {
		assert.True(t, e.InterestAmount.Equal(decimal.NewFromInt(2500)), "period %d interest = %s", e.Period, e.InterestAmount)
		assert.True(t, e.PrincipalAmount.IsZero(), "period %d principal = %s", e.Period, e.PrincipalAmount)
		assert.Equal(t, domain.EntryStatusPending, e.Status)
		assert.True(t, e.PaidAmount.IsZero())
	}

	last := entries[11]
	assert.True(t, last.InterestAmount.Equal(decimal.NewFromInt(2500)))
	assert.True(t, last.PrincipalAmount.Equal(decimal.NewFromInt(100000)))
	assert.True(t, last.TotalAmount.Equal(decimal.NewFromInt(102500)))
	assert.True(t, last.RemainingPrincipalAfter.IsZero())
}

func TestGenerateSchedule_ReducingBalance(t *testing.T) {
	cfg := mustResolve(t, reducingPlan(), decimal.NewFromInt(75000), nil)

	entries, err := GenerateSchedule(cfg, scheduleStart)
	require.NoError(t, err)
	require.Len(t, entries, 18)

	// Balance untouched for the first five periods: constant interest.
	for _, e := range entries[:5] {
		assert.True(t, e.InterestAmount.Equal(decimal.NewFromInt(1500)), "period %d interest = %s", e.Period, e.InterestAmount)
		assert.True(t, e.PrincipalAmount.IsZero())
	}

	// From month 6 principal reduces by 37500/13 per period.
	perPeriod := decimal.RequireFromString("2884.62")
	assert.True(t, entries[5].PrincipalAmount.Equal(perPeriod), "period 6 principal = %s", entries[5].PrincipalAmount)
	assert.True(t, entries[5].InterestAmount.Equal(decimal.NewFromInt(1500)), "period 6 interest on pre-repayment balance")

	// Period 7 interest is recomputed on the shrunk balance.
	assert.True(t, entries[6].InterestAmount.Equal(decimal.RequireFromString("1442.31")), "period 7 interest = %s", entries[6].InterestAmount)

	assert.True(t, entries[17].RemainingPrincipalAfter.IsZero(), "final balance must close")
}

func TestGenerateSchedule_Deterministic(t *testing.T) {
	cfg := mustResolve(t, reducingPlan(), decimal.NewFromInt(75000), nil)

	first, err := GenerateSchedule(cfg, scheduleStart)
	require.NoError(t, err)
	second, err := GenerateSchedule(cfg, scheduleStart)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].DueDate, second[i].DueDate)
		assert.True(t, first[i].InterestAmount.Equal(second[i].InterestAmount))
		assert.True(t, first[i].PrincipalAmount.Equal(second[i].PrincipalAmount))
		assert.True(t, first[i].RemainingPrincipalAfter.Equal(second[i].RemainingPrincipalAfter))
	}
}

func TestGenerateSchedule_Conservation(t *testing.T) {
	tolerance := decimal.NewFromFloat(0.01)

	configs := map[string]*ResolvedConfig{
		"flat legacy":     mustResolve(t, flatPlan(), decimal.NewFromInt(100000), nil),
		"reducing legacy": mustResolve(t, reducingPlan(), decimal.NewFromInt(75000), nil),
		"flexible":        mustResolve(t, flatPlan(), decimal.NewFromInt(100000), &Selection{Custom: flexibleVariant()}),
		"quarterly":       mustResolve(t, flatPlan(), decimal.NewFromInt(100000), &Selection{Custom: installmentVariant(domain.PayoutFrequencyQuarterly)}),
	}

	for name, cfg := range configs {
		entries, err := GenerateSchedule(cfg, scheduleStart)
		require.NoError(t, err, name)

		sum := decimal.Zero
		prev := cfg.Principal
		for _, e := range entries {
			sum = sum.Add(e.PrincipalAmount)
			assert.False(t, e.RemainingPrincipalAfter.GreaterThan(prev), "%s: balance must not increase at period %d", name, e.Period)
			assert.False(t, e.RemainingPrincipalAfter.IsNegative(), "%s: balance negative at period %d", name, e.Period)
			prev = e.RemainingPrincipalAfter
		}

		diff := sum.Sub(cfg.Principal).Abs()
		assert.False(t, diff.GreaterThan(tolerance), "%s: principal sum %s differs from %s", name, sum, cfg.Principal)
		assert.True(t, entries[len(entries)-1].RemainingPrincipalAfter.IsZero(), "%s: residual balance", name)
	}
}

func TestGenerateSchedule_DueDates(t *testing.T) {
	cfg := mustResolve(t, flatPlan(), decimal.NewFromInt(100000), nil)

	entries, err := GenerateSchedule(cfg, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// Month-end starts clamp instead of spilling into the following month.
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), entries[0].DueDate)
	assert.Equal(t, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC), entries[1].DueDate)
	assert.Equal(t, time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC), entries[11].DueDate)
}

func TestGenerateSchedule_InterestWithPrincipalQuarterly(t *testing.T) {
	cfg := mustResolve(t, flatPlan(), decimal.NewFromInt(100000), &Selection{Custom: installmentVariant(domain.PayoutFrequencyQuarterly)})

	entries, err := GenerateSchedule(cfg, scheduleStart)
	require.NoError(t, err)

	// ceil(12/3) = 4 payments of 25000 at periods 3, 6, 9, 12.
	installment := decimal.NewFromInt(25000)
	for _, e := range entries {
		if e.Period%3 == 0 {
			assert.True(t, e.PrincipalAmount.Equal(installment), "period %d principal = %s", e.Period, e.PrincipalAmount)
		} else {
			assert.True(t, e.PrincipalAmount.IsZero(), "period %d principal = %s", e.Period, e.PrincipalAmount)
		}
	}
	assert.True(t, entries[11].RemainingPrincipalAfter.IsZero())
}

func TestGenerateSchedule_InvalidConfig(t *testing.T) {
	cfg := &ResolvedConfig{
		Principal:    decimal.NewFromInt(1000),
		TenureMonths: 0,
		MonthlyRate:  decimal.NewFromInt(1),
		InterestType: domain.InterestTypeFlat,
	}
	_, err := GenerateSchedule(cfg, scheduleStart)
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	cfg.TenureMonths = 12
	cfg.MonthlyRate = decimal.NewFromInt(-1)
	_, err = GenerateSchedule(cfg, scheduleStart)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
