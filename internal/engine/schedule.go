package engine

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/veloxfin/velox-backend/internal/domain"
	"github.com/veloxfin/velox-backend/internal/util"
)

// GenerateSchedule produces the ordered per-period obligations for a resolved
// configuration in a single forward pass. The same inputs always produce an
// identical sequence; downstream ledgers depend on that.
//
// Interest is computed on the original principal for flat plans and on the
// pre-repayment balance for reducing plans. The final period always closes
// the running balance regardless of the policy formula. Every monetary figure
// is rounded to 2 decimal places at the point of computation.
func GenerateSchedule(cfg *ResolvedConfig, startDate time.Time) ([]*domain.ScheduleEntry, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	entries := make([]*domain.ScheduleEntry, 0, cfg.TenureMonths)
	remaining := cfg.Principal.Round(2)

	for period := int32(1); period <= cfg.TenureMonths; period++ {
		interest := periodInterest(cfg, remaining)

		principalDue := cfg.Policy.Due(period)
		if period == cfg.TenureMonths {
			// Last period closes the balance, guaranteeing zero residual.
			principalDue = remaining
		}
		principalDue = principalDue.Round(2)
		if principalDue.GreaterThan(remaining) {
			principalDue = remaining
		}

		remaining = remaining.Sub(principalDue).Round(2)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}

		entries = append(entries, &domain.ScheduleEntry{
			Period:                  period,
			DueDate:                 util.AddMonths(startDate, int(period)),
			InterestAmount:          interest,
			PrincipalAmount:         principalDue,
			TotalAmount:             interest.Add(principalDue),
			RemainingPrincipalAfter: remaining,
			Status:                  domain.EntryStatusPending,
			PaidAmount:              decimal.Zero,
		})
	}

	return entries, nil
}

func validateConfig(cfg *ResolvedConfig) error {
	if cfg.TenureMonths < 1 {
		return domain.ErrPlanTenureInvalid
	}
	if cfg.MonthlyRate.IsNegative() {
		return fmt.Errorf("%w: monthly rate must not be negative", domain.ErrConfiguration)
	}
	return nil
}

func periodInterest(cfg *ResolvedConfig, remaining decimal.Decimal) decimal.Decimal {
	base := cfg.Principal
	if cfg.InterestType == domain.InterestTypeReducing {
		base = remaining
	}
	return base.Mul(cfg.MonthlyRate).Div(hundred).Round(2)
}
