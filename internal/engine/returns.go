package engine

import (
	"github.com/shopspring/decimal"
)

// Returns holds the aggregate expected-returns figures for a configuration.
type Returns struct {
	TotalInterest decimal.Decimal `json:"totalInterest"`
	TotalReturns  decimal.Decimal `json:"totalReturns"`
	EffectiveRate decimal.Decimal `json:"effectiveRate"`
}

// CalculateReturns computes the aggregate totals for a resolved configuration
// without materializing a schedule. It runs the identical period-stepping
// loop as GenerateSchedule, so a quote shown before contract creation exactly
// matches the schedule generated afterward.
func CalculateReturns(cfg *ResolvedConfig) (*Returns, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	totalInterest := decimal.Zero
	remaining := cfg.Principal.Round(2)

	for period := int32(1); period <= cfg.TenureMonths; period++ {
		totalInterest = totalInterest.Add(periodInterest(cfg, remaining))

		principalDue := cfg.Policy.Due(period)
		if period == cfg.TenureMonths {
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
	}

	return &Returns{
		TotalInterest: totalInterest,
		TotalReturns:  cfg.Principal.Add(totalInterest),
		EffectiveRate: totalInterest.Div(cfg.Principal).Mul(hundred).Round(2),
	}, nil
}
