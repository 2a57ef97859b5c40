package tax

import (
	"context"

	"github.com/shopspring/decimal"
)

// PercentageCalculator applies one flat rate to the merchandise subtotal.
// Shipping is not taxed.
type PercentageCalculator struct {
	rate decimal.Decimal
	raw  float64
	name string
}

// NewPercentageCalculator creates a percentage-based calculator, e.g. 0.18 for VAT.
func NewPercentageCalculator(rate float64) Calculator {
	return &PercentageCalculator{
		rate: decimal.NewFromFloat(rate),
		raw:  rate,
		name: "Rwanda VAT",
	}
}

// CalculateTax computes round_half_up(subtotal * rate) in whole francs.
func (c *PercentageCalculator) CalculateTax(ctx context.Context, params TaxParams) (*TaxResult, error) {
	if c.raw < 0 || c.raw > 1 {
		return nil, ErrInvalidTaxRate
	}

	subtotal := params.Subtotal()
	if subtotal < 0 {
		return nil, ErrNegativeSubtotal
	}

	// Round(0) rounds half away from zero, which is half-up for non-negative amounts.
	amount := decimal.NewFromInt(subtotal).Mul(c.rate).Round(0).IntPart()

	return &TaxResult{
		TotalTax: amount,
		Breakdown: []TaxBreakdown{
			{
				Jurisdiction: "national",
				Name:         c.name,
				Rate:         c.raw,
				Amount:       amount,
			},
		},
	}, nil
}
