package tax

import (
	"context"
)

// Calculator defines the interface for tax calculation.
// Implementations: PercentageCalculator, NoTaxCalculator
type Calculator interface {
	// CalculateTax computes tax for the cart lines.
	// Amounts are whole francs.
	CalculateTax(ctx context.Context, params TaxParams) (*TaxResult, error)
}

// TaxParams contains all information needed for tax calculation.
type TaxParams struct {
	LineItems      []LineItem
	ShippingAmount int64
	Currency       string
}

// LineItem represents a single item being taxed.
type LineItem struct {
	ProductID   string
	Description string
	Quantity    int32
	UnitPrice   int64
	TotalPrice  int64
}

// Subtotal sums TotalPrice across line items.
func (p TaxParams) Subtotal() int64 {
	var subtotal int64
	for _, item := range p.LineItems {
		subtotal += item.TotalPrice
	}
	return subtotal
}

// TaxResult contains the calculated tax amount and breakdown.
type TaxResult struct {
	TotalTax   int64
	Breakdown  []TaxBreakdown
	IsEstimate bool
}

// TaxBreakdown represents tax for a single jurisdiction.
type TaxBreakdown struct {
	Jurisdiction string  // "national"
	Name         string  // e.g., "Rwanda VAT"
	Rate         float64 // e.g., 0.18 for 18%
	Amount       int64
}
