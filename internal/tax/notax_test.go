package tax_test

import (
	"context"
	"testing"

	"github.com/dukerupert/isoko/internal/tax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoTaxCalculator_CalculateTax_ReturnsZeroTax(t *testing.T) {
	calc := tax.NewNoTaxCalculator()

	params := tax.TaxParams{
		LineItems: []tax.LineItem{
			{ProductID: "p1", Description: "Agaseke basket", Quantity: 2, UnitPrice: 18000, TotalPrice: 36000},
			{ProductID: "p2", Description: "Kitenge fabric", Quantity: 1, UnitPrice: 22000, TotalPrice: 22000},
		},
		ShippingAmount: 9990,
	}

	result, err := calc.CalculateTax(context.Background(), params)

	require.NoError(t, err)
	assert.Equal(t, int64(0), result.TotalTax)
	assert.Empty(t, result.Breakdown)
}
