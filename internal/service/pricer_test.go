package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dukerupert/isoko/internal/domain"
	"github.com/dukerupert/isoko/internal/shipping"
	"github.com/dukerupert/isoko/internal/tax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPricer() *Pricer {
	rates := []shipping.FlatRate{{ServiceName: "Standard delivery", ServiceCode: "standard", Cost: 9990, DaysMin: 1, DaysMax: 3}}
	return NewPricer(tax.NewPercentageCalculator(0.18), shipping.NewFlatRateProvider(rates, 100000), "RWF")
}

func TestPricer_Totals(t *testing.T) {
	tests := []struct {
		name  string
		items []domain.CartItem
		want  domain.CartTotals
	}{
		{
			name: "empty cart",
			want: domain.CartTotals{Currency: "RWF"},
		},
		{
			name: "free shipping above threshold",
			items: []domain.CartItem{
				{ProductID: "p1", Quantity: 2, UnitPrice: 50000},
				{ProductID: "p2", Quantity: 1, UnitPrice: 10000},
			},
			want: domain.CartTotals{Subtotal: 110000, Shipping: 0, Tax: 19800, Total: 129800, ItemCount: 3, Currency: "RWF"},
		},
		{
			name:  "exactly at threshold",
			items: []domain.CartItem{{ProductID: "p1", Quantity: 1, UnitPrice: 100000}},
			want:  domain.CartTotals{Subtotal: 100000, Shipping: 0, Tax: 18000, Total: 118000, ItemCount: 1, Currency: "RWF"},
		},
		{
			name:  "one franc below threshold",
			items: []domain.CartItem{{ProductID: "p1", Quantity: 1, UnitPrice: 99999}},
			want:  domain.CartTotals{Subtotal: 99999, Shipping: 9990, Tax: 18000, Total: 127989, ItemCount: 1, Currency: "RWF"},
		},
		{
			name: "non-positive quantities ignored",
			items: []domain.CartItem{
				{ProductID: "p1", Quantity: 0, UnitPrice: 5000},
				{ProductID: "p2", Quantity: -1, UnitPrice: 5000},
				{ProductID: "p3", Quantity: 1, UnitPrice: 2500},
			},
			want: domain.CartTotals{Subtotal: 2500, Shipping: 9990, Tax: 450, Total: 12940, ItemCount: 1, Currency: "RWF"},
		},
	}

	p := newTestPricer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Totals(context.Background(), tt.items)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPricer_ShippingError(t *testing.T) {
	mock := shipping.NewMockProvider()
	mock.GetRatesFunc = func(ctx context.Context, params shipping.RateParams) ([]shipping.Rate, error) {
		return nil, errors.New("rate service down")
	}
	p := NewPricer(tax.NewNoTaxCalculator(), mock, "")

	_, err := p.Totals(context.Background(), []domain.CartItem{{Quantity: 1, UnitPrice: 100}})
	assert.Error(t, err)
	assert.Equal(t, "RWF", p.Currency())
}
