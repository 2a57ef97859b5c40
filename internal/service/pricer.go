package service

import (
	"context"
	"fmt"

	"github.com/dukerupert/isoko/internal/domain"
	"github.com/dukerupert/isoko/internal/shipping"
	"github.com/dukerupert/isoko/internal/tax"
)

// Pricer derives cart and order totals from line items.
type Pricer struct {
	tax      tax.Calculator
	shipping shipping.Provider
	currency string
}

// NewPricer creates a Pricer. An empty currency defaults to RWF.
func NewPricer(taxCalculator tax.Calculator, shippingProvider shipping.Provider, currency string) *Pricer {
	if currency == "" {
		currency = "RWF"
	}
	return &Pricer{
		tax:      taxCalculator,
		shipping: shippingProvider,
		currency: currency,
	}
}

// Currency is the ISO code every total is expressed in.
func (p *Pricer) Currency() string {
	return p.currency
}

// Totals computes subtotal, shipping, tax and total for items.
// Lines with a non-positive quantity are skipped. An empty cart
// has all-zero totals and is never charged shipping.
func (p *Pricer) Totals(ctx context.Context, items []domain.CartItem) (domain.CartTotals, error) {
	totals := domain.CartTotals{Currency: p.currency}

	lines := make([]tax.LineItem, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		lineTotal := int64(item.Quantity) * item.UnitPrice
		totals.Subtotal += lineTotal
		totals.ItemCount += int(item.Quantity)
		lines = append(lines, tax.LineItem{
			ProductID:   item.ProductID,
			Description: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  lineTotal,
		})
	}

	if totals.ItemCount == 0 {
		return totals, nil
	}

	rates, err := p.shipping.GetRates(ctx, shipping.RateParams{
		Subtotal:  totals.Subtotal,
		ItemCount: totals.ItemCount,
	})
	if err != nil {
		return domain.CartTotals{}, fmt.Errorf("quote shipping: %w", err)
	}
	rate, err := shipping.Cheapest(rates)
	if err != nil {
		return domain.CartTotals{}, fmt.Errorf("quote shipping: %w", err)
	}
	totals.Shipping = rate.Cost

	taxResult, err := p.tax.CalculateTax(ctx, tax.TaxParams{
		LineItems:      lines,
		ShippingAmount: totals.Shipping,
		Currency:       p.currency,
	})
	if err != nil {
		return domain.CartTotals{}, fmt.Errorf("calculate tax: %w", err)
	}
	totals.Tax = taxResult.TotalTax

	totals.Total = totals.Subtotal + totals.Shipping + totals.Tax
	return totals, nil
}
