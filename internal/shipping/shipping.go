package shipping

import (
	"context"
	"time"
)

// Provider defines the interface for quoting delivery.
// Label purchase and tracking are handled by vendors outside this service.
type Provider interface {
	// GetRates returns available delivery options for a cart.
	GetRates(ctx context.Context, params RateParams) ([]Rate, error)
}

// RateParams describes what is being delivered.
type RateParams struct {
	// Subtotal is the merchandise value in whole francs.
	Subtotal int64

	// ItemCount is the number of units in the shipment.
	ItemCount int

	// District is the destination district, if known (e.g. "Gasabo").
	District string
}

// Rate represents a delivery option.
type Rate struct {
	RateID                string
	Carrier               string
	ServiceName           string
	ServiceCode           string
	Cost                  int64
	Free                  bool
	EstimatedDaysMin      int
	EstimatedDaysMax      int
	EstimatedDeliveryDate time.Time
}

// Cheapest returns the lowest-cost rate, or ErrNoRates when rates is empty.
func Cheapest(rates []Rate) (Rate, error) {
	if len(rates) == 0 {
		return Rate{}, ErrNoRates
	}
	best := rates[0]
	for _, r := range rates[1:] {
		if r.Cost < best.Cost {
			best = r
		}
	}
	return best, nil
}
