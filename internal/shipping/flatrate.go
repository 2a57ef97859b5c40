package shipping

import (
	"context"
	"time"
)

// FlatRateProvider returns predefined flat-rate delivery options.
// Every option becomes free once the subtotal reaches FreeShippingThreshold.
type FlatRateProvider struct {
	rates     []FlatRate
	threshold int64
}

// FlatRate defines a single flat-rate delivery option.
type FlatRate struct {
	ServiceName string
	ServiceCode string
	Cost        int64
	DaysMin     int
	DaysMax     int
}

// NewFlatRateProvider creates a flat-rate provider.
// A threshold of 0 or less disables free shipping.
func NewFlatRateProvider(rates []FlatRate, freeShippingThreshold int64) Provider {
	return &FlatRateProvider{rates: rates, threshold: freeShippingThreshold}
}

// GetRates converts flat rates to Rate objects.
func (p *FlatRateProvider) GetRates(ctx context.Context, params RateParams) ([]Rate, error) {
	if params.ItemCount <= 0 {
		return nil, ErrNoItems
	}
	if params.Subtotal < 0 {
		return nil, ErrNegativeSubtotal
	}
	if len(p.rates) == 0 {
		return nil, ErrNoRates
	}

	free := p.threshold > 0 && params.Subtotal >= p.threshold

	result := make([]Rate, len(p.rates))
	for i, fr := range p.rates {
		cost := fr.Cost
		if free {
			cost = 0
		}
		result[i] = Rate{
			RateID:                fr.ServiceCode,
			Carrier:               "Flat Rate",
			ServiceName:           fr.ServiceName,
			ServiceCode:           fr.ServiceCode,
			Cost:                  cost,
			Free:                  free,
			EstimatedDaysMin:      fr.DaysMin,
			EstimatedDaysMax:      fr.DaysMax,
			EstimatedDeliveryDate: time.Now().AddDate(0, 0, fr.DaysMax),
		}
	}
	return result, nil
}
