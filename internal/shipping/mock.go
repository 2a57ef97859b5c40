package shipping

import (
	"context"
)

// MockProvider is a test implementation of Provider.
type MockProvider struct {
	GetRatesFunc func(ctx context.Context, params RateParams) ([]Rate, error)

	// Calls records every RateParams passed to GetRates.
	Calls []RateParams
}

// NewMockProvider creates a mock that quotes a single fixed rate.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// GetRates delegates to GetRatesFunc or returns one standard rate of 1000.
func (m *MockProvider) GetRates(ctx context.Context, params RateParams) ([]Rate, error) {
	m.Calls = append(m.Calls, params)
	if m.GetRatesFunc != nil {
		return m.GetRatesFunc(ctx, params)
	}
	return []Rate{{RateID: "mock", Carrier: "Mock", ServiceName: "Mock Delivery", ServiceCode: "mock", Cost: 1000}}, nil
}
