package billing

import (
	"fmt"
	"net/http"
	"time"
)

// Config selects and configures the payment provider.
type Config struct {
	// Provider is "flutterwave", "stripe" or "mock".
	Provider string

	// Timeout bounds every gateway HTTP call.
	// Default: 15s
	Timeout time.Duration

	Flutterwave FlutterwaveConfig
	Stripe      StripeConfig
}

// NewProvider builds the Provider named by cfg.Provider.
func NewProvider(cfg Config) (Provider, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	switch cfg.Provider {
	case "flutterwave", "":
		fc := cfg.Flutterwave
		if fc.HTTPClient == nil {
			fc.HTTPClient = &http.Client{Timeout: timeout}
		}
		return NewFlutterwaveProvider(fc)
	case "stripe":
		return NewStripeProvider(cfg.Stripe)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}
