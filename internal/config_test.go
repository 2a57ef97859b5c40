package internal

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("ENV", "dev")
	t.Setenv("PAYMENT_PROVIDER", "flutterwave")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, uint16(3000), cfg.Port)
	assert.Equal(t, "RWF", cfg.Pricing.Currency)
	assert.Equal(t, int64(100000), cfg.Pricing.FreeShippingThreshold)
	assert.Equal(t, int64(9990), cfg.Pricing.FlatShippingFee)
	assert.InDelta(t, 0.18, cfg.Pricing.TaxRate, 1e-9)
	assert.Equal(t, 15*time.Second, cfg.Payment.Timeout)
	assert.Equal(t, "none", cfg.Events.Backend)
	assert.Equal(t, 15*time.Minute, cfg.Worker.ReconcileAfter)
}

func TestNewConfig_Overrides(t *testing.T) {
	t.Setenv("ENV", "dev")
	t.Setenv("PORT", "8080")
	t.Setenv("ALLOWED_ORIGINS", "https://shop.isoko.rw, ,https://admin.isoko.rw")
	t.Setenv("PAYMENT_PROVIDER", "mock")
	t.Setenv("PAYMENT_TIMEOUT", "3s")
	t.Setenv("CART_CACHE_TTL", "not-a-duration")
	t.Setenv("EVENTS_BACKEND", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("FREE_SHIPPING_THRESHOLD", "50000")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, uint16(8080), cfg.Port)
	assert.Equal(t, []string{"https://shop.isoko.rw", "https://admin.isoko.rw"}, cfg.AllowedOrigins)
	assert.Equal(t, 3*time.Second, cfg.Payment.Timeout)
	assert.Equal(t, 10*time.Minute, cfg.Redis.CartCacheTTL, "invalid durations fall back")
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.KafkaBrokers)
	assert.Equal(t, int64(50000), cfg.Pricing.FreeShippingThreshold)
}

func TestNewConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"unknown provider", map[string]string{"PAYMENT_PROVIDER": "paypal"}, "unknown PAYMENT_PROVIDER"},
		{"stripe without key", map[string]string{"PAYMENT_PROVIDER": "stripe"}, "STRIPE_SECRET_KEY"},
		{"mock in prod", map[string]string{"ENV": "prod", "PAYMENT_PROVIDER": "mock"}, "not allowed in production"},
		{"flutterwave in prod without key", map[string]string{"ENV": "prod", "PAYMENT_PROVIDER": "flutterwave"}, "FLW_SECRET_KEY"},
		{"unknown events backend", map[string]string{"PAYMENT_PROVIDER": "mock", "EVENTS_BACKEND": "rabbit"}, "EVENTS_BACKEND"},
		{"tax rate out of range", map[string]string{"PAYMENT_PROVIDER": "mock", "TAX_RATE": "18"}, "TAX_RATE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENV", "dev")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := NewConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewConfig_InvalidEnvFallsBackToProd(t *testing.T) {
	t.Setenv("ENV", "staging")
	t.Setenv("PAYMENT_PROVIDER", "flutterwave")
	t.Setenv("FLW_SECRET_KEY", "FLWSECK_TEST-abc")
	t.Setenv("LOG_LEVEL", "verbose")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, "prod", "warn").Info("hidden")
	NewLogger(&buf, "prod", "warn").Warn("shown", "order_id", "o1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"order_id":"o1"`)

	buf.Reset()
	NewLogger(&buf, "dev", "debug").Debug("text handler")
	assert.Contains(t, buf.String(), "msg=\"text handler\"")
}
