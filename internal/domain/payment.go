package domain

import "encoding/json"

// PaymentEvent is a gateway callback decoded into one of a closed set of
// variants: PaymentSucceeded, PaymentFailed or UnknownPaymentEvent.
type PaymentEvent interface {
	EventName() string
	paymentEvent()
}

// PaymentDetails are the fields shared by settled and failed payments.
type PaymentDetails struct {
	Gateway              string
	TxRef                string
	OrderID              string // from the event metadata, may be empty
	GatewayTransactionID string
	Amount               int64
	// Fractional is set when the gateway reported a sub-franc amount; Amount
	// then holds the truncated whole part and never matches an order total.
	Fractional           bool
	Currency             string
	PaymentType          string
	CustomerEmail        string
	Raw                  json.RawMessage
}

// PaymentSucceeded reports a settled payment.
type PaymentSucceeded struct {
	Name string
	PaymentDetails
}

// PaymentFailed reports a declined or abandoned payment.
type PaymentFailed struct {
	Name   string
	Reason string
	PaymentDetails
}

// UnknownPaymentEvent is any callback the reconciler does not act on.
type UnknownPaymentEvent struct {
	Name string
	Raw  json.RawMessage
}

func (e PaymentSucceeded) EventName() string    { return e.Name }
func (e PaymentFailed) EventName() string       { return e.Name }
func (e UnknownPaymentEvent) EventName() string { return e.Name }

func (PaymentSucceeded) paymentEvent()    {}
func (PaymentFailed) paymentEvent()       {}
func (UnknownPaymentEvent) paymentEvent() {}
