package service

import (
	"github.com/dukerupert/isoko/internal/domain"
)

// Catalog errors - use domain.ENOTFOUND
var (
	ErrProductNotFound = domain.ErrProductNotFound
)

// Cart errors
var (
	ErrCartItemNotFound   = domain.ErrCartItemNotFound
	ErrInvalidQuantity    = domain.ErrInvalidQuantity
	ErrInvalidSession     = domain.ErrInvalidSession
	ErrProductUnavailable = domain.ErrProductUnavailable
	ErrInsufficientStock  = domain.ErrInsufficientStock
)

// Order-related errors
var (
	ErrOrderNotFound      = domain.ErrOrderNotFound
	ErrEmptyCart          = domain.ErrEmptyCart
	ErrOrderNotPending    = domain.ErrOrderNotPending
	ErrPaymentInitiation  = domain.ErrPaymentInitiation
	ErrInvalidSignature   = domain.ErrInvalidSignature
	ErrTransactionMissing = domain.ErrTransactionMissing
	ErrMalformedWebhook   = domain.Errorf(domain.EINVALID, "", "Webhook payload could not be parsed")
	ErrTransactionUnknown = domain.Errorf(domain.ENOTFOUND, "", "Transaction not found at the payment gateway")
)
