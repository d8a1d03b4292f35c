// Package domain defines the normalized checkout event shape and the
// translation contract between the payment processor and the quota ledger.
package domain

import (
	"context"
	"errors"
)

// CheckoutEvent is a normalized payment-completion notification. The webhook
// layer verifies authenticity before this shape reaches the translator.
type CheckoutEvent struct {
	UserID      string `json:"user_id"`
	ProductCode string `json:"product_code"`
	ExternalRef string `json:"external_ref"`
}

// Service maps a checkout event onto exactly one ledger mutation. Ledger
// failures propagate so the webhook layer can return a non-success status and
// the processor redelivers; there is no retry loop here.
type Service interface {
	TranslateAndApply(ctx context.Context, event CheckoutEvent) error
}

// SignatureVerifier authenticates a raw webhook delivery. Treated as a black
// box; the processor documents the scheme.
type SignatureVerifier interface {
	Verify(payload []byte, signature string) error
}

var (
	ErrUnrecognizedProduct = errors.New("unrecognized_product")
	ErrInvalidEvent        = errors.New("invalid_event")
	ErrInvalidSignature    = errors.New("invalid_signature")
)
