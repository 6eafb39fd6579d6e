// Package payment models hosted checkout sessions and the rules for turning
// a paid session into an unlock.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	// VariantSingleCard is the only purchasable variant
	VariantSingleCard = "single_card"
	// SessionIDPrefix is the provider's checkout session id prefix
	SessionIDPrefix = "cs_"
	// StatusPaid is the payment status of a completed session
	StatusPaid = "paid"

	MetadataProduct   = "product"
	MetadataVariant   = "variant"
	MetadataTimestamp = "timestamp"
)

var (
	// ErrNotConfigured is returned when provider credentials are absent or placeholders
	ErrNotConfigured = errors.New("payment: provider not configured")
	// ErrSessionNotFound is returned when the provider does not know the session
	ErrSessionNotFound = errors.New("payment: session not found")
	// ErrInvalidSignature is returned for webhook payloads that fail verification
	ErrInvalidSignature = errors.New("payment: invalid webhook signature")
)

// Session is a snapshot of a provider checkout session
type Session struct {
	ID                string
	URL               string
	PaymentStatus     string
	Metadata          map[string]string
	ClientReferenceID string
	CreatedAt         time.Time
	ExpiresAt         time.Time
}

// IsPaid reports whether the session has been paid
func (s *Session) IsPaid() bool {
	return s.PaymentStatus == StatusPaid
}

// Product returns the product tag stored in the session metadata
func (s *Session) Product() string {
	return s.Metadata[MetadataProduct]
}

// CheckoutRequest describes a session to create
type CheckoutRequest struct {
	Variant           string
	Product           string
	ClientReferenceID string
	CreatedAt         time.Time
	ExpiresAt         time.Time
}

// Event is a verified provider webhook event
type Event struct {
	ID      string
	Type    string
	Session *Session
}

// Gateway is the hosted checkout provider
type Gateway interface {
	Configured() bool
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*Session, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*Session, error)
	ParseWebhookEvent(payload []byte, signature string) (*Event, error)
}

// Reason is a machine-readable verification failure, sent to clients as-is
type Reason string

const (
	ReasonMissingSessionID     Reason = "missing_session_id"
	ReasonInvalidSessionFormat Reason = "invalid_session_id_format"
	ReasonNotConfigured        Reason = "payment_system_not_configured"
	ReasonSessionNotFound      Reason = "session_not_found"
	ReasonNotPaid              Reason = "not_paid"
	ReasonInvalidProduct       Reason = "invalid_product"
	ReasonSessionExpired       Reason = "session_expired"
	ReasonProviderError        Reason = "stripe_error"
	ReasonVerificationFailed   Reason = "verification_failed"
)

// VerificationError reports why a session cannot unlock an export
type VerificationError struct {
	Reason Reason
	Cause  error
}

func (e *VerificationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("payment verification failed: %s: %v", e.Reason, e.Cause)
	}
	return "payment verification failed: " + string(e.Reason)
}

func (e *VerificationError) Unwrap() error {
	return e.Cause
}

// NewVerificationError creates a VerificationError
func NewVerificationError(reason Reason, cause error) *VerificationError {
	return &VerificationError{Reason: reason, Cause: cause}
}
