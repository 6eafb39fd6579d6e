// Package payment adapts Stripe hosted checkout to the payment domain.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/greetingsmith/backend/internal/domain/payment"
	"github.com/greetingsmith/backend/internal/infrastructure/config"
	"github.com/stripe/stripe-go/v81"
	checkoutsession "github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

// SessionClient is the subset of the Stripe checkout session client in use.
// *checkoutsession.Client satisfies it.
type SessionClient interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// StripeGateway implements payment.Gateway on Stripe Checkout
type StripeGateway struct {
	config   config.StripeConfig
	sessions SessionClient
	logger   *zap.Logger
}

var _ payment.Gateway = (*StripeGateway)(nil)

// GatewayOption configures a StripeGateway
type GatewayOption func(*StripeGateway)

// WithBackend routes API calls through b instead of the default HTTP backend
func WithBackend(b stripe.Backend) GatewayOption {
	return func(g *StripeGateway) {
		g.sessions = &checkoutsession.Client{B: b, Key: g.config.SecretKey}
	}
}

// WithSessionClient replaces the session client entirely
func WithSessionClient(c SessionClient) GatewayOption {
	return func(g *StripeGateway) {
		g.sessions = c
	}
}

// NewStripeGateway creates the gateway. The client is bound to the configured
// key here; the package-level stripe.Key is never touched.
func NewStripeGateway(cfg config.StripeConfig, logger *zap.Logger, opts ...GatewayOption) *StripeGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &StripeGateway{
		config: cfg,
		logger: logger,
	}
	g.sessions = &checkoutsession.Client{B: stripe.GetBackend(stripe.APIBackend), Key: cfg.SecretKey}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Configured reports whether checkout sessions can be created
func (g *StripeGateway) Configured() bool {
	return hasSecretKey(g.config) && hasPrice(g.config)
}

// CreateCheckoutSession creates a one-item payment session
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (*payment.Session, error) {
	if !g.Configured() {
		return nil, payment.ErrNotConfigured
	}

	g.logger.Debug("Creating Stripe checkout session",
		zap.String("variant", req.Variant),
		zap.String("client_reference_id", req.ClientReferenceID))

	params := &stripe.CheckoutSessionParams{
		Mode:                stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:           []*stripe.CheckoutSessionLineItemParams{g.lineItem()},
		SuccessURL:          stripe.String(g.config.SuccessURL),
		CancelURL:           stripe.String(g.config.CancelURL),
		AllowPromotionCodes: stripe.Bool(true),
		AutomaticTax: &stripe.CheckoutSessionAutomaticTaxParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if !req.ExpiresAt.IsZero() {
		params.ExpiresAt = stripe.Int64(req.ExpiresAt.Unix())
	}
	if req.ClientReferenceID != "" {
		params.ClientReferenceID = stripe.String(req.ClientReferenceID)
	}
	params.AddMetadata(payment.MetadataProduct, req.Product)
	params.AddMetadata(payment.MetadataVariant, req.Variant)
	params.AddMetadata(payment.MetadataTimestamp, req.CreatedAt.UTC().Format(time.RFC3339))

	sess, err := g.sessions.New(params)
	if err != nil {
		g.logger.Error("Failed to create Stripe checkout session",
			zap.String("variant", req.Variant),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}

	g.logger.Info("Created Stripe checkout session",
		zap.String("session_id", sess.ID),
		zap.String("variant", req.Variant))

	return toSession(sess), nil
}

func (g *StripeGateway) lineItem() *stripe.CheckoutSessionLineItemParams {
	if isSet(g.config.PriceID, placeholderPriceID) {
		return &stripe.CheckoutSessionLineItemParams{
			Price:    stripe.String(g.config.PriceID),
			Quantity: stripe.Int64(1),
		}
	}
	return &stripe.CheckoutSessionLineItemParams{
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String(strings.ToLower(g.config.Currency)),
			UnitAmount: stripe.Int64(unitAmountMinor(g.config)),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(g.config.ProductName),
			},
		},
		Quantity: stripe.Int64(1),
	}
}

// GetCheckoutSession retrieves a session. Unknown sessions yield
// payment.ErrSessionNotFound.
func (g *StripeGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*payment.Session, error) {
	if !hasSecretKey(g.config) {
		return nil, payment.ErrNotConfigured
	}

	g.logger.Debug("Retrieving Stripe checkout session", zap.String("session_id", sessionID))

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := g.sessions.Get(sessionID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
			g.logger.Info("Stripe checkout session not found", zap.String("session_id", sessionID))
			return nil, fmt.Errorf("stripe: session %s: %w", sessionID, payment.ErrSessionNotFound)
		}
		g.logger.Error("Failed to retrieve Stripe checkout session",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to retrieve checkout session: %w", err)
	}

	return toSession(sess), nil
}

// ParseWebhookEvent verifies the Stripe-Signature header and decodes the
// event. Checkout session events carry the session snapshot.
func (g *StripeGateway) ParseWebhookEvent(payload []byte, signature string) (*payment.Event, error) {
	if !hasWebhookSecret(g.config) {
		return nil, payment.ErrNotConfigured
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, g.config.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		g.logger.Warn("Rejected Stripe webhook", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", payment.ErrInvalidSignature, err)
	}

	out := &payment.Event{ID: event.ID, Type: string(event.Type)}
	if strings.HasPrefix(out.Type, "checkout.session.") && event.Data != nil {
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("stripe: failed to decode checkout session event: %w", err)
		}
		out.Session = toSession(&sess)
	}
	return out, nil
}

func toSession(s *stripe.CheckoutSession) *payment.Session {
	out := &payment.Session{
		ID:                s.ID,
		URL:               s.URL,
		PaymentStatus:     string(s.PaymentStatus),
		Metadata:          s.Metadata,
		ClientReferenceID: s.ClientReferenceID,
	}
	if out.Metadata == nil {
		out.Metadata = map[string]string{}
	}
	if s.Created > 0 {
		out.CreatedAt = time.Unix(s.Created, 0).UTC()
	}
	if s.ExpiresAt > 0 {
		out.ExpiresAt = time.Unix(s.ExpiresAt, 0).UTC()
	}
	return out
}
