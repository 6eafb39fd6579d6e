// Package payment implements the checkout, verification and webhook use cases.
package payment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/greetingsmith/backend/internal/domain/payment"
	"github.com/greetingsmith/backend/internal/domain/shared"
	"go.uber.org/zap"
)

var (
	ErrUnsupportedVariant = shared.NewDomainError(shared.CodeInvalidInput,
		`Invalid variant. Currently only "single_card" is supported.`)
	ErrPaymentNotConfigured = shared.NewDomainError(shared.CodeServiceUnavailable,
		"Payment system not configured. Please contact support.")
	ErrPaymentProvider = shared.NewDomainError(shared.CodeExternalService, "Payment system error")
)

// Recorder receives payment business events. telemetry.CardMetrics implements it.
type Recorder interface {
	RecordCheckoutCreated(ctx context.Context, variant string)
	RecordVerification(ctx context.Context, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordCheckoutCreated(context.Context, string) {}
func (nopRecorder) RecordVerification(context.Context, string)    {}

// CheckoutService creates hosted checkout sessions
type CheckoutService struct {
	gateway    payment.Gateway
	product    string
	sessionTTL time.Duration
	metrics    Recorder
	logger     *zap.Logger
	now        func() time.Time
}

// CheckoutServiceConfig contains configuration for CheckoutService
type CheckoutServiceConfig struct {
	Gateway    payment.Gateway
	Product    string
	SessionTTL time.Duration
	Metrics    Recorder
	Logger     *zap.Logger
	Now        func() time.Time
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(cfg CheckoutServiceConfig) *CheckoutService {
	s := &CheckoutService{
		gateway:    cfg.Gateway,
		product:    cfg.Product,
		sessionTTL: cfg.SessionTTL,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
		now:        cfg.Now,
	}
	if s.metrics == nil {
		s.metrics = nopRecorder{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.sessionTTL <= 0 {
		s.sessionTTL = 30 * time.Minute
	}
	return s
}

// CheckoutResult is a created session
type CheckoutResult struct {
	CheckoutURL string
	SessionID   string
}

// CreateCheckout starts a one-time payment for variant. An empty variant
// means single_card.
func (s *CheckoutService) CreateCheckout(ctx context.Context, variant string) (*CheckoutResult, error) {
	variant = strings.TrimSpace(variant)
	if variant == "" {
		variant = payment.VariantSingleCard
	}
	if variant != payment.VariantSingleCard {
		return nil, ErrUnsupportedVariant
	}
	if !s.gateway.Configured() {
		s.logger.Warn("Checkout requested but payment provider is not configured")
		return nil, ErrPaymentNotConfigured
	}

	now := s.now().UTC()
	sess, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		Variant:           variant,
		Product:           s.product,
		ClientReferenceID: uuid.New().String(),
		CreatedAt:         now,
		ExpiresAt:         now.Add(s.sessionTTL),
	})
	if err != nil {
		if errors.Is(err, payment.ErrNotConfigured) {
			return nil, ErrPaymentNotConfigured
		}
		s.logger.Error("Failed to create checkout session", zap.Error(err))
		return nil, ErrPaymentProvider.WithCause(err)
	}
	if sess.URL == "" {
		s.logger.Error("Checkout session created without a URL", zap.String("session_id", sess.ID))
		return nil, ErrPaymentProvider.WithDetails("Failed to create checkout session URL")
	}

	s.metrics.RecordCheckoutCreated(ctx, variant)
	s.logger.Info("Checkout session created",
		zap.String("session_id", sess.ID),
		zap.String("variant", variant))

	return &CheckoutResult{CheckoutURL: sess.URL, SessionID: sess.ID}, nil
}
