package payment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/greetingsmith/backend/internal/domain/payment"
	"go.uber.org/zap"
)

// TokenSigner issues unlock tokens. auth.UnlockTokenService implements it.
type TokenSigner interface {
	Sign(sessionID, product string) (string, error)
}

// VerificationService turns a paid checkout session into an unlock token
type VerificationService struct {
	gateway       payment.Gateway
	signer        TokenSigner
	product       string
	maxSessionAge time.Duration
	metrics       Recorder
	logger        *zap.Logger
	now           func() time.Time
}

// VerificationServiceConfig contains configuration for VerificationService
type VerificationServiceConfig struct {
	Gateway       payment.Gateway
	Signer        TokenSigner
	Product       string
	MaxSessionAge time.Duration
	Metrics       Recorder
	Logger        *zap.Logger
	Now           func() time.Time
}

// NewVerificationService creates a new VerificationService
func NewVerificationService(cfg VerificationServiceConfig) *VerificationService {
	s := &VerificationService{
		gateway:       cfg.Gateway,
		signer:        cfg.Signer,
		product:       cfg.Product,
		maxSessionAge: cfg.MaxSessionAge,
		metrics:       cfg.Metrics,
		logger:        cfg.Logger,
		now:           cfg.Now,
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
	if s.maxSessionAge <= 0 {
		s.maxSessionAge = 24 * time.Hour
	}
	return s
}

// Verify checks the session with the provider and returns an unlock token.
// Every failure is a *payment.VerificationError.
func (s *VerificationService) Verify(ctx context.Context, sessionID string) (string, error) {
	token, err := s.verify(ctx, strings.TrimSpace(sessionID))
	outcome := "ok"
	if err != nil {
		var verr *payment.VerificationError
		if errors.As(err, &verr) {
			outcome = string(verr.Reason)
		}
	}
	s.metrics.RecordVerification(ctx, outcome)
	return token, err
}

func (s *VerificationService) verify(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", payment.NewVerificationError(payment.ReasonMissingSessionID, nil)
	}
	if !strings.HasPrefix(sessionID, payment.SessionIDPrefix) {
		return "", payment.NewVerificationError(payment.ReasonInvalidSessionFormat, nil)
	}

	sess, err := s.gateway.GetCheckoutSession(ctx, sessionID)
	switch {
	case errors.Is(err, payment.ErrNotConfigured):
		s.logger.Warn("Verification requested but payment provider is not configured")
		return "", payment.NewVerificationError(payment.ReasonNotConfigured, err)
	case errors.Is(err, payment.ErrSessionNotFound):
		return "", payment.NewVerificationError(payment.ReasonSessionNotFound, err)
	case err != nil:
		s.logger.Error("Failed to retrieve checkout session",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return "", payment.NewVerificationError(payment.ReasonProviderError, err)
	}

	if !sess.IsPaid() {
		s.logger.Info("Checkout session not paid",
			zap.String("session_id", sessionID),
			zap.String("payment_status", sess.PaymentStatus))
		return "", payment.NewVerificationError(payment.ReasonNotPaid, nil)
	}
	if sess.Product() != s.product {
		s.logger.Warn("Checkout session has unexpected product",
			zap.String("session_id", sessionID),
			zap.String("product", sess.Product()))
		return "", payment.NewVerificationError(payment.ReasonInvalidProduct, nil)
	}
	// A session without a creation time cannot prove its age.
	if sess.CreatedAt.IsZero() || s.now().Sub(sess.CreatedAt) > s.maxSessionAge {
		s.logger.Info("Checkout session too old or undated",
			zap.String("session_id", sessionID),
			zap.Time("created_at", sess.CreatedAt))
		return "", payment.NewVerificationError(payment.ReasonSessionExpired, nil)
	}

	token, err := s.signer.Sign(sess.ID, s.product)
	if err != nil {
		s.logger.Error("Failed to sign unlock token", zap.Error(err))
		return "", payment.NewVerificationError(payment.ReasonVerificationFailed, err)
	}

	s.logger.Info("Payment verified, unlock token issued", zap.String("session_id", sess.ID))
	return token, nil
}
