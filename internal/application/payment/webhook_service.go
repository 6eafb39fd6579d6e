package payment

import (
	"context"
	"errors"
	"time"

	"github.com/greetingsmith/backend/internal/domain/payment"
	"github.com/greetingsmith/backend/internal/domain/shared"
	"go.uber.org/zap"
)

var (
	ErrWebhookNotConfigured = shared.NewDomainError(shared.CodeServiceUnavailable, "Webhook endpoint not configured")
	ErrWebhookSignature     = shared.NewDomainError(shared.CodeInvalidInput, "Invalid webhook signature")
)

const (
	eventCheckoutCompleted = "checkout.session.completed"
	// The provider retries failed deliveries for up to three days.
	defaultDedupTTL = 72 * time.Hour
)

// Deduplicator remembers delivered event ids. cache.Store implements it.
type Deduplicator interface {
	MarkProcessed(ctx context.Context, id string, ttl time.Duration) (bool, error)
}

// WebhookService acknowledges provider events. No order state is kept; a
// completed checkout is logged and counted so operators can reconcile
// payments against verifications.
type WebhookService struct {
	gateway  payment.Gateway
	product  string
	dedup    Deduplicator
	dedupTTL time.Duration
	metrics  Recorder
	logger   *zap.Logger
}

// WebhookServiceConfig contains configuration for WebhookService.
// Dedup is optional; without it redelivered events are counted again.
type WebhookServiceConfig struct {
	Gateway  payment.Gateway
	Product  string
	Dedup    Deduplicator
	DedupTTL time.Duration
	Metrics  Recorder
	Logger   *zap.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(cfg WebhookServiceConfig) *WebhookService {
	s := &WebhookService{
		gateway:  cfg.Gateway,
		product:  cfg.Product,
		dedup:    cfg.Dedup,
		dedupTTL: cfg.DedupTTL,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	}
	if s.dedupTTL <= 0 {
		s.dedupTTL = defaultDedupTTL
	}
	if s.metrics == nil {
		s.metrics = nopRecorder{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// WebhookResult contains the result of processing a webhook
type WebhookResult struct {
	EventID   string `json:"eventId"`
	EventType string `json:"eventType"`
	Processed bool   `json:"processed"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// ProcessWebhook verifies and handles a provider event
func (s *WebhookService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	event, err := s.gateway.ParseWebhookEvent(payload, signature)
	if err != nil {
		if errors.Is(err, payment.ErrNotConfigured) {
			return nil, ErrWebhookNotConfigured
		}
		return nil, ErrWebhookSignature.WithCause(err)
	}

	result := &WebhookResult{EventID: event.ID, EventType: event.Type}

	switch event.Type {
	case eventCheckoutCompleted:
		if event.Session == nil {
			break
		}
		if s.isDuplicate(ctx, event.ID) {
			result.Duplicate = true
			break
		}
		if event.Session.Product() != s.product {
			s.logger.Warn("Completed checkout for unknown product",
				zap.String("event_id", event.ID),
				zap.String("session_id", event.Session.ID),
				zap.String("product", event.Session.Product()))
			break
		}
		s.metrics.RecordVerification(ctx, "webhook_"+event.Session.PaymentStatus)
		s.logger.Info("Checkout completed",
			zap.String("event_id", event.ID),
			zap.String("session_id", event.Session.ID),
			zap.String("payment_status", event.Session.PaymentStatus),
			zap.String("client_reference_id", event.Session.ClientReferenceID))
		result.Processed = true
	default:
		s.logger.Debug("Unhandled webhook event type", zap.String("event_type", event.Type))
	}

	return result, nil
}

// isDuplicate reports whether the event was already handled. Store failures
// are logged and the event is treated as new.
func (s *WebhookService) isDuplicate(ctx context.Context, eventID string) bool {
	if s.dedup == nil || eventID == "" {
		return false
	}
	isNew, err := s.dedup.MarkProcessed(ctx, eventID, s.dedupTTL)
	if err != nil {
		s.logger.Warn("Webhook deduplication unavailable", zap.String("event_id", eventID), zap.Error(err))
		return false
	}
	if !isNew {
		s.logger.Info("Duplicate webhook delivery ignored", zap.String("event_id", eventID))
	}
	return !isNew
}
