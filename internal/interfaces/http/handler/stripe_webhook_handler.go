package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	paymentapp "github.com/greetingsmith/backend/internal/application/payment"
	"github.com/greetingsmith/backend/internal/domain/shared"
	"github.com/greetingsmith/backend/internal/interfaces/http/dto"
)

// Maximum webhook payload size (64KB - Stripe webhooks are typically small)
const maxWebhookPayloadSize = 65536

// StripeWebhookHandler receives Stripe event deliveries. Requests are
// authenticated by the Stripe-Signature header only.
type StripeWebhookHandler struct {
	BaseHandler
	webhookService *paymentapp.WebhookService
}

// NewStripeWebhookHandler creates a new StripeWebhookHandler
func NewStripeWebhookHandler(webhookService *paymentapp.WebhookService) *StripeWebhookHandler {
	return &StripeWebhookHandler{webhookService: webhookService}
}

// HandleStripeWebhook handles POST /api/pay/webhook
func (h *StripeWebhookHandler) HandleStripeWebhook(c *gin.Context) {
	// The raw body is needed for signature verification.
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookPayloadSize+1))
	if err != nil {
		h.BadRequest(c, shared.CodeInvalidInput, "Failed to read request body")
		return
	}
	if len(payload) > maxWebhookPayloadSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Payload too large")
		return
	}

	result, err := h.webhookService.ProcessWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.WebhookResponse{
		Received:  true,
		EventID:   result.EventID,
		EventType: result.EventType,
		Processed: result.Processed,
		Duplicate: result.Duplicate,
	})
}
