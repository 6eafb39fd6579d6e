package router

import (
	"github.com/gin-gonic/gin"
	"github.com/greetingsmith/backend/internal/interfaces/http/handler"
)

// Handlers are the endpoints served under the API prefix
type Handlers struct {
	Card    *handler.CardHandler
	Export  *handler.ExportHandler
	Payment *handler.PaymentHandler
	Webhook *handler.StripeWebhookHandler
}

// CardRoutes registers text and image generation, including the legacy
// /generate-* aliases. generationLimit may be nil.
func CardRoutes(h *handler.CardHandler, generationLimit gin.HandlerFunc) *DomainGroup {
	return NewDomainGroup("card", "").
		Use(generationLimit).
		POST("/text", h.GenerateText).
		POST("/image", h.GenerateImage).
		POST("/generate-text", h.GenerateText).
		POST("/generate-image", h.GenerateImage)
}

// ExportRoutes registers the unlocked PDF download
func ExportRoutes(h *handler.ExportHandler) *DomainGroup {
	return NewDomainGroup("export", "").
		POST("/export-pdf", h.ExportPDF)
}

// PaymentRoutes registers checkout, verification and the provider webhook
func PaymentRoutes(h *handler.PaymentHandler, webhook *handler.StripeWebhookHandler) *DomainGroup {
	return NewDomainGroup("payment", "/pay").
		POST("/checkout", h.CreateCheckout).
		GET("/verify", h.VerifyPayment).
		POST("/webhook", webhook.HandleStripeWebhook)
}

// RegisterAPI adds every API group to r
func RegisterAPI(r *Router, h Handlers, generationLimit gin.HandlerFunc) *Router {
	return r.
		Register(CardRoutes(h.Card, generationLimit)).
		Register(ExportRoutes(h.Export)).
		Register(PaymentRoutes(h.Payment, h.Webhook))
}
