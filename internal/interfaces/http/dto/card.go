package dto

import (
	"github.com/greetingsmith/backend/internal/domain/card"
	"github.com/greetingsmith/backend/internal/domain/generation"
)

// TextRequest is the body of POST /api/text. Required fields are checked by
// the generation service so clients get a single combined message. Any
// maxChars is accepted; oversized copy is trimmed to it.
type TextRequest struct {
	Occasion      string `json:"occasion"`
	RecipientName string `json:"recipientName"`
	Style         string `json:"style" binding:"omitempty,card_style"`
	Tone          string `json:"tone" binding:"omitempty,card_tone"`
	ExtraContext  string `json:"extraContext"`
	Language      string `json:"language"`
	MaxChars      int    `json:"maxChars"`
}

// TextResponse lists generated headline/line pairs
type TextResponse struct {
	Candidates []card.Candidate `json:"candidates"`
}

// ImageResponse carries the generated background
type ImageResponse struct {
	ImagePngBase64 string          `json:"imagePngBase64"`
	Mode           generation.Mode `json:"mode"`
}

// CheckoutRequest is the body of POST /api/pay/checkout. An empty body means
// the default variant.
type CheckoutRequest struct {
	Variant string `json:"variant"`
}

// CheckoutResponse points the client at the hosted checkout page
type CheckoutResponse struct {
	CheckoutURL string `json:"checkoutUrl"`
	SessionID   string `json:"sessionId,omitempty"`
}

// VerifyResponse is the body of GET /api/pay/verify for success and failure.
type VerifyResponse struct {
	OK          bool   `json:"ok"`
	UnlockToken string `json:"unlockToken,omitempty"`
	Error       string `json:"error,omitempty"`
}

// WebhookResponse acknowledges a provider event
type WebhookResponse struct {
	Received  bool   `json:"received"`
	EventID   string `json:"eventId,omitempty"`
	EventType string `json:"eventType,omitempty"`
	Processed bool   `json:"processed"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// ExportRequest is the body of POST /api/export-pdf
type ExportRequest struct {
	UnlockToken string     `json:"unlockToken"`
	Card        *card.Card `json:"card"`
	Size        string     `json:"size"`
}

// HealthResponse reports liveness and the active backends
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Generator string `json:"generator"`
	PDFEngine string `json:"pdfEngine"`
	Uptime    string `json:"uptime"`
}
