package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/greetingsmith/backend/internal/domain/payment"
	"github.com/greetingsmith/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{shared.CodeInvalidInput, http.StatusBadRequest},
		{shared.CodeValidationRequired, http.StatusBadRequest},
		{shared.CodeContentRejected, http.StatusBadRequest},
		{shared.CodeFileTooLarge, http.StatusBadRequest},
		{shared.CodeUnsupportedMedia, http.StatusBadRequest},
		{shared.CodeUnauthorized, http.StatusUnauthorized},
		{shared.CodeTokenExpired, http.StatusUnauthorized},
		{shared.CodeTokenInvalid, http.StatusUnauthorized},
		{shared.CodeServiceUnavailable, http.StatusServiceUnavailable},
		{shared.CodeExternalService, http.StatusInternalServerError},
		{shared.CodeInternal, http.StatusInternalServerError},
		{ErrCodeInvalidJSON, http.StatusBadRequest},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestGetVerifyStatus(t *testing.T) {
	tests := []struct {
		reason   payment.Reason
		expected int
	}{
		{payment.ReasonMissingSessionID, http.StatusBadRequest},
		{payment.ReasonInvalidSessionFormat, http.StatusBadRequest},
		{payment.ReasonNotConfigured, http.StatusServiceUnavailable},
		{payment.ReasonSessionNotFound, http.StatusNotFound},
		{payment.ReasonProviderError, http.StatusInternalServerError},
		{payment.ReasonNotPaid, http.StatusPaymentRequired},
		{payment.ReasonInvalidProduct, http.StatusBadRequest},
		{payment.ReasonSessionExpired, http.StatusGone},
		{payment.ReasonVerificationFailed, http.StatusInternalServerError},
		{payment.Reason("something_else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			assert.Equal(t, tt.expected, GetVerifyStatus(tt.reason))
		})
	}
}

func TestErrorResponse_JSON(t *testing.T) {
	resp := NewErrorResponseWithRequestID(shared.CodeTokenExpired, "Invalid or expired token", "req-1").
		WithDetails("Token expired")

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": false,
		"error": {"code": "TOKEN_EXPIRED", "message": "Invalid or expired token", "details": "Token expired"},
		"request_id": "req-1"
	}`, string(raw))
}

func TestErrorResponse_WithDetailsCopies(t *testing.T) {
	base := NewErrorResponse(shared.CodeInternal, "boom")
	detailed := base.WithDetails("more")

	assert.Empty(t, base.Error.Details)
	assert.Equal(t, "more", detailed.Error.Details)
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "", []ValidationDetail{
		{Field: "style", Message: "Invalid style. Must be cartoonish, futuristic, or old_days"},
		{Field: "maxChars", Message: "Must be at least 20"},
	})

	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Len(t, resp.Error.Fields, 2)
	assert.Equal(t, "Invalid style. Must be cartoonish, futuristic, or old_days", resp.Error.Details)
	assert.Equal(t, http.StatusBadRequest, GetHTTPStatus(resp.Error.Code))
}
