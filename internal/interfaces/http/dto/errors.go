package dto

import (
	"net/http"

	"github.com/greetingsmith/backend/internal/domain/payment"
	"github.com/greetingsmith/backend/internal/domain/shared"
)

// Error codes raised by the HTTP layer itself. Application errors use the
// shared.Code* constants.
const (
	ErrCodeInvalidJSON     = "INVALID_JSON"
	ErrCodeValidation      = "VALIDATION_FAILED"
	ErrCodeRateLimited     = "RATE_LIMIT_EXCEEDED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeNotFound        = "NOT_FOUND"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// Input errors -> 400 Bad Request
	shared.CodeInvalidInput:       http.StatusBadRequest,
	shared.CodeValidationRequired: http.StatusBadRequest,
	shared.CodeContentRejected:    http.StatusBadRequest,
	shared.CodeFileTooLarge:       http.StatusBadRequest,
	shared.CodeUnsupportedMedia:   http.StatusBadRequest,
	ErrCodeInvalidJSON:            http.StatusBadRequest,
	ErrCodeValidation:             http.StatusBadRequest,

	// Token errors
	shared.CodeUnauthorized: http.StatusUnauthorized,
	shared.CodeTokenExpired: http.StatusUnauthorized,
	shared.CodeTokenInvalid: http.StatusUnauthorized,
	shared.CodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,

	// Server side
	shared.CodeServiceUnavailable: http.StatusServiceUnavailable,
	shared.CodeExternalService:    http.StatusInternalServerError,
	shared.CodeInternal:           http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// VerifyReasonHTTPStatus maps payment verification failures to HTTP status codes
var VerifyReasonHTTPStatus = map[payment.Reason]int{
	payment.ReasonMissingSessionID:     http.StatusBadRequest,
	payment.ReasonInvalidSessionFormat: http.StatusBadRequest,
	payment.ReasonInvalidProduct:       http.StatusBadRequest,
	payment.ReasonNotPaid:              http.StatusPaymentRequired,
	payment.ReasonSessionNotFound:      http.StatusNotFound,
	payment.ReasonSessionExpired:       http.StatusGone,
	payment.ReasonNotConfigured:        http.StatusServiceUnavailable,
	payment.ReasonProviderError:        http.StatusInternalServerError,
	payment.ReasonVerificationFailed:   http.StatusInternalServerError,
}

// GetVerifyStatus returns the HTTP status code for a verification failure
func GetVerifyStatus(reason payment.Reason) int {
	if status, ok := VerifyReasonHTTPStatus[reason]; ok {
		return status
	}
	return http.StatusInternalServerError
}
