// Package card implements the card generation and PDF export use cases.
package card

import (
	"fmt"

	"github.com/greetingsmith/backend/internal/domain/shared"
)

var (
	ErrMissingTextFields = shared.NewDomainError(shared.CodeValidationRequired, "Missing required fields: occasion, recipientName")
	ErrMissingOccasion   = shared.NewDomainError(shared.CodeValidationRequired, "Missing required field: occasion")
	ErrInvalidFileType   = shared.NewDomainError(shared.CodeUnsupportedMedia, "Invalid file type. Only images are allowed.")
	ErrUnsupportedImage  = shared.NewDomainError(shared.CodeUnsupportedMedia, "Unsupported image format. Please use JPEG, PNG, or WebP.")
	ErrTextGeneration    = shared.NewDomainError(shared.CodeExternalService, "Failed to generate text")
	ErrImageGeneration   = shared.NewDomainError(shared.CodeExternalService, "Failed to generate image")

	ErrMissingToken = shared.NewDomainError(shared.CodeUnauthorized, "Missing unlock token")
	ErrInvalidToken = shared.NewDomainError(shared.CodeTokenInvalid, "Invalid or expired token")
	ErrExpiredToken = shared.NewDomainError(shared.CodeTokenExpired, "Invalid or expired token")
	ErrWrongProduct = shared.NewDomainError(shared.CodeUnauthorized, "Invalid token product")
	ErrExportFailed = shared.NewDomainError(shared.CodeInternal, "Failed to export PDF")
)

// ErrFileTooLarge reports an upload above the configured limit.
func ErrFileTooLarge(maxMB int) *shared.DomainError {
	return shared.NewDomainError(shared.CodeFileTooLarge,
		fmt.Sprintf("File size too large. Maximum %dMB allowed", maxMB))
}
