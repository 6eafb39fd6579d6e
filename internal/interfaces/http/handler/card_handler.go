package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	cardapp "github.com/greetingsmith/backend/internal/application/card"
	"github.com/greetingsmith/backend/internal/domain/shared"
	"github.com/greetingsmith/backend/internal/interfaces/http/dto"
	"github.com/greetingsmith/backend/internal/interfaces/http/middleware"
)

const (
	formFieldMeta  = "meta"
	formFieldPhoto = "photo"
)

// CardHandler serves text and image generation
type CardHandler struct {
	BaseHandler
	generationService *cardapp.GenerationService
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(generationService *cardapp.GenerationService) *CardHandler {
	return &CardHandler{generationService: generationService}
}

// GenerateText handles POST /api/text
func (h *CardHandler) GenerateText(c *gin.Context) {
	var req dto.TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	candidates, err := h.generationService.GenerateText(c.Request.Context(), cardapp.TextInput{
		Occasion:      req.Occasion,
		RecipientName: req.RecipientName,
		Style:         req.Style,
		Tone:          req.Tone,
		ExtraContext:  req.ExtraContext,
		Language:      req.Language,
		MaxChars:      req.MaxChars,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TextResponse{Candidates: candidates})
}

// GenerateImage handles POST /api/image. The body is multipart with a JSON
// "meta" field and an optional "photo" file.
func (h *CardHandler) GenerateImage(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Request body too large")
			return
		}
		h.BadRequest(c, shared.CodeValidationRequired, "Missing meta information")
		return
	}

	rawMeta := strings.TrimSpace(firstValue(form.Value[formFieldMeta]))
	if rawMeta == "" {
		h.BadRequest(c, shared.CodeValidationRequired, "Missing meta information")
		return
	}
	var meta cardapp.ImageMeta
	if err := json.Unmarshal([]byte(rawMeta), &meta); err != nil {
		h.BadRequest(c, shared.CodeInvalidInput, "Invalid meta JSON")
		return
	}

	var photo *cardapp.PhotoUpload
	if files := form.File[formFieldPhoto]; len(files) > 0 {
		photo, err = h.readPhoto(files[0])
		if err != nil {
			h.HandleError(c, err)
			return
		}
	}

	result, err := h.generationService.GenerateImage(c.Request.Context(), meta, photo)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ImageResponse{ImagePngBase64: result.ImagePngBase64, Mode: result.Mode})
}

// readPhoto checks the declared size and type before reading the upload.
// A part without a content type is sniffed.
func (h *CardHandler) readPhoto(fh *multipart.FileHeader) (*cardapp.PhotoUpload, error) {
	contentType := fh.Header.Get("Content-Type")
	if contentType != "" {
		if err := h.generationService.ValidatePhoto(cardapp.PhotoUpload{
			ContentType: contentType,
			Size:        fh.Size,
		}); err != nil {
			return nil, err
		}
	}

	f, err := fh.Open()
	if err != nil {
		return nil, shared.ErrInvalidInput.WithDetails("Unreadable photo upload").WithCause(err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, shared.ErrInvalidInput.WithDetails("Unreadable photo upload").WithCause(err)
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	photo := &cardapp.PhotoUpload{ContentType: contentType, Size: fh.Size, Bytes: data}
	if err := h.generationService.ValidatePhoto(*photo); err != nil {
		return nil, err
	}
	return photo, nil
}

func firstValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
