package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	cardapp "github.com/greetingsmith/backend/internal/application/card"
	"github.com/greetingsmith/backend/internal/interfaces/http/dto"
	"github.com/greetingsmith/backend/internal/interfaces/http/middleware"
)

// ExportHandler serves unlocked PDF downloads
type ExportHandler struct {
	BaseHandler
	exportService *cardapp.ExportService
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(exportService *cardapp.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// ExportPDF handles POST /api/export-pdf and streams the document as an attachment.
func (h *ExportHandler) ExportPDF(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.exportService.Export(c.Request.Context(), cardapp.ExportInput{
		UnlockToken: req.UnlockToken,
		Card:        req.Card,
		Size:        req.Size,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, result.Filename))
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.Data(http.StatusOK, "application/pdf", result.PDF)
}
