package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/greetingsmith/backend/internal/interfaces/http/dto"
)

// SystemHandler serves the health endpoint
type SystemHandler struct {
	BaseHandler
	service   string
	version   string
	generator func() string
	pdfEngine func() string
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. generator and pdfEngine
// report the active backends.
func NewSystemHandler(service, version string, generator, pdfEngine func() string) *SystemHandler {
	return &SystemHandler{
		service:   service,
		version:   version,
		generator: generator,
		pdfEngine: pdfEngine,
		startTime: time.Now(),
	}
}

// Health handles GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status:    "ok",
		Service:   h.service,
		Version:   h.version,
		Generator: nameOf(h.generator),
		PDFEngine: nameOf(h.pdfEngine),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

func nameOf(f func() string) string {
	if f == nil {
		return "none"
	}
	return f()
}
