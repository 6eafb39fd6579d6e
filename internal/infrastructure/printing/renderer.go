package printing

import (
	"context"
	"fmt"
	"strings"

	"github.com/greetingsmith/backend/internal/domain/card"
	"github.com/greetingsmith/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Engine names accepted by pdf.engine
const (
	EngineFpdf     = "fpdf"
	EngineChromium = "chromium"
)

// CardRenderer renders a card to a single-page PDF
type CardRenderer interface {
	// Name identifies the engine
	Name() string
	// Render returns the PDF bytes or a *BuildError
	Render(ctx context.Context, c card.Card, size card.PaperSize) ([]byte, error)
	// Close releases any resources held by the renderer
	Close() error
}

// BuildError reports a failed PDF build
type BuildError struct {
	Engine string
	Cause  error
}

func (e *BuildError) Error() string {
	if e.Cause != nil {
		return "Failed to generate PDF: " + e.Cause.Error()
	}
	return "Failed to generate PDF"
}

func (e *BuildError) Unwrap() error {
	return e.Cause
}

// NewBuildError creates a new BuildError
func NewBuildError(engine string, cause error) *BuildError {
	return &BuildError{Engine: engine, Cause: cause}
}

// NewRenderer builds the engine selected in cfg
func NewRenderer(cfg config.PDFConfig, logger *zap.Logger) (CardRenderer, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Engine)) {
	case "", EngineFpdf:
		return NewFpdfRenderer(logger), nil
	case EngineChromium:
		return NewChromiumRenderer(&ChromiumConfig{
			RemoteURL:      cfg.ChromeRemoteURL,
			DefaultTimeout: cfg.ChromeTimeout,
			NoSandbox:      cfg.ChromeNoSandbox,
			Logger:         logger,
		})
	default:
		return nil, fmt.Errorf("unknown pdf engine %q", cfg.Engine)
	}
}
