package card

import (
	"context"
	"errors"
	"time"

	"github.com/greetingsmith/backend/internal/domain/card"
	"github.com/greetingsmith/backend/internal/infrastructure/auth"
	"github.com/greetingsmith/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// TokenVerifier checks unlock tokens. auth.UnlockTokenService implements it.
type TokenVerifier interface {
	Verify(token string) (*auth.UnlockClaims, error)
}

// Renderer turns a card into a single-page PDF. printing.CardRenderer implements it.
type Renderer interface {
	Name() string
	Render(ctx context.Context, c card.Card, size card.PaperSize) ([]byte, error)
}

// ExportService gates PDF export behind a valid unlock token.
type ExportService struct {
	verifier TokenVerifier
	renderer Renderer
	product  string
	metrics  Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// ExportServiceConfig contains configuration for ExportService
type ExportServiceConfig struct {
	Verifier TokenVerifier
	Renderer Renderer
	Product  string
	Metrics  Recorder
	Logger   *zap.Logger
	Now      func() time.Time
}

// NewExportService creates a new ExportService
func NewExportService(cfg ExportServiceConfig) *ExportService {
	s := &ExportService{
		verifier: cfg.Verifier,
		renderer: cfg.Renderer,
		product:  cfg.Product,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
	if s.metrics == nil {
		s.metrics = nopRecorder{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// EngineName reports which PDF engine renders exports.
func (s *ExportService) EngineName() string {
	return s.renderer.Name()
}

// ExportInput is an export request. Card is nil when the client sent none.
type ExportInput struct {
	UnlockToken string
	Card        *card.Card
	Size        string
}

// ExportResult is a rendered document ready for download.
type ExportResult struct {
	PDF       []byte
	Filename  string
	PaperSize card.PaperSize
}

// Export verifies the unlock token, validates and screens the card, and renders it.
func (s *ExportService) Export(ctx context.Context, in ExportInput) (*ExportResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "pdf_export", "export")
	defer span.End()

	if in.UnlockToken == "" {
		return nil, ErrMissingToken
	}
	if in.Card == nil {
		return nil, card.ErrMissingCard
	}
	if err := s.checkToken(in.UnlockToken); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := in.Card.Validate(); err != nil {
		return nil, err
	}

	size := card.DefaultPaperSize
	if in.Size != "" {
		parsed, err := card.ParsePaperSize(in.Size)
		if err != nil {
			return nil, err
		}
		size = parsed
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrPaperSize, string(size),
		telemetry.SpanAttrEngine, s.renderer.Name(),
	)

	if word, hit := card.TextDenylist.Match(in.Card.Headline, in.Card.Line, in.Card.Occasion); hit {
		s.logger.Info("Export rejected by moderation", zap.String("match", word))
		s.metrics.RecordContentRejected(ctx, "export")
		return nil, card.ErrCardContentRejected
	}

	start := time.Now()
	s.logger.Debug("Rendering card PDF",
		zap.String("engine", s.renderer.Name()),
		zap.String("size", string(size)))

	pdf, err := s.renderer.Render(ctx, *in.Card, size)
	s.metrics.RecordDuration(ctx, "export", time.Since(start))
	if err != nil {
		s.logger.Error("PDF export failed", zap.String("engine", s.renderer.Name()), zap.Error(err))
		telemetry.RecordError(span, err)
		return nil, ErrExportFailed.WithDetails(err.Error()).WithCause(err)
	}

	s.metrics.RecordPDFExported(ctx, string(size), s.renderer.Name())
	s.logger.Info("Card PDF exported", zap.String("size", string(size)), zap.Int("bytes", len(pdf)))
	return &ExportResult{
		PDF:       pdf,
		Filename:  card.ExportFilename(*in.Card, s.now()),
		PaperSize: size,
	}, nil
}

func (s *ExportService) checkToken(token string) error {
	claims, err := s.verifier.Verify(token)
	if err != nil {
		s.logger.Info("Unlock token rejected", zap.Error(err))
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			return ErrExpiredToken.WithDetails(auth.ErrTokenExpired.Error())
		case errors.Is(err, auth.ErrTokenInvalid):
			return ErrInvalidToken.WithDetails(auth.ErrTokenInvalid.Error())
		default:
			return ErrInvalidToken.WithDetails(auth.ErrTokenVerification.Error())
		}
	}
	if claims.Product != s.product {
		s.logger.Warn("Unlock token issued for another product", zap.String("product", claims.Product))
		return ErrWrongProduct
	}
	return nil
}
