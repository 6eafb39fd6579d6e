package card

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/greetingsmith/backend/internal/domain/card"
	"github.com/greetingsmith/backend/internal/domain/generation"
	"github.com/greetingsmith/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const (
	defaultLanguage = "en"
	minOutputSide   = 64
	maxOutputSide   = 2048
	defaultMaxMB    = 10
)

// Recorder receives card business events. telemetry.CardMetrics implements it.
type Recorder interface {
	RecordTextGenerated(ctx context.Context, style, provider string)
	RecordImageGenerated(ctx context.Context, mode string)
	RecordContentRejected(ctx context.Context, operation string)
	RecordPDFExported(ctx context.Context, paperSize, engine string)
	RecordDuration(ctx context.Context, operation string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordTextGenerated(context.Context, string, string)   {}
func (nopRecorder) RecordImageGenerated(context.Context, string)          {}
func (nopRecorder) RecordContentRejected(context.Context, string)         {}
func (nopRecorder) RecordPDFExported(context.Context, string, string)     {}
func (nopRecorder) RecordDuration(context.Context, string, time.Duration) {}

// UploadPolicy bounds user photo uploads.
type UploadPolicy struct {
	MaxSizeMB      int
	AllowedFormats []string // jpeg, jpg, png, webp
}

func (p UploadPolicy) maxBytes() int64 {
	return int64(p.MaxSizeMB) << 20
}

func (p UploadPolicy) allows(contentType string) bool {
	format := strings.TrimPrefix(strings.ToLower(contentType), "image/")
	for _, allowed := range p.AllowedFormats {
		if strings.EqualFold(allowed, format) {
			return true
		}
	}
	return false
}

// GenerationService validates card generation requests and delegates them to
// the configured generator.
type GenerationService struct {
	generator      generation.Generator
	upload         UploadPolicy
	requestTimeout time.Duration
	metrics        Recorder
	logger         *zap.Logger
}

// GenerationServiceConfig contains configuration for GenerationService
type GenerationServiceConfig struct {
	Generator      generation.Generator
	Upload         UploadPolicy
	RequestTimeout time.Duration
	Metrics        Recorder
	Logger         *zap.Logger
}

// NewGenerationService creates a new GenerationService
func NewGenerationService(cfg GenerationServiceConfig) *GenerationService {
	s := &GenerationService{
		generator:      cfg.Generator,
		upload:         cfg.Upload,
		requestTimeout: cfg.RequestTimeout,
		metrics:        cfg.Metrics,
		logger:         cfg.Logger,
	}
	if s.metrics == nil {
		s.metrics = nopRecorder{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.upload.MaxSizeMB <= 0 {
		s.upload.MaxSizeMB = defaultMaxMB
	}
	if len(s.upload.AllowedFormats) == 0 {
		s.upload.AllowedFormats = []string{"jpeg", "jpg", "png", "webp"}
	}
	return s
}

// GeneratorName reports which backend serves requests.
func (s *GenerationService) GeneratorName() string {
	return s.generator.Name()
}

// TextInput is a copy generation request as received from the client.
// Empty optional fields take their defaults.
type TextInput struct {
	Occasion      string
	RecipientName string
	Style         string
	Tone          string
	ExtraContext  string
	Language      string
	MaxChars      int
}

func (in TextInput) toRequest() (generation.TextRequest, error) {
	req := generation.TextRequest{
		Occasion:      strings.TrimSpace(in.Occasion),
		RecipientName: strings.TrimSpace(in.RecipientName),
		Style:         card.StyleCartoonish,
		Tone:          card.ToneWarm,
		ExtraContext:  strings.TrimSpace(in.ExtraContext),
		Language:      strings.TrimSpace(in.Language),
		MaxChars:      in.MaxChars,
	}
	if req.Occasion == "" || req.RecipientName == "" {
		return req, ErrMissingTextFields
	}
	if in.Style != "" {
		style, err := card.ParseStyle(in.Style)
		if err != nil {
			return req, err
		}
		req.Style = style
	}
	if in.Tone != "" {
		tone, err := card.ParseTone(in.Tone)
		if err != nil {
			return req, err
		}
		req.Tone = tone
	}
	if req.Language == "" {
		req.Language = defaultLanguage
	}
	if req.MaxChars <= 0 {
		req.MaxChars = card.DefaultMaxChars
	}
	return req, nil
}

// GenerateText returns headline/line candidates trimmed to the character budget.
func (s *GenerationService) GenerateText(ctx context.Context, in TextInput) ([]card.Candidate, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "card_generation", "text")
	defer span.End()

	req, err := in.toRequest()
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrStyle, string(req.Style),
		telemetry.SpanAttrTone, string(req.Tone),
		telemetry.SpanAttrProvider, s.generator.Name(),
	)

	if word, hit := card.TextDenylist.Match(req.Occasion, req.RecipientName, req.ExtraContext); hit {
		s.logger.Info("Text request rejected by moderation", zap.String("match", word))
		s.metrics.RecordContentRejected(ctx, "text")
		return nil, card.ErrContentRejected
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	s.logger.Debug("Generating card text",
		zap.String("provider", s.generator.Name()),
		zap.String("style", string(req.Style)),
		zap.String("tone", string(req.Tone)),
		zap.String("language", req.Language))

	candidates, err := s.generator.GenerateText(ctx, req)
	s.metrics.RecordDuration(ctx, "text", time.Since(start))
	if err != nil {
		s.logger.Error("Text generation failed", zap.Error(err))
		telemetry.RecordError(span, err)
		return nil, ErrTextGeneration.WithCause(err)
	}
	if len(candidates) == 0 || candidates[0].Headline == "" || candidates[0].Line == "" {
		telemetry.RecordError(span, ErrTextGeneration)
		return nil, ErrTextGeneration.WithDetails("No text generated")
	}

	for i := range candidates {
		candidates[i] = candidates[i].Fit(req.MaxChars)
	}

	s.metrics.RecordTextGenerated(ctx, string(req.Style), s.generator.Name())
	s.logger.Info("Card text generated", zap.Int("candidates", len(candidates)))
	return candidates, nil
}

// OutputSize is the requested image size in pixels; zero fields take defaults.
type OutputSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

// ImageMeta is the JSON "meta" part of an image request.
type ImageMeta struct {
	Style            string      `json:"style"`
	Occasion         string      `json:"occasion"`
	PreferredPalette []string    `json:"preferredPalette,omitempty"`
	IncludeTextArea  *bool       `json:"includeTextArea,omitempty"`
	OutputSize       *OutputSize `json:"outputSize,omitempty"`
}

// PhotoUpload is an uploaded photo with its declared content type.
type PhotoUpload struct {
	ContentType string
	Size        int64
	Bytes       []byte
}

func clampSide(v, fallback int) int {
	if v <= 0 {
		v = fallback
	}
	if v < minOutputSide {
		return minOutputSide
	}
	if v > maxOutputSide {
		return maxOutputSide
	}
	return v
}

func (m ImageMeta) toRequest() (generation.ImageRequest, error) {
	req := generation.ImageRequest{
		Style:            card.StyleCartoonish,
		Occasion:         strings.TrimSpace(m.Occasion),
		PreferredPalette: m.PreferredPalette,
		IncludeTextArea:  m.IncludeTextArea == nil || *m.IncludeTextArea,
		OutputSize:       generation.DefaultOutputSize,
	}
	if req.Occasion == "" {
		return req, ErrMissingOccasion
	}
	if m.Style != "" {
		style, err := card.ParseStyle(m.Style)
		if err != nil {
			return req, err
		}
		req.Style = style
	}
	if m.OutputSize != nil {
		req.OutputSize = generation.Size{
			Width:  clampSide(m.OutputSize.W, generation.DefaultOutputSize.Width),
			Height: clampSide(m.OutputSize.H, generation.DefaultOutputSize.Height),
		}
	}
	return req, nil
}

// ValidatePhoto checks an upload against the size limit and the allowed formats.
func (s *GenerationService) ValidatePhoto(p PhotoUpload) error {
	if p.Size > s.upload.maxBytes() || int64(len(p.Bytes)) > s.upload.maxBytes() {
		return ErrFileTooLarge(s.upload.MaxSizeMB)
	}
	if !strings.HasPrefix(strings.ToLower(p.ContentType), "image/") {
		return ErrInvalidFileType
	}
	if !s.upload.allows(p.ContentType) {
		return ErrUnsupportedImage
	}
	return nil
}

// GenerateImage returns a base64 PNG background. photo may be nil.
func (s *GenerationService) GenerateImage(ctx context.Context, meta ImageMeta, photo *PhotoUpload) (*generation.ImageResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "card_generation", "image")
	defer span.End()

	req, err := meta.toRequest()
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if photo != nil {
		if err := s.ValidatePhoto(*photo); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		req.Photo = &generation.Photo{Bytes: photo.Bytes, MIME: strings.ToLower(photo.ContentType)}
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrStyle, string(req.Style),
		telemetry.SpanAttrProvider, s.generator.Name(),
		"image.has_photo", req.Photo != nil,
	)

	if word, hit := card.ImageDenylist.Match(req.Occasion); hit {
		s.logger.Info("Image request rejected by moderation", zap.String("match", word))
		s.metrics.RecordContentRejected(ctx, "image")
		return nil, card.ErrContentRejected
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	s.logger.Debug("Generating card image",
		zap.String("provider", s.generator.Name()),
		zap.String("style", string(req.Style)),
		zap.Int("width", req.OutputSize.Width),
		zap.Int("height", req.OutputSize.Height),
		zap.Bool("photo", req.Photo != nil))

	result, err := s.generator.GenerateImage(ctx, req)
	s.metrics.RecordDuration(ctx, "image", time.Since(start))
	if err != nil {
		s.logger.Error("Image generation failed", zap.Error(err))
		telemetry.RecordError(span, err)
		return nil, ErrImageGeneration.WithCause(err)
	}
	if result == nil || !isBase64(result.ImagePngBase64) {
		telemetry.RecordError(span, ErrImageGeneration)
		return nil, ErrImageGeneration.WithDetails("Invalid base64 image format")
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrMode, string(result.Mode))
	s.metrics.RecordImageGenerated(ctx, string(result.Mode))
	s.logger.Info("Card image generated", zap.String("mode", string(result.Mode)))
	return result, nil
}

func isBase64(s string) bool {
	if s == "" {
		return false
	}
	_, err := base64.StdEncoding.DecodeString(s)
	return err == nil
}

func (s *GenerationService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.requestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.requestTimeout)
}
