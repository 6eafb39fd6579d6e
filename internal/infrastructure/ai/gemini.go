package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/greetingsmith/backend/internal/domain/card"
	"github.com/greetingsmith/backend/internal/domain/generation"
	"github.com/greetingsmith/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// ProviderGemini names the Google Gemini generator
const ProviderGemini = "gemini"

const imageTemperature = 0.7

var errNoImagePart = errors.New("model returned no image part")

// modelAPI is the slice of genai.Models in use
type modelAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator generates copy and artwork with the Gemini API. Failures
// never reach the caller: text falls back through the extraction tiers and
// images fall back to the local placeholder.
type GeminiGenerator struct {
	models      modelAPI
	textModel   string
	imageModel  string
	temperature float32
	logger      *zap.Logger
}

var _ generation.Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator creates a Gemini API client
func NewGeminiGenerator(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: failed to create client: %w", err)
	}
	return newGeminiGenerator(client.Models, cfg, logger), nil
}

func newGeminiGenerator(models modelAPI, cfg config.AIConfig, logger *zap.Logger) *GeminiGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiGenerator{
		models:      models,
		textModel:   cfg.TextModel,
		imageModel:  cfg.ImageModel,
		temperature: float32(cfg.Temperature),
		logger:      logger,
	}
}

// Name returns the provider name
func (g *GeminiGenerator) Name() string { return ProviderGemini }

// GenerateText asks for one JSON headline/line pair
func (g *GeminiGenerator) GenerateText(ctx context.Context, req generation.TextRequest) ([]card.Candidate, error) {
	g.logger.Debug("Requesting card copy",
		zap.String("model", g.textModel),
		zap.String("occasion", req.Occasion))

	contents := []*genai.Content{genai.NewContentFromText(textUserPrompt(req), genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(textSystemPrompt(req.Language, req.MaxChars), genai.RoleUser),
		Temperature:       genai.Ptr(g.temperature),
		ResponseMIMEType:  "application/json",
	}

	resp, err := g.models.GenerateContent(ctx, g.textModel, contents, cfg)
	if err != nil {
		g.logger.Error("Text generation failed, using template copy", zap.Error(err))
		return []card.Candidate{templateCandidate(req.Occasion, req.RecipientName)}, nil
	}

	c, tier := extractCandidate(resp.Text(), req.Occasion, req.RecipientName)
	g.logger.Info("Card copy generated",
		zap.String("model", g.textModel),
		zap.Stringer("tier", tier))
	return []card.Candidate{c}, nil
}

// GenerateImage asks for a cover image, sending the user's photo along when
// there is one.
func (g *GeminiGenerator) GenerateImage(ctx context.Context, req generation.ImageRequest) (*generation.ImageResult, error) {
	req = withDefaultSize(req)

	mode := generation.ModeT2I
	parts := []*genai.Part{genai.NewPartFromText(imagePrompt(req))}
	if req.Photo != nil {
		mode = generation.ModeI2I
		parts = append(parts, genai.NewPartFromBytes(req.Photo.Bytes, req.Photo.MIME))
	}

	g.logger.Debug("Requesting card image",
		zap.String("model", g.imageModel),
		zap.String("mode", string(mode)))

	img, err := g.requestImage(ctx, parts)
	if err != nil {
		g.logger.Warn("Image generation failed, rendering placeholder", zap.Error(err))
		return placeholderImage(req, generation.ModeComposeFallback, g.logger)
	}

	encoded, err := encodePNGBase64(fitCover(img, req.OutputSize))
	if err != nil {
		return nil, err
	}

	g.logger.Info("Card image generated",
		zap.String("model", g.imageModel),
		zap.String("mode", string(mode)))
	return &generation.ImageResult{ImagePngBase64: encoded, Mode: mode}, nil
}

func (g *GeminiGenerator) requestImage(ctx context.Context, parts []*genai.Part) (image.Image, error) {
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	cfg := &genai.GenerateContentConfig{
		Temperature:        genai.Ptr[float32](imageTemperature),
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}

	resp, err := g.models.GenerateContent(ctx, g.imageModel, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate image: %w", err)
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.InlineData == nil || !strings.HasPrefix(part.InlineData.MIMEType, "image/") {
				continue
			}
			img, _, err := image.Decode(bytes.NewReader(part.InlineData.Data))
			if err != nil {
				return nil, fmt.Errorf("gemini: decode %s: %w", part.InlineData.MIMEType, err)
			}
			return img, nil
		}
	}
	return nil, errNoImagePart
}
