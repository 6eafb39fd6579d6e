// Package ai implements card copy and artwork generation: a Gemini API
// client and an offline mock, chosen once at startup.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/greetingsmith/backend/internal/domain/generation"
	"github.com/greetingsmith/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// placeholderAPIKey ships in example env files and counts as unset
const placeholderAPIKey = "your_gemini_api_key_here"

func hasAPIKey(key string) bool {
	key = strings.TrimSpace(key)
	return key != "" && key != placeholderAPIKey
}

// NewGenerator resolves the generator for the process lifetime.
//
//	mock   -> MockGenerator
//	gemini -> GeminiGenerator, error without an API key
//	auto   -> Gemini when an API key is set, otherwise the mock
func NewGenerator(ctx context.Context, cfg config.AIConfig, logger *zap.Logger) (generation.Generator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))

	switch provider {
	case ProviderMock:
		logger.Info("Using mock generator")
		return NewMockGenerator(logger), nil
	case ProviderGemini:
		if !hasAPIKey(cfg.APIKey) {
			return nil, fmt.Errorf("ai provider %q requires an API key", ProviderGemini)
		}
		return NewGeminiGenerator(ctx, cfg, logger)
	case "", "auto":
		if !hasAPIKey(cfg.APIKey) {
			logger.Info("Using mock generator (no API key provided)")
			return NewMockGenerator(logger), nil
		}
		g, err := NewGeminiGenerator(ctx, cfg, logger)
		if err != nil {
			logger.Warn("Failed to initialize Gemini client, falling back to mock", zap.Error(err))
			return NewMockGenerator(logger), nil
		}
		logger.Info("Using Gemini generator",
			zap.String("text_model", cfg.TextModel),
			zap.String("image_model", cfg.ImageModel))
		return g, nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}
