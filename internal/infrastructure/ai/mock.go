package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/greetingsmith/backend/internal/domain/card"
	"github.com/greetingsmith/backend/internal/domain/generation"
	"go.uber.org/zap"
)

// ProviderMock names the offline generator
const ProviderMock = "mock"

var mockCopy = map[string]struct{ headline, line string }{
	"birthday":    {"Happy Birthday, %s!", "May your day be filled with happiness and your year with joy!"},
	"graduation":  {"Congratulations, %s!", "Your hard work has paid off. Here's to your bright future ahead!"},
	"anniversary": {"Happy Anniversary, %s!", "Celebrating another year of love, laughter, and beautiful memories."},
	"wedding":     {"Congratulations, %s!", "Wishing you a lifetime of love, happiness, and wonderful adventures together."},
	"get well":    {"Get Well Soon, %s!", "Sending you healing thoughts and warm wishes for a speedy recovery."},
}

var mockJoyWords = map[card.Style]string{
	card.StyleCartoonish: "lots of fun and giggles",
	card.StyleFuturistic: "stellar moments",
	card.StyleOldDays:    "cherished moments",
}

// MockGenerator returns deterministic copy and locally drawn artwork. It
// needs no credentials and never calls out.
type MockGenerator struct {
	logger *zap.Logger
}

var _ generation.Generator = (*MockGenerator)(nil)

// NewMockGenerator creates a new MockGenerator
func NewMockGenerator(logger *zap.Logger) *MockGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MockGenerator{logger: logger}
}

// Name returns the provider name
func (g *MockGenerator) Name() string { return ProviderMock }

// GenerateText returns canned copy for the occasion, worded for the style.
func (g *MockGenerator) GenerateText(ctx context.Context, req generation.TextRequest) ([]card.Candidate, error) {
	var c card.Candidate
	if tpl, ok := mockCopy[strings.ToLower(strings.TrimSpace(req.Occasion))]; ok {
		c = card.Candidate{Headline: fmt.Sprintf(tpl.headline, req.RecipientName), Line: tpl.line}
	} else {
		c = card.Candidate{
			Headline: fmt.Sprintf("Happy %s, %s!", req.Occasion, req.RecipientName),
			Line:     "Wishing you joy and celebration on this special occasion.",
		}
	}
	if word, ok := mockJoyWords[req.Style]; ok {
		c.Line = strings.Replace(c.Line, "joy", word, 1)
	}
	return []card.Candidate{c}, nil
}

// GenerateImage draws the placeholder artwork. With a photo the result is
// compose_fallback, otherwise t2i.
func (g *MockGenerator) GenerateImage(ctx context.Context, req generation.ImageRequest) (*generation.ImageResult, error) {
	req = withDefaultSize(req)
	mode := generation.ModeT2I
	if req.Photo != nil {
		mode = generation.ModeComposeFallback
	}
	return placeholderImage(req, mode, g.logger)
}
