package card

import (
	"context"
	"sync"
	"time"

	"github.com/greetingsmith/backend/internal/domain/card"
	"github.com/greetingsmith/backend/internal/domain/generation"
	"github.com/stretchr/testify/mock"
)

// MockGenerator is a mock implementation of generation.Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Name() string {
	return "mock-generator"
}

func (m *MockGenerator) GenerateText(ctx context.Context, req generation.TextRequest) ([]card.Candidate, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]card.Candidate), args.Error(1)
}

func (m *MockGenerator) GenerateImage(ctx context.Context, req generation.ImageRequest) (*generation.ImageResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*generation.ImageResult), args.Error(1)
}

// MockRenderer is a mock implementation of Renderer
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Name() string {
	return "fpdf"
}

func (m *MockRenderer) Render(ctx context.Context, c card.Card, size card.PaperSize) ([]byte, error) {
	args := m.Called(ctx, c, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// recordingMetrics captures recorded events
type recordingMetrics struct {
	mu        sync.Mutex
	texts     []string
	images    []string
	rejected  []string
	exports   []string
	durations []string
}

func (r *recordingMetrics) RecordTextGenerated(_ context.Context, style, provider string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, style+"/"+provider)
}

func (r *recordingMetrics) RecordImageGenerated(_ context.Context, mode string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images = append(r.images, mode)
}

func (r *recordingMetrics) RecordContentRejected(_ context.Context, operation string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected = append(r.rejected, operation)
}

func (r *recordingMetrics) RecordPDFExported(_ context.Context, paperSize, engine string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exports = append(r.exports, paperSize+"/"+engine)
}

func (r *recordingMetrics) RecordDuration(_ context.Context, operation string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.durations = append(r.durations, operation)
}
