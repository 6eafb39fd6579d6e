package card

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/greetingsmith/backend/internal/domain/card"
	"github.com/greetingsmith/backend/internal/domain/generation"
	"github.com/greetingsmith/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestGenerationService(gen *MockGenerator, metrics Recorder) *GenerationService {
	return NewGenerationService(GenerationServiceConfig{
		Generator:      gen,
		Upload:         UploadPolicy{MaxSizeMB: 10, AllowedFormats: []string{"jpeg", "jpg", "png", "webp"}},
		RequestTimeout: 5 * time.Second,
		Metrics:        metrics,
	})
}

func TestGenerationService_GenerateText(t *testing.T) {
	ctx := context.Background()

	t.Run("applies defaults", func(t *testing.T) {
		gen := new(MockGenerator)
		metrics := &recordingMetrics{}
		gen.On("GenerateText", mock.Anything, generation.TextRequest{
			Occasion:      "Birthday",
			RecipientName: "Sam",
			Style:         card.StyleCartoonish,
			Tone:          card.ToneWarm,
			Language:      "en",
			MaxChars:      220,
		}).Return([]card.Candidate{{Headline: "Happy Birthday, Sam!", Line: "Have a great day."}}, nil)

		svc := newTestGenerationService(gen, metrics)
		candidates, err := svc.GenerateText(ctx, TextInput{Occasion: " Birthday ", RecipientName: "Sam"})

		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Equal(t, "Happy Birthday, Sam!", candidates[0].Headline)
		assert.Equal(t, []string{"cartoonish/mock-generator"}, metrics.texts)
		assert.Equal(t, []string{"text"}, metrics.durations)
		gen.AssertExpectations(t)
	})

	t.Run("passes explicit options", func(t *testing.T) {
		gen := new(MockGenerator)
		gen.On("GenerateText", mock.Anything, mock.MatchedBy(func(req generation.TextRequest) bool {
			return req.Style == card.StyleOldDays && req.Tone == card.ToneFormal &&
				req.Language == "da" && req.MaxChars == 120 && req.ExtraContext == "loves sailing"
		})).Return([]card.Candidate{{Headline: "h", Line: "l"}}, nil)

		svc := newTestGenerationService(gen, nil)
		_, err := svc.GenerateText(ctx, TextInput{
			Occasion: "Retirement", RecipientName: "Ole", Style: "old_days", Tone: "formal",
			Language: "da", MaxChars: 120, ExtraContext: "loves sailing",
		})

		require.NoError(t, err)
		gen.AssertExpectations(t)
	})

	t.Run("bounds the generator call with the request timeout", func(t *testing.T) {
		gen := new(MockGenerator)
		gen.On("GenerateText", mock.MatchedBy(func(c context.Context) bool {
			_, ok := c.Deadline()
			return ok
		}), mock.Anything).Return([]card.Candidate{{Headline: "h", Line: "l"}}, nil)

		_, err := newTestGenerationService(gen, nil).GenerateText(ctx, TextInput{Occasion: "x", RecipientName: "y"})
		require.NoError(t, err)
		gen.AssertExpectations(t)
	})

	t.Run("trims oversized candidates", func(t *testing.T) {
		gen := new(MockGenerator)
		gen.On("GenerateText", mock.Anything, mock.Anything).Return([]card.Candidate{{
			Headline: strings.Repeat("h", 100),
			Line:     strings.Repeat("l", 200),
		}}, nil)

		candidates, err := newTestGenerationService(gen, nil).GenerateText(ctx, TextInput{
			Occasion: "Birthday", RecipientName: "Sam", MaxChars: 100,
		})

		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("h", 37)+"...", candidates[0].Headline)
		assert.Equal(t, strings.Repeat("l", 57)+"...", candidates[0].Line)
	})

	validationTests := []struct {
		name string
		in   TextInput
		want error
	}{
		{"missing occasion", TextInput{RecipientName: "Sam"}, ErrMissingTextFields},
		{"missing recipient", TextInput{Occasion: "Birthday", RecipientName: "  "}, ErrMissingTextFields},
		{"invalid style", TextInput{Occasion: "Birthday", RecipientName: "Sam", Style: "baroque"}, card.ErrInvalidStyle},
		{"invalid tone", TextInput{Occasion: "Birthday", RecipientName: "Sam", Tone: "angry"}, card.ErrInvalidTone},
		{"denylisted context", TextInput{Occasion: "Birthday", RecipientName: "Sam", ExtraContext: "Kill the lights"}, card.ErrContentRejected},
		{"denylisted occasion", TextInput{Occasion: "Hate mail", RecipientName: "Sam"}, card.ErrContentRejected},
	}
	for _, tt := range validationTests {
		t.Run(tt.name, func(t *testing.T) {
			gen := new(MockGenerator)
			_, err := newTestGenerationService(gen, nil).GenerateText(ctx, tt.in)

			assert.ErrorIs(t, err, tt.want)
			gen.AssertNotCalled(t, "GenerateText", mock.Anything, mock.Anything)
		})
	}

	t.Run("moderation hit is counted", func(t *testing.T) {
		metrics := &recordingMetrics{}
		_, err := newTestGenerationService(new(MockGenerator), metrics).GenerateText(ctx, TextInput{
			Occasion: "Birthday", RecipientName: "Sam", ExtraContext: "violence",
		})
		assert.ErrorIs(t, err, card.ErrContentRejected)
		assert.Equal(t, []string{"text"}, metrics.rejected)
	})

	t.Run("generator failure", func(t *testing.T) {
		cause := errors.New("backend down")
		gen := new(MockGenerator)
		gen.On("GenerateText", mock.Anything, mock.Anything).Return(nil, cause)

		_, err := newTestGenerationService(gen, nil).GenerateText(ctx, TextInput{Occasion: "x", RecipientName: "y"})

		assert.ErrorIs(t, err, ErrTextGeneration)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("empty result", func(t *testing.T) {
		gen := new(MockGenerator)
		gen.On("GenerateText", mock.Anything, mock.Anything).Return([]card.Candidate{}, nil)

		_, err := newTestGenerationService(gen, nil).GenerateText(ctx, TextInput{Occasion: "x", RecipientName: "y"})
		assert.ErrorIs(t, err, ErrTextGeneration)
	})
}

const onePixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg=="

func boolPtr(b bool) *bool { return &b }

func TestGenerationService_GenerateImage(t *testing.T) {
	ctx := context.Background()

	t.Run("applies defaults", func(t *testing.T) {
		gen := new(MockGenerator)
		metrics := &recordingMetrics{}
		gen.On("GenerateImage", mock.Anything, generation.ImageRequest{
			Style:           card.StyleCartoonish,
			Occasion:        "Birthday",
			IncludeTextArea: true,
			OutputSize:      generation.Size{Width: 1024, Height: 768},
		}).Return(&generation.ImageResult{ImagePngBase64: onePixelPNG, Mode: generation.ModeT2I}, nil)

		result, err := newTestGenerationService(gen, metrics).GenerateImage(ctx, ImageMeta{Occasion: "Birthday"}, nil)

		require.NoError(t, err)
		assert.Equal(t, generation.ModeT2I, result.Mode)
		assert.Equal(t, []string{"t2i"}, metrics.images)
		gen.AssertExpectations(t)
	})

	t.Run("clamps output size and honors options", func(t *testing.T) {
		gen := new(MockGenerator)
		gen.On("GenerateImage", mock.Anything, mock.MatchedBy(func(req generation.ImageRequest) bool {
			return req.OutputSize == generation.Size{Width: 64, Height: 2048} &&
				!req.IncludeTextArea && req.Style == card.StyleFuturistic &&
				len(req.PreferredPalette) == 1
		})).Return(&generation.ImageResult{ImagePngBase64: onePixelPNG, Mode: generation.ModeT2I}, nil)

		_, err := newTestGenerationService(gen, nil).GenerateImage(ctx, ImageMeta{
			Style:            "futuristic",
			Occasion:         "Launch",
			PreferredPalette: []string{"#112233"},
			IncludeTextArea:  boolPtr(false),
			OutputSize:       &OutputSize{W: 10, H: 5000},
		}, nil)

		require.NoError(t, err)
		gen.AssertExpectations(t)
	})

	t.Run("missing dimension falls back to the default", func(t *testing.T) {
		gen := new(MockGenerator)
		gen.On("GenerateImage", mock.Anything, mock.MatchedBy(func(req generation.ImageRequest) bool {
			return req.OutputSize == generation.Size{Width: 800, Height: 768}
		})).Return(&generation.ImageResult{ImagePngBase64: onePixelPNG, Mode: generation.ModeT2I}, nil)

		_, err := newTestGenerationService(gen, nil).GenerateImage(ctx, ImageMeta{
			Occasion: "Launch", OutputSize: &OutputSize{W: 800},
		}, nil)
		require.NoError(t, err)
		gen.AssertExpectations(t)
	})

	t.Run("forwards the photo", func(t *testing.T) {
		gen := new(MockGenerator)
		gen.On("GenerateImage", mock.Anything, mock.MatchedBy(func(req generation.ImageRequest) bool {
			return req.Photo != nil && req.Photo.MIME == "image/png" && string(req.Photo.Bytes) == "png-bytes"
		})).Return(&generation.ImageResult{ImagePngBase64: onePixelPNG, Mode: generation.ModeI2I}, nil)

		result, err := newTestGenerationService(gen, nil).GenerateImage(ctx, ImageMeta{Occasion: "Birthday"},
			&PhotoUpload{ContentType: "image/PNG", Size: 9, Bytes: []byte("png-bytes")})

		require.NoError(t, err)
		assert.Equal(t, generation.ModeI2I, result.Mode)
	})

	t.Run("photo larger than the limit", func(t *testing.T) {
		gen := new(MockGenerator)
		_, err := newTestGenerationService(gen, nil).GenerateImage(ctx, ImageMeta{Occasion: "Birthday"},
			&PhotoUpload{ContentType: "image/jpeg", Size: 15 << 20})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, shared.CodeFileTooLarge, domainErr.Code)
		assert.Equal(t, "File size too large. Maximum 10MB allowed", domainErr.Message)
		gen.AssertNotCalled(t, "GenerateImage", mock.Anything, mock.Anything)
	})

	validationTests := []struct {
		name  string
		meta  ImageMeta
		photo *PhotoUpload
		want  error
	}{
		{"missing occasion", ImageMeta{Style: "cartoonish"}, nil, ErrMissingOccasion},
		{"invalid style", ImageMeta{Occasion: "Birthday", Style: "cubist"}, nil, card.ErrInvalidStyle},
		{"not an image", ImageMeta{Occasion: "Birthday"}, &PhotoUpload{ContentType: "application/pdf", Size: 10}, ErrInvalidFileType},
		{"unsupported image", ImageMeta{Occasion: "Birthday"}, &PhotoUpload{ContentType: "image/gif", Size: 10}, ErrUnsupportedImage},
		{"denylisted occasion", ImageMeta{Occasion: "Weapon show"}, nil, card.ErrContentRejected},
	}
	for _, tt := range validationTests {
		t.Run(tt.name, func(t *testing.T) {
			gen := new(MockGenerator)
			_, err := newTestGenerationService(gen, nil).GenerateImage(ctx, tt.meta, tt.photo)

			assert.ErrorIs(t, err, tt.want)
			gen.AssertNotCalled(t, "GenerateImage", mock.Anything, mock.Anything)
		})
	}

	t.Run("text denylist words outside the image list are allowed", func(t *testing.T) {
		gen := new(MockGenerator)
		gen.On("GenerateImage", mock.Anything, mock.Anything).
			Return(&generation.ImageResult{ImagePngBase64: onePixelPNG, Mode: generation.ModeT2I}, nil)

		_, err := newTestGenerationService(gen, nil).GenerateImage(ctx, ImageMeta{Occasion: "Harmony day"}, nil)
		assert.NoError(t, err)
	})

	t.Run("generator failure", func(t *testing.T) {
		gen := new(MockGenerator)
		gen.On("GenerateImage", mock.Anything, mock.Anything).Return(nil, errors.New("encode failed"))

		_, err := newTestGenerationService(gen, nil).GenerateImage(ctx, ImageMeta{Occasion: "Birthday"}, nil)
		assert.ErrorIs(t, err, ErrImageGeneration)
	})

	t.Run("malformed image payload", func(t *testing.T) {
		gen := new(MockGenerator)
		gen.On("GenerateImage", mock.Anything, mock.Anything).
			Return(&generation.ImageResult{ImagePngBase64: "not base64!", Mode: generation.ModeT2I}, nil)

		_, err := newTestGenerationService(gen, nil).GenerateImage(ctx, ImageMeta{Occasion: "Birthday"}, nil)
		assert.ErrorIs(t, err, ErrImageGeneration)
	})
}

func TestGenerationService_ValidatePhoto(t *testing.T) {
	svc := NewGenerationService(GenerationServiceConfig{Generator: new(MockGenerator)})

	assert.NoError(t, svc.ValidatePhoto(PhotoUpload{ContentType: "image/webp", Size: 1 << 20}))
	assert.NoError(t, svc.ValidatePhoto(PhotoUpload{ContentType: "image/jpg", Size: 10 << 20}))
	assert.Error(t, svc.ValidatePhoto(PhotoUpload{ContentType: "image/jpeg", Size: 10<<20 + 1}))
	assert.Equal(t, "mock-generator", svc.GeneratorName())
}
