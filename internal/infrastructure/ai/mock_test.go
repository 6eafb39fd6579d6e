package ai

import (
	"context"
	"testing"

	"github.com/greetingsmith/backend/internal/domain/card"
	"github.com/greetingsmith/backend/internal/domain/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockGenerator_GenerateText(t *testing.T) {
	g := NewMockGenerator(nil)

	t.Run("birthday for Sam", func(t *testing.T) {
		candidates, err := g.GenerateText(context.Background(), generation.TextRequest{
			Occasion:      "Birthday",
			RecipientName: "Sam",
			Style:         card.StyleCartoonish,
		})
		require.NoError(t, err)
		require.Len(t, candidates, 1)
		assert.Contains(t, candidates[0].Headline, "Sam")
		assert.Equal(t, "Happy Birthday, Sam!", candidates[0].Headline)
		assert.Equal(t, "May your day be filled with happiness and your year with lots of fun and giggles!", candidates[0].Line)
	})

	t.Run("unknown occasion", func(t *testing.T) {
		candidates, err := g.GenerateText(context.Background(), generation.TextRequest{
			Occasion:      "Housewarming",
			RecipientName: "Lee",
			Style:         card.StyleOldDays,
		})
		require.NoError(t, err)
		assert.Equal(t, "Happy Housewarming, Lee!", candidates[0].Headline)
		assert.Equal(t, "Wishing you cherished moments and celebration on this special occasion.", candidates[0].Line)
	})

	t.Run("case-insensitive occasion", func(t *testing.T) {
		candidates, err := g.GenerateText(context.Background(), generation.TextRequest{
			Occasion:      "GET WELL",
			RecipientName: "Kim",
			Style:         card.StyleFuturistic,
		})
		require.NoError(t, err)
		assert.Equal(t, "Get Well Soon, Kim!", candidates[0].Headline)
	})
}

func TestMockGenerator_GenerateImage(t *testing.T) {
	g := NewMockGenerator(nil)

	t.Run("no photo is t2i", func(t *testing.T) {
		res, err := g.GenerateImage(context.Background(), generation.ImageRequest{
			Style:    card.StyleCartoonish,
			Occasion: "Birthday",
		})
		require.NoError(t, err)
		assert.Equal(t, generation.ModeT2I, res.Mode)
		img := decodeResult(t, res.ImagePngBase64)
		assert.Equal(t, 1024, img.Bounds().Dx())
		assert.Equal(t, 768, img.Bounds().Dy())
	})

	t.Run("photo is composited", func(t *testing.T) {
		res, err := g.GenerateImage(context.Background(), generation.ImageRequest{
			Style:      card.StyleOldDays,
			Occasion:   "Anniversary",
			Photo:      &generation.Photo{Bytes: solidJPEG(t, 20, 30, colorBlue), MIME: "image/jpeg"},
			OutputSize: generation.Size{Width: 200, Height: 150},
		})
		require.NoError(t, err)
		assert.Equal(t, generation.ModeComposeFallback, res.Mode)
		img := decodeResult(t, res.ImagePngBase64)
		assert.Equal(t, 200, img.Bounds().Dx())
	})
}
