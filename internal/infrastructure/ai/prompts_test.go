package ai

import (
	"testing"

	"github.com/greetingsmith/backend/internal/domain/card"
	"github.com/greetingsmith/backend/internal/domain/generation"
	"github.com/stretchr/testify/assert"
)

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "English", languageName(""))
	assert.Equal(t, "English", languageName("en"))
	assert.Equal(t, "Danish", languageName("da"))
	assert.Equal(t, "German", languageName("de"))
	assert.Equal(t, "not a tag!", languageName("not a tag!"))
}

func TestTextPrompts(t *testing.T) {
	system := textSystemPrompt("da", 120)
	assert.Contains(t, system, "Write in Danish")
	assert.Contains(t, system, "total length under 120 characters")
	assert.Contains(t, system, "Output JSON with keys: headline, line.")

	user := textUserPrompt(generation.TextRequest{
		Occasion:      "Graduation",
		RecipientName: "Ada",
		Style:         card.StyleOldDays,
		ExtraContext:  "finished her PhD",
	})
	assert.Contains(t, user, "Occasion: Graduation")
	assert.Contains(t, user, "Recipient: Ada")
	assert.Contains(t, user, "Tone: warm")
	assert.Contains(t, user, "Style cue: vintage and nostalgic")
	assert.Contains(t, user, "Extra context: finished her PhD")
}

func TestImagePrompt(t *testing.T) {
	req := generation.ImageRequest{
		Style:           card.StyleFuturistic,
		Occasion:        "Birthday",
		IncludeTextArea: true,
		OutputSize:      generation.DefaultOutputSize,
	}

	prompt := imagePrompt(req)
	assert.Contains(t, prompt, "COVER background for Birthday")
	assert.Contains(t, prompt, "futuristic - clean gradients, holographic hints")
	assert.Contains(t, prompt, "balloons, confetti, cake elements")
	assert.Contains(t, prompt, "Reserve clear space in center-lower area")
	assert.NotContains(t, prompt, "portrait photo")

	req.IncludeTextArea = false
	req.Occasion = "Retirement"
	req.Photo = &generation.Photo{Bytes: []byte{1}, MIME: "image/png"}
	prompt = imagePrompt(req)
	assert.Contains(t, prompt, "Full coverage design")
	assert.Contains(t, prompt, defaultMotifs)
	assert.Contains(t, prompt, "Preserve facial likeness")
}
