package card_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/greetingsmith/backend/internal/domain/card"
	"github.com/greetingsmith/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeCard() card.Card {
	return card.Card{
		Occasion:      "Birthday",
		RecipientName: "Sam",
		Style:         card.StyleCartoonish,
		Tone:          card.ToneWarm,
		Headline:      "Happy Birthday, Sam!",
		Line:          "Wishing you a year full of giggles.",
	}
}

func TestParseStyle(t *testing.T) {
	for _, s := range card.Styles {
		got, err := card.ParseStyle(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := card.ParseStyle("baroque")
	assert.ErrorIs(t, err, card.ErrInvalidStyle)
	_, err = card.ParseStyle("")
	assert.ErrorIs(t, err, card.ErrInvalidStyle)
}

func TestParseTone(t *testing.T) {
	for _, s := range []string{"warm", "playful", "formal", "romantic", "friendly"} {
		got, err := card.ParseTone(s)
		require.NoError(t, err)
		assert.Equal(t, card.Tone(s), got)
	}

	_, err := card.ParseTone("sarcastic")
	assert.ErrorIs(t, err, card.ErrInvalidTone)
}

func TestCard_IsExportable(t *testing.T) {
	assert.True(t, completeCard().IsExportable())
	assert.NoError(t, completeCard().Validate())

	tests := map[string]func(c *card.Card){
		"missing headline":  func(c *card.Card) { c.Headline = "" },
		"missing line":      func(c *card.Card) { c.Line = "   " },
		"missing occasion":  func(c *card.Card) { c.Occasion = "" },
		"missing recipient": func(c *card.Card) { c.RecipientName = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := completeCard()
			mutate(&c)
			assert.False(t, c.IsExportable())
			assert.ErrorIs(t, c.Validate(), card.ErrIncompleteCard)
		})
	}
}

func TestCard_ImageIsOptional(t *testing.T) {
	c := completeCard()
	c.ImagePngBase64 = ""
	assert.True(t, c.IsExportable())
}

func TestParsePaperSize(t *testing.T) {
	got, err := card.ParsePaperSize("A4")
	require.NoError(t, err)
	assert.Equal(t, card.PaperA4, got)

	got, err = card.ParsePaperSize("a5")
	require.NoError(t, err)
	assert.Equal(t, card.PaperA5, got)

	_, err = card.ParsePaperSize("Letter")
	assert.ErrorIs(t, err, card.ErrInvalidSize)
	assert.Equal(t, "Invalid size. Must be A4 or A5", err.Error())
}

func TestGeometry(t *testing.T) {
	a4 := card.PaperA4.Geometry()
	assert.Equal(t, 595.0, a4.Width)
	assert.Equal(t, 842.0, a4.Height)
	assert.Equal(t, 36.0, a4.Margin)
	assert.Equal(t, 523.0, a4.UsableWidth())
	assert.Equal(t, 770.0, a4.UsableHeight())

	a5 := card.PaperA5.Geometry()
	assert.Equal(t, 420.0, a5.Width)
	assert.Equal(t, 595.0, a5.Height)
	assert.Equal(t, 348.0, a5.UsableWidth())
	assert.Equal(t, 523.0, a5.UsableHeight())
}

func TestCandidate_Fit(t *testing.T) {
	t.Run("within budget unchanged", func(t *testing.T) {
		c := card.Candidate{Headline: "Happy Birthday, Sam!", Line: "Have a great day."}
		assert.Equal(t, c, c.Fit(card.DefaultMaxChars))
	})

	t.Run("oversized split 40/60", func(t *testing.T) {
		c := card.Candidate{
			Headline: strings.Repeat("h", 80),
			Line:     strings.Repeat("l", 80),
		}
		got := c.Fit(100)

		assert.Len(t, got.Headline, 40)
		assert.True(t, strings.HasSuffix(got.Headline, "..."))
		assert.Len(t, got.Line, 60)
		assert.True(t, strings.HasSuffix(got.Line, "..."))
		assert.LessOrEqual(t, got.Length(), 100)
	})

	t.Run("only over-limit part is cut", func(t *testing.T) {
		c := card.Candidate{Headline: "Hi Sam", Line: strings.Repeat("x", 200)}
		got := c.Fit(100)

		assert.Equal(t, "Hi Sam", got.Headline)
		assert.Equal(t, strings.Repeat("x", 57)+"...", got.Line)
	})

	t.Run("counts characters not bytes", func(t *testing.T) {
		c := card.Candidate{Headline: "Tillykke Søren", Line: "Kærlig hilsen"}
		assert.Equal(t, c, c.Fit(27))
	})
}

func TestDenylist_Match(t *testing.T) {
	word, hit := card.TextDenylist.Match("Birthday", "Sam", "I HATE mondays")
	assert.True(t, hit)
	assert.Equal(t, "hate", word)

	_, hit = card.TextDenylist.Match("Birthday", "Sam", "")
	assert.False(t, hit)

	// Substring match is deliberate: "harmony" contains "harm".
	_, hit = card.TextDenylist.Match("harmony")
	assert.True(t, hit)

	_, hit = card.ImageDenylist.Match("Weapons day")
	assert.True(t, hit)
	_, hit = card.ImageDenylist.Match("death")
	assert.False(t, hit)
}

func TestExportFilename(t *testing.T) {
	c := completeCard()
	c.Occasion = "Get Well!"
	c.RecipientName = "Anna Maria"
	at := time.Date(2024, 5, 1, 23, 0, 0, 0, time.UTC)

	assert.Equal(t, "greeting-get-well--anna-maria-2024-05-01.pdf", card.ExportFilename(c, at))
}

func TestDomainErrors_AreDomainErrors(t *testing.T) {
	var domainErr *shared.DomainError
	require.True(t, errors.As(card.ErrIncompleteCard, &domainErr))
	assert.Equal(t, shared.CodeValidationRequired, domainErr.Code)
	assert.Equal(t, shared.CodeContentRejected, card.ErrCardContentRejected.Code)
}
