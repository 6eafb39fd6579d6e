package printing

import (
	"strings"
	"testing"
	"time"

	"github.com/greetingsmith/backend/internal/domain/card"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// monoMeasurer gives every rune the same advance: 0.5em, bold 0.6em.
type monoMeasurer struct{}

func (monoMeasurer) TextWidth(text string, size float64, bold bool) float64 {
	advance := 0.5
	if bold {
		advance = 0.6
	}
	return float64(len([]rune(text))) * size * advance
}

func runeWidth(s string) float64 { return float64(len([]rune(s))) }

func TestWrapText(t *testing.T) {
	t.Run("lines stay within width", func(t *testing.T) {
		text := "Wishing you a wonderful birthday filled with laughter cake and all your favourite people"
		lines := WrapText(text, 20, runeWidth)

		require.NotEmpty(t, lines)
		for _, line := range lines {
			assert.LessOrEqual(t, runeWidth(line), 20.0, line)
		}
		assert.Equal(t, strings.Fields(text), strings.Fields(strings.Join(lines, " ")))
	})

	t.Run("overlong word gets its own line", func(t *testing.T) {
		lines := WrapText("hi supercalifragilistic yo", 10, runeWidth)
		assert.Equal(t, []string{"hi", "supercalifragilistic", "yo"}, lines)
	})

	t.Run("overlong first word", func(t *testing.T) {
		lines := WrapText("supercalifragilistic a b", 10, runeWidth)
		assert.Equal(t, []string{"supercalifragilistic", "a b"}, lines)
	})

	t.Run("empty text", func(t *testing.T) {
		assert.Empty(t, WrapText("   ", 10, runeWidth))
	})
}

func TestPlanLayout(t *testing.T) {
	at := time.Date(2026, 2, 14, 18, 30, 0, 0, time.UTC)
	c := card.Card{
		Occasion:      "Birthday",
		RecipientName: "Sam",
		Headline:      "Happy Birthday, Sam!",
		Line:          "May your day be filled with joy, laughter and everything that makes you smile the most.",
	}

	t.Run("A5", func(t *testing.T) {
		l := PlanLayout(c, card.PaperA5, at, monoMeasurer{})

		assert.Equal(t, 420.0, l.Width)
		assert.Equal(t, 595.0, l.Height)
		assert.Equal(t, Rect{X: 36, Y: 36, W: 348, H: 523 * 0.3}, l.Panel)

		assert.Equal(t, 22.0, l.Headline.Size)
		assert.True(t, l.Headline.Bold)
		assert.InDelta(t, 210.0, l.Headline.X+l.Headline.Width/2, 1e-9)

		require.NotEmpty(t, l.Lines)
		for i, line := range l.Lines {
			assert.Equal(t, 14.0, line.Size)
			assert.LessOrEqual(t, line.Width, 348*0.85)
			assert.InDelta(t, 210.0, line.X+line.Width/2, 1e-9)
			if i > 0 {
				assert.InDelta(t, 14*1.2, l.Lines[i-1].Y-line.Y, 1e-9)
			}
		}
		assert.InDelta(t, l.Headline.Y-20-14*1.2, l.Lines[0].Y, 1e-9)

		assert.Equal(t, "Generated with Greetingsmith • 2026-02-14", l.Footer.Text)
		assert.InDelta(t, 420.0-36, l.Footer.X+l.Footer.Width, 1e-9)
		assert.Equal(t, 18.0, l.Footer.Y)
		assert.Equal(t, 8.0, l.Footer.Size)
	})

	t.Run("A4 uses larger type", func(t *testing.T) {
		l := PlanLayout(c, card.PaperA4, at, monoMeasurer{})

		assert.Equal(t, 28.0, l.Headline.Size)
		assert.Equal(t, 18.0, l.Lines[0].Size)
		assert.InDelta(t, 297.5, l.Headline.X+l.Headline.Width/2, 1e-9)
	})

	t.Run("headline sits inside the panel", func(t *testing.T) {
		l := PlanLayout(c, card.PaperA5, at, monoMeasurer{})
		assert.Greater(t, l.Headline.Y, l.Panel.Y)
		assert.Less(t, l.Headline.Y, l.Panel.Y+l.Panel.H)
	})
}

func TestCoverRect(t *testing.T) {
	t.Run("wide image overflows horizontally", func(t *testing.T) {
		r := CoverRect(1024, 768, 420, 595)
		assert.InDelta(t, 595.0, r.H, 1e-9)
		assert.Greater(t, r.W, 420.0)
		assert.InDelta(t, 210.0, r.X+r.W/2, 1e-9)
		assert.InDelta(t, 0.0, r.Y, 1e-9)
	})

	t.Run("tall image overflows vertically", func(t *testing.T) {
		r := CoverRect(100, 1000, 595, 842)
		assert.InDelta(t, 595.0, r.W, 1e-9)
		assert.Greater(t, r.H, 842.0)
		assert.InDelta(t, 421.0, r.Y+r.H/2, 1e-9)
	})

	t.Run("aspect ratio preserved", func(t *testing.T) {
		r := CoverRect(800, 600, 420, 595)
		assert.InDelta(t, 800.0/600.0, r.W/r.H, 1e-9)
	})
}
