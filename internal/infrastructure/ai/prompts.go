package ai

import (
	"fmt"
	"strings"

	"github.com/greetingsmith/backend/internal/domain/card"
	"github.com/greetingsmith/backend/internal/domain/generation"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var styleCues = map[card.Style]string{
	card.StyleCartoonish: "playful and whimsical",
	card.StyleFuturistic: "modern and optimistic",
	card.StyleOldDays:    "vintage and nostalgic",
}

var styleDescriptions = map[card.Style]string{
	card.StyleCartoonish: "soft outlines, pastel palette, playful shapes",
	card.StyleFuturistic: "clean gradients, holographic hints, geometric motifs, subtle glow",
	card.StyleOldDays:    "paper texture, sepia/duotone palette, classic ornaments, film grain lite",
}

const defaultMotifs = "celebratory motifs appropriate for the occasion"

var occasionMotifs = map[string]string{
	"birthday":    "balloons, confetti, cake elements",
	"graduation":  "laurel wreaths, stars, academic elements",
	"anniversary": "hearts, flowers, romantic elements",
	"wedding":     "flowers, elegant patterns, celebration elements",
	"get well":    "healing colors, gentle patterns, uplifting elements",
}

// languageName turns a BCP 47 tag into an English display name for the
// model, e.g. "da" -> "Danish". Unknown tags are passed through.
func languageName(tag string) string {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		tag = "en"
	}
	t, err := language.Parse(tag)
	if err != nil {
		return tag
	}
	if name := display.English.Tags().Name(t); name != "" {
		return name
	}
	return tag
}

func styleCue(s card.Style) string {
	if cue, ok := styleCues[s]; ok {
		return cue
	}
	return "warm"
}

func textSystemPrompt(lang string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = card.DefaultMaxChars
	}
	return fmt.Sprintf(`You are a concise greeting-card copywriter.
Write in %s, upbeat and human, without clichés.
Output JSON with keys: headline, line.

Constraints:
- total length under %d characters
- include recipient's name exactly once in headline or line
- match tone specified by user
- match visual style cue (affects word choice subtly)
- avoid sensitive topics, no personal data beyond input
- be warm and celebratory for the occasion`, languageName(lang), maxChars)
}

func textUserPrompt(req generation.TextRequest) string {
	tone := string(req.Tone)
	if tone == "" {
		tone = string(card.ToneWarm)
	}
	return fmt.Sprintf(`Occasion: %s
Recipient: %s
Tone: %s
Style cue: %s
Extra context: %s

Generate a greeting card message with headline and line that fits this occasion and style.`,
		req.Occasion, req.RecipientName, tone, styleCue(req.Style), req.ExtraContext)
}

func imagePrompt(req generation.ImageRequest) string {
	desc, ok := styleDescriptions[req.Style]
	if !ok {
		desc = styleDescriptions[card.StyleCartoonish]
	}
	motifs, ok := occasionMotifs[strings.ToLower(strings.TrimSpace(req.Occasion))]
	if !ok {
		motifs = defaultMotifs
	}
	textArea := "Full coverage design"
	if req.IncludeTextArea {
		textArea = "Reserve clear space in center-lower area for text overlay"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `Create a single-page greeting card COVER background for %s.
Style: %s - %s.

Design requirements:
- Clear focal area reserved for text overlay (avoid busy patterns in text area)
- Subtle motifs for occasion: %s
- Cohesive palette, printable values, avoid neon clipping
- Clean edges at safe margins for PDF trim (3mm bleed if possible)
- %s
- High resolution suitable for print (300 DPI equivalent)`, req.Occasion, req.Style, desc, motifs, textArea)

	if len(req.PreferredPalette) > 0 {
		fmt.Fprintf(&b, "\n- Preferred palette: %s", strings.Join(req.PreferredPalette, ", "))
	}
	fmt.Fprintf(&b, "\n- Aspect ratio %d:%d", req.OutputSize.Width, req.OutputSize.Height)

	b.WriteString("\n\nOutput: Clean, professional greeting card background with no text or watermarks.")

	if req.Photo != nil {
		fmt.Fprintf(&b, `

Additionally, stylize the provided portrait photo to match the %s style:
- Preserve facial likeness and skin tones
- Apply %s-consistent effects
- Integrate naturally with the background design
- Gentle background separation (soft vignette or halo)`, req.Style, req.Style)
	}
	return b.String()
}
