// Package card holds the greeting card model: styles, tones, paper presets,
// text candidates, export rules and the content denylists.
package card

import (
	"strings"

	"github.com/greetingsmith/backend/internal/domain/shared"
)

// Style is the visual style of a card
type Style string

const (
	StyleCartoonish Style = "cartoonish"
	StyleFuturistic Style = "futuristic"
	StyleOldDays    Style = "old_days"
)

// Styles lists every supported style in display order
var Styles = []Style{StyleCartoonish, StyleFuturistic, StyleOldDays}

// IsValid reports whether s is a supported style
func (s Style) IsValid() bool {
	switch s {
	case StyleCartoonish, StyleFuturistic, StyleOldDays:
		return true
	}
	return false
}

// Tone is the voice of the generated copy
type Tone string

const (
	ToneWarm     Tone = "warm"
	TonePlayful  Tone = "playful"
	ToneFormal   Tone = "formal"
	ToneRomantic Tone = "romantic"
	ToneFriendly Tone = "friendly"
)

// IsValid reports whether t is a supported tone
func (t Tone) IsValid() bool {
	switch t {
	case ToneWarm, TonePlayful, ToneFormal, ToneRomantic, ToneFriendly:
		return true
	}
	return false
}

var (
	ErrInvalidStyle   = shared.NewDomainError(shared.CodeInvalidInput, "Invalid style. Must be cartoonish, futuristic, or old_days")
	ErrInvalidTone    = shared.NewDomainError(shared.CodeInvalidInput, "Invalid tone. Must be warm, playful, formal, romantic, or friendly")
	ErrMissingCard    = shared.NewDomainError(shared.CodeValidationRequired, "Missing card data")
	ErrIncompleteCard = shared.NewDomainError(shared.CodeValidationRequired, "Incomplete card data")
)

// ParseStyle parses a style name
func ParseStyle(s string) (Style, error) {
	style := Style(strings.TrimSpace(s))
	if !style.IsValid() {
		return "", ErrInvalidStyle
	}
	return style, nil
}

// ParseTone parses a tone name
func ParseTone(s string) (Tone, error) {
	tone := Tone(strings.TrimSpace(s))
	if !tone.IsValid() {
		return "", ErrInvalidTone
	}
	return tone, nil
}

// Card is the client-held card assembled after generation. The server never
// stores it; it arrives whole with each export request.
type Card struct {
	Occasion       string `json:"occasion"`
	RecipientName  string `json:"recipientName"`
	Style          Style  `json:"style"`
	Tone           Tone   `json:"tone"`
	Headline       string `json:"headline"`
	Line           string `json:"line"`
	ImagePngBase64 string `json:"imagePngBase64"`
	UserPhoto      string `json:"userPhoto,omitempty"`
	HasUserConsent bool   `json:"hasUserConsent"`
}

// IsExportable reports whether all text fields needed on the page are present.
func (c Card) IsExportable() bool {
	for _, field := range []string{c.Headline, c.Line, c.Occasion, c.RecipientName} {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}
	return true
}

// Validate returns ErrIncompleteCard when the card cannot be exported.
func (c Card) Validate() error {
	if !c.IsExportable() {
		return ErrIncompleteCard
	}
	return nil
}
