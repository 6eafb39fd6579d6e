package printing

import (
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// cardFont is the family both engines draw text with. The Go fonts cover
// Latin, Greek and Cyrillic, plus the typographic punctuation used in copy.
const cardFont = "GoSans"

// ErrUnsupportedCharacter reports card text the card font has no glyph for.
var ErrUnsupportedCharacter = errors.New("unsupported character")

type cardFace struct {
	style string // fpdf style string
	ttf   []byte
	font  *sfnt.Font
}

var (
	regularFace = mustParseFace("", goregular.TTF)
	boldFace    = mustParseFace("B", gobold.TTF)

	// cardBaseline is the distance from the top of a CSS line box with
	// line-height 1 down to the baseline, in ems.
	cardBaseline = regularFace.baseline()

	cardFontCSS = fontFaceCSS()
)

func mustParseFace(style string, ttf []byte) *cardFace {
	f, err := sfnt.Parse(ttf)
	if err != nil {
		panic(fmt.Sprintf("printing: parse embedded font: %v", err))
	}
	return &cardFace{style: style, ttf: ttf, font: f}
}

func faceFor(bold bool) *cardFace {
	if bold {
		return boldFace
	}
	return regularFace
}

// checkGlyphs fails on the first printable rune of text missing from the face.
func (f *cardFace) checkGlyphs(text string) error {
	var buf sfnt.Buffer
	for _, r := range text {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			continue
		}
		idx, err := f.font.GlyphIndex(&buf, r)
		if err != nil {
			return fmt.Errorf("look up glyph %U: %w", r, err)
		}
		if idx == 0 {
			return fmt.Errorf("%w %q (%U)", ErrUnsupportedCharacter, r, r)
		}
	}
	return nil
}

func (f *cardFace) baseline() float64 {
	const ppem = 1000
	var buf sfnt.Buffer
	m, err := f.font.Metrics(&buf, fixed.I(ppem), font.HintingNone)
	if err != nil {
		return 0.8
	}
	ascent := float64(m.Ascent) / 64 / ppem
	descent := float64(m.Descent) / 64 / ppem
	// Half-leading splits the difference between the line box and the content area.
	return (1 + ascent - descent) / 2
}

// checkRunGlyphs verifies every run can be drawn with the face it is set in.
func checkRunGlyphs(runs []TextRun) error {
	for _, run := range runs {
		if err := faceFor(run.Bold).checkGlyphs(run.Text); err != nil {
			return err
		}
	}
	return nil
}

func fontFaceCSS() template.CSS {
	rule := func(f *cardFace, weight string) string {
		return fmt.Sprintf("@font-face { font-family: '%s'; font-weight: %s; src: url(data:font/ttf;base64,%s) format('truetype'); }\n",
			cardFont, weight, base64.StdEncoding.EncodeToString(f.ttf))
	}
	return template.CSS(rule(regularFace, "normal") + rule(boldFace, "bold"))
}
