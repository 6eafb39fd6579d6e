package printing

import (
	"strings"
	"time"

	"github.com/greetingsmith/backend/internal/domain/card"
)

// Layout constants in points
const (
	panelHeightShare = 0.3
	panelOpacity     = 0.85
	panelBorderGray  = 0.9
	panelBorderWidth = 1.0

	headlineGray = 0.2
	lineGray     = 0.3
	footerGray   = 0.6
	footerSize   = 8.0

	// wrapShare is the fraction of the usable width a message line may occupy
	wrapShare       = 0.85
	lineHeightRatio = 1.2
	headlineGap     = 20.0
	blockSpacing    = 10.0
)

// FooterPrefix starts the attribution printed on every card
const FooterPrefix = "Generated with Greetingsmith • "

// Measurer reports the width in points of text set in the card font
type Measurer interface {
	TextWidth(text string, size float64, bold bool) float64
}

// Rect is a rectangle in PDF user space: origin bottom-left, y up.
type Rect struct {
	X, Y, W, H float64
}

// TextRun is one line of text. X, Y is the left end of the baseline.
type TextRun struct {
	Text  string
	X, Y  float64
	Size  float64
	Width float64
	Bold  bool
	Gray  float64
}

// Layout is the engine-independent placement of everything on the page.
type Layout struct {
	Width    float64
	Height   float64
	Panel    Rect
	Headline TextRun
	Lines    []TextRun
	Footer   TextRun
}

func fontSizes(size card.PaperSize) (headline, line float64) {
	if size == card.PaperA4 {
		return 28, 18
	}
	return 22, 14
}

// PlanLayout places the text panel, headline, wrapped message and footer.
func PlanLayout(c card.Card, size card.PaperSize, at time.Time, m Measurer) Layout {
	g := size.Geometry()
	headlineSize, lineSize := fontSizes(size)

	panel := Rect{
		X: g.Margin,
		Y: g.Margin,
		W: g.UsableWidth(),
		H: g.UsableHeight() * panelHeightShare,
	}
	centerX := g.Margin + g.UsableWidth()/2

	headlineHeight := headlineSize * lineHeightRatio
	lineHeight := lineSize * lineHeightRatio
	totalTextHeight := headlineHeight + lineHeight + blockSpacing
	textStartY := panel.Y + (panel.H+totalTextHeight)/2

	l := Layout{Width: g.Width, Height: g.Height, Panel: panel}

	hw := m.TextWidth(c.Headline, headlineSize, true)
	l.Headline = TextRun{
		Text:  c.Headline,
		X:     centerX - hw/2,
		Y:     textStartY - headlineHeight,
		Size:  headlineSize,
		Width: hw,
		Bold:  true,
		Gray:  headlineGray,
	}

	wrapped := WrapText(c.Line, g.UsableWidth()*wrapShare, func(s string) float64 {
		return m.TextWidth(s, lineSize, false)
	})
	y := textStartY - headlineHeight - headlineGap
	for _, text := range wrapped {
		w := m.TextWidth(text, lineSize, false)
		y -= lineHeight
		l.Lines = append(l.Lines, TextRun{
			Text:  text,
			X:     centerX - w/2,
			Y:     y,
			Size:  lineSize,
			Width: w,
			Gray:  lineGray,
		})
	}

	footer := FooterPrefix + at.UTC().Format("2006-01-02")
	fw := m.TextWidth(footer, footerSize, false)
	l.Footer = TextRun{
		Text:  footer,
		X:     g.Width - g.Margin - fw,
		Y:     g.Margin / 2,
		Size:  footerSize,
		Width: fw,
		Gray:  footerGray,
	}
	return l
}

// WrapText greedily packs words into lines no wider than maxWidth. A word
// that alone exceeds maxWidth gets a line of its own.
func WrapText(text string, maxWidth float64, width func(string) float64) []string {
	var lines []string
	current := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if width(candidate) <= maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// CoverRect scales an image to cover the whole page, keeping its aspect
// ratio, centered. Parts outside the page are clipped by the page box.
func CoverRect(imgW, imgH int, pageW, pageH float64) Rect {
	if imgW <= 0 || imgH <= 0 {
		return Rect{W: pageW, H: pageH}
	}
	scale := pageW / float64(imgW)
	if s := pageH / float64(imgH); s > scale {
		scale = s
	}
	w := float64(imgW) * scale
	h := float64(imgH) * scale
	return Rect{X: (pageW - w) / 2, Y: (pageH - h) / 2, W: w, H: h}
}
