package card

import (
	"strings"

	"github.com/greetingsmith/backend/internal/domain/shared"
)

// PaperSize is a page preset
type PaperSize string

const (
	PaperA4 PaperSize = "A4"
	PaperA5 PaperSize = "A5"
)

// DefaultPaperSize is used when an export request names no size
const DefaultPaperSize = PaperA5

// PageMargin is the fixed margin on all four sides, in points.
const PageMargin = 36.0

var ErrInvalidSize = shared.NewDomainError(shared.CodeInvalidInput, "Invalid size. Must be A4 or A5")

// ParsePaperSize parses "A4" or "A5" (case-insensitive)
func ParsePaperSize(s string) (PaperSize, error) {
	switch PaperSize(strings.ToUpper(strings.TrimSpace(s))) {
	case PaperA4:
		return PaperA4, nil
	case PaperA5:
		return PaperA5, nil
	}
	return "", ErrInvalidSize
}

// Geometry describes a page in PDF points (1/72 inch)
type Geometry struct {
	Width  float64
	Height float64
	Margin float64
}

// Geometry returns the page geometry of the preset
func (p PaperSize) Geometry() Geometry {
	switch p {
	case PaperA4:
		return Geometry{Width: 595, Height: 842, Margin: PageMargin}
	default:
		return Geometry{Width: 420, Height: 595, Margin: PageMargin}
	}
}

// UsableWidth is the width inside the margins
func (g Geometry) UsableWidth() float64 { return g.Width - 2*g.Margin }

// UsableHeight is the height inside the margins
func (g Geometry) UsableHeight() float64 { return g.Height - 2*g.Margin }
