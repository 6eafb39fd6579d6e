// Package generation defines the port to the AI text and image backends.
package generation

import (
	"context"

	"github.com/greetingsmith/backend/internal/domain/card"
)

// Mode tells where an image came from
type Mode string

const (
	// ModeT2I is a text-to-image result
	ModeT2I Mode = "t2i"
	// ModeI2I is an image-to-image result built from the user's photo
	ModeI2I Mode = "i2i"
	// ModeComposeFallback is the locally rendered placeholder, with the user's
	// photo composited onto it when one was supplied
	ModeComposeFallback Mode = "compose_fallback"
)

// Size is an image size in pixels
type Size struct {
	Width  int
	Height int
}

// DefaultOutputSize is used when a request names no size
var DefaultOutputSize = Size{Width: 1024, Height: 768}

// TextRequest is the input for copy generation
type TextRequest struct {
	Occasion      string
	RecipientName string
	Style         card.Style
	Tone          card.Tone
	ExtraContext  string
	Language      string // BCP 47 tag
	MaxChars      int
}

// Photo is an uploaded picture
type Photo struct {
	Bytes []byte
	MIME  string
}

// ImageRequest is the input for background generation
type ImageRequest struct {
	Style            card.Style
	Occasion         string
	PreferredPalette []string
	IncludeTextArea  bool
	Photo            *Photo
	OutputSize       Size
}

// ImageResult is a base64 PNG plus its provenance
type ImageResult struct {
	ImagePngBase64 string
	Mode           Mode
}

// Generator produces card copy and artwork. Implementations recover from
// backend failures with fallback content; an error means the request itself
// could not be served.
type Generator interface {
	Name() string
	GenerateText(ctx context.Context, req TextRequest) ([]card.Candidate, error)
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error)
}
