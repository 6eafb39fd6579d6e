package printing

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"golang.org/x/image/draw"
)

var errNoBackground = errors.New("no background image")

// background is a decoded card image ready to embed
type background struct {
	data   []byte
	kind   string // PNG or JPG
	width  int
	height int
}

// decodeBackground accepts plain base64 or a data URL. It tries PNG, then
// JPEG. PNGs are re-encoded as 8-bit NRGBA so every engine can embed them.
func decodeBackground(encoded string) (*background, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, errNoBackground
	}
	if strings.HasPrefix(encoded, "data:") {
		idx := strings.Index(encoded, ",")
		if idx == -1 {
			return nil, errors.New("invalid data URL format")
		}
		encoded = encoded[idx+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}

	if img, err := png.Decode(bytes.NewReader(raw)); err == nil {
		b := img.Bounds()
		flat := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(flat, flat.Bounds(), img, b.Min, draw.Src)
		var buf bytes.Buffer
		if err := png.Encode(&buf, flat); err != nil {
			return nil, err
		}
		return &background{data: buf.Bytes(), kind: "PNG", width: b.Dx(), height: b.Dy()}, nil
	}

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.New("background is neither PNG nor JPEG")
	}
	return &background{data: raw, kind: "JPG", width: cfg.Width, height: cfg.Height}, nil
}

func (b *background) dataURL() string {
	mime := "image/png"
	if b.kind == "JPG" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(b.data)
}
