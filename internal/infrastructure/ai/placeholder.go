package ai

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"strconv"
	"strings"

	"github.com/greetingsmith/backend/internal/domain/card"
	"github.com/greetingsmith/backend/internal/domain/generation"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// palette holds the three gradient stops of a style
type palette [3]color.NRGBA

var stylePalettes = map[card.Style]palette{
	card.StyleCartoonish: {hex(0xFFB6C1), hex(0x98FB98), hex(0x87CEEB)},
	card.StyleFuturistic: {hex(0x4A90E2), hex(0x50C878), hex(0x9B59B6)},
	card.StyleOldDays:    {hex(0xD2B48C), hex(0xF4A460), hex(0xCD853F)},
}

var white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

func hex(v uint32) color.NRGBA {
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}

// parseHexColor accepts #RGB and #RRGGBB
func parseHexColor(s string) (color.NRGBA, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return color.NRGBA{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return hex(uint32(v)), true
}

// paletteFor returns the style palette with any valid preferred colors
// replacing the stops in order.
func paletteFor(style card.Style, preferred []string) palette {
	p, ok := stylePalettes[style]
	if !ok {
		p = stylePalettes[card.StyleCartoonish]
	}
	i := 0
	for _, s := range preferred {
		if i == len(p) {
			break
		}
		if c, ok := parseHexColor(s); ok {
			p[i] = c
			i++
		}
	}
	return p
}

// renderPlaceholder draws the local stand-in artwork: diagonal gradient, dot
// pattern, occasion decorations, the user's photo when given, the reserved
// text panel and a small watermark.
func renderPlaceholder(req generation.ImageRequest, photo image.Image) *image.NRGBA {
	w, h := req.OutputSize.Width, req.OutputSize.Height
	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	paintGradient(img, paletteFor(req.Style, req.PreferredPalette))
	paintDots(img)
	paintDecorations(img, req.Occasion)
	if photo != nil {
		compositePhoto(img, photo)
	}
	if req.IncludeTextArea {
		panel := image.Rect(int(0.1*float64(w)), int(0.6*float64(h)), int(0.9*float64(w)), int(0.9*float64(h)))
		fillAlpha(img, panel, white, 0.85)
	}
	drawWatermark(img, fmt.Sprintf("Greetingsmith preview - %s %s", req.Style, req.Occasion))
	return img
}

func paintGradient(img *image.NRGBA, p palette) {
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	norm := w*w + h*h
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			// projection onto the top-left to bottom-right diagonal
			t := (float64(x)*w + float64(y)*h) / norm
			var c color.NRGBA
			if t < 0.5 {
				c = lerp(p[0], p[1], t*2)
			} else {
				c = lerp(p[1], p[2], (t-0.5)*2)
			}
			img.SetNRGBA(x, y, c)
		}
	}
}

func lerp(a, b color.NRGBA, t float64) color.NRGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

const dotSpacing = 40

func paintDots(img *image.NRGBA) {
	b := img.Bounds()
	for y := dotSpacing / 2; y < b.Dy(); y += dotSpacing {
		for x := dotSpacing / 2; x < b.Dx(); x += dotSpacing {
			fillCircle(img, float64(x), float64(y), 3, white, 0.12)
		}
	}
}

type decoration struct {
	shape  string // circle, star, heart
	x, y   float64
	radius float64
	color  color.NRGBA
	alpha  float64
}

var occasionDecorations = map[string][]decoration{
	"birthday": {
		{"circle", 0.2, 0.2, 15, hex(0xFF6B6B), 0.8},
		{"circle", 0.8, 0.3, 12, hex(0x4ECDC4), 0.8},
		{"circle", 0.3, 0.4, 10, hex(0x45B7D1), 0.8},
		{"circle", 0.7, 0.1, 18, hex(0x96CEB4), 0.8},
	},
	"graduation": {
		{"star", 0.25, 0.25, 40, hex(0xFFD700), 0.7},
		{"star", 0.75, 0.35, 40, hex(0xFFD700), 0.7},
	},
	"anniversary": {
		{"heart", 0.25, 0.22, 36, hex(0xFF69B4), 0.7},
		{"heart", 0.75, 0.12, 36, hex(0xFF69B4), 0.7},
	},
	"wedding": {
		{"circle", 0.25, 0.2, 8, hex(0xFFE4E1), 0.9},
		{"circle", 0.3, 0.25, 10, hex(0xFFF0F5), 0.9},
		{"circle", 0.2, 0.25, 6, hex(0xFFE4E1), 0.9},
		{"circle", 0.75, 0.15, 8, hex(0xFFE4E1), 0.9},
		{"circle", 0.8, 0.2, 10, hex(0xFFF0F5), 0.9},
	},
	"get well": {
		{"circle", 0.2, 0.15, 12, hex(0xB5EAD7), 0.8},
		{"circle", 0.8, 0.2, 14, hex(0xC7CEEA), 0.8},
		{"circle", 0.5, 0.1, 9, hex(0xFFDAC1), 0.8},
	},
}

var defaultDecorations = []decoration{
	{"circle", 0.3, 0.2, 10, white, 0.5},
	{"circle", 0.7, 0.3, 8, white, 0.5},
}

func paintDecorations(img *image.NRGBA, occasion string) {
	decos, ok := occasionDecorations[strings.ToLower(strings.TrimSpace(occasion))]
	if !ok {
		decos = defaultDecorations
	}
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	// radii are tuned for a 768px short side
	scale := math.Min(w, h) / 768
	for _, d := range decos {
		cx, cy, r := d.x*w, d.y*h, d.radius*scale
		switch d.shape {
		case "star":
			fillPolygon(img, starPoints(cx, cy, r, r*0.45), d.color, d.alpha)
		case "heart":
			fillCircle(img, cx-r*0.25, cy, r*0.3, d.color, d.alpha)
			fillCircle(img, cx+r*0.25, cy, r*0.3, d.color, d.alpha)
			fillPolygon(img, []point{{cx - r*0.53, cy + r*0.1}, {cx + r*0.53, cy + r*0.1}, {cx, cy + r*0.75}}, d.color, d.alpha)
		default:
			fillCircle(img, cx, cy, r, d.color, d.alpha)
		}
	}
}

type point struct{ x, y float64 }

func starPoints(cx, cy, outer, inner float64) []point {
	pts := make([]point, 0, 10)
	for i := 0; i < 10; i++ {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		a := -math.Pi/2 + float64(i)*math.Pi/5
		pts = append(pts, point{cx + r*math.Cos(a), cy + r*math.Sin(a)})
	}
	return pts
}

// shapeMask is an alpha mask defined by a point-inclusion test
type shapeMask struct {
	bounds image.Rectangle
	inside func(x, y float64) bool
}

func (m *shapeMask) ColorModel() color.Model { return color.AlphaModel }
func (m *shapeMask) Bounds() image.Rectangle { return m.bounds }
func (m *shapeMask) At(x, y int) color.Color {
	if m.inside(float64(x)+0.5, float64(y)+0.5) {
		return color.Alpha{A: 255}
	}
	return color.Alpha{}
}

func fillShape(img *image.NRGBA, bounds image.Rectangle, inside func(x, y float64) bool, c color.NRGBA, alpha float64) {
	src := image.NewUniform(color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(alpha * 255)})
	mask := &shapeMask{bounds: bounds, inside: inside}
	draw.DrawMask(img, bounds.Intersect(img.Bounds()), src, image.Point{}, mask, bounds.Intersect(img.Bounds()).Min, draw.Over)
}

func fillCircle(img *image.NRGBA, cx, cy, r float64, c color.NRGBA, alpha float64) {
	bounds := image.Rect(int(cx-r)-1, int(cy-r)-1, int(cx+r)+2, int(cy+r)+2)
	fillShape(img, bounds, func(x, y float64) bool {
		dx, dy := x-cx, y-cy
		return dx*dx+dy*dy <= r*r
	}, c, alpha)
}

func fillPolygon(img *image.NRGBA, pts []point, c color.NRGBA, alpha float64) {
	minX, minY, maxX, maxY := pts[0].x, pts[0].y, pts[0].x, pts[0].y
	for _, p := range pts[1:] {
		minX, maxX = math.Min(minX, p.x), math.Max(maxX, p.x)
		minY, maxY = math.Min(minY, p.y), math.Max(maxY, p.y)
	}
	bounds := image.Rect(int(minX)-1, int(minY)-1, int(maxX)+2, int(maxY)+2)
	fillShape(img, bounds, func(x, y float64) bool {
		// even-odd rule
		in := false
		for i, j := 0, len(pts)-1; i < len(pts); j, i = i, i+1 {
			a, b := pts[i], pts[j]
			if (a.y > y) != (b.y > y) && x < (b.x-a.x)*(y-a.y)/(b.y-a.y)+a.x {
				in = !in
			}
		}
		return in
	}, c, alpha)
}

func fillAlpha(img *image.NRGBA, r image.Rectangle, c color.NRGBA, alpha float64) {
	src := image.NewUniform(color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(alpha * 255)})
	draw.Draw(img, r.Intersect(img.Bounds()), src, image.Point{}, draw.Over)
}

func drawWatermark(img *image.NRGBA, text string) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.NRGBA{A: 77}),
		Face: face,
	}
	width := d.MeasureString(text).Ceil()
	b := img.Bounds()
	d.Dot = fixed.P((b.Dx()-width)/2, b.Dy()-20)
	d.DrawString(text)
}

func encodePNGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
