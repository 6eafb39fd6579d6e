package ai

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"

	"github.com/greetingsmith/backend/internal/domain/generation"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Photo frame placement as fractions of the canvas. The frame stays above
// the reserved text panel, which starts at 60% height.
const (
	frameWidthShare  = 0.42
	frameHeightShare = 0.46
	frameTopShare    = 0.08
)

// decodePhoto decodes a JPEG, PNG or WebP upload
func decodePhoto(p *generation.Photo) (image.Image, error) {
	if p == nil || len(p.Bytes) == 0 {
		return nil, nil
	}
	img, _, err := image.Decode(bytes.NewReader(p.Bytes))
	if err != nil {
		return nil, fmt.Errorf("decode photo (%s): %w", p.MIME, err)
	}
	return img, nil
}

// frameRect is the region of the canvas that receives the photo
func frameRect(canvas image.Rectangle) image.Rectangle {
	w, h := float64(canvas.Dx()), float64(canvas.Dy())
	fw, fh := int(w*frameWidthShare), int(h*frameHeightShare)
	x0 := canvas.Min.X + (canvas.Dx()-fw)/2
	y0 := canvas.Min.Y + int(h*frameTopShare)
	return image.Rect(x0, y0, x0+fw, y0+fh)
}

// fitInside scales src to fit within r keeping its aspect ratio, centered.
func fitInside(src image.Rectangle, r image.Rectangle) image.Rectangle {
	sw, sh := float64(src.Dx()), float64(src.Dy())
	if sw == 0 || sh == 0 {
		return image.Rectangle{}
	}
	scale := float64(r.Dx()) / sw
	if s := float64(r.Dy()) / sh; s < scale {
		scale = s
	}
	w, h := int(sw*scale), int(sh*scale)
	x0 := r.Min.X + (r.Dx()-w)/2
	y0 := r.Min.Y + (r.Dy()-h)/2
	return image.Rect(x0, y0, x0+w, y0+h)
}

// compositePhoto draws a white mat in the upper area and the photo scaled to
// fit inside it.
func compositePhoto(canvas *image.NRGBA, photo image.Image) {
	frame := frameRect(canvas.Bounds())
	border := canvas.Bounds().Dx() / 128
	if border < 4 {
		border = 4
	}
	fillAlpha(canvas, frame, white, 0.9)

	inner := frame.Inset(border)
	target := fitInside(photo.Bounds(), inner)
	if target.Empty() {
		return
	}
	draw.CatmullRom.Scale(canvas, target, photo, photo.Bounds(), draw.Over, nil)
}

// fitCover scales src to cover size exactly, cropping the overflow evenly.
func fitCover(src image.Image, size generation.Size) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, size.Width, size.Height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	sb := src.Bounds()
	sw, sh := float64(sb.Dx()), float64(sb.Dy())
	if sw == 0 || sh == 0 {
		return dst
	}
	scale := float64(size.Width) / sw
	if s := float64(size.Height) / sh; s > scale {
		scale = s
	}
	// source window that maps onto the whole destination
	cw, ch := int(float64(size.Width)/scale), int(float64(size.Height)/scale)
	x0 := sb.Min.X + (sb.Dx()-cw)/2
	y0 := sb.Min.Y + (sb.Dy()-ch)/2
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, image.Rect(x0, y0, x0+cw, y0+ch), draw.Over, nil)
	return dst
}
