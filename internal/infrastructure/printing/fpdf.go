package printing

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/greetingsmith/backend/internal/domain/card"
	"go.uber.org/zap"
)

const backgroundName = "background"

// fpdfMetrics measures text with the card font registered in a document.
type fpdfMetrics struct {
	pdf *fpdf.Fpdf
}

func newFpdfMetrics(pdf *fpdf.Fpdf) *fpdfMetrics {
	return &fpdfMetrics{pdf: pdf}
}

// newStandaloneMetrics returns metrics backed by a scratch document.
func newStandaloneMetrics() *fpdfMetrics {
	pdf := fpdf.New("P", "pt", "A4", "")
	registerCardFonts(pdf)
	return newFpdfMetrics(pdf)
}

func (m *fpdfMetrics) TextWidth(text string, size float64, bold bool) float64 {
	m.pdf.SetFont(cardFont, faceFor(bold).style, size)
	return m.pdf.GetStringWidth(text)
}

func registerCardFonts(pdf *fpdf.Fpdf) {
	for _, f := range []*cardFace{regularFace, boldFace} {
		pdf.AddUTF8FontFromBytes(cardFont, f.style, f.ttf)
	}
}

// FpdfRenderer draws cards with go-pdf/fpdf
type FpdfRenderer struct {
	logger *zap.Logger
	now    func() time.Time
}

// FpdfOption configures an FpdfRenderer
type FpdfOption func(*FpdfRenderer)

// WithFpdfClock replaces time.Now for the footer date
func WithFpdfClock(now func() time.Time) FpdfOption {
	return func(r *FpdfRenderer) {
		r.now = now
	}
}

// NewFpdfRenderer creates a new in-process renderer
func NewFpdfRenderer(logger *zap.Logger, opts ...FpdfOption) *FpdfRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &FpdfRenderer{logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the engine name
func (r *FpdfRenderer) Name() string { return EngineFpdf }

// Close is a no-op
func (r *FpdfRenderer) Close() error { return nil }

// Render draws the card on one page of the requested size
func (r *FpdfRenderer) Render(ctx context.Context, c card.Card, size card.PaperSize) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewBuildError(EngineFpdf, err)
	}

	startTime := time.Now()
	g := size.Geometry()

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: g.Width, Ht: g.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("Greetingsmith", true)
	pdf.SetTitle(c.Headline, true)
	registerCardFonts(pdf)
	pdf.AddPage()

	layout := PlanLayout(c, size, r.now(), newFpdfMetrics(pdf))

	runs := append([]TextRun{layout.Headline}, layout.Lines...)
	runs = append(runs, layout.Footer)
	if err := checkRunGlyphs(runs); err != nil {
		r.logger.Warn("Card text cannot be set in the card font", zap.Error(err))
		return nil, NewBuildError(EngineFpdf, err)
	}

	r.drawBackground(pdf, c.ImagePngBase64, g.Width, g.Height)
	drawPanel(pdf, layout)
	for _, run := range runs {
		drawText(pdf, layout.Height, run)
	}

	if err := pdf.Error(); err != nil {
		r.logger.Error("fpdf rendering failed", zap.Error(err))
		return nil, NewBuildError(EngineFpdf, err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		r.logger.Error("fpdf output failed", zap.Error(err))
		return nil, NewBuildError(EngineFpdf, fmt.Errorf("serialize: %w", err))
	}

	r.logger.Debug("PDF rendered",
		zap.String("engine", EngineFpdf),
		zap.String("size", string(size)),
		zap.Int("bytes", buf.Len()),
		zap.Duration("duration", time.Since(startTime)))

	return buf.Bytes(), nil
}

// drawBackground embeds the card image, skipping it when it cannot be used.
func (r *FpdfRenderer) drawBackground(pdf *fpdf.Fpdf, encoded string, pageW, pageH float64) {
	bg, err := decodeBackground(encoded)
	if err != nil {
		if err != errNoBackground {
			r.logger.Warn("Failed to decode background image, continuing without it", zap.Error(err))
		}
		return
	}

	opts := fpdf.ImageOptions{ImageType: bg.kind}
	pdf.RegisterImageOptionsReader(backgroundName, opts, bytes.NewReader(bg.data))
	if err := pdf.Error(); err != nil {
		r.logger.Warn("Failed to embed background image, continuing without it", zap.Error(err))
		pdf.ClearError()
		return
	}

	rect := CoverRect(bg.width, bg.height, pageW, pageH)
	// fpdf measures y from the top edge
	pdf.ImageOptions(backgroundName, rect.X, pageH-rect.Y-rect.H, rect.W, rect.H, false, opts, 0, "")
}

func drawPanel(pdf *fpdf.Fpdf, l Layout) {
	p := l.Panel
	top := l.Height - p.Y - p.H

	pdf.SetAlpha(panelOpacity, "Normal")
	pdf.SetFillColor(255, 255, 255)
	pdf.Rect(p.X, top, p.W, p.H, "F")
	pdf.SetAlpha(1, "Normal")

	border := grayLevel(panelBorderGray)
	pdf.SetDrawColor(border, border, border)
	pdf.SetLineWidth(panelBorderWidth)
	pdf.Rect(p.X, top, p.W, p.H, "D")
}

func drawText(pdf *fpdf.Fpdf, pageH float64, run TextRun) {
	pdf.SetFont(cardFont, faceFor(run.Bold).style, run.Size)
	gray := grayLevel(run.Gray)
	pdf.SetTextColor(gray, gray, gray)
	pdf.Text(run.X, pageH-run.Y, run.Text)
}

func grayLevel(v float64) int {
	return int(v*255 + 0.5)
}
