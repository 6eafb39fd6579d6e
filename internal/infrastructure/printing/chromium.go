package printing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"math"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/greetingsmith/backend/internal/domain/card"
	"go.uber.org/zap"
)

const (
	defaultChromeTimeout = 30 * time.Second
	pointsPerInch        = 72.0
)

// ChromiumConfig contains configuration for the Chrome renderer
type ChromiumConfig struct {
	// DefaultTimeout bounds one render
	DefaultTimeout time.Duration
	// RemoteURL is the DevTools URL of a running Chrome. Empty launches a local
	// headless browser.
	RemoteURL string
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
	Logger    *zap.Logger
}

// ChromiumRenderer prints an HTML rendition of the card layout through
// headless Chrome
type ChromiumRenderer struct {
	config      *ChromiumConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
	now         func() time.Time
}

// NewChromiumRenderer creates the renderer and its browser allocator. The
// browser process itself starts on first use.
func NewChromiumRenderer(config *ChromiumConfig) (*ChromiumRenderer, error) {
	if config == nil {
		config = &ChromiumConfig{}
	}
	if config.DefaultTimeout == 0 {
		config.DefaultTimeout = defaultChromeTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &ChromiumRenderer{config: config, logger: logger, now: time.Now}
	r.initAllocator()
	return r, nil
}

func (r *ChromiumRenderer) initAllocator() {
	if r.config.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), r.config.RemoteURL)
		return
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if r.config.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}
	r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
}

// Name returns the engine name
func (r *ChromiumRenderer) Name() string { return EngineChromium }

// Render prints the card at the exact paper size with zero margins
func (r *ChromiumRenderer) Render(ctx context.Context, c card.Card, size card.PaperSize) ([]byte, error) {
	startTime := time.Now()

	doc, err := r.buildHTML(c, size)
	if err != nil {
		return nil, NewBuildError(EngineChromium, err)
	}
	params := buildPrintParams(size)

	ctx, cancel := context.WithTimeout(ctx, r.config.DefaultTimeout)
	defer cancel()

	browserCtx, browserCancel := chromedp.NewContext(r.allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	// Stop the browser tab when the request context ends.
	stop := context.AfterFunc(ctx, browserCancel)
	defer stop()

	var pdfData []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, doc).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(params.paperWidth).
				WithPaperHeight(params.paperHeight).
				WithMarginTop(0).
				WithMarginRight(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithPageRanges("1").
				Do(ctx)
			if err != nil {
				return err
			}
			pdfData = data
			return nil
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewBuildError(EngineChromium,
				fmt.Errorf("rendering timed out after %v: %w", r.config.DefaultTimeout, err))
		}
		r.logger.Error("chromedp rendering failed", zap.Error(err))
		return nil, NewBuildError(EngineChromium, err)
	}
	if len(pdfData) == 0 {
		return nil, NewBuildError(EngineChromium, errors.New("generated PDF is empty"))
	}

	r.logger.Debug("PDF rendered",
		zap.String("engine", EngineChromium),
		zap.String("size", string(size)),
		zap.Int("bytes", len(pdfData)),
		zap.Duration("duration", time.Since(startTime)))

	return pdfData, nil
}

// Close releases resources held by the renderer
func (r *ChromiumRenderer) Close() error {
	if r.allocCancel != nil {
		r.allocCancel()
	}
	return nil
}

// printParams holds the paper size in inches, as Chrome expects
type printParams struct {
	paperWidth  float64
	paperHeight float64
}

func buildPrintParams(size card.PaperSize) printParams {
	g := size.Geometry()
	return printParams{
		paperWidth:  g.Width / pointsPerInch,
		paperHeight: g.Height / pointsPerInch,
	}
}

type htmlBox struct {
	Left, Top, Width, Height float64
}

type htmlText struct {
	Text            string
	Left, Top, Size float64
	Bold            bool
	Color           string
}

type htmlCard struct {
	Fonts      template.CSS
	Title      string
	Width      float64
	Height     float64
	Background template.URL
	Image      htmlBox
	Panel      htmlBox
	PanelFill  float64
	Border     string
	Texts      []htmlText
}

var cardTemplate = template.Must(template.New("card").Parse(`<!DOCTYPE html>
<html><head><meta charset="UTF-8"><title>{{.Title}}</title>
<style>
{{.Fonts}}
@page { size: {{.Width}}pt {{.Height}}pt; margin: 0; }
html, body { margin: 0; padding: 0; }
.page { position: relative; width: {{.Width}}pt; height: {{.Height}}pt; overflow: hidden; font-family: 'GoSans', sans-serif; }
.bg { position: absolute; }
.panel { position: absolute; box-sizing: border-box; background: rgba(255,255,255,{{.PanelFill}}); border: 1pt solid {{.Border}}; }
.t { position: absolute; white-space: pre; line-height: 1; }
</style></head>
<body><div class="page">
{{- if .Background}}
<img class="bg" src="{{.Background}}" style="left:{{.Image.Left}}pt;top:{{.Image.Top}}pt;width:{{.Image.Width}}pt;height:{{.Image.Height}}pt">
{{- end}}
<div class="panel" style="left:{{.Panel.Left}}pt;top:{{.Panel.Top}}pt;width:{{.Panel.Width}}pt;height:{{.Panel.Height}}pt"></div>
{{- range .Texts}}
<div class="t" style="left:{{.Left}}pt;top:{{.Top}}pt;font-size:{{.Size}}pt;color:{{.Color}};{{if .Bold}}font-weight:bold;{{end}}">{{.Text}}</div>
{{- end}}
</div></body></html>`))

// buildHTML renders the layout plan as absolutely positioned HTML in points.
func (r *ChromiumRenderer) buildHTML(c card.Card, size card.PaperSize) (string, error) {
	l := PlanLayout(c, size, r.now(), newStandaloneMetrics())

	data := htmlCard{
		Fonts:     cardFontCSS,
		Title:     c.Headline,
		Width:     l.Width,
		Height:    l.Height,
		Panel:     toHTMLBox(l.Panel, l.Height),
		PanelFill: panelOpacity,
		Border:    cssGray(panelBorderGray),
	}

	if bg, err := decodeBackground(c.ImagePngBase64); err == nil {
		data.Background = template.URL(bg.dataURL())
		data.Image = toHTMLBox(CoverRect(bg.width, bg.height, l.Width, l.Height), l.Height)
	} else if !errors.Is(err, errNoBackground) {
		r.logger.Warn("Failed to decode background image, continuing without it", zap.Error(err))
	}

	runs := append([]TextRun{l.Headline}, l.Lines...)
	runs = append(runs, l.Footer)
	for _, run := range runs {
		data.Texts = append(data.Texts, htmlText{
			Text:  run.Text,
			Left:  pt(run.X),
			Top:   pt(l.Height - run.Y - run.Size*cardBaseline),
			Size:  run.Size,
			Bold:  run.Bold,
			Color: cssGray(run.Gray),
		})
	}

	var buf bytes.Buffer
	if err := cardTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render card html: %w", err)
	}
	return buf.String(), nil
}

func toHTMLBox(rect Rect, pageH float64) htmlBox {
	return htmlBox{Left: pt(rect.X), Top: pt(pageH - rect.Y - rect.H), Width: pt(rect.W), Height: pt(rect.H)}
}

// cssGray returns a hex color; html/template refuses parentheses in CSS values.
func cssGray(v float64) string {
	g := grayLevel(v)
	return fmt.Sprintf("#%02x%02x%02x", g, g, g)
}

// pt rounds to hundredths of a point
func pt(v float64) float64 {
	return math.Round(v*100) / 100
}
