package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned by NewCardMetrics when no meter is supplied.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// CardMetrics counts card generation, checkout and export events.
// It satisfies the recorder ports of the application services.
type CardMetrics struct {
	logger *zap.Logger

	textGenerated     *Counter
	imageGenerated    *Counter
	contentRejected   *Counter
	checkoutCreated   *Counter
	verifications     *Counter
	pdfExported       *Counter
	operationDuration *Histogram
}

// CardMetricsConfig configures NewCardMetrics.
type CardMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

func NewCardMetrics(cfg CardMetricsConfig) (*CardMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &CardMetrics{logger: logger}
	counters := []struct {
		dst              **Counter
		name, desc, unit string
	}{
		{&m.textGenerated, "greetingsmith_text_generated_total", "Card text generations by style and provider", "{generations}"},
		{&m.imageGenerated, "greetingsmith_image_generated_total", "Card image generations by mode", "{images}"},
		{&m.contentRejected, "greetingsmith_content_rejected_total", "Requests refused by content moderation", "{requests}"},
		{&m.checkoutCreated, "greetingsmith_checkout_created_total", "Checkout sessions created by variant", "{sessions}"},
		{&m.verifications, "greetingsmith_payment_verification_total", "Payment verifications by outcome", "{verifications}"},
		{&m.pdfExported, "greetingsmith_pdf_exported_total", "PDF exports by paper size and engine", "{documents}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.desc, c.unit)
		if err != nil {
			return nil, err
		}
		*c.dst = counter
	}

	var err error
	m.operationDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "greetingsmith_operation_duration_seconds",
		Description: "Duration of generation and export operations",
		Unit:        "s",
		Boundaries:  GenerationDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *CardMetrics) RecordTextGenerated(ctx context.Context, style, provider string) {
	m.textGenerated.Inc(ctx, AttrStyle.String(style), AttrProvider.String(provider))
}

func (m *CardMetrics) RecordImageGenerated(ctx context.Context, mode string) {
	m.imageGenerated.Inc(ctx, AttrMode.String(mode))
}

// RecordContentRejected counts a moderation refusal for operation ("text", "image" or "export").
func (m *CardMetrics) RecordContentRejected(ctx context.Context, operation string) {
	m.contentRejected.Inc(ctx, AttrOperation.String(operation))
}

func (m *CardMetrics) RecordCheckoutCreated(ctx context.Context, variant string) {
	m.checkoutCreated.Inc(ctx, AttrVariant.String(variant))
}

// RecordVerification counts a verification outcome: "ok", a failure reason,
// or a "webhook_" prefixed payment status.
func (m *CardMetrics) RecordVerification(ctx context.Context, outcome string) {
	m.verifications.Inc(ctx, AttrOutcome.String(outcome))
}

func (m *CardMetrics) RecordPDFExported(ctx context.Context, paperSize, engine string) {
	m.pdfExported.Inc(ctx, AttrPaperSize.String(paperSize), AttrEngine.String(engine))
}

func (m *CardMetrics) RecordDuration(ctx context.Context, operation string, d time.Duration) {
	m.operationDuration.RecordDuration(ctx, d, AttrOperation.String(operation))
}
