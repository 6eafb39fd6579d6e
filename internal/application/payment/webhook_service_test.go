package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/greetingsmith/backend/internal/domain/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryDedup struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func (d *memoryDedup) MarkProcessed(_ context.Context, id string, _ time.Duration) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen == nil {
		d.seen = map[string]bool{}
	}
	if d.seen[id] {
		return false, nil
	}
	d.seen[id] = true
	return true, nil
}

func completedEvent(id string) *payment.Event {
	return &payment.Event{
		ID:   id,
		Type: "checkout.session.completed",
		Session: &payment.Session{
			ID:            "cs_test_1",
			PaymentStatus: "paid",
			Metadata:      map[string]string{"product": testProduct},
		},
	}
}

func TestWebhookService_Deduplication(t *testing.T) {
	payload := []byte(`{}`)

	t.Run("redelivery is acknowledged once", func(t *testing.T) {
		gw := new(MockGateway)
		metrics := &recordingMetrics{}
		gw.On("ParseWebhookEvent", payload, "sig").Return(completedEvent("evt_dup"), nil)

		svc := NewWebhookService(WebhookServiceConfig{
			Gateway: gw, Product: testProduct, Dedup: &memoryDedup{}, Metrics: metrics,
		})

		first, err := svc.ProcessWebhook(context.Background(), payload, "sig")
		require.NoError(t, err)
		second, err := svc.ProcessWebhook(context.Background(), payload, "sig")
		require.NoError(t, err)

		assert.True(t, first.Processed)
		assert.False(t, second.Processed)
		assert.True(t, second.Duplicate)
		assert.Equal(t, []string{"webhook_paid"}, metrics.verifications)
	})

	t.Run("store failure does not drop the event", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("ParseWebhookEvent", payload, "sig").Return(completedEvent("evt_err"), nil)

		svc := NewWebhookService(WebhookServiceConfig{
			Gateway: gw, Product: testProduct, Dedup: &memoryDedup{err: errors.New("redis down")},
		})
		result, err := svc.ProcessWebhook(context.Background(), payload, "sig")

		require.NoError(t, err)
		assert.True(t, result.Processed)
	})
}

func TestWebhookService_ProcessWebhook(t *testing.T) {
	payload := []byte(`{}`)

	t.Run("completed checkout is processed", func(t *testing.T) {
		gw := new(MockGateway)
		metrics := &recordingMetrics{}
		gw.On("ParseWebhookEvent", payload, "sig").Return(&payment.Event{
			ID:   "evt_1",
			Type: "checkout.session.completed",
			Session: &payment.Session{
				ID:            "cs_test_1",
				PaymentStatus: "paid",
				Metadata:      map[string]string{"product": testProduct},
			},
		}, nil)

		svc := NewWebhookService(WebhookServiceConfig{Gateway: gw, Product: testProduct, Metrics: metrics})
		result, err := svc.ProcessWebhook(context.Background(), payload, "sig")

		require.NoError(t, err)
		assert.True(t, result.Processed)
		assert.Equal(t, "evt_1", result.EventID)
		assert.Equal(t, []string{"webhook_paid"}, metrics.verifications)
	})

	t.Run("other events are acknowledged", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("ParseWebhookEvent", payload, "sig").Return(&payment.Event{ID: "evt_2", Type: "charge.refunded"}, nil)

		svc := NewWebhookService(WebhookServiceConfig{Gateway: gw, Product: testProduct})
		result, err := svc.ProcessWebhook(context.Background(), payload, "sig")

		require.NoError(t, err)
		assert.False(t, result.Processed)
		assert.Equal(t, "charge.refunded", result.EventType)
	})

	t.Run("bad signature", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("ParseWebhookEvent", payload, "bad").Return(nil, fmt.Errorf("%w: mismatch", payment.ErrInvalidSignature))

		svc := NewWebhookService(WebhookServiceConfig{Gateway: gw, Product: testProduct})
		_, err := svc.ProcessWebhook(context.Background(), payload, "bad")

		assert.ErrorIs(t, err, ErrWebhookSignature)
	})

	t.Run("not configured", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("ParseWebhookEvent", payload, "").Return(nil, payment.ErrNotConfigured)

		svc := NewWebhookService(WebhookServiceConfig{Gateway: gw, Product: testProduct})
		_, err := svc.ProcessWebhook(context.Background(), payload, "")

		assert.ErrorIs(t, err, ErrWebhookNotConfigured)
	})
}
