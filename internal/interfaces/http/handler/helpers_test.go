package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/greetingsmith/backend/internal/domain/payment"
	"github.com/greetingsmith/backend/internal/infrastructure/auth"
	"github.com/greetingsmith/backend/internal/infrastructure/config"
	"github.com/greetingsmith/backend/internal/interfaces/http/dto"
	"github.com/greetingsmith/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
)

const testProduct = "greetingsmith_unlock"

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTokenService(clock *testClock) *auth.UnlockTokenService {
	return auth.NewUnlockTokenService(config.UnlockConfig{
		Secret:  "handler-test-secret",
		TTL:     15 * time.Minute,
		Product: testProduct,
	}, auth.WithClock(clock.Now))
}

// fakeGateway is an in-memory payment.Gateway
type fakeGateway struct {
	configured bool
	created    *payment.Session
	createErr  error
	session    *payment.Session
	getErr     error
	event      *payment.Event
	parseErr   error
}

func (g *fakeGateway) Configured() bool { return g.configured }

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, _ payment.CheckoutRequest) (*payment.Session, error) {
	if !g.configured {
		return nil, payment.ErrNotConfigured
	}
	return g.created, g.createErr
}

func (g *fakeGateway) GetCheckoutSession(_ context.Context, _ string) (*payment.Session, error) {
	if !g.configured {
		return nil, payment.ErrNotConfigured
	}
	return g.session, g.getErr
}

func (g *fakeGateway) ParseWebhookEvent(_ []byte, _ string) (*payment.Event, error) {
	if !g.configured {
		return nil, payment.ErrNotConfigured
	}
	return g.event, g.parseErr
}

// newTestRouter returns an engine with request ids, the way the server runs handlers.
func newTestRouter() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	return r
}

func performRequest(r http.Handler, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	require.NotNil(t, resp.Error, w.Body.String())
	return resp
}
