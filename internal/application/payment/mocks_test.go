package payment

import (
	"context"

	"github.com/greetingsmith/backend/internal/domain/payment"
	"github.com/stretchr/testify/mock"
)

// MockGateway is a mock implementation of payment.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Configured() bool {
	return m.Called().Bool(0)
}

func (m *MockGateway) CreateCheckoutSession(ctx context.Context, req payment.CheckoutRequest) (*payment.Session, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Session), args.Error(1)
}

func (m *MockGateway) GetCheckoutSession(ctx context.Context, sessionID string) (*payment.Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Session), args.Error(1)
}

func (m *MockGateway) ParseWebhookEvent(payload []byte, signature string) (*payment.Event, error) {
	args := m.Called(payload, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Event), args.Error(1)
}

// MockSigner is a mock implementation of TokenSigner
type MockSigner struct {
	mock.Mock
}

func (m *MockSigner) Sign(sessionID, product string) (string, error) {
	args := m.Called(sessionID, product)
	return args.String(0), args.Error(1)
}

// recordingMetrics captures recorded outcomes
type recordingMetrics struct {
	checkouts     []string
	verifications []string
}

func (r *recordingMetrics) RecordCheckoutCreated(_ context.Context, variant string) {
	r.checkouts = append(r.checkouts, variant)
}

func (r *recordingMetrics) RecordVerification(_ context.Context, outcome string) {
	r.verifications = append(r.verifications, outcome)
}
