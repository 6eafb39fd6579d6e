package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	paymentapp "github.com/greetingsmith/backend/internal/application/payment"
	"github.com/greetingsmith/backend/internal/domain/payment"
	"github.com/greetingsmith/backend/internal/infrastructure/logger"
	"github.com/greetingsmith/backend/internal/interfaces/http/dto"
	"github.com/greetingsmith/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// PaymentHandler serves checkout creation and payment verification
type PaymentHandler struct {
	BaseHandler
	checkoutService     *paymentapp.CheckoutService
	verificationService *paymentapp.VerificationService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(checkoutService *paymentapp.CheckoutService, verificationService *paymentapp.VerificationService) *PaymentHandler {
	return &PaymentHandler{
		checkoutService:     checkoutService,
		verificationService: verificationService,
	}
}

// CreateCheckout handles POST /api/pay/checkout. An empty body buys the
// default variant.
func (h *PaymentHandler) CreateCheckout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.checkoutService.CreateCheckout(c.Request.Context(), req.Variant)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.CheckoutResponse{CheckoutURL: result.CheckoutURL, SessionID: result.SessionID})
}

// VerifyPayment handles GET /api/pay/verify?session_id=. Failures answer
// {ok:false, error:<reason>} instead of the error envelope.
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	token, err := h.verificationService.Verify(c.Request.Context(), c.Query("session_id"))
	if err != nil {
		reason := payment.ReasonVerificationFailed
		var verr *payment.VerificationError
		if errors.As(err, &verr) {
			reason = verr.Reason
		}
		status := dto.GetVerifyStatus(reason)
		if status >= http.StatusInternalServerError {
			logger.GetGinLogger(c).Error("Payment verification failed",
				zap.String("reason", string(reason)),
				zap.Error(err))
		}
		c.JSON(status, dto.VerifyResponse{OK: false, Error: string(reason)})
		return
	}

	c.JSON(http.StatusOK, dto.VerifyResponse{OK: true, UnlockToken: token})
}
