package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/greetingsmith/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
		expectedDetail string
	}{
		{
			name:           "input error",
			err:            shared.ErrInvalidInput,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   shared.CodeInvalidInput,
		},
		{
			name:           "details are kept",
			err:            shared.NewDomainError(shared.CodeTokenExpired, "Invalid or expired token").WithDetails("Token expired"),
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   shared.CodeTokenExpired,
			expectedDetail: "Token expired",
		},
		{
			name:           "service unavailable",
			err:            shared.NewDomainError(shared.CodeServiceUnavailable, "Payment system not configured"),
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   shared.CodeServiceUnavailable,
		},
		{
			name:           "wrapped domain error",
			err:            errors.Join(errors.New("context"), shared.ErrUnauthorized),
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   shared.CodeUnauthorized,
		},
		{
			name:           "plain error",
			err:            errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   shared.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			r := newTestRouter()
			r.GET("/", func(c *gin.Context) { h.HandleError(c, tt.err) })

			w := performRequest(r, http.MethodGet, "/", nil, "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			resp := decodeError(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.expectedCode, resp.Error.Code)
			assert.Equal(t, tt.expectedDetail, resp.Error.Details)
			assert.NotEmpty(t, resp.RequestID)
		})
	}
}

func TestBaseHandler_BadRequest(t *testing.T) {
	h := &BaseHandler{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h.BadRequest(c, shared.CodeValidationRequired, "Missing meta information")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "Missing meta information", resp.Error.Message)
	assert.Empty(t, resp.RequestID)
}
