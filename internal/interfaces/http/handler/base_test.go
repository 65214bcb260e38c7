package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopkeeper/backend/internal/domain/shared"
	"github.com/shopkeeper/backend/internal/interfaces/http/dto"
	"github.com/shopkeeper/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(method, path string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, nil)
	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return *resp.Error
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*gin.Context)
		expectedID string
	}{
		{
			name:       "from context",
			setup:      func(c *gin.Context) { c.Set(middleware.RequestIDKey, "ctx-request-id") },
			expectedID: "ctx-request-id",
		},
		{
			name:       "from header when context empty",
			setup:      func(c *gin.Context) { c.Request.Header.Set(middleware.RequestIDHeader, "header-request-id") },
			expectedID: "header-request-id",
		},
		{
			name:       "empty when not set",
			setup:      func(c *gin.Context) {},
			expectedID: "",
		},
		{
			name: "context takes precedence over header",
			setup: func(c *gin.Context) {
				c.Set(middleware.RequestIDKey, "ctx-id")
				c.Request.Header.Set(middleware.RequestIDHeader, "header-id")
			},
			expectedID: "ctx-id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestContext(http.MethodGet, "/")
			tt.setup(c)
			assert.Equal(t, tt.expectedID, getRequestID(c))
		})
	}
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "validation",
			err:         shared.NewValidationError("Counted quantity cannot be negative"),
			wantStatus:  http.StatusBadRequest,
			wantCode:    dto.ErrCodeValidation,
			wantMessage: "Counted quantity cannot be negative",
		},
		{
			name:        "invalid state",
			err:         shared.NewInvalidStateError("Session is already finalized"),
			wantStatus:  http.StatusUnprocessableEntity,
			wantCode:    dto.ErrCodeInvalidState,
			wantMessage: "Session is already finalized",
		},
		{
			name:       "not found",
			err:        shared.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   dto.ErrCodeNotFound,
		},
		{
			name:       "wrapped not found",
			err:        fmt.Errorf("load session: %w", shared.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   dto.ErrCodeNotFound,
		},
		{
			name:       "concurrency conflict",
			err:        shared.ErrConcurrencyConflict,
			wantStatus: http.StatusConflict,
			wantCode:   dto.ErrCodeConcurrencyConflict,
		},
		{
			name:       "dependency failure",
			err:        shared.NewDependencyError("read quantity", errors.New("connection refused")),
			wantStatus: http.StatusBadGateway,
			wantCode:   dto.ErrCodeDependencyFailure,
		},
		{
			name:        "plain error hides its message",
			err:         errors.New("pq: relation does not exist"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    dto.ErrCodeInternal,
			wantMessage: "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext(http.MethodPost, "/api/v1/stock-takes")
			c.Set(middleware.RequestIDKey, "req-1")
			h := &BaseHandler{}

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			info := decodeError(t, w)
			assert.Equal(t, tt.wantCode, info.Code)
			assert.Equal(t, "req-1", info.RequestID)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, info.Message)
			}
		})
	}
}

func TestBaseHandler_HandleError_Nil(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/")
	h := &BaseHandler{}

	h.HandleError(c, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestBaseHandler_ParseID(t *testing.T) {
	h := &BaseHandler{}

	t.Run("valid", func(t *testing.T) {
		id := uuid.New()
		c, _ := newTestContext(http.MethodGet, "/")
		c.Params = gin.Params{{Key: "id", Value: id.String()}}

		got, ok := h.ParseID(c, "id")

		assert.True(t, ok)
		assert.Equal(t, id, got)
	})

	t.Run("invalid", func(t *testing.T) {
		c, w := newTestContext(http.MethodGet, "/")
		c.Params = gin.Params{{Key: "id", Value: "abc"}}

		got, ok := h.ParseID(c, "id")

		assert.False(t, ok)
		assert.Equal(t, uuid.Nil, got)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid id format", decodeError(t, w).Message)
	})
}

func TestBaseHandler_SuccessWithMeta(t *testing.T) {
	c, w := newTestContext(http.MethodGet, "/")
	h := &BaseHandler{}

	h.SuccessWithMeta(c, []string{"a", "b"}, 45, 2, 20)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(45), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}
