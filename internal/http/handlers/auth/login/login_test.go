package login

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/content-gate/internal/lib/apperr"
	"github.com/magabrotheeeer/content-gate/internal/lib/metrics"
	"github.com/magabrotheeeer/content-gate/internal/services/auth"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Login(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	authMock := new(AuthServiceMock)
	handler := New(newNoopLogger(), authMock, metrics.New())

	tests := []struct {
		name           string
		requestBody    any
		mockToken      string
		mockErr        error
		callService    bool
		wantStatusCode int
		wantToken      string
		wantError      string
	}{
		{
			name:           "valid login",
			requestBody:    Request{Email: "ann@example.com", Password: "secret1"},
			mockToken:      "tok",
			callService:    true,
			wantStatusCode: http.StatusOK,
			wantToken:      "tok",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name:           "missing password",
			requestBody:    Request{Email: "ann@example.com"},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "field password is a required field",
		},
		{
			name:           "wrong credentials",
			requestBody:    Request{Email: "ann@example.com", Password: "bad"},
			mockErr:        auth.ErrInvalidCredentials,
			callService:    true,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "Invalid credentials!",
		},
		{
			name:           "service failure",
			requestBody:    Request{Email: "ann@example.com", Password: "secret1"},
			mockErr:        apperr.Internal(errors.New("db down")),
			callService:    true,
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock.ExpectedCalls = nil
			authMock.Calls = nil

			var buf bytes.Buffer
			if s, ok := tt.requestBody.(string); ok {
				buf.WriteString(s)
			} else {
				req := tt.requestBody.(Request)
				require.NoError(t, json.NewEncoder(&buf).Encode(req))
				if tt.callService {
					authMock.On("Login", mock.Anything, req.Email, req.Password).Return(tt.mockToken, tt.mockErr).Once()
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/login", &buf)
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			if tt.wantError != "" {
				assert.Equal(t, "Error", resp["status"])
				assert.Equal(t, tt.wantError, resp["message"])
			} else {
				assert.Equal(t, tt.wantToken, resp["token"])
			}
			authMock.AssertExpectations(t)
		})
	}
}
