package subscribe

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/content-gate/internal/http/middlewarectx"
	"github.com/magabrotheeeer/content-gate/internal/lib/apperr"
	"github.com/magabrotheeeer/content-gate/internal/lib/metrics"
	"github.com/magabrotheeeer/content-gate/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Subscribe(ctx context.Context, caller *models.User, targetUserID int64, planName string) (*models.Subscription, error) {
	args := m.Called(ctx, caller, targetUserID, planName)
	s, _ := args.Get(0).(*models.Subscription)
	return s, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newRequest(t *testing.T, body string, caller *models.User) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/subscribe", bytes.NewBufferString(body))
	ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
	if caller != nil {
		ctx = middlewarectx.WithUser(ctx, caller)
	}
	return req.WithContext(ctx)
}

func TestSubscribeHandler_ServeHTTP(t *testing.T) {
	caller := &models.User{ID: 7, Role: models.RoleUser}
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	sub := &models.Subscription{
		ID: 1, UserID: 7, PlanID: 1, Plan: "monthly",
		StartDate: start, EndDate: start.AddDate(0, 1, 0), Status: models.SubscriptionActive,
	}

	tests := []struct {
		name        string
		body        string
		caller      *models.User
		setup       func(m *ServiceMock)
		wantStatus  int
		wantMessage string
	}{
		{
			name:   "created with numeric id",
			body:   `{"userId":7,"plan":"monthly"}`,
			caller: caller,
			setup: func(m *ServiceMock) {
				m.On("Subscribe", mock.Anything, caller, int64(7), "monthly").Return(sub, nil).Once()
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:   "created with string id",
			body:   `{"userId":"7","plan":"monthly"}`,
			caller: caller,
			setup: func(m *ServiceMock) {
				m.On("Subscribe", mock.Anything, caller, int64(7), "monthly").Return(sub, nil).Once()
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:        "no user in context",
			body:        `{"userId":7,"plan":"monthly"}`,
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Token not provided!",
		},
		{
			name:        "invalid json",
			body:        `{"userId":`,
			caller:      caller,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "invalid request body",
		},
		{
			name:        "missing plan",
			body:        `{"userId":7}`,
			caller:      caller,
			wantStatus:  http.StatusBadRequest,
			wantMessage: "field plan is a required field",
		},
		{
			name:   "unknown plan",
			body:   `{"userId":7,"plan":"weekly"}`,
			caller: caller,
			setup: func(m *ServiceMock) {
				m.On("Subscribe", mock.Anything, caller, int64(7), "weekly").
					Return(nil, apperr.InvalidArgument("Invalid plan.")).Once()
			},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid plan.",
		},
		{
			name:   "other user",
			body:   `{"userId":8,"plan":"annual"}`,
			caller: caller,
			setup: func(m *ServiceMock) {
				m.On("Subscribe", mock.Anything, caller, int64(8), "annual").
					Return(nil, apperr.Forbidden("Access denied!")).Once()
			},
			wantStatus:  http.StatusForbidden,
			wantMessage: "Access denied!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.setup != nil {
				tt.setup(svc)
			}
			h := New(newNoopLogger(), svc, metrics.New())
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, newRequest(t, tt.body, tt.caller))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, body["message"])
			} else {
				assert.Equal(t, "7", body["user_id"])
				assert.Equal(t, "ACTIVE", body["status"])
				assert.Equal(t, "2024-02-15T00:00:00Z", body["end_date"])
			}
			svc.AssertExpectations(t)
		})
	}
}
