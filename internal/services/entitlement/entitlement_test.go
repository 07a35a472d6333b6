package entitlement_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/content-gate/internal/models"
	"github.com/magabrotheeeer/content-gate/internal/services/entitlement"
)

type SubsMock struct{ mock.Mock }

func (m *SubsMock) HasActiveSubscription(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func ptr(v int64) *int64 { return &v }

var (
	shortFree     = &models.Content{ID: 1, Type: models.ContentShort}
	shortPremium  = &models.Content{ID: 2, Type: models.ContentShort, IsPremium: true}
	eventFree     = &models.Content{ID: 3, Type: models.ContentEventVideo}
	eventPremium  = &models.Content{ID: 4, Type: models.ContentEventVideo, IsPremium: true}
	allItems      = []*models.Content{shortFree, shortPremium, eventFree, eventPremium}
	publicItemIDs = []models.ID{1, 2, 3}
)

func ids(items []*models.Content) []models.ID {
	res := make([]models.ID, 0, len(items))
	for _, c := range items {
		res = append(res, c.ID)
	}
	return res
}

func TestAllowed_TruthTable(t *testing.T) {
	tests := []struct {
		name       string
		content    *models.Content
		subscriber bool
		want       bool
	}{
		{"short free anonymous", shortFree, false, true},
		{"short premium anonymous", shortPremium, false, true},
		{"event free anonymous", eventFree, false, true},
		{"event premium anonymous", eventPremium, false, false},
		{"short free subscriber", shortFree, true, true},
		{"short premium subscriber", shortPremium, true, true},
		{"event free subscriber", eventFree, true, true},
		{"event premium subscriber", eventPremium, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, entitlement.Allowed(tt.content, tt.subscriber))
		})
	}
}

func TestEvaluator_CanAccess(t *testing.T) {
	tests := []struct {
		name       string
		callerID   *int64
		content    *models.Content
		setupMocks func(m *SubsMock)
		want       bool
		wantErr    bool
	}{
		{
			name:       "short skips subscription lookup",
			callerID:   ptr(1),
			content:    shortPremium,
			setupMocks: func(_ *SubsMock) {},
			want:       true,
		},
		{
			name:       "free event skips subscription lookup",
			callerID:   nil,
			content:    eventFree,
			setupMocks: func(_ *SubsMock) {},
			want:       true,
		},
		{
			name:       "anonymous premium denied",
			callerID:   nil,
			content:    eventPremium,
			setupMocks: func(_ *SubsMock) {},
			want:       false,
		},
		{
			name:     "subscriber premium allowed",
			callerID: ptr(7),
			content:  eventPremium,
			setupMocks: func(m *SubsMock) {
				m.On("HasActiveSubscription", mock.Anything, int64(7)).Return(true, nil).Once()
			},
			want: true,
		},
		{
			name:     "non subscriber premium denied",
			callerID: ptr(8),
			content:  eventPremium,
			setupMocks: func(m *SubsMock) {
				m.On("HasActiveSubscription", mock.Anything, int64(8)).Return(false, nil).Once()
			},
			want: false,
		},
		{
			name:     "storage error",
			callerID: ptr(9),
			content:  eventPremium,
			setupMocks: func(m *SubsMock) {
				m.On("HasActiveSubscription", mock.Anything, int64(9)).Return(false, errors.New("db down")).Once()
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs := new(SubsMock)
			tt.setupMocks(subs)
			e := entitlement.New(subs)

			got, err := e.CanAccess(context.Background(), tt.callerID, tt.content)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "entitlement.IsSubscriber")
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			subs.AssertExpectations(t)
		})
	}
}

func TestEvaluator_Filter(t *testing.T) {
	t.Run("anonymous sees public items", func(t *testing.T) {
		subs := new(SubsMock)
		got, err := entitlement.New(subs).Filter(context.Background(), nil, allItems)
		require.NoError(t, err)
		assert.Equal(t, publicItemIDs, ids(got))
		subs.AssertNotCalled(t, "HasActiveSubscription", mock.Anything, mock.Anything)
	})

	t.Run("subscriber sees everything with one lookup", func(t *testing.T) {
		subs := new(SubsMock)
		subs.On("HasActiveSubscription", mock.Anything, int64(5)).Return(true, nil).Once()

		got, err := entitlement.New(subs).Filter(context.Background(), ptr(5), allItems)
		require.NoError(t, err)
		assert.Equal(t, []models.ID{1, 2, 3, 4}, ids(got))
		subs.AssertExpectations(t)
	})

	t.Run("lookup failure", func(t *testing.T) {
		subs := new(SubsMock)
		subs.On("HasActiveSubscription", mock.Anything, int64(5)).Return(false, errors.New("boom")).Once()

		_, err := entitlement.New(subs).Filter(context.Background(), ptr(5), allItems)
		require.Error(t, err)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, entitlement.FilterFor(nil, true))
	})
}
