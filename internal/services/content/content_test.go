package content_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/content-gate/internal/events"
	"github.com/magabrotheeeer/content-gate/internal/lib/apperr"
	"github.com/magabrotheeeer/content-gate/internal/models"
	"github.com/magabrotheeeer/content-gate/internal/services/content"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateContent(ctx context.Context, c models.Content) (*models.Content, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Content), args.Error(1)
}

func (m *RepoMock) ListContents(ctx context.Context, includePremium bool) ([]*models.Content, error) {
	args := m.Called(ctx, includePremium)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Content), args.Error(1)
}

type EntitlementMock struct{ mock.Mock }

func (m *EntitlementMock) IsSubscriber(ctx context.Context, callerID *int64) (bool, error) {
	args := m.Called(ctx, callerID)
	return args.Bool(0), args.Error(1)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) SubscriptionCreated(ctx context.Context, e events.SubscriptionCreated) error {
	return m.Called(ctx, e).Error(0)
}

func (m *PublisherMock) ContentPublished(ctx context.Context, e events.ContentPublished) error {
	return m.Called(ctx, e).Error(0)
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_Upload(t *testing.T) {
	tests := []struct {
		name       string
		input      content.UploadInput
		setupMocks func(r *RepoMock, p *PublisherMock)
		wantSlug   string
		wantType   models.ContentType
		wantKind   apperr.Kind
	}{
		{
			name:  "event video",
			input: content.UploadInput{Title: "Hello   World", URL: "https://cdn.example.com/1.mp4", IsPremium: true},
			setupMocks: func(r *RepoMock, p *PublisherMock) {
				r.On("CreateContent", mock.Anything, mock.MatchedBy(func(c models.Content) bool {
					return c.Slug == "hello-world" &&
						c.Type == models.ContentEventVideo &&
						c.Status == models.ContentStatusPublished &&
						c.IsPremium && c.PublishedAt != nil
				})).Return(&models.Content{ID: 1, Title: "Hello   World", Slug: "hello-world", Type: models.ContentEventVideo, IsPremium: true}, nil).Once()
				p.On("ContentPublished", mock.Anything, mock.MatchedBy(func(e events.ContentPublished) bool {
					return e.ContentID == 1 && e.Slug == "hello-world"
				})).Return(nil).Once()
			},
			wantSlug: "hello-world",
			wantType: models.ContentEventVideo,
		},
		{
			name:  "short video, publisher failure ignored",
			input: content.UploadInput{Title: "Quick Tip", URL: "https://cdn.example.com/2.mp4", IsShort: true},
			setupMocks: func(r *RepoMock, p *PublisherMock) {
				r.On("CreateContent", mock.Anything, mock.MatchedBy(func(c models.Content) bool {
					return c.Type == models.ContentShort && c.Slug == "quick-tip"
				})).Return(&models.Content{ID: 2, Slug: "quick-tip", Type: models.ContentShort}, nil).Once()
				p.On("ContentPublished", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()
			},
			wantSlug: "quick-tip",
			wantType: models.ContentShort,
		},
		{
			name:  "surrounding whitespace kept",
			input: content.UploadInput{Title: "  Big Event ", URL: "https://cdn.example.com/5.mp4"},
			setupMocks: func(r *RepoMock, p *PublisherMock) {
				r.On("CreateContent", mock.Anything, mock.MatchedBy(func(c models.Content) bool {
					return c.Title == "  Big Event " && c.Slug == "-big-event-"
				})).Return(&models.Content{ID: 5, Title: "  Big Event ", Slug: "-big-event-", Type: models.ContentEventVideo}, nil).Once()
				p.On("ContentPublished", mock.Anything, mock.Anything).Return(nil).Once()
			},
			wantSlug: "-big-event-",
			wantType: models.ContentEventVideo,
		},
		{
			name:       "missing title",
			input:      content.UploadInput{Title: "  ", URL: "https://cdn.example.com/3.mp4"},
			setupMocks: func(_ *RepoMock, _ *PublisherMock) {},
			wantKind:   apperr.KindInvalidArgument,
		},
		{
			name:  "storage failure",
			input: content.UploadInput{Title: "T", URL: "https://cdn.example.com/4.mp4"},
			setupMocks: func(r *RepoMock, _ *PublisherMock) {
				r.On("CreateContent", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()
			},
			wantKind: apperr.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			pub := new(PublisherMock)
			tt.setupMocks(repo, pub)
			svc := content.NewService(repo, new(EntitlementMock), pub, newLogger())

			got, err := svc.Upload(context.Background(), tt.input)
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantSlug, got.Slug)
				assert.Equal(t, tt.wantType, got.Type)
			}
			repo.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestService_ListVideos(t *testing.T) {
	public := []*models.Content{
		{ID: 1, Type: models.ContentShort, IsPremium: true},
		{ID: 2, Type: models.ContentEventVideo},
	}
	all := append([]*models.Content{}, public...)
	all = append(all, &models.Content{ID: 3, Type: models.ContentEventVideo, IsPremium: true})
	uid := int64(5)

	tests := []struct {
		name       string
		callerID   *int64
		setupMocks func(r *RepoMock, e *EntitlementMock)
		wantIDs    []models.ID
		wantKind   apperr.Kind
	}{
		{
			name:     "anonymous",
			callerID: nil,
			setupMocks: func(r *RepoMock, e *EntitlementMock) {
				e.On("IsSubscriber", mock.Anything, (*int64)(nil)).Return(false, nil).Once()
				r.On("ListContents", mock.Anything, false).Return(public, nil).Once()
			},
			wantIDs: []models.ID{1, 2},
		},
		{
			name:     "subscriber",
			callerID: &uid,
			setupMocks: func(r *RepoMock, e *EntitlementMock) {
				e.On("IsSubscriber", mock.Anything, &uid).Return(true, nil).Once()
				r.On("ListContents", mock.Anything, true).Return(all, nil).Once()
			},
			wantIDs: []models.ID{1, 2, 3},
		},
		{
			name:     "store returning premium to non subscriber is filtered",
			callerID: &uid,
			setupMocks: func(r *RepoMock, e *EntitlementMock) {
				e.On("IsSubscriber", mock.Anything, &uid).Return(false, nil).Once()
				r.On("ListContents", mock.Anything, false).Return(all, nil).Once()
			},
			wantIDs: []models.ID{1, 2},
		},
		{
			name:     "entitlement failure",
			callerID: &uid,
			setupMocks: func(_ *RepoMock, e *EntitlementMock) {
				e.On("IsSubscriber", mock.Anything, &uid).Return(false, errors.New("db down")).Once()
			},
			wantKind: apperr.KindInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			ent := new(EntitlementMock)
			tt.setupMocks(repo, ent)
			svc := content.NewService(repo, ent, events.Nop{}, newLogger())

			got, err := svc.ListVideos(context.Background(), tt.callerID)
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			ids := make([]models.ID, 0, len(got))
			for _, c := range got {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			repo.AssertExpectations(t)
			ent.AssertExpectations(t)
		})
	}
}
