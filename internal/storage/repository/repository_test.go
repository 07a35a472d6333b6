package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/magabrotheeeer/content-gate/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "no rows", err: sql.ErrNoRows, want: ErrNotFound},
		{name: "unique violation", err: &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "idx_users_email"}, want: ErrAlreadyExists},
		{name: "foreign key violation", err: &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}, want: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tt.err), tt.want)
		})
	}

	other := errors.New("boom")
	assert.Equal(t, other, mapError(other))
}

func TestStorage_Users(t *testing.T) {
	storage := setupTestDatabase(t)
	ctx := context.Background()

	created, err := storage.CreateUser(ctx, models.User{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "ada@example.com",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	assert.Positive(t, created.ID.Int64())
	assert.Equal(t, models.RoleUser, created.Role)

	_, err = storage.CreateUser(ctx, models.User{
		FirstName: "Other", LastName: "Ada", Email: "ada@example.com", PasswordHash: "hash",
	})
	require.ErrorIs(t, err, ErrAlreadyExists)

	got, err := storage.GetUser(ctx, created.ID.Int64())
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, "hash", got.PasswordHash)

	byEmail, err := storage.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = storage.GetUser(ctx, 999999)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = storage.GetUserByEmail(ctx, "missing@example.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStorage_Subscriptions(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	userID := factory.CreateUser(t, "sub@example.com", "USER")

	active, err := storage.HasActiveSubscription(ctx, userID)
	require.NoError(t, err)
	assert.False(t, active)

	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	sub, err := storage.CreateSubscription(ctx, models.Subscription{
		UserID:    models.ID(userID),
		PlanID:    2,
		Plan:      "annual",
		StartDate: start,
		EndDate:   start.AddDate(0, 12, 0),
		Status:    models.SubscriptionActive,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ID(userID), sub.UserID)
	assert.True(t, sub.EndDate.Equal(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)))

	active, err = storage.HasActiveSubscription(ctx, userID)
	require.NoError(t, err)
	assert.True(t, active)

	list, err := storage.ListSubscriptionsByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "annual", list[0].Plan)

	_, err = storage.CreateSubscription(ctx, models.Subscription{
		UserID: 999999, PlanID: 1, Plan: "monthly", StartDate: start, EndDate: start, Status: models.SubscriptionActive,
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStorage_HasActiveSubscription_IgnoresInactive(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := NewTestDataFactory(storage)

	userID := factory.CreateUser(t, "old@example.com", "USER")
	factory.CreateSubscription(t, userID, "EXPIRED")
	factory.CreateSubscription(t, userID, "CANCELED")

	active, err := storage.HasActiveSubscription(context.Background(), userID)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestStorage_Contents(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	now := time.Now().UTC()
	created, err := storage.CreateContent(ctx, models.Content{
		Title:       "Keynote 2024",
		Slug:        "keynote-2024",
		Type:        models.ContentEventVideo,
		VideoURL:    "https://cdn.example.com/keynote.mp4",
		IsPremium:   true,
		Status:      models.ContentStatusPublished,
		PublishedAt: &now,
	})
	require.NoError(t, err)
	require.NotNil(t, created.PublishedAt)
	assert.Equal(t, "keynote-2024", created.Slug)

	factory.CreateContent(t, "short premium", "SHORT", true)
	factory.CreateContent(t, "free event", "EVENT_VIDEO", false)

	public, err := storage.ListContents(ctx, false)
	require.NoError(t, err)
	assert.Len(t, public, 2)
	for _, c := range public {
		assert.True(t, c.Type == models.ContentShort || !c.IsPremium)
	}

	all, err := storage.ListContents(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestStorage_Views(t *testing.T) {
	storage := setupTestDatabase(t)
	factory := NewTestDataFactory(storage)
	ctx := context.Background()

	userID := factory.CreateUser(t, "viewer@example.com", "USER")
	factory.CreateSubscription(t, userID, "ACTIVE")
	first := factory.CreateContent(t, "first", "SHORT", false)
	second := factory.CreateContent(t, "second", "EVENT_VIDEO", true)
	factory.CreateView(t, userID, first)
	factory.CreateView(t, userID, first)
	factory.CreateView(t, userID, second)

	activeRows, err := storage.ActiveSubscriptionsView(ctx)
	require.NoError(t, err)
	require.Len(t, activeRows, 1)
	assert.Equal(t, "viewer@example.com", activeRows[0]["email"])

	popular, err := storage.PopularContentsView(ctx, 10)
	require.NoError(t, err)
	require.Len(t, popular, 2)
	assert.Equal(t, "first", popular[0]["title"])
	assert.Equal(t, "2", popular[0]["view_count"])

	stats, err := storage.UserViewStatsView(ctx, userID)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "3", stats[0]["total_views"])
	assert.Equal(t, "2", stats[0]["distinct_contents"])

	none, err := storage.UserViewStatsView(ctx, userID+1000)
	require.NoError(t, err)
	assert.Empty(t, none)
}
