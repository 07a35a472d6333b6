package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/magabrotheeeer/content-gate/internal/migrations"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и применяет миграции
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	storage, err := New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	return storage
}

// TestDataFactory содержит методы для создания тестовых данных
type TestDataFactory struct {
	storage *Storage
}

// NewTestDataFactory создает новую фабрику тестовых данных
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser создает тестового пользователя и возвращает его ID
func (f *TestDataFactory) CreateUser(t *testing.T, email, role string) int64 {
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO users (first_name, last_name, email, password_hash, role)
		VALUES ('Test', 'User', $1, 'hash', $2) RETURNING id`, email, role).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateSubscription создает тестовую подписку
func (f *TestDataFactory) CreateSubscription(t *testing.T, userID int64, status string) int64 {
	var id int64
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	err := f.storage.DB.QueryRow(`INSERT INTO subscriptions (user_id, plan_id, plan, start_date, end_date, status)
		VALUES ($1, 1, 'monthly', $2, $3, $4) RETURNING id`,
		userID, start, start.AddDate(0, 1, 0), status).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateContent создает тестовое видео
func (f *TestDataFactory) CreateContent(t *testing.T, title, typ string, premium bool) int64 {
	var id int64
	err := f.storage.DB.QueryRow(`INSERT INTO contents (title, slug, type, video_url, is_premium, published_at)
		VALUES ($1, $1, $2, 'https://cdn.example.com/v.mp4', $3, NOW()) RETURNING id`,
		title, typ, premium).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateView регистрирует просмотр видео пользователем
func (f *TestDataFactory) CreateView(t *testing.T, userID, contentID int64) {
	_, err := f.storage.DB.Exec(`INSERT INTO content_views (user_id, content_id) VALUES ($1, $2)`, userID, contentID)
	require.NoError(t, err)
}
