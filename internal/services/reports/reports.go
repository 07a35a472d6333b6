// Package reports отдает строки агрегирующих представлений базы, кэшируя их в redis.
package reports

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/magabrotheeeer/content-gate/internal/cache"
	"github.com/magabrotheeeer/content-gate/internal/lib/apperr"
	"github.com/magabrotheeeer/content-gate/internal/lib/metrics"
	"github.com/magabrotheeeer/content-gate/internal/lib/sl"
	"github.com/magabrotheeeer/content-gate/internal/models"
)

// PopularLimit сколько строк popular_contents_view отдается.
const PopularLimit = 10

// Repository определяет чтение представлений.
type Repository interface {
	ActiveSubscriptionsView(ctx context.Context) ([]models.ViewRow, error)
	PopularContentsView(ctx context.Context, limit int) ([]models.ViewRow, error)
	UserViewStatsView(ctx context.Context, userID int64) ([]models.ViewRow, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Service читает отчеты.
type Service struct {
	repo    Repository
	cache   Cache
	ttl     time.Duration
	metrics *metrics.Metrics
	log     *slog.Logger
}

// NewService создает Service. cache и m могут быть nil.
func NewService(repo Repository, cache Cache, ttl time.Duration, m *metrics.Metrics, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		cache:   cache,
		ttl:     ttl,
		metrics: m,
		log:     log,
	}
}

// ActiveSubscriptions строки active_subscriptions_view.
func (s *Service) ActiveSubscriptions(ctx context.Context) ([]models.ViewRow, error) {
	return s.cached(ctx, "services.reports.ActiveSubscriptions", cache.KeyActiveSubscriptions,
		func(ctx context.Context) ([]models.ViewRow, error) {
			return s.repo.ActiveSubscriptionsView(ctx)
		})
}

// PopularContents первые PopularLimit строк popular_contents_view.
func (s *Service) PopularContents(ctx context.Context) ([]models.ViewRow, error) {
	return s.cached(ctx, "services.reports.PopularContents", cache.KeyPopularContents,
		func(ctx context.Context) ([]models.ViewRow, error) {
			return s.repo.PopularContentsView(ctx, PopularLimit)
		})
}

// UserViewStats строки user_view_stats_view для пользователя.
func (s *Service) UserViewStats(ctx context.Context, userID int64) ([]models.ViewRow, error) {
	if userID <= 0 {
		return nil, apperr.InvalidArgument("invalid user id")
	}
	key := cache.KeyUserViewStatsPrefix + strconv.FormatInt(userID, 10)
	return s.cached(ctx, "services.reports.UserViewStats", key,
		func(ctx context.Context) ([]models.ViewRow, error) {
			return s.repo.UserViewStatsView(ctx, userID)
		})
}

// cached читает отчет из кэша, при промахе из базы. Ошибки кэша только логируются.
func (s *Service) cached(ctx context.Context, op, key string, load func(context.Context) ([]models.ViewRow, error)) ([]models.ViewRow, error) {
	log := s.log.With(slog.String("op", op), slog.String("key", key))

	if s.cache != nil {
		var rows []models.ViewRow
		found, err := s.cache.Get(ctx, key, &rows)
		switch {
		case err != nil:
			s.observe("error")
			log.Warn("failed to read report cache", sl.Err(err))
		case found:
			s.observe("hit")
			return rows, nil
		default:
			s.observe("miss")
		}
	}

	rows, err := load(ctx)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, rows, s.ttl); err != nil {
			log.Warn("failed to write report cache", sl.Err(err))
		}
	}
	return rows, nil
}

func (s *Service) observe(result string) {
	if s.metrics != nil {
		s.metrics.CacheLookups.WithLabelValues(result).Inc()
	}
}
