// Package subscription содержит бизнес-логику оформления подписок.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/content-gate/internal/cache"
	"github.com/magabrotheeeer/content-gate/internal/events"
	"github.com/magabrotheeeer/content-gate/internal/lib/apperr"
	"github.com/magabrotheeeer/content-gate/internal/lib/sl"
	"github.com/magabrotheeeer/content-gate/internal/models"
	"github.com/magabrotheeeer/content-gate/internal/storage/repository"
)

// Plan тарифный план.
type Plan struct {
	ID     int
	Name   string
	Months int
}

var plans = map[string]Plan{
	"monthly": {ID: 1, Name: "monthly", Months: 1},
	"annual":  {ID: 2, Name: "annual", Months: 12},
}

// ParsePlan возвращает план по имени. Допустимы только monthly и annual.
func ParsePlan(name string) (Plan, error) {
	p, ok := plans[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Plan{}, apperr.InvalidArgument(fmt.Sprintf("unknown plan %q: expected monthly or annual", name))
	}
	return p, nil
}

// Repository определяет методы хранилища, нужные для подписок.
type Repository interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateSubscription(ctx context.Context, sub models.Subscription) (*models.Subscription, error)
	ListSubscriptionsByUser(ctx context.Context, userID int64) ([]*models.Subscription, error)
}

// Cache сбрасывает закэшированные отчеты.
type Cache interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// Service оформляет подписки.
type Service struct {
	repo      Repository
	cache     Cache
	publisher events.Publisher
	log       *slog.Logger
	now       func() time.Time
}

// Option настраивает Service.
type Option func(*Service)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService создает Service. cache может быть nil, если redis не настроен.
func NewService(repo Repository, cache Cache, publisher events.Publisher, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe оформляет подписку targetUserID на план planName.
// Оформить подписку за другого пользователя может только администратор.
func (s *Service) Subscribe(ctx context.Context, caller *models.User, targetUserID int64, planName string) (*models.Subscription, error) {
	const op = "services.subscription.Subscribe"

	if caller == nil {
		return nil, apperr.Unauthenticated("Token not provided!")
	}
	if targetUserID <= 0 {
		return nil, apperr.InvalidArgument("userId is required")
	}
	plan, err := ParsePlan(planName)
	if err != nil {
		return nil, err
	}
	if caller.ID.Int64() != targetUserID && !caller.IsAdmin() {
		return nil, apperr.Forbidden("Access denied!")
	}

	target, err := s.repo.GetUser(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("User not found!")
		}
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}

	start := s.now().UTC()
	sub, err := s.repo.CreateSubscription(ctx, models.Subscription{
		UserID:    models.ID(targetUserID),
		PlanID:    plan.ID,
		Plan:      plan.Name,
		StartDate: start,
		EndDate:   start.AddDate(0, plan.Months, 0),
		Status:    models.SubscriptionActive,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("User not found!")
		}
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}

	log := s.log.With(slog.String("op", op), sl.UserID(targetUserID))
	log.Info("subscription created", slog.String("plan", sub.Plan), slog.String("id", sub.ID.String()))

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, cache.KeyActiveSubscriptions); err != nil {
			log.Warn("failed to invalidate report cache", sl.Err(err))
		}
	}
	if err := s.publisher.SubscriptionCreated(ctx, events.SubscriptionCreated{
		SubscriptionID: sub.ID,
		UserID:         sub.UserID,
		Email:          target.Email,
		FirstName:      target.FirstName,
		Plan:           sub.Plan,
		StartDate:      sub.StartDate,
		EndDate:        sub.EndDate,
	}); err != nil {
		log.Warn("failed to publish subscription event", sl.Err(err))
	}

	return sub, nil
}

// ListForUser возвращает подписки пользователя userID. Нулевой userID означает самого вызывающего.
func (s *Service) ListForUser(ctx context.Context, caller *models.User, userID int64) ([]*models.Subscription, error) {
	const op = "services.subscription.ListForUser"

	if caller == nil {
		return nil, apperr.Unauthenticated("Token not provided!")
	}
	if userID == 0 {
		userID = caller.ID.Int64()
	}
	if userID != caller.ID.Int64() && !caller.IsAdmin() {
		return nil, apperr.Forbidden("Access denied!")
	}

	subs, err := s.repo.ListSubscriptionsByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}
	return subs, nil
}
