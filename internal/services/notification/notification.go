// Package notification обрабатывает доменные события: отправляет письма
// и сбрасывает устаревшие отчеты.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/content-gate/internal/cache"
	"github.com/magabrotheeeer/content-gate/internal/events"
	"github.com/magabrotheeeer/content-gate/internal/lib/sl"
)

const dateLayout = "02.01.2006"

// Mailer отправляет письмо.
type Mailer interface {
	Send(to []string, subject, body string) error
}

// Cache сбрасывает закэшированные отчеты.
type Cache interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// Service превращает события в письма.
type Service struct {
	mailer Mailer
	cache  Cache
	log    *slog.Logger
}

// NewService создает Service. cache может быть nil, если redis не настроен.
func NewService(mailer Mailer, cache Cache, log *slog.Logger) *Service {
	return &Service{
		mailer: mailer,
		cache:  cache,
		log:    log,
	}
}

var planTitles = map[string]string{
	"monthly": "на 1 месяц",
	"annual":  "на 12 месяцев",
}

// HandleSubscriptionCreated отправляет подтверждение оформленной подписки.
// Событие без email пропускается без ошибки, чтобы не возвращать его в очередь.
func (s *Service) HandleSubscriptionCreated(ctx context.Context, body []byte) error {
	const op = "services.notification.HandleSubscriptionCreated"

	var e events.SubscriptionCreated
	if err := json.Unmarshal(body, &e); err != nil {
		return fmt.Errorf("%s: unmarshal: %w", op, err)
	}

	log := s.log.With(
		slog.String("op", op),
		sl.UserID(e.UserID.Int64()),
		slog.String("subscription_id", e.SubscriptionID.String()),
	)

	if e.Email == "" {
		log.Warn("event without email, skipping")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	name := e.FirstName
	if name == "" {
		name = e.Email
	}
	period, ok := planTitles[e.Plan]
	if !ok {
		period = e.Plan
	}

	subject := "Подписка оформлена"
	text := fmt.Sprintf("Здравствуйте, %s!\n\nПодписка %s оформлена и действует с %s по %s.\n\nТеперь вам доступны все записи мероприятий.",
		name, period, e.StartDate.Format(dateLayout), e.EndDate.Format(dateLayout))

	if err := s.mailer.Send([]string{e.Email}, subject, text); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Info("subscription confirmation sent")
	return nil
}

// HandleContentPublished сбрасывает отчет о популярных видео после публикации нового.
func (s *Service) HandleContentPublished(ctx context.Context, body []byte) error {
	const op = "services.notification.HandleContentPublished"

	var e events.ContentPublished
	if err := json.Unmarshal(body, &e); err != nil {
		return fmt.Errorf("%s: unmarshal: %w", op, err)
	}

	log := s.log.With(
		slog.String("op", op),
		slog.String("content_id", e.ContentID.String()),
	)

	if s.cache == nil {
		log.Debug("cache is not configured, nothing to invalidate")
		return nil
	}
	if err := s.cache.Invalidate(ctx, cache.KeyPopularContents); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Info("popular contents report invalidated", slog.String("slug", e.Slug))
	return nil
}
