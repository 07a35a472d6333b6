// Package content содержит бизнес-логику публикации видео и выдачи каталога с учетом подписки.
package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/content-gate/internal/events"
	"github.com/magabrotheeeer/content-gate/internal/lib/apperr"
	"github.com/magabrotheeeer/content-gate/internal/lib/sl"
	"github.com/magabrotheeeer/content-gate/internal/lib/slug"
	"github.com/magabrotheeeer/content-gate/internal/models"
	"github.com/magabrotheeeer/content-gate/internal/services/entitlement"
)

// Repository определяет методы хранилища видео.
type Repository interface {
	CreateContent(ctx context.Context, c models.Content) (*models.Content, error)
	ListContents(ctx context.Context, includePremium bool) ([]*models.Content, error)
}

// Entitlement определяет статус подписки вызывающего.
type Entitlement interface {
	IsSubscriber(ctx context.Context, callerID *int64) (bool, error)
}

// UploadInput данные нового видео.
type UploadInput struct {
	Title       string
	Description string
	URL         string
	IsShort     bool
	IsPremium   bool
}

// Service публикует видео и отдает каталог.
type Service struct {
	repo        Repository
	entitlement Entitlement
	publisher   events.Publisher
	log         *slog.Logger
	now         func() time.Time
}

// NewService создает Service.
func NewService(repo Repository, ent Entitlement, publisher events.Publisher, log *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		entitlement: ent,
		publisher:   publisher,
		log:         log,
		now:         time.Now,
	}
}

// Upload публикует видео. Slug строится из заголовка как есть, включая крайние пробелы, тип SHORT или EVENT_VIDEO зависит от IsShort.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*models.Content, error) {
	const op = "services.content.Upload"

	url := strings.TrimSpace(in.URL)
	if strings.TrimSpace(in.Title) == "" || url == "" {
		return nil, apperr.InvalidArgument("title and url are required")
	}

	typ := models.ContentEventVideo
	if in.IsShort {
		typ = models.ContentShort
	}
	publishedAt := s.now().UTC()

	created, err := s.repo.CreateContent(ctx, models.Content{
		Title:       in.Title,
		Slug:        slug.Make(in.Title),
		Description: in.Description,
		Type:        typ,
		VideoURL:    url,
		IsPremium:   in.IsPremium,
		Status:      models.ContentStatusPublished,
		PublishedAt: &publishedAt,
	})
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}

	log := s.log.With(slog.String("op", op), slog.String("content_id", created.ID.String()))
	log.Info("content published", slog.String("slug", created.Slug), slog.String("type", string(created.Type)))

	if err := s.publisher.ContentPublished(ctx, events.ContentPublished{
		ContentID: created.ID,
		Title:     created.Title,
		Slug:      created.Slug,
		Type:      created.Type,
		IsPremium: created.IsPremium,
	}); err != nil {
		log.Warn("failed to publish content event", sl.Err(err))
	}
	return created, nil
}

// ListVideos возвращает видео, доступные вызывающему. callerID nil означает анонимный запрос;
// неизвестный пользователь подписки не имеет и видит то же, что анонимный.
func (s *Service) ListVideos(ctx context.Context, callerID *int64) ([]*models.Content, error) {
	const op = "services.content.ListVideos"

	subscriber, err := s.entitlement.IsSubscriber(ctx, callerID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}

	items, err := s.repo.ListContents(ctx, subscriber)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}
	return entitlement.FilterFor(items, subscriber), nil
}
