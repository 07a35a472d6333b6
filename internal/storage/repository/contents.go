package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/content-gate/internal/models"
)

const contentColumns = `id, title, slug, description, type, video_url, is_premium, status, published_at, created_at`

func scanContent(row rowScanner) (*models.Content, error) {
	var (
		c           models.Content
		id          int64
		typ         string
		publishedAt sql.NullTime
	)
	if err := row.Scan(&id, &c.Title, &c.Slug, &c.Description, &typ, &c.VideoURL, &c.IsPremium,
		&c.Status, &publishedAt, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.ID = models.ID(id)
	c.Type = models.ContentType(typ)
	if publishedAt.Valid {
		c.PublishedAt = &publishedAt.Time
	}
	return &c, nil
}

// CreateContent сохраняет новое видео.
func (s *Storage) CreateContent(ctx context.Context, c models.Content) (*models.Content, error) {
	const op = "storage.CreateContent"

	query := `INSERT INTO contents (title, slug, description, type, video_url, is_premium, status, published_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING ` + contentColumns
	created, err := scanContent(s.DB.QueryRowContext(ctx, query,
		c.Title, c.Slug, c.Description, string(c.Type), c.VideoURL, c.IsPremium, c.Status, c.PublishedAt))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return created, nil
}

// ListContents возвращает видео. Без includePremium отдаются только
// короткие видео и непремиальные записи (type = 'SHORT' OR is_premium = false).
func (s *Storage) ListContents(ctx context.Context, includePremium bool) ([]*models.Content, error) {
	const op = "storage.ListContents"

	query := `SELECT ` + contentColumns + `
			  FROM contents
			  WHERE $1::boolean OR type = $2 OR is_premium = FALSE
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, includePremium, string(models.ContentShort))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := make([]*models.Content, 0)
	for rows.Next() {
		c, err := scanContent(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}
