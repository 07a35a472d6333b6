package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/magabrotheeeer/content-gate/internal/models"
)

// ActiveSubscriptionsView возвращает строки active_subscriptions_view.
func (s *Storage) ActiveSubscriptionsView(ctx context.Context) ([]models.ViewRow, error) {
	const op = "storage.ActiveSubscriptionsView"

	rows, err := s.DB.QueryContext(ctx, `SELECT * FROM active_subscriptions_view`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	res, err := collectViewRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// PopularContentsView возвращает первые limit строк popular_contents_view.
func (s *Storage) PopularContentsView(ctx context.Context, limit int) ([]models.ViewRow, error) {
	const op = "storage.PopularContentsView"

	rows, err := s.DB.QueryContext(ctx, `SELECT * FROM popular_contents_view LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	res, err := collectViewRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// UserViewStatsView возвращает строки user_view_stats_view для пользователя.
func (s *Storage) UserViewStatsView(ctx context.Context, userID int64) ([]models.ViewRow, error) {
	const op = "storage.UserViewStatsView"

	rows, err := s.DB.QueryContext(ctx, `SELECT * FROM user_view_stats_view WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	res, err := collectViewRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// collectViewRows превращает строки представления в map по именам колонок.
// BIGINT отдается строкой, как и идентификаторы моделей.
func collectViewRows(rows *sql.Rows) ([]models.ViewRow, error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	res := make([]models.ViewRow, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(models.ViewRow, len(cols))
		for i, col := range cols {
			switch v := values[i].(type) {
			case int64:
				row[col] = strconv.FormatInt(v, 10)
			case []byte:
				row[col] = string(v)
			default:
				row[col] = v
			}
		}
		res = append(res, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
