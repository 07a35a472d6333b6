package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/content-gate/internal/models"
)

const subscriptionColumns = `id, user_id, plan_id, plan, start_date, end_date, status, created_at`

func scanSubscription(row rowScanner) (*models.Subscription, error) {
	var (
		sub    models.Subscription
		id     int64
		userID int64
		status string
	)
	if err := row.Scan(&id, &userID, &sub.PlanID, &sub.Plan, &sub.StartDate, &sub.EndDate,
		&status, &sub.CreatedAt); err != nil {
		return nil, err
	}
	sub.ID = models.ID(id)
	sub.UserID = models.ID(userID)
	sub.Status = models.SubscriptionStatus(status)
	return &sub, nil
}

// CreateSubscription сохраняет запись о подписке. Несуществующий пользователь возвращает ErrNotFound.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (*models.Subscription, error) {
	const op = "storage.CreateSubscription"

	query := `INSERT INTO subscriptions (user_id, plan_id, plan, start_date, end_date, status)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING ` + subscriptionColumns
	created, err := scanSubscription(s.DB.QueryRowContext(ctx, query,
		sub.UserID.Int64(), sub.PlanID, sub.Plan, sub.StartDate, sub.EndDate, string(sub.Status)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return created, nil
}

// ListSubscriptionsByUser возвращает все подписки пользователя, новые первыми.
func (s *Storage) ListSubscriptionsByUser(ctx context.Context, userID int64) ([]*models.Subscription, error) {
	const op = "storage.ListSubscriptionsByUser"

	query := `SELECT ` + subscriptionColumns + `
			  FROM subscriptions
			  WHERE user_id = $1
			  ORDER BY start_date DESC, id DESC`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	res := make([]*models.Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		res = append(res, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// HasActiveSubscription сообщает, есть ли у пользователя хотя бы одна подписка со статусом ACTIVE.
// Дата окончания не сравнивается с текущим временем.
func (s *Storage) HasActiveSubscription(ctx context.Context, userID int64) (bool, error) {
	const op = "storage.HasActiveSubscription"

	var exists bool
	query := `SELECT EXISTS (
			      SELECT 1 FROM subscriptions WHERE user_id = $1 AND status = $2
			  )`
	if err := s.DB.QueryRowContext(ctx, query, userID, string(models.SubscriptionActive)).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}
