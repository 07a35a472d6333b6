// Package entitlement решает, может ли вызывающий смотреть конкретное видео.
//
// Короткие видео и непремиальный контент доступны всем, включая анонимных
// пользователей. Премиальные записи мероприятий доступны только
// пользователям, у которых есть хотя бы одна подписка со статусом ACTIVE.
package entitlement

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/content-gate/internal/models"
)

// SubscriptionChecker проверяет наличие активной подписки.
type SubscriptionChecker interface {
	HasActiveSubscription(ctx context.Context, userID int64) (bool, error)
}

// Evaluator применяет правило доступа к контенту.
type Evaluator struct {
	subs SubscriptionChecker
}

// New создает Evaluator.
func New(subs SubscriptionChecker) *Evaluator {
	return &Evaluator{subs: subs}
}

// Allowed правило доступа без обращения к хранилищу.
func Allowed(c *models.Content, subscriber bool) bool {
	if c.Type == models.ContentShort {
		return true
	}
	if !c.IsPremium {
		return true
	}
	return subscriber
}

// IsSubscriber сообщает, есть ли у вызывающего активная подписка. Анонимный вызывающий (nil) подписчиком не является.
func (e *Evaluator) IsSubscriber(ctx context.Context, callerID *int64) (bool, error) {
	const op = "entitlement.IsSubscriber"

	if callerID == nil {
		return false, nil
	}
	ok, err := e.subs.HasActiveSubscription(ctx, *callerID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}

// CanAccess решает доступ к одному видео. Подписка проверяется только для премиальных записей мероприятий.
func (e *Evaluator) CanAccess(ctx context.Context, callerID *int64, c *models.Content) (bool, error) {
	if Allowed(c, false) {
		return true, nil
	}
	subscriber, err := e.IsSubscriber(ctx, callerID)
	if err != nil {
		return false, err
	}
	return subscriber, nil
}

// Filter оставляет только доступные вызывающему видео, порядок сохраняется.
func (e *Evaluator) Filter(ctx context.Context, callerID *int64, items []*models.Content) ([]*models.Content, error) {
	subscriber, err := e.IsSubscriber(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return FilterFor(items, subscriber), nil
}

// FilterFor оставляет доступные видео при уже известном статусе подписки.
func FilterFor(items []*models.Content, subscriber bool) []*models.Content {
	res := make([]*models.Content, 0, len(items))
	for _, c := range items {
		if Allowed(c, subscriber) {
			res = append(res, c)
		}
	}
	return res
}
