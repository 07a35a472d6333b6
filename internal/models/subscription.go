package models

import "time"

// SubscriptionStatus — статус записи подписки.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "ACTIVE"
	SubscriptionCanceled SubscriptionStatus = "CANCELED"
	SubscriptionExpired  SubscriptionStatus = "EXPIRED"
)

// Subscription — запись о подписке пользователя.
// У пользователя может быть несколько записей за разное время;
// доступ к премиум‑контенту даёт хотя бы одна запись со статусом ACTIVE.
type Subscription struct {
	ID        ID                 `json:"id"`
	UserID    ID                 `json:"user_id"`
	PlanID    int                `json:"plan_id"`
	Plan      string             `json:"plan"`
	StartDate time.Time          `json:"start_date"`
	EndDate   time.Time          `json:"end_date"`
	Status    SubscriptionStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
}

// SubscribeRequest — тело запроса POST /subscribe.
type SubscribeRequest struct {
	UserID ID     `json:"userId" validate:"required"`
	Plan   string `json:"plan" validate:"required"`
}
