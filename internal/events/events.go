// Package events публикует доменные события сервиса в RabbitMQ.
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/magabrotheeeer/content-gate/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/content-gate/internal/models"
)

// SubscriptionCreated событие оформления подписки. Email и имя нужны получателю письма-подтверждения.
type SubscriptionCreated struct {
	SubscriptionID models.ID `json:"subscriptionId"`
	UserID         models.ID `json:"userId"`
	Email          string    `json:"email"`
	FirstName      string    `json:"firstName"`
	Plan           string    `json:"plan"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
}

// ContentPublished событие публикации видео.
type ContentPublished struct {
	ContentID models.ID          `json:"contentId"`
	Title     string             `json:"title"`
	Slug      string             `json:"slug"`
	Type      models.ContentType `json:"type"`
	IsPremium bool               `json:"isPremium"`
}

// Publisher отправляет доменные события.
type Publisher interface {
	SubscriptionCreated(ctx context.Context, e SubscriptionCreated) error
	ContentPublished(ctx context.Context, e ContentPublished) error
}

// AMQPPublisher публикует события в topic-обменник.
// Канал amqp не рассчитан на конкурентную публикацию, поэтому вызовы сериализуются.
type AMQPPublisher struct {
	mu       sync.Mutex
	ch       rabbitmq.Channel
	exchange string
}

// NewAMQPPublisher создает публикатора поверх открытого канала.
func NewAMQPPublisher(ch rabbitmq.Channel, exchange string) *AMQPPublisher {
	return &AMQPPublisher{ch: ch, exchange: exchange}
}

// SubscriptionCreated публикует событие с ключом subscription.created.
func (p *AMQPPublisher) SubscriptionCreated(ctx context.Context, e SubscriptionCreated) error {
	return p.publish(ctx, rabbitmq.RoutingSubscriptionCreated, e)
}

// ContentPublished публикует событие с ключом content.published.
func (p *AMQPPublisher) ContentPublished(ctx context.Context, e ContentPublished) error {
	return p.publish(ctx, rabbitmq.RoutingContentPublished, e)
}

func (p *AMQPPublisher) publish(ctx context.Context, routingKey string, payload any) error {
	const op = "events.publish"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := rabbitmq.PublishMessage(p.ch, p.exchange, routingKey, payload); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Nop ничего не публикует. Используется, когда брокер не настроен.
type Nop struct{}

// SubscriptionCreated ничего не делает.
func (Nop) SubscriptionCreated(context.Context, SubscriptionCreated) error { return nil }

// ContentPublished ничего не делает.
func (Nop) ContentPublished(context.Context, ContentPublished) error { return nil }
