package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/content-gate/internal/lib/sl"
)

// Consumer источник доставок очереди. Реализуется *amqp.Channel.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// Handler обрабатывает тело одного сообщения.
type Handler func(ctx context.Context, body []byte) error

// ConsumeMessages читает очередь queueName и передает сообщения handler,
// обрабатывая не больше concurrency сообщений одновременно.
//
// Успешно обработанное сообщение подтверждается. При ошибке сообщение
// возвращается в очередь один раз, повторная ошибка его отбрасывает.
// Функция блокируется до отмены ctx или закрытия канала доставок и
// дожидается завершения запущенных обработчиков.
func ConsumeMessages(ctx context.Context, ch Consumer, queueName string, concurrency int, log *slog.Logger, handler Handler) error {
	const op = "rabbitmq.ConsumeMessages"

	if concurrency < 1 {
		concurrency = 1
	}
	deliveries, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("op", op), slog.String("queue", queueName))

	var wg sync.WaitGroup
	defer wg.Wait()

	sem := make(chan struct{}, concurrency)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				if err := d.Nack(false, true); err != nil {
					log.Error("failed to nack message", sl.Err(err))
				}
				return nil
			}
			wg.Add(1)
			go func(d amqp.Delivery) {
				defer wg.Done()
				defer func() { <-sem }()
				if err := handler(ctx, d.Body); err != nil {
					requeue := !d.Redelivered
					log.Warn("failed to handle message",
						sl.Err(err),
						slog.Bool("requeue", requeue),
						slog.String("routing_key", d.RoutingKey))
					if nackErr := d.Nack(false, requeue); nackErr != nil {
						log.Error("failed to nack message", sl.Err(nackErr))
					}
					return
				}
				if ackErr := d.Ack(false); ackErr != nil {
					log.Error("failed to ack message", sl.Err(ackErr))
				}
			}(d)
		}
	}
}
