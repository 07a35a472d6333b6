// Package notifier собирает фоновый обработчик доменных событий:
// письма-подтверждения по оформленным подпискам и сброс отчетов
// после публикации видео.
package notifier

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/content-gate/internal/cache"
	"github.com/magabrotheeeer/content-gate/internal/config"
	"github.com/magabrotheeeer/content-gate/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/content-gate/internal/lib/sl"
	"github.com/magabrotheeeer/content-gate/internal/lib/smtp"
	"github.com/magabrotheeeer/content-gate/internal/services/notification"
)

const (
	amqpRetries    = 5
	amqpRetryDelay = 2 * time.Second
)

var (
	// ErrNoBroker не задан адрес RabbitMQ.
	ErrNoBroker = errors.New("notifier: amqp url is not set")
	// ErrNoSMTP не задан SMTP сервер.
	ErrNoSMTP = errors.New("notifier: smtp host is not set")
)

// App обработчик очередей доменных событий.
type App struct {
	conn        *amqp.Connection
	ch          *amqp.Channel
	cache       *cache.Cache
	service     *notification.Service
	concurrency int
	logger      *slog.Logger
}

// New подключается к брокеру и объявляет обменник с очередями событий.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg.RabbitMQ.URL == "" {
		return nil, ErrNoBroker
	}
	if cfg.SMTPHost == "" {
		return nil, ErrNoSMTP
	}

	var (
		rc          *cache.Cache
		invalidator notification.Cache
	)
	if cfg.AddressRedis != "" {
		var err error
		rc, err = cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			return nil, err
		}
		invalidator = rc
	} else {
		logger.Warn("redis address is not set, content events only acknowledged")
	}
	closeCache := func() {
		if rc != nil {
			_ = rc.Close()
		}
	}

	conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQ.URL, amqpRetries, amqpRetryDelay)
	if err != nil {
		closeCache()
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, cfg.Exchange, rabbitmq.GetEventQueues())
	if err != nil {
		_ = conn.Close()
		closeCache()
		return nil, err
	}
	if err := ch.Qos(cfg.Concurrency, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		closeCache()
		return nil, err
	}

	mailer := smtp.NewMailer(smtp.NewTransport(cfg.SMTP), cfg.SMTPFrom)

	return &App{
		conn:        conn,
		ch:          ch,
		cache:       rc,
		service:     notification.NewService(mailer, invalidator, logger),
		concurrency: cfg.Concurrency,
		logger:      logger,
	}, nil
}

// handlers сопоставляет каждой очереди событий ее обработчик.
func (a *App) handlers() map[string]rabbitmq.Handler {
	return map[string]rabbitmq.Handler{
		rabbitmq.QueueSubscriptionCreated: a.service.HandleSubscriptionCreated,
		rabbitmq.QueueContentPublished:    a.service.HandleContentPublished,
	}
}

// Run обрабатывает события всех очередей до отмены ctx, затем закрывает канал и соединение.
func (a *App) Run(ctx context.Context) error {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for queue, handler := range a.handlers() {
		wg.Add(1)
		go func(queue string, handler rabbitmq.Handler) {
			defer wg.Done()
			a.logger.Info("notifier consuming", slog.String("queue", queue))
			if err := rabbitmq.ConsumeMessages(ctx, a.ch, queue, a.concurrency, a.logger, handler); err != nil {
				a.logger.Error("consumer stopped with error", slog.String("queue", queue), sl.Err(err))
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(queue, handler)
	}
	wg.Wait()

	a.logger.Info("notifier shutting down gracefully")
	if cerr := a.ch.Close(); cerr != nil {
		a.logger.Error("failed to close channel", sl.Err(cerr))
	}
	if cerr := a.conn.Close(); cerr != nil {
		a.logger.Error("failed to close connection", sl.Err(cerr))
	}
	if a.cache != nil {
		if cerr := a.cache.Close(); cerr != nil {
			a.logger.Error("failed to close cache", sl.Err(cerr))
		}
	}
	return errors.Join(errs...)
}
