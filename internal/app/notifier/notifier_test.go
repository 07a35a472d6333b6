package notifier

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/content-gate/internal/config"
	"github.com/magabrotheeeer/content-gate/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/content-gate/internal/services/notification"
)

func TestNew_RequiresBrokerAndSMTP(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := New(context.Background(), &config.Config{SMTP: config.SMTP{SMTPHost: "localhost"}}, logger)
	assert.ErrorIs(t, err, ErrNoBroker)

	_, err = New(context.Background(), &config.Config{RabbitMQ: config.RabbitMQ{URL: "amqp://localhost/"}}, logger)
	assert.ErrorIs(t, err, ErrNoSMTP)
}

func TestHandlers_EveryEventQueueIsConsumed(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := &App{service: notification.NewService(nil, nil, logger), logger: logger}

	handlers := app.handlers()
	queues := rabbitmq.GetEventQueues()
	require.Len(t, handlers, len(queues))
	for _, q := range queues {
		h, ok := handlers[q.QueueName]
		assert.Truef(t, ok, "queue %s has no consumer", q.QueueName)
		assert.NotNil(t, h)
	}
}
