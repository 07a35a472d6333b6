// Package membership собирает HTTP-сервис подписок и видеоконтента:
// хранилище, кэш отчетов, публикацию событий и маршруты.
package membership

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi"
	"github.com/streadway/amqp"
	"golang.org/x/crypto/bcrypt"

	// Регистрация swagger-спецификации.
	_ "github.com/magabrotheeeer/content-gate/docs"
	"github.com/magabrotheeeer/content-gate/internal/cache"
	"github.com/magabrotheeeer/content-gate/internal/config"
	"github.com/magabrotheeeer/content-gate/internal/events"
	"github.com/magabrotheeeer/content-gate/internal/http/handlers/health"
	"github.com/magabrotheeeer/content-gate/internal/http/middlewarectx"
	"github.com/magabrotheeeer/content-gate/internal/lib/jwt"
	"github.com/magabrotheeeer/content-gate/internal/lib/metrics"
	"github.com/magabrotheeeer/content-gate/internal/lib/password"
	"github.com/magabrotheeeer/content-gate/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/content-gate/internal/lib/sl"
	"github.com/magabrotheeeer/content-gate/internal/migrations"
	authservice "github.com/magabrotheeeer/content-gate/internal/services/auth"
	contentservice "github.com/magabrotheeeer/content-gate/internal/services/content"
	"github.com/magabrotheeeer/content-gate/internal/services/entitlement"
	reportsservice "github.com/magabrotheeeer/content-gate/internal/services/reports"
	subservice "github.com/magabrotheeeer/content-gate/internal/services/subscription"
	"github.com/magabrotheeeer/content-gate/internal/storage/repository"
)

const (
	shutdownTimeout = 15 * time.Second
	amqpRetries     = 5
	amqpRetryDelay  = 2 * time.Second
	// лимитер клиента, не обращавшегося к /login дольше этого, удаляется
	loginLimiterIdle = 10 * time.Minute
)

// Store хранилище, которое нужно сервисам приложения.
type Store interface {
	authservice.UserRepository
	subservice.Repository
	contentservice.Repository
	entitlement.SubscriptionChecker
	reportsservice.Repository
	Ping(ctx context.Context) error
}

// App HTTP-сервер со всеми зависимостями.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	amqp   *amqp.Connection
}

// New подключается к postgres, применяет миграции, при наличии настроек
// подключает redis и RabbitMQ и собирает роутер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		_ = db.Close()
		return nil, err
	}

	app := &App{
		logger: logger,
		db:     db,
	}

	if cfg.AddressRedis != "" {
		app.cache, err = cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			app.closeAll()
			return nil, err
		}
	} else {
		logger.Warn("redis address is not set, reports are not cached")
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.RabbitMQ.URL != "" {
		conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQ.URL, amqpRetries, amqpRetryDelay)
		if err != nil {
			app.closeAll()
			return nil, err
		}
		app.amqp = conn
		ch, err := rabbitmq.SetupChannel(conn, cfg.Exchange, rabbitmq.GetEventQueues())
		if err != nil {
			app.closeAll()
			return nil, err
		}
		publisher = events.NewAMQPPublisher(ch, cfg.Exchange)
	} else {
		logger.Warn("amqp url is not set, domain events are not published")
	}

	router := chi.NewRouter()
	if cfg.SentryDSN != "" {
		router.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}
	RegisterRoutes(router, logger, NewDependencies(cfg, logger, db, app.cache, publisher))

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// NewDependencies создает сервисы поверх хранилища. rc может быть nil.
func NewDependencies(cfg *config.Config, logger *slog.Logger, store Store, rc *cache.Cache, publisher events.Publisher) Dependencies {
	m := metrics.New()
	tokens := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	// Типизированный nil в интерфейсе не равен nil, поэтому кэш передается только если он есть.
	var (
		invalidator subservice.Cache
		reportCache reportsservice.Cache
		cachePinger health.Pinger
	)
	if rc != nil {
		invalidator, reportCache, cachePinger = rc, rc, rc
	}

	return Dependencies{
		Auth:          authservice.NewService(store, password.NewHasher(bcrypt.DefaultCost), tokens, cfg.AdminEmails, logger),
		Subscriptions: subservice.NewService(store, invalidator, publisher, logger),
		Content:       contentservice.NewService(store, entitlement.New(store), publisher, logger),
		Reports:       reportsservice.NewService(store, reportCache, cfg.Cache.TTL, m, logger),
		Tokens:        tokens,
		Users:         store,
		DB:            store,
		Cache:         cachePinger,
		Metrics:       m,
		LoginLimiter:  middlewarectx.NewClientLimiter(cfg.RPS, cfg.Burst, loginLimiterIdle),
	}
}

// Run запускает HTTP-сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.closeAll()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.closeAll()
		return err
	}
}

func (a *App) closeAll() {
	if a.amqp != nil {
		if err := a.amqp.Close(); err != nil {
			a.logger.Error("failed to close amqp connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
