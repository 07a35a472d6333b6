package membership

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/content-gate/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/content-gate/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/content-gate/internal/http/handlers/content/upload"
	"github.com/magabrotheeeer/content-gate/internal/http/handlers/content/videos"
	"github.com/magabrotheeeer/content-gate/internal/http/handlers/health"
	"github.com/magabrotheeeer/content-gate/internal/http/handlers/reports"
	"github.com/magabrotheeeer/content-gate/internal/http/handlers/subscription/list"
	"github.com/magabrotheeeer/content-gate/internal/http/handlers/subscription/subscribe"
	"github.com/magabrotheeeer/content-gate/internal/http/middlewarectx"
	"github.com/magabrotheeeer/content-gate/internal/lib/metrics"
	"github.com/magabrotheeeer/content-gate/internal/models"
	authservice "github.com/magabrotheeeer/content-gate/internal/services/auth"
	contentservice "github.com/magabrotheeeer/content-gate/internal/services/content"
	reportsservice "github.com/magabrotheeeer/content-gate/internal/services/reports"
	subservice "github.com/magabrotheeeer/content-gate/internal/services/subscription"
)

// Dependencies все, что нужно для регистрации маршрутов.
type Dependencies struct {
	Auth          *authservice.Service
	Subscriptions *subservice.Service
	Content       *contentservice.Service
	Reports       *reportsservice.Service

	Tokens middlewarectx.TokenParser
	Users  middlewarectx.UserGetter

	DB    health.Pinger
	Cache health.Pinger // nil, если redis не настроен

	Metrics      *metrics.Metrics
	LoginLimiter *middlewarectx.ClientLimiter
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, deps Dependencies) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.MetricsMiddleware(deps.Metrics),
	)

	// Открытые конечные точки
	r.Post("/users", register.New(logger, deps.Auth, deps.Metrics).ServeHTTP)
	r.With(middlewarectx.RateLimitMiddleware(deps.LoginLimiter, logger)).
		Post("/login", login.New(logger, deps.Auth, deps.Metrics).ServeHTTP)
	r.Get("/videos", videos.New(logger, deps.Content).ServeHTTP)

	reportsHandler := reports.New(logger, deps.Reports)
	r.Get("/api/subscriptions/active", reportsHandler.ActiveSubscriptions)
	r.Get("/api/contents/popular", reportsHandler.PopularContents)
	r.Get("/api/users/{id}/view-stats", reportsHandler.UserViewStats)

	// Группа с JWT аутентификацией
	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.JWTMiddleware(deps.Tokens, deps.Users, logger))
		r.Post("/subscribe", subscribe.New(logger, deps.Subscriptions, deps.Metrics).ServeHTTP)
		r.Get("/subscriptions", list.New(logger, deps.Subscriptions).ServeHTTP)

		r.With(middlewarectx.RequireRole(models.RoleAdmin, logger)).
			Post("/videos/upload", upload.New(logger, deps.Content, deps.Metrics).ServeHTTP)
	})

	r.Get("/health", health.New(logger, deps.DB, deps.Cache).ServeHTTP)
	r.Handle("/metrics", deps.Metrics.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
