// Package health реализует проверку готовности сервиса.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/content-gate/internal/http/response"
	"github.com/magabrotheeeer/content-gate/internal/lib/sl"
)

const pingTimeout = 2 * time.Second

// Pinger зависимость, доступность которой проверяется.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Response тело успешного ответа.
type Response struct {
	Status string `json:"status" example:"ok"`
}

// Handler обрабатывает GET /health.
type Handler struct {
	log   *slog.Logger
	db    Pinger
	cache Pinger
}

// New создает Handler. cache может быть nil, если кэш отключен.
func New(log *slog.Logger, db Pinger, cache Pinger) *Handler {
	return &Handler{
		log:   log,
		db:    db,
		cache: cache,
	}
}

// ServeHTTP godoc
// @Summary Проверка готовности
// @Tags Health
// @Produce  json
// @Success 200 {object} Response
// @Failure 503 {object} response.ErrorResponse "Зависимость недоступна"
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		log.Error("database is unavailable", sl.Err(err))
		response.Fail(w, r, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			log.Error("cache is unavailable", sl.Err(err))
			response.Fail(w, r, http.StatusServiceUnavailable, "cache unavailable")
			return
		}
	}
	response.JSON(w, r, http.StatusOK, Response{Status: "ok"})
}
