// Package videos реализует HTTP-обработчик каталога видео.
//
// Короткие видео и бесплатные записи видны всем. Премиальные записи
// мероприятий видны только пользователю с активной подпиской, который
// передан в query-параметре userId.
package videos

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/content-gate/internal/http/response"
	"github.com/magabrotheeeer/content-gate/internal/lib/sl"
	"github.com/magabrotheeeer/content-gate/internal/models"
)

// Service описывает выдачу каталога.
type Service interface {
	ListVideos(ctx context.Context, callerID *int64) ([]*models.Content, error)
}

// Handler обрабатывает GET /videos.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Каталог видео
// @Tags Videos
// @Produce  json
// @Param userId query string false "ID пользователя для проверки подписки"
// @Success 200 {array} models.Content
// @Failure 400 {object} response.ErrorResponse "Некорректный userId"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /videos [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.videos"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var callerID *int64
	if raw := r.URL.Query().Get("userId"); raw != "" {
		id, err := models.ParseID(raw)
		if err != nil {
			log.Info("invalid userId", sl.Err(err))
			response.Fail(w, r, http.StatusBadRequest, "invalid userId")
			return
		}
		v := id.Int64()
		callerID = &v
	}

	items, err := h.service.ListVideos(r.Context(), callerID)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	if items == nil {
		items = []*models.Content{}
	}
	response.JSON(w, r, http.StatusOK, items)
}
