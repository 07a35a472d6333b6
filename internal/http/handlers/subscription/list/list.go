// Package list реализует HTTP-обработчик получения подписок пользователя.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/content-gate/internal/http/middlewarectx"
	"github.com/magabrotheeeer/content-gate/internal/http/response"
	"github.com/magabrotheeeer/content-gate/internal/lib/sl"
	"github.com/magabrotheeeer/content-gate/internal/models"
)

// Service описывает получение подписок.
type Service interface {
	ListForUser(ctx context.Context, caller *models.User, userID int64) ([]*models.Subscription, error)
}

// Handler обрабатывает GET /subscriptions.
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
// @Summary Список подписок
// @Description Возвращает подписки текущего пользователя. Администратор может передать userId.
// @Tags Subscriptions
// @Produce  json
// @Security BearerAuth
// @Param userId query string false "ID пользователя"
// @Success 200 {array} models.Subscription
// @Failure 400 {object} response.ErrorResponse "Некорректный userId"
// @Failure 401 {object} response.ErrorResponse "Нет токена или токен недействителен"
// @Failure 403 {object} response.ErrorResponse "Нет доступа"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /subscriptions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	caller, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		response.Fail(w, r, http.StatusUnauthorized, "Token not provided!")
		return
	}

	var userID int64
	if raw := r.URL.Query().Get("userId"); raw != "" {
		id, err := models.ParseID(raw)
		if err != nil {
			log.Info("invalid userId", sl.Err(err))
			response.Fail(w, r, http.StatusBadRequest, "invalid userId")
			return
		}
		userID = id.Int64()
	}

	subs, err := h.service.ListForUser(r.Context(), caller, userID)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	if subs == nil {
		subs = []*models.Subscription{}
	}
	response.JSON(w, r, http.StatusOK, subs)
}
