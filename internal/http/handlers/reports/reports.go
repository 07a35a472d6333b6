// Package reports реализует HTTP-обработчики отчетов по агрегирующим представлениям.
package reports

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/content-gate/internal/http/response"
	"github.com/magabrotheeeer/content-gate/internal/lib/sl"
	"github.com/magabrotheeeer/content-gate/internal/models"
)

// Service описывает получение отчетов.
type Service interface {
	ActiveSubscriptions(ctx context.Context) ([]models.ViewRow, error)
	PopularContents(ctx context.Context) ([]models.ViewRow, error)
	UserViewStats(ctx context.Context, userID int64) ([]models.ViewRow, error)
}

// Handler содержит обработчики трех отчетов.
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

func (h *Handler) logger(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func writeRows(w http.ResponseWriter, r *http.Request, rows []models.ViewRow) {
	if rows == nil {
		rows = []models.ViewRow{}
	}
	response.JSON(w, r, http.StatusOK, rows)
}

// ActiveSubscriptions godoc
// @Summary Активные подписки
// @Tags Reports
// @Produce  json
// @Success 200 {array} object
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/subscriptions/active [get]
func (h *Handler) ActiveSubscriptions(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.reports.ActiveSubscriptions")

	rows, err := h.service.ActiveSubscriptions(r.Context())
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	writeRows(w, r, rows)
}

// PopularContents godoc
// @Summary Популярные видео
// @Description Топ-10 видео по числу просмотров.
// @Tags Reports
// @Produce  json
// @Success 200 {array} object
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/contents/popular [get]
func (h *Handler) PopularContents(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.reports.PopularContents")

	rows, err := h.service.PopularContents(r.Context())
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	writeRows(w, r, rows)
}

// UserViewStats godoc
// @Summary Статистика просмотров пользователя
// @Tags Reports
// @Produce  json
// @Param id path string true "ID пользователя"
// @Success 200 {array} object
// @Failure 400 {object} response.ErrorResponse "Некорректный id"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/users/{id}/view-stats [get]
func (h *Handler) UserViewStats(w http.ResponseWriter, r *http.Request) {
	log := h.logger(r, "handlers.reports.UserViewStats")

	id, err := models.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		log.Info("invalid user id", sl.Err(err))
		response.Fail(w, r, http.StatusBadRequest, "invalid user id")
		return
	}

	rows, err := h.service.UserViewStats(r.Context(), id.Int64())
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}
	writeRows(w, r, rows)
}
