// Package upload реализует HTTP-обработчик публикации видео администратором.
package upload

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/content-gate/internal/http/response"
	"github.com/magabrotheeeer/content-gate/internal/lib/metrics"
	"github.com/magabrotheeeer/content-gate/internal/lib/sl"
	"github.com/magabrotheeeer/content-gate/internal/models"
	"github.com/magabrotheeeer/content-gate/internal/services/content"
)

// Service описывает публикацию видео.
type Service interface {
	Upload(ctx context.Context, in content.UploadInput) (*models.Content, error)
}

// Handler обрабатывает POST /videos/upload.
type Handler struct {
	log      *slog.Logger
	service  Service
	metrics  *metrics.Metrics
	validate *validator.Validate
}

// New создает Handler.
func New(log *slog.Logger, service Service, m *metrics.Metrics) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		metrics:  m,
		validate: response.NewValidator(),
	}
}

// ServeHTTP godoc
// @Summary Публикация видео
// @Description Доступно только администраторам. Slug формируется из названия.
// @Tags Videos
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.UploadRequest true "Описание видео"
// @Success 201 {object} models.Content
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 401 {object} response.ErrorResponse "Нет токена или токен недействителен"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /videos/upload [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.content.upload"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Info("failed to decode request body", sl.Err(err))
		response.Fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			response.JSON(w, r, http.StatusBadRequest, response.ValidationError(verrs))
			return
		}
		response.Fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.service.Upload(r.Context(), content.UploadInput{
		Title:       req.Title,
		Description: req.Description,
		URL:         req.URL,
		IsShort:     req.IsShort,
		IsPremium:   req.IsPremium,
	})
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	h.metrics.Uploads.Inc()
	log.Info("content published", slog.String("slug", c.Slug))
	response.JSON(w, r, http.StatusCreated, c)
}
