// Package subscribe реализует HTTP-обработчик оформления подписки.
package subscribe

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/content-gate/internal/http/middlewarectx"
	"github.com/magabrotheeeer/content-gate/internal/http/response"
	"github.com/magabrotheeeer/content-gate/internal/lib/metrics"
	"github.com/magabrotheeeer/content-gate/internal/lib/sl"
	"github.com/magabrotheeeer/content-gate/internal/models"
)

// Service описывает бизнес-логику оформления подписки.
type Service interface {
	Subscribe(ctx context.Context, caller *models.User, targetUserID int64, planName string) (*models.Subscription, error)
}

// Handler обрабатывает POST /subscribe.
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
// @Summary Оформление подписки
// @Description Создает активную подписку monthly (1 месяц) или annual (12 месяцев).
// @Description Обычный пользователь может подписать только себя, администратор любого пользователя.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.SubscribeRequest true "Пользователь и тариф"
// @Success 201 {object} models.Subscription
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос или неизвестный тариф"
// @Failure 401 {object} response.ErrorResponse "Нет токена или токен недействителен"
// @Failure 403 {object} response.ErrorResponse "Нет прав на подписку другого пользователя"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /subscribe [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.subscribe"

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

	var req models.SubscribeRequest
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

	sub, err := h.service.Subscribe(r.Context(), caller, req.UserID.Int64(), req.Plan)
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	h.metrics.Subscriptions.WithLabelValues(sub.Plan).Inc()
	log.Info("subscription created",
		sl.UserID(sub.UserID.Int64()),
		slog.String("plan", sub.Plan),
	)
	response.JSON(w, r, http.StatusCreated, sub)
}
