// Package login реализует HTTP-обработчик входа по email и паролю.
//
// При успешной проверке учетных данных возвращается JSON с токеном доступа,
// который действует 7 дней.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/content-gate/internal/http/response"
	"github.com/magabrotheeeer/content-gate/internal/lib/apperr"
	"github.com/magabrotheeeer/content-gate/internal/lib/metrics"
	"github.com/magabrotheeeer/content-gate/internal/lib/sl"
)

// Request структура входных данных для авторизации.
type Request struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Response тело успешного ответа.
type Response struct {
	Token string `json:"token"`
}

// Service описывает интерфейс бизнес-логики аутентификации.
type Service interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// Handler обрабатывает HTTP-запросы для авторизации.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	service  Service             // Сервис аутентификации
	metrics  *metrics.Metrics    // Счетчики попыток входа
	validate *validator.Validate // Валидатор для проверки входных данных
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, m *metrics.Metrics) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		metrics:  m,
		validate: response.NewValidator(),
	}
}

// ServeHTTP godoc
// @Summary Авторизация пользователя
// @Description Проверяет email и пароль, возвращает JWT со сроком действия 7 дней.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} Response "Успешная авторизация"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 429 {object} response.ErrorResponse "Слишком много попыток"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
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

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindUnauthenticated {
			h.metrics.Logins.WithLabelValues("rejected").Inc()
		} else {
			h.metrics.Logins.WithLabelValues("error").Inc()
		}
		response.WriteError(w, r, log, err)
		return
	}

	h.metrics.Logins.WithLabelValues("success").Inc()
	log.Info("login success")
	response.JSON(w, r, http.StatusOK, Response{Token: token})
}
