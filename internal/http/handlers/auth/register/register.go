// Package register реализует HTTP-обработчик регистрации пользователя.
package register

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
	"github.com/magabrotheeeer/content-gate/internal/services/auth"
)

// Request входные данные для регистрации
type Request struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,max=72"`
}

// Service описывает бизнес-логику регистрации.
type Service interface {
	Register(ctx context.Context, in auth.RegisterInput) (*models.User, error)
}

// Handler обрабатывает POST /users.
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
// @Summary Регистрация пользователя
// @Description Создает пользователя с ролью USER (ADMIN для email из admin_emails).
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные пользователя"
// @Success 201 {object} models.User
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 409 {object} response.ErrorResponse "Email уже занят"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

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
			log.Info("validation failed", sl.Err(err))
			response.JSON(w, r, http.StatusBadRequest, response.ValidationError(verrs))
			return
		}
		response.Fail(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.service.Register(r.Context(), auth.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		response.WriteError(w, r, log, err)
		return
	}

	h.metrics.Registrations.Inc()
	log.Info("user created", sl.UserID(user.ID.Int64()))
	response.JSON(w, r, http.StatusCreated, user)
}
