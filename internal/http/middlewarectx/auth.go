// Package middlewarectx содержит HTTP middleware сервиса.
//
// JWTMiddleware проверяет bearer-токен из заголовка Authorization, находит
// пользователя в хранилище и кладет его в контекст запроса. Обработчики
// получают пользователя через UserFromContext. RequireRole пропускает только
// пользователей с нужной ролью.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/content-gate/internal/http/response"
	"github.com/magabrotheeeer/content-gate/internal/lib/apperr"
	"github.com/magabrotheeeer/content-gate/internal/lib/jwt"
	"github.com/magabrotheeeer/content-gate/internal/lib/sl"
	"github.com/magabrotheeeer/content-gate/internal/models"
	"github.com/magabrotheeeer/content-gate/internal/storage/repository"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// User ключ текущего пользователя в контексте.
const User Key = "user"

// TokenParser проверяет токен доступа.
type TokenParser interface {
	ParseToken(token string) (*jwt.CustomClaims, error)
}

// UserGetter находит пользователя по ID.
type UserGetter interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// WithUser возвращает контекст с пользователем.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, User, u)
}

// UserFromContext возвращает пользователя, положенного JWTMiddleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(User).(*models.User)
	return u, ok && u != nil
}

// bearerToken достает токен из заголовка вида "Bearer <token>".
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" {
		return "", false
	}
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

// JWTMiddleware возвращает middleware, который пропускает дальше только запросы с валидным токеном
// существующего пользователя. Пользователь читается из хранилища на каждый запрос.
func JWTMiddleware(tokens TokenParser, users UserGetter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				log.Info("authorization header is missing")
				response.Fail(w, r, http.StatusUnauthorized, "Token not provided!")
				return
			}
			tokenStr, ok := bearerToken(authHeader)
			if !ok {
				log.Info("malformed authorization header")
				response.Fail(w, r, http.StatusUnauthorized, "Invalid token!")
				return
			}

			claims, err := tokens.ParseToken(tokenStr)
			if err != nil {
				log.Info("invalid or expired token", sl.Err(err))
				response.Fail(w, r, http.StatusUnauthorized, "Invalid token!")
				return
			}
			userID, err := claims.ParsedUserID()
			if err != nil {
				log.Info("token carries invalid user id", sl.Err(err))
				response.Fail(w, r, http.StatusUnauthorized, "Invalid token!")
				return
			}

			user, err := users.GetUser(r.Context(), userID)
			if errors.Is(err, repository.ErrNotFound) {
				log.Info("token user not found", sl.UserID(userID))
				response.Fail(w, r, http.StatusUnauthorized, "User not found!")
				return
			}
			if err != nil {
				response.WriteError(w, r, log, apperr.Internal(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireRole пропускает только пользователей с ролью role. Без пользователя в контексте отвечает 401.
func RequireRole(role models.Role, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				response.Fail(w, r, http.StatusUnauthorized, "Token not provided!")
				return
			}
			if user.Role != role {
				log.Info("access denied",
					slog.String("request_id", middleware.GetReqID(r.Context())),
					sl.UserID(user.ID.Int64()),
					slog.String("required_role", string(role)))
				response.Fail(w, r, http.StatusForbidden, "Access denied!")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
