// Package auth содержит бизнес-логику регистрации пользователей и входа по email и паролю.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/content-gate/internal/lib/apperr"
	"github.com/magabrotheeeer/content-gate/internal/lib/password"
	"github.com/magabrotheeeer/content-gate/internal/lib/sl"
	"github.com/magabrotheeeer/content-gate/internal/models"
	"github.com/magabrotheeeer/content-gate/internal/storage/repository"
)

var (
	// ErrInvalidCredentials неизвестный email или неверный пароль. Случаи не различаются.
	ErrInvalidCredentials = apperr.Unauthenticated("Invalid credentials!")
	// ErrEmailTaken email уже зарегистрирован.
	ErrEmailTaken = apperr.Conflict("Email already exists.")
	// ErrFieldsRequired не заполнено одно из обязательных полей.
	ErrFieldsRequired = apperr.InvalidArgument("All fields are required.")
)

// bcrypt не принимает пароли длиннее 72 байт.
const maxPasswordBytes = 72

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет пользователя, занятый email возвращает repository.ErrAlreadyExists.
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	// GetUserByEmail возвращает пользователя или repository.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// PasswordHasher хеширует и сверяет пароли.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer выпускает токен доступа для пользователя.
type TokenIssuer interface {
	GenerateToken(userID int64) (string, error)
}

// RegisterInput данные для регистрации.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Service отвечает за регистрацию и вход.
type Service struct {
	users       UserRepository
	hasher      PasswordHasher
	tokens      TokenIssuer
	adminEmails map[string]struct{}
	log         *slog.Logger
}

// NewService создает Service. Пользователи с email из adminEmails получают роль ADMIN при регистрации.
func NewService(users UserRepository, hasher PasswordHasher, tokens TokenIssuer, adminEmails []string, log *slog.Logger) *Service {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		admins[normalizeEmail(e)] = struct{}{}
	}
	return &Service{
		users:       users,
		hasher:      hasher,
		tokens:      tokens,
		adminEmails: admins,
		log:         log,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register создает пользователя с захешированным паролем.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	const op = "services.auth.Register"

	email := normalizeEmail(in.Email)
	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)
	if firstName == "" || lastName == "" || email == "" || in.Password == "" {
		return nil, ErrFieldsRequired
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, apperr.InvalidArgument("password must be at most 72 bytes")
	}

	_, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrEmailTaken
	case !errors.Is(err, repository.ErrNotFound):
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}

	role := models.RoleUser
	if _, ok := s.adminEmails[email]; ok {
		role = models.RoleAdmin
	}

	user, err := s.users.CreateUser(ctx, models.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if errors.Is(err, repository.ErrAlreadyExists) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}

	s.log.Info("user registered", sl.UserID(user.ID.Int64()), slog.String("role", string(user.Role)))
	return user, nil
}

// Login проверяет email и пароль и возвращает токен доступа.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (string, error) {
	const op = "services.auth.Login"

	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}

	if err := s.hasher.Compare(user.PasswordHash, rawPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return "", ErrInvalidCredentials
		}
		return "", apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}

	token, err := s.tokens.GenerateToken(user.ID.Int64())
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("%s: %w", op, err))
	}
	return token, nil
}
