// Package models содержит доменные модели приложения: пользователей,
// подписки и видеоконтент. Структуры используются в бизнес‑логике,
// хранилище и при формировании JSON‑ответов.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Role — роль пользователя. Набор значений закрыт: USER или ADMIN.
type Role string

const (
	// RoleUser — обычный пользователь, роль по умолчанию.
	RoleUser Role = "USER"
	// RoleAdmin — администратор, может загружать видео и оформлять подписки за других.
	RoleAdmin Role = "ADMIN"
)

// ParseRole приводит строку из базы к Role.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           ID        `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin сообщает, есть ли у пользователя роль администратора.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
