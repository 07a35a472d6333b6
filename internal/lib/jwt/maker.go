// Package jwt реализует сервис токенов: выпуск и проверку подписанных
// JWT (HS256), которые связывают идентификатор пользователя со сроком действия.
//
// Токены не хранятся на сервере: проверка сводится к подписи и сроку.
package jwt

import (
	"errors"
	"time"
)

// DefaultTTL — срок жизни токена по умолчанию (7 дней).
const DefaultTTL = 7 * 24 * time.Hour

// ErrInvalidToken возвращается, если подпись не сходится, payload повреждён
// или срок действия токена истёк.
var ErrInvalidToken = errors.New("invalid token")

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateToken выпускает токен для пользователя userID.
	GenerateToken(userID int64) (string, error)
	// ParseToken проверяет токен и возвращает его claims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey []byte           // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration    // Время жизни токена.
	now       func() time.Time // Источник текущего времени.
}

// Option настраивает MakerImpl.
type Option func(*MakerImpl)

// WithClock подменяет источник времени (используется в тестах).
func WithClock(now func() time.Time) Option {
	return func(m *MakerImpl) {
		m.now = now
	}
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
// Нулевой ttl заменяется на DefaultTTL.
func NewJWTMaker(secretKey string, ttl time.Duration, opts ...Option) *MakerImpl {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	m := &MakerImpl{
		secretKey: []byte(secretKey),
		tokenTTL:  ttl,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}
