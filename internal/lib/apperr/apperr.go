// Package apperr описывает классификацию ошибок бизнес‑логики.
//
// Сервисы возвращают *Error с одним из видов Kind, а HTTP‑слой
// переводит вид в статус ответа. Исходная ошибка сохраняется в Err
// и доступна через errors.Unwrap, но клиенту не показывается.
package apperr

import (
	"errors"
	"fmt"
)

// Kind — категория ошибки.
type Kind string

const (
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindInvalidArgument Kind = "invalid_argument"
	KindTooManyRequests Kind = "too_many_requests"
	KindInternal        Kind = "internal"
)

// Error — ошибка с категорией и сообщением для клиента.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is сравнивает ошибки по категории и сообщению, чтобы errors.Is работал
// с заранее объявленными значениями вроде ErrInvalidCredentials.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && (t.Message == "" || e.Message == t.Message)
}

// New создаёт ошибку без причины.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap создаёт ошибку с причиной err.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf возвращает категорию ошибки; всё, что не *Error, считается внутренней.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf возвращает сообщение, безопасное для клиента.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "internal error"
}

func Unauthenticated(msg string) *Error { return New(KindUnauthenticated, msg) }
func Forbidden(msg string) *Error       { return New(KindForbidden, msg) }
func NotFound(msg string) *Error        { return New(KindNotFound, msg) }
func Conflict(msg string) *Error        { return New(KindConflict, msg) }
func InvalidArgument(msg string) *Error { return New(KindInvalidArgument, msg) }

// Internal оборачивает неожиданную ошибку хранилища или рантайма.
func Internal(err error) *Error {
	return Wrap(KindInternal, "internal error", err)
}
