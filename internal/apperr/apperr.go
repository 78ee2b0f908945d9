// Package apperr — общая таксономия ошибок для API и конвейера генерации.
// Коды совпадают с кодами вызываемых функций исходной системы, чтобы клиент
// мог ветвиться программно (например, предлагать админский override только
// на resource-exhausted).
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	Unauthenticated    Kind = "unauthenticated"
	PermissionDenied   Kind = "permission-denied"
	InvalidArgument    Kind = "invalid-argument"
	ResourceExhausted  Kind = "resource-exhausted"
	FailedPrecondition Kind = "failed-precondition"
	NotFound           Kind = "not-found"
	Internal           Kind = "internal"
	Unavailable        Kind = "unavailable"
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg == "" && e.Err != nil {
		return string(e.Kind) + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func New(k Kind, msg string) *Error {
	return &Error{Kind: k, Msg: msg}
}

func Newf(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

func Wrap(k Kind, msg string, err error) *Error {
	return &Error{Kind: k, Msg: msg, Err: err}
}

// KindOf — код ошибки; всё неразмеченное считаем internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

func IsKind(err error, k Kind) bool { return KindOf(err) == k }
