// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package errs defines the domain error kinds returned by handlers and their
// mapping to HTTP status codes.
package errs

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindStore Kind = iota
	KindValidation
	KindConflict
	KindAuth
	KindForbidden
	KindNotFound
	KindUnknownAction
	KindRateLimited
	KindTooLarge
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindUnknownAction:
		return "unknown_action"
	case KindRateLimited:
		return "rate_limited"
	case KindTooLarge:
		return "too_large"
	}
	return "store"
}

// Error is a domain failure with a client-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }
func Conflict(msg string) *Error   { return &Error{Kind: KindConflict, Message: msg} }
func Auth(msg string) *Error       { return &Error{Kind: KindAuth, Message: msg} }
func Forbidden(msg string) *Error  { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) *Error   { return &Error{Kind: KindNotFound, Message: msg} }

// Sentinel errors. Handlers return these directly so callers can use errors.Is.
var (
	ErrEmptyFields     = Validation("Заполните все поля")
	ErrInvalidRole     = Validation("Неверная роль")
	ErrMissingUser     = Validation("Не указан пользователь")
	ErrEmptyMessage    = Validation("Сообщение не может быть пустым")
	ErrMessageTooLong  = Validation("Сообщение слишком длинное")
	ErrInvalidLimit    = Validation("Неверный лимит")
	ErrBadRequest      = Validation("Неверный запрос")
	ErrInvalidJSON     = Validation("Неверный формат запроса")
	ErrTooFewOptions   = Validation("Минимум 2 варианта")
	ErrAlreadyVoted    = Validation("Вы уже проголосовали")
	ErrUserExists      = Conflict("Пользователь уже существует")
	ErrPollConflict    = Conflict("Голосование уже создаётся, повторите попытку")
	ErrBadCredentials  = Auth("Неверный логин или пароль")
	ErrBanned          = Forbidden("Вы забанены")
	ErrChatMuted       = Forbidden("Вам заблокирован чат")
	ErrUserNotFound    = NotFound("Пользователь не найден")
	ErrVideoNotFound   = NotFound("Видео не найдено")
	ErrOptionNotFound  = NotFound("Вариант не найден")
	ErrUnknownAction   = &Error{Kind: KindUnknownAction, Message: "Неизвестное действие"}
	ErrTooManyMessages = &Error{Kind: KindRateLimited, Message: "Слишком много сообщений"}
	ErrBodyTooLarge    = &Error{Kind: KindTooLarge, Message: "Слишком большой запрос"}
)

// KindOf returns the kind of the first *Error in err's chain, or KindStore.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

// Status maps err to the HTTP status code written to the client.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation, KindConflict, KindUnknownAction:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindTooLarge:
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

// Message returns the client-facing text. Store failures surface verbatim.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
