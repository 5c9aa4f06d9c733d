// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", ErrEmptyFields, http.StatusBadRequest},
		{"conflict", ErrUserExists, http.StatusBadRequest},
		{"unknown action", ErrUnknownAction, http.StatusBadRequest},
		{"auth", ErrBadCredentials, http.StatusUnauthorized},
		{"forbidden", ErrChatMuted, http.StatusForbidden},
		{"not found", ErrVideoNotFound, http.StatusNotFound},
		{"rate limited", ErrTooManyMessages, http.StatusTooManyRequests},
		{"body too large", ErrBodyTooLarge, http.StatusRequestEntityTooLarge},
		{"poll conflict", ErrPollConflict, http.StatusBadRequest},
		{"plain error", errors.New("connection refused"), http.StatusInternalServerError},
		{"wrapped domain error", fmt.Errorf("vote: %w", ErrAlreadyVoted), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Вы уже проголосовали", Message(ErrAlreadyVoted))
	assert.Equal(t, "Вы уже проголосовали", Message(fmt.Errorf("tx: %w", ErrAlreadyVoted)))

	// store failures are reported verbatim
	assert.Equal(t, "pq: relation \"users\" does not exist", Message(errors.New("pq: relation \"users\" does not exist")))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := &Error{Kind: KindValidation, Message: "bad", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "bad: disk full", err.Error())
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, KindStore, KindOf(cause))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "too_large", KindTooLarge.String())
	assert.Equal(t, "store", KindStore.String())
}
