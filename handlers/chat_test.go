// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/stream-panel/errs"
	"github.com/danielhkuo/stream-panel/models"
	"github.com/danielhkuo/stream-panel/testutil"
)

// fakeLimiter allows the first n calls per key
type fakeLimiter struct {
	mu    sync.Mutex
	n     int
	err   error
	calls map[string]int
}

func (f *fakeLimiter) Allow(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return false, f.err
	}
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[key]++
	return f.calls[key] <= f.n, nil
}

func TestPostMessage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewChatHandler(db, cfg, nil)

	aliceID := testutil.CreateTestUser(t, db, "alice", models.RoleAdmin)
	mutedID := testutil.CreateTestUser(t, db, "muted", models.RoleUser)
	testutil.SetUserFlag(t, db, mutedID, "is_chat_muted", true)

	tests := []struct {
		name           string
		body           models.PostMessageRequest
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "valid message",
			body:           models.PostMessageRequest{UserID: aliceID, Text: "  hello  "},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "empty text",
			body:           models.PostMessageRequest{UserID: aliceID, Text: "   "},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Сообщение не может быть пустым",
		},
		{
			name:           "text too long",
			body:           models.PostMessageRequest{UserID: aliceID, Text: strings.Repeat("я", cfg.MaxMessageLength+1)},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Сообщение слишком длинное",
		},
		{
			name:           "unknown user",
			body:           models.PostMessageRequest{UserID: 9999, Text: "hi"},
			expectedStatus: http.StatusNotFound,
			expectedError:  "Пользователь не найден",
		},
		{
			name:           "muted user",
			body:           models.PostMessageRequest{UserID: mutedID, Text: "hi"},
			expectedStatus: http.StatusForbidden,
			expectedError:  "Вам заблокирован чат",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/chat", tt.body, nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if tt.expectedError != "" {
				testutil.AssertError(t, w, tt.expectedStatus, tt.expectedError)
				return
			}

			testutil.AssertStatus(t, w, tt.expectedStatus)
			var msg models.Message
			testutil.AssertJSON(t, w, &msg)
			assert.NotZero(t, msg.ID)
			assert.Equal(t, "alice", msg.Username)
			assert.Equal(t, models.RoleAdmin, msg.Role)
			assert.Equal(t, "hello", msg.Text)
			assert.WithinDuration(t, time.Now(), msg.Timestamp, time.Minute)
		})
	}

	// Only the valid message reached the store
	assert.Equal(t, 1, testutil.CountRows(t, db, "messages"))
}

func TestPostMessage_LengthCountsRunes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	cfg.MaxMessageLength = 5
	handler := NewChatHandler(db, cfg, nil)

	userID := testutil.CreateTestUser(t, db, "alice", models.RoleUser)

	_, err := handler.PostMessage(context.Background(), userID, "привет")
	assert.ErrorIs(t, err, errs.ErrMessageTooLong)

	msg, err := handler.PostMessage(context.Background(), userID, "приве")
	require.NoError(t, err)
	assert.Equal(t, "приве", msg.Text)
}

func TestPostMessage_SnapshotsAuthor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewChatHandler(db, testutil.GetTestConfig(), nil)
	users := NewUserHandler(db, testutil.GetTestConfig())

	userID := testutil.CreateTestUser(t, db, "alice", models.RoleUser)

	_, err := handler.PostMessage(context.Background(), userID, "before")
	require.NoError(t, err)

	_, err = users.ChangeRole(context.Background(), userID, models.RoleCreator)
	require.NoError(t, err)

	_, err = handler.PostMessage(context.Background(), userID, "after")
	require.NoError(t, err)

	messages, err := handler.ListMessages(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, models.RoleUser, messages[0].Role, "stored role should not change retroactively")
	assert.Equal(t, models.RoleCreator, messages[1].Role)
}

func TestPostMessage_RateLimited(t *testing.T) {
	db := testutil.SetupTestDB(t)
	limiter := &fakeLimiter{n: 2}
	handler := NewChatHandler(db, testutil.GetTestConfig(), limiter)

	aliceID := testutil.CreateTestUser(t, db, "alice", models.RoleUser)
	bobID := testutil.CreateTestUser(t, db, "bob", models.RoleUser)

	for i := 0; i < 2; i++ {
		_, err := handler.PostMessage(context.Background(), aliceID, fmt.Sprintf("msg %d", i))
		require.NoError(t, err)
	}

	req := testutil.MakeRequest("POST", "/chat", models.PostMessageRequest{UserID: aliceID, Text: "spam"}, nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	testutil.AssertError(t, w, http.StatusTooManyRequests, "Слишком много сообщений")

	// Limits are per user
	_, err := handler.PostMessage(context.Background(), bobID, "hi")
	assert.NoError(t, err)

	assert.Equal(t, 3, testutil.CountRows(t, db, "messages"))
}

func TestPostMessage_LimiterFailureAllows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	limiter := &fakeLimiter{err: errors.New("redis: connection refused")}
	handler := NewChatHandler(db, testutil.GetTestConfig(), limiter)

	userID := testutil.CreateTestUser(t, db, "alice", models.RoleUser)

	_, err := handler.PostMessage(context.Background(), userID, "still works")
	assert.NoError(t, err)
}

func TestPostMessage_MutedSkipsLimiter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	limiter := &fakeLimiter{n: 1}
	handler := NewChatHandler(db, testutil.GetTestConfig(), limiter)

	userID := testutil.CreateTestUser(t, db, "alice", models.RoleUser)
	testutil.SetUserFlag(t, db, userID, "is_chat_muted", true)

	_, err := handler.PostMessage(context.Background(), userID, "hi")
	assert.ErrorIs(t, err, errs.ErrChatMuted)
	assert.Empty(t, limiter.calls)
}

func TestListMessages(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	cfg.MaxMessageLimit = 4
	handler := NewChatHandler(db, cfg, nil)

	userID := testutil.CreateTestUser(t, db, "alice", models.RoleUser)
	for i := 1; i <= 6; i++ {
		_, err := handler.PostMessage(context.Background(), userID, fmt.Sprintf("m%d", i))
		require.NoError(t, err)
	}

	tests := []struct {
		name          string
		query         string
		expectedTexts []string
		expectedError string
	}{
		{"default limit", "", []string{"m3", "m4", "m5", "m6"}, ""},
		{"newest two oldest first", "?limit=2", []string{"m5", "m6"}, ""},
		{"clamped to configured cap", "?limit=100", []string{"m3", "m4", "m5", "m6"}, ""},
		{"zero", "?limit=0", nil, "Неверный лимит"},
		{"negative", "?limit=-3", nil, "Неверный лимит"},
		{"not a number", "?limit=ten", nil, "Неверный лимит"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/chat"+tt.query, nil, nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if tt.expectedError != "" {
				testutil.AssertError(t, w, http.StatusBadRequest, tt.expectedError)
				return
			}

			testutil.AssertStatus(t, w, http.StatusOK)
			var messages []models.Message
			testutil.AssertJSON(t, w, &messages)

			texts := make([]string, 0, len(messages))
			for _, m := range messages {
				texts = append(texts, m.Text)
			}
			assert.Equal(t, tt.expectedTexts, texts)
		})
	}
}

func TestListMessages_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewChatHandler(db, testutil.GetTestConfig(), nil)

	req := testutil.MakeRequest("GET", "/chat", nil, nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestDeleteMessage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewChatHandler(db, testutil.GetTestConfig(), nil)

	userID := testutil.CreateTestUser(t, db, "alice", models.RoleUser)
	first, err := handler.PostMessage(context.Background(), userID, "first")
	require.NoError(t, err)
	_, err = handler.PostMessage(context.Background(), userID, "second")
	require.NoError(t, err)

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedError  string
		expectedRows   int
	}{
		{"delete existing", fmt.Sprintf("?id=%d", first.ID), http.StatusOK, "", 1},
		{"delete missing is a no-op", "?id=9999", http.StatusOK, "", 1},
		{"non-numeric id", "?id=abc", http.StatusBadRequest, "Неверный запрос", 1},
		{"no selector", "", http.StatusBadRequest, "Неизвестное действие", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("DELETE", "/chat"+tt.query, nil, nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if tt.expectedError != "" {
				testutil.AssertError(t, w, tt.expectedStatus, tt.expectedError)
			} else {
				testutil.AssertStatus(t, w, tt.expectedStatus)
				var resp models.SuccessResponse
				testutil.AssertJSON(t, w, &resp)
				assert.True(t, resp.Success)
			}

			assert.Equal(t, tt.expectedRows, testutil.CountRows(t, db, "messages"))
		})
	}
}

func TestClearAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewChatHandler(db, testutil.GetTestConfig(), nil)

	userID := testutil.CreateTestUser(t, db, "alice", models.RoleUser)
	for i := 0; i < 3; i++ {
		_, err := handler.PostMessage(context.Background(), userID, "hi")
		require.NoError(t, err)
	}

	req := testutil.MakeRequest("DELETE", "/chat?action=clear", nil, nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	messages, err := handler.ListMessages(context.Background(), 100)
	require.NoError(t, err)
	assert.Empty(t, messages)

	// Ids restart after a clear
	msg, err := handler.PostMessage(context.Background(), userID, "fresh start")
	require.NoError(t, err)
	assert.Equal(t, int64(1), msg.ID)
}

func TestChatHandler_UnknownMethod(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewChatHandler(db, testutil.GetTestConfig(), nil)

	req := testutil.MakeRequest("PUT", "/chat", models.PostMessageRequest{UserID: 1, Text: "hi"}, nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	testutil.AssertError(t, w, http.StatusBadRequest, "Неизвестное действие")
}
