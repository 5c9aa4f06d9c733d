// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/danielhkuo/stream-panel/cliparse"
	"github.com/danielhkuo/stream-panel/db"
	"github.com/danielhkuo/stream-panel/errs"
	"github.com/danielhkuo/stream-panel/middleware"
	"github.com/danielhkuo/stream-panel/models"
	"github.com/danielhkuo/stream-panel/ratelimit"
)

// DefaultMessageLimit is used when GET /chat carries no limit.
const DefaultMessageLimit = 100

type ChatHandler struct {
	db      *db.DB
	cfg     cliparse.Config
	limiter ratelimit.Limiter
}

// NewChatHandler creates a chat handler. limiter may be nil to disable
// rate limiting.
func NewChatHandler(db *db.DB, cfg cliparse.Config, limiter ratelimit.Limiter) *ChatHandler {
	return &ChatHandler{db: db, cfg: cfg, limiter: limiter}
}

// ServeHTTP handles /chat
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var (
		result any
		err    error
	)

	switch r.Method {
	case http.MethodPost:
		var req models.PostMessageRequest
		if err = middleware.ParseJSONBody(r, &req); err == nil {
			result, err = h.PostMessage(r.Context(), req.UserID, req.Text)
		}
	case http.MethodGet:
		result, err = h.handleList(r)
	case http.MethodDelete:
		result, err = h.handleDelete(r)
	default:
		err = errs.ErrUnknownAction
	}

	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, result)
}

func (h *ChatHandler) handleList(r *http.Request) (any, error) {
	limit := DefaultMessageLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errs.ErrInvalidLimit
		}
		limit = n
	}
	return h.ListMessages(r.Context(), limit)
}

func (h *ChatHandler) handleDelete(r *http.Request) (any, error) {
	query := r.URL.Query()

	if query.Get("action") == models.ActionClear {
		if err := h.ClearAll(r.Context()); err != nil {
			return nil, err
		}
		return models.SuccessResponse{Success: true}, nil
	}

	raw := query.Get("id")
	if raw == "" {
		return nil, errs.ErrUnknownAction
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errs.ErrBadRequest
	}
	if err := h.DeleteMessage(r.Context(), id); err != nil {
		return nil, err
	}
	return models.SuccessResponse{Success: true}, nil
}

// PostMessage appends a message, snapshotting the author's username and role.
func (h *ChatHandler) PostMessage(ctx context.Context, userID int64, text string) (models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Message{}, errs.ErrEmptyMessage
	}
	if maxLen := h.cfg.MaxMessageLength; maxLen > 0 && utf8.RuneCountInString(text) > maxLen {
		return models.Message{}, errs.ErrMessageTooLong
	}

	msg := models.Message{UserID: userID, Text: text}
	var muted bool
	err := h.db.QueryRowContext(ctx, `
		SELECT username, role, is_chat_muted
		FROM users
		WHERE id = ?
	`, userID).Scan(&msg.Username, &msg.Role, &muted)

	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, errs.ErrUserNotFound
	}
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to query user: %w", err)
	}

	if muted {
		return models.Message{}, errs.ErrChatMuted
	}

	if h.limiter != nil {
		allowed, err := h.limiter.Allow(ctx, strconv.FormatInt(userID, 10))
		if err != nil {
			// Chat stays available when the limiter backend is down
			slog.Warn("rate limiter unavailable", "user_id", userID, "error", err)
		} else if !allowed {
			return models.Message{}, errs.ErrTooManyMessages
		}
	}

	msg.Timestamp = time.Now().UTC()
	err = h.db.QueryRowContext(ctx, `
		INSERT INTO messages (user_id, username, role, text, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`, userID, msg.Username, msg.Role, text, msg.Timestamp).Scan(&msg.ID)
	if err != nil {
		return models.Message{}, fmt.Errorf("failed to insert message: %w", err)
	}

	return msg, nil
}

// ListMessages returns the newest limit messages, oldest first.
func (h *ChatHandler) ListMessages(ctx context.Context, limit int) ([]models.Message, error) {
	if limit <= 0 {
		return nil, errs.ErrInvalidLimit
	}
	if maxLimit := h.cfg.MaxMessageLimit; maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT id, user_id, username, role, text, created_at
		FROM messages
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.Username, &m.Role, &m.Text, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}

	// Reverse to chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}

// DeleteMessage removes one message. Deleting a missing id is not an error.
func (h *ChatHandler) DeleteMessage(ctx context.Context, id int64) error {
	_, err := h.db.ExecContext(ctx, "DELETE FROM messages WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	slog.Info("message deleted", "message_id", id)
	return nil
}

// ClearAll empties the chat log and restarts message ids at 1.
func (h *ChatHandler) ClearAll(ctx context.Context) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range db.ClearMessagesStatements(h.db.Dialect) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to clear messages: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Info("chat cleared")
	return nil
}
