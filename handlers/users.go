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
	"strings"
	"time"

	"github.com/danielhkuo/stream-panel/auth"
	"github.com/danielhkuo/stream-panel/cliparse"
	"github.com/danielhkuo/stream-panel/db"
	"github.com/danielhkuo/stream-panel/errs"
	"github.com/danielhkuo/stream-panel/middleware"
	"github.com/danielhkuo/stream-panel/models"
)

type UserHandler struct {
	db  *db.DB
	cfg cliparse.Config
}

func NewUserHandler(db *db.DB, cfg cliparse.Config) *UserHandler {
	return &UserHandler{db: db, cfg: cfg}
}

// ServeHTTP handles /auth and dispatches on method and action
func (h *UserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var (
		result any
		err    error
	)

	switch r.Method {
	case http.MethodPost:
		result, err = h.handlePost(r)
	case http.MethodGet:
		result, err = h.handleGet(r)
	case http.MethodPut:
		result, err = h.handlePut(r)
	default:
		err = errs.ErrUnknownAction
	}

	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, result)
}

func (h *UserHandler) handlePost(r *http.Request) (any, error) {
	var req models.AuthRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		return nil, err
	}

	switch req.Action {
	case models.ActionRegister:
		return h.Register(r.Context(), req.Username, req.Password)
	case models.ActionLogin:
		return h.Login(r.Context(), req.Username, req.Password)
	}
	return nil, errs.ErrUnknownAction
}

func (h *UserHandler) handleGet(r *http.Request) (any, error) {
	switch r.URL.Query().Get("action") {
	case "", models.ActionList:
		return h.ListUsers(r.Context())
	}
	return nil, errs.ErrUnknownAction
}

func (h *UserHandler) handlePut(r *http.Request) (any, error) {
	var req models.AuthRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		return nil, err
	}

	switch req.Action {
	case models.ActionToggleChatMute, models.ActionToggleBan, models.ActionChangeRole, models.ActionSetOffline:
	default:
		return nil, errs.ErrUnknownAction
	}

	if req.UserID <= 0 {
		return nil, errs.ErrMissingUser
	}

	ctx := r.Context()
	switch req.Action {
	case models.ActionToggleChatMute:
		muted, err := h.ToggleChatMute(ctx, req.UserID)
		return models.ToggleChatMuteResponse{IsChatMuted: muted}, err
	case models.ActionToggleBan:
		banned, err := h.ToggleBan(ctx, req.UserID)
		return models.ToggleBanResponse{IsBanned: banned}, err
	case models.ActionChangeRole:
		role, err := h.ChangeRole(ctx, req.UserID, req.Role)
		return models.ChangeRoleResponse{Role: role}, err
	default:
		if err := h.SetOffline(ctx, req.UserID); err != nil {
			return nil, err
		}
		return models.SuccessResponse{Success: true}, nil
	}
}

// Register creates a user with the default role.
func (h *UserHandler) Register(ctx context.Context, username, password string) (models.PublicUser, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return models.PublicUser{}, errs.ErrEmptyFields
	}

	var exists bool
	err := h.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)", username).Scan(&exists)
	if err != nil {
		return models.PublicUser{}, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return models.PublicUser{}, errs.ErrUserExists
	}

	hash, err := auth.HashPassword(password, h.cfg.BcryptCost)
	if err != nil {
		return models.PublicUser{}, err
	}

	user := models.User{Username: username, Role: models.RoleUser}
	err = h.db.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash, role)
		VALUES (?, ?, ?)
		RETURNING id, is_banned, is_chat_muted
	`, username, hash, models.RoleUser).Scan(&user.ID, &user.IsBanned, &user.IsChatMuted)

	// UNIQUE constraint catches a concurrent registration of the same name
	if db.IsUniqueViolation(err) {
		return models.PublicUser{}, errs.ErrUserExists
	}
	if err != nil {
		return models.PublicUser{}, fmt.Errorf("failed to insert user: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID, "username", username)

	return user.Public(), nil
}

// Login verifies credentials, marks the user online and returns it.
// A banned account is refused before its password is checked.
func (h *UserHandler) Login(ctx context.Context, username, password string) (models.PublicUser, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	var user models.User
	err := h.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, role, is_banned, is_chat_muted
		FROM users
		WHERE username = ?
	`, username).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role, &user.IsBanned, &user.IsChatMuted)

	if errors.Is(err, sql.ErrNoRows) {
		auth.BurnCompare(password, h.cfg.BcryptCost)
		return models.PublicUser{}, errs.ErrBadCredentials
	}
	if err != nil {
		return models.PublicUser{}, fmt.Errorf("failed to query user: %w", err)
	}

	if user.IsBanned {
		return models.PublicUser{}, errs.ErrBanned
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return models.PublicUser{}, errs.ErrBadCredentials
	}

	_, err = h.db.ExecContext(ctx, "UPDATE users SET is_online = ?, last_seen = ? WHERE id = ?", true, time.Now(), user.ID)
	if err != nil {
		return models.PublicUser{}, fmt.Errorf("failed to mark user online: %w", err)
	}

	slog.Info("user logged in", "user_id", user.ID)

	return user.Public(), nil
}

// ListUsers returns every user in registration order.
func (h *UserHandler) ListUsers(ctx context.Context) ([]models.UserSummary, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, username, role, is_banned, is_chat_muted, is_online
		FROM users
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []models.UserSummary{}
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.ID, &u.Username, &u.Role, &u.IsBanned, &u.IsChatMuted, &u.IsOnline); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}

	return users, nil
}

// ToggleChatMute flips the user's chat mute and returns the new value.
func (h *UserHandler) ToggleChatMute(ctx context.Context, userID int64) (bool, error) {
	var muted bool
	err := h.db.QueryRowContext(ctx, `
		UPDATE users SET is_chat_muted = NOT is_chat_muted
		WHERE id = ?
		RETURNING is_chat_muted
	`, userID).Scan(&muted)

	if errors.Is(err, sql.ErrNoRows) {
		return false, errs.ErrUserNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to toggle chat mute: %w", err)
	}

	slog.Info("chat mute toggled", "user_id", userID, "muted", muted)
	return muted, nil
}

// ToggleBan flips the user's ban and always marks the user offline.
func (h *UserHandler) ToggleBan(ctx context.Context, userID int64) (bool, error) {
	var banned bool
	err := h.db.QueryRowContext(ctx, `
		UPDATE users SET is_banned = NOT is_banned, is_online = ?
		WHERE id = ?
		RETURNING is_banned
	`, false, userID).Scan(&banned)

	if errors.Is(err, sql.ErrNoRows) {
		return false, errs.ErrUserNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to toggle ban: %w", err)
	}

	slog.Info("ban toggled", "user_id", userID, "banned", banned)
	return banned, nil
}

// ChangeRole sets one of the known roles.
func (h *UserHandler) ChangeRole(ctx context.Context, userID int64, role string) (string, error) {
	if !models.ValidRole(role) {
		return "", errs.ErrInvalidRole
	}

	res, err := h.db.ExecContext(ctx, "UPDATE users SET role = ? WHERE id = ?", role, userID)
	if err != nil {
		return "", fmt.Errorf("failed to change role: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return "", errs.ErrUserNotFound
	}

	slog.Info("role changed", "user_id", userID, "role", role)
	return role, nil
}

// SetOffline marks the user offline and records when they were last seen.
func (h *UserHandler) SetOffline(ctx context.Context, userID int64) error {
	_, err := h.db.ExecContext(ctx, "UPDATE users SET is_online = ?, last_seen = ? WHERE id = ?", false, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to set user offline: %w", err)
	}
	return nil
}
