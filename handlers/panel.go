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

	"github.com/danielhkuo/stream-panel/cliparse"
	"github.com/danielhkuo/stream-panel/db"
	"github.com/danielhkuo/stream-panel/errs"
	"github.com/danielhkuo/stream-panel/middleware"
	"github.com/danielhkuo/stream-panel/models"
)

type PanelHandler struct {
	db  *db.DB
	cfg cliparse.Config
}

func NewPanelHandler(db *db.DB, cfg cliparse.Config) *PanelHandler {
	return &PanelHandler{db: db, cfg: cfg}
}

// ServeHTTP handles /video
func (h *PanelHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var (
		result any
		err    error
	)

	switch r.Method {
	case http.MethodGet:
		result, err = h.handleGet(r)
	case http.MethodPost:
		result, err = h.handlePost(r)
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

func (h *PanelHandler) handleGet(r *http.Request) (any, error) {
	switch r.URL.Query().Get("action") {
	case models.ActionCurrentVideo:
		return h.GetCurrentVideo(r.Context())
	case models.ActionActivePoll:
		return h.GetActivePoll(r.Context())
	}
	return nil, errs.ErrUnknownAction
}

func (h *PanelHandler) handlePost(r *http.Request) (any, error) {
	var req models.PanelRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		return nil, err
	}

	ctx := r.Context()
	switch req.Action {
	case models.ActionChangeVideo:
		return h.ChangeVideo(ctx, req.Title, req.VKURL, req.Description)
	case models.ActionCreatePoll:
		pollID, err := h.CreatePoll(ctx, req.Options)
		if err != nil {
			return nil, err
		}
		return models.CreatePollResponse{PollID: pollID, Success: true}, nil
	case models.ActionVote:
		if err := h.Vote(ctx, req.UserID, req.OptionID); err != nil {
			return nil, err
		}
		return models.SuccessResponse{Success: true}, nil
	}
	return nil, errs.ErrUnknownAction
}

func (h *PanelHandler) handlePut(r *http.Request) (any, error) {
	var req models.PanelRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		return nil, err
	}

	if req.Action != models.ActionEndPoll {
		return nil, errs.ErrUnknownAction
	}
	if err := h.EndPoll(r.Context()); err != nil {
		return nil, err
	}
	return models.SuccessResponse{Success: true}, nil
}

// GetCurrentVideo returns the most recently set video.
func (h *PanelHandler) GetCurrentVideo(ctx context.Context) (models.Video, error) {
	var v models.Video
	err := h.db.QueryRowContext(ctx, `
		SELECT id, title, vk_url, description
		FROM current_video
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&v.ID, &v.Title, &v.VKURL, &v.Description)

	if errors.Is(err, sql.ErrNoRows) {
		return models.Video{}, errs.ErrVideoNotFound
	}
	if err != nil {
		return models.Video{}, fmt.Errorf("failed to query current video: %w", err)
	}

	return v, nil
}

// ChangeVideo records a new current video. Earlier rows are kept as history.
func (h *PanelHandler) ChangeVideo(ctx context.Context, title, vkURL, description string) (models.Video, error) {
	v := models.Video{
		Title:       strings.TrimSpace(title),
		VKURL:       strings.TrimSpace(vkURL),
		Description: strings.TrimSpace(description),
	}
	if v.Title == "" || v.VKURL == "" {
		return models.Video{}, errs.ErrEmptyFields
	}

	err := h.db.QueryRowContext(ctx, `
		INSERT INTO current_video (title, vk_url, description, updated_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`, v.Title, v.VKURL, v.Description, time.Now().UTC()).Scan(&v.ID)
	if err != nil {
		return models.Video{}, fmt.Errorf("failed to insert video: %w", err)
	}

	slog.Info("video changed", "video_id", v.ID, "title", v.Title)
	return v, nil
}

// GetActivePoll returns the active poll with its options, or {active:false}.
func (h *PanelHandler) GetActivePoll(ctx context.Context) (models.ActivePollResponse, error) {
	var pollID int64
	err := h.db.QueryRowContext(ctx, `
		SELECT id FROM polls
		WHERE is_active = ?
		ORDER BY id DESC
		LIMIT 1
	`, true).Scan(&pollID)

	if errors.Is(err, sql.ErrNoRows) {
		return models.ActivePollResponse{Active: false}, nil
	}
	if err != nil {
		return models.ActivePollResponse{}, fmt.Errorf("failed to query active poll: %w", err)
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT id, poll_id, title, vk_url, votes
		FROM poll_options
		WHERE poll_id = ?
		ORDER BY id
	`, pollID)
	if err != nil {
		return models.ActivePollResponse{}, fmt.Errorf("failed to query poll options: %w", err)
	}
	defer rows.Close()

	options := []models.PollOption{}
	for rows.Next() {
		var opt models.PollOption
		if err := rows.Scan(&opt.ID, &opt.PollID, &opt.Title, &opt.VKURL, &opt.Votes); err != nil {
			return models.ActivePollResponse{}, fmt.Errorf("failed to scan poll option: %w", err)
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return models.ActivePollResponse{}, fmt.Errorf("failed to read poll options: %w", err)
	}

	return models.ActivePollResponse{Active: true, PollID: pollID, Options: options}, nil
}

// CreatePoll ends any active poll and opens a new one with the given options.
func (h *PanelHandler) CreatePoll(ctx context.Context, options []models.PollOptionInput) (int64, error) {
	if len(options) < 2 {
		return 0, errs.ErrTooFewOptions
	}
	for i := range options {
		options[i].Title = strings.TrimSpace(options[i].Title)
		options[i].VKURL = strings.TrimSpace(options[i].VKURL)
		if options[i].Title == "" {
			return 0, errs.ErrEmptyFields
		}
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	_, err = tx.ExecContext(ctx, `
		UPDATE polls SET is_active = ?, ended_at = ?
		WHERE is_active = ?
	`, false, now, true)
	if err != nil {
		return 0, fmt.Errorf("failed to end previous poll: %w", err)
	}

	var pollID int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO polls (is_active, created_at)
		VALUES (?, ?)
		RETURNING id
	`, true, now).Scan(&pollID)
	if db.IsUniqueViolation(err) {
		return 0, errs.ErrPollConflict
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert poll: %w", err)
	}

	for _, opt := range options {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO poll_options (poll_id, title, vk_url, votes)
			VALUES (?, ?, ?, 0)
		`, pollID, opt.Title, opt.VKURL)
		if err != nil {
			return 0, fmt.Errorf("failed to insert poll option: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Info("poll created", "poll_id", pollID, "options", len(options))
	return pollID, nil
}

// EndPoll deactivates the active poll, if any.
func (h *PanelHandler) EndPoll(ctx context.Context) error {
	res, err := h.db.ExecContext(ctx, `
		UPDATE polls SET is_active = ?, ended_at = ?
		WHERE is_active = ?
	`, false, time.Now().UTC(), true)
	if err != nil {
		return fmt.Errorf("failed to end poll: %w", err)
	}

	if n, _ := res.RowsAffected(); n > 0 {
		slog.Info("poll ended")
	}
	return nil
}

// Vote records the user's choice and bumps the option's counter.
// Each user votes at most once per poll.
func (h *PanelHandler) Vote(ctx context.Context, userID, optionID int64) error {
	if userID <= 0 {
		return errs.ErrMissingUser
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var pollID int64
	err = tx.QueryRowContext(ctx, "SELECT poll_id FROM poll_options WHERE id = ?", optionID).Scan(&pollID)
	if errors.Is(err, sql.ErrNoRows) {
		return errs.ErrOptionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to query option: %w", err)
	}

	var voted bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM user_votes WHERE poll_id = ? AND user_id = ?)
	`, pollID, userID).Scan(&voted)
	if err != nil {
		return fmt.Errorf("failed to check existing vote: %w", err)
	}
	if voted {
		return errs.ErrAlreadyVoted
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_votes (poll_id, user_id, option_id, created_at)
		VALUES (?, ?, ?, ?)
	`, pollID, userID, optionID, time.Now().UTC())
	if db.IsUniqueViolation(err) {
		return errs.ErrAlreadyVoted
	}
	if err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}

	_, err = tx.ExecContext(ctx, "UPDATE poll_options SET votes = votes + 1 WHERE id = ?", optionID)
	if err != nil {
		return fmt.Errorf("failed to count vote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Info("vote recorded", "poll_id", pollID, "option_id", optionID, "user_id", userID)
	return nil
}
