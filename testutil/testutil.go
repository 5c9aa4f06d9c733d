// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/stream-panel/auth"
	"github.com/danielhkuo/stream-panel/cliparse"
	"github.com/danielhkuo/stream-panel/db"
	"github.com/danielhkuo/stream-panel/models"
)

// TestDBURL returns a SQLite DSN for a file in dir. Foreign keys are on and
// writers wait for each other instead of failing with SQLITE_BUSY.
func TestDBURL(dir string) string {
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate",
		filepath.Join(dir, "stream-panel.db"))
}

// SetupTestDB creates a fresh database with the full schema.
// Every test gets its own file so tests can run in parallel.
func SetupTestDB(t *testing.T) *db.DB {
	t.Helper()

	conn, err := db.Open(context.Background(), db.SQLite, TestDBURL(t.TempDir()))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(context.Background(), conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:             cliparse.DefaultPort,
		DatabaseType:     db.SQLite,
		ChatRateLimit:    cliparse.DefaultChatRateLimit,
		ChatRateWindow:   cliparse.DefaultChatRateWindow,
		MaxMessageLength: cliparse.DefaultMaxMessageLength,
		MaxMessageLimit:  cliparse.DefaultMaxMessageLimit,
		BcryptCost:       bcrypt.MinCost,
	}
}

// CreateTestUser inserts a user with the given role and returns its ID.
// The password is "password".
func CreateTestUser(t *testing.T, conn *db.DB, username, role string) int64 {
	t.Helper()

	hash, err := auth.HashPassword("password", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	var id int64
	err = conn.QueryRow(`
		INSERT INTO users (username, password_hash, role)
		VALUES (?, ?, ?)
		RETURNING id
	`, username, hash, role).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return id
}

// SetUserFlag sets one of is_banned, is_chat_muted or is_online.
func SetUserFlag(t *testing.T, conn *db.DB, userID int64, column string, value bool) {
	t.Helper()

	switch column {
	case "is_banned", "is_chat_muted", "is_online":
	default:
		t.Fatalf("Unknown user flag %q", column)
	}

	if _, err := conn.Exec("UPDATE users SET "+column+" = ? WHERE id = ?", value, userID); err != nil {
		t.Fatalf("Failed to set %s: %v", column, err)
	}
}

// CreateTestPoll inserts a poll with one option per title and returns the
// poll ID and option IDs in order.
func CreateTestPoll(t *testing.T, conn *db.DB, active bool, titles ...string) (int64, []int64) {
	t.Helper()

	var pollID int64
	err := conn.QueryRow("INSERT INTO polls (is_active) VALUES (?) RETURNING id", active).Scan(&pollID)
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	optionIDs := make([]int64, 0, len(titles))
	for _, title := range titles {
		var id int64
		err := conn.QueryRow(`
			INSERT INTO poll_options (poll_id, title, vk_url)
			VALUES (?, ?, ?)
			RETURNING id
		`, pollID, title, "https://vk.com/video-"+title).Scan(&id)
		if err != nil {
			t.Fatalf("Failed to create test option: %v", err)
		}
		optionIDs = append(optionIDs, id)
	}

	return pollID, optionIDs
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, conn *db.DB, table string) int {
	t.Helper()

	var n int
	if err := conn.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// AssertError checks the status code and the {"error": ...} message
func AssertError(t *testing.T, w *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	AssertStatus(t, w, status)

	var resp models.ErrorResponse
	AssertJSON(t, w, &resp)
	if resp.Error != message {
		t.Errorf("Expected error %q, got %q", message, resp.Error)
	}
}
