// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/stream-panel/cliparse"
	"github.com/danielhkuo/stream-panel/db"
	"github.com/danielhkuo/stream-panel/handlers"
	"github.com/danielhkuo/stream-panel/middleware"
	"github.com/danielhkuo/stream-panel/ratelimit"
)

// NewRouter registers every endpoint. limiter may be nil.
func NewRouter(db *db.DB, cfg cliparse.Config, limiter ratelimit.Limiter) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(db, cfg)
	chatHandler := handlers.NewChatHandler(db, cfg, limiter)
	panelHandler := handlers.NewPanelHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Endpoint groups take every method and dispatch on method + action
	// themselves, so unsupported combinations get a JSON error instead of 405
	mux.HandleFunc("/auth", middleware.WithLogging(userHandler.ServeHTTP))
	mux.HandleFunc("/chat", middleware.WithLogging(chatHandler.ServeHTTP))
	mux.HandleFunc("/video", middleware.WithLogging(panelHandler.ServeHTTP))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("stream-panel API v1"))
	})

	return mux
}
