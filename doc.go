// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the stream-panel API server.

stream-panel is the backend of a streaming site: user accounts with roles,
bans and chat mutes, a chat log, and a "now playing" video panel with
audience polls.

# Starting the Server

The server reads a .env file if present, then environment variables or CLI
flags:

	DATABASE_URL=postgres://... go run .

Or with flags:

	go run . -p 3318 -t sqlite -d "file:panel.db?_pragma=foreign_keys(1)"

# Configuration

Required settings:

  - DATABASE_URL (-d): connection string for the store

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): postgres or sqlite (default: postgres)
  - REDIS_URL (-redis): enables chat rate limiting
  - CHAT_RATE_LIMIT, CHAT_RATE_WINDOW: messages allowed per window
  - MAX_MESSAGE_LENGTH, MAX_MESSAGE_LIMIT: chat bounds
  - BCRYPT_COST: password hashing cost

If Redis cannot be reached the server starts without rate limiting.

# Architecture

  - handlers: user directory, chat log and video/poll panel
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers, error mapping
  - errs: domain error kinds and their HTTP status codes
  - models: Request/response and domain types
  - auth: bcrypt password hashing
  - db: connection, dialects and schema
  - ratelimit: Redis-backed chat throttling
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
