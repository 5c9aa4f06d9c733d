// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles the store connection and schema creation.

# Dialects

Two stores are supported, selected by DATABASE_TYPE:

  - postgres: production store (github.com/lib/pq)
  - sqlite: single-file store for development and tests (modernc.org/sqlite)

Queries are written once with '?' placeholders. DB and Tx rebind them to
$1..$n when talking to Postgres:

	conn, err := db.Open(ctx, db.Postgres, cfg.DatabaseURL)
	conn.QueryRowContext(ctx, "SELECT id FROM users WHERE username = ?", name)

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(ctx, conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - users: accounts, roles, ban/mute flags, online status
  - messages: chat log (id sequence is reset by ClearMessagesStatements)
  - current_video: video history, newest row is current
  - polls: poll lifecycle, at most one active (partial unique index)
  - poll_options: options with vote counters
  - user_votes: one row per (poll_id, user_id)

# Relationships

	users 1──* messages
	polls 1──* poll_options
	polls 1──* user_votes
	poll_options 1──* user_votes

# Constraint Errors

IsUniqueViolation recognises unique-constraint failures from both drivers so
callers can turn races into domain errors.
*/
package db
