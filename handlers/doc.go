// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the stream-panel API.

# Handler Types

Each endpoint group is a struct with database and config dependencies:

  - UserHandler: registration, login and moderation (/auth)
  - ChatHandler: chat posting, listing and deletion (/chat)
  - PanelHandler: current video and polls (/video)

Handlers are created via constructor functions:

	userHandler := handlers.NewUserHandler(db, cfg)
	chatHandler := handlers.NewChatHandler(db, cfg, limiter)

Each handler's ServeHTTP picks an operation from the HTTP method and the
"action" field (query string for GET, JSON body otherwise). Unknown
combinations answer 400 "Неизвестное действие".

Operations are also exported as methods taking a context and returning
(result, error); errors are *errs.Error values or wrapped store failures.

# Users

	POST {action: register|login, username, password}
	GET  ?action=list
	PUT  {action: toggle_chat_mute|toggle_ban|change_role|set_offline, userId}

Banned users are refused at login before the password is checked.

# Chat

	POST   {userId, text}
	GET    ?limit=N
	DELETE ?id=N | ?action=clear

Messages store a snapshot of the author's username and role. Muted users
cannot post. Clearing restarts message ids at 1.

# Video and Polls

	GET  ?action=current_video|active_poll
	POST {action: change_video|create_poll|vote}
	PUT  {action: end_poll}

At most one poll is active. Creating a poll ends the previous one in the
same transaction. Each user votes once per poll.
*/
package handlers
