// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

JSON field names are camelCase to match the site frontend.

# Request Types

Each endpoint group decodes one request type; the Action field selects the
operation:

  - AuthRequest: action, username, password, userId, role
  - PostMessageRequest: userId, text
  - PanelRequest: action, title, vkUrl, description, options, userId, optionId

# Response Types

  - PublicUser: register/login result (no password hash)
  - UserSummary: PublicUser plus isOnline, for the user list
  - ToggleChatMuteResponse, ToggleBanResponse, ChangeRoleResponse
  - CreatePollResponse: pollId, success
  - ActivePollResponse: active, pollId, options
  - SuccessResponse: success
  - ErrorResponse: error

# Domain Types

  - User: account row including the bcrypt hash
  - Message: chat message with author snapshot
  - Video: current video record
  - PollOption: option with vote counter

# Constants

Roles, lowest to highest:

	RoleUser        = "user"
	RoleJuniorAdmin = "junior-admin"
	RoleAdmin       = "admin"
	RoleSeniorAdmin = "senior-admin"
	RoleCreator     = "creator"

Actions are the strings the frontend sends, e.g. ActionRegister = "register",
ActionVote = "vote", ActionEndPoll = "end_poll".
*/
package models
