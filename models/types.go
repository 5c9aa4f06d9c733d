package models

import "time"

// User roles, lowest to highest
const (
	RoleUser        = "user"
	RoleJuniorAdmin = "junior-admin"
	RoleAdmin       = "admin"
	RoleSeniorAdmin = "senior-admin"
	RoleCreator     = "creator"
)

var Roles = []string{RoleUser, RoleJuniorAdmin, RoleAdmin, RoleSeniorAdmin, RoleCreator}

func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Actions
const (
	ActionRegister       = "register"
	ActionLogin          = "login"
	ActionList           = "list"
	ActionToggleChatMute = "toggle_chat_mute"
	ActionToggleBan      = "toggle_ban"
	ActionChangeRole     = "change_role"
	ActionSetOffline     = "set_offline"

	ActionClear = "clear"

	ActionCurrentVideo = "current_video"
	ActionActivePoll   = "active_poll"
	ActionChangeVideo  = "change_video"
	ActionCreatePoll   = "create_poll"
	ActionVote         = "vote"
	ActionEndPoll      = "end_poll"
)

// Request types

type AuthRequest struct {
	Action   string `json:"action"`
	Username string `json:"username"`
	Password string `json:"password"`
	UserID   int64  `json:"userId"`
	Role     string `json:"role"`
}

type PostMessageRequest struct {
	UserID int64  `json:"userId"`
	Text   string `json:"text"`
}

type PollOptionInput struct {
	Title string `json:"title"`
	VKURL string `json:"vkUrl"`
}

type PanelRequest struct {
	Action      string            `json:"action"`
	Title       string            `json:"title"`
	VKURL       string            `json:"vkUrl"`
	Description string            `json:"description"`
	Options     []PollOptionInput `json:"options"`
	UserID      int64             `json:"userId"`
	OptionID    int64             `json:"optionId"`
}

// Response types

type ToggleChatMuteResponse struct {
	IsChatMuted bool `json:"isChatMuted"`
}

type ToggleBanResponse struct {
	IsBanned bool `json:"isBanned"`
}

type ChangeRoleResponse struct {
	Role string `json:"role"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type CreatePollResponse struct {
	PollID  int64 `json:"pollId"`
	Success bool  `json:"success"`
}

type ActivePollResponse struct {
	Active  bool         `json:"active"`
	PollID  int64        `json:"pollId,omitempty"`
	Options []PollOption `json:"options,omitempty"`
}

// Domain types

type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"` // Never expose in JSON
	Role         string     `json:"role"`
	IsBanned     bool       `json:"isBanned"`
	IsChatMuted  bool       `json:"isChatMuted"`
	IsOnline     bool       `json:"isOnline"`
	LastSeen     *time.Time `json:"lastSeen,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// PublicUser is what register and login return to the client.
type PublicUser struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	IsBanned    bool   `json:"isBanned"`
	IsChatMuted bool   `json:"isChatMuted"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Username:    u.Username,
		Role:        u.Role,
		IsBanned:    u.IsBanned,
		IsChatMuted: u.IsChatMuted,
	}
}

// UserSummary is one row of the admin user list.
type UserSummary struct {
	PublicUser
	IsOnline bool `json:"isOnline"`
}

type Message struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"-"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

type Video struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	VKURL       string `json:"vkUrl"`
	Description string `json:"description"`
}

type PollOption struct {
	ID     int64  `json:"id"`
	PollID int64  `json:"-"`
	Title  string `json:"title"`
	VKURL  string `json:"vkUrl"`
	Votes  int    `json:"votes"`
}

// Error response

type ErrorResponse struct {
	Error string `json:"error"`
}
