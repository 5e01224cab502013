// Package protocol defines the room-scoped event protocol: the action kinds
// clients send, the notification kinds the server emits, and the delivery
// scope attached to each notification.
package protocol

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/svintus/svintus/internal/models"
)

// Inbound action kinds. Leaving is implicit in connection loss.
const (
	ActionCreateGame  = "create_game"
	ActionJoinGame    = "join_game"
	ActionStartGame   = "start_game"
	ActionGetCards    = "get_cards"
	ActionSendMessage = "send_message"
)

// Outbound notification kinds.
const (
	NotifyServerError = "server_error"
	NotifyGameError   = "game_error"
	NotifyGameInfo    = "game_info"
	NotifyWhoAmI      = "who_am_i"
	NotifyUserJoined  = "user_joined"
	NotifyUsersList   = "users_list"
	NotifyGameStarted = "game_started"
	NotifyNewMessage  = "new_message"
)

// Envelope frames every message on the wire, in both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Scope says who a notification is addressed to.
type Scope int

const (
	// ScopeSelf targets the acting connection only.
	ScopeSelf Scope = iota
	// ScopeMember targets one specific member's connection.
	ScopeMember
	// ScopeRoom targets every connection subscribed to the room channel.
	ScopeRoom
	// ScopeRoomExceptSelf targets the room channel minus the actor.
	ScopeRoomExceptSelf
)

// Notification is one outbound message plus its delivery scope. Room is the
// room's public token (never the numeric id) and is set for the two
// room-scoped scopes. Target is the recipient for ScopeSelf/ScopeMember and
// the excluded member for ScopeRoomExceptSelf.
type Notification struct {
	Kind    string
	Scope   Scope
	Room    uuid.UUID
	Target  uuid.UUID
	Payload any
}

// Client action payloads.

type CreateGame struct {
	GameName string `json:"gameName"`
	Username string `json:"username"`
}

type JoinGame struct {
	GameName string `json:"gameName"`
	Username string `json:"username"`
}

type StartGame struct {
	GameID int64 `json:"gameId"`
}

type GetCards struct {
	Count int `json:"count"`
}

type SendMessage struct {
	Message string `json:"message"`
}

// Server notification payloads.

// ErrorInfo carries the human-readable message for game_error and
// server_error notifications.
type ErrorInfo struct {
	Message string `json:"message"`
}

// WhoAmI tells a member who they are in the room, including their private
// hand. It is also re-sent after each draw as the hand delta carrier.
type WhoAmI struct {
	models.MemberInfo
	Hand []string `json:"cards"`
}

// GameStarted announces the transition to STARTED. Only the heap size is
// published; the heap contents stay server-side.
type GameStarted struct {
	Room     models.RoomInfo     `json:"game"`
	Members  []models.MemberInfo `json:"users"`
	HeapSize int                 `json:"heapSize"`
}

// NewMessage is a chat line. IsAdmin is false for player chat regardless of
// the sender's role; only system-authored messages set it.
type NewMessage struct {
	Message  string `json:"message"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}
