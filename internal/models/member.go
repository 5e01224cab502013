package models

import "github.com/google/uuid"

// MemberRole distinguishes the room creator from everyone who joined later.
// Exactly one admin exists per room, fixed at creation.
type MemberRole string

const (
	RoleAdmin  MemberRole = "ADMIN"
	RolePlayer MemberRole = "PLAYER"
)

// Member is a participant seated in exactly one room. Its id doubles as the
// live connection's identity, so a member lives no longer than the session
// that created it.
type Member struct {
	ID       uuid.UUID  `json:"id"`
	Username string     `json:"username"`
	Role     MemberRole `json:"role"`
	Hand     []string   `json:"-"`
	RoomID   int64      `json:"-"`
}

// MemberInfo is the public projection of a Member; the hand stays private.
type MemberInfo struct {
	ID       uuid.UUID  `json:"id"`
	Username string     `json:"username"`
	Role     MemberRole `json:"role"`
}

// Public returns the client-safe view of the member.
func (m *Member) Public() MemberInfo {
	return MemberInfo{
		ID:       m.ID,
		Username: m.Username,
		Role:     m.Role,
	}
}
