// internal/models/room.go
package models

import "github.com/google/uuid"

// RoomStatus is the lifecycle state of a room. There is no explicit
// "finished" state; a room ends when its last member leaves.
type RoomStatus string

const (
	RoomPending RoomStatus = "PENDING"
	RoomStarted RoomStatus = "STARTED"
)

const (
	// MaxRoomMembers caps how many members may be seated in one room.
	MaxRoomMembers = 10
	// MinPlayersToStart is the minimum membership required to start a game.
	MinPlayersToStart = 2
)

// Room represents a row in the rooms table plus its loaded membership.
// The numeric ID is the persistence key; Token is the public-facing handle
// used for channel naming so sequential ids never leak to clients.
type Room struct {
	ID      int64      `json:"id"`
	Token   uuid.UUID  `json:"token"`
	Name    string     `json:"gameName"`
	Status  RoomStatus `json:"gameStatus"`
	Heap    []string   `json:"-"`
	Members []*Member  `json:"-"`
}

// RoomInfo is the public projection of a Room. The heap and membership are
// deliberately omitted.
type RoomInfo struct {
	ID     int64      `json:"id"`
	Token  uuid.UUID  `json:"token"`
	Name   string     `json:"gameName"`
	Status RoomStatus `json:"gameStatus"`
}

// Public returns the client-safe view of the room.
func (r *Room) Public() RoomInfo {
	return RoomInfo{
		ID:     r.ID,
		Token:  r.Token,
		Name:   r.Name,
		Status: r.Status,
	}
}

// Member returns the seated member with the given id, or nil.
func (r *Room) Member(id uuid.UUID) *Member {
	for _, m := range r.Members {
		if m.ID == id {
			return m
		}
	}
	return nil
}
