// Package store persists rooms and their members. The engine owns the
// decisions (when a room dies, who may act); the store owns atomicity: every
// method either fully applies or leaves the data untouched.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/svintus/svintus/internal/models"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrMemberNotFound = errors.New("member not found")
	ErrNameTaken      = errors.New("room name already taken")
)

// Store is the session store contract. It is injected into the engine; there
// is no package-level handle.
type Store interface {
	// CreateRoom atomically persists a new room together with its admin
	// member and assigns room.ID. Returns ErrNameTaken if the name is in use.
	CreateRoom(ctx context.Context, room *models.Room, admin *models.Member) error

	// RoomByName fetches a room and its membership, in join order.
	RoomByName(ctx context.Context, name string) (*models.Room, error)

	// RoomByID fetches a room and its membership, in join order.
	RoomByID(ctx context.Context, id int64) (*models.Room, error)

	// MemberWithRoom fetches a member together with its owning room (and the
	// room's full membership) in one logically atomic read.
	MemberWithRoom(ctx context.Context, memberID uuid.UUID) (*models.Member, *models.Room, error)

	// AddMember seats a member in the room.
	AddMember(ctx context.Context, roomID int64, member *models.Member) error

	// StartRoom sets the room's status to STARTED and installs the heap.
	StartRoom(ctx context.Context, roomID int64, heap []string) error

	// DrawFromHeap atomically removes up to count cards from the front of the
	// room's heap, appends them to the member's hand and returns them in draw
	// order. Fewer cards than requested is not an error.
	DrawFromHeap(ctx context.Context, roomID int64, memberID uuid.UUID, count int) ([]string, error)

	// RemoveMember unseats a member. Removing an unknown member is a no-op.
	RemoveMember(ctx context.Context, memberID uuid.UUID) error

	// DeleteRoom removes the room and, explicitly, all of its members.
	DeleteRoom(ctx context.Context, roomID int64) error
}
