package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svintus/svintus/internal/models"
)

func newRoom(name string) *models.Room {
	return &models.Room{
		Token:  uuid.New(),
		Name:   name,
		Status: models.RoomPending,
		Heap:   []string{},
	}
}

func newMember(username string, role models.MemberRole) *models.Member {
	return &models.Member{
		ID:       uuid.New(),
		Username: username,
		Role:     role,
		Hand:     []string{},
	}
}

func TestCreateRoomAssignsIDAndSeatsAdmin(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	room := newRoom("kitchen")
	admin := newMember("alice", models.RoleAdmin)
	require.NoError(t, s.CreateRoom(ctx, room, admin))
	assert.NotZero(t, room.ID)
	assert.Equal(t, room.ID, admin.RoomID)

	got, err := s.RoomByName(ctx, "kitchen")
	require.NoError(t, err)
	require.Len(t, got.Members, 1)
	assert.Equal(t, admin.ID, got.Members[0].ID)
	assert.Equal(t, models.RoleAdmin, got.Members[0].Role)
}

func TestCreateRoomNameTaken(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	require.NoError(t, s.CreateRoom(ctx, newRoom("kitchen"), newMember("alice", models.RoleAdmin)))
	err := s.CreateRoom(ctx, newRoom("kitchen"), newMember("bob", models.RoleAdmin))
	assert.ErrorIs(t, err, ErrNameTaken)
}

func TestRoomLookupsNotFound(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	_, err := s.RoomByName(ctx, "nope")
	assert.ErrorIs(t, err, ErrRoomNotFound)
	_, err = s.RoomByID(ctx, 42)
	assert.ErrorIs(t, err, ErrRoomNotFound)
	_, _, err = s.MemberWithRoom(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestAddMemberAndMemberWithRoom(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	room := newRoom("kitchen")
	admin := newMember("alice", models.RoleAdmin)
	require.NoError(t, s.CreateRoom(ctx, room, admin))

	bob := newMember("bob", models.RolePlayer)
	require.NoError(t, s.AddMember(ctx, room.ID, bob))

	member, owner, err := s.MemberWithRoom(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", member.Username)
	assert.Equal(t, room.ID, owner.ID)
	require.Len(t, owner.Members, 2)
	// Join order is preserved.
	assert.Equal(t, admin.ID, owner.Members[0].ID)
	assert.Equal(t, bob.ID, owner.Members[1].ID)
}

func TestStartRoomInstallsHeap(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	room := newRoom("kitchen")
	require.NoError(t, s.CreateRoom(ctx, room, newMember("alice", models.RoleAdmin)))

	heap := []string{"a", "b", "c"}
	require.NoError(t, s.StartRoom(ctx, room.ID, heap))

	got, err := s.RoomByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStarted, got.Status)
	assert.Equal(t, heap, got.Heap)

	assert.ErrorIs(t, s.StartRoom(ctx, 999, heap), ErrRoomNotFound)
}

func TestDrawFromHeap(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	room := newRoom("kitchen")
	admin := newMember("alice", models.RoleAdmin)
	require.NoError(t, s.CreateRoom(ctx, room, admin))
	require.NoError(t, s.StartRoom(ctx, room.ID, []string{"a", "b", "c", "d"}))

	drawn, err := s.DrawFromHeap(ctx, room.ID, admin.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, drawn)

	member, owner, err := s.MemberWithRoom(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, member.Hand)
	assert.Equal(t, []string{"d"}, owner.Heap)

	// Truncating removal, not an error.
	drawn, err = s.DrawFromHeap(ctx, room.ID, admin.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, drawn)

	drawn, err = s.DrawFromHeap(ctx, room.ID, admin.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, drawn)

	_, err = s.DrawFromHeap(ctx, room.ID, uuid.New(), 1)
	assert.ErrorIs(t, err, ErrMemberNotFound)
	_, err = s.DrawFromHeap(ctx, 999, admin.ID, 1)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRemoveMember(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	room := newRoom("kitchen")
	admin := newMember("alice", models.RoleAdmin)
	require.NoError(t, s.CreateRoom(ctx, room, admin))
	bob := newMember("bob", models.RolePlayer)
	require.NoError(t, s.AddMember(ctx, room.ID, bob))

	require.NoError(t, s.RemoveMember(ctx, admin.ID))

	got, err := s.RoomByID(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, got.Members, 1)
	assert.Equal(t, bob.ID, got.Members[0].ID)

	_, _, err = s.MemberWithRoom(ctx, admin.ID)
	assert.ErrorIs(t, err, ErrMemberNotFound)

	// Removing an unknown member is a no-op.
	assert.NoError(t, s.RemoveMember(ctx, uuid.New()))
}

func TestDeleteRoomCascadesMembers(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	room := newRoom("kitchen")
	admin := newMember("alice", models.RoleAdmin)
	require.NoError(t, s.CreateRoom(ctx, room, admin))

	require.NoError(t, s.DeleteRoom(ctx, room.ID))

	_, err := s.RoomByName(ctx, "kitchen")
	assert.ErrorIs(t, err, ErrRoomNotFound)
	_, _, err = s.MemberWithRoom(ctx, admin.ID)
	assert.ErrorIs(t, err, ErrMemberNotFound)

	// Name is reusable once the room is gone.
	require.NoError(t, s.CreateRoom(ctx, newRoom("kitchen"), newMember("carol", models.RoleAdmin)))
}

func TestReadsReturnCopies(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	room := newRoom("kitchen")
	admin := newMember("alice", models.RoleAdmin)
	require.NoError(t, s.CreateRoom(ctx, room, admin))
	require.NoError(t, s.StartRoom(ctx, room.ID, []string{"a", "b"}))

	got, err := s.RoomByID(ctx, room.ID)
	require.NoError(t, err)
	got.Heap[0] = "mutated"
	got.Members[0].Username = "mallory"

	again, err := s.RoomByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", again.Heap[0])
	assert.Equal(t, "alice", again.Members[0].Username)
}
