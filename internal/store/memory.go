package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/svintus/svintus/internal/models"
)

// Memory is an in-process Store used by tests and as a single-node fallback
// when no database is configured. All reads return copies so callers can
// never alias the stored state.
type Memory struct {
	mu      sync.Mutex
	nextID  int64
	rooms   map[int64]*models.Room
	byName  map[string]int64
	members map[uuid.UUID]*models.Member
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		rooms:   make(map[int64]*models.Room),
		byName:  make(map[string]int64),
		members: make(map[uuid.UUID]*models.Member),
	}
}

func (s *Memory) CreateRoom(ctx context.Context, room *models.Room, admin *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byName[room.Name]; taken {
		return ErrNameTaken
	}

	s.nextID++
	room.ID = s.nextID
	admin.RoomID = room.ID

	stored := copyRoom(room)
	stored.Members = []*models.Member{copyMember(admin)}
	s.rooms[room.ID] = stored
	s.byName[room.Name] = room.ID
	s.members[admin.ID] = stored.Members[0]
	return nil
}

func (s *Memory) RoomByName(ctx context.Context, name string) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byName[name]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return exportRoom(s.rooms[id]), nil
}

func (s *Memory) RoomByID(ctx context.Context, id int64) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[id]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return exportRoom(room), nil
}

func (s *Memory) MemberWithRoom(ctx context.Context, memberID uuid.UUID) (*models.Member, *models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, ok := s.members[memberID]
	if !ok {
		return nil, nil, ErrMemberNotFound
	}
	room, ok := s.rooms[member.RoomID]
	if !ok {
		return nil, nil, ErrRoomNotFound
	}
	return copyMember(member), exportRoom(room), nil
}

func (s *Memory) AddMember(ctx context.Context, roomID int64, member *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	member.RoomID = roomID
	stored := copyMember(member)
	room.Members = append(room.Members, stored)
	s.members[member.ID] = stored
	return nil
}

func (s *Memory) StartRoom(ctx context.Context, roomID int64, heap []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	room.Status = models.RoomStarted
	room.Heap = append([]string(nil), heap...)
	return nil
}

func (s *Memory) DrawFromHeap(ctx context.Context, roomID int64, memberID uuid.UUID, count int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	member, ok := s.members[memberID]
	if !ok {
		return nil, ErrMemberNotFound
	}

	if count < 0 {
		count = 0
	}
	if count > len(room.Heap) {
		count = len(room.Heap)
	}
	drawn := append([]string(nil), room.Heap[:count]...)
	room.Heap = room.Heap[count:]
	member.Hand = append(member.Hand, drawn...)
	return drawn, nil
}

func (s *Memory) RemoveMember(ctx context.Context, memberID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, ok := s.members[memberID]
	if !ok {
		return nil
	}
	delete(s.members, memberID)

	if room, ok := s.rooms[member.RoomID]; ok {
		for i, m := range room.Members {
			if m.ID == memberID {
				room.Members = append(room.Members[:i], room.Members[i+1:]...)
				break
			}
		}
	}
	return nil
}

func (s *Memory) DeleteRoom(ctx context.Context, roomID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[roomID]
	if !ok {
		return nil
	}
	for _, m := range room.Members {
		delete(s.members, m.ID)
	}
	delete(s.byName, room.Name)
	delete(s.rooms, roomID)
	return nil
}

func copyMember(m *models.Member) *models.Member {
	c := *m
	c.Hand = append([]string(nil), m.Hand...)
	return &c
}

func copyRoom(r *models.Room) *models.Room {
	c := *r
	c.Heap = append([]string(nil), r.Heap...)
	c.Members = nil
	return &c
}

func exportRoom(r *models.Room) *models.Room {
	c := copyRoom(r)
	c.Members = make([]*models.Member, 0, len(r.Members))
	for _, m := range r.Members {
		c.Members = append(c.Members, copyMember(m))
	}
	return c
}
