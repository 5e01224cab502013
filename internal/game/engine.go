// Package game holds the room state machine: it validates client actions
// against a room's current state, mutates the session store, and returns the
// notifications to deliver.
package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/svintus/svintus/internal/deck"
	"github.com/svintus/svintus/internal/models"
	"github.com/svintus/svintus/internal/protocol"
	"github.com/svintus/svintus/internal/store"
)

// systemUsername is the sender name attached to system-authored chat lines.
const systemUsername = "ADMIN"

// Engine applies client actions to rooms. One instance serves every room;
// actions on the same room are serialized through the lock table.
type Engine struct {
	store store.Store
	log   *logrus.Logger
	locks *lockTable
}

// NewEngine builds an engine on the given session store.
func NewEngine(st store.Store, logger *logrus.Logger) *Engine {
	return &Engine{
		store: st,
		log:   logger,
		locks: newLockTable(),
	}
}

// CreateRoom creates a room named name with the actor seated as its admin.
// The returned token identifies the room's channel for the gateway.
func (e *Engine) CreateRoom(ctx context.Context, actorID uuid.UUID, name, username string) (uuid.UUID, []protocol.Notification, error) {
	_, err := e.store.RoomByName(ctx, name)
	if err == nil {
		return uuid.Nil, nil, errDuplicateName(name)
	}
	if !errors.Is(err, store.ErrRoomNotFound) {
		return uuid.Nil, nil, fmt.Errorf("lookup room %q: %w", name, err)
	}

	admin := &models.Member{
		ID:       actorID,
		Username: username,
		Role:     models.RoleAdmin,
		Hand:     []string{},
	}
	room := &models.Room{
		Token:  uuid.New(),
		Name:   name,
		Status: models.RoomPending,
		Heap:   []string{},
	}
	if err := e.store.CreateRoom(ctx, room, admin); err != nil {
		// Two concurrent creates can race past the lookup; the store's unique
		// name constraint settles it.
		if errors.Is(err, store.ErrNameTaken) {
			return uuid.Nil, nil, errDuplicateName(name)
		}
		return uuid.Nil, nil, fmt.Errorf("create room %q: %w", name, err)
	}

	e.log.WithFields(logrus.Fields{
		"room":   room.Name,
		"roomID": room.ID,
		"member": actorID,
	}).Info("room created")

	notifs := []protocol.Notification{
		self(actorID, protocol.NotifyGameInfo, room.Public()),
		self(actorID, protocol.NotifyWhoAmI, whoAmI(admin)),
	}
	return room.Token, notifs, nil
}

// JoinRoom seats the actor as a player in the room named name.
func (e *Engine) JoinRoom(ctx context.Context, actorID uuid.UUID, name, username string) (uuid.UUID, []protocol.Notification, error) {
	probe, err := e.store.RoomByName(ctx, name)
	if errors.Is(err, store.ErrRoomNotFound) {
		return uuid.Nil, nil, errNoSuchRoom(name)
	}
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("lookup room %q: %w", name, err)
	}

	l := e.locks.acquire(probe.ID)
	defer l.Unlock()

	room, err := e.store.RoomByID(ctx, probe.ID)
	if errors.Is(err, store.ErrRoomNotFound) {
		// Emptied out and deleted while we waited for the lock.
		return uuid.Nil, nil, errNoSuchRoom(name)
	}
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("load room %d: %w", probe.ID, err)
	}
	if room.Status == models.RoomStarted {
		return uuid.Nil, nil, errAlreadyStarted()
	}
	if len(room.Members) >= models.MaxRoomMembers {
		return uuid.Nil, nil, errRoomFull()
	}

	member := &models.Member{
		ID:       actorID,
		Username: username,
		Role:     models.RolePlayer,
		Hand:     []string{},
	}
	if err := e.store.AddMember(ctx, room.ID, member); err != nil {
		return uuid.Nil, nil, fmt.Errorf("add member to room %d: %w", room.ID, err)
	}

	e.log.WithFields(logrus.Fields{
		"room":   room.Name,
		"member": actorID,
	}).Info("member joined")

	roster := publicMembers(append(room.Members, member))
	notifs := []protocol.Notification{
		self(actorID, protocol.NotifyGameInfo, room.Public()),
		self(actorID, protocol.NotifyWhoAmI, whoAmI(member)),
		roomExcept(room.Token, actorID, protocol.NotifyUserJoined, member.Public()),
		toRoom(room.Token, protocol.NotifyUsersList, roster),
	}
	return room.Token, notifs, nil
}

// StartGame shuffles a fresh heap into the room and flips it to STARTED. Only
// the room's admin may start, and only with at least two members seated.
func (e *Engine) StartGame(ctx context.Context, actorID uuid.UUID, roomID int64) (uuid.UUID, []protocol.Notification, error) {
	l := e.locks.acquire(roomID)
	defer l.Unlock()

	room, err := e.store.RoomByID(ctx, roomID)
	if errors.Is(err, store.ErrRoomNotFound) {
		return uuid.Nil, nil, errRoomGone()
	}
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("load room %d: %w", roomID, err)
	}
	if len(room.Members) < models.MinPlayersToStart {
		return uuid.Nil, nil, errInsufficientPlayers()
	}

	actor := room.Member(actorID)
	if actor == nil {
		return uuid.Nil, nil, errNotAMember()
	}
	if actor.Role != models.RoleAdmin {
		return uuid.Nil, nil, errForbidden()
	}

	heap := deck.Generate()
	if err := e.store.StartRoom(ctx, room.ID, heap); err != nil {
		return uuid.Nil, nil, fmt.Errorf("start room %d: %w", room.ID, err)
	}
	room.Status = models.RoomStarted

	e.log.WithFields(logrus.Fields{
		"room": room.Name,
		"heap": len(heap),
	}).Info("game started")

	started := protocol.GameStarted{
		Room:     room.Public(),
		Members:  publicMembers(room.Members),
		HeapSize: len(heap),
	}
	return room.Token, []protocol.Notification{
		toRoom(room.Token, protocol.NotifyGameStarted, started),
	}, nil
}

// DrawCards moves up to count cards from the front of the room's heap into
// the actor's hand. Drawing more than the heap holds truncates rather than
// fails. The result is private to the actor.
func (e *Engine) DrawCards(ctx context.Context, actorID uuid.UUID, count int) (uuid.UUID, []protocol.Notification, error) {
	member, room, err := e.store.MemberWithRoom(ctx, actorID)
	if errors.Is(err, store.ErrMemberNotFound) || errors.Is(err, store.ErrRoomNotFound) {
		return uuid.Nil, nil, errNotInGame()
	}
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("load member %s: %w", actorID, err)
	}

	l := e.locks.acquire(room.ID)
	defer l.Unlock()

	drawn, err := e.store.DrawFromHeap(ctx, room.ID, actorID, count)
	if errors.Is(err, store.ErrRoomNotFound) || errors.Is(err, store.ErrMemberNotFound) {
		return uuid.Nil, nil, errNotInGame()
	}
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("draw from room %d: %w", room.ID, err)
	}
	member.Hand = append(member.Hand, drawn...)

	return room.Token, []protocol.Notification{
		self(actorID, protocol.NotifyWhoAmI, whoAmI(member)),
	}, nil
}

// SendMessage broadcasts a chat line to the actor's room. Chat is never
// attributed admin status, whatever the sender's role.
func (e *Engine) SendMessage(ctx context.Context, actorID uuid.UUID, text string) (uuid.UUID, []protocol.Notification, error) {
	member, room, err := e.store.MemberWithRoom(ctx, actorID)
	if errors.Is(err, store.ErrMemberNotFound) || errors.Is(err, store.ErrRoomNotFound) {
		return uuid.Nil, nil, errNotInGame()
	}
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("load member %s: %w", actorID, err)
	}

	msg := protocol.NewMessage{
		Message:  text,
		Username: member.Username,
		IsAdmin:  false,
	}
	return room.Token, []protocol.Notification{
		toRoom(room.Token, protocol.NotifyNewMessage, msg),
	}, nil
}

// Leave removes the actor from its room, announcing the departure to whoever
// remains. The last member to leave takes the room with them. Unknown actors
// are a no-op: disconnects race with explicit leaves.
func (e *Engine) Leave(ctx context.Context, actorID uuid.UUID) ([]protocol.Notification, error) {
	_, probe, err := e.store.MemberWithRoom(ctx, actorID)
	if errors.Is(err, store.ErrMemberNotFound) || errors.Is(err, store.ErrRoomNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load member %s: %w", actorID, err)
	}

	l := e.locks.acquire(probe.ID)
	defer l.Unlock()

	// Joins can land between the member lookup and the lock; only the locked
	// read decides who remains.
	room, err := e.store.RoomByID(ctx, probe.ID)
	if errors.Is(err, store.ErrRoomNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load room %d: %w", probe.ID, err)
	}
	member := room.Member(actorID)
	if member == nil {
		return nil, nil
	}

	if err := e.store.RemoveMember(ctx, actorID); err != nil {
		return nil, fmt.Errorf("remove member %s: %w", actorID, err)
	}

	remaining := make([]*models.Member, 0, len(room.Members))
	for _, m := range room.Members {
		if m.ID != actorID {
			remaining = append(remaining, m)
		}
	}

	if len(remaining) == 0 {
		if err := e.store.DeleteRoom(ctx, room.ID); err != nil {
			return nil, fmt.Errorf("delete empty room %d: %w", room.ID, err)
		}
		e.locks.drop(room.ID)
		e.log.WithField("room", room.Name).Info("room emptied and deleted")
		return nil, nil
	}

	// If the departing member was the admin the room keeps going without one;
	// a still-PENDING room can then never be started and must be abandoned.
	e.log.WithFields(logrus.Fields{
		"room":   room.Name,
		"member": actorID,
	}).Info("member left")

	farewell := protocol.NewMessage{
		Message:  fmt.Sprintf("%s left the game", member.Username),
		Username: systemUsername,
		IsAdmin:  true,
	}
	return []protocol.Notification{
		roomExcept(room.Token, actorID, protocol.NotifyNewMessage, farewell),
		roomExcept(room.Token, actorID, protocol.NotifyUsersList, publicMembers(remaining)),
	}, nil
}

func self(actorID uuid.UUID, kind string, payload any) protocol.Notification {
	return protocol.Notification{
		Kind:    kind,
		Scope:   protocol.ScopeSelf,
		Target:  actorID,
		Payload: payload,
	}
}

func toRoom(token uuid.UUID, kind string, payload any) protocol.Notification {
	return protocol.Notification{
		Kind:    kind,
		Scope:   protocol.ScopeRoom,
		Room:    token,
		Payload: payload,
	}
}

func roomExcept(token, actorID uuid.UUID, kind string, payload any) protocol.Notification {
	return protocol.Notification{
		Kind:    kind,
		Scope:   protocol.ScopeRoomExceptSelf,
		Room:    token,
		Target:  actorID,
		Payload: payload,
	}
}

func whoAmI(m *models.Member) protocol.WhoAmI {
	return protocol.WhoAmI{
		MemberInfo: m.Public(),
		Hand:       m.Hand,
	}
}

func publicMembers(members []*models.Member) []models.MemberInfo {
	infos := make([]models.MemberInfo, 0, len(members))
	for _, m := range members {
		infos = append(infos, m.Public())
	}
	return infos
}
