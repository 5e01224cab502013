// internal/handlers/game_server.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/svintus/svintus/internal/cache"
	"github.com/svintus/svintus/internal/game"
	"github.com/svintus/svintus/internal/protocol"
)

// GameServer ties the room engine to the connection hub: it decodes inbound
// actions, runs them through the engine, and fans the resulting notifications
// out to the right sockets.
type GameServer struct {
	Engine *game.Engine
	Hub    *Hub
	Logger *logrus.Logger
}

func NewGameServer(engine *game.Engine, logger *logrus.Logger) *GameServer {
	return &GameServer{
		Engine: engine,
		Hub:    NewHub(),
		Logger: logger,
	}
}

// dispatch routes one decoded envelope to its engine operation.
func (s *GameServer) dispatch(ctx context.Context, cl *client, env protocol.Envelope) {
	var (
		notifs    []protocol.Notification
		roomToken uuid.UUID
		err       error
	)

	switch env.Type {
	case protocol.ActionCreateGame:
		var p protocol.CreateGame
		if !s.decode(cl, env, &p) {
			return
		}
		roomToken, notifs, err = s.Engine.CreateRoom(ctx, cl.memberID, p.GameName, p.Username)

	case protocol.ActionJoinGame:
		var p protocol.JoinGame
		if !s.decode(cl, env, &p) {
			return
		}
		roomToken, notifs, err = s.Engine.JoinRoom(ctx, cl.memberID, p.GameName, p.Username)

	case protocol.ActionStartGame:
		var p protocol.StartGame
		if !s.decode(cl, env, &p) {
			return
		}
		roomToken, notifs, err = s.Engine.StartGame(ctx, cl.memberID, p.GameID)

	case protocol.ActionGetCards:
		var p protocol.GetCards
		if !s.decode(cl, env, &p) {
			return
		}
		roomToken, notifs, err = s.Engine.DrawCards(ctx, cl.memberID, p.Count)

	case protocol.ActionSendMessage:
		var p protocol.SendMessage
		if !s.decode(cl, env, &p) {
			return
		}
		roomToken, notifs, err = s.Engine.SendMessage(ctx, cl.memberID, p.Message)

	default:
		cl.send(outbound{
			Type:    protocol.NotifyGameError,
			Payload: protocol.ErrorInfo{Message: fmt.Sprintf("unknown action type: %s", env.Type)},
		})
		return
	}

	if err != nil {
		s.reportError(cl, err)
		return
	}

	if roomToken != uuid.Nil {
		s.Hub.Subscribe(roomToken, cl.memberID)
	}
	s.Hub.Deliver(notifs)
	s.recordAction(ctx, cl.memberID, roomToken, env)
}

func (s *GameServer) decode(cl *client, env protocol.Envelope, into any) bool {
	if err := json.Unmarshal(env.Payload, into); err != nil {
		cl.send(outbound{
			Type:    protocol.NotifyGameError,
			Payload: protocol.ErrorInfo{Message: fmt.Sprintf("invalid payload for %s", env.Type)},
		})
		return false
	}
	return true
}

// reportError maps a validation failure to game_error for the actor only.
// Anything else is logged with its cause and surfaced as a generic
// server_error; the underlying error never reaches the client.
func (s *GameServer) reportError(cl *client, err error) {
	var ge *game.GameError
	if errors.As(err, &ge) {
		cl.send(outbound{
			Type:    protocol.NotifyGameError,
			Payload: protocol.ErrorInfo{Message: ge.Message},
		})
		return
	}

	s.Logger.WithError(err).WithField("member", cl.memberID).Error("action failed")
	cl.send(outbound{
		Type:    protocol.NotifyServerError,
		Payload: protocol.ErrorInfo{Message: "something went wrong"},
	})
}

// recordAction queues the applied action for the historian. Best effort: a
// full or absent queue never fails the action itself.
func (s *GameServer) recordAction(ctx context.Context, actorID, roomToken uuid.UUID, env protocol.Envelope) {
	if !cache.Enabled() {
		return
	}

	var payload map[string]any
	if len(env.Payload) > 0 {
		_ = json.Unmarshal(env.Payload, &payload)
	}
	record := cache.RoomActionRecord{
		RoomToken:  roomToken,
		ActorID:    actorID,
		ActionType: env.Type,
		Payload:    payload,
		Timestamp:  time.Now().Unix(),
	}
	if err := cache.PublishRoomAction(ctx, record); err != nil {
		s.Logger.WithError(err).Warn("failed to publish room action")
	}
}
