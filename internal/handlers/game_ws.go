// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/svintus/svintus/internal/middleware"
	"github.com/svintus/svintus/internal/protocol"
)

// GameWSHandler upgrades a connection, binds it to a member identity, and
// runs the read/write pump pair until the client goes away. Connection loss
// is a leave: the member is removed from its room on the way out.
func GameWSHandler(logger *logrus.Logger, srv *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Resolve identity before Accept; the cookie has to ride the
		// handshake response.
		memberID, err := EnsureMember(w, r)
		if err != nil {
			logger.Warnf("member authentication failed: %v", err)
			http.Error(w, "authentication failed", http.StatusInternalServerError)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"svintus"},
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "svintus" {
			c.Close(BadSubprotocolError, "client must speak the svintus subprotocol")
			return
		}

		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		cl := &client{
			memberID: memberID,
			out:      make(chan outbound, 16),
		}
		srv.Hub.Register(cl)

		go writePump(ctx, c, cl, logger)
		readPump(ctx, c, cl, srv, logger)

		// The request context dies with the connection; cleanup gets its own.
		leaveCtx, leaveCancel := context.WithTimeout(context.Background(), 5*time.Second)
		notifs, err := srv.Engine.Leave(leaveCtx, memberID)
		leaveCancel()
		if err != nil {
			logger.WithError(err).Warnf("leave cleanup failed for member %s", memberID)
		}
		srv.Hub.Deliver(notifs)
		srv.Hub.Unregister(memberID)

		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, nil)
	}
}

// readPump decodes inbound frames and hands them to the dispatcher until the
// connection closes.
func readPump(ctx context.Context, c *websocket.Conn, cl *client, srv *GameServer, logger *logrus.Logger) {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus == websocket.StatusNormalClosure || closeStatus == websocket.StatusGoingAway {
				logger.Infof("websocket closed normally for member %s", cl.memberID)
			} else if !errors.Is(err, context.Canceled) {
				logger.Warnf("read error for member %s: %v", cl.memberID, err)
			}
			return
		}

		if typ != websocket.MessageText {
			logger.Warnf("ignoring non-text message type %d from member %s", typ, cl.memberID)
			continue
		}

		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			logger.Warnf("invalid json from member %s: %v", cl.memberID, err)
			cl.send(outbound{
				Type:    protocol.NotifyGameError,
				Payload: protocol.ErrorInfo{Message: "invalid JSON format"},
			})
			continue
		}

		srv.dispatch(ctx, cl, env)
	}
}

// writePump drains the client's out channel onto the socket and keeps the
// connection alive with periodic pings.
func writePump(ctx context.Context, c *websocket.Conn, cl *client, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-cl.out:
			if !ok {
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				logger.Warnf("failed to marshal outgoing msg for member %s: %v", cl.memberID, err)
				continue
			}

			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("failed to write to websocket for member %s: %v", cl.memberID, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("failed to ping member %s, assuming disconnect: %v", cl.memberID, err)
				return
			}
		}
	}
}
