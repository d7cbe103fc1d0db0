// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jason-s-yu/kingcourt/internal/middleware"
	"github.com/jason-s-yu/kingcourt/internal/models"
	"github.com/jason-s-yu/kingcourt/internal/room"
	"github.com/sirupsen/logrus"
)

// roomEvent is the message pushed for every snapshot.
type roomEvent struct {
	Type string    `json:"type"`
	View room.View `json:"view"`
}

// handleRoomWS streams the caller's view of the room on every change. The
// stream is read-only; commands go through the HTTP endpoints.
func (s *Server) handleRoomWS(w http.ResponseWriter, r *http.Request) {
	remoteAddr := r.RemoteAddr
	id := middleware.IdentityFrom(r.Context())

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:   []string{roomSubprotocol},
		OriginPatterns: s.originPatterns(),
	})
	if err != nil {
		s.Log.Warnf("websocket accept error: %v", err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "handler finished")

	if c.Subprotocol() != roomSubprotocol {
		c.Close(BadSubprotocolError, "client must speak the room subprotocol")
		return
	}

	// CloseRead discards client frames and cancels ctx once the peer goes away.
	ctx := c.CloseRead(r.Context())

	current, err := s.Rooms.Room(ctx, chi.URLParam(r, "code"))
	if err != nil {
		c.Close(InvalidRoomError, err.Error())
		return
	}
	updates, err := s.Rooms.Subscribe(ctx, current.Code)
	if err != nil {
		c.Close(InvalidRoomError, err.Error())
		return
	}

	logger := s.Log.WithFields(logrus.Fields{"room": current.Code, "player": id.PlayerID})
	middleware.LogWebSocketConnect(s.Log, remoteAddr, r.URL.Path)
	s.Stats.IncSubscribers()
	defer s.Stats.DecSubscribers()

	err = s.writePump(ctx, c, logger, id.PlayerID, current, updates)
	middleware.LogWebSocketDisconnect(s.Log, remoteAddr, r.URL.Path, err)
	if errors.Is(err, errStreamEnded) {
		c.Close(StreamEndedError, "room stream ended")
		return
	}
	c.Close(websocket.StatusNormalClosure, "")
}

var errStreamEnded = errors.New("room stream ended")

// writePump sends the initial snapshot, then every newer one, pinging the
// client when idle. It returns when the client leaves or a write fails.
func (s *Server) writePump(ctx context.Context, c *websocket.Conn, logger logrus.FieldLogger, viewer uuid.UUID, current *models.Room, updates <-chan *models.Room) error {
	ticker := time.NewTicker(s.PingInterval)
	defer ticker.Stop()

	send := func(rm *models.Room) error {
		data, err := json.Marshal(roomEvent{Type: "room_snapshot", View: s.Rooms.Rules.NewView(rm, viewer)})
		if err != nil {
			return err
		}
		writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return c.Write(writeCtx, websocket.MessageText, data)
	}

	if err := send(current); err != nil {
		return err
	}
	version := current.Version

	for {
		select {
		case <-ctx.Done():
			return nil
		case rm, ok := <-updates:
			if !ok {
				return errStreamEnded
			}
			if rm.Version <= version {
				continue
			}
			version = rm.Version
			if err := send(rm); err != nil {
				logger.Warnf("failed to write snapshot: %v", err)
				return err
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("failed to send ping: %v. Assuming disconnect.", err)
				return err
			}
		}
	}
}

// originPatterns converts allowed origins to host patterns for websocket.Accept.
func (s *Server) originPatterns() []string {
	if len(s.AllowedOrigins) == 0 {
		return []string{"*"}
	}
	patterns := make([]string, 0, len(s.AllowedOrigins))
	for _, o := range s.AllowedOrigins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
		}
	}
	return patterns
}
