// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tablehunt/internal/auth"
	"tablehunt/internal/game"
	"tablehunt/internal/middleware"
)

// wsCommand is the inbound command envelope. Fields beyond Type are populated
// per command type.
type wsCommand struct {
	Type string `json:"type"`

	Code       string           `json:"code,omitempty"`
	MaxPlayers int              `json:"maxPlayers,omitempty"`
	Mode       string           `json:"mode,omitempty"`
	PlayerName string           `json:"playerName,omitempty"`
	Sound      *game.SoundPrefs `json:"sound,omitempty"`
	StarterID  string           `json:"starterId,omitempty"`
	PlayerID   string           `json:"playerId,omitempty"`
	AnswerID   int              `json:"answerId,omitempty"`
	PairID     int              `json:"pairId,omitempty"`
	Kind       string           `json:"kind,omitempty"`
}

// WSHandler upgrades the connection and runs the read pump until the client
// goes away. Each connection represents at most one player in one room.
func WSHandler(logger *logrus.Logger, srv *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"tablehunt"},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "tablehunt" {
			c.Close(BadSubprotocolError, "client must speak the tablehunt subprotocol")
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		conn := &PlayerConn{
			Cancel:  cancel,
			OutChan: make(chan map[string]interface{}, 16),
		}

		go writePump(ctx, c, conn, logger)
		readErr := readPump(ctx, c, conn, srv, r, logger)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, readErr)

		// Cleanup: leaving the socket means leaving the room, unless a newer
		// connection already resumed this player.
		if conn.Code != "" && srv.Gateway.Unsubscribe(conn.Code, conn) {
			srv.Engine.Registry().RemovePlayer(conn.Code, conn.PlayerID)
			srv.broadcastUserCount(conn.Code)
			srv.Engine.MirrorRoom(conn.Code)
		}
		cancel()
	}
}

// readPump decodes inbound commands and routes them. It returns the terminal
// read error, nil for a normal closure.
func readPump(ctx context.Context, c *websocket.Conn, conn *PlayerConn, srv *Server, r *http.Request, logger *logrus.Logger) error {
	for {
		typ, msg, err := c.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus == websocket.StatusNormalClosure || closeStatus == websocket.StatusGoingAway ||
				strings.Contains(err.Error(), "context canceled") {
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			continue
		}

		var cmd wsCommand
		if err := json.Unmarshal(msg, &cmd); err != nil {
			conn.WriteError(logger, "invalid JSON")
			continue
		}
		srv.dispatch(conn, r, cmd, logger)
	}
}

// dispatch routes one inbound command. All failures surface as error events
// on the originating connection only.
func (srv *Server) dispatch(conn *PlayerConn, r *http.Request, cmd wsCommand, logger *logrus.Logger) {
	switch cmd.Type {
	case "create_room":
		room, err := srv.Engine.Registry().CreateRoom(cmd.MaxPlayers, game.Mode(cmd.Mode))
		if err != nil {
			conn.WriteError(logger, err.Error())
			return
		}
		conn.Write(logger, map[string]interface{}{
			"type":       game.EventRoomCreated,
			"code":       room.Code,
			"maxPlayers": room.MaxPlayers,
		})

	case "join_room":
		srv.handleJoin(conn, r, cmd, logger)

	case "start_game":
		starterID, err := uuid.Parse(cmd.StarterID)
		if err != nil {
			conn.WriteError(logger, "invalid starterId")
			return
		}
		if err := srv.Engine.Start(cmd.Code, starterID); err != nil {
			conn.WriteError(logger, err.Error())
		}

	case "submit_answer":
		playerID, err := uuid.Parse(cmd.PlayerID)
		if err != nil {
			conn.WriteError(logger, "invalid playerId")
			return
		}
		srv.Engine.SubmitAnswer(cmd.Code, playerID, cmd.AnswerID)

	case "bubble_click":
		playerID, err := uuid.Parse(cmd.PlayerID)
		if err != nil {
			conn.WriteError(logger, "invalid playerId")
			return
		}
		kind := game.SelectionKind(cmd.Kind)
		if kind != game.KindID && kind != game.KindName {
			conn.WriteError(logger, "invalid selection kind")
			return
		}
		srv.Engine.HandleSelect(cmd.Code, playerID, game.Selection{PairID: cmd.PairID, Kind: kind})

	default:
		conn.WriteError(logger, "unknown command type: "+cmd.Type)
	}
}

// handleJoin binds the connection to a player. A valid player token for the
// same room resumes the player created over REST; otherwise a fresh player
// joins.
func (srv *Server) handleJoin(conn *PlayerConn, r *http.Request, cmd wsCommand, logger *logrus.Logger) {
	if conn.Code != "" {
		conn.WriteError(logger, "already joined a room")
		return
	}

	registry := srv.Engine.Registry()
	var player *game.Player
	if cookie, err := r.Cookie(playerTokenCookie); err == nil {
		if tokenID, tokenRoom, err := auth.ParsePlayerToken(cookie.Value); err == nil && tokenRoom == cmd.Code {
			player = registry.GetPlayer(cmd.Code, tokenID)
		}
	}
	if player == nil {
		var err error
		player, err = registry.JoinRoom(cmd.Code, cmd.PlayerName, cmd.Sound)
		if err != nil {
			conn.WriteError(logger, err.Error())
			return
		}
	}

	conn.PlayerID = player.ID
	conn.Code = cmd.Code
	srv.Gateway.Subscribe(cmd.Code, conn)

	conn.Write(logger, map[string]interface{}{
		"type":     game.EventRoomJoined,
		"playerId": player.ID.String(),
		"isHost":   player.IsHost,
		"code":     cmd.Code,
	})
	srv.broadcastUserCount(cmd.Code)
	srv.Engine.MirrorRoom(cmd.Code)
}

// broadcastUserCount tells the room how many players it holds now.
func (srv *Server) broadcastUserCount(code string) {
	st, err := srv.Engine.Registry().GetState(code)
	if err != nil {
		return
	}
	srv.Gateway.BroadcastRoom(code, map[string]interface{}{
		"type":  game.EventUserCount,
		"code":  code,
		"count": len(st.Players),
	})
}

// writePump drains the out channel onto the socket and keeps the connection
// alive with pings.
func writePump(ctx context.Context, c *websocket.Conn, conn *PlayerConn, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-conn.OutChan:
			if !ok {
				c.Close(websocket.StatusGoingAway, "connection replaced")
				return
			}
			data, err := json.Marshal(msg)
			if err != nil {
				logger.Warnf("failed to marshal outgoing msg for player %v: %v", conn.PlayerID, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("failed to write to websocket for player %v: %v", conn.PlayerID, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("ping failed for player %v, assuming disconnect: %v", conn.PlayerID, err)
				return
			}
		}
	}
}
