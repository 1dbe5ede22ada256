// internal/handlers/gateway.go
package handlers

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tablehunt/internal/game"
)

// PlayerConn is a single player's live presence on the event gateway.
type PlayerConn struct {
	PlayerID uuid.UUID
	Code     string
	Cancel   func()
	OutChan  chan map[string]interface{}

	mu     sync.Mutex
	closed bool
}

// Close tears the connection down exactly once: the out channel is closed so
// the write pump exits, and any later Write becomes a drop instead of a send
// on a closed channel.
func (conn *PlayerConn) Close() {
	conn.mu.Lock()
	defer conn.mu.Unlock()
	if conn.closed {
		return
	}
	conn.closed = true
	close(conn.OutChan)
	if conn.Cancel != nil {
		conn.Cancel()
	}
}

// Write pushes a message onto the connection's out channel without blocking.
// A full or closed connection drops the message with a log line; the socket
// is considered broken and the pumps will tear it down.
func (conn *PlayerConn) Write(log *logrus.Logger, msg map[string]interface{}) {
	conn.mu.Lock()
	defer conn.mu.Unlock()
	msgType, _ := msg["type"].(string)
	if conn.closed {
		log.WithFields(logrus.Fields{"player": conn.PlayerID, "msgType": msgType}).Warn("connection closed, dropping message")
		return
	}
	select {
	case conn.OutChan <- msg:
	default:
		log.WithFields(logrus.Fields{"player": conn.PlayerID, "msgType": msgType}).Warn("out channel full, dropping message")
	}
}

// WriteError sends an error event to this connection only. Errors are never
// broadcast.
func (conn *PlayerConn) WriteError(log *logrus.Logger, msg string) {
	conn.Write(log, map[string]interface{}{
		"type":  game.EventError,
		"error": msg,
	})
}

// Gateway fans outbound events to every connection subscribed to a room. It
// owns no game logic; the engine decides what to send and the gateway decides
// who hears it.
type Gateway struct {
	mu    sync.Mutex
	rooms map[string]map[uuid.UUID]*PlayerConn
	log   *logrus.Logger
}

// NewGateway returns an empty gateway.
func NewGateway(log *logrus.Logger) *Gateway {
	return &Gateway{
		rooms: make(map[string]map[uuid.UUID]*PlayerConn),
		log:   log,
	}
}

// Subscribe registers a connection under a room code. A second connection for
// the same player replaces the first; the old channel is closed so its write
// pump exits.
func (g *Gateway) Subscribe(code string, conn *PlayerConn) {
	g.mu.Lock()
	defer g.mu.Unlock()

	subs, ok := g.rooms[code]
	if !ok {
		subs = make(map[uuid.UUID]*PlayerConn)
		g.rooms[code] = subs
	}
	if old, ok := subs[conn.PlayerID]; ok && old != conn {
		old.Close()
	}
	subs[conn.PlayerID] = conn
}

// Unsubscribe drops a connection if it is still the player's current one, and
// reports whether it was. A superseded connection returns false so its
// teardown does not evict the player the replacement just resumed.
func (g *Gateway) Unsubscribe(code string, conn *PlayerConn) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	subs, ok := g.rooms[code]
	if !ok {
		return false
	}
	current, ok := subs[conn.PlayerID]
	if !ok || current != conn {
		return false
	}
	delete(subs, conn.PlayerID)
	if len(subs) == 0 {
		delete(g.rooms, code)
	}
	return true
}

// BroadcastRoom sends a message to every subscriber of a room.
func (g *Gateway) BroadcastRoom(code string, msg map[string]interface{}) {
	g.mu.Lock()
	conns := make([]*PlayerConn, 0, len(g.rooms[code]))
	for _, conn := range g.rooms[code] {
		conns = append(conns, conn)
	}
	g.mu.Unlock()

	for _, conn := range conns {
		conn.Write(g.log, msg)
	}
}

// SendPlayer sends a message to one player's connection only.
func (g *Gateway) SendPlayer(code string, playerID uuid.UUID, msg map[string]interface{}) {
	g.mu.Lock()
	conn, ok := g.rooms[code][playerID]
	g.mu.Unlock()
	if ok {
		conn.Write(g.log, msg)
	}
}
