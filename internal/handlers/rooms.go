// internal/handlers/rooms.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tablehunt/internal/auth"
	"tablehunt/internal/game"
)

const playerTokenCookie = "player_token"

// Server bundles the engine, gateway and boundary concerns for the HTTP and
// websocket handlers.
type Server struct {
	Engine  *game.Engine
	Gateway *Gateway
	Logger  *logrus.Logger

	AdminUser     string
	AdminPassHash string

	validate *validator.Validate
}

// NewServer wires the handler dependencies.
func NewServer(engine *game.Engine, gateway *Gateway, logger *logrus.Logger, adminUser, adminPassHash string) *Server {
	return &Server{
		Engine:        engine,
		Gateway:       gateway,
		Logger:        logger,
		AdminUser:     adminUser,
		AdminPassHash: adminPassHash,
		validate:      validator.New(),
	}
}

// writeJSON encodes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps an engine error to its HTTP status.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, game.HTTPStatus(err), map[string]string{"error": err.Error()})
}

type createRoomRequest struct {
	MaxPlayers int    `json:"maxPlayers" validate:"omitempty,gte=2,lte=16"`
	Mode       string `json:"mode" validate:"omitempty,oneof=pairs rounds"`
}

// CreateRoomHandler allocates a fresh room. POST /rooms.
func (srv *Server) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err.Error() != "EOF" {
		writeError(w, game.ErrValidation)
		return
	}
	if err := srv.validate.Struct(req); err != nil {
		writeError(w, game.ErrValidation)
		return
	}

	room, err := srv.Engine.Registry().CreateRoom(req.MaxPlayers, game.Mode(req.Mode))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"code":       room.Code,
		"maxPlayers": room.MaxPlayers,
	})
}

type joinRoomRequest struct {
	PlayerName string           `json:"playerName" validate:"required,min=1,max=32"`
	Sound      *game.SoundPrefs `json:"sound"`
}

// JoinRoomHandler adds a player over REST and hands back a player token so
// the websocket can bind to the same player. POST /rooms/{code}/join.
func (srv *Server) JoinRoomHandler(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	var req joinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, game.ErrValidation)
		return
	}
	if err := srv.validate.Struct(req); err != nil {
		writeError(w, game.ErrValidation)
		return
	}

	player, err := srv.Engine.Registry().JoinRoom(code, req.PlayerName, req.Sound)
	if err != nil {
		writeError(w, err)
		return
	}

	if token, err := auth.CreatePlayerToken(player.ID, code); err == nil {
		http.SetCookie(w, &http.Cookie{
			Name:     playerTokenCookie,
			Value:    token,
			HttpOnly: true,
			Path:     "/",
		})
	} else {
		srv.Logger.Warnf("failed to create player token: %v", err)
	}

	srv.Gateway.BroadcastRoom(code, map[string]interface{}{
		"type": game.EventPlayerJoined,
		"player": map[string]interface{}{
			"id":     player.ID.String(),
			"name":   player.Name,
			"isHost": player.IsHost,
		},
	})
	srv.broadcastUserCount(code)
	srv.Engine.MirrorRoom(code)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"playerId": player.ID.String(),
		"isHost":   player.IsHost,
	})
}

type startRoomRequest struct {
	StarterID string `json:"starterId" validate:"required,uuid"`
}

// StartRoomHandler starts a room, host only. POST /rooms/{code}/start.
func (srv *Server) StartRoomHandler(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	var req startRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, game.ErrValidation)
		return
	}
	if err := srv.validate.Struct(req); err != nil {
		writeError(w, game.ErrValidation)
		return
	}

	starterID, _ := uuid.Parse(req.StarterID)
	if err := srv.Engine.Start(code, starterID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"started": true})
}

// RoomStateHandler returns the full room snapshot. GET /rooms/{code}/state.
func (srv *Server) RoomStateHandler(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	st, err := srv.Engine.Registry().GetState(code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// AdminRoomsHandler lists live room snapshots, guarded by basic auth against
// the configured argon2 credential. GET /admin/rooms.
func (srv *Server) AdminRoomsHandler(w http.ResponseWriter, r *http.Request) {
	user, pass, ok := r.BasicAuth()
	if !ok || user != srv.AdminUser || srv.AdminPassHash == "" {
		w.Header().Set("WWW-Authenticate", `Basic realm="tablehunt admin"`)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if match, err := auth.VerifyPassword(pass, srv.AdminPassHash); err != nil || !match {
		w.Header().Set("WWW-Authenticate", `Basic realm="tablehunt admin"`)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	registry := srv.Engine.Registry()
	states := []game.RoomState{}
	for _, room := range registry.Rooms() {
		if st, err := registry.GetState(room.Code); err == nil {
			states = append(states, st)
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"rooms": states})
}
