// internal/game/registry.go
package game

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tablehunt/internal/question"
)

// codeAttempts bounds how often CreateRoom retries minting a room code before
// giving up with ErrCodeExhausted.
const codeAttempts = 32

// Registry owns every live Room. It is constructed once at process start and
// passed into the handlers; nothing reaches it globally.
//
// Locking order: Registry.mu guards the map only. Per-room state is guarded
// by Room.Mu, and every operation on a given code serializes on that lock.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room

	settings Settings
	log      *logrus.Logger

	sweepStop chan struct{}
	sweepOnce sync.Once
}

// NewRegistry builds an empty registry and starts its stale-room sweeper.
func NewRegistry(settings Settings, log *logrus.Logger) *Registry {
	r := &Registry{
		rooms:     make(map[string]*Room),
		settings:  settings,
		log:       log,
		sweepStop: make(chan struct{}),
	}
	go r.sweepStale()
	return r
}

// Close stops the background sweeper.
func (reg *Registry) Close() {
	reg.sweepOnce.Do(func() { close(reg.sweepStop) })
}

// newCode mints a six-character room code from a fresh UUID.
func newCode() string {
	return strings.ToUpper(uuid.NewString()[:6])
}

// CreateRoom allocates a fresh room in the lobby state. maxPlayers <= 0 takes
// the configured default; an empty mode takes the default mode.
func (reg *Registry) CreateRoom(maxPlayers int, mode Mode) (*Room, error) {
	if maxPlayers <= 0 {
		maxPlayers = reg.settings.MaxPlayers
	}
	if mode == "" {
		mode = reg.settings.DefaultMode
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	for i := 0; i < codeAttempts; i++ {
		code := newCode()
		if _, exists := reg.rooms[code]; exists {
			continue
		}
		now := time.Now()
		room := &Room{
			Code:        code,
			Status:      StatusLobby,
			Mode:        mode,
			MaxPlayers:  maxPlayers,
			Round:       0,
			TotalRounds: reg.settings.TotalRounds,
			selections:  make(map[uuid.UUID]Selection),
			createdAt:   now,
			touchedAt:   now,
		}
		reg.rooms[code] = room
		reg.log.WithFields(logrus.Fields{"code": code, "mode": mode, "maxPlayers": maxPlayers}).Info("room created")
		return room, nil
	}
	return nil, fmt.Errorf("%w after %d attempts", ErrCodeExhausted, codeAttempts)
}

// GetRoom retrieves a room if it exists.
func (reg *Registry) GetRoom(code string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.rooms[code]
	return room, ok
}

// DeleteRoom removes a room and cancels any pending round timer.
func (reg *Registry) DeleteRoom(code string) {
	reg.mu.Lock()
	room, ok := reg.rooms[code]
	delete(reg.rooms, code)
	reg.mu.Unlock()
	if !ok {
		return
	}
	room.Mu.Lock()
	room.cancelRoundTimerLocked()
	room.Mu.Unlock()
	reg.log.WithField("code", code).Info("room removed")
}

// Rooms returns the live rooms, for the admin listing.
func (reg *Registry) Rooms() []*Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	list := make([]*Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		list = append(list, room)
	}
	return list
}

// JoinRoom adds a new player to a lobby room. The first successful joiner
// becomes host.
func (reg *Registry) JoinRoom(code, name string, sound *SoundPrefs) (*Player, error) {
	room, ok := reg.GetRoom(code)
	if !ok {
		return nil, ErrRoomNotFound
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	if len(room.Players) >= room.MaxPlayers {
		return nil, ErrRoomFull
	}
	if room.Status != StatusLobby {
		return nil, ErrAlreadyStarted
	}

	player := &Player{
		ID:    uuid.New(),
		Name:  name,
		Sound: sound,
	}
	room.Players = append(room.Players, player)

	if room.HostID == uuid.Nil {
		room.HostID = player.ID
		player.IsHost = true
	}
	room.touchLocked()

	reg.log.WithFields(logrus.Fields{"code": code, "player": player.ID, "name": name, "host": player.IsHost}).Info("player joined")
	return player, nil
}

// GetPlayer returns a player by id, or nil if the room or player is unknown.
func (reg *Registry) GetPlayer(code string, playerID uuid.UUID) *Player {
	room, ok := reg.GetRoom(code)
	if !ok {
		return nil
	}
	room.Mu.Lock()
	defer room.Mu.Unlock()
	return room.FindPlayer(playerID)
}

// RemovePlayer removes a player if present; removing an unknown player is a
// no-op. If the removed player was host, the earliest remaining joiner is
// promoted. Room status never changes here.
func (reg *Registry) RemovePlayer(code string, playerID uuid.UUID) {
	room, ok := reg.GetRoom(code)
	if !ok {
		return
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	idx := -1
	for i, p := range room.Players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	wasHost := room.Players[idx].IsHost
	room.Players = append(room.Players[:idx], room.Players[idx+1:]...)
	delete(room.selections, playerID)

	if wasHost {
		room.HostID = uuid.Nil
		if len(room.Players) > 0 {
			room.Players[0].IsHost = true
			room.HostID = room.Players[0].ID
		}
	}
	room.touchLocked()
	reg.log.WithFields(logrus.Fields{"code": code, "player": playerID, "wasHost": wasHost}).Info("player removed")
}

// RoomState is the read snapshot returned by GetState. It is a copy; mutating
// it does not touch the live room.
type RoomState struct {
	Code        string           `json:"code"`
	Status      Status           `json:"status"`
	Mode        Mode             `json:"mode"`
	Players     []Player         `json:"players"`
	HostID      string           `json:"hostId,omitempty"`
	MaxPlayers  int              `json:"maxPlayers"`
	Round       int              `json:"round"`
	TotalRounds int              `json:"totalRounds"`
	RoundEndsAt int64            `json:"roundEndsAt,omitempty"`
	CurrentQ    *question.Item   `json:"currentQuestion,omitempty"`
	Pairs       []MatchItem      `json:"pairs,omitempty"`
}

// GetState copies the full room state, failing with ErrRoomNotFound if the
// code is unknown.
func (reg *Registry) GetState(code string) (RoomState, error) {
	room, ok := reg.GetRoom(code)
	if !ok {
		return RoomState{}, ErrRoomNotFound
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	st := RoomState{
		Code:        room.Code,
		Status:      room.Status,
		Mode:        room.Mode,
		MaxPlayers:  room.MaxPlayers,
		Round:       room.Round,
		TotalRounds: room.TotalRounds,
		CurrentQ:    room.CurrentQ,
	}
	if room.HostID != uuid.Nil {
		st.HostID = room.HostID.String()
	}
	if !room.RoundEndsAt.IsZero() {
		st.RoundEndsAt = room.RoundEndsAt.UnixMilli()
	}
	st.Players = make([]Player, len(room.Players))
	for i, p := range room.Players {
		st.Players[i] = *p
	}
	st.Pairs = make([]MatchItem, len(room.Pairs))
	for i, m := range room.Pairs {
		st.Pairs[i] = *m
	}
	return st, nil
}

// SetStatus updates the room status. Used by the session engine and tests.
func (reg *Registry) SetStatus(code string, status Status) error {
	return reg.withRoom(code, func(room *Room) {
		room.Status = status
	})
}

// SetRound updates the current round counter.
func (reg *Registry) SetRound(code string, round int) error {
	return reg.withRoom(code, func(room *Room) {
		room.Round = round
	})
}

// SetRoundEnds updates the round deadline; the zero time clears it.
func (reg *Registry) SetRoundEnds(code string, when time.Time) error {
	return reg.withRoom(code, func(room *Room) {
		room.RoundEndsAt = when
	})
}

// SetQuestion updates the current timed-round question.
func (reg *Registry) SetQuestion(code string, q *question.Item) error {
	return reg.withRoom(code, func(room *Room) {
		room.CurrentQ = q
	})
}

// SetPairs replaces the pairing-mode board and clears pending selections.
func (reg *Registry) SetPairs(code string, pairs []*MatchItem) error {
	return reg.withRoom(code, func(room *Room) {
		room.Pairs = pairs
		room.selections = make(map[uuid.UUID]Selection)
	})
}

// withRoom runs fn under the room lock, failing with ErrRoomNotFound if the
// room vanished mid-operation.
func (reg *Registry) withRoom(code string, fn func(*Room)) error {
	room, ok := reg.GetRoom(code)
	if !ok {
		return ErrRoomNotFound
	}
	room.Mu.Lock()
	defer room.Mu.Unlock()
	fn(room)
	room.touchLocked()
	return nil
}

// sweepStale evicts rooms whose last activity is older than the configured
// TTL. Finished rooms age out the same way; eviction cancels pending timers.
func (reg *Registry) sweepStale() {
	if reg.settings.RoomTTL <= 0 {
		return
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-reg.sweepStop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-reg.settings.RoomTTL)
			for _, room := range reg.Rooms() {
				room.Mu.Lock()
				stale := room.touchedAt.Before(cutoff)
				room.Mu.Unlock()
				if stale {
					reg.DeleteRoom(room.Code)
				}
			}
		}
	}
}
