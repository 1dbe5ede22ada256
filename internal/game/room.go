// internal/game/room.go
package game

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"tablehunt/internal/question"
)

// Status is the room lifecycle state. It only ever moves forward:
// lobby -> in-progress -> finished.
type Status string

const (
	StatusLobby      Status = "lobby"
	StatusInProgress Status = "in-progress"
	StatusFinished   Status = "finished"
)

// Mode selects the round-generation strategy for a room.
type Mode string

const (
	// ModePairs is the primary mode: a board of match items resolved
	// through the two-phase pick protocol.
	ModePairs Mode = "pairs"
	// ModeRounds is the legacy timed-question mode.
	ModeRounds Mode = "rounds"
)

// SelectionKind distinguishes the two representations of a match item.
type SelectionKind string

const (
	KindID   SelectionKind = "id"
	KindName SelectionKind = "name"
)

// SoundPrefs is an opaque client preference passthrough; it has no gameplay
// effect.
type SoundPrefs struct {
	Music *bool `json:"music,omitempty"`
	SFX   *bool `json:"sfx,omitempty"`
}

// Player is one participant in a room. Score may go negative; Streak counts
// consecutive correct actions and resets to zero on any wrong one.
type Player struct {
	ID      uuid.UUID   `json:"id"`
	Name    string      `json:"name"`
	Score   int         `json:"score"`
	Streak  int         `json:"streak"`
	IsHost  bool        `json:"isHost"`
	Matches int         `json:"matches"`
	Wrong   int         `json:"wrong"`
	Sound   *SoundPrefs `json:"sound,omitempty"`
}

// MatchItem is one matchable pair: an id bubble and a name bubble that must
// be picked together. Matched flips false -> true at most once and is never
// reset.
type MatchItem struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Matched bool   `json:"matched"`
}

// Selection is a player's single unresolved pick, held until a second,
// opposite-kind pick arrives.
type Selection struct {
	PairID int           `json:"pairId"`
	Kind   SelectionKind `json:"kind"`
}

// Room holds all authoritative state for one game room. Every mutation must
// happen while Mu is held so concurrent commands and timer callbacks observe
// the room as a serialized actor.
type Room struct {
	Code        string
	Status      Status
	Mode        Mode
	Players     []*Player // insertion order == join order
	HostID      uuid.UUID
	MaxPlayers  int
	Round       int
	TotalRounds int
	RoundEndsAt time.Time // zero when no round deadline is active
	CurrentQ    *question.Item
	Pairs       []*MatchItem

	// selections maps playerID -> at most one pending pick.
	selections map[uuid.UUID]Selection

	// roundTimer drives the legacy timed-round advance. It is canceled on
	// finish and on room removal so a stale fire can never revive the room.
	roundTimer *time.Timer

	createdAt time.Time
	touchedAt time.Time

	Mu sync.Mutex
}

// FindPlayer returns the player with the given id, or nil. Assumes Mu held.
func (r *Room) FindPlayer(id uuid.UUID) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PairByID returns the match item with the given pair id, or nil. Assumes Mu
// held.
func (r *Room) PairByID(id int) *MatchItem {
	for _, m := range r.Pairs {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// AllMatched reports whether every match item has been matched. False for an
// empty board. Assumes Mu held.
func (r *Room) AllMatched() bool {
	if len(r.Pairs) == 0 {
		return false
	}
	for _, m := range r.Pairs {
		if !m.Matched {
			return false
		}
	}
	return true
}

// cancelRoundTimerLocked stops any pending round-advance timer. Assumes Mu
// held.
func (r *Room) cancelRoundTimerLocked() {
	if r.roundTimer != nil {
		r.roundTimer.Stop()
		r.roundTimer = nil
	}
}

// touchLocked marks the room as recently active for the TTL sweeper. Assumes
// Mu held.
func (r *Room) touchLocked() {
	r.touchedAt = time.Now()
}
