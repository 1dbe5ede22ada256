// internal/game/mirror.go
package game

import (
	"time"

	"github.com/samber/lo"
)

// RoomSnapshot is the non-authoritative mirror of a room pushed to the
// persistence collaborator, keyed by room code. The core never reads it back.
type RoomSnapshot struct {
	Code         string           `json:"code"`
	Status       string           `json:"status"`
	PlayersCount int              `json:"playersCount"`
	Players      []SnapshotPlayer `json:"players"`
}

// SnapshotPlayer is one player row inside a RoomSnapshot.
type SnapshotPlayer struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Online   bool   `json:"online"`
}

// MatchRecord is the finished-match history record, emitted once per room.
type MatchRecord struct {
	Code        string        `json:"code"`
	Players     []RecordEntry `json:"players"`
	Podium      []RecordEntry `json:"podium"`
	TotalRounds int           `json:"totalRounds"`
	FinishedAt  time.Time     `json:"finishedAt"`
}

// RecordEntry is a name/score pair inside a MatchRecord.
type RecordEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// mirrorLocked dispatches a snapshot to OnRoomChanged. Assumes the room lock
// is held; the callback must not block.
func (e *Engine) mirrorLocked(room *Room) {
	if e.OnRoomChanged == nil {
		return
	}
	e.OnRoomChanged(snapshotLocked(room))
}

// snapshotLocked copies the mirrored slice of room state. Assumes the room
// lock is held.
func snapshotLocked(room *Room) RoomSnapshot {
	return RoomSnapshot{
		Code:         room.Code,
		Status:       string(room.Status),
		PlayersCount: len(room.Players),
		Players: lo.Map(room.Players, func(p *Player, _ int) SnapshotPlayer {
			return SnapshotPlayer{PlayerID: p.ID.String(), Name: p.Name, Score: p.Score, Online: true}
		}),
	}
}

// matchRecordLocked builds the finished-match record. Assumes the room lock
// is held.
func matchRecordLocked(room *Room) MatchRecord {
	entry := func(p *Player, _ int) RecordEntry {
		return RecordEntry{Name: p.Name, Score: p.Score}
	}
	return MatchRecord{
		Code:        room.Code,
		Players:     lo.Map(room.Players, entry),
		Podium:      lo.Map(Podium(room.Players), entry),
		TotalRounds: room.TotalRounds,
		FinishedAt:  time.Now(),
	}
}
