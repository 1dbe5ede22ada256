// internal/game/events.go
package game

import (
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Outbound event types. Messages are flat maps with a "type" key so clients
// switch on one field.
const (
	EventRoomCreated       = "room_created"
	EventRoomJoined        = "room:joined"
	EventUserCount         = "room:user_count"
	EventPlayerJoined      = "player_joined"
	EventGameStarted       = "game_started"
	EventRoomState         = "room_state"
	EventSelectionUpdate   = "selection_update"
	EventPairMatched       = "pair_matched"
	EventLeaderboardUpdate = "leaderboard_update"
	EventScoreUpdated      = "score_updated"
	EventMatchFinished     = "match_finished"
	EventNewQuestion       = "new_question"
	EventAnswerSubmitted   = "answer_submitted"
	EventError             = "error"
)

// Broadcaster fans events out to a room's subscriber group. The gateway
// implements it over live connections; tests substitute a recorder. For any
// room the broadcast order must match the order mutating handlers were
// serialized in, which holds because the engine emits while the room lock is
// held.
type Broadcaster interface {
	BroadcastRoom(code string, msg map[string]interface{})
	SendPlayer(code string, playerID uuid.UUID, msg map[string]interface{})
}

// leaderboardRow is the per-player slice of state shown on leaderboards.
func leaderboardRow(p *Player) map[string]interface{} {
	return map[string]interface{}{
		"id":      p.ID.String(),
		"name":    p.Name,
		"score":   p.Score,
		"streak":  p.Streak,
		"matches": p.Matches,
		"wrong":   p.Wrong,
		"isHost":  p.IsHost,
	}
}

// leaderboardPayload builds the leaderboard_update message. Assumes the room
// lock is held.
func leaderboardPayload(room *Room) map[string]interface{} {
	return map[string]interface{}{
		"type":    EventLeaderboardUpdate,
		"players": lo.Map(Leaderboard(room.Players), func(p *Player, _ int) map[string]interface{} { return leaderboardRow(p) }),
	}
}

// roomStatePayload builds the room_state message with the board and the
// ranked players. Assumes the room lock is held.
func roomStatePayload(room *Room) map[string]interface{} {
	return map[string]interface{}{
		"type": EventRoomState,
		"code": room.Code,
		"pairs": lo.Map(room.Pairs, func(m *MatchItem, _ int) map[string]interface{} {
			return map[string]interface{}{"id": m.ID, "name": m.Name, "matched": m.Matched}
		}),
		"players": lo.Map(Leaderboard(room.Players), func(p *Player, _ int) map[string]interface{} { return leaderboardRow(p) }),
	}
}

// scorePayload builds the score_updated message for one player.
func scorePayload(p *Player) map[string]interface{} {
	return map[string]interface{}{
		"type":     EventScoreUpdated,
		"playerId": p.ID.String(),
		"score":    p.Score,
		"streak":   p.Streak,
	}
}

// podiumPayload builds the match_finished message. Assumes the room lock is
// held.
func podiumPayload(room *Room) map[string]interface{} {
	return map[string]interface{}{
		"type": EventMatchFinished,
		"podium": lo.Map(Podium(room.Players), func(p *Player, _ int) map[string]interface{} {
			return map[string]interface{}{"id": p.ID.String(), "name": p.Name, "score": p.Score}
		}),
	}
}

// selectionPayload builds the selection_update message; a nil selection
// signals a cleared pick.
func selectionPayload(playerID uuid.UUID, sel *Selection) map[string]interface{} {
	msg := map[string]interface{}{
		"type":      EventSelectionUpdate,
		"playerId":  playerID.String(),
		"selection": nil,
	}
	if sel != nil {
		msg["selection"] = map[string]interface{}{"pairId": sel.PairID, "kind": string(sel.Kind)}
	}
	return msg
}
