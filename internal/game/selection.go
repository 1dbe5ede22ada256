// internal/game/selection.go
package game

import (
	"github.com/google/uuid"
)

// HandleSelect runs the two-phase matching protocol for one pick. The whole
// resolution executes under the room lock, so two players racing on the same
// pair can never score one item twice or observe a half-applied match.
//
// Protocol:
//  1. picks against unknown or already-matched items are ignored entirely
//  2. first pick: stored and broadcast as a live cursor
//  3. identical second pick: toggles the selection off
//  4. different second pick: the pending selection is consumed and the pair
//     matches iff both picks share a pairId with opposite kinds
func (e *Engine) HandleSelect(code string, playerID uuid.UUID, pick Selection) {
	room, ok := e.registry.GetRoom(code)
	if !ok {
		return
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.Status != StatusInProgress {
		return
	}
	item := room.PairByID(pick.PairID)
	if item == nil || item.Matched {
		return
	}
	p := room.FindPlayer(playerID)
	if p == nil {
		return
	}
	room.touchLocked()

	pending, has := room.selections[playerID]
	if !has {
		room.selections[playerID] = pick
		e.broadcast.BroadcastRoom(code, selectionPayload(playerID, &pick))
		return
	}
	if pending == pick {
		delete(room.selections, playerID)
		e.broadcast.BroadcastRoom(code, selectionPayload(playerID, nil))
		return
	}

	// Second, different pick: the pending selection is consumed either way.
	delete(room.selections, playerID)

	if pick.PairID == pending.PairID && pick.Kind != pending.Kind {
		item.Matched = true
		e.scorer.MatchCorrect(p)
		e.broadcast.BroadcastRoom(code, map[string]interface{}{
			"type":     EventPairMatched,
			"playerId": playerID.String(),
			"pairId":   pick.PairID,
		})
		e.broadcast.BroadcastRoom(code, leaderboardPayload(room))
		e.broadcast.BroadcastRoom(code, scorePayload(p))
		if room.AllMatched() {
			e.finishLocked(room)
		}
	} else {
		e.scorer.MatchWrong(p)
		e.broadcast.BroadcastRoom(code, selectionPayload(playerID, nil))
		e.broadcast.BroadcastRoom(code, leaderboardPayload(room))
		e.broadcast.BroadcastRoom(code, scorePayload(p))
	}
	e.mirrorLocked(room)
}

// PendingSelection reports a player's unresolved pick, if any.
func (e *Engine) PendingSelection(code string, playerID uuid.UUID) (Selection, bool) {
	room, ok := e.registry.GetRoom(code)
	if !ok {
		return Selection{}, false
	}
	room.Mu.Lock()
	defer room.Mu.Unlock()
	sel, has := room.selections[playerID]
	return sel, has
}
