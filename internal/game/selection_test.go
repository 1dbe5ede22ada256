// internal/game/selection_test.go
package game

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectFirstPickBroadcastsCursor(t *testing.T) {
	e, mb := setupEngine(t, nil)
	room, players := setupStartedRoom(t, e, ModePairs, "Alice", "Bob")
	alice := players[0]
	target := room.Pairs[0].ID

	e.HandleSelect(room.Code, alice.ID, Selection{PairID: target, Kind: KindID})

	sel, has := e.PendingSelection(room.Code, alice.ID)
	require.True(t, has)
	assert.Equal(t, Selection{PairID: target, Kind: KindID}, sel)

	updates := mb.eventsOfType(room.Code, EventSelectionUpdate)
	require.Len(t, updates, 1)
	assert.Equal(t, alice.ID.String(), updates[0]["playerId"])
	picked := updates[0]["selection"].(map[string]interface{})
	assert.Equal(t, target, picked["pairId"])
	assert.Equal(t, "id", picked["kind"])
}

func TestSelectSamePickTogglesOff(t *testing.T) {
	e, mb := setupEngine(t, nil)
	room, players := setupStartedRoom(t, e, ModePairs, "Alice", "Bob")
	alice := players[0]
	pick := Selection{PairID: room.Pairs[0].ID, Kind: KindName}

	e.HandleSelect(room.Code, alice.ID, pick)
	e.HandleSelect(room.Code, alice.ID, pick)

	_, has := e.PendingSelection(room.Code, alice.ID)
	assert.False(t, has)

	updates := mb.eventsOfType(room.Code, EventSelectionUpdate)
	require.Len(t, updates, 2)
	assert.Nil(t, updates[1]["selection"], "toggle clears the cursor")
	assert.Equal(t, 0, alice.Score, "toggling never scores")
}

func TestSelectMatchingPairScores(t *testing.T) {
	e, mb := setupEngine(t, nil)
	room, players := setupStartedRoom(t, e, ModePairs, "Alice", "Bob")
	alice := players[0]
	item := room.Pairs[0]

	e.HandleSelect(room.Code, alice.ID, Selection{PairID: item.ID, Kind: KindID})
	e.HandleSelect(room.Code, alice.ID, Selection{PairID: item.ID, Kind: KindName})

	assert.True(t, item.Matched)
	assert.Equal(t, 10, alice.Score)
	assert.Equal(t, 1, alice.Streak)
	assert.Equal(t, 1, alice.Matches)

	matched := mb.eventsOfType(room.Code, EventPairMatched)
	require.Len(t, matched, 1)
	assert.Equal(t, alice.ID.String(), matched[0]["playerId"])
	assert.Equal(t, item.ID, matched[0]["pairId"])
	assert.Len(t, mb.eventsOfType(room.Code, EventLeaderboardUpdate), 1)
	assert.Len(t, mb.eventsOfType(room.Code, EventScoreUpdated), 1)

	_, has := e.PendingSelection(room.Code, alice.ID)
	assert.False(t, has, "a resolved selection is consumed")
}

func TestSelectMismatchPenalizes(t *testing.T) {
	e, mb := setupEngine(t, nil)
	room, players := setupStartedRoom(t, e, ModePairs, "Alice", "Bob")
	alice := players[0]
	first, second := room.Pairs[0], room.Pairs[1]

	e.HandleSelect(room.Code, alice.ID, Selection{PairID: first.ID, Kind: KindID})
	e.HandleSelect(room.Code, alice.ID, Selection{PairID: second.ID, Kind: KindName})

	assert.False(t, first.Matched)
	assert.False(t, second.Matched)
	assert.Equal(t, -10, alice.Score)
	assert.Equal(t, 0, alice.Streak)
	assert.Equal(t, 1, alice.Wrong)

	assert.Empty(t, mb.eventsOfType(room.Code, EventPairMatched))
	updates := mb.eventsOfType(room.Code, EventSelectionUpdate)
	require.Len(t, updates, 2)
	assert.Nil(t, updates[1]["selection"], "mismatch clears the cursor")
}

func TestSelectSameKindTwiceIsMismatch(t *testing.T) {
	e, _ := setupEngine(t, nil)
	room, players := setupStartedRoom(t, e, ModePairs, "Alice", "Bob")
	alice := players[0]
	first, second := room.Pairs[0], room.Pairs[1]

	// Same kind on two different items never matches, even on the same pair
	// id column.
	e.HandleSelect(room.Code, alice.ID, Selection{PairID: first.ID, Kind: KindID})
	e.HandleSelect(room.Code, alice.ID, Selection{PairID: second.ID, Kind: KindID})

	assert.False(t, first.Matched)
	assert.Equal(t, -10, alice.Score)
}

func TestSelectIgnoresMatchedAndUnknownItems(t *testing.T) {
	e, mb := setupEngine(t, nil)
	room, players := setupStartedRoom(t, e, ModePairs, "Alice", "Bob")
	alice, bob := players[0], players[1]
	item := room.Pairs[0]

	e.HandleSelect(room.Code, alice.ID, Selection{PairID: item.ID, Kind: KindID})
	e.HandleSelect(room.Code, alice.ID, Selection{PairID: item.ID, Kind: KindName})
	require.True(t, item.Matched)
	before := len(mb.roomEvents[room.Code])

	// Matched items are immune to further picks.
	e.HandleSelect(room.Code, bob.ID, Selection{PairID: item.ID, Kind: KindID})
	assert.Equal(t, before, len(mb.roomEvents[room.Code]))
	_, has := e.PendingSelection(room.Code, bob.ID)
	assert.False(t, has)

	// Unknown items, players and rooms are silent no-ops.
	e.HandleSelect(room.Code, bob.ID, Selection{PairID: 999999, Kind: KindID})
	e.HandleSelect(room.Code, uuid.New(), Selection{PairID: room.Pairs[1].ID, Kind: KindID})
	e.HandleSelect("NOPE99", bob.ID, Selection{PairID: room.Pairs[1].ID, Kind: KindID})
	assert.Equal(t, before, len(mb.roomEvents[room.Code]))
}

func TestSelectIgnoredOutsideInProgress(t *testing.T) {
	e, mb := setupEngine(t, nil)
	room, players := setupStartedRoom(t, e, ModePairs, "Alice", "Bob")
	alice := players[0]
	item := room.Pairs[0]

	e.Finish(room.Code)
	before := len(mb.roomEvents[room.Code])

	e.HandleSelect(room.Code, alice.ID, Selection{PairID: item.ID, Kind: KindID})
	assert.Equal(t, before, len(mb.roomEvents[room.Code]))
}

func TestSelectIndependentCursorsPerPlayer(t *testing.T) {
	e, _ := setupEngine(t, nil)
	room, players := setupStartedRoom(t, e, ModePairs, "Alice", "Bob")
	alice, bob := players[0], players[1]
	item := room.Pairs[0]

	// Bob's pick does not resolve against Alice's pending selection.
	e.HandleSelect(room.Code, alice.ID, Selection{PairID: item.ID, Kind: KindID})
	e.HandleSelect(room.Code, bob.ID, Selection{PairID: item.ID, Kind: KindName})

	assert.False(t, item.Matched)
	_, aliceHas := e.PendingSelection(room.Code, alice.ID)
	_, bobHas := e.PendingSelection(room.Code, bob.ID)
	assert.True(t, aliceHas)
	assert.True(t, bobHas)
}

func TestSelectLastMatchFinishesRoom(t *testing.T) {
	e, mb := setupEngine(t, nil)
	room, players := setupStartedRoom(t, e, ModePairs, "Alice", "Bob")
	alice := players[0]

	for _, item := range room.Pairs {
		e.HandleSelect(room.Code, alice.ID, Selection{PairID: item.ID, Kind: KindID})
		e.HandleSelect(room.Code, alice.ID, Selection{PairID: item.ID, Kind: KindName})
	}

	assert.Equal(t, StatusFinished, room.Status)
	assert.Equal(t, len(room.Pairs), alice.Matches)
	finished := mb.eventsOfType(room.Code, EventMatchFinished)
	require.Len(t, finished, 1, "clearing the board finishes exactly once")
	podium := finished[0]["podium"].([]map[string]interface{})
	require.NotEmpty(t, podium)
	assert.Equal(t, "Alice", podium[0]["name"])
}
