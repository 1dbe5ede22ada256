// internal/game/registry_test.go
package game

import (
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablehunt/internal/question"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testSettings() Settings {
	s := DefaultSettings()
	s.RoomTTL = 0 // no sweeper during tests
	return s
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry(testSettings(), testLogger())
	t.Cleanup(reg.Close)
	return reg
}

func TestCreateRoomDefaults(t *testing.T) {
	reg := newTestRegistry(t)

	room, err := reg.CreateRoom(0, "")
	require.NoError(t, err)
	assert.Len(t, room.Code, 6)
	assert.Equal(t, StatusLobby, room.Status)
	assert.Equal(t, ModePairs, room.Mode)
	assert.Equal(t, 6, room.MaxPlayers)
	assert.Equal(t, 0, room.Round)
	assert.Equal(t, 10, room.TotalRounds)
	assert.Empty(t, room.Players)

	got, ok := reg.GetRoom(room.Code)
	require.True(t, ok)
	assert.Same(t, room, got)
}

func TestCreateRoomUniqueCodes(t *testing.T) {
	reg := newTestRegistry(t)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		room, err := reg.CreateRoom(4, ModePairs)
		require.NoError(t, err)
		require.False(t, seen[room.Code], "duplicate code %s", room.Code)
		seen[room.Code] = true
	}
}

func TestJoinRoomFirstJoinerIsHost(t *testing.T) {
	reg := newTestRegistry(t)
	room, err := reg.CreateRoom(4, ModePairs)
	require.NoError(t, err)

	alice, err := reg.JoinRoom(room.Code, "Alice", nil)
	require.NoError(t, err)
	assert.True(t, alice.IsHost)
	assert.Equal(t, 0, alice.Score)
	assert.Equal(t, 0, alice.Streak)
	assert.Equal(t, 0, alice.Matches)
	assert.Equal(t, 0, alice.Wrong)
	assert.Equal(t, alice.ID, room.HostID)

	bob, err := reg.JoinRoom(room.Code, "Bob", nil)
	require.NoError(t, err)
	assert.False(t, bob.IsHost)
}

func TestJoinRoomErrors(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.JoinRoom("NOPE99", "Alice", nil)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	room, err := reg.CreateRoom(2, ModePairs)
	require.NoError(t, err)

	_, err = reg.JoinRoom(room.Code, "Alice", nil)
	require.NoError(t, err)
	_, err = reg.JoinRoom(room.Code, "Bob", nil)
	require.NoError(t, err)

	_, err = reg.JoinRoom(room.Code, "Carol", nil)
	assert.ErrorIs(t, err, ErrRoomFull)

	require.NoError(t, reg.SetStatus(room.Code, StatusInProgress))
	reg.RemovePlayer(room.Code, room.Players[1].ID)
	_, err = reg.JoinRoom(room.Code, "Carol", nil)
	assert.ErrorIs(t, err, ErrAlreadyStarted)
}

func TestRemovePlayerPromotesHost(t *testing.T) {
	reg := newTestRegistry(t)
	room, err := reg.CreateRoom(4, ModePairs)
	require.NoError(t, err)

	alice, _ := reg.JoinRoom(room.Code, "Alice", nil)
	bob, _ := reg.JoinRoom(room.Code, "Bob", nil)
	carol, _ := reg.JoinRoom(room.Code, "Carol", nil)

	reg.RemovePlayer(room.Code, alice.ID)

	assert.True(t, bob.IsHost, "earliest remaining joiner becomes host")
	assert.False(t, carol.IsHost)
	assert.Equal(t, bob.ID, room.HostID)
	assert.Equal(t, StatusLobby, room.Status, "removal never changes status")

	// Removing an unknown player is a no-op.
	reg.RemovePlayer(room.Code, uuid.New())
	assert.Len(t, room.Players, 2)
}

func TestRemoveLastPlayerClearsHost(t *testing.T) {
	reg := newTestRegistry(t)
	room, err := reg.CreateRoom(4, ModePairs)
	require.NoError(t, err)

	alice, _ := reg.JoinRoom(room.Code, "Alice", nil)
	reg.RemovePlayer(room.Code, alice.ID)

	assert.Empty(t, room.Players)
	assert.Equal(t, uuid.Nil, room.HostID)
}

func TestGetState(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.GetState("NOPE99")
	assert.ErrorIs(t, err, ErrRoomNotFound)

	room, err := reg.CreateRoom(4, ModeRounds)
	require.NoError(t, err)
	alice, _ := reg.JoinRoom(room.Code, "Alice", nil)

	ends := time.Now().Add(15 * time.Second)
	require.NoError(t, reg.SetStatus(room.Code, StatusInProgress))
	require.NoError(t, reg.SetRound(room.Code, 3))
	require.NoError(t, reg.SetRoundEnds(room.Code, ends))
	require.NoError(t, reg.SetQuestion(room.Code, &question.Item{ID: 18, Name: "Customer", Difficulty: 1}))

	st, err := reg.GetState(room.Code)
	require.NoError(t, err)
	assert.Equal(t, room.Code, st.Code)
	assert.Equal(t, StatusInProgress, st.Status)
	assert.Equal(t, 3, st.Round)
	assert.Equal(t, ends.UnixMilli(), st.RoundEndsAt)
	assert.Equal(t, alice.ID.String(), st.HostID)
	require.Len(t, st.Players, 1)

	// The snapshot is a copy; mutating it leaves the room alone.
	st.Players[0].Score = 999
	assert.Equal(t, 0, alice.Score)
}

func TestSettersOnMissingRoom(t *testing.T) {
	reg := newTestRegistry(t)

	assert.ErrorIs(t, reg.SetStatus("NOPE99", StatusFinished), ErrRoomNotFound)
	assert.ErrorIs(t, reg.SetRound("NOPE99", 1), ErrRoomNotFound)
	assert.ErrorIs(t, reg.SetRoundEnds("NOPE99", time.Now()), ErrRoomNotFound)
	assert.ErrorIs(t, reg.SetQuestion("NOPE99", nil), ErrRoomNotFound)
	assert.ErrorIs(t, reg.SetPairs("NOPE99", nil), ErrRoomNotFound)
}

func TestSetPairsClearsSelections(t *testing.T) {
	reg := newTestRegistry(t)
	room, err := reg.CreateRoom(4, ModePairs)
	require.NoError(t, err)
	alice, _ := reg.JoinRoom(room.Code, "Alice", nil)

	room.Mu.Lock()
	room.selections[alice.ID] = Selection{PairID: 18, Kind: KindID}
	room.Mu.Unlock()

	require.NoError(t, reg.SetPairs(room.Code, []*MatchItem{{ID: 18, Name: "Customer"}}))

	room.Mu.Lock()
	defer room.Mu.Unlock()
	assert.Empty(t, room.selections)
	assert.Len(t, room.Pairs, 1)
}

func TestDeleteRoom(t *testing.T) {
	reg := newTestRegistry(t)
	room, err := reg.CreateRoom(4, ModePairs)
	require.NoError(t, err)

	reg.DeleteRoom(room.Code)
	_, ok := reg.GetRoom(room.Code)
	assert.False(t, ok)

	// Deleting twice is fine.
	reg.DeleteRoom(room.Code)
}
