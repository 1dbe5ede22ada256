// internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablehunt/internal/game"
	"tablehunt/internal/question"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 6, cfg.MaxPlayers)
	assert.Equal(t, 15, cfg.RoundSeconds)
	assert.Equal(t, 10, cfg.TotalRounds)
	assert.Equal(t, 8, cfg.PairCount)
	assert.Equal(t, "pairs", cfg.RoomMode)
	assert.Equal(t, time.Hour, cfg.RoomTTL)
	assert.Equal(t, map[string]int{question.RarityCommon: 70, question.RarityRare: 25, question.RarityLegendary: 5}, cfg.Weights)
	assert.Equal(t, map[string]int{question.RarityCommon: 10, question.RarityRare: 25, question.RarityLegendary: 50}, cfg.Points)
	assert.Equal(t, 5, cfg.StreakBonus)
	assert.Equal(t, -10, cfg.WrongPenalty)
	assert.False(t, cfg.PersistEnabled)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MAX_PLAYERS", "4")
	t.Setenv("ROUND_SECONDS", "30")
	t.Setenv("ROOM_MODE", "rounds")
	t.Setenv("ROOM_TTL", "15m")
	t.Setenv("POINTS", "common:1,rare:2,legendary:3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.MaxPlayers)
	assert.Equal(t, 30, cfg.RoundSeconds)
	assert.Equal(t, "rounds", cfg.RoomMode)
	assert.Equal(t, 15*time.Minute, cfg.RoomTTL)
	assert.Equal(t, map[string]int{"common": 1, "rare": 2, "legendary": 3}, cfg.Points)
}

func TestGameSettingsConversion(t *testing.T) {
	t.Setenv("ROUND_SECONDS", "20")
	t.Setenv("ROOM_MODE", "rounds")

	cfg, err := Load()
	require.NoError(t, err)

	s := cfg.GameSettings()
	assert.Equal(t, 20*time.Second, s.RoundDuration)
	assert.Equal(t, game.ModeRounds, s.DefaultMode)
	assert.Equal(t, cfg.MaxPlayers, s.MaxPlayers)
	assert.Equal(t, cfg.Points, s.Points)
	assert.Equal(t, cfg.RoomTTL, s.RoomTTL)
}
