// internal/game/settings.go
package game

import (
	"time"

	"tablehunt/internal/question"
)

// Settings carries the tunable gameplay constants. Values come from the
// environment in production; tests construct them directly.
type Settings struct {
	MaxPlayers    int
	TotalRounds   int
	RoundDuration time.Duration
	PairCount     int

	// Points maps rarity tier -> gain for a correct timed-round answer.
	Points       map[string]int
	StreakBonus  int
	WrongPenalty int

	// Pairing-mode constants.
	MatchPoints  int
	MatchPenalty int

	RoomTTL     time.Duration
	DefaultMode Mode
}

// DefaultSettings returns the stock configuration.
func DefaultSettings() Settings {
	return Settings{
		MaxPlayers:    6,
		TotalRounds:   10,
		RoundDuration: 15 * time.Second,
		PairCount:     8,
		Points: map[string]int{
			question.RarityCommon:    10,
			question.RarityRare:      25,
			question.RarityLegendary: 50,
		},
		StreakBonus:  5,
		WrongPenalty: -10,
		MatchPoints:  10,
		MatchPenalty: -10,
		RoomTTL:      time.Hour,
		DefaultMode:  ModePairs,
	}
}
