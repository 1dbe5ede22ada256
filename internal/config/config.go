// internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"tablehunt/internal/game"
)

// Config is the process configuration, populated from the environment.
// A .env file is honored when present (loaded via godotenv in main).
type Config struct {
	Host string `envconfig:"HOST" default:"0.0.0.0"`
	Port string `envconfig:"PORT" default:"8080"`

	MaxPlayers   int            `envconfig:"MAX_PLAYERS" default:"6"`
	RoundSeconds int            `envconfig:"ROUND_SECONDS" default:"15"`
	TotalRounds  int            `envconfig:"TOTAL_ROUNDS" default:"10"`
	PairCount    int            `envconfig:"PAIR_COUNT" default:"8"`
	RoomMode     string         `envconfig:"ROOM_MODE" default:"pairs"`
	RoomTTL      time.Duration  `envconfig:"ROOM_TTL" default:"1h"`
	Weights      map[string]int `envconfig:"RARITY_WEIGHTS" default:"common:70,rare:25,legendary:5"`
	Points       map[string]int `envconfig:"POINTS" default:"common:10,rare:25,legendary:50"`
	StreakBonus  int            `envconfig:"STREAK_BONUS" default:"5"`
	WrongPenalty int            `envconfig:"WRONG_PENALTY" default:"-10"`
	MatchPoints  int            `envconfig:"MATCH_POINTS" default:"10"`
	MatchPenalty int            `envconfig:"MATCH_PENALTY" default:"-10"`

	PersistEnabled bool   `envconfig:"PERSIST_ENABLED" default:"false"`
	PostgresURL    string `envconfig:"POSTGRES_URL"`
	RedisAddr      string `envconfig:"REDIS_ADDR"`
	RedisDB        int    `envconfig:"REDIS_DB" default:"0"`

	AdminUser     string `envconfig:"ADMIN_USER" default:"admin"`
	AdminPassHash string `envconfig:"ADMIN_PASS_HASH"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("processing env config: %w", err)
	}
	return cfg, nil
}

// GameSettings converts the environment values into engine settings.
func (c Config) GameSettings() game.Settings {
	return game.Settings{
		MaxPlayers:    c.MaxPlayers,
		TotalRounds:   c.TotalRounds,
		RoundDuration: time.Duration(c.RoundSeconds) * time.Second,
		PairCount:     c.PairCount,
		Points:        c.Points,
		StreakBonus:   c.StreakBonus,
		WrongPenalty:  c.WrongPenalty,
		MatchPoints:   c.MatchPoints,
		MatchPenalty:  c.MatchPenalty,
		RoomTTL:       c.RoomTTL,
		DefaultMode:   game.Mode(c.RoomMode),
	}
}
