// internal/database/rooms.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"tablehunt/internal/game"
)

// UpsertRoomSnapshot mirrors the current room state, keyed by room code. The
// mirror is best-effort; the in-memory registry stays authoritative.
func UpsertRoomSnapshot(ctx context.Context, pool *pgxpool.Pool, snap game.RoomSnapshot) error {
	players, err := json.Marshal(snap.Players)
	if err != nil {
		return fmt.Errorf("marshaling snapshot players: %w", err)
	}

	q := `
	INSERT INTO room_snapshots (code, status, players_count, players, updated_at)
	VALUES ($1, $2, $3, $4, now())
	ON CONFLICT (code) DO UPDATE SET
		status        = EXCLUDED.status,
		players_count = EXCLUDED.players_count,
		players       = EXCLUDED.players,
		updated_at    = now()
	`
	if _, err := pool.Exec(ctx, q, snap.Code, snap.Status, snap.PlayersCount, players); err != nil {
		return fmt.Errorf("upserting room snapshot %s: %w", snap.Code, err)
	}
	return nil
}

// InsertMatchRecord appends one finished-match history row.
func InsertMatchRecord(ctx context.Context, pool *pgxpool.Pool, rec game.MatchRecord) error {
	players, err := json.Marshal(rec.Players)
	if err != nil {
		return fmt.Errorf("marshaling match players: %w", err)
	}
	podium, err := json.Marshal(rec.Podium)
	if err != nil {
		return fmt.Errorf("marshaling podium: %w", err)
	}

	q := `
	INSERT INTO match_history (code, players, podium, total_rounds, finished_at)
	VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := pool.Exec(ctx, q, rec.Code, players, podium, rec.TotalRounds, rec.FinishedAt); err != nil {
		return fmt.Errorf("inserting match record %s: %w", rec.Code, err)
	}
	return nil
}
