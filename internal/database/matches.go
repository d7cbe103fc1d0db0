package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/kingcourt/internal/models"
)

// InsertMatchResults persists a batch of decided matches in one transaction.
// Replayed results are ignored, so the historian may deliver at least once.
func InsertMatchResults(ctx context.Context, pool *pgxpool.Pool, results []models.MatchResult) error {
	err := pgx.BeginTxFunc(ctx, pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, res := range results {
			if err := insertMatchTx(ctx, tx, res); err != nil {
				return fmt.Errorf("match %s/%d: %w", res.RoomCode, res.MatchNumber, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx insert match results: %w", err)
	}
	return nil
}

func insertMatchTx(ctx context.Context, tx pgx.Tx, res models.MatchResult) error {
	insertMatch := `
		INSERT INTO match_results (
			room_code, match_number, winner, decided_by,
			incumbent_score, challenger_score, win_streak, decided_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (room_code, match_number) DO NOTHING
	`
	tag, err := tx.Exec(ctx, insertMatch,
		res.RoomCode, res.MatchNumber, string(res.Winner), string(res.DecidedBy),
		res.IncumbentScore, res.ChallengerScore, res.WinStreak, time.UnixMilli(res.DecidedAt),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return nil
	}

	insertPlayer := `
		INSERT INTO match_players (room_code, match_number, player_id, did_win)
		VALUES ($1, $2, $3, $4)
	`
	for _, pid := range res.WinningPlayers {
		if _, err := tx.Exec(ctx, insertPlayer, res.RoomCode, res.MatchNumber, pid, true); err != nil {
			return err
		}
	}
	for _, pid := range res.LosingPlayers {
		if _, err := tx.Exec(ctx, insertPlayer, res.RoomCode, res.MatchNumber, pid, false); err != nil {
			return err
		}
	}
	return nil
}

// PlayerRecord is a player's win and loss totals across all recorded matches.
type PlayerRecord struct {
	PlayerID string `json:"playerId"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
}

// RoomHistory aggregates the recorded matches of a room per player.
func RoomHistory(ctx context.Context, pool *pgxpool.Pool, roomCode string) ([]PlayerRecord, error) {
	q := `
		SELECT player_id::text,
		       COUNT(*) FILTER (WHERE did_win),
		       COUNT(*) FILTER (WHERE NOT did_win)
		FROM match_players
		WHERE room_code = $1
		GROUP BY player_id
		ORDER BY 2 DESC, 1
	`
	rows, err := pool.Query(ctx, q, roomCode)
	if err != nil {
		return nil, fmt.Errorf("query room history %s: %w", roomCode, err)
	}
	defer rows.Close()

	var out []PlayerRecord
	for rows.Next() {
		var rec PlayerRecord
		if err := rows.Scan(&rec.PlayerID, &rec.Wins, &rec.Losses); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
