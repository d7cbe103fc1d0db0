package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS rooms (
	code       TEXT PRIMARY KEY,
	version    BIGINT NOT NULL,
	doc        JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS match_results (
	room_code        TEXT NOT NULL,
	match_number     INT NOT NULL,
	winner           TEXT NOT NULL,
	decided_by       TEXT NOT NULL,
	incumbent_score  INT NOT NULL,
	challenger_score INT NOT NULL,
	win_streak       INT NOT NULL,
	decided_at       TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (room_code, match_number)
);

CREATE TABLE IF NOT EXISTS match_players (
	room_code    TEXT NOT NULL,
	match_number INT NOT NULL,
	player_id    UUID NOT NULL,
	did_win      BOOLEAN NOT NULL,
	PRIMARY KEY (room_code, match_number, player_id),
	FOREIGN KEY (room_code, match_number) REFERENCES match_results (room_code, match_number) ON DELETE CASCADE
);
`

// EnsureSchema creates the tables this service needs when they are missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
