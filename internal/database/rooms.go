package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/kingcourt/internal/models"
	"github.com/jason-s-yu/kingcourt/internal/store"
)

const uniqueViolation = "23505"

// RoomDocuments stores each room as one JSONB document guarded by a version
// column. Update only succeeds against the version the caller read.
type RoomDocuments struct {
	Pool *pgxpool.Pool
}

func (d *RoomDocuments) Create(ctx context.Context, room *models.Room) (*models.Room, error) {
	saved := room.Clone()
	saved.Version = 1
	doc, err := json.Marshal(saved)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal room %s: %w", room.Code, err)
	}

	q := `INSERT INTO rooms (code, version, doc) VALUES ($1, $2, $3)`
	if _, err := d.Pool.Exec(ctx, q, saved.Code, saved.Version, doc); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, store.ErrExists
		}
		return nil, fmt.Errorf("insert room %s: %w", room.Code, err)
	}
	return saved, nil
}

func (d *RoomDocuments) Read(ctx context.Context, code string) (*models.Room, error) {
	var (
		version int64
		doc     []byte
	)
	q := `SELECT version, doc FROM rooms WHERE code = $1`
	err := d.Pool.QueryRow(ctx, q, code).Scan(&version, &doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select room %s: %w", code, err)
	}
	return decodeRoom(doc, version)
}

func (d *RoomDocuments) Update(ctx context.Context, room *models.Room, expectedVersion int64) (*models.Room, error) {
	saved := room.Clone()
	saved.Version = expectedVersion + 1
	doc, err := json.Marshal(saved)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal room %s: %w", room.Code, err)
	}

	q := `
		UPDATE rooms
		SET doc = $2, version = $3 + 1, updated_at = NOW()
		WHERE code = $1 AND version = $3
	`
	tag, err := d.Pool.Exec(ctx, q, saved.Code, doc, expectedVersion)
	if err != nil {
		return nil, fmt.Errorf("update room %s: %w", room.Code, err)
	}
	if tag.RowsAffected() == 1 {
		return saved, nil
	}

	var exists bool
	if err := d.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM rooms WHERE code = $1)`, saved.Code).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check room %s: %w", room.Code, err)
	}
	if !exists {
		return nil, store.ErrNotFound
	}
	return nil, store.ErrVersionConflict
}

func decodeRoom(doc []byte, version int64) (*models.Room, error) {
	var room models.Room
	if err := json.Unmarshal(doc, &room); err != nil {
		return nil, fmt.Errorf("invalid room document: %w", err)
	}
	room.Version = version
	room.Normalize()
	return &room, nil
}
