// Package store defines the versioned room document store the controller
// writes through, plus an in-memory implementation.
package store

import (
	"context"
	"errors"

	"github.com/jason-s-yu/kingcourt/internal/models"
)

var (
	// ErrNotFound is returned when no room exists under the code.
	ErrNotFound = errors.New("room not found")
	// ErrExists is returned when creating a room whose code is taken.
	ErrExists = errors.New("room already exists")
	// ErrVersionConflict is returned when the stored version moved past the expected one.
	ErrVersionConflict = errors.New("room version conflict")
)

// RoomStore persists room documents with optimistic concurrency. Every write
// succeeds only if the stored version still equals the version the caller read.
type RoomStore interface {
	// Create stores a new room at version 1.
	Create(ctx context.Context, room *models.Room) (*models.Room, error)
	// Read returns the latest snapshot. Callers may mutate the returned value.
	Read(ctx context.Context, code string) (*models.Room, error)
	// Update replaces the document if its version is still expectedVersion and
	// returns the stored snapshot at the new version.
	Update(ctx context.Context, room *models.Room, expectedVersion int64) (*models.Room, error)
	// Subscribe streams snapshots after every successful write until ctx ends.
	Subscribe(ctx context.Context, code string) (<-chan *models.Room, error)
}

// Feed fans room snapshots out to subscribers, possibly across processes.
type Feed interface {
	Publish(ctx context.Context, room *models.Room) error
	Subscribe(ctx context.Context, code string) (<-chan *models.Room, error)
}
