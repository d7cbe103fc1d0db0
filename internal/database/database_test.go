package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/kingcourt/internal/models"
	"github.com/jason-s-yu/kingcourt/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests run against TEST_DATABASE_URL and skip when it is unset.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	require.NoError(t, EnsureSchema(ctx, pool))
	t.Cleanup(pool.Close)
	return pool
}

func testCode() string {
	return "PING-" + uuid.NewString()[:8]
}

func TestRoomDocumentsVersioning(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	docs := &RoomDocuments{Pool: pool}
	code := testCode()
	t.Cleanup(func() { pool.Exec(context.Background(), `DELETE FROM rooms WHERE code = $1`, code) })

	host := uuid.New()
	room := models.NewRoom(code, host, time.Now().UnixMilli())
	room.Players[host] = &models.Player{ID: host, Name: "host"}

	created, err := docs.Create(ctx, room)
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.Version)

	_, err = docs.Create(ctx, room)
	assert.ErrorIs(t, err, store.ErrExists)

	created.Players[host].Wins = 2
	updated, err := docs.Update(ctx, created, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)

	_, err = docs.Update(ctx, created, 1)
	assert.ErrorIs(t, err, store.ErrVersionConflict)

	got, err := docs.Read(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
	assert.Equal(t, 2, got.Players[host].Wins)

	_, err = docs.Read(ctx, testCode())
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = docs.Update(ctx, models.NewRoom(testCode(), host, 0), 1)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestInsertMatchResultsIsIdempotent(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	code := testCode()
	t.Cleanup(func() { pool.Exec(context.Background(), `DELETE FROM match_results WHERE room_code = $1`, code) })

	a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	res := models.MatchResult{
		RoomCode:       code,
		MatchNumber:    1,
		Winner:         models.SideIncumbent,
		WinningPlayers: [2]uuid.UUID{a, b},
		LosingPlayers:  [2]uuid.UUID{c, d},
		IncumbentScore: 11,
		DecidedBy:      models.DecidedByScore,
		DecidedAt:      time.Now().UnixMilli(),
	}
	require.NoError(t, InsertMatchResults(ctx, pool, []models.MatchResult{res}))
	require.NoError(t, InsertMatchResults(ctx, pool, []models.MatchResult{res}))

	history, err := RoomHistory(ctx, pool, code)
	require.NoError(t, err)
	require.Len(t, history, 4)
	wins := 0
	for _, rec := range history {
		wins += rec.Wins
		assert.Equal(t, 1, rec.Wins+rec.Losses)
	}
	assert.Equal(t, 2, wins)
}
