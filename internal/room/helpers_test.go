package room

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/kingcourt/internal/auth"
	"github.com/jason-s-yu/kingcourt/internal/models"
	"github.com/stretchr/testify/require"
)

const testNowMillis = 5000

func testTx(r *models.Room) *Tx {
	return &Tx{
		Room:  r,
		Rules: DefaultRules(),
		Now:   time.UnixMilli(testNowMillis),
		Rand:  rand.New(rand.NewSource(7)),
	}
}

func identities(n int) []auth.Identity {
	ids := make([]auth.Identity, n)
	for i := range ids {
		ids[i] = auth.Identity{PlayerID: uuid.New(), Name: fmt.Sprintf("player-%d", i)}
	}
	return ids
}

// newLobby builds a lobby hosted by the first of n players.
func newLobby(t *testing.T, n int) (*models.Room, []auth.Identity) {
	t.Helper()
	ids := identities(n)
	r := models.NewRoom("PING-1234", ids[0].PlayerID, 1000)
	tx := testTx(r)
	for _, id := range ids {
		tx.Join(id)
	}
	require.Len(t, r.Players, n)
	return r, ids
}

// startedRoom builds a playing room of n players.
func startedRoom(t *testing.T, n int) (*models.Room, []auth.Identity) {
	t.Helper()
	r, ids := newLobby(t, n)
	require.NoError(t, testTx(r).Start(ids[0].PlayerID))
	require.Equal(t, models.StatusPlaying, r.Status)
	return r, ids
}

// score adds single points to side.
func score(t *testing.T, tx *Tx, side models.Side, points int) {
	t.Helper()
	for i := 0; i < points; i++ {
		require.NoError(t, tx.AdjustScore(side, 1))
	}
}
