package room

import (
	"math/rand"

	"github.com/google/uuid"
	"github.com/jason-s-yu/kingcourt/internal/models"
)

func newTeam(p1, p2 uuid.UUID) *models.Team {
	return &models.Team{ID: uuid.New(), Player1ID: p1, Player2ID: p2}
}

// FindPlayerTeam returns the team the player belongs to, if any.
func FindPlayerTeam(r *models.Room, playerID uuid.UUID) (*models.Team, bool) {
	for _, t := range r.Teams {
		if t.Has(playerID) {
			return t, true
		}
	}
	return nil, false
}

// Shuffle permutes ids in place with Fisher-Yates.
func Shuffle[T any](ids []T, rng *rand.Rand) {
	for i := len(ids) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		ids[i], ids[j] = ids[j], ids[i]
	}
}

// FormRandomTeams shuffles the players and pairs them sequentially.
// With an odd count the last shuffled player is returned on the bench.
func FormRandomTeams(playerIDs []uuid.UUID, rng *rand.Rand) ([]*models.Team, []uuid.UUID) {
	shuffled := append([]uuid.UUID{}, playerIDs...)
	Shuffle(shuffled, rng)

	bench := []uuid.UUID{}
	if len(shuffled)%2 == 1 {
		bench = append(bench, shuffled[len(shuffled)-1])
		shuffled = shuffled[:len(shuffled)-1]
	}

	teams := make([]*models.Team, 0, len(shuffled)/2)
	for i := 0; i+1 < len(shuffled); i += 2 {
		teams = append(teams, newTeam(shuffled[i], shuffled[i+1]))
	}
	return teams, bench
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// settleBench pairs bench occupants two at a time into new teams queued at the
// head, so a playing room never holds more than one benched player.
func settleBench(r *models.Room) {
	if r.Status != models.StatusPlaying {
		return
	}
	for len(r.Bench) >= 2 {
		t := newTeam(r.Bench[0], r.Bench[1])
		r.Bench = r.Bench[2:]
		r.Teams[t.ID] = t
		r.Queue = append([]uuid.UUID{t.ID}, r.Queue...)
	}
}
