package room

import (
	"sort"

	"github.com/google/uuid"
	"github.com/jason-s-yu/kingcourt/internal/models"
)

// Map iteration order is random; these give shuffles a stable starting point
// so a seeded Rand reproduces the same outcome.

func sortTeams(teams []*models.Team) {
	sort.Slice(teams, func(i, j int) bool {
		return teams[i].ID.String() < teams[j].ID.String()
	})
}

func sortedPlayerIDs(r *models.Room) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.Players))
	for id := range r.Players {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}
