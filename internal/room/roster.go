package room

import (
	"fmt"
	"math"
	"sort"

	"github.com/jason-s-yu/kingcourt/internal/auth"
	"github.com/jason-s-yu/kingcourt/internal/models"
)

// newPlayer builds a fresh roster entry for an identity.
func newPlayer(id auth.Identity, now int64) *models.Player {
	return &models.Player{
		ID:        id.PlayerID,
		Name:      id.Name,
		Anonymous: id.Anonymous,
		JoinedAt:  now,
	}
}

// applyResult bumps the lifetime counters of all four players of a decided match.
func applyResult(r *models.Room, winning, losing *models.Team) error {
	w, l := winning.Members(), losing.Members()
	members := append(w[:], l[:]...)
	for _, pid := range members {
		if _, ok := r.Players[pid]; !ok {
			return fmt.Errorf("%w: %s", ErrInvalidTeam, pid)
		}
	}
	for _, pid := range winning.Members() {
		p := r.Players[pid]
		p.GamesPlayed++
		p.Wins++
	}
	for _, pid := range losing.Members() {
		p := r.Players[pid]
		p.GamesPlayed++
		p.Losses++
	}
	return nil
}

// WinPercentage is the rounded share of wins, 0 when nothing has been played.
func WinPercentage(wins, losses int) int {
	total := wins + losses
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(wins) / float64(total) * 100))
}

// Leaderboard orders players by win percentage, then wins, then name.
func Leaderboard(r *models.Room) []models.Player {
	out := make([]models.Player, 0, len(r.Players))
	for _, p := range r.Players {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := WinPercentage(out[i].Wins, out[i].Losses), WinPercentage(out[j].Wins, out[j].Losses)
		if pi != pj {
			return pi > pj
		}
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		return out[i].Name < out[j].Name
	})
	return out
}
