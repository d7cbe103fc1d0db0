package room

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jason-s-yu/kingcourt/internal/models"
)

// RequiredVotes is the quorum for a room of playerCount players.
func (rules Rules) RequiredVotes(playerCount int) int {
	return int(math.Ceil(float64(playerCount) * rules.VoteThreshold))
}

func resetVote(r *models.Room) {
	r.Vote = models.Vote{Voters: make(map[uuid.UUID]bool)}
}

// CastVote records voter's support for result. A proposal different from the
// pending one restarts the tally with only this voter. Reaching quorum decides
// the match; the returned bool reports that.
func (tx *Tx) CastVote(voter uuid.UUID, result models.Side) (bool, error) {
	r := tx.Room
	if !result.Valid() {
		return false, ErrInvalidSide
	}
	if r.Match == nil {
		return false, ErrNoMatch
	}
	if _, ok := r.Players[voter]; !ok {
		return false, fmt.Errorf("%w: %s", ErrNotInRoom, voter)
	}

	if r.Vote.PendingResult != result {
		r.Vote.PendingResult = result
		r.Vote.Voters = map[uuid.UUID]bool{voter: true}
		r.Vote.StartedAt = tx.millis()
	} else {
		if r.Vote.Voters == nil {
			r.Vote.Voters = make(map[uuid.UUID]bool)
		}
		r.Vote.Voters[voter] = true
	}

	if len(r.Vote.Voters) >= tx.Rules.RequiredVotes(len(r.Players)) {
		if err := tx.decide(result, models.DecidedByVote); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}
