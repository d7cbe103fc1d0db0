package room

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jason-s-yu/kingcourt/internal/models"
)

// RotationDecision names which member of a losing team keeps playing.
type RotationDecision struct {
	Stays  uuid.UUID
	Leaves uuid.UUID
}

// WhoStays picks the member with fewer games played; on a tie the one who sat
// out earlier stays. Exactly one member is always selected.
func WhoStays(team *models.Team, players map[uuid.UUID]*models.Player) (RotationDecision, error) {
	p1, ok1 := players[team.Player1ID]
	p2, ok2 := players[team.Player2ID]
	if !ok1 || !ok2 {
		return RotationDecision{}, fmt.Errorf("%w: team %s", ErrInvalidTeam, team.ID)
	}

	switch {
	case p1.GamesPlayed < p2.GamesPlayed:
		return RotationDecision{Stays: p1.ID, Leaves: p2.ID}, nil
	case p2.GamesPlayed < p1.GamesPlayed:
		return RotationDecision{Stays: p2.ID, Leaves: p1.ID}, nil
	case p1.SatOutLast < p2.SatOutLast:
		return RotationDecision{Stays: p1.ID, Leaves: p2.ID}, nil
	default:
		return RotationDecision{Stays: p2.ID, Leaves: p1.ID}, nil
	}
}

// decide finishes the active match with winner and sets up the next one.
// Nothing in the room is touched unless every step succeeds.
func (tx *Tx) decide(winner models.Side, by models.DecidedBy) error {
	r := tx.Room
	m := r.Match
	if m == nil {
		return ErrNoMatch
	}

	incumbent, ok := r.Teams[m.IncumbentTeamID]
	if !ok {
		return fmt.Errorf("%w: incumbent %s", ErrMissingTeam, m.IncumbentTeamID)
	}
	challenger, ok := r.Teams[m.ChallengerTeamID]
	if !ok {
		return fmt.Errorf("%w: challenger %s", ErrMissingTeam, m.ChallengerTeamID)
	}

	winning, losing := incumbent, challenger
	streak := m.WinStreak + 1
	if winner == models.SideChallenger {
		winning, losing = challenger, incumbent
		streak = 0
	}

	// Work on copies of the rotation fields so a failure leaves r untouched.
	queue := append([]uuid.UUID{}, r.Queue...)
	bench := append([]uuid.UUID{}, r.Bench...)
	var (
		nextChallenger *models.Team
		dissolve       bool
		leaver         uuid.UUID
	)

	if len(r.Players)%2 == 1 && len(bench) > 0 {
		d, err := WhoStays(losing, r.Players)
		if err != nil {
			return err
		}
		nextChallenger = newTeam(d.Stays, bench[0])
		bench = append([]uuid.UUID{d.Leaves}, bench[1:]...)
		dissolve = true
		leaver = d.Leaves
	} else {
		if len(queue) == 0 {
			return ErrEmptyQueue
		}
		nextID := queue[0]
		queue = append(queue[1:], losing.ID)
		next, ok := r.Teams[nextID]
		if !ok {
			return fmt.Errorf("%w: queued %s", ErrMissingTeam, nextID)
		}
		nextChallenger = next
	}

	if err := applyResult(r, winning, losing); err != nil {
		return err
	}

	result := models.MatchResult{
		RoomCode:        r.Code,
		MatchNumber:     m.Number,
		Winner:          winner,
		WinningPlayers:  winning.Members(),
		LosingPlayers:   losing.Members(),
		IncumbentScore:  m.IncumbentScore,
		ChallengerScore: m.ChallengerScore,
		WinStreak:       m.WinStreak,
		DecidedBy:       by,
		DecidedAt:       tx.millis(),
	}

	if dissolve {
		delete(r.Teams, losing.ID)
		r.Teams[nextChallenger.ID] = nextChallenger
		r.Players[leaver].SatOutLast = tx.millis()
	}
	r.Queue = queue
	r.Bench = bench
	tx.newMatch(winning.ID, nextChallenger.ID, streak)
	tx.Decided = append(tx.Decided, result)
	return nil
}

// refillMatch repairs the active match after teams left a playing room.
// A vacated side goes to the head of the queue and the survivor keeps its side,
// with the incumbent's streak kept only when the incumbent survived. Without a
// replacement the match is cleared and the survivor waits at the queue head.
func (tx *Tx) refillMatch() {
	r := tx.Room
	if r.Status != models.StatusPlaying {
		return
	}

	var incumbent, challenger uuid.UUID
	streak := 0
	if m := r.Match; m != nil {
		_, incOK := r.Teams[m.IncumbentTeamID]
		_, chOK := r.Teams[m.ChallengerTeamID]
		if incOK && chOK {
			return
		}
		if incOK {
			incumbent, streak = m.IncumbentTeamID, m.WinStreak
		}
		if chOK {
			challenger = m.ChallengerTeamID
		}
	}

	queue := r.Queue
	for _, side := range []*uuid.UUID{&incumbent, &challenger} {
		for *side == uuid.Nil && len(queue) > 0 {
			next := queue[0]
			queue = queue[1:]
			if _, ok := r.Teams[next]; ok {
				*side = next
			}
		}
	}

	if incumbent == uuid.Nil || challenger == uuid.Nil {
		for _, id := range []uuid.UUID{challenger, incumbent} {
			if id != uuid.Nil {
				queue = append([]uuid.UUID{id}, queue...)
			}
		}
		r.Queue = queue
		if r.Match != nil {
			r.Match = nil
			resetVote(r)
		}
		return
	}
	r.Queue = queue
	tx.newMatch(incumbent, challenger, streak)
}

// newMatch installs a fresh match and clears any pending vote.
func (tx *Tx) newMatch(incumbentID, challengerID uuid.UUID, streak int) {
	r := tx.Room
	r.MatchNumber++
	opening := OpeningSide(streak)
	r.Match = &models.Match{
		Number:           r.MatchNumber,
		IncumbentTeamID:  incumbentID,
		ChallengerTeamID: challengerID,
		WinStreak:        streak,
		ServingSide:      opening,
	}
	resetVote(r)
}
