package room

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/kingcourt/internal/models"
)

// Handicap is the bonus credited to the challenger for the incumbent's streak.
func (rules Rules) Handicap(streak int) int {
	return streak * rules.HandicapPerWin
}

// OpeningSide serves first in a fresh match: the incumbent on an even streak,
// the challenger on an odd one.
func OpeningSide(streak int) models.Side {
	if streak%2 == 0 {
		return models.SideIncumbent
	}
	return models.SideChallenger
}

// Effective returns the handicap-adjusted totals used for deuce and win detection.
func (rules Rules) Effective(m models.Match) (incumbent, challenger int) {
	return m.IncumbentScore, m.ChallengerScore + rules.Handicap(m.WinStreak)
}

// Deuce reports whether both effective totals reached the deuce score.
func (rules Rules) Deuce(m models.Match) bool {
	inc, ch := rules.Effective(m)
	return inc >= rules.DeuceScore && ch >= rules.DeuceScore
}

// Winner returns the side that has won the match on score, if any.
func (rules Rules) Winner(m models.Match) (models.Side, bool) {
	inc, ch := rules.Effective(m)
	if inc < rules.WinningScore && ch < rules.WinningScore {
		return "", false
	}
	switch {
	case inc-ch >= rules.WinningLead:
		return models.SideIncumbent, true
	case ch-inc >= rules.WinningLead:
		return models.SideChallenger, true
	}
	return "", false
}

// BaseSlot is the two-point cadence slot for a number of raw points.
func BaseSlot(totalPoints int) int {
	return (totalPoints / 2) % 4
}

// SlotSide maps a serve slot to the serving side. Even slots belong to the
// side that opened the match.
func SlotSide(streak, slot int) models.Side {
	opening := OpeningSide(streak)
	if slot%2 == 0 {
		return opening
	}
	return opening.Opposite()
}

// ServeInfo describes who serves right now.
type ServeInfo struct {
	Side     models.Side `json:"side"`
	Slot     int         `json:"slot"`
	PlayerID uuid.UUID   `json:"playerId"`
	Deuce    bool        `json:"deuce"`
}

// Serve resolves the serving player from the match's slot. The cycle is
// opening A, other B, opening B, other A.
func (rules Rules) Serve(r *models.Room) (ServeInfo, error) {
	m := r.Match
	if m == nil {
		return ServeInfo{}, ErrNoMatch
	}
	side := SlotSide(m.WinStreak, m.ServeSlot)
	team, ok := r.Teams[m.TeamID(side)]
	if !ok {
		return ServeInfo{}, ErrMissingTeam
	}
	player := team.Player1ID
	if m.ServeSlot == 1 || m.ServeSlot == 2 {
		player = team.Player2ID
	}
	return ServeInfo{Side: side, Slot: m.ServeSlot, PlayerID: player, Deuce: rules.Deuce(*m)}, nil
}

// AdjustScore adds delta raw points to side, recomputes the serve and decides
// the match when a side has won. Raw scores never go below zero.
func (tx *Tx) AdjustScore(side models.Side, delta int) error {
	if !side.Valid() {
		return ErrInvalidSide
	}
	m := tx.Room.Match
	if m == nil {
		return ErrNoMatch
	}

	before := m.TotalPoints()
	switch side {
	case models.SideIncumbent:
		m.IncumbentScore = max(0, m.IncumbentScore+delta)
	case models.SideChallenger:
		m.ChallengerScore = max(0, m.ChallengerScore+delta)
	}
	after := m.TotalPoints()

	if tx.Rules.Deuce(*m) {
		// A correction walks the slot back as far as the points it removed.
		m.ServeSlot = ((m.ServeSlot+after-before)%4 + 4) % 4
	} else {
		m.ServeSlot = BaseSlot(after)
	}
	m.ServingSide = SlotSide(m.WinStreak, m.ServeSlot)

	if winner, ok := tx.Rules.Winner(*m); ok {
		return tx.decide(winner, models.DecidedByScore)
	}
	return nil
}
