package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Side labels one of the two teams in a match.
type Side string

const (
	SideIncumbent  Side = "incumbent"
	SideChallenger Side = "challenger"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideIncumbent {
		return SideChallenger
	}
	return SideIncumbent
}

// Valid reports whether s names one of the two sides.
func (s Side) Valid() bool {
	return s == SideIncumbent || s == SideChallenger
}

// ParseSide accepts the current labels and the legacy "champions"/"challengers" ones.
func ParseSide(s string) (Side, error) {
	switch s {
	case "incumbent", "champions":
		return SideIncumbent, nil
	case "challenger", "challengers":
		return SideChallenger, nil
	}
	return "", fmt.Errorf("unknown side %q", s)
}

// Match is the single active contest of a playing room.
type Match struct {
	// Number increases by one for every match created in the room.
	Number int `json:"number"`

	IncumbentTeamID  uuid.UUID `json:"incumbentTeamId"`
	ChallengerTeamID uuid.UUID `json:"challengerTeamId"`
	WinStreak        int       `json:"winStreak"`

	ServingSide Side `json:"servingSide"`
	ServeSlot   int  `json:"serveSlot"`

	IncumbentScore  int `json:"incumbentScore"`
	ChallengerScore int `json:"challengerScore"`
}

// TeamID returns the team id playing on the given side.
func (m Match) TeamID(side Side) uuid.UUID {
	if side == SideIncumbent {
		return m.IncumbentTeamID
	}
	return m.ChallengerTeamID
}

// Score returns the raw points of the given side.
func (m Match) Score(side Side) int {
	if side == SideIncumbent {
		return m.IncumbentScore
	}
	return m.ChallengerScore
}

// TotalPoints is the sum of both raw scores.
func (m Match) TotalPoints() int {
	return m.IncumbentScore + m.ChallengerScore
}

// Vote is the pending disputed result of the current match.
type Vote struct {
	// PendingResult is empty when no proposal is open.
	PendingResult Side               `json:"pendingResult,omitempty"`
	Voters        map[uuid.UUID]bool `json:"voters"`
	StartedAt     int64              `json:"startedAt,omitempty"`
}

// DecidedBy records which path finished a match.
type DecidedBy string

const (
	DecidedByScore DecidedBy = "score"
	DecidedByVote  DecidedBy = "vote"
)

// MatchResult is the outcome of one decided match, published for history.
type MatchResult struct {
	RoomCode        string       `json:"roomCode"`
	MatchNumber     int          `json:"matchNumber"`
	Winner          Side         `json:"winner"`
	WinningPlayers  [2]uuid.UUID `json:"winningPlayers"`
	LosingPlayers   [2]uuid.UUID `json:"losingPlayers"`
	IncumbentScore  int          `json:"incumbentScore"`
	ChallengerScore int          `json:"challengerScore"`
	WinStreak       int          `json:"winStreak"`
	DecidedBy       DecidedBy    `json:"decidedBy"`
	DecidedAt       int64        `json:"decidedAt"`
}
