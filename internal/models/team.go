package models

import "github.com/google/uuid"

// Team is an unordered pair of two distinct players.
type Team struct {
	ID        uuid.UUID `json:"id"`
	Player1ID uuid.UUID `json:"player1Id"`
	Player2ID uuid.UUID `json:"player2Id"`
}

// Members returns both player ids in slot order.
func (t Team) Members() [2]uuid.UUID {
	return [2]uuid.UUID{t.Player1ID, t.Player2ID}
}

// Has reports whether playerID is on the team.
func (t Team) Has(playerID uuid.UUID) bool {
	return t.Player1ID == playerID || t.Player2ID == playerID
}

// Partner returns the other member of the team, or false if playerID is not on it.
func (t Team) Partner(playerID uuid.UUID) (uuid.UUID, bool) {
	switch playerID {
	case t.Player1ID:
		return t.Player2ID, true
	case t.Player2ID:
		return t.Player1ID, true
	}
	return uuid.Nil, false
}
