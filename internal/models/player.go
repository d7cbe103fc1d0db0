package models

import "github.com/google/uuid"

// Player is a room member and their lifetime counters within the room.
type Player struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Anonymous bool      `json:"isAnonymous"`
	JoinedAt  int64     `json:"joinedAt"`

	GamesPlayed int `json:"gamesPlayed"`
	Wins        int `json:"wins"`
	Losses      int `json:"losses"`

	// SatOutLast is the unix-millis time the player was last benched, 0 if never.
	SatOutLast int64 `json:"satOutLast"`
}

// Invite is a pending request from one player to pair with another.
type Invite struct {
	ID           uuid.UUID `json:"id"`
	FromPlayerID uuid.UUID `json:"fromPlayerId"`
	ToPlayerID   uuid.UUID `json:"toPlayerId"`
	CreatedAt    int64     `json:"createdAt"`
}
