package models

import (
	"github.com/google/uuid"
)

// RoomStatus is the controller state of a room.
type RoomStatus string

const (
	StatusLobby   RoomStatus = "lobby"
	StatusPlaying RoomStatus = "playing"
)

// Room is the shared document every client observes.
type Room struct {
	Code      string     `json:"code"`
	Version   int64      `json:"version"`
	Status    RoomStatus `json:"status"`
	CreatedAt int64      `json:"createdAt"`
	HostID    uuid.UUID  `json:"hostId"`

	Players map[uuid.UUID]*Player `json:"players"`
	Teams   map[uuid.UUID]*Team   `json:"teams"`
	Invites map[uuid.UUID]*Invite `json:"invites"`

	Match       *Match      `json:"match"`
	MatchNumber int         `json:"matchNumber"`
	Queue       []uuid.UUID `json:"queue"`
	Bench       []uuid.UUID `json:"bench"`
	Vote        Vote        `json:"votes"`
}

// NewRoom returns an empty lobby room.
func NewRoom(code string, hostID uuid.UUID, createdAt int64) *Room {
	r := &Room{
		Code:      code,
		Status:    StatusLobby,
		CreatedAt: createdAt,
		HostID:    hostID,
	}
	r.Normalize()
	return r
}

// Normalize fills nil collections so decoded documents are safe to mutate.
func (r *Room) Normalize() {
	if r.Players == nil {
		r.Players = make(map[uuid.UUID]*Player)
	}
	if r.Teams == nil {
		r.Teams = make(map[uuid.UUID]*Team)
	}
	if r.Invites == nil {
		r.Invites = make(map[uuid.UUID]*Invite)
	}
	if r.Queue == nil {
		r.Queue = []uuid.UUID{}
	}
	if r.Bench == nil {
		r.Bench = []uuid.UUID{}
	}
	if r.Vote.Voters == nil {
		r.Vote.Voters = make(map[uuid.UUID]bool)
	}
}

// Clone deep-copies the room so a transition can be computed without touching the snapshot.
func (r *Room) Clone() *Room {
	c := *r
	c.Players = make(map[uuid.UUID]*Player, len(r.Players))
	for id, p := range r.Players {
		cp := *p
		c.Players[id] = &cp
	}
	c.Teams = make(map[uuid.UUID]*Team, len(r.Teams))
	for id, t := range r.Teams {
		ct := *t
		c.Teams[id] = &ct
	}
	c.Invites = make(map[uuid.UUID]*Invite, len(r.Invites))
	for id, inv := range r.Invites {
		ci := *inv
		c.Invites[id] = &ci
	}
	if r.Match != nil {
		m := *r.Match
		c.Match = &m
	}
	c.Queue = append([]uuid.UUID{}, r.Queue...)
	c.Bench = append([]uuid.UUID{}, r.Bench...)
	c.Vote.Voters = make(map[uuid.UUID]bool, len(r.Vote.Voters))
	for id, v := range r.Vote.Voters {
		c.Vote.Voters[id] = v
	}
	return &c
}

// Benched reports whether the player is on the bench.
func (r *Room) Benched(playerID uuid.UUID) bool {
	for _, id := range r.Bench {
		if id == playerID {
			return true
		}
	}
	return false
}
