package room

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/kingcourt/internal/auth"
	"github.com/jason-s-yu/kingcourt/internal/models"
)

// Tx is one state transition computed against a private copy of a room snapshot.
// A Tx never performs I/O; the Controller persists Room once every step succeeded.
type Tx struct {
	Room  *models.Room
	Rules Rules
	Now   time.Time
	Rand  *rand.Rand

	// Decided collects the matches finished by this transition.
	Decided []models.MatchResult
}

func (tx *Tx) millis() int64 {
	return tx.Now.UnixMilli()
}

// Join adds the identity to the roster. Joining twice is a no-op.
// In the lobby an odd resulting roster benches the newcomer; while playing the
// newcomer is benched and paired with a waiting bench player if there is one.
func (tx *Tx) Join(id auth.Identity) {
	r := tx.Room
	if _, ok := r.Players[id.PlayerID]; ok {
		return
	}
	r.Players[id.PlayerID] = newPlayer(id, tx.millis())

	switch r.Status {
	case models.StatusLobby:
		if len(r.Players)%2 == 1 && id.PlayerID != r.HostID {
			r.Bench = append(r.Bench, id.PlayerID)
		}
	case models.StatusPlaying:
		r.Bench = append(r.Bench, id.PlayerID)
		settleBench(r)
		tx.refillMatch()
	}
}

// Leave removes the player with their bench slot, team, queue entry and invites.
// A former partner becomes unpaired: free in the lobby, benched while playing.
// Leaving the active match hands the vacated side to the next waiting team.
func (tx *Tx) Leave(playerID uuid.UUID) error {
	r := tx.Room
	if _, ok := r.Players[playerID]; !ok {
		return ErrNotInRoom
	}
	if team, ok := FindPlayerTeam(r, playerID); ok {
		delete(r.Teams, team.ID)
		r.Queue = removeID(r.Queue, team.ID)
		if partner, ok := team.Partner(playerID); ok && r.Status == models.StatusPlaying {
			r.Bench = append(r.Bench, partner)
		}
	}

	delete(r.Players, playerID)
	delete(r.Vote.Voters, playerID)
	r.Bench = removeID(r.Bench, playerID)
	for invID, inv := range r.Invites {
		if inv.FromPlayerID == playerID || inv.ToPlayerID == playerID {
			delete(r.Invites, invID)
		}
	}
	settleBench(r)
	tx.refillMatch()
	return nil
}

// SendInvite opens a pairing invite. An invite already pending between the
// two players, in either direction, is absorbed.
func (tx *Tx) SendInvite(from, to uuid.UUID) (*models.Invite, error) {
	r := tx.Room
	if _, ok := r.Players[from]; !ok {
		return nil, ErrNotInRoom
	}
	if _, ok := r.Players[to]; !ok || from == to {
		return nil, fmt.Errorf("%w: invite target %s", ErrNotInRoom, to)
	}
	for _, inv := range r.Invites {
		if (inv.FromPlayerID == from && inv.ToPlayerID == to) ||
			(inv.FromPlayerID == to && inv.ToPlayerID == from) {
			return inv, nil
		}
	}
	for _, pid := range []uuid.UUID{from, to} {
		if _, ok := FindPlayerTeam(r, pid); ok {
			return nil, fmt.Errorf("%w: %s", ErrPlayerPaired, pid)
		}
	}

	inv := &models.Invite{ID: uuid.New(), FromPlayerID: from, ToPlayerID: to, CreatedAt: tx.millis()}
	r.Invites[inv.ID] = inv
	return inv, nil
}

// AcceptInvite forms a team of the inviter and the invitee. A team formed
// while playing joins the tail of the queue.
func (tx *Tx) AcceptInvite(playerID, inviteID uuid.UUID) (*models.Team, error) {
	r := tx.Room
	inv, ok := r.Invites[inviteID]
	if !ok || inv.ToPlayerID != playerID {
		return nil, ErrInviteNotFound
	}
	delete(r.Invites, inviteID)

	for _, pid := range []uuid.UUID{inv.FromPlayerID, inv.ToPlayerID} {
		if _, ok := r.Players[pid]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotInRoom, pid)
		}
		if _, ok := FindPlayerTeam(r, pid); ok {
			return nil, fmt.Errorf("%w: %s", ErrPlayerPaired, pid)
		}
	}

	team := newTeam(inv.FromPlayerID, inv.ToPlayerID)
	r.Teams[team.ID] = team
	r.Bench = removeID(removeID(r.Bench, inv.FromPlayerID), inv.ToPlayerID)
	if r.Status == models.StatusPlaying {
		r.Queue = append(r.Queue, team.ID)
		tx.refillMatch()
	}
	return team, nil
}

// DeclineInvite drops an invite addressed to, or sent by, the player.
func (tx *Tx) DeclineInvite(playerID, inviteID uuid.UUID) error {
	inv, ok := tx.Room.Invites[inviteID]
	if !ok || (inv.ToPlayerID != playerID && inv.FromPlayerID != playerID) {
		return ErrInviteNotFound
	}
	delete(tx.Room.Invites, inviteID)
	return nil
}

// Start moves the room from lobby to playing. Unpaired and benched players are
// shuffled into teams, the first two teams meet and the rest are queued.
func (tx *Tx) Start(playerID uuid.UUID) error {
	r := tx.Room
	if r.HostID != playerID {
		return ErrNotHost
	}
	if r.Status != models.StatusLobby {
		return ErrAlreadyStarted
	}
	if len(r.Players) < tx.Rules.MinPlayers {
		return fmt.Errorf("%w: need %d, have %d", ErrInsufficientPlayers, tx.Rules.MinPlayers, len(r.Players))
	}

	existing := make([]*models.Team, 0, len(r.Teams))
	paired := make(map[uuid.UUID]bool)
	for _, t := range r.Teams {
		existing = append(existing, t)
		paired[t.Player1ID] = true
		paired[t.Player2ID] = true
	}
	sortTeams(existing)
	Shuffle(existing, tx.Rand)

	var pool []uuid.UUID
	for _, pid := range sortedPlayerIDs(r) {
		if !paired[pid] {
			pool = append(pool, pid)
		}
	}
	formed, bench := FormRandomTeams(pool, tx.Rand)

	teams := append(existing, formed...)
	for _, t := range formed {
		r.Teams[t.ID] = t
	}
	r.Bench = bench
	r.Queue = []uuid.UUID{}
	for _, t := range teams[2:] {
		r.Queue = append(r.Queue, t.ID)
	}
	r.Invites = make(map[uuid.UUID]*models.Invite)
	r.Status = models.StatusPlaying
	tx.newMatch(teams[0].ID, teams[1].ID, 0)
	return nil
}
