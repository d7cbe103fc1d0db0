package room

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/kingcourt/internal/models"
)

// MatchView is the derived, presentation-ready state of the active match.
type MatchView struct {
	Handicap            int       `json:"handicap"`
	IncumbentEffective  int       `json:"incumbentEffective"`
	ChallengerEffective int       `json:"challengerEffective"`
	Serve               ServeInfo `json:"serve"`
}

// View is what a player sees when querying a room.
type View struct {
	Room           *models.Room    `json:"room"`
	PlayerID       uuid.UUID       `json:"playerId"`
	Match          *MatchView      `json:"match,omitempty"`
	RequiredVotes  int             `json:"requiredVotes"`
	PendingInvites []models.Invite `json:"pendingInvites"`
	Leaderboard    []models.Player `json:"leaderboard"`
}

// NewView derives the view of r for playerID.
func (rules Rules) NewView(r *models.Room, playerID uuid.UUID) View {
	v := View{
		Room:           r,
		PlayerID:       playerID,
		RequiredVotes:  rules.RequiredVotes(len(r.Players)),
		PendingInvites: []models.Invite{},
		Leaderboard:    Leaderboard(r),
	}
	for _, inv := range r.Invites {
		if inv.ToPlayerID == playerID {
			v.PendingInvites = append(v.PendingInvites, *inv)
		}
	}
	if r.Match != nil {
		inc, ch := rules.Effective(*r.Match)
		mv := &MatchView{
			Handicap:            rules.Handicap(r.Match.WinStreak),
			IncumbentEffective:  inc,
			ChallengerEffective: ch,
		}
		if serve, err := rules.Serve(r); err == nil {
			mv.Serve = serve
		}
		v.Match = mv
	}
	return v
}
