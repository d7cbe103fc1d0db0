package room

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/kingcourt/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormRandomTeams(t *testing.T) {
	for _, n := range []int{4, 5, 6, 7, 10, 11} {
		ids := make([]uuid.UUID, n)
		for i := range ids {
			ids[i] = uuid.New()
		}

		teams, bench := FormRandomTeams(ids, rand.New(rand.NewSource(int64(n))))

		assert.Len(t, teams, n/2, "n=%d", n)
		seen := make(map[uuid.UUID]int)
		for _, team := range teams {
			assert.NotEqual(t, team.Player1ID, team.Player2ID)
			seen[team.Player1ID]++
			seen[team.Player2ID]++
		}
		for _, id := range bench {
			seen[id]++
		}
		if n%2 == 0 {
			assert.Empty(t, bench, "n=%d", n)
		} else {
			require.Len(t, bench, 1, "n=%d", n)
			assert.Contains(t, ids, bench[0])
		}
		assert.Len(t, seen, n, "every input player placed exactly once")
		for id, count := range seen {
			assert.Equal(t, 1, count, "player %s placed %d times", id, count)
		}
	}
}

func TestShuffleKeepsElements(t *testing.T) {
	in := []int{1, 2, 3, 4, 5, 6, 7, 8}
	out := append([]int{}, in...)
	Shuffle(out, rand.New(rand.NewSource(3)))
	assert.ElementsMatch(t, in, out)
}

func TestSendInviteAbsorbsDuplicates(t *testing.T) {
	r, ids := newLobby(t, 4)
	tx := testTx(r)

	inv, err := tx.SendInvite(ids[0].PlayerID, ids[1].PlayerID)
	require.NoError(t, err)

	again, err := tx.SendInvite(ids[0].PlayerID, ids[1].PlayerID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, again.ID)

	reverse, err := tx.SendInvite(ids[1].PlayerID, ids[0].PlayerID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, reverse.ID)
	assert.Len(t, r.Invites, 1)
}

func TestAcceptInviteFormsTeamAndClearsBench(t *testing.T) {
	r, ids := newLobby(t, 4)
	benched := ids[2].PlayerID
	require.True(t, r.Benched(benched))

	tx := testTx(r)
	inv, err := tx.SendInvite(ids[1].PlayerID, benched)
	require.NoError(t, err)

	_, err = tx.AcceptInvite(ids[1].PlayerID, inv.ID)
	assert.ErrorIs(t, err, ErrInviteNotFound, "only the invitee may accept")

	team, err := tx.AcceptInvite(benched, inv.ID)
	require.NoError(t, err)
	assert.True(t, team.Has(ids[1].PlayerID))
	assert.True(t, team.Has(benched))
	assert.False(t, r.Benched(benched))
	assert.Empty(t, r.Invites)

	_, err = tx.SendInvite(ids[1].PlayerID, ids[3].PlayerID)
	assert.ErrorIs(t, err, ErrPlayerPaired)
}

func TestDeclineInvite(t *testing.T) {
	r, ids := newLobby(t, 4)
	tx := testTx(r)
	inv, err := tx.SendInvite(ids[0].PlayerID, ids[1].PlayerID)
	require.NoError(t, err)

	assert.ErrorIs(t, tx.DeclineInvite(ids[2].PlayerID, inv.ID), ErrInviteNotFound)
	require.NoError(t, tx.DeclineInvite(ids[1].PlayerID, inv.ID))
	assert.Empty(t, r.Invites)
}

func TestJoinWhilePlayingPairsBench(t *testing.T) {
	r, _ := startedRoom(t, 4)
	tx := testTx(r)
	late := identities(2)

	tx.Join(late[0])
	assert.Equal(t, []uuid.UUID{late[0].PlayerID}, r.Bench)

	tx.Join(late[1])
	assert.Empty(t, r.Bench)
	require.Len(t, r.Queue, 1)
	team := r.Teams[r.Queue[0]]
	require.NotNil(t, team)
	assert.True(t, team.Has(late[0].PlayerID))
	assert.True(t, team.Has(late[1].PlayerID))
}

func TestJoinTwiceIsNoop(t *testing.T) {
	r, ids := newLobby(t, 3)
	before := r.Clone()
	testTx(r).Join(ids[1])
	assert.Equal(t, before, r)
}

func TestLeaveQueuedPlayerBenchesPartner(t *testing.T) {
	r, _ := startedRoom(t, 6)
	require.Len(t, r.Queue, 1)
	queued := *r.Teams[r.Queue[0]]

	require.NoError(t, testTx(r).Leave(queued.Player1ID))

	assert.Empty(t, r.Queue)
	assert.NotContains(t, r.Teams, queued.ID)
	assert.Equal(t, []uuid.UUID{queued.Player2ID}, r.Bench)
	assert.Len(t, r.Players, 5)
}

func TestLeaveActiveMatchPromotesQueueHead(t *testing.T) {
	r, _ := startedRoom(t, 6)
	inc := *r.Teams[r.Match.IncumbentTeamID]
	challengerID := r.Match.ChallengerTeamID
	queued := r.Queue[0]
	r.Match.WinStreak = 2
	r.Match.IncumbentScore = 7

	require.NoError(t, testTx(r).Leave(inc.Player1ID))

	assert.Len(t, r.Players, 5)
	assert.NotContains(t, r.Teams, inc.ID)
	require.NotNil(t, r.Match)
	assert.Equal(t, 2, r.Match.Number)
	assert.Equal(t, queued, r.Match.IncumbentTeamID)
	assert.Equal(t, challengerID, r.Match.ChallengerTeamID)
	assert.Zero(t, r.Match.WinStreak)
	assert.Zero(t, r.Match.IncumbentScore)
	assert.Empty(t, r.Queue)
	assert.Equal(t, []uuid.UUID{inc.Player2ID}, r.Bench)
}

func TestLeaveActiveMatchPairsBenchPartner(t *testing.T) {
	r, _ := startedRoom(t, 7)
	require.Len(t, r.Bench, 1)
	waiting := r.Bench[0]
	incumbentID := r.Match.IncumbentTeamID
	ch := *r.Teams[r.Match.ChallengerTeamID]
	queue := append([]uuid.UUID{}, r.Queue...)
	r.Match.WinStreak = 3

	require.NoError(t, testTx(r).Leave(ch.Player2ID))

	require.NotNil(t, r.Match)
	assert.Equal(t, incumbentID, r.Match.IncumbentTeamID)
	assert.Equal(t, 3, r.Match.WinStreak, "surviving incumbent keeps its streak")
	replacement := r.Teams[r.Match.ChallengerTeamID]
	require.NotNil(t, replacement)
	members := replacement.Members()
	assert.ElementsMatch(t, []uuid.UUID{waiting, ch.Player1ID}, members[:])
	assert.Equal(t, queue, r.Queue)
	assert.Empty(t, r.Bench)
}

func TestLeaveFourPlayerMatchWaitsForPlayers(t *testing.T) {
	r, _ := startedRoom(t, 4)
	inc := *r.Teams[r.Match.IncumbentTeamID]
	challengerID := r.Match.ChallengerTeamID
	tx := testTx(r)

	require.NoError(t, tx.Leave(inc.Player1ID))
	assert.Nil(t, r.Match)
	assert.Equal(t, []uuid.UUID{challengerID}, r.Queue)
	assert.Equal(t, []uuid.UUID{inc.Player2ID}, r.Bench)
	assert.ErrorIs(t, tx.AdjustScore(models.SideIncumbent, 1), ErrNoMatch)

	// Another member can still leave while no match runs.
	ch := r.Teams[challengerID]
	require.NoError(t, tx.Leave(ch.Player1ID))
	assert.Len(t, r.Players, 2)

	newcomers := identities(2)
	tx.Join(newcomers[0])
	assert.Nil(t, r.Match)
	tx.Join(newcomers[1])
	require.NotNil(t, r.Match)
	assert.Equal(t, 2, r.Match.Number)
	assert.Empty(t, r.Queue)
	assert.Empty(t, r.Bench)
	for _, id := range []uuid.UUID{r.Match.IncumbentTeamID, r.Match.ChallengerTeamID} {
		assert.Contains(t, r.Teams, id)
	}
}

func TestLeaveRemovesInvites(t *testing.T) {
	r, ids := newLobby(t, 4)
	tx := testTx(r)
	_, err := tx.SendInvite(ids[1].PlayerID, ids[2].PlayerID)
	require.NoError(t, err)

	require.NoError(t, tx.Leave(ids[2].PlayerID))
	assert.Empty(t, r.Invites)
	assert.False(t, r.Benched(ids[2].PlayerID))
	assert.ErrorIs(t, tx.Leave(ids[2].PlayerID), ErrNotInRoom)
}

func TestStartPreconditions(t *testing.T) {
	r, ids := newLobby(t, 3)
	assert.ErrorIs(t, testTx(r).Start(ids[0].PlayerID), ErrInsufficientPlayers)

	r, ids = newLobby(t, 4)
	assert.ErrorIs(t, testTx(r).Start(ids[1].PlayerID), ErrNotHost)

	require.NoError(t, testTx(r).Start(ids[0].PlayerID))
	assert.ErrorIs(t, testTx(r).Start(ids[0].PlayerID), ErrAlreadyStarted)
}

func TestStartKeepsPreformedTeams(t *testing.T) {
	r, ids := newLobby(t, 7)
	tx := testTx(r)
	inv, err := tx.SendInvite(ids[1].PlayerID, ids[2].PlayerID)
	require.NoError(t, err)
	team, err := tx.AcceptInvite(ids[2].PlayerID, inv.ID)
	require.NoError(t, err)

	require.NoError(t, tx.Start(ids[0].PlayerID))

	assert.Contains(t, r.Teams, team.ID)
	assert.Len(t, r.Teams, 3)
	assert.Len(t, r.Bench, 1)
	assert.Len(t, r.Queue, 1)
	assert.Empty(t, r.Invites)

	placed := map[uuid.UUID]bool{r.Bench[0]: true}
	for _, tm := range r.Teams {
		placed[tm.Player1ID] = true
		placed[tm.Player2ID] = true
	}
	assert.Len(t, placed, 7)
}

func TestStartFourPlayers(t *testing.T) {
	r, _ := startedRoom(t, 4)
	require.NotNil(t, r.Match)
	assert.Empty(t, r.Queue)
	assert.Empty(t, r.Bench)
	assert.Equal(t, 0, r.Match.WinStreak)
	assert.Equal(t, 0, r.Match.IncumbentScore)
	assert.Equal(t, 0, r.Match.ChallengerScore)
	assert.Equal(t, models.SideIncumbent, r.Match.ServingSide)
	assert.NotEqual(t, r.Match.IncumbentTeamID, r.Match.ChallengerTeamID)
}
