package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/kingcourt/internal/auth"
	"github.com/jason-s-yu/kingcourt/internal/metrics"
	"github.com/jason-s-yu/kingcourt/internal/room"
	"github.com/jason-s-yu/kingcourt/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	t   *testing.T
	srv *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	require.NoError(t, auth.Init())

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	reg := prometheus.NewRegistry()
	stats := metrics.NewMetrics("kingcourt", reg)
	ctrl := room.NewController(store.NewMemoryStore(), logger)
	ctrl.Stats = stats
	ctrl.Seed(1)

	s := NewServer(ctrl, logger)
	s.Stats = stats
	s.Metric = reg
	s.PublicURL = "https://court.example"

	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return &testEnv{t: t, srv: srv}
}

// session creates a guest and returns its bearer token.
func (e *testEnv) session(name string) (string, auth.Identity) {
	e.t.Helper()
	var resp sessionResponse
	status := e.do(http.MethodPost, "/session", "", map[string]string{"name": name}, &resp)
	require.Equal(e.t, http.StatusCreated, status)
	require.NotEmpty(e.t, resp.Token)
	return resp.Token, resp.Identity
}

func (e *testEnv) do(method, path, token string, body, out interface{}) int {
	e.t.Helper()
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.t, err)
		buf = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, buf)
	require.NoError(e.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.srv.Client().Do(req)
	require.NoError(e.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(e.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// viewResponse mirrors room.View loosely enough to decode it.
type viewResponse struct {
	Room struct {
		Code    string                     `json:"code"`
		Version int64                      `json:"version"`
		Status  string                     `json:"status"`
		Players map[string]json.RawMessage `json:"players"`
		Queue   []string                   `json:"queue"`
		Match   *struct {
			Number          int `json:"number"`
			IncumbentScore  int `json:"incumbentScore"`
			ChallengerScore int `json:"challengerScore"`
		} `json:"match"`
	} `json:"room"`
	RequiredVotes int `json:"requiredVotes"`
	Match         *struct {
		Handicap int `json:"handicap"`
		Serve    struct {
			Side string `json:"side"`
		} `json:"serve"`
	} `json:"match"`
}

func (e *testEnv) room(n int) (string, []string) {
	e.t.Helper()
	tokens := make([]string, n)
	for i := range tokens {
		tokens[i], _ = e.session(fmt.Sprintf("player %d", i))
	}
	var view viewResponse
	require.Equal(e.t, http.StatusCreated, e.do(http.MethodPost, "/rooms", tokens[0], nil, &view))
	code := view.Room.Code
	for _, tok := range tokens[1:] {
		require.Equal(e.t, http.StatusOK, e.do(http.MethodPost, "/rooms/"+code+"/join", tok, nil, nil))
	}
	return code, tokens
}

func TestSessionRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	token, id := env.session("")
	assert.True(t, id.Anonymous)
	assert.NotEmpty(t, id.Name)

	var resp sessionResponse
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/session", token, nil, &resp))
	assert.Equal(t, id, resp.Identity)

	var errResp errorResponse
	require.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/session", "", nil, &errResp))
	assert.Equal(t, "not_authenticated", errResp.Code)
}

func TestRoomLifecycle(t *testing.T) {
	env := newTestEnv(t)
	code, tokens := env.room(6)

	var errResp errorResponse
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodPost, "/rooms/"+code+"/start", tokens[1], nil, &errResp))
	assert.Equal(t, "not_host", errResp.Code)

	var view viewResponse
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/rooms/"+code+"/start", tokens[0], nil, &view))
	assert.Equal(t, "playing", view.Room.Status)
	require.NotNil(t, view.Room.Match)
	assert.Len(t, view.Room.Queue, 1)
	assert.Equal(t, 2, view.RequiredVotes)
	require.NotNil(t, view.Match)
	assert.Equal(t, "incumbent", view.Match.Serve.Side)

	score := map[string]interface{}{"side": "champions", "delta": 3, "match": 1}
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/rooms/"+code+"/score", tokens[2], score, &view))
	assert.Equal(t, 3, view.Room.Match.IncumbentScore)

	zero := map[string]interface{}{"side": "incumbent", "delta": 0}
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/rooms/"+code+"/score", tokens[2], zero, &view))
	assert.Equal(t, 3, view.Room.Match.IncumbentScore, "an explicit zero delta changes nothing")

	point := map[string]interface{}{"side": "incumbent"}
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/rooms/"+code+"/score", tokens[2], point, &view))
	assert.Equal(t, 4, view.Room.Match.IncumbentScore, "a missing delta scores one point")

	bad := map[string]interface{}{"side": "home"}
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/rooms/"+code+"/score", tokens[2], bad, &errResp))
	assert.Equal(t, "invalid_side", errResp.Code)

	vote := map[string]interface{}{"result": "challenger", "match": 1}
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/rooms/"+code+"/vote", tokens[3], vote, &view))
	assert.Equal(t, 1, view.Room.Match.Number)
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/rooms/"+code+"/vote", tokens[4], vote, &view))
	assert.Equal(t, 2, view.Room.Match.Number)

	assert.Equal(t, http.StatusConflict, env.do(http.MethodPost, "/rooms/"+code+"/vote", tokens[5], vote, &errResp))
	assert.Equal(t, "match_decided", errResp.Code)
}

func TestRoomErrors(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.session("solo")

	var errResp errorResponse
	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodPost, "/rooms", "", nil, &errResp))
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/rooms/PING-0000", token, nil, &errResp))
	assert.Equal(t, "room_not_found", errResp.Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/rooms/nope", token, nil, &errResp))
	assert.Equal(t, "invalid_room_code", errResp.Code)

	code, tokens := env.room(3)
	assert.Equal(t, http.StatusConflict, env.do(http.MethodPost, "/rooms/"+code+"/start", tokens[0], nil, &errResp))
	assert.Equal(t, "insufficient_players", errResp.Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/rooms/"+code+"/invites/xyz/accept", tokens[0], nil, &errResp))
	assert.Equal(t, http.StatusNotImplemented, env.do(http.MethodGet, "/rooms/"+code+"/history", tokens[0], nil, &errResp))
}

func TestInviteFlow(t *testing.T) {
	env := newTestEnv(t)
	code, tokens := env.room(4)

	var me sessionResponse
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/session", tokens[1], nil, &me))

	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/rooms/"+code+"/invites", tokens[0],
		map[string]interface{}{"to": me.Identity.PlayerID}, nil))

	var view struct {
		PendingInvites []struct {
			ID string `json:"id"`
		} `json:"pendingInvites"`
		Room struct {
			Teams map[string]json.RawMessage `json:"teams"`
		} `json:"room"`
	}
	require.Equal(t, http.StatusOK, env.do(http.MethodGet, "/rooms/"+code, tokens[1], nil, &view))
	require.Len(t, view.PendingInvites, 1)

	path := fmt.Sprintf("/rooms/%s/invites/%s/accept", code, view.PendingInvites[0].ID)
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, path, tokens[1], nil, &view))
	assert.Len(t, view.Room.Teams, 1)
	assert.Empty(t, view.PendingInvites)
}

func TestRoomQR(t *testing.T) {
	env := newTestEnv(t)
	code, tokens := env.room(1)

	req, err := http.NewRequest(http.MethodGet, env.srv.URL+"/rooms/"+strings.ToLower(code)+"/qr?size=128", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tokens[0])
	resp, err := env.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("\x89PNG")))

	var errResp errorResponse
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/rooms/"+code+"/qr?size=5", "", nil, &errResp))
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.room(2)

	resp, err := env.srv.Client().Get(env.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `kingcourt_room_commands_total{command="join",outcome="ok"} 1`)
	assert.Contains(t, string(body), "kingcourt_rooms_created_total 1")
}

func TestRoomStream(t *testing.T) {
	env := newTestEnv(t)
	code, tokens := env.room(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/rooms/" + code + "/ws"
	c, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		Subprotocols: []string{roomSubprotocol},
		HTTPHeader:   http.Header{"Authorization": []string{"Bearer " + tokens[0]}},
	})
	require.NoError(t, err)
	defer c.Close(websocket.StatusNormalClosure, "")

	read := func() viewResponse {
		_, data, err := c.Read(ctx)
		require.NoError(t, err)
		var ev struct {
			Type string       `json:"type"`
			View viewResponse `json:"view"`
		}
		require.NoError(t, json.Unmarshal(data, &ev))
		assert.Equal(t, "room_snapshot", ev.Type)
		return ev.View
	}

	first := read()
	assert.Len(t, first.Room.Players, 1)

	joiner, _ := env.session("late")
	require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/rooms/"+code+"/join", joiner, nil, nil))

	next := read()
	assert.Len(t, next.Room.Players, 2)
	assert.Greater(t, next.Room.Version, first.Room.Version)
}
