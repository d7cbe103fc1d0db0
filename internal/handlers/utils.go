package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jason-s-yu/kingcourt/internal/room"
	log "github.com/sirupsen/logrus"
)

// errBadRequest marks malformed request bodies and parameters.
var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errorTable = []struct {
	err    error
	status int
	code   string
}{
	{room.ErrNotAuthenticated, http.StatusUnauthorized, "not_authenticated"},
	{room.ErrRoomNotFound, http.StatusNotFound, "room_not_found"},
	{room.ErrInviteNotFound, http.StatusNotFound, "invite_not_found"},
	{room.ErrInvalidRoomCode, http.StatusBadRequest, "invalid_room_code"},
	{room.ErrInvalidSide, http.StatusBadRequest, "invalid_side"},
	{errBadRequest, http.StatusBadRequest, "bad_request"},
	{room.ErrNotHost, http.StatusForbidden, "not_host"},
	{room.ErrNotInRoom, http.StatusForbidden, "not_in_room"},
	{room.ErrInsufficientPlayers, http.StatusConflict, "insufficient_players"},
	{room.ErrAlreadyStarted, http.StatusConflict, "already_started"},
	{room.ErrPlayerPaired, http.StatusConflict, "player_paired"},
	{room.ErrNoMatch, http.StatusConflict, "no_match"},
	{room.ErrMatchDecided, http.StatusConflict, "match_decided"},
	{room.ErrEmptyQueue, http.StatusConflict, "empty_queue"},
	{room.ErrMissingTeam, http.StatusConflict, "missing_team"},
	{room.ErrInvalidTeam, http.StatusConflict, "invalid_team"},
	{room.ErrWriteConflict, http.StatusServiceUnavailable, "write_conflict"},
}

// writeError maps domain errors onto HTTP statuses. Unknown errors are logged
// and reported as 500 without their text.
func writeError(w http.ResponseWriter, err error) {
	for _, e := range errorTable {
		if errors.Is(err, e.err) {
			writeJSON(w, e.status, errorResponse{Error: err.Error(), Code: e.code})
			return
		}
	}
	log.Errorf("unhandled error: %v", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "internal"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("failed to encode response: %v", err)
	}
}

// decodeBody decodes a JSON request body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
