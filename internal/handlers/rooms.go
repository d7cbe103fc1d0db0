package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jason-s-yu/kingcourt/internal/middleware"
	"github.com/jason-s-yu/kingcourt/internal/models"
	"github.com/jason-s-yu/kingcourt/internal/room"
)

type inviteRequest struct {
	To uuid.UUID `json:"to"`
}

type scoreRequest struct {
	Side string `json:"side"`
	// Delta defaults to a single point when omitted.
	Delta *int `json:"delta"`
	// Match pins the command to a match number; 0 means the current one.
	Match int `json:"match"`
}

type voteRequest struct {
	Result string `json:"result"`
	Match  int    `json:"match"`
}

// respond writes the caller's view of the room returned by a command.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, rm *models.Room, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	id := middleware.IdentityFrom(r.Context())
	writeJSON(w, status, s.Rooms.Rules.NewView(rm, id.PlayerID))
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	rm, err := s.Rooms.CreateRoom(r.Context(), middleware.IdentityFrom(r.Context()))
	s.respond(w, r, http.StatusCreated, rm, err)
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	rm, err := s.Rooms.Room(r.Context(), chi.URLParam(r, "code"))
	s.respond(w, r, http.StatusOK, rm, err)
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	rm, err := s.Rooms.JoinRoom(r.Context(), middleware.IdentityFrom(r.Context()), chi.URLParam(r, "code"))
	s.respond(w, r, http.StatusOK, rm, err)
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	rm, err := s.Rooms.LeaveRoom(r.Context(), middleware.IdentityFrom(r.Context()), chi.URLParam(r, "code"))
	s.respond(w, r, http.StatusOK, rm, err)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	rm, err := s.Rooms.StartGame(r.Context(), middleware.IdentityFrom(r.Context()), chi.URLParam(r, "code"))
	s.respond(w, r, http.StatusOK, rm, err)
}

func (s *Server) handleSendInvite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.To == uuid.Nil {
		writeError(w, fmt.Errorf("%w: missing invite target", errBadRequest))
		return
	}
	rm, err := s.Rooms.SendInvite(r.Context(), middleware.IdentityFrom(r.Context()), chi.URLParam(r, "code"), req.To)
	s.respond(w, r, http.StatusOK, rm, err)
}

func inviteParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "inviteID"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid invite id", errBadRequest)
	}
	return id, nil
}

func (s *Server) handleAcceptInvite(w http.ResponseWriter, r *http.Request) {
	inviteID, err := inviteParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	rm, err := s.Rooms.AcceptInvite(r.Context(), middleware.IdentityFrom(r.Context()), chi.URLParam(r, "code"), inviteID)
	s.respond(w, r, http.StatusOK, rm, err)
}

func (s *Server) handleDeclineInvite(w http.ResponseWriter, r *http.Request) {
	inviteID, err := inviteParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	rm, err := s.Rooms.DeclineInvite(r.Context(), middleware.IdentityFrom(r.Context()), chi.URLParam(r, "code"), inviteID)
	s.respond(w, r, http.StatusOK, rm, err)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	side, err := models.ParseSide(req.Side)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", room.ErrInvalidSide, err))
		return
	}
	delta := 1
	if req.Delta != nil {
		delta = *req.Delta
	}
	rm, err := s.Rooms.AdjustScore(r.Context(), middleware.IdentityFrom(r.Context()), chi.URLParam(r, "code"), side, delta, req.Match)
	s.respond(w, r, http.StatusOK, rm, err)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	result, err := models.ParseSide(req.Result)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", room.ErrInvalidSide, err))
		return
	}
	rm, err := s.Rooms.VoteResult(r.Context(), middleware.IdentityFrom(r.Context()), chi.URLParam(r, "code"), result, req.Match)
	s.respond(w, r, http.StatusOK, rm, err)
}

func (s *Server) handleRoomHistory(w http.ResponseWriter, r *http.Request) {
	if s.History == nil {
		writeJSON(w, http.StatusNotImplemented, errorResponse{Error: "match history is not configured", Code: "no_history"})
		return
	}
	code, err := room.NormalizeCode(chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, err)
		return
	}
	records, err := s.History(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
