package handlers

import (
	"net/http"

	"github.com/jason-s-yu/kingcourt/internal/auth"
	"github.com/jason-s-yu/kingcourt/internal/middleware"
	"github.com/jason-s-yu/kingcourt/internal/room"
)

type createSessionRequest struct {
	Name string `json:"name"`
}

type sessionResponse struct {
	Token    string        `json:"token,omitempty"`
	Identity auth.Identity `json:"identity"`
}

// handleCreateSession issues a guest identity and sets the auth cookie.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	id := auth.NewGuest(req.Name)
	token, err := auth.CreateJWT(id)
	if err != nil {
		writeError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookie,
		Value:    token,
		HttpOnly: true,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, Identity: id})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFrom(r.Context())
	if id.Empty() {
		writeError(w, room.ErrNotAuthenticated)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Identity: id})
}
