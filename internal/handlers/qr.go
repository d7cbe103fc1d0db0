package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	defaultQRSize = 256
	maxQRSize     = 1024
)

// JoinURL is the link players scan to open a room.
func (s *Server) JoinURL(code string) string {
	return fmt.Sprintf("%s/join/%s", s.PublicURL, code)
}

// handleRoomQR renders the room's join link as a PNG QR code.
func (s *Server) handleRoomQR(w http.ResponseWriter, r *http.Request) {
	rm, err := s.Rooms.Room(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, err)
		return
	}

	size := defaultQRSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 64 || n > maxQRSize {
			writeError(w, fmt.Errorf("%w: size must be between 64 and %d", errBadRequest, maxQRSize))
			return
		}
		size = n
	}

	png, err := qrcode.Encode(s.JoinURL(rm.Code), qrcode.Medium, size)
	if err != nil {
		writeError(w, fmt.Errorf("encode qr for %s: %w", rm.Code, err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(png)
}
