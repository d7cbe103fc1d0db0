// internal/handlers/server.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jason-s-yu/kingcourt/internal/database"
	"github.com/jason-s-yu/kingcourt/internal/metrics"
	"github.com/jason-s-yu/kingcourt/internal/middleware"
	"github.com/jason-s-yu/kingcourt/internal/room"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// HistoryFunc loads the recorded per-player history of a room.
type HistoryFunc func(ctx context.Context, code string) ([]database.PlayerRecord, error)

// Server exposes the room controller over HTTP and websockets.
type Server struct {
	Rooms  *room.Controller
	Log    logrus.FieldLogger
	Stats  *metrics.Metrics
	Metric prometheus.Gatherer

	// PublicURL prefixes join links encoded in room QR codes.
	PublicURL      string
	AllowedOrigins []string
	// History is nil when no database is configured.
	History HistoryFunc
	// PingInterval is how often idle websocket subscribers are pinged.
	PingInterval time.Duration
}

// NewServer returns a server with default websocket timings.
func NewServer(rooms *room.Controller, logger logrus.FieldLogger) *Server {
	return &Server{
		Rooms:        rooms,
		Log:          logger,
		PingInterval: 30 * time.Second,
	}
}

// Router builds the chi router with all middleware and routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.Heartbeat("/ping"))

	origins := s.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"https://*", "http://*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Authenticate(s.Log))
	r.Use(middleware.LogMiddleware(s.Log))

	if s.Metric != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.Metric, promhttp.HandlerOpts{}))
	}

	r.Route("/session", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Get("/", s.handleGetSession)
	})

	r.Route("/rooms", func(r chi.Router) {
		r.Post("/", s.handleCreateRoom)
		r.Route("/{code}", func(r chi.Router) {
			r.Get("/", s.handleGetRoom)
			r.Get("/ws", s.handleRoomWS)
			r.Get("/qr", s.handleRoomQR)
			r.Get("/history", s.handleRoomHistory)
			r.Post("/join", s.handleJoin)
			r.Post("/leave", s.handleLeave)
			r.Post("/start", s.handleStart)
			r.Post("/invites", s.handleSendInvite)
			r.Post("/invites/{inviteID}/accept", s.handleAcceptInvite)
			r.Post("/invites/{inviteID}/decline", s.handleDeclineInvite)
			r.Post("/score", s.handleScore)
			r.Post("/vote", s.handleVote)
		})
	})
	return r
}
