// cmd/server/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/kingcourt/internal/auth"
	"github.com/jason-s-yu/kingcourt/internal/cache"
	"github.com/jason-s-yu/kingcourt/internal/config"
	"github.com/jason-s-yu/kingcourt/internal/database"
	"github.com/jason-s-yu/kingcourt/internal/handlers"
	"github.com/jason-s-yu/kingcourt/internal/metrics"
	"github.com/jason-s-yu/kingcourt/internal/room"
	"github.com/jason-s-yu/kingcourt/internal/store"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	if cfg.Production() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	if err := initAuth(); err != nil {
		logger.Fatalf("auth init: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	stats := metrics.NewMetrics("kingcourt", reg)

	roomStore, sink, history, err := openBackend(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("store init: %v", err)
	}

	ctrl := room.NewController(roomStore, logger)
	ctrl.Stats = stats
	ctrl.MaxRetries = cfg.WriteRetries
	if cfg.RoomRules != "" {
		var overrides map[string]interface{}
		if err := json.Unmarshal([]byte(cfg.RoomRules), &overrides); err != nil {
			logger.Fatalf("ROOM_RULES: %v", err)
		}
		if err := ctrl.Rules.Update(overrides); err != nil {
			logger.Fatalf("ROOM_RULES: %v", err)
		}
		logger.WithField("rules", ctrl.Rules).Info("room rules overridden")
	}
	if sink != nil {
		ctrl.Sink = sink
	}

	srv := handlers.NewServer(ctrl, logger)
	srv.Stats = stats
	srv.Metric = reg
	srv.PublicURL = cfg.PublicURL
	srv.History = history
	if cfg.Production() {
		srv.AllowedOrigins = cfg.AllowedOrigins
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if !cfg.Production() {
		// otherwise bind to localhost
		httpServer.Addr = "localhost:" + cfg.Port
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("shutdown: %v", err)
		}
	}()

	logger.WithFields(logrus.Fields{"addr": httpServer.Addr, "store": cfg.StoreBackend}).Info("kingcourt server listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("server exited: %v", err)
	}
	logger.Info("server stopped")
}

// initAuth loads signing keys from AUTH_PRIVATE_KEY_PATH/AUTH_PUBLIC_KEY_PATH
// when both are set, otherwise generates an ephemeral pair.
func initAuth() error {
	priv, pub := os.Getenv("AUTH_PRIVATE_KEY_PATH"), os.Getenv("AUTH_PUBLIC_KEY_PATH")
	if priv != "" && pub != "" {
		return auth.InitFromPath(priv, pub)
	}
	return auth.Init()
}

// openBackend builds the room store. The postgres backend persists rooms in
// the database, fans snapshots out over Redis and queues decided matches for
// the historian.
func openBackend(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) (store.RoomStore, room.ResultSink, handlers.HistoryFunc, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return store.NewMemoryStore(), nil, nil, nil

	case config.BackendPostgres:
		if err := database.ConnectDB(ctx); err != nil {
			return nil, nil, nil, err
		}
		if err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisDB); err != nil {
			return nil, nil, nil, err
		}
		st := &store.Synced{
			Docs: &database.RoomDocuments{Pool: database.DB},
			Feed: &cache.RoomFeed{Client: cache.Rdb},
		}
		history := func(ctx context.Context, code string) ([]database.PlayerRecord, error) {
			return database.RoomHistory(ctx, database.DB, code)
		}
		logger.WithField("queue", cfg.QueueName).Info("recording match results")
		return st, cache.NewMatchQueue(cache.Rdb, cfg.QueueName), history, nil
	}
	return nil, nil, nil, errors.New("unknown STORE_BACKEND " + cfg.StoreBackend)
}
