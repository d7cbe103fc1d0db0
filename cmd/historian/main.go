// cmd/historian is an asynchronous worker that pops decided matches from the
// Redis queue and persists them to PostgreSQL.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/kingcourt/internal/cache"
	"github.com/jason-s-yu/kingcourt/internal/config"
	"github.com/jason-s-yu/kingcourt/internal/database"
	"github.com/jason-s-yu/kingcourt/internal/historian"
	"github.com/jason-s-yu/kingcourt/internal/models"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	logger := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.ConnectDB(ctx); err != nil {
		logger.Fatalf("database: %v", err)
	}
	defer database.DB.Close()
	if err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisDB); err != nil {
		logger.Fatalf("redis: %v", err)
	}
	defer cache.Rdb.Close()

	write := func(ctx context.Context, batch []models.MatchResult) error {
		return database.InsertMatchResults(ctx, database.DB, batch)
	}
	svc := historian.NewService(cache.NewMatchQueue(cache.Rdb, cfg.QueueName), write, logger.WithField("queue", cfg.QueueName))
	if cfg.BatchSize > 0 {
		svc.BatchSize = cfg.BatchSize
	} else {
		logger.Warnf("ignoring HISTORIAN_BATCH_SIZE=%d", cfg.BatchSize)
	}
	if cfg.FlushMs > 0 {
		svc.FlushDelay = time.Duration(cfg.FlushMs) * time.Millisecond
	} else {
		logger.Warnf("ignoring HISTORIAN_FLUSH_MS=%d", cfg.FlushMs)
	}

	svc.Run(ctx)
	logger.Info("historian shutdown complete")
}
