// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jason-s-yu/kingcourt/internal/models"
	"github.com/redis/go-redis/v9"
)

// Rdb is the global Redis client. Connect it once at application startup.
var Rdb *redis.Client

// DefaultQueueName is the Redis list (queue) the historian drains.
var DefaultQueueName = "kingcourt_matches"

// ConnectRedis initializes the global Redis client and pings it.
func ConnectRedis(addr string, db int) error {
	Rdb = redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return nil
}

// MatchQueue carries decided matches from the server to the historian.
type MatchQueue struct {
	Client *redis.Client
	Name   string
}

// NewMatchQueue returns a queue on client; an empty name selects DefaultQueueName.
func NewMatchQueue(client *redis.Client, name string) *MatchQueue {
	if name == "" {
		name = DefaultQueueName
	}
	return &MatchQueue{Client: client, Name: name}
}

// RecordMatch serializes the result to JSON and pushes it to the tail of the queue.
func (q *MatchQueue) RecordMatch(ctx context.Context, result models.MatchResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal MatchResult: %w", err)
	}
	if err := q.Client.RPush(ctx, q.Name, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", q.Name, err)
	}
	return nil
}

// Pop blocks up to timeout for the next result. It returns nil, nil when the
// wait timed out.
func (q *MatchQueue) Pop(ctx context.Context, timeout time.Duration) (*models.MatchResult, error) {
	res, err := q.Client.BLPop(ctx, timeout, q.Name).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("BLPop %s: %w", q.Name, err)
	}
	// res[0] is the queue name and res[1] the payload.
	if len(res) < 2 {
		return nil, nil
	}
	var result models.MatchResult
	if err := json.Unmarshal([]byte(res[1]), &result); err != nil {
		return nil, fmt.Errorf("invalid match record: %w", err)
	}
	return &result, nil
}
