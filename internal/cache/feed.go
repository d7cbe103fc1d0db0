package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jason-s-yu/kingcourt/internal/models"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// RoomFeed fans room snapshots out to every server instance over Redis pub/sub.
type RoomFeed struct {
	Client *redis.Client
}

func roomChannel(code string) string {
	return "room:" + code
}

// Publish broadcasts a snapshot to the room's channel.
func (f *RoomFeed) Publish(ctx context.Context, room *models.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room %s: %w", room.Code, err)
	}
	return f.Client.Publish(ctx, roomChannel(room.Code), data).Err()
}

// Subscribe streams snapshots published for code until ctx is done. Snapshots
// older than one already delivered are skipped.
func (f *RoomFeed) Subscribe(ctx context.Context, code string) (<-chan *models.Room, error) {
	ps := f.Client.Subscribe(ctx, roomChannel(code))
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", code, err)
	}

	out := make(chan *models.Room, 16)
	go func() {
		defer close(out)
		defer ps.Close()

		var last int64
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var room models.Room
				if err := json.Unmarshal([]byte(msg.Payload), &room); err != nil {
					log.WithField("room", code).Warnf("invalid snapshot on feed: %v", err)
					continue
				}
				if room.Version <= last {
					continue
				}
				last = room.Version
				room.Normalize()
				select {
				case out <- &room:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
