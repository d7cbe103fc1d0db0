package store

import (
	"context"

	"github.com/jason-s-yu/kingcourt/internal/models"
	log "github.com/sirupsen/logrus"
)

// Documents is the persistence half of a RoomStore.
type Documents interface {
	Create(ctx context.Context, room *models.Room) (*models.Room, error)
	Read(ctx context.Context, code string) (*models.Room, error)
	Update(ctx context.Context, room *models.Room, expectedVersion int64) (*models.Room, error)
}

// Synced joins a document store with a feed: every successful write is
// published, and subscriptions are served by the feed.
type Synced struct {
	Docs Documents
	Feed Feed
}

func (s *Synced) Create(ctx context.Context, room *models.Room) (*models.Room, error) {
	saved, err := s.Docs.Create(ctx, room)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, saved)
	return saved, nil
}

func (s *Synced) Read(ctx context.Context, code string) (*models.Room, error) {
	return s.Docs.Read(ctx, code)
}

func (s *Synced) Update(ctx context.Context, room *models.Room, expectedVersion int64) (*models.Room, error) {
	saved, err := s.Docs.Update(ctx, room, expectedVersion)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, saved)
	return saved, nil
}

func (s *Synced) Subscribe(ctx context.Context, code string) (<-chan *models.Room, error) {
	if _, err := s.Docs.Read(ctx, code); err != nil {
		return nil, err
	}
	return s.Feed.Subscribe(ctx, code)
}

// publish failures are logged only; the write itself is already durable and
// subscribers resync on the next snapshot.
func (s *Synced) publish(ctx context.Context, room *models.Room) {
	if err := s.Feed.Publish(ctx, room); err != nil {
		log.WithFields(log.Fields{"room": room.Code, "version": room.Version}).
			Warnf("failed to publish snapshot: %v", err)
	}
}
