package room

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/kingcourt/internal/auth"
	"github.com/jason-s-yu/kingcourt/internal/metrics"
	"github.com/jason-s-yu/kingcourt/internal/models"
	"github.com/jason-s-yu/kingcourt/internal/store"
	"github.com/sirupsen/logrus"
)

// ResultSink receives every decided match after it has been persisted.
type ResultSink interface {
	RecordMatch(ctx context.Context, result models.MatchResult) error
}

// Controller runs room commands against a RoomStore. Each command reads a
// snapshot, computes a Tx on a copy and writes it conditionally on the version
// it read, re-reading and recomputing when another writer got there first.
type Controller struct {
	Store store.RoomStore
	Log   logrus.FieldLogger
	Rules Rules
	Now   func() time.Time
	Sink  ResultSink
	Stats *metrics.Metrics
	// MaxRetries bounds how many times a conflicting write is recomputed.
	MaxRetries int

	randMu sync.Mutex
	rng    *rand.Rand
}

// NewController returns a controller with default rules and a time-seeded rng.
func NewController(st store.RoomStore, logger logrus.FieldLogger) *Controller {
	return &Controller{
		Store:      st,
		Log:        logger,
		Rules:      DefaultRules(),
		Now:        time.Now,
		MaxRetries: 5,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Seed makes shuffles and room codes reproducible.
func (c *Controller) Seed(seed int64) {
	c.randMu.Lock()
	defer c.randMu.Unlock()
	c.rng = rand.New(rand.NewSource(seed))
}

func (c *Controller) newRand() *rand.Rand {
	c.randMu.Lock()
	defer c.randMu.Unlock()
	return rand.New(rand.NewSource(c.rng.Int63()))
}

func (c *Controller) newTx(r *models.Room) *Tx {
	return &Tx{Room: r, Rules: c.Rules, Now: c.Now(), Rand: c.newRand()}
}

// mutate is the optimistic concurrency loop shared by every command.
func (c *Controller) mutate(ctx context.Context, command, rawCode string, fn func(tx *Tx) error) (room *models.Room, err error) {
	defer func() { c.Stats.ObserveCommand(command, err) }()

	code, err := NormalizeCode(rawCode)
	if err != nil {
		return nil, err
	}
	logger := c.Log.WithFields(logrus.Fields{"room": code, "command": command})

	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		snap, err := c.Store.Read(ctx, code)
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, code)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read room %s: %w", code, err)
		}
		snap.Normalize()

		tx := c.newTx(snap.Clone())
		if err := fn(tx); err != nil {
			logger.WithField("version", snap.Version).Debugf("transition rejected: %v", err)
			return nil, err
		}

		saved, err := c.Store.Update(ctx, tx.Room, snap.Version)
		if errors.Is(err, store.ErrVersionConflict) {
			c.Stats.IncWriteConflict()
			logger.WithFields(logrus.Fields{"version": snap.Version, "attempt": attempt}).Info("version conflict, recomputing")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to write room %s: %w", code, err)
		}

		c.recordResults(ctx, logger, tx.Decided)
		return saved, nil
	}
	return nil, fmt.Errorf("%w: %s after %d attempts", ErrWriteConflict, code, c.MaxRetries+1)
}

func (c *Controller) recordResults(ctx context.Context, logger logrus.FieldLogger, results []models.MatchResult) {
	for _, res := range results {
		c.Stats.IncMatchDecided(string(res.DecidedBy))
		logger.WithFields(logrus.Fields{
			"match":      res.MatchNumber,
			"winner":     res.Winner,
			"decided_by": res.DecidedBy,
		}).Info("match decided")
		if c.Sink == nil {
			continue
		}
		if err := c.Sink.RecordMatch(ctx, res); err != nil {
			logger.Warnf("failed to record match %d: %v", res.MatchNumber, err)
		}
	}
}

func requireIdentity(id auth.Identity) error {
	if id.Empty() {
		return ErrNotAuthenticated
	}
	return nil
}

func requireMember(r *models.Room, id auth.Identity) error {
	if _, ok := r.Players[id.PlayerID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotInRoom, id.PlayerID)
	}
	return nil
}

func requireMatch(r *models.Room, matchNumber int) error {
	if r.Match == nil {
		return ErrNoMatch
	}
	if matchNumber != 0 && matchNumber != r.Match.Number {
		return fmt.Errorf("%w: match %d, current %d", ErrMatchDecided, matchNumber, r.Match.Number)
	}
	return nil
}

// CreateRoom opens a lobby hosted by id under a fresh code.
func (c *Controller) CreateRoom(ctx context.Context, id auth.Identity) (room *models.Room, err error) {
	defer func() { c.Stats.ObserveCommand("create", err) }()
	if err := requireIdentity(id); err != nil {
		return nil, err
	}

	rng := c.newRand()
	for attempt := 0; attempt < 10; attempt++ {
		now := c.Now()
		r := models.NewRoom(GenerateCode(rng), id.PlayerID, now.UnixMilli())
		tx := &Tx{Room: r, Rules: c.Rules, Now: now, Rand: rng}
		tx.Join(id)

		saved, err := c.Store.Create(ctx, r)
		if errors.Is(err, store.ErrExists) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create room: %w", err)
		}
		c.Stats.IncRoomsCreated()
		c.Log.WithFields(logrus.Fields{"room": saved.Code, "host": id.PlayerID}).Info("room created")
		return saved, nil
	}
	return nil, errors.New("failed to allocate a free room code")
}

// Room returns the latest snapshot.
func (c *Controller) Room(ctx context.Context, rawCode string) (*models.Room, error) {
	code, err := NormalizeCode(rawCode)
	if err != nil {
		return nil, err
	}
	r, err := c.Store.Read(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, code)
	}
	if err != nil {
		return nil, err
	}
	r.Normalize()
	return r, nil
}

// Subscribe streams snapshots of the room until ctx ends.
func (c *Controller) Subscribe(ctx context.Context, rawCode string) (<-chan *models.Room, error) {
	code, err := NormalizeCode(rawCode)
	if err != nil {
		return nil, err
	}
	ch, err := c.Store.Subscribe(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, code)
	}
	return ch, err
}

func (c *Controller) JoinRoom(ctx context.Context, id auth.Identity, code string) (*models.Room, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	return c.mutate(ctx, "join", code, func(tx *Tx) error {
		tx.Join(id)
		return nil
	})
}

func (c *Controller) LeaveRoom(ctx context.Context, id auth.Identity, code string) (*models.Room, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	return c.mutate(ctx, "leave", code, func(tx *Tx) error {
		return tx.Leave(id.PlayerID)
	})
}

func (c *Controller) SendInvite(ctx context.Context, id auth.Identity, code string, to uuid.UUID) (*models.Room, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	return c.mutate(ctx, "send_invite", code, func(tx *Tx) error {
		_, err := tx.SendInvite(id.PlayerID, to)
		return err
	})
}

func (c *Controller) AcceptInvite(ctx context.Context, id auth.Identity, code string, inviteID uuid.UUID) (*models.Room, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	return c.mutate(ctx, "accept_invite", code, func(tx *Tx) error {
		_, err := tx.AcceptInvite(id.PlayerID, inviteID)
		return err
	})
}

func (c *Controller) DeclineInvite(ctx context.Context, id auth.Identity, code string, inviteID uuid.UUID) (*models.Room, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	return c.mutate(ctx, "decline_invite", code, func(tx *Tx) error {
		return tx.DeclineInvite(id.PlayerID, inviteID)
	})
}

func (c *Controller) StartGame(ctx context.Context, id auth.Identity, code string) (*models.Room, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	return c.mutate(ctx, "start", code, func(tx *Tx) error {
		return tx.Start(id.PlayerID)
	})
}

// AdjustScore applies delta to side. matchNumber pins the command to a match;
// 0 targets whatever match is current.
func (c *Controller) AdjustScore(ctx context.Context, id auth.Identity, code string, side models.Side, delta, matchNumber int) (*models.Room, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	return c.mutate(ctx, "score", code, func(tx *Tx) error {
		if err := requireMember(tx.Room, id); err != nil {
			return err
		}
		if err := requireMatch(tx.Room, matchNumber); err != nil {
			return err
		}
		return tx.AdjustScore(side, delta)
	})
}

// VoteResult casts id's vote on the outcome of the match. See AdjustScore for matchNumber.
func (c *Controller) VoteResult(ctx context.Context, id auth.Identity, code string, result models.Side, matchNumber int) (*models.Room, error) {
	if err := requireIdentity(id); err != nil {
		return nil, err
	}
	return c.mutate(ctx, "vote", code, func(tx *Tx) error {
		if err := requireMatch(tx.Room, matchNumber); err != nil {
			return err
		}
		_, err := tx.CastVote(id.PlayerID, result)
		return err
	})
}
