package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/playperu/bollyquiz/internal/game"
	"github.com/playperu/bollyquiz/internal/metrics"
)

var ErrNotFound = errors.New("not found")

// Reasons a game leaves the registry.
const (
	reasonCompleted = "completed"
	reasonAbandoned = "abandoned"
	reasonExpired   = "expired"
)

type entry struct {
	session  *game.Session
	lastSeen time.Time
}

// Registry holds the games in play, keyed by a random UUID. Games never
// outlive the process.
type Registry struct {
	mu    sync.RWMutex
	games map[string]*entry

	broker  *Broker
	metrics *metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

func NewRegistry(logger *slog.Logger, broker *Broker, rec *metrics.Recorder) *Registry {
	return &Registry{
		games:   make(map[string]*entry),
		broker:  broker,
		metrics: rec,
		logger:  logger,
		now:     time.Now,
	}
}

// Create allocates an id, builds the session with it and registers it.
func (r *Registry) Create(build func(id string) (*game.Session, error)) (string, *game.Session, error) {
	id := uuid.NewString()
	s, err := build(id)
	if err != nil {
		return "", nil, err
	}

	r.mu.Lock()
	r.games[id] = &entry{session: s, lastSeen: r.now()}
	r.mu.Unlock()

	r.metrics.GameStarted()
	r.logger.Info("game created", "game_id", id)
	return id, s, nil
}

// Get returns the session and marks it as recently used.
func (r *Registry) Get(id string) (*game.Session, error) {
	r.mu.RLock()
	e, ok := r.games[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	r.mu.Lock()
	e.lastSeen = r.now()
	r.mu.Unlock()
	return e.session, nil
}

// Remove closes the session and drops it along with its subscribers.
func (r *Registry) Remove(id, reason string) error {
	r.mu.Lock()
	e, ok := r.games[id]
	delete(r.games, id)
	r.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	e.session.Close()
	r.broker.CloseTopic(id)
	r.metrics.GameFinished(reason)
	r.logger.Info("game removed", "game_id", id, "reason", reason)
	return nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

// Reap removes every game idle for longer than ttl and returns the ids it
// removed.
func (r *Registry) Reap(ttl time.Duration) []string {
	cutoff := r.now().Add(-ttl)

	r.mu.RLock()
	var expired []string
	for id, e := range r.games {
		if e.lastSeen.Before(cutoff) {
			expired = append(expired, id)
		}
	}
	r.mu.RUnlock()

	reaped := expired[:0]
	for _, id := range expired {
		// A concurrent DELETE may have removed it already.
		if err := r.Remove(id, reasonExpired); err != nil {
			continue
		}
		reaped = append(reaped, id)
	}
	return reaped
}

// RunReaper reaps idle games until ctx ends.
func (r *Registry) RunReaper(ctx context.Context, ttl time.Duration) error {
	interval := min(ttl/4, time.Minute)
	if interval <= 0 {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if ids := r.Reap(ttl); len(ids) > 0 {
				r.logger.Info("reaped idle games", "count", len(ids))
			}
		}
	}
}

// Close tears down every game.
func (r *Registry) Close() {
	r.mu.RLock()
	ids := make([]string, 0, len(r.games))
	for id := range r.games {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	for _, id := range ids {
		r.Remove(id, reasonAbandoned)
	}
}
