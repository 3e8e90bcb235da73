// Package redis stores sign-up sessions in Redis so several service replicas
// can share journey state.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/flood-area-service/internal/domain"
	"github.com/couchcryptid/flood-area-service/internal/session"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "flood-areas:session:"

// commands is the subset of the Redis client the store uses.
type commands interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
	Ping(ctx context.Context) *goredis.StatusCmd
}

// Store implements session.Store on top of Redis. Each session is a JSON
// string whose key expires ttl after the last save.
type Store struct {
	client commands
	ttl    time.Duration
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewClient opens a Redis client for addr.
func NewClient(addr string) *goredis.Client {
	return goredis.NewClient(&goredis.Options{Addr: addr})
}

// NewStore wraps a Redis client. A nil clock uses real time.
func NewStore(client commands, ttl time.Duration, clock clockwork.Clock, logger *slog.Logger) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{client: client, ttl: ttl, clock: clock, logger: logger}
}

func (s *Store) Create(ctx context.Context) (*session.Session, error) {
	sess := session.New(s.clock.Now().UTC())
	if err := s.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Store) Get(ctx context.Context, id string) (*session.Session, error) {
	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("session %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		s.logger.Warn("session load failed", "session_id", id, "error", err)
		return nil, fmt.Errorf("load session %q: %w", id, err)
	}

	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session %q: %w", id, err)
	}
	return &sess, nil
}

func (s *Store) Save(ctx context.Context, sess *session.Session) error {
	sess.UpdatedAt = s.clock.Now().UTC()

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session %q: %w", sess.ID, err)
	}
	if err := s.client.Set(ctx, keyPrefix+sess.ID, data, s.ttl).Err(); err != nil {
		s.logger.Warn("session save failed", "session_id", sess.ID, "error", err)
		return fmt.Errorf("save session %q: %w", sess.ID, err)
	}
	return nil
}

// Ping reports whether Redis answers, for readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
