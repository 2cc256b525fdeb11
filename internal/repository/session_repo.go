package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"internship_portal/internal/model"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix     = "portal:session:"       // portal:session:{session_id} -> session JSON
	userSessionSetPrefix = "portal:user_sessions:" // portal:user_sessions:{user_id} -> set of session IDs
)

// SessionRepository stores the server-side half of issued tokens
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	Get(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID int64) error
}

type sessionRepository struct {
	client  *redis.Client
	timeout time.Duration
}

// NewSessionRepository creates a new Redis-backed SessionRepository
func NewSessionRepository(client *redis.Client, timeout time.Duration) SessionRepository {
	return &sessionRepository{client: client, timeout: timeout}
}

func (r *sessionRepository) sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (r *sessionRepository) userSessionSetKey(userID int64) string {
	return fmt.Sprintf("%s%d", userSessionSetPrefix, userID)
}

// Create stores a session until its ExpiresAt
func (r *sessionRepository) Create(ctx context.Context, s *model.Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", s.ID)
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	setKey := r.userSessionSetKey(s.UserID)
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.sessionKey(s.ID), data, ttl)
	pipe.SAdd(ctx, setKey, s.ID)
	pipe.Expire(ctx, setKey, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return wrapRedisErr("failed to create session", err)
	}
	return nil
}

// Get loads a session; an unknown or expired ID yields ErrNotFound
func (r *sessionRepository) Get(ctx context.Context, id string) (*model.Session, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	data, err := r.client.Get(ctx, r.sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapRedisErr("failed to get session", err)
	}

	var s model.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

// Delete removes a session. Deleting an unknown ID is not an error.
func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	s, err := r.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.sessionKey(id))
	pipe.SRem(ctx, r.userSessionSetKey(s.UserID), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return wrapRedisErr("failed to delete session", err)
	}
	return nil
}

// DeleteByUser drops every session a user holds
func (r *sessionRepository) DeleteByUser(ctx context.Context, userID int64) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	setKey := r.userSessionSetKey(userID)
	ids, err := r.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return wrapRedisErr("failed to list user sessions", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, r.sessionKey(id))
	}
	keys = append(keys, setKey)
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return wrapRedisErr("failed to delete user sessions", err)
	}
	return nil
}

func wrapRedisErr(op string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%s: %w: %w", op, ErrTimeout, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
