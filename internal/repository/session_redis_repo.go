package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jcarlosmelian/promtscp/internal/session"
)

const defaultSessionKeyPrefix = "promtscp:session:"

type redisSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisSessionRepository stores sessions as JSON documents that expire
// after ttl of inactivity.
func NewRedisSessionRepository(client *redis.Client, ttl time.Duration, prefix string) SessionRepository {
	if prefix == "" {
		prefix = defaultSessionKeyPrefix
	}
	return &redisSessionRepository{client: client, ttl: ttl, prefix: prefix}
}

func (r *redisSessionRepository) key(id string) string {
	return r.prefix + id
}

func (r *redisSessionRepository) Get(ctx context.Context, id string) (*session.State, error) {
	payload, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}

	var state session.State
	if err := json.Unmarshal(payload, &state); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &state, nil
}

func (r *redisSessionRepository) Save(ctx context.Context, state *session.State) error {
	if state == nil || state.ID == "" {
		return errors.New("session state requires an id")
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", state.ID, err)
	}
	if err := r.client.Set(ctx, r.key(state.ID), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("store session %s: %w", state.ID, err)
	}
	return nil
}

func (r *redisSessionRepository) Delete(ctx context.Context, id string) error {
	removed, err := r.client.Del(ctx, r.key(id)).Result()
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if removed == 0 {
		return ErrNotFound
	}
	return nil
}
