package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ActiveSession is the cached view of a user's ongoing session.
type ActiveSession struct {
	SessionID int64     `json:"session_id"`
	UserID    int64     `json:"user_id"`
	AssetID   int64     `json:"asset_id"`
	StartTime time.Time `json:"start_time"`
}

// Store caches the single active session per user for the fast read path.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore returns redis-backed store.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func (s *Store) key(userID int64) string {
	return fmt.Sprintf("sessions:active:user:%d", userID)
}

// Save caches the active session under its user's key.
func (s *Store) Save(ctx context.Context, session ActiveSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(session.UserID), data, s.ttl).Err()
}

// Get returns the cached active session, redis.Nil if absent.
func (s *Store) Get(ctx context.Context, userID int64) (*ActiveSession, error) {
	result, err := s.client.Get(ctx, s.key(userID)).Result()
	if err != nil {
		return nil, err
	}
	var session ActiveSession
	if err := json.Unmarshal([]byte(result), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Delete removes the cached session.
func (s *Store) Delete(ctx context.Context, userID int64) error {
	return s.client.Del(ctx, s.key(userID)).Err()
}
