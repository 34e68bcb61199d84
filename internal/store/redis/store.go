package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultProfileTTL is used when a zero profile TTL is configured
	DefaultProfileTTL = 10 * time.Minute
	// DefaultSearchTTL is used when a zero search TTL is configured
	DefaultSearchTTL = time.Minute
)

// Store is a read-through cache for profile lookups and search results.
// The relational store stays the source of truth; every entry expires.
type Store struct {
	client     *redis.Client
	profileTTL time.Duration
	searchTTL  time.Duration
}

// NewStore creates a new Redis cache store
func NewStore(client *redis.Client, profileTTL, searchTTL time.Duration) *Store {
	if profileTTL <= 0 {
		profileTTL = DefaultProfileTTL
	}
	if searchTTL <= 0 {
		searchTTL = DefaultSearchTTL
	}
	return &Store{
		client:     client,
		profileTTL: profileTTL,
		searchTTL:  searchTTL,
	}
}

// Ping checks the connection, used by the readiness probe
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
