package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/socialhub/internal/domain"
)

// GetProfile returns a cached profile. ok is false on a cache miss.
// Cached profiles never carry the password hash.
func (s *Store) GetProfile(ctx context.Context, id uint) (p domain.Profile, ok bool, err error) {
	data, err := s.client.Get(ctx, ProfileKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Profile{}, false, nil // Cache miss
		}
		return domain.Profile{}, false, fmt.Errorf("failed to get cached profile: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return domain.Profile{}, false, fmt.Errorf("failed to unmarshal cached profile: %w", err)
	}
	return p, true, nil
}

// SaveProfile caches p under its ID
func (s *Store) SaveProfile(ctx context.Context, p domain.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile %d: %w", p.ID, err)
	}
	if err := s.client.Set(ctx, ProfileKey(p.ID), data, s.profileTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache profile: %w", err)
	}
	return nil
}

// InvalidateProfile drops the cached profile for id
func (s *Store) InvalidateProfile(ctx context.Context, id uint) error {
	if err := s.client.Del(ctx, ProfileKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate profile: %w", err)
	}
	return nil
}

// GetSearch returns cached search results for query. ok is false on a miss.
func (s *Store) GetSearch(ctx context.Context, query string) (profiles []domain.Profile, ok bool, err error) {
	data, err := s.client.Get(ctx, SearchKey(query)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cached search: %w", err)
	}
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached search: %w", err)
	}
	return profiles, true, nil
}

// SaveSearch caches the ranked results of query
func (s *Store) SaveSearch(ctx context.Context, query string, profiles []domain.Profile) error {
	data, err := json.Marshal(profiles)
	if err != nil {
		return fmt.Errorf("failed to marshal search results: %w", err)
	}
	if err := s.client.Set(ctx, SearchKey(query), data, s.searchTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache search: %w", err)
	}
	return nil
}

// FlushSearch removes all cached search results. Any profile write can change
// the ranking of any query, so the whole prefix goes.
func (s *Store) FlushSearch(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, KeyPrefixSearch+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete search key: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to flush search cache: %w", err)
	}
	return nil
}
