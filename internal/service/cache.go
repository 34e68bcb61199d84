package service

import (
	"context"

	"github.com/MrSnakeDoc/socialhub/internal/domain"
)

// ProfileCache is an optional read-through cache for public profile reads.
// Cache failures are logged and never fail a request.
type ProfileCache interface {
	GetProfile(ctx context.Context, id uint) (domain.Profile, bool, error)
	SaveProfile(ctx context.Context, p domain.Profile) error
	InvalidateProfile(ctx context.Context, id uint) error
	GetSearch(ctx context.Context, query string) ([]domain.Profile, bool, error)
	SaveSearch(ctx context.Context, query string, profiles []domain.Profile) error
	FlushSearch(ctx context.Context) error
}

// NoopCache is used when Redis is not configured.
type NoopCache struct{}

func (NoopCache) GetProfile(context.Context, uint) (domain.Profile, bool, error) {
	return domain.Profile{}, false, nil
}
func (NoopCache) SaveProfile(context.Context, domain.Profile) error { return nil }
func (NoopCache) InvalidateProfile(context.Context, uint) error    { return nil }
func (NoopCache) GetSearch(context.Context, string) ([]domain.Profile, bool, error) {
	return nil, false, nil
}
func (NoopCache) SaveSearch(context.Context, string, []domain.Profile) error { return nil }
func (NoopCache) FlushSearch(context.Context) error                          { return nil }
