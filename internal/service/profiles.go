package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/MrSnakeDoc/socialhub/internal/auth"
	"github.com/MrSnakeDoc/socialhub/internal/domain"
	"github.com/MrSnakeDoc/socialhub/internal/logger"
	"github.com/MrSnakeDoc/socialhub/internal/metrics"
	"github.com/MrSnakeDoc/socialhub/internal/store/sqlstore"
)

const (
	DefaultPageSize    = 10
	DefaultSearchLimit = 50
)

// RegisterInput is the payload of a registration.
type RegisterInput struct {
	Username  string `json:"username" validate:"required,min=3,max=32,excludesall= @"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"firstName" validate:"max=64"`
	LastName  string `json:"lastName" validate:"max=64"`
	ImgURL    string `json:"imgurl" validate:"omitempty,url,max=512"`
}

// UpdateInput lists the profile fields a caller may change. Nil fields keep
// their stored value.
type UpdateInput struct {
	Username  *string `json:"username" validate:"omitempty,min=3,max=32,excludesall= @"`
	Email     *string `json:"email" validate:"omitempty,email,max=254"`
	Password  *string `json:"password" validate:"omitempty,min=8,max=72"`
	FirstName *string `json:"firstName" validate:"omitempty,max=64"`
	LastName  *string `json:"lastName" validate:"omitempty,max=64"`
	ImgURL    *string `json:"imgurl" validate:"omitempty,url,max=512"`
}

type ProfileOptions struct {
	BcryptCost  int
	PageSize    int
	SearchLimit int
}

// ProfileService is the profile directory: registration, login, lookups,
// updates and the follow-set.
type ProfileService struct {
	profiles ProfileStore
	codec    *auth.Codec
	cache    ProfileCache
	metrics  *metrics.Metrics
	log      logger.Logger

	bcryptCost  int
	pageSize    int
	searchLimit int
}

func NewProfileService(profiles ProfileStore, codec *auth.Codec, cache ProfileCache, m *metrics.Metrics, log logger.Logger, opts ProfileOptions) *ProfileService {
	if cache == nil {
		cache = NoopCache{}
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = DefaultSearchLimit
	}
	return &ProfileService{
		profiles:    profiles,
		codec:       codec,
		cache:       cache,
		metrics:     m,
		log:         log.Named("profiles"),
		bcryptCost:  opts.BcryptCost,
		pageSize:    opts.PageSize,
		searchLimit: opts.SearchLimit,
	}
}

// Login checks credentials and returns the profile with a fresh token. Unknown
// logins and wrong passwords are indistinguishable to the caller.
func (s *ProfileService) Login(ctx context.Context, login, password string) (domain.Profile, string, error) {
	if strings.TrimSpace(login) == "" || password == "" {
		s.metrics.Login("invalid")
		return domain.Profile{}, "", fmt.Errorf("%w: username and password are required", domain.ErrValidation)
	}

	p, err := s.profiles.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.metrics.Login("unknown_user")
			return domain.Profile{}, "", domain.ErrUnauthenticated
		}
		return domain.Profile{}, "", internal(s.log, "login", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(p.Passkey), []byte(password)); err != nil {
		s.metrics.Login("bad_password")
		return domain.Profile{}, "", domain.ErrUnauthenticated
	}

	token, err := s.issue(p)
	if err != nil {
		return domain.Profile{}, "", err
	}
	s.metrics.Login("ok")
	return p, token, nil
}

// Register creates a profile and returns it with its first token.
func (s *ProfileService) Register(ctx context.Context, in RegisterInput) (domain.Profile, string, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	if err := validateInput(in); err != nil {
		return domain.Profile{}, "", err
	}

	// The unique index is the real guard; this only gives the common case a
	// clear message.
	if _, err := s.profiles.FindByEmail(ctx, in.Email); err == nil {
		return domain.Profile{}, "", fmt.Errorf("%w: email already registered", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Profile{}, "", internal(s.log, "register", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return domain.Profile{}, "", internal(s.log, "hash password", err)
	}

	p := domain.Profile{
		Username:  in.Username,
		Email:     in.Email,
		Passkey:   string(hash),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		ImgURL:    in.ImgURL,
	}
	if err := s.profiles.Create(ctx, &p); err != nil {
		return domain.Profile{}, "", passthrough(s.log, "register", err)
	}
	if p.IsIncomplete() {
		s.log.Error("profile_incomplete_after_create", logger.Uint("profile_id", p.ID))
		return domain.Profile{}, "", fmt.Errorf("%w: stored profile is incomplete", domain.ErrInternal)
	}

	token, err := s.issue(p)
	if err != nil {
		return domain.Profile{}, "", err
	}
	s.flushSearch(ctx)
	s.metrics.Registered()
	s.log.Info("profile_registered", logger.Uint("profile_id", p.ID))
	return p, token, nil
}

// GetByID returns a profile for public display. Results may come from cache
// and then carry no password hash.
func (s *ProfileService) GetByID(ctx context.Context, id uint) (domain.Profile, error) {
	if p, ok, err := s.cache.GetProfile(ctx, id); err != nil {
		s.log.Warn("cache_read_failed", logger.Uint("profile_id", id), logger.Error(err))
	} else if ok {
		return p, nil
	}

	p, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return domain.Profile{}, passthrough(s.log, "get profile", err)
	}
	if err := s.cache.SaveProfile(ctx, p); err != nil {
		s.log.Warn("cache_write_failed", logger.Uint("profile_id", id), logger.Error(err))
	}
	return p, nil
}

func (s *ProfileService) GetByEmail(ctx context.Context, email string) (domain.Profile, error) {
	p, err := s.profiles.FindByEmail(ctx, email)
	if err != nil {
		return domain.Profile{}, passthrough(s.log, "get profile by email", err)
	}
	return p, nil
}

// Update changes the caller's own profile and returns it with a refreshed
// token, since the token embeds the changed fields.
func (s *ProfileService) Update(ctx context.Context, callerID uint, in UpdateInput) (domain.Profile, string, error) {
	if in.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*in.Email))
		in.Email = &e
	}
	if in.Username != nil {
		u := strings.TrimSpace(*in.Username)
		in.Username = &u
	}
	if err := validateInput(in); err != nil {
		return domain.Profile{}, "", err
	}

	upd := sqlstore.ProfileUpdate{
		Username:  in.Username,
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		ImgURL:    in.ImgURL,
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.bcryptCost)
		if err != nil {
			return domain.Profile{}, "", internal(s.log, "hash password", err)
		}
		h := string(hash)
		upd.Passkey = &h
	}

	if err := s.profiles.Update(ctx, callerID, upd); err != nil {
		return domain.Profile{}, "", passthrough(s.log, "update profile", err)
	}
	return s.refreshed(ctx, callerID)
}

// Follow adds the profile registered under email to the caller's follow-set.
func (s *ProfileService) Follow(ctx context.Context, callerID uint, email string) (domain.Profile, string, error) {
	target, err := s.profiles.FindByEmail(ctx, email)
	if err != nil {
		return domain.Profile{}, "", passthrough(s.log, "follow", err)
	}
	if err := s.profiles.Follow(ctx, callerID, target.ID); err != nil {
		if errors.Is(err, domain.ErrRejected) {
			return domain.Profile{}, "", fmt.Errorf("%w: caller profile does not exist", domain.ErrNotFound)
		}
		return domain.Profile{}, "", passthrough(s.log, "follow", err)
	}
	return s.refreshed(ctx, callerID)
}

// Unfollow removes the profile registered under email from the follow-set.
// Unfollowing someone not followed is ErrNotFound.
func (s *ProfileService) Unfollow(ctx context.Context, callerID uint, email string) (domain.Profile, string, error) {
	target, err := s.profiles.FindByEmail(ctx, email)
	if err != nil {
		return domain.Profile{}, "", passthrough(s.log, "unfollow", err)
	}
	removed, err := s.profiles.Unfollow(ctx, callerID, target.ID)
	if err != nil {
		return domain.Profile{}, "", internal(s.log, "unfollow", err)
	}
	if !removed {
		return domain.Profile{}, "", fmt.Errorf("%w: not following %s", domain.ErrNotFound, target.Username)
	}
	return s.refreshed(ctx, callerID)
}

// Page returns the n-th page (1-based) of profiles ordered by id. Page
// numbers below 1 read as the first page; pages past the end are empty.
func (s *ProfileService) Page(ctx context.Context, n int) ([]domain.Profile, error) {
	if n < 1 {
		n = 1
	}
	profiles, err := s.profiles.Page(ctx, (n-1)*s.pageSize, s.pageSize)
	if err != nil {
		return nil, internal(s.log, "page profiles", err)
	}
	return profiles, nil
}

// Search matches query fragments against usernames, names and emails and
// returns the best matches first.
func (s *ProfileService) Search(ctx context.Context, query string) ([]domain.Profile, error) {
	q := domain.ParseSearchQuery(query)
	if q.IsEmpty() {
		return []domain.Profile{}, nil
	}

	if cached, ok, err := s.cache.GetSearch(ctx, q.Raw); err != nil {
		s.log.Warn("cache_read_failed", logger.String("query", q.Raw), logger.Error(err))
	} else if ok {
		return cached, nil
	}

	// Over-fetch so the ranker has room to reorder before the cap.
	candidates, err := s.profiles.SearchCandidates(ctx, q.Fragments, s.searchLimit*4)
	if err != nil {
		return nil, internal(s.log, "search profiles", err)
	}

	ranked := domain.RankProfiles(q, candidates, s.searchLimit)
	out := make([]domain.Profile, len(ranked))
	for i := range ranked {
		out[i] = ranked[i].Profile
	}

	if err := s.cache.SaveSearch(ctx, q.Raw, out); err != nil {
		s.log.Warn("cache_write_failed", logger.String("query", q.Raw), logger.Error(err))
	}
	return out, nil
}

// refreshed rereads the caller after a write, drops stale cache entries and
// issues a token with the new snapshot.
func (s *ProfileService) refreshed(ctx context.Context, id uint) (domain.Profile, string, error) {
	if err := s.cache.InvalidateProfile(ctx, id); err != nil {
		s.log.Warn("cache_invalidate_failed", logger.Uint("profile_id", id), logger.Error(err))
	}
	s.flushSearch(ctx)

	p, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return domain.Profile{}, "", passthrough(s.log, "reload profile", err)
	}
	token, err := s.issue(p)
	if err != nil {
		return domain.Profile{}, "", err
	}
	return p, token, nil
}

func (s *ProfileService) issue(p domain.Profile) (string, error) {
	token, err := s.codec.Issue(auth.NewIdentity(p))
	if err != nil {
		return "", internal(s.log, "issue token", err)
	}
	return token, nil
}

func (s *ProfileService) flushSearch(ctx context.Context) {
	if err := s.cache.FlushSearch(ctx); err != nil {
		s.log.Warn("cache_flush_failed", logger.Error(err))
	}
}
