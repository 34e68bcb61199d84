package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/MrSnakeDoc/socialhub/internal/domain"
	"github.com/MrSnakeDoc/socialhub/internal/logger"
)

type ProfileStore interface {
	Create(ctx context.Context, p *domain.Profile) error
	FindByEmail(ctx context.Context, email string) (domain.Profile, error)
	FindByLogin(ctx context.Context, login string) (domain.Profile, error)
	Follow(ctx context.Context, profileID, followedID uint) error
}

type PostStore interface {
	Create(ctx context.Context, p *domain.Post) error
	ExistsFor(ctx context.Context, profileID uint, body string) (bool, error)
}

// Result counts what Apply actually inserted.
type Result struct {
	Profiles int
	Posts    int
	Follows  int
}

// Seeder writes a fixture into the store. Entries that already exist are
// skipped, so applying the same file twice inserts nothing the second time.
type Seeder struct {
	profiles   ProfileStore
	posts      PostStore
	bcryptCost int
	logger     logger.Logger
}

func NewSeeder(profiles ProfileStore, posts PostStore, bcryptCost int, log logger.Logger) *Seeder {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Seeder{profiles: profiles, posts: posts, bcryptCost: bcryptCost, logger: log}
}

// LoadAndApply reads filePath and applies it.
func (s *Seeder) LoadAndApply(ctx context.Context, filePath string) (Result, error) {
	f, err := NewLoader(filePath).Load()
	if err != nil {
		return Result{}, err
	}
	return s.Apply(ctx, f)
}

func (s *Seeder) Apply(ctx context.Context, f File) (Result, error) {
	var res Result

	for _, e := range f.Profiles {
		created, err := s.applyProfile(ctx, e)
		if err != nil {
			return res, fmt.Errorf("seed profile %q: %w", e.Username, err)
		}
		if created {
			res.Profiles++
		}
	}

	for _, e := range f.Posts {
		created, err := s.applyPost(ctx, e)
		if err != nil {
			return res, fmt.Errorf("seed post by %q: %w", e.Author, err)
		}
		if created {
			res.Posts++
		}
	}

	for _, e := range f.Follows {
		if err := s.applyFollow(ctx, e); err != nil {
			return res, fmt.Errorf("seed follow %q -> %q: %w", e.From, e.To, err)
		}
		res.Follows++
	}

	s.logger.Info("seed applied",
		logger.Int("profiles_created", res.Profiles),
		logger.Int("posts_created", res.Posts),
		logger.Int("follows", res.Follows))
	return res, nil
}

func (s *Seeder) applyProfile(ctx context.Context, e ProfileEntry) (bool, error) {
	if e.Username == "" || e.Email == "" || e.Password == "" {
		return false, fmt.Errorf("%w: username, email and password are required", domain.ErrValidation)
	}
	email := strings.ToLower(strings.TrimSpace(e.Email))

	_, err := s.profiles.FindByEmail(ctx, email)
	if err == nil {
		s.logger.Debug("seed profile exists", logger.String("email", email))
		return false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(e.Password), s.bcryptCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	p := domain.Profile{
		Username:  e.Username,
		Email:     email,
		Passkey:   string(hash),
		FirstName: e.FirstName,
		LastName:  e.LastName,
		ImgURL:    e.ImgURL,
	}
	if err := s.profiles.Create(ctx, &p); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Seeder) applyPost(ctx context.Context, e PostEntry) (bool, error) {
	author, err := s.profiles.FindByLogin(ctx, e.Author)
	if err != nil {
		return false, err
	}

	exists, err := s.posts.ExistsFor(ctx, author.ID, e.Body)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	p := domain.Post{ProfileID: author.ID, Body: e.Body, ImgURL: e.ImgURL}
	if err := s.posts.Create(ctx, &p); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Seeder) applyFollow(ctx context.Context, e FollowEntry) error {
	from, err := s.profiles.FindByLogin(ctx, e.From)
	if err != nil {
		return err
	}
	to, err := s.profiles.FindByLogin(ctx, e.To)
	if err != nil {
		return err
	}
	return s.profiles.Follow(ctx, from.ID, to.ID)
}
