package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/socialhub/internal/domain"
	"github.com/MrSnakeDoc/socialhub/internal/logger"
	"github.com/MrSnakeDoc/socialhub/internal/metrics"
)

// BookmarkService manages the profile to post bookmark relation.
//
// At most one bookmark exists per (profile, post). The unique index in the
// store enforces this; the lookups before the insert only shape the result.
type BookmarkService struct {
	bookmarks BookmarkStore
	profiles  ProfileResolver
	posts     PostStore
	metrics   *metrics.Metrics
	log       logger.Logger
}

func NewBookmarkService(bookmarks BookmarkStore, profiles ProfileResolver, posts PostStore, m *metrics.Metrics, log logger.Logger) *BookmarkService {
	return &BookmarkService{
		bookmarks: bookmarks,
		profiles:  profiles,
		posts:     posts,
		metrics:   m,
		log:       log.Named("bookmarks"),
	}
}

// Add bookmarks postID for profileID. An existing pair is returned with
// status BookmarkAlreadyExists; an unknown profile or post is ErrRejected.
func (s *BookmarkService) Add(ctx context.Context, profileID, postID uint) (domain.BookmarkResult, error) {
	if profileID == 0 || postID == 0 {
		s.metrics.Bookmark("add", "invalid")
		return domain.BookmarkResult{}, fmt.Errorf("%w: profile and post are required", domain.ErrValidation)
	}

	if existing, err := s.bookmarks.Find(ctx, profileID, postID); err == nil {
		s.metrics.Bookmark("add", "existing")
		return domain.BookmarkResult{Bookmark: existing, Status: domain.BookmarkAlreadyExists}, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.BookmarkResult{}, s.fail("add", err)
	}

	if err := s.resolvable(ctx, profileID, postID); err != nil {
		s.metrics.Bookmark("add", "rejected")
		return domain.BookmarkResult{}, err
	}

	b, inserted, err := s.bookmarks.InsertIfAbsent(ctx, profileID, postID)
	if err != nil {
		if errors.Is(err, domain.ErrRejected) {
			// The post or profile vanished between the check and the insert.
			s.metrics.Bookmark("add", "rejected")
			return domain.BookmarkResult{}, err
		}
		return domain.BookmarkResult{}, s.fail("add", err)
	}
	if inserted {
		s.metrics.Bookmark("add", "created")
		return domain.BookmarkResult{Bookmark: b, Status: domain.BookmarkCreated}, nil
	}

	// A concurrent caller won the insert.
	existing, err := s.bookmarks.Find(ctx, profileID, postID)
	if err != nil {
		return domain.BookmarkResult{}, s.fail("add", err)
	}
	s.metrics.Bookmark("add", "existing")
	return domain.BookmarkResult{Bookmark: existing, Status: domain.BookmarkAlreadyExists}, nil
}

// Remove deletes the pair. A missing pair is ErrNotFound and changes nothing.
func (s *BookmarkService) Remove(ctx context.Context, profileID, postID uint) error {
	deleted, err := s.bookmarks.Delete(ctx, profileID, postID)
	if err != nil {
		return s.fail("remove", err)
	}
	if !deleted {
		s.metrics.Bookmark("remove", "not_found")
		return fmt.Errorf("%w: bookmark for post %d", domain.ErrNotFound, postID)
	}
	s.metrics.Bookmark("remove", "removed")
	return nil
}

// List returns the posts bookmarked by profileID, oldest bookmark first.
func (s *BookmarkService) List(ctx context.Context, profileID uint) ([]domain.Post, error) {
	posts, err := s.bookmarks.ListPosts(ctx, profileID)
	if err != nil {
		return nil, s.fail("list", err)
	}
	return posts, nil
}

func (s *BookmarkService) Has(ctx context.Context, profileID, postID uint) (bool, error) {
	ok, err := s.bookmarks.Exists(ctx, profileID, postID)
	if err != nil {
		return false, s.fail("has", err)
	}
	return ok, nil
}

// Count returns how many profiles bookmarked postID.
func (s *BookmarkService) Count(ctx context.Context, postID uint) (int64, error) {
	n, err := s.bookmarks.CountByPost(ctx, postID)
	if err != nil {
		return 0, s.fail("count", err)
	}
	return n, nil
}

func (s *BookmarkService) resolvable(ctx context.Context, profileID, postID uint) error {
	ok, err := s.profiles.Exists(ctx, profileID)
	if err != nil {
		return s.fail("add", err)
	}
	if !ok {
		return fmt.Errorf("%w: profile %d does not exist", domain.ErrRejected, profileID)
	}
	ok, err = s.posts.Exists(ctx, postID)
	if err != nil {
		return s.fail("add", err)
	}
	if !ok {
		return fmt.Errorf("%w: post %d does not exist", domain.ErrRejected, postID)
	}
	return nil
}

func (s *BookmarkService) fail(op string, err error) error {
	s.metrics.Bookmark(op, "error")
	return internal(s.log, "bookmark "+op, err)
}
