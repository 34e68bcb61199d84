// Package service holds the business rules of profiles, bookmarks and
// notifications. Services talk to storage through the small interfaces below
// and return the sentinel errors of the domain package.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/MrSnakeDoc/socialhub/internal/domain"
	"github.com/MrSnakeDoc/socialhub/internal/logger"
	"github.com/MrSnakeDoc/socialhub/internal/store/sqlstore"
)

// ProfileStore is the profile persistence used by ProfileService.
type ProfileStore interface {
	Create(ctx context.Context, p *domain.Profile) error
	FindByID(ctx context.Context, id uint) (domain.Profile, error)
	FindByEmail(ctx context.Context, email string) (domain.Profile, error)
	FindByLogin(ctx context.Context, login string) (domain.Profile, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Update(ctx context.Context, id uint, u sqlstore.ProfileUpdate) error
	Page(ctx context.Context, offset, limit int) ([]domain.Profile, error)
	SearchCandidates(ctx context.Context, fragments []string, limit int) ([]domain.Profile, error)
	Follow(ctx context.Context, profileID, followedID uint) error
	Unfollow(ctx context.Context, profileID, followedID uint) (bool, error)
}

// ProfileResolver checks that a bookmarking profile exists.
type ProfileResolver interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

// PostStore resolves bookmark targets.
type PostStore interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

// BookmarkStore is the bookmark persistence used by BookmarkService.
type BookmarkStore interface {
	Find(ctx context.Context, profileID, postID uint) (domain.Bookmark, error)
	InsertIfAbsent(ctx context.Context, profileID, postID uint) (domain.Bookmark, bool, error)
	Delete(ctx context.Context, profileID, postID uint) (bool, error)
	Exists(ctx context.Context, profileID, postID uint) (bool, error)
	ListPosts(ctx context.Context, profileID uint) ([]domain.Post, error)
	CountByPost(ctx context.Context, postID uint) (int64, error)
}

// NotificationStore is the notification persistence used by NotificationService.
type NotificationStore interface {
	Create(ctx context.Context, n *domain.Notification) error
	Update(ctx context.Context, n *domain.Notification) error
	FindByID(ctx context.Context, id uint) (domain.Notification, error)
	ListAll(ctx context.Context) ([]domain.Notification, error)
	ListByRecipient(ctx context.Context, profileID uint) ([]domain.Notification, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput runs struct tag validation and folds failures into
// domain.ErrValidation with a readable field list.
func validateInput(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s must satisfy %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
}

// expected reports whether err is one of the domain failures a caller can act
// on. Anything else is a store fault.
func expected(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrConflict) ||
		errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrRejected) ||
		errors.Is(err, domain.ErrUnauthenticated)
}

// internal logs an unexpected store error and hides it behind ErrInternal.
func internal(log logger.Logger, op string, err error) error {
	log.Error("store_failure", logger.String("op", op), logger.Error(err))
	return fmt.Errorf("%w: %s", domain.ErrInternal, op)
}

// passthrough returns domain failures unchanged and masks everything else.
func passthrough(log logger.Logger, op string, err error) error {
	if expected(err) {
		return err
	}
	return internal(log, op, err)
}
