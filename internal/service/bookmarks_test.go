package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/MrSnakeDoc/socialhub/internal/domain"
)

func TestBookmarkAddTwice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	ada := f.register(t, "ada", "ada@example.com")
	post := f.post(t, ada.ID)

	first, err := f.bookmarks.Add(ctx, ada.ID, post.ID)
	if err != nil {
		t.Fatalf("first Add() error = %v", err)
	}
	if first.Status != domain.BookmarkCreated {
		t.Errorf("first Add() status = %v, want created", first.Status)
	}

	second, err := f.bookmarks.Add(ctx, ada.ID, post.ID)
	if err != nil {
		t.Fatalf("second Add() error = %v", err)
	}
	if second.Status != domain.BookmarkAlreadyExists {
		t.Errorf("second Add() status = %v, want existing", second.Status)
	}
	if second.Bookmark.ID != first.Bookmark.ID {
		t.Errorf("second Add() bookmark id = %d, want %d", second.Bookmark.ID, first.Bookmark.ID)
	}

	if n, _ := f.bookmarkRepo.CountPair(ctx, ada.ID, post.ID); n != 1 {
		t.Errorf("rows for pair = %d, want 1", n)
	}
	if got := testutil.ToFloat64(f.metrics.BookmarkOperations.WithLabelValues("add", "existing")); got != 1 {
		t.Errorf("existing counter = %v, want 1", got)
	}
}

func TestBookmarkRemoveMissing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	ada := f.register(t, "ada", "ada@example.com")
	kept := f.post(t, ada.ID)
	other := f.post(t, ada.ID)

	if _, err := f.bookmarks.Add(ctx, ada.ID, kept.ID); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if err := f.bookmarks.Remove(ctx, ada.ID, other.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Remove(missing) error = %v, want ErrNotFound", err)
	}

	posts, err := f.bookmarks.List(ctx, ada.ID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(posts) != 1 || posts[0].ID != kept.ID {
		t.Errorf("List() after failed remove = %+v, want only post %d", posts, kept.ID)
	}
}

func TestBookmarkAddThenRemove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	ada := f.register(t, "ada", "ada@example.com")
	post := f.post(t, ada.ID)

	if _, err := f.bookmarks.Add(ctx, ada.ID, post.ID); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if ok, _ := f.bookmarks.Has(ctx, ada.ID, post.ID); !ok {
		t.Fatal("Has() after Add() = false")
	}
	if err := f.bookmarks.Remove(ctx, ada.ID, post.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	ok, err := f.bookmarks.Has(ctx, ada.ID, post.ID)
	if err != nil {
		t.Fatalf("Has() error = %v", err)
	}
	if ok {
		t.Error("Has() after Remove() = true")
	}
}

func TestBookmarkAddConcurrent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	ada := f.register(t, "ada", "ada@example.com")
	post := f.post(t, ada.ID)

	const callers = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		ids     = map[uint]struct{}{}
		errs    []error
	)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			res, err := f.bookmarks.Add(ctx, ada.ID, post.ID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			if res.Status == domain.BookmarkCreated {
				created++
			}
			ids[res.Bookmark.ID] = struct{}{}
		}()
	}
	close(start)
	wg.Wait()

	if len(errs) > 0 {
		t.Fatalf("concurrent Add() errors: %v", errs)
	}
	if created != 1 {
		t.Errorf("created results = %d, want 1", created)
	}
	if len(ids) != 1 {
		t.Errorf("distinct bookmark ids = %d, want 1", len(ids))
	}
	if n, _ := f.bookmarkRepo.CountPair(ctx, ada.ID, post.ID); n != 1 {
		t.Errorf("rows for pair = %d, want 1", n)
	}
}

func TestBookmarkAddRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	ada := f.register(t, "ada", "ada@example.com")
	post := f.post(t, ada.ID)

	tests := []struct {
		name      string
		profileID uint
		postID    uint
		want      error
	}{
		{name: "unknown post", profileID: ada.ID, postID: 9999, want: domain.ErrRejected},
		{name: "unknown profile", profileID: 9999, postID: post.ID, want: domain.ErrRejected},
		{name: "zero post", profileID: ada.ID, postID: 0, want: domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.bookmarks.Add(ctx, tt.profileID, tt.postID); !errors.Is(err, tt.want) {
				t.Errorf("Add() error = %v, want %v", err, tt.want)
			}
		})
	}

	if n, _ := f.bookmarks.Count(ctx, post.ID); n != 0 {
		t.Errorf("Count() = %d after rejected adds, want 0", n)
	}
}

func TestBookmarkListAndCount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	ada := f.register(t, "ada", "ada@example.com")
	bob := f.register(t, "bob", "bob@example.com")
	p1 := f.post(t, ada.ID)
	p2 := f.post(t, bob.ID)

	for _, pair := range [][2]uint{{ada.ID, p2.ID}, {ada.ID, p1.ID}, {bob.ID, p1.ID}} {
		if _, err := f.bookmarks.Add(ctx, pair[0], pair[1]); err != nil {
			t.Fatalf("Add(%v) error = %v", pair, err)
		}
	}

	posts, err := f.bookmarks.List(ctx, ada.ID)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(posts) != 2 || posts[0].ID != p2.ID || posts[1].ID != p1.ID {
		t.Errorf("List() = %+v, want posts %d then %d", posts, p2.ID, p1.ID)
	}

	n, err := f.bookmarks.Count(ctx, p1.ID)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Count(p1) = %d, want 2", n)
	}

	empty, err := f.bookmarks.List(ctx, 9999)
	if err != nil || len(empty) != 0 {
		t.Errorf("List(unknown) = %v, %v; want empty", empty, err)
	}
}
