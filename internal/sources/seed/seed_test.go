package seed

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/MrSnakeDoc/socialhub/internal/domain"
	"github.com/MrSnakeDoc/socialhub/internal/logger"
	"github.com/MrSnakeDoc/socialhub/internal/store/sqlstore"
	"github.com/MrSnakeDoc/socialhub/internal/store/sqlstore/sqlstoretest"
)

const fixture = `---
profiles:
  - username: ada
    email: ADA@example.com
    password: ${SEED_TEST_PASSWORD}
    firstName: Ada
  - username: bob
    email: bob@example.com
    password: hunter22
posts:
  - author: ada
    body: first post
  - author: bob
    body: hello
    imgurl: https://img.example.com/1.png
follows:
  - from: ada
    to: bob
`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create seed file: %v", err)
	}
	return path
}

func TestLoaderLoad(t *testing.T) {
	t.Setenv("SEED_TEST_PASSWORD", "s3cret-pass")

	f, err := NewLoader(writeFixture(t, fixture)).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(f.Profiles) != 2 || len(f.Posts) != 2 || len(f.Follows) != 1 {
		t.Fatalf("Load() = %+v", f)
	}
	if f.Profiles[0].Password != "s3cret-pass" {
		t.Errorf("password = %q, want expanded env value", f.Profiles[0].Password)
	}
	if f.Posts[1].ImgURL != "https://img.example.com/1.png" {
		t.Errorf("imgurl = %q", f.Posts[1].ImgURL)
	}
}

func TestLoaderErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{name: "missing file", path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") }},
		{name: "bad yaml", path: func(t *testing.T) string { return writeFixture(t, "profiles: [unterminated") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewLoader(tt.path(t)).Load(); err == nil {
				t.Error("Load() error = nil, want error")
			}
		})
	}
}

func TestSeederApplyIsIdempotent(t *testing.T) {
	t.Setenv("SEED_TEST_PASSWORD", "s3cret-pass")
	ctx := context.Background()
	db := sqlstoretest.Open(t)
	profiles := sqlstore.NewProfileRepository(db)
	posts := sqlstore.NewPostRepository(db)
	s := NewSeeder(profiles, posts, bcrypt.MinCost, logger.NewNop())
	path := writeFixture(t, fixture)

	first, err := s.LoadAndApply(ctx, path)
	if err != nil {
		t.Fatalf("first LoadAndApply() error = %v", err)
	}
	if first.Profiles != 2 || first.Posts != 2 || first.Follows != 1 {
		t.Errorf("first result = %+v", first)
	}

	second, err := s.LoadAndApply(ctx, path)
	if err != nil {
		t.Fatalf("second LoadAndApply() error = %v", err)
	}
	if second.Profiles != 0 || second.Posts != 0 {
		t.Errorf("second result = %+v, want nothing created", second)
	}

	ada, err := profiles.FindByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("FindByEmail() error = %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(ada.Passkey), []byte("s3cret-pass")); err != nil {
		t.Errorf("stored passkey does not match seeded password: %v", err)
	}
	if len(ada.Following) != 1 {
		t.Errorf("ada follows %v, want bob", ada.Following)
	}
}

func TestSeederRejectsBadEntries(t *testing.T) {
	ctx := context.Background()
	db := sqlstoretest.Open(t)
	s := NewSeeder(sqlstore.NewProfileRepository(db), sqlstore.NewPostRepository(db), bcrypt.MinCost, logger.NewNop())

	tests := []struct {
		name string
		file File
		want error
	}{
		{name: "profile without password", file: File{Profiles: []ProfileEntry{{Username: "ada", Email: "ada@example.com"}}}, want: domain.ErrValidation},
		{name: "post by unknown author", file: File{Posts: []PostEntry{{Author: "ghost", Body: "boo"}}}, want: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Apply(ctx, tt.file); !errors.Is(err, tt.want) {
				t.Errorf("Apply() error = %v, want %v", err, tt.want)
			}
		})
	}
}
