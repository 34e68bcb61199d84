package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret-with-enough-bytes-0123456789")

func newTestCodec(t *testing.T, ttl time.Duration) *Codec {
	t.Helper()
	c, err := NewCodec(testSecret, ttl)
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}
	return c
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	c := newTestCodec(t, time.Hour)

	tests := []struct {
		name string
		id   Identity
	}{
		{
			name: "full snapshot",
			id: Identity{
				ID:        42,
				Username:  "ada",
				Passkey:   "$2a$10$abcdefghijklmnopqrstuv",
				FirstName: "Ada",
				LastName:  "Lovelace",
				Email:     "ada@example.com",
			},
		},
		{
			name: "only the id",
			id:   Identity{ID: 1},
		},
		{
			name: "unicode names",
			id:   Identity{ID: 7, Username: "zoë", FirstName: "Zoë", LastName: "Ngô", Email: "zoe@example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := c.Issue(tt.id)
			if err != nil {
				t.Fatalf("Issue() error = %v", err)
			}
			got, err := c.Verify(token)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if got != tt.id {
				t.Errorf("Verify(Issue(id)) = %+v, want %+v", got, tt.id)
			}
		})
	}
}

func TestIssueRequiresID(t *testing.T) {
	c := newTestCodec(t, 0)
	if _, err := c.Issue(Identity{Username: "nobody"}); err == nil {
		t.Error("Issue() without an id should fail")
	}
}

func TestVerifyRejectsSingleByteMutation(t *testing.T) {
	c := newTestCodec(t, time.Hour)
	token, err := c.Issue(Identity{ID: 3, Username: "grace", Email: "grace@example.com"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	for i := 0; i < len(token); i++ {
		if token[i] == '.' {
			continue
		}
		// Substitute the next character of the base64url alphabet.
		idx := strings.IndexByte(alphabet, token[i])
		replacement := alphabet[(idx+1)%len(alphabet)]
		mutated := token[:i] + string(replacement) + token[i+1:]

		if _, err := c.Verify(mutated); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Verify() with byte %d mutated: error = %v, want ErrInvalidToken", i, err)
		}
	}
}

func TestVerifyFailures(t *testing.T) {
	c := newTestCodec(t, time.Hour)
	now := time.Now()

	valid, err := c.IssueAt(Identity{ID: 9, Username: "linus"}, now)
	if err != nil {
		t.Fatalf("IssueAt() error = %v", err)
	}

	other, err := NewCodec([]byte("another-secret-another-secret-0000"), time.Hour)
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}
	foreign, err := other.IssueAt(Identity{ID: 9, Username: "linus"}, now)
	if err != nil {
		t.Fatalf("IssueAt() error = %v", err)
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"pid": 9, "sub": "9", "iss": issuer,
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to build unsigned token: %v", err)
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"pid": 9, "sub": "9", "iss": issuer,
	}).SignedString(testSecret)
	if err != nil {
		t.Fatalf("failed to build HS512 token: %v", err)
	}

	mismatched, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"pid": 9, "sub": "10", "iss": issuer,
	}).SignedString(testSecret)
	if err != nil {
		t.Fatalf("failed to build mismatched token: %v", err)
	}

	tests := []struct {
		name  string
		token string
		at    time.Time
	}{
		{name: "empty", token: "", at: now},
		{name: "garbage", token: "not-a-token", at: now},
		{name: "two segments", token: "abc.def", at: now},
		{name: "wrong secret", token: foreign, at: now},
		{name: "alg none", token: unsigned, at: now},
		{name: "unexpected algorithm", token: hs512, at: now},
		{name: "subject mismatch", token: mismatched, at: now},
		{name: "expired", token: valid, at: now.Add(2 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.VerifyAt(tt.token, tt.at); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("VerifyAt() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestZeroTTLNeverExpires(t *testing.T) {
	c := newTestCodec(t, 0)
	now := time.Now()

	token, err := c.IssueAt(Identity{ID: 5}, now)
	if err != nil {
		t.Fatalf("IssueAt() error = %v", err)
	}
	if _, err := c.VerifyAt(token, now.Add(10*365*24*time.Hour)); err != nil {
		t.Errorf("VerifyAt() far in the future error = %v, want nil", err)
	}
}

func TestNewCodec(t *testing.T) {
	if _, err := NewCodec(nil, time.Hour); !errors.Is(err, ErrEmptySecret) {
		t.Errorf("NewCodec(nil) error = %v, want ErrEmptySecret", err)
	}
	if _, err := NewCodec(testSecret, -time.Second); err == nil {
		t.Error("NewCodec() with negative ttl should fail")
	}

	secret := []byte("mutable-secret-mutable-secret-000")
	c, err := NewCodec(secret, time.Hour)
	if err != nil {
		t.Fatalf("NewCodec() error = %v", err)
	}
	token, err := c.Issue(Identity{ID: 1})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	secret[0] = 'X'
	if _, err := c.Verify(token); err != nil {
		t.Errorf("Verify() after caller mutated its secret slice: %v", err)
	}
}

func TestIdentityContext(t *testing.T) {
	if _, ok := IdentityFrom(context.Background()); ok {
		t.Error("IdentityFrom(empty ctx) ok = true")
	}

	want := Identity{ID: 11, Username: "ken"}
	got, ok := IdentityFrom(WithIdentity(context.Background(), want))
	if !ok || got != want {
		t.Errorf("IdentityFrom() = %+v, %v; want %+v, true", got, ok, want)
	}
}

func TestTokenFromHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		wantOK bool
	}{
		{name: "bare token", header: "abc.def.ghi", want: "abc.def.ghi", wantOK: true},
		{name: "bearer prefix", header: "Bearer abc.def.ghi", want: "abc.def.ghi", wantOK: true},
		{name: "lower-case bearer", header: "bearer   abc", want: "abc", wantOK: true},
		{name: "empty", header: "", wantOK: false},
		{name: "whitespace", header: "   ", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TokenFromHeader(tt.header)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("TokenFromHeader(%q) = %q, %v; want %q, %v", tt.header, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
