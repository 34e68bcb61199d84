package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/MrSnakeDoc/socialhub/internal/domain"
)

// HeaderName is the request and response header carrying the token.
const HeaderName = "Authorization"

const issuer = "socialhub"

var (
	// ErrInvalidToken is returned for any malformed, unsigned, tampered or
	// expired token.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrEmptySecret is returned by NewCodec when no signing secret is given.
	ErrEmptySecret = errors.New("auth: signing secret is empty")
)

// Identity is the snapshot of profile fields embedded in a token. It is
// enough to identify the caller without a database round-trip.
type Identity struct {
	ID        uint   `json:"pid"`
	Username  string `json:"username"`
	Passkey   string `json:"passkey"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// NewIdentity snapshots the token fields of a profile.
func NewIdentity(p domain.Profile) Identity {
	return Identity{
		ID:        p.ID,
		Username:  p.Username,
		Passkey:   p.Passkey,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
	}
}

type claims struct {
	Identity
	jwt.RegisteredClaims
}

// Codec issues and verifies HS256 tokens. It holds no mutable state and is
// safe for concurrent use.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

// NewCodec copies secret so later changes by the caller have no effect.
// A ttl of zero issues tokens without an expiry claim.
func NewCodec(secret []byte, ttl time.Duration) (*Codec, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	if ttl < 0 {
		return nil, fmt.Errorf("auth: negative token ttl %v", ttl)
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &Codec{secret: key, ttl: ttl}, nil
}

// Issue signs a token for id.
func (c *Codec) Issue(id Identity) (string, error) {
	return c.IssueAt(id, time.Now())
}

// IssueAt signs a token as if the current time were now.
func (c *Codec) IssueAt(id Identity, now time.Time) (string, error) {
	if id.ID == 0 {
		return "", fmt.Errorf("auth: cannot issue a token without a profile id")
	}

	rc := jwt.RegisteredClaims{
		ID:       uuid.NewString(),
		Issuer:   issuer,
		Subject:  strconv.FormatUint(uint64(id.ID), 10),
		IssuedAt: jwt.NewNumericDate(now),
	}
	if c.ttl > 0 {
		rc.ExpiresAt = jwt.NewNumericDate(now.Add(c.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{Identity: id, RegisteredClaims: rc}).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("auth: failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks token and returns the identity it carries.
func (c *Codec) Verify(token string) (Identity, error) {
	return c.VerifyAt(token, time.Now())
}

// VerifyAt verifies token against the given clock. Every failure wraps
// ErrInvalidToken.
func (c *Codec) VerifyAt(token string, now time.Time) (Identity, error) {
	if token == "" {
		return Identity{}, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	var cl claims
	parsed, err := jwt.ParseWithClaims(token, &cl,
		func(*jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}

	if cl.Identity.ID == 0 || cl.Subject != strconv.FormatUint(uint64(cl.Identity.ID), 10) {
		return Identity{}, fmt.Errorf("%w: subject does not match identity", ErrInvalidToken)
	}

	return cl.Identity, nil
}
