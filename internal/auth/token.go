// Package auth verifies bearer tokens issued by the identity provider and
// throttles requests per user.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"todoboard/internal/config"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
)

const cacheTTL = 5 * time.Minute

// Identity is the caller resolved from a verified token.
type Identity struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

type claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 tokens and caches the identities of tokens it has
// already verified until they expire.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
	cache  *expirable.LRU[string, Identity]
	now    func() time.Time
}

func NewVerifier(cfg config.AuthConfig) (*Verifier, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("auth jwt secret is required")
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = 1000
	}

	v := &Verifier{
		secret: []byte(cfg.JWTSecret),
		cache:  expirable.NewLRU[string, Identity](size, nil, cacheTTL),
		now:    time.Now,
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return v.now() }),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	v.parser = jwt.NewParser(opts...)
	return v, nil
}

// Verify validates a raw token, with or without the "Bearer " prefix.
func (v *Verifier) Verify(raw string) (Identity, error) {
	token := StripBearer(raw)
	if token == "" {
		return Identity{}, ErrMissingToken
	}

	key := cacheKey(token)
	if id, ok := v.cache.Get(key); ok {
		if v.now().Before(id.ExpiresAt) {
			return id, nil
		}
		v.cache.Remove(key)
	}

	var c claims
	_, err := v.parser.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.Subject == "" {
		return Identity{}, fmt.Errorf("%w: subject is empty", ErrInvalidToken)
	}

	id := Identity{UserID: c.Subject, Email: c.Email, ExpiresAt: c.ExpiresAt.Time}
	v.cache.Add(key, id)
	return id, nil
}

// StripBearer removes a case-insensitive "Bearer " prefix.
func StripBearer(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 6 && strings.EqualFold(s[:6], "bearer") && (len(s) == 6 || s[6] == ' ') {
		return strings.TrimSpace(s[6:])
	}
	return s
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
