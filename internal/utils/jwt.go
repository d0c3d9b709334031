package utils // package utils provides helpers for session tokens and hashing

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/justloook-provider-portal/internal/model"
)

// SessionToken is a signed HS256 JWT carrying the signed-in identity,
// together with its issue and expiry times.
type SessionToken struct {
	Token    string
	IssuedAt time.Time
	Exp      time.Time
}

// SessionClaims is what ParseSessionToken recovers from a cookie.
type SessionClaims struct {
	Identity model.Identity
	IssuedAt time.Time
	Exp      time.Time
}

// NeedsRefresh reports whether more than half of the token's lifetime has
// passed at now.
func (c SessionClaims) NeedsRefresh(now time.Time) bool {
	half := c.Exp.Sub(c.IssuedAt) / 2
	return now.After(c.IssuedAt.Add(half))
}

// ErrInvalidSession covers every reason a session cookie is rejected.
var ErrInvalidSession = errors.New("invalid session token")

// NewSessionToken builds and signs a session JWT. The claims hold the uid
// (sub), email and display name; the backend credential is never included.
func NewSessionToken(secret string, id model.Identity, ttl time.Duration, now time.Time) (SessionToken, error) {
	if id.UID == "" {
		return SessionToken{}, errors.New("session token without uid")
	}
	iat := now.UTC().Truncate(time.Second)
	exp := iat.Add(ttl)
	claims := jwt.MapClaims{
		"sub":   id.UID,
		"email": id.Email,
		"name":  id.DisplayName,
		"iat":   iat.Unix(),
		"exp":   exp.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, IssuedAt: iat, Exp: exp}, nil
}

// ParseSessionToken verifies signature, algorithm and expiry at now.
func ParseSessionToken(secret, raw string, now time.Time) (SessionClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil || !tok.Valid {
		return SessionClaims{}, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return SessionClaims{}, ErrInvalidSession
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return SessionClaims{}, fmt.Errorf("%w: missing sub", ErrInvalidSession)
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)

	out := SessionClaims{Identity: model.Identity{UID: sub, Email: email, DisplayName: name}}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time.UTC()
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.Exp = exp.Time.UTC()
	}
	return out, nil
}

// NewOpaqueToken returns a random hex token of n bytes and its expiry.
// Only HashToken(raw) should be persisted.
func NewOpaqueToken(n int, ttl time.Duration) (raw string, exp time.Time, err error) {
	raw, err = randomHex(n)
	if err != nil {
		return "", time.Time{}, err
	}
	return raw, time.Now().UTC().Add(ttl), nil
}

// HashToken returns the SHA-256 hash of a raw token as hex.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
