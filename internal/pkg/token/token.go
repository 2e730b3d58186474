// Package token issues and verifies the signed, bounded-lifetime JWTs used
// as access and refresh credentials.
//
// Issuance and verification are pure functions of (claims, secret, clock);
// the package performs no I/O and keeps no revocation state, so a token stays
// valid until its expiry.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by Verify for a bad signature, a malformed
// token or an expired one.
var ErrInvalidToken = errors.New("invalid token")

const (
	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Use distinguishes access credentials from refresh credentials.
type Use string

const (
	UseAccess  Use = "access"
	UseRefresh Use = "refresh"
)

// Claims is the identity snapshot carried by every token. It never holds
// secret material.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Use      Use    `json:"token_use"`
}

// NewClaims builds the claim set for one identity. The subject is the
// identity id.
func NewClaims(id, username, email, role string) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: id},
		Username:         username,
		Email:            email,
		Role:             role,
	}
}

// Pair is the access/refresh couple handed out on login and registration.
type Pair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// Issuer signs and verifies HS256 tokens with a shared secret.
type Issuer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// Option customises an Issuer.
type Option func(*Issuer)

// WithClock replaces time.Now; used to exercise expiry.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// WithIssuer sets the "iss" claim written on issue and required on verify.
func WithIssuer(name string) Option {
	return func(i *Issuer) { i.issuer = name }
}

// WithTTLs overrides the access and refresh lifetimes. Non-positive values
// keep the defaults.
func WithTTLs(access, refresh time.Duration) Option {
	return func(i *Issuer) {
		if access > 0 {
			i.accessTTL = access
		}
		if refresh > 0 {
			i.refreshTTL = refresh
		}
	}
}

// NewIssuer returns an Issuer for secret. An empty secret is rejected so a
// misconfigured process fails at startup rather than signing with "".
func NewIssuer(secret string, opts ...Option) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret is required")
	}
	i := &Issuer{
		secret:     []byte(secret),
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// AccessTTL reports the configured access-token lifetime.
func (i *Issuer) AccessTTL() time.Duration { return i.accessTTL }

// Issue signs claims with a lifetime of ttl starting now. A zero Use is
// treated as an access token.
func (i *Issuer) Issue(claims Claims, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("token: ttl must be positive, got %s", ttl)
	}
	now := i.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	if i.issuer != "" {
		claims.Issuer = i.issuer
	}
	if claims.Use == "" {
		claims.Use = UseAccess
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// IssuePair signs an access token and a refresh token carrying the same
// identity claims.
func (i *Issuer) IssuePair(claims Claims) (*Pair, error) {
	now := i.now()

	access := claims
	access.Use = UseAccess
	accessToken, err := i.Issue(access, i.accessTTL)
	if err != nil {
		return nil, err
	}

	refresh := claims
	refresh.Use = UseRefresh
	refreshToken, err := i.Issue(refresh, i.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &Pair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  now.Add(i.accessTTL),
		RefreshExpiresAt: now.Add(i.refreshTTL),
	}, nil
}

// Verify checks signature, algorithm and expiry and returns the claims.
// Every failure is reported as ErrInvalidToken.
func (i *Issuer) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}

	tkn, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
