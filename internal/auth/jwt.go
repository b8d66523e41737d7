// Package auth provides JWT issuing/verification and the middleware that
// guards mutating routes.
//
// Tokens are stateless: subject and expiry live inside the signed token, so
// verification needs no storage lookup, just the HMAC secret. There is no
// revocation list; a token stays valid until its natural expiry.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenTTL is how long an issued token is accepted. The public site logs in
// once per session, so a day-long token keeps the editing flow painless.
const tokenTTL = 24 * time.Hour

const issuer = "blog-api"

// Verification failures fall into exactly two classes. Callers that need to
// know why verification failed check these with errors.Is; the HTTP layer
// maps both to 401 and only logs the distinction.
var (
	// ErrTokenMalformed: the string isn't a parseable JWT at all.
	ErrTokenMalformed = errors.New("auth: malformed token")
	// ErrTokenInvalid: parseable but unusable (bad signature, expired,
	// wrong issuer). Deliberately not discriminated further.
	ErrTokenInvalid = errors.New("auth: invalid token")
)

// Claims is the verified token payload: who the token was issued to and
// when it stops being accepted.
type Claims struct {
	Subject string
	Expiry  time.Time
}

// TokenService signs and verifies bearer tokens. It holds the HMAC secret,
// which is supplied by configuration (never a source literal) so it can be
// rotated without a code change.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// Secrets shorter than 16 characters are rejected outright; HS256 with a
// guessable key is worse than no auth, because it looks like auth.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

type jwtClaims struct {
	jwt.RegisteredClaims
}

// Issue creates and signs a token for the given subject, expiring in 24h.
func (s *TokenService) Issue(subject string) (string, error) {
	return s.IssueWithDuration(subject, tokenTTL)
}

// IssueWithDuration creates a token with a custom lifetime. Tests use it to
// mint already-expired tokens; production code goes through Issue.
func (s *TokenService) IssueWithDuration(subject string, d time.Duration) (string, error) {
	now := time.Now()

	c := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Verify parses and verifies a token string.
//
// A token is valid iff its HS256 signature checks out under our secret, its
// issuer matches, and the current time is before its expiry. The library is
// pinned to HS256 via WithValidMethods so an attacker can't downgrade the
// algorithm.
func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&jwtClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	c, ok := token.Claims.(*jwtClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("%w: no subject", ErrTokenInvalid)
	}

	return &Claims{
		Subject: c.Subject,
		Expiry:  c.ExpiresAt.Time,
	}, nil
}
