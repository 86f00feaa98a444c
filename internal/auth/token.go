// Package auth provides the relay's concrete, swappable implementation of
// the token-verification contract: the HTTP login endpoint that issues these
// tokens remains an external collaborator, but the relay must still be able
// to verify what it is handed at handshake time.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"quantumshield/internal/domain"
)

var (
	// ErrTokenExpired is returned when the token's exp claim has passed.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrTokenInvalid is returned for any malformed or unverifiable token.
	ErrTokenInvalid = errors.New("auth: token invalid")
)

type claims struct {
	UserID   domain.UserID   `json:"user_id"`
	Username domain.Username `json:"username"`
	jwt.RegisteredClaims
}

// JWTVerifier validates bearer tokens signed with an HMAC secret. It is the
// relay-side half of the auth boundary; issuing tokens (the login endpoint)
// is out of scope.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier returns a verifier that checks tokens signed with secret.
func NewJWTVerifier(secret []byte) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

// Verify parses and validates token, checking signature and expiry, and
// returns the decoded claims. It never reveals which sub-reason a token was
// rejected for beyond expired-vs-invalid.
func (v *JWTVerifier) Verify(token string) (domain.Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Claims{}, ErrTokenExpired
		}
		return domain.Claims{}, ErrTokenInvalid
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return domain.Claims{}, ErrTokenInvalid
	}
	var expUnix int64
	if exp, err := c.GetExpirationTime(); err == nil && exp != nil {
		expUnix = exp.Unix()
	}
	if expUnix != 0 && expUnix <= time.Now().Unix() {
		return domain.Claims{}, ErrTokenExpired
	}

	return domain.Claims{
		UserID:   c.UserID,
		Username: c.Username,
		ExpUnix:  expUnix,
	}, nil
}

// Issue mints a token for (userID, username) expiring after ttl. It exists
// so tests and local development can exercise the relay end-to-end without
// the external auth endpoint; production deployments issue tokens at login,
// not here.
func (v *JWTVerifier) Issue(userID domain.UserID, username domain.Username, ttl time.Duration) (string, error) {
	now := time.Now()
	c := claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString(v.secret)
}

var _ domain.TokenVerifier = (*JWTVerifier)(nil)
