// Package utils holds small helpers shared by the binaries and tests.
package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessToken is a signed HS256 JWT and its expiry.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// TokenClaims are the claims the API reads from a bearer token.
// StudentID is optional; when zero the server resolves it from the user id.
type TokenClaims struct {
	UserID    uint64
	Role      string
	StudentID uint64
}

// NewAccessToken signs an access token in the format JWTAuth accepts.
// Tokens are normally minted by the auth service; this is used by the
// devtoken command and tests.
func NewAccessToken(secret string, c TokenClaims, ttl time.Duration) (AccessToken, error) {
	if secret == "" {
		return AccessToken{}, errors.New("empty signing secret")
	}
	if c.UserID == 0 {
		return AccessToken{}, errors.New("user id is required")
	}
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":  c.UserID,
		"role": strings.ToUpper(c.Role),
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	if c.StudentID != 0 {
		claims["student_id"] = c.StudentID
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}
