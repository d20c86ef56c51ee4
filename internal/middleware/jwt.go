// Package middleware holds the echo middleware of the API: bearer token
// verification, role gates, the Redis token-bucket rate limiter and the
// Redis response cache.
package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// JWTAuth validates an HS256 bearer token issued by the auth service and
// stores its claims in the context: "sub" as CtxUserID, "role" as CtxRole
// and the optional "student_id" as CtxStudentID.  Tokens without a usable
// subject or role are rejected with 401.
func JWTAuth(secret string) echo.MiddlewareFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	keyFunc := func(*jwt.Token) (any, error) { return []byte(secret), nil }

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return unauthorized(c, "missing bearer token")
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			claims := jwt.MapClaims{}
			tok, err := parser.ParseWithClaims(raw, claims, keyFunc)
			if err != nil || !tok.Valid {
				return unauthorized(c, "invalid token")
			}

			uid, ok := toUint64(claims["sub"])
			if !ok {
				return unauthorized(c, "invalid subject claim")
			}
			role, _ := claims["role"].(string)
			role = strings.ToUpper(strings.TrimSpace(role))
			if role == "" {
				return unauthorized(c, "missing role claim")
			}

			c.Set(CtxUserID, uid)
			c.Set(CtxRole, role)
			if sid, ok := toUint64(claims["student_id"]); ok {
				c.Set(CtxStudentID, sid)
			}
			return next(c)
		}
	}
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": msg, "code": "unauthorized"})
}
