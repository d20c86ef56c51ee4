// Package router wires handlers and middleware onto an echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hostel-management/internal/handler"
)

// Extras carries the optional Redis-backed middlewares.  Nil fields are
// skipped.
type Extras struct {
	RateLimit echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
}

func (x Extras) rateLimit() []echo.MiddlewareFunc {
	if x.RateLimit == nil {
		return nil
	}
	return []echo.MiddlewareFunc{x.RateLimit}
}

func (x Extras) cache() []echo.MiddlewareFunc {
	if x.Cache == nil {
		return nil
	}
	return []echo.MiddlewareFunc{x.Cache}
}

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// Register mounts the whole API: health, admin and student groups.
func Register(e *echo.Echo, h *handler.Handler, db handler.Pinger, jwtSecret string, x Extras) {
	RegisterRoutes(e, db)
	RegisterAdmin(e, h, jwtSecret, x)
	RegisterStudent(e, h, jwtSecret, x)
}
