package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hostel-management/internal/handler"
	"github.com/iliyamo/hostel-management/internal/middleware"
	"github.com/iliyamo/hostel-management/internal/model"
)

// RegisterStudent registers STUDENT-scoped endpoints under /api/student.
// Students only ever see and act on their own records; the service layer
// enforces that.
func RegisterStudent(e *echo.Echo, h *handler.Handler, jwtSecret string, x Extras) {
	mws := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleStudent),
	}
	g := e.Group("/api/student", append(mws, x.rateLimit()...)...)

	g.GET("/profile", h.Profile)
	g.GET("/rooms", h.ListRooms)

	g.GET("/room-booking-requests", h.ListBookings)
	g.POST("/room-booking-requests", h.SubmitBooking)
	g.PUT("/room-booking-requests/:id/cancel", h.CancelBooking)

	g.GET("/maintenance-requests", h.ListMaintenance)
	g.POST("/maintenance-requests", h.SubmitMaintenance)

	g.GET("/dashboard", h.StudentDashboard, x.cache()...)
}
