package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hostel-management/internal/handler"
	"github.com/iliyamo/hostel-management/internal/middleware"
	"github.com/iliyamo/hostel-management/internal/model"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /api/admin.  All
// routes require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, h *handler.Handler, jwtSecret string, x Extras) {
	mws := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	}
	g := e.Group("/api/admin", append(mws, x.rateLimit()...)...)

	// ---- Rooms ----
	g.GET("/rooms", h.ListRooms)
	g.POST("/rooms", h.CreateRoom)
	g.GET("/rooms/:id", h.GetRoom)
	g.PUT("/rooms/:id", h.UpdateRoom)
	g.DELETE("/rooms/:id", h.DeleteRoom)

	// ---- Allocation ----
	g.PUT("/rooms/:roomId/allocate/:studentId", h.Allocate)
	g.PUT("/rooms/:roomId/deallocate/:studentId", h.DeallocateStudent)
	g.PUT("/rooms/:roomId/deallocate", h.DeallocateAll)

	// ---- Students ----
	g.GET("/students", h.ListStudents)
	g.GET("/students/:id", h.GetStudent)

	// ---- Booking requests ----
	g.GET("/room-booking-requests", h.ListBookings)
	g.GET("/room-booking-requests/:id", h.GetBooking)
	g.PUT("/room-booking-requests/:id", h.DecideBooking)
	g.PUT("/room-booking-requests/:id/remarks", h.UpdateBookingRemarks)
	g.DELETE("/room-booking-requests/:id", h.DeleteBooking)

	// ---- Maintenance requests ----
	g.GET("/maintenance-requests", h.ListMaintenance)
	g.GET("/maintenance-requests/:id", h.GetMaintenance)
	g.PUT("/maintenance-requests/:id", h.UpdateMaintenance)
	g.DELETE("/maintenance-requests/:id", h.DeleteMaintenance)

	g.GET("/dashboard", h.AdminDashboard, x.cache()...)
}
