package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// AdminDashboard handles GET /admin/dashboard.  Sections that failed to
// load are listed under "failures"; the response is still 200.
func (h *Handler) AdminDashboard(c echo.Context) error {
	a, err := h.actor(c)
	if err != nil {
		return h.fail(c, err)
	}
	ov, err := h.svc.Dashboard.AdminOverview(c.Request().Context(), a)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, ov)
}

// StudentDashboard handles GET /student/dashboard: the caller's profile,
// room and own requests.  A student token without a student record gets
// 403 from the service.
func (h *Handler) StudentDashboard(c echo.Context) error {
	a, err := h.actor(c)
	if err != nil {
		return h.fail(c, err)
	}
	ov, err := h.svc.Dashboard.StudentOverview(c.Request().Context(), a)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, ov)
}
