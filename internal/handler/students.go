package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hostel-management/internal/model"
)

// ListStudents handles GET /students?q=&unassigned=true.
func (h *Handler) ListStudents(c echo.Context) error {
	a, err := h.actor(c)
	if err != nil {
		return h.fail(c, err)
	}
	f := model.StudentFilter{Query: c.QueryParam("q"), Unassigned: queryBool(c, "unassigned")}
	list, err := h.svc.Students.ListStudents(c.Request().Context(), a, f)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// GetStudent handles GET /students/:id.
func (h *Handler) GetStudent(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid student id")
	}
	a, err := h.actor(c)
	if err != nil {
		return h.fail(c, err)
	}
	st, err := h.svc.Students.GetStudent(c.Request().Context(), a, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// Profile handles GET /student/profile.
func (h *Handler) Profile(c echo.Context) error {
	a, err := h.actor(c)
	if err != nil {
		return h.fail(c, err)
	}
	st, err := h.svc.Students.Profile(c.Request().Context(), a)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, st)
}
