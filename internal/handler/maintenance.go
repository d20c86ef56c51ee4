package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hostel-management/internal/model"
)

// ListMaintenance handles GET /maintenance-requests?studentId=&roomId=&status=.
func (h *Handler) ListMaintenance(c echo.Context) error {
	f, ok := requestFilter(c)
	if !ok {
		return badRequest(c, "invalid filter")
	}
	a, err := h.actor(c)
	if err != nil {
		return h.fail(c, err)
	}
	list, err := h.svc.Maintenance.List(c.Request().Context(), a, f)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// GetMaintenance handles GET /maintenance-requests/:id.  Students see only
// their own requests; anything else is reported as not found.
func (h *Handler) GetMaintenance(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid request id")
	}
	a, err := h.actor(c)
	if err != nil {
		return h.fail(c, err)
	}
	m, err := h.svc.Maintenance.Get(c.Request().Context(), a, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// SubmitMaintenance handles POST /student/maintenance-requests with body
// {"description": "...", "roomId": n}.  Without roomId the request is
// filed against the student's current room, if any.  Naming a room the
// student does not live in answers 403; a blank description 400.
func (h *Handler) SubmitMaintenance(c echo.Context) error {
	// bind request body
	var body struct {
		Description string  `json:"description"`
		RoomID      *uint64 `json:"roomId"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	a, err := h.actor(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx := c.Request().Context()
	roomID := body.RoomID
	// default to the room the student currently lives in
	if roomID == nil {
		me, err := h.svc.Students.Profile(ctx, a)
		if err != nil {
			return h.fail(c, err)
		}
		roomID = me.RoomID
	}
	m, err := h.svc.Maintenance.Submit(ctx, a, a.StudentID, roomID, body.Description)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

// UpdateMaintenance handles PUT /admin/maintenance-requests/:id with body
// {"status": "...", "adminRemarks": "..."}.  Any status may follow any
// other; moving to COMPLETED stamps resolvedAt and leaving it clears it.
// Omitting adminRemarks keeps the current remarks.
func (h *Handler) UpdateMaintenance(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid request id")
	}
	var body struct {
		Status       string  `json:"status"`
		AdminRemarks *string `json:"adminRemarks"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	// reject unknown statuses before touching the store
	status, err := model.ParseMaintenanceStatus(body.Status)
	if err != nil {
		return badRequest(c, err.Error())
	}
	a, err := h.actor(c)
	if err != nil {
		return h.fail(c, err)
	}
	m, err := h.svc.Maintenance.UpdateStatus(c.Request().Context(), a, id, status, body.AdminRemarks)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// DeleteMaintenance handles DELETE /admin/maintenance-requests/:id and
// returns 204, or 404 when the request is already gone.
func (h *Handler) DeleteMaintenance(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid request id")
	}
	a, err := h.actor(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.svc.Maintenance.Delete(c.Request().Context(), a, id); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
