package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hostel-management/internal/model"
)

// ListBookings handles GET /room-booking-requests?studentId=&roomId=&status=.
// Students always get their own requests only.
func (h *Handler) ListBookings(c echo.Context) error {
	f, ok := requestFilter(c)
	if !ok {
		return badRequest(c, "invalid filter")
	}
	a, err := h.actor(c)
	if err != nil {
		return h.fail(c, err)
	}
	list, err := h.svc.Bookings.List(c.Request().Context(), a, f)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// GetBooking handles GET /room-booking-requests/:id.
func (h *Handler) GetBooking(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid request id")
	}
	a, err := h.actor(c)
	if err != nil {
		return h.fail(c, err)
	}
	b, err := h.svc.Bookings.Get(c.Request().Context(), a, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// SubmitBooking handles POST /student/room-booking-requests with body
// {"roomId": n}.  It returns 201 with the new PENDING request.  A student
// who already holds a room or already has a pending request gets 409; a
// full room yields 409 as well, and an unknown room 404.
func (h *Handler) SubmitBooking(c echo.Context) error {
	// bind request body
	var body struct {
		RoomID uint64 `json:"roomId"`
	}
	if err := c.Bind(&body); err != nil || body.RoomID == 0 {
		return badRequest(c, "roomId is required")
	}
	a, err := h.actor(c)
	if err != nil {
		return h.fail(c, err)
	}
	// students always submit for themselves; the token decides who that is
	b, err := h.svc.Bookings.Submit(c.Request().Context(), a, a.StudentID, body.RoomID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// DecideBooking handles PUT /admin/room-booking-requests/:id with body
// {"status": "APPROVED"|"REJECTED"|"CANCELLED", "adminRemarks": "..."}.
// The status is matched case-insensitively.  Approving allocates the
// student in the same transaction, so a room that filled up in the
// meantime answers 409 and leaves the request PENDING.
func (h *Handler) DecideBooking(c echo.Context) error {
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
	status, err := model.ParseBookingStatus(body.Status)
	if err != nil {
		return badRequest(c, err.Error())
	}
	a, err := h.actor(c)
	if err != nil {
		return h.fail(c, err)
	}
	b, err := h.svc.Bookings.Decide(c.Request().Context(), a, id, status, body.AdminRemarks)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// UpdateBookingRemarks handles PUT /admin/room-booking-requests/:id/remarks.
// Remarks stay editable after the decision; blank remarks clear the field.
func (h *Handler) UpdateBookingRemarks(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid request id")
	}
	var body struct {
		AdminRemarks string `json:"adminRemarks"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	a, err := h.actor(c)
	if err != nil {
		return h.fail(c, err)
	}
	b, err := h.svc.Bookings.UpdateRemarks(c.Request().Context(), a, id, body.AdminRemarks)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// CancelBooking handles PUT /student/room-booking-requests/:id/cancel.  Only
// the owner may cancel, and only while the request is PENDING; another
// student's request answers 404 rather than revealing that it exists.
func (h *Handler) CancelBooking(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid request id")
	}
	a, err := h.actor(c)
	if err != nil {
		return h.fail(c, err)
	}
	b, err := h.svc.Bookings.Cancel(c.Request().Context(), a, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// DeleteBooking handles DELETE /admin/room-booking-requests/:id and returns
// 204.  PENDING requests must be decided first (409).
func (h *Handler) DeleteBooking(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid request id")
	}
	a, err := h.actor(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.svc.Bookings.Delete(c.Request().Context(), a, id); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
