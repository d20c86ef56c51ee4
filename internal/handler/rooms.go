package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hostel-management/internal/model"
)

type roomBody struct {
	RoomNumber string         `json:"roomNumber"`
	Capacity   model.Capacity `json:"capacity"`
}

// ListRooms handles GET /rooms?q=&available=true for both roles.
func (h *Handler) ListRooms(c echo.Context) error {
	a, err := h.actor(c)
	if err != nil {
		return h.fail(c, err)
	}
	f := model.RoomFilter{Query: c.QueryParam("q"), OnlyAvailable: queryBool(c, "available")}
	rooms, err := h.svc.Rooms.ListRooms(c.Request().Context(), a, f)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, rooms)
}

// GetRoom handles GET /rooms/:id.
func (h *Handler) GetRoom(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid room id")
	}
	a, err := h.actor(c)
	if err != nil {
		return h.fail(c, err)
	}
	room, err := h.svc.Rooms.GetRoom(c.Request().Context(), a, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

// CreateRoom handles POST /rooms with body {"roomNumber": "...",
// "capacity": n}.  It returns 201 with the new, empty room.  A room number
// already in use (compared case-insensitively) answers 409.
func (h *Handler) CreateRoom(c echo.Context) error {
	// bind request body; validation happens in the service
	var body roomBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	a, err := h.actor(c)
	if err != nil {
		return h.fail(c, err)
	}
	room, err := h.svc.Rooms.CreateRoom(c.Request().Context(), a, body.RoomNumber, body.Capacity)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, room)
}

// UpdateRoom handles PUT /rooms/:id.  Capacity may not drop below the
// current occupant count; that case answers 409 and nothing changes.
func (h *Handler) UpdateRoom(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid room id")
	}
	var body roomBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	a, err := h.actor(c)
	if err != nil {
		return h.fail(c, err)
	}
	room, err := h.svc.Rooms.UpdateRoom(c.Request().Context(), a, id, body.RoomNumber, body.Capacity)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

// DeleteRoom handles DELETE /rooms/:id.
func (h *Handler) DeleteRoom(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid room id")
	}
	a, err := h.actor(c)
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.svc.Rooms.DeleteRoom(c.Request().Context(), a, id); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Allocate handles PUT /rooms/:roomId/allocate/:studentId.
func (h *Handler) Allocate(c echo.Context) error {
	roomID, ok := pathID(c, "roomId")
	if !ok {
		return badRequest(c, "invalid room id")
	}
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return badRequest(c, "invalid student id")
	}
	a, err := h.actor(c)
	if err != nil {
		return h.fail(c, err)
	}
	room, err := h.svc.Allocation.Allocate(c.Request().Context(), a, roomID, studentID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

// DeallocateStudent handles PUT /rooms/:roomId/deallocate/:studentId.
func (h *Handler) DeallocateStudent(c echo.Context) error {
	roomID, ok := pathID(c, "roomId")
	if !ok {
		return badRequest(c, "invalid room id")
	}
	studentID, ok := pathID(c, "studentId")
	if !ok {
		return badRequest(c, "invalid student id")
	}
	a, err := h.actor(c)
	if err != nil {
		return h.fail(c, err)
	}
	ctx := c.Request().Context()
	if err := h.svc.Allocation.DeallocateStudent(ctx, a, roomID, studentID); err != nil {
		return h.fail(c, err)
	}
	room, err := h.svc.Rooms.GetRoom(ctx, a, roomID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

// DeallocateAll handles PUT /rooms/:roomId/deallocate.
func (h *Handler) DeallocateAll(c echo.Context) error {
	roomID, ok := pathID(c, "roomId")
	if !ok {
		return badRequest(c, "invalid room id")
	}
	a, err := h.actor(c)
	if err != nil {
		return h.fail(c, err)
	}
	removed, err := h.svc.Allocation.DeallocateAll(c.Request().Context(), a, roomID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"roomId": roomID, "removedStudentIds": removed})
}
