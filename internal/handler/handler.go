// Package handler contains the echo HTTP handlers.  Handlers decode the
// request, build the calling model.Actor from the authenticated context and
// delegate to the service layer; authorization rules live in the services.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/hostel-management/internal/middleware"
	"github.com/iliyamo/hostel-management/internal/model"
	"github.com/iliyamo/hostel-management/internal/service"
)

// Handler serves both the admin and the student API.
type Handler struct {
	svc *service.Services
	log *zap.Logger
}

// NewHandler panics when svc is nil.
func NewHandler(svc *service.Services, log *zap.Logger) *Handler {
	if svc == nil {
		panic("nil services passed to NewHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, log: log}
}

// actor builds the caller from the claims stored by JWTAuth.  Student
// tokens without a student_id claim are resolved through the directory;
// a student with no record gets StudentID 0, which the services refuse.
func (h *Handler) actor(c echo.Context) (model.Actor, error) {
	uid, ok := middleware.UserID(c)
	if !ok {
		return model.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	a := model.Actor{UserID: uid, Role: middleware.Role(c)}
	if a.Role != model.RoleStudent {
		return a, nil
	}
	if sid, ok := middleware.StudentID(c); ok {
		a.StudentID = sid
		return a, nil
	}
	sid, err := h.svc.Students.ResolveStudentID(c.Request().Context(), uid)
	if err != nil && !errors.Is(err, service.ErrNotFound) {
		return a, err
	}
	a.StudentID = sid
	return a, nil
}

// fail writes err as a JSON error with the status its kind maps to.
// Unclassified errors are logged and reported as a bare 500.
func (h *Handler) fail(c echo.Context, err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code := "error"
		if he.Code == http.StatusUnauthorized {
			code = "unauthorized"
		}
		return c.JSON(he.Code, echo.Map{"error": he.Message, "code": code})
	}
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, service.ErrValidation):
		status, code = http.StatusBadRequest, "validation"
	case errors.Is(err, service.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrCapacityExceeded):
		status, code = http.StatusConflict, "capacity_exceeded"
	case errors.Is(err, service.ErrInvalidTransition):
		status, code = http.StatusConflict, "invalid_transition"
	case errors.Is(err, service.ErrConflict):
		status, code = http.StatusConflict, "conflict"
	case errors.Is(err, service.ErrForbidden):
		status, code = http.StatusForbidden, "forbidden"
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("route", c.Path()),
			zap.Error(err))
		msg = "internal server error"
	}
	return c.JSON(status, echo.Map{"error": msg, "code": code})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg, "code": "validation"})
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// queryID parses an optional numeric query parameter.
func queryID(c echo.Context, name string) (*uint64, bool) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, false
	}
	return &id, true
}

func queryBool(c echo.Context, name string) bool {
	b, _ := strconv.ParseBool(c.QueryParam(name))
	return b
}

// requestFilter reads ?studentId=&roomId=&status= for request listings.
func requestFilter(c echo.Context) (model.RequestFilter, bool) {
	sid, ok := queryID(c, "studentId")
	if !ok {
		return model.RequestFilter{}, false
	}
	rid, ok := queryID(c, "roomId")
	if !ok {
		return model.RequestFilter{}, false
	}
	return model.RequestFilter{StudentID: sid, RoomID: rid, Status: c.QueryParam("status")}, true
}
