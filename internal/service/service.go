// Package service holds the hostel core: the room registry, the student
// directory, the allocation engine, the booking and maintenance request
// workflows and the dashboard projections.  Every operation takes the
// calling model.Actor and enforces role rules itself, so the HTTP layer only
// authenticates.  Writes run inside store transactions; the allocation
// engine is the only code that binds or unbinds a student and a room.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/hostel-management/internal/model"
	"github.com/iliyamo/hostel-management/internal/queue"
	"github.com/iliyamo/hostel-management/internal/store"
)

// EventPublisher receives domain events after their transaction commits.
// *queue.Publisher satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, queue.Event) error { return nil }

// Option customizes New.
type Option func(*deps)

// WithPublisher sends domain events to p.
func WithPublisher(p EventPublisher) Option {
	return func(d *deps) {
		if p != nil {
			d.events = p
		}
	}
}

// WithLogger sets the logger used for best-effort side effects.
func WithLogger(l *zap.Logger) Option {
	return func(d *deps) {
		if l != nil {
			d.log = l
		}
	}
}

// WithClock overrides the time source for request timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *deps) {
		if now != nil {
			d.now = now
		}
	}
}

type deps struct {
	store  store.Store
	events EventPublisher
	log    *zap.Logger
	now    func() time.Time
}

// publish sends ev after a commit.  Failures are logged and never reach
// the caller: the state change has already happened.
func (d *deps) publish(ctx context.Context, actor model.Actor, ev queue.Event) {
	ev.ActorUserID = actor.UserID
	ev.ActorRole = actor.Role
	ev.OccurredAt = d.now()
	if err := d.events.Publish(ctx, ev); err != nil {
		d.log.Warn("event not published", zap.String("type", ev.Type), zap.Error(err))
	}
}

// Services bundles the components sharing one store.
type Services struct {
	Rooms       *RoomService
	Students    *StudentService
	Allocation  *AllocationService
	Bookings    *BookingService
	Maintenance *MaintenanceService
	Dashboard   *DashboardService
}

// New wires every component on top of st.  It panics when st is nil.
func New(st store.Store, opts ...Option) *Services {
	if st == nil {
		panic("nil store passed to service.New")
	}
	d := &deps{
		store:  st,
		events: nopPublisher{},
		log:    zap.NewNop(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(d)
	}
	alloc := &AllocationService{deps: d}
	return &Services{
		Rooms:       &RoomService{deps: d},
		Students:    &StudentService{deps: d},
		Allocation:  alloc,
		Bookings:    &BookingService{deps: d, alloc: alloc},
		Maintenance: &MaintenanceService{deps: d},
		Dashboard:   &DashboardService{deps: d},
	}
}

func requireAdmin(a model.Actor) error {
	if !a.IsAdmin() {
		return forbidden("admin role required")
	}
	return nil
}

func requireAuthenticated(a model.Actor) error {
	switch a.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleStudent:
		if a.StudentID == 0 {
			return forbidden("no student record linked to user %d", a.UserID)
		}
		return nil
	}
	return forbidden("unknown role %q", a.Role)
}

func requireActFor(a model.Actor, studentID uint64) error {
	if err := requireAuthenticated(a); err != nil {
		return err
	}
	if !a.CanActFor(studentID) {
		return forbidden("cannot act for student %d", studentID)
	}
	return nil
}
