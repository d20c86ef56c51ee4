package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/iliyamo/hostel-management/internal/model"
)

// Dashboard section names, used as keys of the Failures map.
const (
	SectionRooms       = "rooms"
	SectionStudents    = "students"
	SectionBookings    = "bookings"
	SectionMaintenance = "maintenance"
	SectionProfile     = "profile"
)

// OccupancyStats summarizes the room inventory.  AvailableRooms counts
// rooms with at least one free bed.
type OccupancyStats struct {
	TotalRooms     int `json:"totalRooms"`
	OccupiedRooms  int `json:"occupiedRooms"`
	AvailableRooms int `json:"availableRooms"`
	FullRooms      int `json:"fullRooms"`
	TotalBeds      int `json:"totalBeds"`
	UsedBeds       int `json:"usedBeds"`
}

// StudentStats counts students and those without a room.
type StudentStats struct {
	Total      int `json:"total"`
	Unassigned int `json:"unassigned"`
}

// RequestStats counts requests by status.  Every status is present, zero
// or not.
type RequestStats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
}

// AdminOverview is the admin dashboard.  A section that could not be
// loaded is nil and its error text is in Failures.
type AdminOverview struct {
	Occupancy   *OccupancyStats   `json:"occupancy"`
	Students    *StudentStats     `json:"students"`
	Bookings    *RequestStats     `json:"bookings"`
	Maintenance *RequestStats     `json:"maintenance"`
	Failures    map[string]string `json:"failures,omitempty"`
}

// StudentOverview is a student's own dashboard.
type StudentOverview struct {
	Profile     *model.Student             `json:"profile"`
	Room        *model.Room                `json:"room"`
	Bookings    []model.BookingRequest     `json:"bookings"`
	Maintenance []model.MaintenanceRequest `json:"maintenance"`
	Failures    map[string]string          `json:"failures,omitempty"`
}

// DashboardService builds read-only projections.  Sections load
// concurrently and fail independently.
type DashboardService struct {
	*deps
}

// AdminOverview loads occupancy, student and request counts.
func (s *DashboardService) AdminOverview(ctx context.Context, actor model.Actor) (*AdminOverview, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	out := &AdminOverview{}
	out.Failures = s.load(ctx, map[string]func(context.Context) error{
		SectionRooms: func(ctx context.Context) error {
			rooms, err := s.store.ListRooms(ctx, model.RoomFilter{})
			if err != nil {
				return err
			}
			out.Occupancy = occupancy(rooms)
			return nil
		},
		SectionStudents: func(ctx context.Context) error {
			students, err := s.store.ListStudents(ctx, model.StudentFilter{})
			if err != nil {
				return err
			}
			st := &StudentStats{Total: len(students)}
			for _, x := range students {
				if !x.HasRoom() {
					st.Unassigned++
				}
			}
			out.Students = st
			return nil
		},
		SectionBookings: func(ctx context.Context) error {
			list, err := s.store.ListBookings(ctx, model.RequestFilter{})
			if err != nil {
				return err
			}
			st := &RequestStats{Total: len(list), ByStatus: map[string]int{}}
			for _, v := range model.BookingStatuses() {
				st.ByStatus[string(v)] = 0
			}
			for _, b := range list {
				st.ByStatus[string(b.Status)]++
			}
			out.Bookings = st
			return nil
		},
		SectionMaintenance: func(ctx context.Context) error {
			list, err := s.store.ListMaintenance(ctx, model.RequestFilter{})
			if err != nil {
				return err
			}
			st := &RequestStats{Total: len(list), ByStatus: map[string]int{}}
			for _, v := range model.MaintenanceStatuses() {
				st.ByStatus[string(v)] = 0
			}
			for _, m := range list {
				st.ByStatus[string(m.Status)]++
			}
			out.Maintenance = st
			return nil
		},
	})
	return out, nil
}

// StudentOverview loads the calling student's profile, room and requests.
func (s *DashboardService) StudentOverview(ctx context.Context, actor model.Actor) (*StudentOverview, error) {
	if actor.Role != model.RoleStudent {
		return nil, forbidden("student dashboard is available to students only")
	}
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	id := actor.StudentID
	out := &StudentOverview{}
	out.Failures = s.load(ctx, map[string]func(context.Context) error{
		SectionProfile: func(ctx context.Context) error {
			st, err := s.store.GetStudent(ctx, id)
			if err != nil {
				return lookup(err, "student", id)
			}
			out.Profile = st
			if st.RoomID != nil {
				room, err := s.store.GetRoom(ctx, *st.RoomID)
				if err != nil {
					return lookup(err, "room", *st.RoomID)
				}
				out.Room = room
			}
			return nil
		},
		SectionBookings: func(ctx context.Context) error {
			list, err := s.store.ListBookings(ctx, model.RequestFilter{StudentID: &id})
			if err != nil {
				return err
			}
			out.Bookings = list
			return nil
		},
		SectionMaintenance: func(ctx context.Context) error {
			list, err := s.store.ListMaintenance(ctx, model.RequestFilter{StudentID: &id})
			if err != nil {
				return err
			}
			out.Maintenance = list
			return nil
		},
	})
	return out, nil
}

// load runs every section concurrently and returns the failures by
// section name, or nil when all succeeded.  Each loader writes only its
// own fields.
func (s *DashboardService) load(ctx context.Context, sections map[string]func(context.Context) error) map[string]string {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures map[string]string
	)
	for name, fn := range sections {
		wg.Add(1)
		go func(name string, fn func(context.Context) error) {
			defer wg.Done()
			if err := fn(ctx); err != nil {
				s.log.Warn("dashboard section failed", zap.String("section", name), zap.Error(err))
				mu.Lock()
				if failures == nil {
					failures = map[string]string{}
				}
				failures[name] = err.Error()
				mu.Unlock()
			}
		}(name, fn)
	}
	wg.Wait()
	return failures
}

func occupancy(rooms []model.Room) *OccupancyStats {
	st := &OccupancyStats{TotalRooms: len(rooms)}
	for _, r := range rooms {
		st.TotalBeds += int(r.Capacity)
		st.UsedBeds += len(r.OccupantIDs)
		if r.Occupied() {
			st.OccupiedRooms++
		}
		if r.Full() {
			st.FullRooms++
		} else {
			st.AvailableRooms++
		}
	}
	return st
}
