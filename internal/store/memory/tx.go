package memory

import (
	"context"
	"strings"

	"github.com/iliyamo/hostel-management/internal/model"
	"github.com/iliyamo/hostel-management/internal/store"
)

// memTx works on a private clone of the tables.  The owning Store holds its
// writer lock for the lifetime of the transaction, so Lock* methods are plain
// reads.
type memTx struct {
	t *tables
}

func (x *memTx) GetRoom(ctx context.Context, id uint64) (*model.Room, error) {
	return x.t.getRoom(id)
}

func (x *memTx) ListRooms(ctx context.Context, f model.RoomFilter) ([]model.Room, error) {
	return x.t.listRooms(f), nil
}

func (x *memTx) GetStudent(ctx context.Context, id uint64) (*model.Student, error) {
	return x.t.getStudent(id)
}

func (x *memTx) GetStudentByUserID(ctx context.Context, userID uint64) (*model.Student, error) {
	return x.t.getStudentByUserID(userID)
}

func (x *memTx) ListStudents(ctx context.Context, f model.StudentFilter) ([]model.Student, error) {
	return x.t.listStudents(f), nil
}

func (x *memTx) GetBooking(ctx context.Context, id uint64) (*model.BookingRequest, error) {
	return x.t.getBooking(id)
}

func (x *memTx) ListBookings(ctx context.Context, f model.RequestFilter) ([]model.BookingRequest, error) {
	return x.t.listBookings(f), nil
}

func (x *memTx) GetMaintenance(ctx context.Context, id uint64) (*model.MaintenanceRequest, error) {
	return x.t.getMaintenance(id)
}

func (x *memTx) ListMaintenance(ctx context.Context, f model.RequestFilter) ([]model.MaintenanceRequest, error) {
	return x.t.listMaintenance(f), nil
}

func (x *memTx) LockRoom(ctx context.Context, id uint64) (*model.Room, error) {
	return x.t.getRoom(id)
}

func (x *memTx) LockStudent(ctx context.Context, id uint64) (*model.Student, error) {
	return x.t.getStudent(id)
}

func (x *memTx) LockBooking(ctx context.Context, id uint64) (*model.BookingRequest, error) {
	return x.t.getBooking(id)
}

func (x *memTx) LockPendingBookings(ctx context.Context, studentID uint64) ([]model.BookingRequest, error) {
	return x.t.listBookings(model.RequestFilter{StudentID: &studentID, Status: string(model.BookingPending)}), nil
}

func (x *memTx) InsertRoom(ctx context.Context, r *model.Room) error {
	number := strings.TrimSpace(r.Number)
	if x.t.numberTaken(number, 0) {
		return store.ErrDuplicate
	}
	x.t.nextRoom++
	r.ID = x.t.nextRoom
	r.Number = number
	r.OccupantIDs = []uint64{}
	x.t.rooms[r.ID] = &roomRow{number: number, capacity: r.Capacity, occupants: map[uint64]struct{}{}}
	return nil
}

// UpdateRoom changes number and capacity only; occupants are untouched.
func (x *memTx) UpdateRoom(ctx context.Context, r *model.Room) error {
	row, ok := x.t.rooms[r.ID]
	if !ok {
		return store.ErrNotFound
	}
	number := strings.TrimSpace(r.Number)
	if x.t.numberTaken(number, r.ID) {
		return store.ErrDuplicate
	}
	row.number = number
	row.capacity = r.Capacity
	return nil
}

// DeleteRoom removes the room row.  Callers guarantee the room is empty;
// any remaining occupant would be left pointing at a missing room, so the
// store refuses instead.  Maintenance requests filed against the room keep
// their history with a nil room, like ON DELETE SET NULL.
func (x *memTx) DeleteRoom(ctx context.Context, id uint64) error {
	row, ok := x.t.rooms[id]
	if !ok {
		return store.ErrNotFound
	}
	if len(row.occupants) > 0 {
		return store.ErrInUse
	}
	delete(x.t.rooms, id)
	for mid, m := range x.t.maintenance {
		if m.RoomID != nil && *m.RoomID == id {
			m.RoomID = nil
			x.t.maintenance[mid] = m
		}
	}
	return nil
}

func (x *memTx) SetStudentRoom(ctx context.Context, studentID uint64, roomID *uint64) error {
	s, ok := x.t.students[studentID]
	if !ok {
		return store.ErrNotFound
	}
	var target *roomRow
	if roomID != nil {
		if target, ok = x.t.rooms[*roomID]; !ok {
			return store.ErrNotFound
		}
	}
	if s.RoomID != nil {
		if prev, ok := x.t.rooms[*s.RoomID]; ok {
			delete(prev.occupants, studentID)
		}
	}
	if target != nil {
		target.occupants[studentID] = struct{}{}
		id := *roomID
		s.RoomID = &id
	} else {
		s.RoomID = nil
	}
	x.t.students[studentID] = s
	return nil
}

func (x *memTx) InsertBooking(ctx context.Context, b *model.BookingRequest) error {
	x.t.nextBooking++
	b.ID = x.t.nextBooking
	row := *b
	row.StudentName = ""
	x.t.bookings[b.ID] = row
	return nil
}

func (x *memTx) UpdateBooking(ctx context.Context, b *model.BookingRequest) error {
	if _, ok := x.t.bookings[b.ID]; !ok {
		return store.ErrNotFound
	}
	row := *b
	row.StudentName = ""
	x.t.bookings[b.ID] = row
	return nil
}

func (x *memTx) DeleteBooking(ctx context.Context, id uint64) error {
	if _, ok := x.t.bookings[id]; !ok {
		return store.ErrNotFound
	}
	delete(x.t.bookings, id)
	return nil
}

func (x *memTx) InsertMaintenance(ctx context.Context, m *model.MaintenanceRequest) error {
	if m.RoomID != nil {
		if _, ok := x.t.rooms[*m.RoomID]; !ok {
			return store.ErrNotFound
		}
	}
	x.t.nextMaintenance++
	m.ID = x.t.nextMaintenance
	x.t.maintenance[m.ID] = maintenanceRow(*m)
	return nil
}

func (x *memTx) UpdateMaintenance(ctx context.Context, m *model.MaintenanceRequest) error {
	if _, ok := x.t.maintenance[m.ID]; !ok {
		return store.ErrNotFound
	}
	x.t.maintenance[m.ID] = maintenanceRow(*m)
	return nil
}

func (x *memTx) DeleteMaintenance(ctx context.Context, id uint64) error {
	if _, ok := x.t.maintenance[id]; !ok {
		return store.ErrNotFound
	}
	delete(x.t.maintenance, id)
	return nil
}

// maintenanceRow strips the joined display fields before storing.
func maintenanceRow(m model.MaintenanceRequest) model.MaintenanceRequest {
	m.StudentName = ""
	m.RoomNumber = nil
	return m
}

var (
	_ store.Store = (*Store)(nil)
	_ store.Tx    = (*memTx)(nil)
)
