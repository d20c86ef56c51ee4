// Package memory is an in-process implementation of store.Store.  It keeps
// every table in maps keyed by id and runs each transaction against a private
// copy of the tables, swapping it in on commit.  Transactions are serialized
// by a single writer lock, which makes them trivially serializable; readers
// outside a transaction see the last committed state.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/iliyamo/hostel-management/internal/model"
	"github.com/iliyamo/hostel-management/internal/store"
)

type roomRow struct {
	number    string
	capacity  model.Capacity
	occupants map[uint64]struct{}
}

type tables struct {
	nextRoom, nextStudent, nextBooking, nextMaintenance uint64

	rooms       map[uint64]*roomRow
	students    map[uint64]model.Student
	bookings    map[uint64]model.BookingRequest
	maintenance map[uint64]model.MaintenanceRequest
}

func newTables() *tables {
	return &tables{
		rooms:       make(map[uint64]*roomRow),
		students:    make(map[uint64]model.Student),
		bookings:    make(map[uint64]model.BookingRequest),
		maintenance: make(map[uint64]model.MaintenanceRequest),
	}
}

func (t *tables) clone() *tables {
	c := &tables{
		nextRoom:        t.nextRoom,
		nextStudent:     t.nextStudent,
		nextBooking:     t.nextBooking,
		nextMaintenance: t.nextMaintenance,
		rooms:           make(map[uint64]*roomRow, len(t.rooms)),
		students:        make(map[uint64]model.Student, len(t.students)),
		bookings:        make(map[uint64]model.BookingRequest, len(t.bookings)),
		maintenance:     make(map[uint64]model.MaintenanceRequest, len(t.maintenance)),
	}
	for id, r := range t.rooms {
		occ := make(map[uint64]struct{}, len(r.occupants))
		for sid := range r.occupants {
			occ[sid] = struct{}{}
		}
		c.rooms[id] = &roomRow{number: r.number, capacity: r.capacity, occupants: occ}
	}
	for id, s := range t.students {
		c.students[id] = s
	}
	for id, b := range t.bookings {
		c.bookings[id] = b
	}
	for id, m := range t.maintenance {
		c.maintenance[id] = m
	}
	return c
}

// Store is a concurrency-safe in-memory record store.
type Store struct {
	mu sync.RWMutex
	t  *tables
}

// New returns an empty Store.
func New() *Store { return &Store{t: newTables()} }

// AddStudent registers a student record, standing in for the external
// registration flow.  A zero ID is assigned the next free id.  The
// student's RoomID is ignored; rooms are bound only through allocation.
func (s *Store) AddStudent(st model.Student) model.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.t.clone()
	if st.ID == 0 {
		t.nextStudent++
		st.ID = t.nextStudent
	} else if st.ID > t.nextStudent {
		t.nextStudent = st.ID
	}
	st.RoomID = nil
	st.RoomNumber = nil
	t.students[st.ID] = st
	s.t = t
	return st
}

// WithTx implements store.Store.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &memTx{t: s.t.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	s.t = tx.t
	return nil
}

// read returns the committed tables.  Committed tables are never mutated in
// place (writers work on a clone and swap), so callers may use the snapshot
// after the lock is released.
func (s *Store) read() *tables {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.t
}

func (s *Store) GetRoom(ctx context.Context, id uint64) (*model.Room, error) {
	return s.read().getRoom(id)
}

func (s *Store) ListRooms(ctx context.Context, f model.RoomFilter) ([]model.Room, error) {
	return s.read().listRooms(f), nil
}

func (s *Store) GetStudent(ctx context.Context, id uint64) (*model.Student, error) {
	return s.read().getStudent(id)
}

func (s *Store) GetStudentByUserID(ctx context.Context, userID uint64) (*model.Student, error) {
	return s.read().getStudentByUserID(userID)
}

func (s *Store) ListStudents(ctx context.Context, f model.StudentFilter) ([]model.Student, error) {
	return s.read().listStudents(f), nil
}

func (s *Store) GetBooking(ctx context.Context, id uint64) (*model.BookingRequest, error) {
	return s.read().getBooking(id)
}

func (s *Store) ListBookings(ctx context.Context, f model.RequestFilter) ([]model.BookingRequest, error) {
	return s.read().listBookings(f), nil
}

func (s *Store) GetMaintenance(ctx context.Context, id uint64) (*model.MaintenanceRequest, error) {
	return s.read().getMaintenance(id)
}

func (s *Store) ListMaintenance(ctx context.Context, f model.RequestFilter) ([]model.MaintenanceRequest, error) {
	return s.read().listMaintenance(f), nil
}

// read helpers shared by Store and memTx

func (t *tables) roomModel(id uint64, r *roomRow) model.Room {
	occ := make([]uint64, 0, len(r.occupants))
	for sid := range r.occupants {
		occ = append(occ, sid)
	}
	sort.Slice(occ, func(i, j int) bool { return occ[i] < occ[j] })
	return model.Room{ID: id, Number: r.number, Capacity: r.capacity, OccupantIDs: occ}
}

func (t *tables) getRoom(id uint64) (*model.Room, error) {
	r, ok := t.rooms[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	m := t.roomModel(id, r)
	return &m, nil
}

func (t *tables) listRooms(f model.RoomFilter) []model.Room {
	out := make([]model.Room, 0, len(t.rooms))
	for id, r := range t.rooms {
		if m := t.roomModel(id, r); f.Match(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (t *tables) studentModel(s model.Student) model.Student {
	if s.RoomID != nil {
		id := *s.RoomID
		s.RoomID = &id
		if r, ok := t.rooms[id]; ok {
			num := r.number
			s.RoomNumber = &num
		}
	}
	return s
}

func (t *tables) getStudent(id uint64) (*model.Student, error) {
	s, ok := t.students[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	m := t.studentModel(s)
	return &m, nil
}

func (t *tables) getStudentByUserID(userID uint64) (*model.Student, error) {
	for _, s := range t.students {
		if s.UserID == userID {
			m := t.studentModel(s)
			return &m, nil
		}
	}
	return nil, store.ErrNotFound
}

func (t *tables) listStudents(f model.StudentFilter) []model.Student {
	out := make([]model.Student, 0, len(t.students))
	for _, s := range t.students {
		if m := t.studentModel(s); f.Match(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// bookingModel and maintenanceModel fill the display fields the MySQL
// store joins in.
func (t *tables) bookingModel(b model.BookingRequest) model.BookingRequest {
	b.StudentName = t.students[b.StudentID].Name
	return b
}

func (t *tables) maintenanceModel(m model.MaintenanceRequest) model.MaintenanceRequest {
	m.StudentName = t.students[m.StudentID].Name
	m.RoomNumber = nil
	if m.RoomID != nil {
		id := *m.RoomID
		m.RoomID = &id
		if r, ok := t.rooms[id]; ok {
			num := r.number
			m.RoomNumber = &num
		}
	}
	return m
}

func (t *tables) getBooking(id uint64) (*model.BookingRequest, error) {
	b, ok := t.bookings[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	b = t.bookingModel(b)
	return &b, nil
}

// listBookings returns newest first, matching the MySQL ordering.
func (t *tables) listBookings(f model.RequestFilter) []model.BookingRequest {
	out := make([]model.BookingRequest, 0)
	for _, b := range t.bookings {
		if f.MatchBooking(b) {
			out = append(out, t.bookingModel(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (t *tables) getMaintenance(id uint64) (*model.MaintenanceRequest, error) {
	m, ok := t.maintenance[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	m = t.maintenanceModel(m)
	return &m, nil
}

func (t *tables) listMaintenance(f model.RequestFilter) []model.MaintenanceRequest {
	out := make([]model.MaintenanceRequest, 0)
	for _, m := range t.maintenance {
		if f.MatchMaintenance(m) {
			out = append(out, t.maintenanceModel(m))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (t *tables) numberTaken(number string, exceptID uint64) bool {
	for id, r := range t.rooms {
		if id != exceptID && strings.EqualFold(r.number, number) {
			return true
		}
	}
	return false
}
