package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/hostel-management/internal/model"
	"github.com/iliyamo/hostel-management/internal/store"
)

// repoSet groups the per-table repos bound to one querier and implements
// store.Reader on top of them.
type repoSet struct {
	rooms       *RoomRepo
	students    *StudentRepo
	bookings    *BookingRepo
	maintenance *MaintenanceRepo
}

func newRepoSet(q querier) repoSet {
	return repoSet{
		rooms:       &RoomRepo{db: q},
		students:    &StudentRepo{db: q},
		bookings:    &BookingRepo{db: q},
		maintenance: &MaintenanceRepo{db: q},
	}
}

func (s repoSet) GetRoom(ctx context.Context, id uint64) (*model.Room, error) {
	return s.rooms.GetByID(ctx, id)
}

func (s repoSet) ListRooms(ctx context.Context, f model.RoomFilter) ([]model.Room, error) {
	return s.rooms.List(ctx, f)
}

func (s repoSet) GetStudent(ctx context.Context, id uint64) (*model.Student, error) {
	return s.students.GetByID(ctx, id)
}

func (s repoSet) GetStudentByUserID(ctx context.Context, userID uint64) (*model.Student, error) {
	return s.students.GetByUserID(ctx, userID)
}

func (s repoSet) ListStudents(ctx context.Context, f model.StudentFilter) ([]model.Student, error) {
	return s.students.List(ctx, f)
}

func (s repoSet) GetBooking(ctx context.Context, id uint64) (*model.BookingRequest, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s repoSet) ListBookings(ctx context.Context, f model.RequestFilter) ([]model.BookingRequest, error) {
	return s.bookings.List(ctx, f)
}

func (s repoSet) GetMaintenance(ctx context.Context, id uint64) (*model.MaintenanceRequest, error) {
	return s.maintenance.GetByID(ctx, id)
}

func (s repoSet) ListMaintenance(ctx context.Context, f model.RequestFilter) ([]model.MaintenanceRequest, error) {
	return s.maintenance.List(ctx, f)
}

// Store implements store.Store on a MySQL pool.
type Store struct {
	repoSet
	db *sql.DB
}

// NewStore returns a Store bound to db.
func NewStore(db *sql.DB) *Store {
	return &Store{repoSet: newRepoSet(db), db: db}
}

// DB exposes the underlying pool for health checks.
func (s *Store) DB() *sql.DB { return s.db }

// WithTx begins a transaction, runs fn and commits when fn succeeds.  Any
// error from fn, or a panic, rolls the transaction back.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&sqlTx{repoSet: newRepoSet(tx)}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// sqlTx implements store.Tx on a *sql.Tx.
type sqlTx struct {
	repoSet
}

func (t *sqlTx) LockRoom(ctx context.Context, id uint64) (*model.Room, error) {
	return t.rooms.GetByIDForUpdate(ctx, id)
}

func (t *sqlTx) LockStudent(ctx context.Context, id uint64) (*model.Student, error) {
	return t.students.GetByIDForUpdate(ctx, id)
}

func (t *sqlTx) LockBooking(ctx context.Context, id uint64) (*model.BookingRequest, error) {
	return t.bookings.GetByIDForUpdate(ctx, id)
}

func (t *sqlTx) LockPendingBookings(ctx context.Context, studentID uint64) ([]model.BookingRequest, error) {
	return t.bookings.PendingForUpdate(ctx, studentID)
}

func (t *sqlTx) InsertRoom(ctx context.Context, r *model.Room) error { return t.rooms.Create(ctx, r) }
func (t *sqlTx) UpdateRoom(ctx context.Context, r *model.Room) error { return t.rooms.Update(ctx, r) }
func (t *sqlTx) DeleteRoom(ctx context.Context, id uint64) error     { return t.rooms.Delete(ctx, id) }

func (t *sqlTx) SetStudentRoom(ctx context.Context, studentID uint64, roomID *uint64) error {
	return t.students.SetRoom(ctx, studentID, roomID)
}

func (t *sqlTx) InsertBooking(ctx context.Context, b *model.BookingRequest) error {
	return t.bookings.Create(ctx, b)
}

func (t *sqlTx) UpdateBooking(ctx context.Context, b *model.BookingRequest) error {
	return t.bookings.Update(ctx, b)
}

func (t *sqlTx) DeleteBooking(ctx context.Context, id uint64) error {
	return t.bookings.Delete(ctx, id)
}

func (t *sqlTx) InsertMaintenance(ctx context.Context, m *model.MaintenanceRequest) error {
	return t.maintenance.Create(ctx, m)
}

func (t *sqlTx) UpdateMaintenance(ctx context.Context, m *model.MaintenanceRequest) error {
	return t.maintenance.Update(ctx, m)
}

func (t *sqlTx) DeleteMaintenance(ctx context.Context, id uint64) error {
	return t.maintenance.Delete(ctx, id)
}

var (
	_ store.Store = (*Store)(nil)
	_ store.Tx    = (*sqlTx)(nil)
)
