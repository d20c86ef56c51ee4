// Package store defines the record store the hostel core runs against.
// Rooms, students and the two request kinds live in independent tables
// keyed by id; the only write to the room<->student cross reference is
// Tx.SetStudentRoom.  Implementations live in internal/repository (MySQL)
// and internal/store/memory.
package store

import (
	"context"
	"errors"

	"github.com/iliyamo/hostel-management/internal/model"
)

// ErrNotFound is returned when a record with the requested id does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert or update violates a unique key
// (room number).
var ErrDuplicate = errors.New("duplicate record")

// ErrInUse is returned when a record cannot be removed because other
// records still reference it (a room with occupants).
var ErrInUse = errors.New("record in use")

// Reader exposes side-effect-free lookups.  Returned rooms carry their
// full occupant set and returned students carry their room number.
type Reader interface {
	GetRoom(ctx context.Context, id uint64) (*model.Room, error)
	ListRooms(ctx context.Context, f model.RoomFilter) ([]model.Room, error)

	GetStudent(ctx context.Context, id uint64) (*model.Student, error)
	GetStudentByUserID(ctx context.Context, userID uint64) (*model.Student, error)
	ListStudents(ctx context.Context, f model.StudentFilter) ([]model.Student, error)

	GetBooking(ctx context.Context, id uint64) (*model.BookingRequest, error)
	ListBookings(ctx context.Context, f model.RequestFilter) ([]model.BookingRequest, error)

	GetMaintenance(ctx context.Context, id uint64) (*model.MaintenanceRequest, error)
	ListMaintenance(ctx context.Context, f model.RequestFilter) ([]model.MaintenanceRequest, error)
}

// Tx is a serializable unit of work.  Reads through a Tx observe the
// transaction's own writes.  Lock* methods take an exclusive lock on the
// record until the transaction ends; callers lock the room before the
// student to keep a single lock order.
type Tx interface {
	Reader

	LockRoom(ctx context.Context, id uint64) (*model.Room, error)
	LockStudent(ctx context.Context, id uint64) (*model.Student, error)
	LockBooking(ctx context.Context, id uint64) (*model.BookingRequest, error)
	// LockPendingBookings returns the student's PENDING requests, locking
	// the matching rows so two submissions cannot both pass the check.
	LockPendingBookings(ctx context.Context, studentID uint64) ([]model.BookingRequest, error)

	InsertRoom(ctx context.Context, r *model.Room) error
	UpdateRoom(ctx context.Context, r *model.Room) error
	DeleteRoom(ctx context.Context, id uint64) error

	// SetStudentRoom binds the student to roomID, or unbinds when roomID
	// is nil, updating both the student's room id and the occupant sets.
	SetStudentRoom(ctx context.Context, studentID uint64, roomID *uint64) error

	InsertBooking(ctx context.Context, b *model.BookingRequest) error
	UpdateBooking(ctx context.Context, b *model.BookingRequest) error
	DeleteBooking(ctx context.Context, id uint64) error

	InsertMaintenance(ctx context.Context, m *model.MaintenanceRequest) error
	UpdateMaintenance(ctx context.Context, m *model.MaintenanceRequest) error
	DeleteMaintenance(ctx context.Context, id uint64) error
}

// Store is the entry point used by the service layer.
type Store interface {
	Reader

	// WithTx runs fn inside a transaction.  The transaction commits when fn
	// returns nil and rolls back otherwise; fn's error is returned as is.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}
