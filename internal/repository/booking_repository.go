package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/hostel-management/internal/model"
	"github.com/iliyamo/hostel-management/internal/store"
)

// BookingRepo provides persistence for booking_requests.  room_number and
// room_capacity are snapshots written once at insert; the student name is
// joined from users on every read.  All timestamps are stored in UTC.
type BookingRepo struct {
	db querier
}

// NewBookingRepo returns a BookingRepo bound to the given pool.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingSelect = `SELECT b.id, b.student_id, u.name, b.room_id, b.room_number, b.room_capacity,
                              b.status, b.admin_remarks, b.created_at, b.resolved_at
                       FROM booking_requests b
                       JOIN students s ON s.id = b.student_id
                       JOIN users u ON u.id = s.user_id`

func scanBooking(sc rowScanner) (model.BookingRequest, error) {
	var (
		b        model.BookingRequest
		remarks  sql.NullString
		resolved sql.NullTime
	)
	if err := sc.Scan(&b.ID, &b.StudentID, &b.StudentName, &b.RoomID, &b.RoomNumber, &b.RoomCapacity, &b.Status,
		&remarks, &b.CreatedAt, &resolved); err != nil {
		return b, err
	}
	if remarks.Valid {
		s := remarks.String
		b.AdminRemarks = &s
	}
	if resolved.Valid {
		t := resolved.Time.UTC()
		b.ResolvedAt = &t
	}
	b.CreatedAt = b.CreatedAt.UTC()
	return b, nil
}

// GetByID returns a booking request or store.ErrNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.BookingRequest, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, bookingSelect+` WHERE b.id = ?`, id))
	if err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

// GetByIDForUpdate locks the request row for the rest of the transaction.
func (r *BookingRepo) GetByIDForUpdate(ctx context.Context, id uint64) (*model.BookingRequest, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, bookingSelect+` WHERE b.id = ? FOR UPDATE OF b`, id))
	if err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

// List returns requests matching the filter, newest first.
func (r *BookingRepo) List(ctx context.Context, f model.RequestFilter) ([]model.BookingRequest, error) {
	where, args := requestWhere("b", f)
	query := bookingSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY b.created_at DESC, b.id DESC"
	return r.query(ctx, query, args...)
}

// PendingForUpdate returns the student's PENDING requests and locks them,
// along with the gap after them, until the transaction ends.
func (r *BookingRepo) PendingForUpdate(ctx context.Context, studentID uint64) ([]model.BookingRequest, error) {
	return r.query(ctx, bookingSelect+` WHERE b.student_id = ? AND b.status = ? ORDER BY b.id FOR UPDATE OF b`,
		studentID, string(model.BookingPending))
}

func (r *BookingRepo) query(ctx context.Context, query string, args ...any) ([]model.BookingRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.BookingRequest, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Create inserts a request and sets its generated ID.
func (r *BookingRepo) Create(ctx context.Context, b *model.BookingRequest) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO booking_requests (student_id, room_id, room_number, room_capacity, status, admin_remarks, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.StudentID, b.RoomID, b.RoomNumber, int(b.RoomCapacity), string(b.Status), b.AdminRemarks, b.CreatedAt.UTC())
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// Update writes the mutable fields: status, remarks and resolution time.
func (r *BookingRepo) Update(ctx context.Context, b *model.BookingRequest) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE booking_requests SET status = ?, admin_remarks = ?, resolved_at = ? WHERE id = ?`,
		string(b.Status), b.AdminRemarks, b.ResolvedAt, b.ID)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return r.mustExist(ctx, b.ID)
	}
	return nil
}

// Delete removes a request.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM booking_requests WHERE id = ?`, id)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *BookingRepo) mustExist(ctx context.Context, id uint64) error {
	var one int
	return translate(r.db.QueryRowContext(ctx, `SELECT 1 FROM booking_requests WHERE id = ?`, id).Scan(&one))
}

// requestWhere builds the shared WHERE clauses for request listings on the
// table aliased as alias.
func requestWhere(alias string, f model.RequestFilter) ([]string, []any) {
	where := []string{}
	args := []any{}
	if f.StudentID != nil {
		where = append(where, alias+".student_id = ?")
		args = append(args, *f.StudentID)
	}
	if f.RoomID != nil {
		where = append(where, alias+".room_id = ?")
		args = append(args, *f.RoomID)
	}
	if f.Status != "" {
		where = append(where, alias+".status = ?")
		args = append(args, f.Status)
	}
	return where, args
}
