package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/hostel-management/internal/model"
)

// StudentRepo reads student records joined with their user profile and
// current room, and writes the students.room_id column.  Student rows are
// created by the registration service, never here.
type StudentRepo struct {
	db querier
}

// NewStudentRepo returns a StudentRepo bound to the given pool.
func NewStudentRepo(db *sql.DB) *StudentRepo { return &StudentRepo{db: db} }

const studentSelect = `SELECT s.id, s.user_id, u.name, u.email, s.room_id, r.room_number
                       FROM students s
                       JOIN users u ON u.id = s.user_id
                       LEFT JOIN rooms r ON r.id = s.room_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(sc rowScanner) (model.Student, error) {
	var (
		st         model.Student
		roomID     sql.NullInt64
		roomNumber sql.NullString
	)
	if err := sc.Scan(&st.ID, &st.UserID, &st.Name, &st.Email, &roomID, &roomNumber); err != nil {
		return st, err
	}
	if roomID.Valid {
		id := uint64(roomID.Int64)
		st.RoomID = &id
	}
	if roomNumber.Valid {
		n := roomNumber.String
		st.RoomNumber = &n
	}
	return st, nil
}

// GetByID returns a student or store.ErrNotFound.
func (r *StudentRepo) GetByID(ctx context.Context, id uint64) (*model.Student, error) {
	st, err := scanStudent(r.db.QueryRowContext(ctx, studentSelect+` WHERE s.id = ?`, id))
	if err != nil {
		return nil, translate(err)
	}
	return &st, nil
}

// GetByIDForUpdate locks the student row (only the students table) for the
// rest of the transaction.
func (r *StudentRepo) GetByIDForUpdate(ctx context.Context, id uint64) (*model.Student, error) {
	st, err := scanStudent(r.db.QueryRowContext(ctx, studentSelect+` WHERE s.id = ? FOR UPDATE OF s`, id))
	if err != nil {
		return nil, translate(err)
	}
	return &st, nil
}

// GetByUserID maps an auth user id to its student record.
func (r *StudentRepo) GetByUserID(ctx context.Context, userID uint64) (*model.Student, error) {
	st, err := scanStudent(r.db.QueryRowContext(ctx, studentSelect+` WHERE s.user_id = ? LIMIT 1`, userID))
	if err != nil {
		return nil, translate(err)
	}
	return &st, nil
}

// List returns students matching the filter ordered by id.
func (r *StudentRepo) List(ctx context.Context, f model.StudentFilter) ([]model.Student, error) {
	where := []string{}
	args := []any{}
	if f.Unassigned {
		where = append(where, "s.room_id IS NULL")
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		where = append(where, "(LOWER(u.name) LIKE ? OR LOWER(u.email) LIKE ? OR LOWER(r.room_number) LIKE ?)")
		like := "%" + q + "%"
		args = append(args, like, like, like)
	}
	query := studentSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY s.id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Student, 0)
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// SetRoom writes students.room_id; nil clears it.  Because a room's
// occupant set is derived from this column, one UPDATE changes both
// sides of the room/student link.
func (r *StudentRepo) SetRoom(ctx context.Context, studentID uint64, roomID *uint64) error {
	var arg any
	if roomID != nil {
		arg = *roomID
	}
	res, err := r.db.ExecContext(ctx, `UPDATE students SET room_id = ? WHERE id = ?`, arg, studentID)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// zero rows also happens when room_id already had this value
		var exists int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM students WHERE id = ?`, studentID).Scan(&exists); err != nil {
			return translate(err)
		}
	}
	return nil
}
