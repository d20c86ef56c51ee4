package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/hostel-management/internal/model"
	"github.com/iliyamo/hostel-management/internal/store"
)

// MaintenanceRepo provides persistence for maintenance_requests.  Reads join
// the student name and the current room number; a deleted room leaves
// room_id NULL.
type MaintenanceRepo struct {
	db querier
}

// NewMaintenanceRepo returns a MaintenanceRepo bound to the given pool.
func NewMaintenanceRepo(db *sql.DB) *MaintenanceRepo { return &MaintenanceRepo{db: db} }

const maintenanceSelect = `SELECT m.id, m.student_id, u.name, m.room_id, r.room_number, m.description,
                                  m.status, m.admin_remarks, m.created_at, m.resolved_at
                           FROM maintenance_requests m
                           JOIN students s ON s.id = m.student_id
                           JOIN users u ON u.id = s.user_id
                           LEFT JOIN rooms r ON r.id = m.room_id`

func scanMaintenance(sc rowScanner) (model.MaintenanceRequest, error) {
	var (
		m        model.MaintenanceRequest
		roomID   sql.NullInt64
		roomNum  sql.NullString
		remarks  sql.NullString
		resolved sql.NullTime
	)
	if err := sc.Scan(&m.ID, &m.StudentID, &m.StudentName, &roomID, &roomNum, &m.Description, &m.Status,
		&remarks, &m.CreatedAt, &resolved); err != nil {
		return m, err
	}
	if roomID.Valid {
		id := uint64(roomID.Int64)
		m.RoomID = &id
	}
	if roomNum.Valid {
		n := roomNum.String
		m.RoomNumber = &n
	}
	if remarks.Valid {
		s := remarks.String
		m.AdminRemarks = &s
	}
	if resolved.Valid {
		t := resolved.Time.UTC()
		m.ResolvedAt = &t
	}
	m.CreatedAt = m.CreatedAt.UTC()
	return m, nil
}

// GetByID returns a maintenance request or store.ErrNotFound.
func (r *MaintenanceRepo) GetByID(ctx context.Context, id uint64) (*model.MaintenanceRequest, error) {
	m, err := scanMaintenance(r.db.QueryRowContext(ctx, maintenanceSelect+` WHERE m.id = ?`, id))
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

// List returns requests matching the filter, newest first.
func (r *MaintenanceRepo) List(ctx context.Context, f model.RequestFilter) ([]model.MaintenanceRequest, error) {
	where, args := requestWhere("m", f)
	query := maintenanceSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY m.created_at DESC, m.id DESC"
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.MaintenanceRequest, 0)
	for rows.Next() {
		m, err := scanMaintenance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Create inserts a request and sets its generated ID.  A room_id that no
// longer exists fails the foreign key and yields store.ErrNotFound.
func (r *MaintenanceRepo) Create(ctx context.Context, m *model.MaintenanceRequest) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO maintenance_requests (student_id, room_id, description, status, admin_remarks, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.StudentID, m.RoomID, m.Description, string(m.Status), m.AdminRemarks, m.CreatedAt.UTC())
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// Update writes status, remarks and resolution time.
func (r *MaintenanceRepo) Update(ctx context.Context, m *model.MaintenanceRequest) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE maintenance_requests SET status = ?, admin_remarks = ?, resolved_at = ? WHERE id = ?`,
		string(m.Status), m.AdminRemarks, m.ResolvedAt, m.ID)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		return translate(r.db.QueryRowContext(ctx, `SELECT 1 FROM maintenance_requests WHERE id = ?`, m.ID).Scan(&one))
	}
	return nil
}

// Delete removes a request.
func (r *MaintenanceRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM maintenance_requests WHERE id = ?`, id)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}
