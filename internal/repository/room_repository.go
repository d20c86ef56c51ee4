package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/hostel-management/internal/model"
	"github.com/iliyamo/hostel-management/internal/store"
)

// RoomRepo provides persistence for the rooms table.  A room's occupant
// set is not stored on the row: it is the set of students whose room_id
// points at the room, which keeps the two sides of the link in one column.
type RoomRepo struct {
	db querier
}

// NewRoomRepo returns a RoomRepo bound to the given pool.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

func (r *RoomRepo) get(ctx context.Context, id uint64, lock bool) (*model.Room, error) {
	q := `SELECT id, room_number, capacity FROM rooms WHERE id = ?`
	if lock {
		q += ` FOR UPDATE`
	}
	var room model.Room
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&room.ID, &room.Number, &room.Capacity); err != nil {
		return nil, translate(err)
	}
	occ, err := r.occupants(ctx, id, lock)
	if err != nil {
		return nil, err
	}
	room.OccupantIDs = occ
	return &room, nil
}

// GetByID returns a room with its current occupants, or store.ErrNotFound.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate is GetByID with exclusive row locks on the room and its
// occupant rows.  It must run inside a transaction; the occupant count it
// returns cannot change until the transaction ends.
func (r *RoomRepo) GetByIDForUpdate(ctx context.Context, id uint64) (*model.Room, error) {
	return r.get(ctx, id, true)
}

func (r *RoomRepo) occupants(ctx context.Context, roomID uint64, lock bool) ([]uint64, error) {
	q := `SELECT id FROM students WHERE room_id = ? ORDER BY id`
	if lock {
		q += ` FOR UPDATE`
	}
	rows, err := r.db.QueryContext(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []uint64{}
	for rows.Next() {
		var sid uint64
		if err := rows.Scan(&sid); err != nil {
			return nil, err
		}
		out = append(out, sid)
	}
	return out, rows.Err()
}

// List returns rooms matching the filter ordered by id.  Occupants for all
// returned rooms are loaded with a single follow-up query.
func (r *RoomRepo) List(ctx context.Context, f model.RoomFilter) ([]model.Room, error) {
	having := []string{}
	args := []any{}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		having = append(having, `(LOWER(r.room_number) LIKE ? OR CAST(r.capacity AS CHAR) LIKE ? OR CAST(COUNT(s.id) AS CHAR) LIKE ?)`)
		like := "%" + q + "%"
		args = append(args, like, like, like)
	}
	if f.OnlyAvailable {
		having = append(having, `COUNT(s.id) < r.capacity`)
	}
	query := `SELECT r.id, r.room_number, r.capacity
	          FROM rooms r
	          LEFT JOIN students s ON s.room_id = r.id
	          GROUP BY r.id, r.room_number, r.capacity`
	if len(having) > 0 {
		query += ` HAVING ` + strings.Join(having, " AND ")
	}
	query += ` ORDER BY r.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rooms := make([]model.Room, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var room model.Room
		if err := rows.Scan(&room.ID, &room.Number, &room.Capacity); err != nil {
			return nil, err
		}
		room.OccupantIDs = []uint64{}
		index[room.ID] = len(rooms)
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(rooms) == 0 {
		return rooms, nil
	}

	ids := make([]any, 0, len(rooms))
	placeholders := make([]string, 0, len(rooms))
	for _, room := range rooms {
		ids = append(ids, room.ID)
		placeholders = append(placeholders, "?")
	}
	occQuery := `SELECT room_id, id FROM students
	             WHERE room_id IN (` + strings.Join(placeholders, ",") + `)
	             ORDER BY room_id, id`
	orows, err := r.db.QueryContext(ctx, occQuery, ids...)
	if err != nil {
		return nil, err
	}
	defer orows.Close()
	for orows.Next() {
		var roomID, studentID uint64
		if err := orows.Scan(&roomID, &studentID); err != nil {
			return nil, err
		}
		if i, ok := index[roomID]; ok {
			rooms[i].OccupantIDs = append(rooms[i].OccupantIDs, studentID)
		}
	}
	if err := orows.Err(); err != nil {
		return nil, err
	}
	return rooms, nil
}

// Create inserts a room and sets its generated ID.  A duplicate room
// number yields store.ErrDuplicate.
func (r *RoomRepo) Create(ctx context.Context, room *model.Room) error {
	room.Number = strings.TrimSpace(room.Number)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO rooms (room_number, capacity) VALUES (?, ?)`,
		room.Number, int(room.Capacity))
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	room.ID = uint64(id)
	room.OccupantIDs = []uint64{}
	return nil
}

// Update writes number and capacity.  MySQL reports zero affected rows when
// the values are unchanged, so existence is the caller's responsibility
// (callers lock the row first).
func (r *RoomRepo) Update(ctx context.Context, room *model.Room) error {
	room.Number = strings.TrimSpace(room.Number)
	_, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET room_number = ?, capacity = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		room.Number, int(room.Capacity), room.ID)
	return translate(err)
}

// Delete removes a room.  The students.room_id foreign key makes MySQL
// refuse to delete an occupied room, reported as store.ErrInUse.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}
