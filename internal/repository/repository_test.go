package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hostel-management/internal/model"
	"github.com/iliyamo/hostel-management/internal/store"
)

var bookingCols = []string{
	"id", "student_id", "name", "room_id", "room_number", "room_capacity", "status",
	"admin_remarks", "created_at", "resolved_at",
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestTranslate(t *testing.T) {
	other := errors.New("boom")
	cases := []struct {
		in   error
		want error
	}{
		{nil, nil},
		{sql.ErrNoRows, store.ErrNotFound},
		{&mysql.MySQLError{Number: errDupEntry}, store.ErrDuplicate},
		{&mysql.MySQLError{Number: errRowIsReferenced}, store.ErrInUse},
		{&mysql.MySQLError{Number: errNoReferencedRow}, store.ErrNotFound},
		{other, other},
	}
	for _, tc := range cases {
		got := translate(tc.in)
		if tc.want == nil {
			assert.NoError(t, got)
			continue
		}
		assert.ErrorIs(t, got, tc.want)
	}
}

func TestRoomGetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRoomRepo(db)

	mock.ExpectQuery(`SELECT id, room_number, capacity FROM rooms WHERE id = \?`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_number", "capacity"}).AddRow(7, "A-101", 2))
	mock.ExpectQuery(`SELECT id FROM students WHERE room_id = \? ORDER BY id`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3).AddRow(9))

	room, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "A-101", room.Number)
	assert.Equal(t, model.Capacity(2), room.Capacity)
	assert.Equal(t, []uint64{3, 9}, room.OccupantIDs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomGetByIDNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRoomRepo(db)

	mock.ExpectQuery(`FROM rooms WHERE id = \?`).WithArgs(8).WillReturnError(sql.ErrNoRows)

	room, err := repo.GetByID(context.Background(), 8)
	assert.Nil(t, room)
	assert.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomForUpdateLocksOccupants(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRoomRepo(db)

	mock.ExpectQuery(`FROM rooms WHERE id = \? FOR UPDATE`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_number", "capacity"}).AddRow(1, "B1", 1))
	mock.ExpectQuery(`FROM students WHERE room_id = \? ORDER BY id FOR UPDATE`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	room, err := repo.GetByIDForUpdate(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, room.OccupantIDs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomListLoadsOccupantsInOneQuery(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRoomRepo(db)

	mock.ExpectQuery(`GROUP BY r.id, r.room_number, r.capacity HAVING COUNT\(s.id\) < r.capacity ORDER BY r.id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_number", "capacity"}).
			AddRow(1, "101", 2).
			AddRow(2, "102", 3))
	mock.ExpectQuery(`WHERE room_id IN \(\?,\?\)`).
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"room_id", "id"}).AddRow(2, 5))

	rooms, err := repo.List(context.Background(), model.RoomFilter{OnlyAvailable: true})
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Empty(t, rooms[0].OccupantIDs)
	assert.Equal(t, []uint64{5}, rooms[1].OccupantIDs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomCreateDuplicate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRoomRepo(db)

	mock.ExpectExec(`INSERT INTO rooms`).
		WithArgs("101", 2).
		WillReturnError(&mysql.MySQLError{Number: errDupEntry, Message: "Duplicate entry '101'"})

	err := repo.Create(context.Background(), &model.Room{Number: " 101 ", Capacity: 2})
	assert.ErrorIs(t, err, store.ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomCreate(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRoomRepo(db)

	mock.ExpectExec(`INSERT INTO rooms`).WithArgs("101", 2).WillReturnResult(sqlmock.NewResult(11, 1))

	room := &model.Room{Number: "101", Capacity: 2}
	require.NoError(t, repo.Create(context.Background(), room))
	assert.Equal(t, uint64(11), room.ID)
	assert.NotNil(t, room.OccupantIDs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomDelete(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRoomRepo(db)

	mock.ExpectExec(`DELETE FROM rooms`).WithArgs(1).
		WillReturnError(&mysql.MySQLError{Number: errRowIsReferenced})
	mock.ExpectExec(`DELETE FROM rooms`).WithArgs(2).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 1), store.ErrInUse)
	assert.ErrorIs(t, repo.Delete(context.Background(), 2), store.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentScan(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewStudentRepo(db)

	cols := []string{"id", "user_id", "name", "email", "room_id", "room_number"}
	mock.ExpectQuery(`WHERE s.user_id = \? LIMIT 1`).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(3, 42, "Ann", "ann@example.com", 7, "A-101"))
	mock.ExpectQuery(`WHERE s.id = \?`).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(4, 43, "Bo", "bo@example.com", nil, nil))

	st, err := repo.GetByUserID(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, st.RoomID)
	assert.Equal(t, uint64(7), *st.RoomID)
	assert.Equal(t, "A-101", *st.RoomNumber)

	st, err = repo.GetByID(context.Background(), 4)
	require.NoError(t, err)
	assert.Nil(t, st.RoomID)
	assert.Nil(t, st.RoomNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentListFilters(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewStudentRepo(db)

	mock.ExpectQuery(`WHERE s.room_id IS NULL AND \(LOWER\(u.name\) LIKE \?`).
		WithArgs("%ann%", "%ann%", "%ann%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "email", "room_id", "room_number"}))

	list, err := repo.List(context.Background(), model.StudentFilter{Query: " Ann ", Unassigned: true})
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentSetRoom(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewStudentRepo(db)
	room := uint64(7)

	mock.ExpectExec(`UPDATE students SET room_id = \? WHERE id = \?`).
		WithArgs(7, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE students SET room_id = \? WHERE id = \?`).
		WithArgs(nil, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// zero rows affected: the row is checked for existence
	mock.ExpectExec(`UPDATE students`).
		WithArgs(nil, 99).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT 1 FROM students WHERE id = \?`).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	ctx := context.Background()
	require.NoError(t, repo.SetRoom(ctx, 3, &room))
	require.NoError(t, repo.SetRoom(ctx, 3, nil))
	assert.ErrorIs(t, repo.SetRoom(ctx, 99, nil), store.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingListAndScan(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBookingRepo(db)
	created := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	resolved := created.Add(time.Hour)

	mock.ExpectQuery(`FROM booking_requests b JOIN students s ON s\.id = b\.student_id JOIN users u ON u\.id = s\.user_id ` +
		`WHERE b\.student_id = \? AND b\.status = \? ORDER BY b\.created_at DESC, b\.id DESC`).
		WithArgs(3, "APPROVED").
		WillReturnRows(sqlmock.NewRows(bookingCols).
			AddRow(5, 3, "Ann", 7, "A-101", 2, "APPROVED", "ok", created, resolved))

	sid := uint64(3)
	list, err := repo.List(context.Background(), model.RequestFilter{StudentID: &sid, Status: "APPROVED"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	b := list[0]
	assert.Equal(t, "Ann", b.StudentName)
	assert.Equal(t, model.BookingApproved, b.Status)
	assert.Equal(t, model.Capacity(2), b.RoomCapacity)
	require.NotNil(t, b.AdminRemarks)
	assert.Equal(t, "ok", *b.AdminRemarks)
	require.NotNil(t, b.ResolvedAt)
	assert.True(t, resolved.Equal(*b.ResolvedAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingPendingForUpdate(t *testing.T) {
	db, mock := setupMockDB(t)
	created := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`WHERE b\.student_id = \? AND b\.status = \? ORDER BY b\.id FOR UPDATE OF b`).
		WithArgs(3, "PENDING").
		WillReturnRows(sqlmock.NewRows(bookingCols).
			AddRow(8, 3, "Ann", 7, "A-101", 2, "PENDING", nil, created, nil))
	mock.ExpectRollback()

	errHeld := errors.New("already pending")
	err := NewStore(db).WithTx(context.Background(), func(tx store.Tx) error {
		pending, err := tx.LockPendingBookings(context.Background(), 3)
		if err != nil {
			return err
		}
		require.Len(t, pending, 1)
		assert.Equal(t, uint64(8), pending[0].ID)
		assert.Nil(t, pending[0].ResolvedAt)
		return errHeld
	})
	assert.ErrorIs(t, err, errHeld)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingUpdateMissing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewBookingRepo(db)

	mock.ExpectExec(`UPDATE booking_requests SET status = \?`).
		WithArgs("REJECTED", nil, nil, 9).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT 1 FROM booking_requests WHERE id = \?`).
		WithArgs(9).
		WillReturnError(sql.ErrNoRows)

	err := repo.Update(context.Background(), &model.BookingRequest{ID: 9, Status: model.BookingRejected})
	assert.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMaintenanceCreateAndList(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMaintenanceRepo(db)
	created := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO maintenance_requests`).
		WithArgs(3, nil, "leaky tap", "PENDING", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectQuery(`LEFT JOIN rooms r ON r\.id = m\.room_id WHERE m\.room_id = \? ORDER BY m\.created_at DESC`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "student_id", "name", "room_id", "room_number", "description", "status", "admin_remarks", "created_at", "resolved_at",
		}).
			AddRow(4, 3, "Ann", 7, "A-101", "leaky tap", "IN_PROGRESS", nil, created, nil).
			AddRow(2, 3, "Ann", nil, nil, "old report", "COMPLETED", nil, created, nil))

	ctx := context.Background()
	m := &model.MaintenanceRequest{StudentID: 3, Description: "leaky tap", Status: model.MaintenancePending, CreatedAt: created}
	require.NoError(t, repo.Create(ctx, m))
	assert.Equal(t, uint64(4), m.ID)

	room := uint64(7)
	list, err := repo.List(ctx, model.RequestFilter{RoomID: &room})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, model.MaintenanceInProgress, list[0].Status)
	assert.Equal(t, "Ann", list[0].StudentName)
	require.NotNil(t, list[0].RoomNumber)
	assert.Equal(t, "A-101", *list[0].RoomNumber)
	assert.Nil(t, list[0].AdminRemarks)
	assert.Nil(t, list[0].ResolvedAt)
	assert.Nil(t, list[1].RoomID)
	assert.Nil(t, list[1].RoomNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMaintenanceCreateUnknownStudent(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewMaintenanceRepo(db)

	mock.ExpectExec(`INSERT INTO maintenance_requests`).
		WillReturnError(&mysql.MySQLError{Number: errNoReferencedRow})

	err := repo.Create(context.Background(), &model.MaintenanceRequest{StudentID: 404, Description: "x", Status: model.MaintenancePending})
	assert.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreWithTxCommits(t *testing.T) {
	db, mock := setupMockDB(t)
	st := NewStore(db)
	room := uint64(7)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE students SET room_id`).WithArgs(7, 3).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := st.WithTx(context.Background(), func(tx store.Tx) error {
		return tx.SetStudentRoom(context.Background(), 3, &room)
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreWithTxRollsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	st := NewStore(db)
	fail := errors.New("capacity exceeded")

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM rooms WHERE id = \? FOR UPDATE`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_number", "capacity"}).AddRow(1, "101", 1))
	mock.ExpectQuery(`FROM students WHERE room_id = \? ORDER BY id FOR UPDATE`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))
	mock.ExpectRollback()

	err := st.WithTx(context.Background(), func(tx store.Tx) error {
		if _, err := tx.LockRoom(context.Background(), 1); err != nil {
			return err
		}
		return fail
	})
	assert.ErrorIs(t, err, fail)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreWithTxRollsBackOnPanic(t *testing.T) {
	db, mock := setupMockDB(t)
	st := NewStore(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = st.WithTx(context.Background(), func(store.Tx) error { panic("boom") })
	})
	require.NoError(t, mock.ExpectationsWereMet())
}
