package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hostel-management/internal/model"
)

func TestCreateRoom(t *testing.T) {
	f := newFixture(t)

	r := f.room(" A-101 ", 2)
	assert.Equal(t, "A-101", r.Number)
	assert.Empty(t, r.OccupantIDs)

	_, err := f.svc.Rooms.CreateRoom(f.ctx, admin, "a-101", 3)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.svc.Rooms.CreateRoom(f.ctx, admin, "  ", 3)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Rooms.CreateRoom(f.ctx, admin, "B-1", 0)
	assert.ErrorIs(t, err, ErrValidation)

	_, student := f.student("ann")
	_, err = f.svc.Rooms.CreateRoom(f.ctx, student, "C-1", 1)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateRoom(t *testing.T) {
	f := newFixture(t)
	r := f.room("A-1", 2)
	f.room("A-2", 1)
	s1, _ := f.student("ann")
	s2, _ := f.student("bob")
	_, err := f.svc.Allocation.Allocate(f.ctx, admin, r.ID, s1.ID)
	require.NoError(t, err)
	_, err = f.svc.Allocation.Allocate(f.ctx, admin, r.ID, s2.ID)
	require.NoError(t, err)

	_, err = f.svc.Rooms.UpdateRoom(f.ctx, admin, r.ID, "A-1", 1)
	assert.ErrorIs(t, err, ErrConflict, "capacity below occupant count")

	_, err = f.svc.Rooms.UpdateRoom(f.ctx, admin, r.ID, "A-2", 2)
	assert.ErrorIs(t, err, ErrConflict, "duplicate number")

	_, err = f.svc.Rooms.UpdateRoom(f.ctx, admin, 999, "Z", 2)
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := f.svc.Rooms.UpdateRoom(f.ctx, admin, r.ID, "A-100", 3)
	require.NoError(t, err)
	assert.Equal(t, "A-100", updated.Number)
	assert.Equal(t, model.Capacity(3), updated.Capacity)
	assert.ElementsMatch(t, []uint64{s1.ID, s2.ID}, updated.OccupantIDs)

	st, err := f.svc.Students.GetStudent(f.ctx, admin, s1.ID)
	require.NoError(t, err)
	require.NotNil(t, st.RoomNumber)
	assert.Equal(t, "A-100", *st.RoomNumber)
	assertConsistent(t, f.mem)
}

func TestDeleteRoomGuard(t *testing.T) {
	f := newFixture(t)
	r := f.room("A-1", 2)
	s1, _ := f.student("ann")
	_, err := f.svc.Allocation.Allocate(f.ctx, admin, r.ID, s1.ID)
	require.NoError(t, err)

	err = f.svc.Rooms.DeleteRoom(f.ctx, admin, r.ID)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = f.svc.Rooms.GetRoom(f.ctx, admin, r.ID)
	require.NoError(t, err, "room must survive a refused delete")

	require.NoError(t, f.svc.Allocation.DeallocateStudent(f.ctx, admin, r.ID, s1.ID))
	require.NoError(t, f.svc.Rooms.DeleteRoom(f.ctx, admin, r.ID))

	_, err = f.svc.Rooms.GetRoom(f.ctx, admin, r.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.svc.Rooms.DeleteRoom(f.ctx, admin, r.ID), ErrNotFound)
	assertConsistent(t, f.mem)
}

func TestDeleteRoomCancelsPendingBookings(t *testing.T) {
	f := newFixture(t)
	r := f.room("A-1", 1)
	s1, ann := f.student("ann")

	b, err := f.svc.Bookings.Submit(f.ctx, ann, s1.ID, r.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Rooms.DeleteRoom(f.ctx, admin, r.ID))

	got, err := f.svc.Bookings.Get(f.ctx, admin, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, got.Status)
	require.NotNil(t, got.AdminRemarks)
	assert.Equal(t, "room deleted", *got.AdminRemarks)
	assert.NotNil(t, got.ResolvedAt)
	assert.Contains(t, f.events.types(), "booking.cancelled")
}

func TestListRoomsFilter(t *testing.T) {
	f := newFixture(t)
	single := f.room("S-1", 1)
	f.room("D-1", 2)
	s1, ann := f.student("ann")
	_, err := f.svc.Allocation.Allocate(f.ctx, admin, single.ID, s1.ID)
	require.NoError(t, err)

	all, err := f.svc.Rooms.ListRooms(f.ctx, ann, model.RoomFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	avail, err := f.svc.Rooms.ListRooms(f.ctx, ann, model.RoomFilter{OnlyAvailable: true})
	require.NoError(t, err)
	require.Len(t, avail, 1)
	assert.Equal(t, "D-1", avail[0].Number)

	byNumber, err := f.svc.Rooms.ListRooms(f.ctx, admin, model.RoomFilter{Query: "s-"})
	require.NoError(t, err)
	require.Len(t, byNumber, 1)
	assert.Equal(t, single.ID, byNumber[0].ID)
}
