package service

import (
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hostel-management/internal/model"
)

func TestAllocate(t *testing.T) {
	f := newFixture(t)
	r := f.room("A-1", 1)
	other := f.room("A-2", 2)
	s1, ann := f.student("ann")
	s2, _ := f.student("bob")

	room, err := f.svc.Allocation.Allocate(f.ctx, admin, r.ID, s1.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{s1.ID}, room.OccupantIDs)

	_, err = f.svc.Allocation.Allocate(f.ctx, admin, r.ID, s1.ID)
	assert.ErrorIs(t, err, ErrConflict, "already in this room")
	_, err = f.svc.Allocation.Allocate(f.ctx, admin, other.ID, s1.ID)
	assert.ErrorIs(t, err, ErrConflict, "already holds another room")
	_, err = f.svc.Allocation.Allocate(f.ctx, admin, r.ID, s2.ID)
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	_, err = f.svc.Allocation.Allocate(f.ctx, admin, 999, s2.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.Allocation.Allocate(f.ctx, admin, other.ID, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Allocation.Allocate(f.ctx, ann, other.ID, s2.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	st, err := f.svc.Students.GetStudent(f.ctx, ann, s1.ID)
	require.NoError(t, err)
	require.NotNil(t, st.RoomID)
	assert.Equal(t, r.ID, *st.RoomID)
	assert.Equal(t, []string{"room.allocated"}, f.events.types())
	assertConsistent(t, f.mem)
}

func TestDeallocateStudentTwice(t *testing.T) {
	f := newFixture(t)
	r := f.room("A-1", 2)
	s1, _ := f.student("ann")
	s2, _ := f.student("bob")
	for _, id := range []uint64{s1.ID, s2.ID} {
		_, err := f.svc.Allocation.Allocate(f.ctx, admin, r.ID, id)
		require.NoError(t, err)
	}

	require.NoError(t, f.svc.Allocation.DeallocateStudent(f.ctx, admin, r.ID, s1.ID))
	before, err := f.svc.Rooms.GetRoom(f.ctx, admin, r.ID)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		err := f.svc.Allocation.DeallocateStudent(f.ctx, admin, r.ID, s1.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	}

	after, err := f.svc.Rooms.GetRoom(f.ctx, admin, r.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, []uint64{s2.ID}, after.OccupantIDs)
	assertConsistent(t, f.mem)
}

func TestDeallocateStudentFromOtherRoom(t *testing.T) {
	f := newFixture(t)
	a := f.room("A-1", 1)
	b := f.room("B-1", 1)
	s1, _ := f.student("ann")
	_, err := f.svc.Allocation.Allocate(f.ctx, admin, a.ID, s1.ID)
	require.NoError(t, err)

	err = f.svc.Allocation.DeallocateStudent(f.ctx, admin, b.ID, s1.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	st, err := f.svc.Students.GetStudent(f.ctx, admin, s1.ID)
	require.NoError(t, err)
	require.NotNil(t, st.RoomID)
	assert.Equal(t, a.ID, *st.RoomID)
}

func TestDeallocateAll(t *testing.T) {
	f := newFixture(t)
	r := f.room("A-1", 3)
	var ids []uint64
	for _, name := range []string{"ann", "bob", "cid"} {
		s, _ := f.student(name)
		_, err := f.svc.Allocation.Allocate(f.ctx, admin, r.ID, s.ID)
		require.NoError(t, err)
		ids = append(ids, s.ID)
	}

	removed, err := f.svc.Allocation.DeallocateAll(f.ctx, admin, r.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids, removed)

	room, err := f.svc.Rooms.GetRoom(f.ctx, admin, r.ID)
	require.NoError(t, err)
	assert.Empty(t, room.OccupantIDs)
	unassigned, err := f.svc.Students.ListStudents(f.ctx, admin, model.StudentFilter{Unassigned: true})
	require.NoError(t, err)
	assert.Len(t, unassigned, 3)

	removed, err = f.svc.Allocation.DeallocateAll(f.ctx, admin, r.ID)
	require.NoError(t, err)
	assert.Empty(t, removed)

	_, err = f.svc.Allocation.DeallocateAll(f.ctx, admin, 999)
	assert.ErrorIs(t, err, ErrNotFound)
	assertConsistent(t, f.mem)
}

func TestConcurrentAllocateLastBed(t *testing.T) {
	for round := 0; round < 20; round++ {
		f := newFixture(t)
		r := f.room("A-1", 1)
		s1, _ := f.student("ann")
		s2, _ := f.student("bob")

		errs := make([]error, 2)
		var wg sync.WaitGroup
		for i, sid := range []uint64{s1.ID, s2.ID} {
			wg.Add(1)
			go func(i int, sid uint64) {
				defer wg.Done()
				_, errs[i] = f.svc.Allocation.Allocate(f.ctx, admin, r.ID, sid)
			}(i, sid)
		}
		wg.Wait()

		ok, full := 0, 0
		for _, err := range errs {
			if err == nil {
				ok++
			} else if errors.Is(err, ErrCapacityExceeded) {
				full++
			}
		}
		assert.Equal(t, 1, ok)
		assert.Equal(t, 1, full)
		assertConsistent(t, f.mem)
	}
}

// TestRandomAllocationSequence drives a fixed pseudo-random mix of
// allocations and deallocations and checks the invariants after each step.
func TestRandomAllocationSequence(t *testing.T) {
	f := newFixture(t)
	rng := rand.New(rand.NewSource(42))
	var rooms, students []uint64
	for i, c := range []int{1, 2, 3} {
		rooms = append(rooms, f.room(string(rune('A'+i))+"-1", c).ID)
	}
	for _, name := range []string{"ann", "bob", "cid", "dee", "eve", "fay", "gus"} {
		s, _ := f.student(name)
		students = append(students, s.ID)
	}

	for step := 0; step < 200; step++ {
		room := rooms[rng.Intn(len(rooms))]
		student := students[rng.Intn(len(students))]
		var err error
		switch rng.Intn(5) {
		case 0, 1, 2:
			_, err = f.svc.Allocation.Allocate(f.ctx, admin, room, student)
		case 3:
			err = f.svc.Allocation.DeallocateStudent(f.ctx, admin, room, student)
		default:
			_, err = f.svc.Allocation.DeallocateAll(f.ctx, admin, room)
		}
		if err != nil {
			assert.True(t, isKind(err, ErrConflict, ErrCapacityExceeded, ErrNotFound),
				"unexpected error at step %d: %v", step, err)
		}
		assertConsistent(t, f.mem)
	}
}
