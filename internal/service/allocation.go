package service

import (
	"context"

	"github.com/iliyamo/hostel-management/internal/model"
	"github.com/iliyamo/hostel-management/internal/queue"
	"github.com/iliyamo/hostel-management/internal/store"
)

// AllocationService binds students to rooms.  It is the only writer of the
// room/student link, and every change it makes updates both sides in one
// transaction.  It never picks a room on its own.
type AllocationService struct {
	*deps
}

// Allocate puts studentID into roomID.
func (s *AllocationService) Allocate(ctx context.Context, actor model.Actor, roomID, studentID uint64) (*model.Room, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	var out *model.Room
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		room, err := allocateTx(ctx, tx, roomID, studentID)
		out = room
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, actor, queue.Event{Type: queue.RoomAllocated, RoomID: roomID, StudentIDs: []uint64{studentID}})
	return out, nil
}

// allocateTx performs the allocation checks and write inside tx.  The room
// is locked before the student and the capacity is read under that lock.
// It returns the room as it stands after the write.
func allocateTx(ctx context.Context, tx store.Tx, roomID, studentID uint64) (*model.Room, error) {
	room, err := tx.LockRoom(ctx, roomID)
	if err != nil {
		return nil, lookup(err, "room", roomID)
	}
	st, err := tx.LockStudent(ctx, studentID)
	if err != nil {
		return nil, lookup(err, "student", studentID)
	}
	if st.RoomID != nil {
		if *st.RoomID == roomID {
			return nil, conflict("student %d is already allocated to room %s", studentID, room.Number)
		}
		return nil, conflict("student %d already holds a room", studentID)
	}
	if room.Full() {
		return nil, wrap(ErrCapacityExceeded, "room %s is full (%d/%d)", room.Number, len(room.OccupantIDs), int(room.Capacity))
	}
	if err := tx.SetStudentRoom(ctx, studentID, &roomID); err != nil {
		return nil, lookup(err, "student", studentID)
	}
	return tx.GetRoom(ctx, roomID)
}

// DeallocateStudent removes studentID from roomID.  A student who is not
// an occupant of that room yields ErrNotFound, so repeating the call is
// harmless and reports the same error.
func (s *AllocationService) DeallocateStudent(ctx context.Context, actor model.Actor, roomID, studentID uint64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		room, err := tx.LockRoom(ctx, roomID)
		if err != nil {
			return lookup(err, "room", roomID)
		}
		st, err := tx.LockStudent(ctx, studentID)
		if err != nil {
			return lookup(err, "student", studentID)
		}
		if !room.HasOccupant(studentID) || st.RoomID == nil || *st.RoomID != roomID {
			return notFound("student %d is not an occupant of room %s", studentID, room.Number)
		}
		return tx.SetStudentRoom(ctx, studentID, nil)
	})
	if err != nil {
		return err
	}
	s.publish(ctx, actor, queue.Event{Type: queue.RoomDeallocated, RoomID: roomID, StudentIDs: []uint64{studentID}})
	return nil
}

// DeallocateAll empties roomID and returns the ids of the students removed.
func (s *AllocationService) DeallocateAll(ctx context.Context, actor model.Actor, roomID uint64) ([]uint64, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	var removed []uint64
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		room, err := tx.LockRoom(ctx, roomID)
		if err != nil {
			return lookup(err, "room", roomID)
		}
		removed = make([]uint64, 0, len(room.OccupantIDs))
		for _, sid := range room.OccupantIDs {
			if _, err := tx.LockStudent(ctx, sid); err != nil {
				return lookup(err, "student", sid)
			}
			if err := tx.SetStudentRoom(ctx, sid, nil); err != nil {
				return err
			}
			removed = append(removed, sid)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(removed) > 0 {
		s.publish(ctx, actor, queue.Event{Type: queue.RoomDeallocated, RoomID: roomID, StudentIDs: removed})
	}
	return removed, nil
}
