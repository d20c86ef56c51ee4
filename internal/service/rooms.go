package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/hostel-management/internal/model"
	"github.com/iliyamo/hostel-management/internal/queue"
	"github.com/iliyamo/hostel-management/internal/store"
)

// remarkRoomDeleted is written on pending booking requests cancelled by a
// room deletion.
const remarkRoomDeleted = "room deleted"

// RoomService is the room registry.
type RoomService struct {
	*deps
}

func validateRoom(number string, capacity model.Capacity) (string, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return "", validation("room number is required")
	}
	if err := capacity.Validate(); err != nil {
		return "", validation("%v", err)
	}
	return number, nil
}

// CreateRoom adds an empty room.  Room numbers are unique.
func (s *RoomService) CreateRoom(ctx context.Context, actor model.Actor, number string, capacity model.Capacity) (*model.Room, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	number, err := validateRoom(number, capacity)
	if err != nil {
		return nil, err
	}
	room := &model.Room{Number: number, Capacity: capacity}
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.InsertRoom(ctx, room); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return conflict("room number %q already exists", number)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

// UpdateRoom changes number and capacity.  The room is locked for the check
// so a concurrent allocation cannot push occupancy past the new capacity.
func (s *RoomService) UpdateRoom(ctx context.Context, actor model.Actor, id uint64, number string, capacity model.Capacity) (*model.Room, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	number, err := validateRoom(number, capacity)
	if err != nil {
		return nil, err
	}
	var out *model.Room
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		room, err := tx.LockRoom(ctx, id)
		if err != nil {
			return lookup(err, "room", id)
		}
		if int(capacity) < len(room.OccupantIDs) {
			return conflict("room %s has %d occupants, capacity %d is too small", room.Number, len(room.OccupantIDs), int(capacity))
		}
		room.Number = number
		room.Capacity = capacity
		if err := tx.UpdateRoom(ctx, room); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return conflict("room number %q already exists", number)
			}
			return lookup(err, "room", id)
		}
		out = room
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteRoom removes an empty room.  Pending booking requests for it are
// cancelled in the same transaction; resolved requests keep their history.
func (s *RoomService) DeleteRoom(ctx context.Context, actor model.Actor, id uint64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	var cancelled []uint64
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		room, err := tx.LockRoom(ctx, id)
		if err != nil {
			return lookup(err, "room", id)
		}
		if room.Occupied() {
			return conflict("room %s still has %d occupants", room.Number, len(room.OccupantIDs))
		}
		pending, err := tx.ListBookings(ctx, model.RequestFilter{RoomID: &id, Status: string(model.BookingPending)})
		if err != nil {
			return err
		}
		now := s.now()
		remark := remarkRoomDeleted
		for i := range pending {
			b := pending[i]
			b.Status = model.BookingCancelled
			b.AdminRemarks = &remark
			b.ResolvedAt = &now
			if err := tx.UpdateBooking(ctx, &b); err != nil {
				return err
			}
			cancelled = append(cancelled, b.ID)
		}
		if err := tx.DeleteRoom(ctx, id); err != nil {
			if errors.Is(err, store.ErrInUse) {
				return conflict("room %s is still occupied", room.Number)
			}
			return lookup(err, "room", id)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for _, bid := range cancelled {
		s.publish(ctx, actor, queue.Event{Type: queue.BookingCancelled, RoomID: id, RequestID: bid, Status: string(model.BookingCancelled)})
	}
	return nil
}

// GetRoom returns one room with its occupants.
func (s *RoomService) GetRoom(ctx context.Context, actor model.Actor, id uint64) (*model.Room, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	room, err := s.store.GetRoom(ctx, id)
	if err != nil {
		return nil, lookup(err, "room", id)
	}
	return room, nil
}

// ListRooms returns rooms matching f ordered by id.
func (s *RoomService) ListRooms(ctx context.Context, actor model.Actor, f model.RoomFilter) ([]model.Room, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	return s.store.ListRooms(ctx, f)
}
