package service

import (
	"context"
	"errors"
	"strings"

	"github.com/iliyamo/hostel-management/internal/model"
	"github.com/iliyamo/hostel-management/internal/queue"
	"github.com/iliyamo/hostel-management/internal/store"
)

// BookingService runs the room booking request workflow.  A request starts
// PENDING and is decided exactly once; approving it allocates the student
// inside the same transaction.
type BookingService struct {
	*deps
	alloc *AllocationService
}

// Submit files a PENDING request for studentID to move into roomID.  A
// student may have one pending request at a time, may not already hold a
// room, and may not ask for a room that is currently full.
func (s *BookingService) Submit(ctx context.Context, actor model.Actor, studentID, roomID uint64) (*model.BookingRequest, error) {
	if err := requireActFor(actor, studentID); err != nil {
		return nil, err
	}
	var out *model.BookingRequest
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		room, err := tx.LockRoom(ctx, roomID)
		if err != nil {
			return lookup(err, "room", roomID)
		}
		st, err := tx.LockStudent(ctx, studentID)
		if err != nil {
			return lookup(err, "student", studentID)
		}
		if st.HasRoom() {
			return conflict("student %d already holds a room", studentID)
		}
		if room.Full() {
			return wrap(ErrCapacityExceeded, "room %s is full", room.Number)
		}
		pending, err := tx.LockPendingBookings(ctx, studentID)
		if err != nil {
			return err
		}
		if len(pending) > 0 {
			return conflict("student %d already has pending request %d", studentID, pending[0].ID)
		}
		b := &model.BookingRequest{
			StudentID:    studentID,
			RoomID:       roomID,
			RoomNumber:   room.Number,
			RoomCapacity: room.Capacity,
			Status:       model.BookingPending,
			CreatedAt:    s.now(),
		}
		if err := tx.InsertBooking(ctx, b); err != nil {
			return err
		}
		out, err = tx.GetBooking(ctx, b.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, actor, queue.Event{Type: queue.BookingSubmitted, RoomID: roomID, StudentIDs: []uint64{studentID}, RequestID: out.ID, Status: string(out.Status)})
	return out, nil
}

// Decide resolves a PENDING request.  Approval allocates the student to the
// requested room; when the allocation fails the whole decision is rolled
// back and the request stays PENDING.
func (s *BookingService) Decide(ctx context.Context, actor model.Actor, id uint64, status model.BookingStatus, remarks *string) (*model.BookingRequest, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	status, err := model.ParseBookingStatus(string(status))
	if err != nil {
		return nil, validation("%v", err)
	}
	if !status.Resolving() {
		return nil, wrap(ErrInvalidTransition, "cannot move request %d to %s", id, status)
	}
	var out *model.BookingRequest
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		cur, err := tx.GetBooking(ctx, id)
		if err != nil {
			return lookup(err, "booking request", id)
		}
		// room before request, the same order DeleteRoom takes
		if _, err := tx.LockRoom(ctx, cur.RoomID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		b, err := tx.LockBooking(ctx, id)
		if err != nil {
			return lookup(err, "booking request", id)
		}
		if b.Status.Terminal() {
			return wrap(ErrInvalidTransition, "request %d is already %s", id, b.Status)
		}
		if status == model.BookingApproved {
			if _, err := allocateTx(ctx, tx, b.RoomID, b.StudentID); err != nil {
				return err
			}
		}
		now := s.now()
		b.Status = status
		b.ResolvedAt = &now
		if remarks != nil {
			b.AdminRemarks = normalizeRemarks(*remarks)
		}
		if err := tx.UpdateBooking(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, actor, queue.Event{Type: queue.BookingDecided, RoomID: out.RoomID, StudentIDs: []uint64{out.StudentID}, RequestID: out.ID, Status: string(out.Status)})
	if out.Status == model.BookingApproved {
		s.publish(ctx, actor, queue.Event{Type: queue.RoomAllocated, RoomID: out.RoomID, StudentIDs: []uint64{out.StudentID}, RequestID: out.ID})
	}
	return out, nil
}

// Cancel lets the owning student withdraw a PENDING request.
func (s *BookingService) Cancel(ctx context.Context, actor model.Actor, id uint64) (*model.BookingRequest, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	var out *model.BookingRequest
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		b, err := tx.LockBooking(ctx, id)
		if err != nil {
			return lookup(err, "booking request", id)
		}
		if !actor.CanActFor(b.StudentID) {
			// do not leak other students' request ids
			return notFound("booking request %d", id)
		}
		if b.Status.Terminal() {
			return wrap(ErrInvalidTransition, "request %d is already %s", id, b.Status)
		}
		now := s.now()
		b.Status = model.BookingCancelled
		b.ResolvedAt = &now
		if err := tx.UpdateBooking(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, actor, queue.Event{Type: queue.BookingCancelled, RoomID: out.RoomID, StudentIDs: []uint64{out.StudentID}, RequestID: out.ID, Status: string(out.Status)})
	return out, nil
}

// UpdateRemarks replaces the admin remarks.  Remarks stay editable after
// the request is resolved; the status never changes here.
func (s *BookingService) UpdateRemarks(ctx context.Context, actor model.Actor, id uint64, remarks string) (*model.BookingRequest, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	var out *model.BookingRequest
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		b, err := tx.LockBooking(ctx, id)
		if err != nil {
			return lookup(err, "booking request", id)
		}
		b.AdminRemarks = normalizeRemarks(remarks)
		if err := tx.UpdateBooking(ctx, b); err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns one request.  Students only see their own.
func (s *BookingService) Get(ctx context.Context, actor model.Actor, id uint64) (*model.BookingRequest, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, lookup(err, "booking request", id)
	}
	if !actor.CanActFor(b.StudentID) {
		return nil, notFound("booking request %d", id)
	}
	return b, nil
}

// List returns requests matching f, newest first.  A student's listing is
// always narrowed to their own requests.
func (s *BookingService) List(ctx context.Context, actor model.Actor, f model.RequestFilter) ([]model.BookingRequest, error) {
	f, err := scopeFilter(actor, f)
	if err != nil {
		return nil, err
	}
	if f.Status != "" {
		st, err := model.ParseBookingStatus(f.Status)
		if err != nil {
			return nil, validation("%v", err)
		}
		f.Status = string(st)
	}
	return s.store.ListBookings(ctx, f)
}

// Delete removes a resolved request.  PENDING requests must be decided or
// cancelled first so that an open request is never lost silently.
func (s *BookingService) Delete(ctx context.Context, actor model.Actor, id uint64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return s.store.WithTx(ctx, func(tx store.Tx) error {
		b, err := tx.LockBooking(ctx, id)
		if err != nil {
			return lookup(err, "booking request", id)
		}
		if b.Status == model.BookingPending {
			return conflict("request %d is still pending", id)
		}
		return lookup(tx.DeleteBooking(ctx, id), "booking request", id)
	})
}

// scopeFilter validates the actor and pins a student's filter to their
// own id.
func scopeFilter(actor model.Actor, f model.RequestFilter) (model.RequestFilter, error) {
	if err := requireAuthenticated(actor); err != nil {
		return f, err
	}
	if actor.IsAdmin() {
		return f, nil
	}
	if f.StudentID != nil && *f.StudentID != actor.StudentID {
		return f, forbidden("cannot list requests of student %d", *f.StudentID)
	}
	id := actor.StudentID
	f.StudentID = &id
	return f, nil
}

// normalizeRemarks trims remarks; blank text clears them.
func normalizeRemarks(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
