package service

import (
	"context"
	"strings"

	"github.com/iliyamo/hostel-management/internal/model"
	"github.com/iliyamo/hostel-management/internal/queue"
	"github.com/iliyamo/hostel-management/internal/store"
)

// MaintenanceService runs the maintenance request workflow.  Statuses move
// freely; ResolvedAt tracks the last move into COMPLETED.
type MaintenanceService struct {
	*deps
}

// Submit files a PENDING maintenance request.  roomID may be nil for a
// student without a room; a student may only name their own room.
func (s *MaintenanceService) Submit(ctx context.Context, actor model.Actor, studentID uint64, roomID *uint64, description string) (*model.MaintenanceRequest, error) {
	if err := requireActFor(actor, studentID); err != nil {
		return nil, err
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, validation("description is required")
	}
	var out *model.MaintenanceRequest
	err := s.store.WithTx(ctx, func(tx store.Tx) error {
		st, err := tx.GetStudent(ctx, studentID)
		if err != nil {
			return lookup(err, "student", studentID)
		}
		if roomID != nil {
			if _, err := tx.GetRoom(ctx, *roomID); err != nil {
				return lookup(err, "room", *roomID)
			}
			// students report issues only for the room they live in
			if !actor.IsAdmin() && (st.RoomID == nil || *st.RoomID != *roomID) {
				return forbidden("student %d does not live in room %d", studentID, *roomID)
			}
		}
		m := &model.MaintenanceRequest{
			StudentID:   studentID,
			RoomID:      roomID,
			Description: description,
			Status:      model.MaintenancePending,
			CreatedAt:   s.now(),
		}
		if err := tx.InsertMaintenance(ctx, m); err != nil {
			if roomID != nil {
				return lookup(err, "room", *roomID)
			}
			return err
		}
		out, err = tx.GetMaintenance(ctx, m.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	ev := queue.Event{Type: queue.MaintenanceSubmitted, StudentIDs: []uint64{studentID}, RequestID: out.ID, Status: string(out.Status)}
	if roomID != nil {
		ev.RoomID = *roomID
	}
	s.publish(ctx, actor, ev)
	return out, nil
}

// UpdateStatus moves a request to status and optionally replaces the
// remarks.  Any status may follow any other.
func (s *MaintenanceService) UpdateStatus(ctx context.Context, actor model.Actor, id uint64, status model.MaintenanceStatus, remarks *string) (*model.MaintenanceRequest, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	status, err := model.ParseMaintenanceStatus(string(status))
	if err != nil {
		return nil, validation("%v", err)
	}
	var out *model.MaintenanceRequest
	err = s.store.WithTx(ctx, func(tx store.Tx) error {
		m, err := tx.GetMaintenance(ctx, id)
		if err != nil {
			return lookup(err, "maintenance request", id)
		}
		if status == model.MaintenanceCompleted {
			if m.Status != model.MaintenanceCompleted || m.ResolvedAt == nil {
				now := s.now()
				m.ResolvedAt = &now
			}
		} else {
			m.ResolvedAt = nil
		}
		m.Status = status
		if remarks != nil {
			m.AdminRemarks = normalizeRemarks(*remarks)
		}
		if err := tx.UpdateMaintenance(ctx, m); err != nil {
			return lookup(err, "maintenance request", id)
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	ev := queue.Event{Type: queue.MaintenanceUpdated, StudentIDs: []uint64{out.StudentID}, RequestID: out.ID, Status: string(out.Status)}
	if out.RoomID != nil {
		ev.RoomID = *out.RoomID
	}
	s.publish(ctx, actor, ev)
	return out, nil
}

// Get returns one request.  Students only see their own.
func (s *MaintenanceService) Get(ctx context.Context, actor model.Actor, id uint64) (*model.MaintenanceRequest, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	m, err := s.store.GetMaintenance(ctx, id)
	if err != nil {
		return nil, lookup(err, "maintenance request", id)
	}
	if !actor.CanActFor(m.StudentID) {
		return nil, notFound("maintenance request %d", id)
	}
	return m, nil
}

// List returns requests matching f, newest first.
func (s *MaintenanceService) List(ctx context.Context, actor model.Actor, f model.RequestFilter) ([]model.MaintenanceRequest, error) {
	f, err := scopeFilter(actor, f)
	if err != nil {
		return nil, err
	}
	if f.Status != "" {
		st, err := model.ParseMaintenanceStatus(f.Status)
		if err != nil {
			return nil, validation("%v", err)
		}
		f.Status = string(st)
	}
	return s.store.ListMaintenance(ctx, f)
}

// Delete removes a request.  Admin only.
func (s *MaintenanceService) Delete(ctx context.Context, actor model.Actor, id uint64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return s.store.WithTx(ctx, func(tx store.Tx) error {
		return lookup(tx.DeleteMaintenance(ctx, id), "maintenance request", id)
	})
}
