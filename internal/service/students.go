package service

import (
	"context"
	"errors"

	"github.com/iliyamo/hostel-management/internal/model"
	"github.com/iliyamo/hostel-management/internal/store"
)

// StudentService is the read side of the student directory.  Student
// records are created by the registration flow, outside this service.
type StudentService struct {
	*deps
}

// GetStudent returns a student.  Students may only read their own record.
func (s *StudentService) GetStudent(ctx context.Context, actor model.Actor, id uint64) (*model.Student, error) {
	if err := requireActFor(actor, id); err != nil {
		return nil, err
	}
	st, err := s.store.GetStudent(ctx, id)
	if err != nil {
		return nil, lookup(err, "student", id)
	}
	return st, nil
}

// ListStudents returns students matching f.  Admin only.
func (s *StudentService) ListStudents(ctx context.Context, actor model.Actor, f model.StudentFilter) ([]model.Student, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.store.ListStudents(ctx, f)
}

// Profile returns the calling student's own record.
func (s *StudentService) Profile(ctx context.Context, actor model.Actor) (*model.Student, error) {
	if actor.Role != model.RoleStudent {
		return nil, forbidden("profile is available to students only")
	}
	return s.GetStudent(ctx, actor, actor.StudentID)
}

// ResolveStudentID maps an authenticated user to the student record it
// owns, for tokens that carry no student_id claim.
func (s *StudentService) ResolveStudentID(ctx context.Context, userID uint64) (uint64, error) {
	st, err := s.store.GetStudentByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, notFound("no student record for user %d", userID)
		}
		return 0, err
	}
	return st.ID, nil
}
