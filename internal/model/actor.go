package model

// Role values carried in the access token's "role" claim.
const (
	RoleAdmin   = "ADMIN"
	RoleStudent = "STUDENT"
)

// Actor is the authenticated caller of a core operation.  StudentID is set
// only for students and identifies the student record they act as.
type Actor struct {
	UserID    uint64
	Role      string
	StudentID uint64
}

// IsAdmin reports whether the actor has the ADMIN role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// IsStudent reports whether the actor is the given student.
func (a Actor) IsStudent(studentID uint64) bool {
	return a.Role == RoleStudent && a.StudentID != 0 && a.StudentID == studentID
}

// CanActFor reports whether the actor may act on behalf of studentID:
// admins may act for anyone, students only for themselves.
func (a Actor) CanActFor(studentID uint64) bool {
	return a.IsAdmin() || a.IsStudent(studentID)
}
